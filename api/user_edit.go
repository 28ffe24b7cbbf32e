package api

import (
	"net/http"

	"sharedrop/fileshare-api/model"
	"sharedrop/fileshare-api/validators"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserEdit updates profile attributes. Email changes go through the same
// uniqueness rules as registration; password changes have their own route.
func (a *API) UserEdit(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	firstName := c.PostForm("first_name")
	lastName := c.PostForm("last_name")
	phone := c.PostForm("phone_number")
	email := c.PostForm("email")

	updates := map[string]any{}

	if firstName != "" {
		updates["first_name"] = firstName
	}
	if lastName != "" {
		updates["last_name"] = lastName
	}
	if phone != "" {
		updates["phone_number"] = phone
	}

	if email != "" {
		if err := validators.EmailValidator(email); err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
				"error":     err.Error(),
				"requestID": requestID,
			})
			return
		}

		var taken bool
		r := a.DB.Model(model.User{}).
			Select("count(*) > 0").
			Where("email = ? AND id != ?", email, userID).
			Find(&taken)
		if r.Error != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Internal server error",
				"requestID": requestID,
			})

			zap.L().Error("Failed to check email", zap.Error(r.Error), zap.String("requestID", requestID))
			return
		}

		if taken {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error":     "This email is already registered",
				"requestID": requestID,
			})
			return
		}

		updates["email"] = email
	}

	if fh, err := c.FormFile("profile_photo"); err == nil && fh.Size > 0 {
		f, err := fh.Open()
		if err == nil {
			var key string
			key, err = a.Store.Put(c.Request.Context(), f, fh.Size)
			f.Close()
			if err == nil {
				updates["profile_photo_key"] = key
			}
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
				"error":     "Failed to store profile photo",
				"requestID": requestID,
			})

			zap.L().Error("Failed to store profile photo", zap.Error(err), zap.String("requestID", requestID))
			return
		}
	}

	if len(updates) == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Nothing to update",
			"requestID": requestID,
		})
		return
	}

	if err := a.DB.Model(model.User{}).Where("id = ?", userID).Updates(updates).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.Status(http.StatusOK)
}
