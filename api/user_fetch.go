package api

import (
	"net/http"

	"sharedrop/fileshare-api/model"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (a *API) UserFetch(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var user model.User

	if err := a.DB.First(&user, "id = ?", userID).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":            user.ID,
		"first_name":    user.FirstName,
		"last_name":     user.LastName,
		"email":         user.Email,
		"date_of_birth": user.DateOfBirth.Format("2006-01-02"),
		"phone_number":  user.PhoneNumber,
		"has_photo":     user.ProfilePhotoKey != "",
		"created_at":    user.CreatedAt,
	})
}

// UserPhoto streams the caller's profile photo from the blob store.
func (a *API) UserPhoto(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var user model.User

	if err := a.DB.First(&user, "id = ?", userID).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if user.ProfilePhotoKey == "" {
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "No profile photo set",
			"requestID": requestID,
		})
		return
	}

	r, err := a.Store.Get(c.Request.Context(), user.ProfilePhotoKey)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
			"error":     "Failed to read profile photo",
			"requestID": requestID,
		})

		zap.L().Error("Failed to read profile photo", zap.Error(err), zap.String("requestID", requestID))
		return
	}
	defer r.Close()

	c.DataFromReader(http.StatusOK, -1, "application/octet-stream", r, nil)
}
