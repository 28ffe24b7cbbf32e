package api

import (
	"errors"
	"net/http"
	"time"

	"sharedrop/fileshare-api/model"
	"sharedrop/fileshare-api/validators"

	"github.com/gin-gonic/gin"
	gonanoid "github.com/matoous/go-nanoid/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const idCharset = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ"

// UserRegister creates an account. The body is multipart so the optional
// profile photo can ride along with the fields.
func (a *API) UserRegister(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	email := c.PostForm("email")
	password := c.PostForm("password")
	firstName := c.PostForm("first_name")
	lastName := c.PostForm("last_name")
	phone := c.PostForm("phone_number")

	if firstName == "" || lastName == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "First and last name can't be empty",
			"requestID": requestID,
		})
		return
	}

	if err := validators.EmailValidator(email); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	if err := validators.PasswordValidator(password); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	dob, err := time.Parse("2006-01-02", c.PostForm("date_of_birth"))
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "date_of_birth must look like 2006-01-02",
			"requestID": requestID,
		})
		return
	}

	var found bool

	r := a.DB.Model(model.User{}).
		Select("count(*) > 0").
		Where("email = ?", email).
		Find(&found)
	if r.Error != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to check if user is registered", zap.Error(r.Error), zap.String("requestID", requestID))
		return
	}

	if found {
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":     "This email is already registered. Please login or use a different email",
			"requestID": requestID,
		})
		return
	}

	hash, err := a.Argon.GenerateFromPassword(password)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	userID, err := gonanoid.Generate(idCharset, 16)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to generate user ID", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	photoKey := ""

	if fh, err := c.FormFile("profile_photo"); err == nil && fh.Size > 0 {
		f, err := fh.Open()
		if err == nil {
			photoKey, err = a.Store.Put(c.Request.Context(), f, fh.Size)
			f.Close()
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

	user := model.User{
		ID:              userID,
		FirstName:       firstName,
		LastName:        lastName,
		Email:           email,
		PasswordHash:    hash,
		DateOfBirth:     dob,
		PhoneNumber:     phone,
		ProfilePhotoKey: photoKey,
		CreatedAt:       time.Now().UTC(),
	}

	if err := a.DB.Create(&user).Error; err != nil {
		// The unique index wins races the count check above can lose
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"error":     "This email is already registered. Please login or use a different email",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to create user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"userID": user.ID,
	})
}
