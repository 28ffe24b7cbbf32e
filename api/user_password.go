package api

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"sharedrop/fileshare-api/model"
	"sharedrop/fileshare-api/security"
	"sharedrop/fileshare-api/validators"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type passwordChangeBody struct {
	Current string `json:"current_password"`
	New     string `json:"new_password"`
}

func (a *API) PasswordChange(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data passwordChangeBody
	if err := c.ShouldBind(&data); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid request body",
			"requestID": requestID,
		})
		return
	}

	if err := validators.PasswordValidator(data.New); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	var user model.User
	if err := a.DB.First(&user, "id = ?", userID).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to fetch user", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	ok, err := a.Argon.VerifyPasswd(data.Current, user.PasswordHash)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to verify password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":     "Current password is wrong",
			"requestID": requestID,
		})
		return
	}

	hash, err := a.Argon.GenerateFromPassword(data.New)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if err := a.DB.Model(model.User{}).Where("id = ?", userID).Update("password_hash", hash).Error; err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to update password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.Status(http.StatusOK)
}

type passwordForgotBody struct {
	Email string `json:"email"`
}

// PasswordForgot mints a reset token and mails it. The reply is the same
// whether or not the email maps to an account, so the endpoint can't be
// used to enumerate who is registered.
func (a *API) PasswordForgot(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data passwordForgotBody
	if err := c.ShouldBind(&data); err != nil || data.Email == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Email can't be empty",
			"requestID": requestID,
		})
		return
	}

	uniform := func() {
		c.JSON(http.StatusOK, gin.H{
			"message": "If that email is registered, a reset link is on its way",
		})
	}

	var user model.User
	if err := a.DB.Where("email = ?", data.Email).First(&user).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			zap.L().Error("Failed to look up user for reset", zap.Error(err), zap.String("requestID", requestID))
		}

		uniform()
		return
	}

	now := time.Now().UTC()

	reset, err := security.MakeResetToken(user.ID, now)
	if err != nil {
		zap.L().Error("Failed to mint reset token", zap.Error(err), zap.String("requestID", requestID))
		uniform()
		return
	}

	// Retire older live tokens in the same transaction so at most one
	// redeemable credential exists per user
	err = a.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(model.ResetToken{}).
			Where("user_id = ? AND used = ? AND expires_at > ?", user.ID, false, now).
			Update("used", true).Error
		if err != nil {
			return err
		}

		return tx.Create(reset).Error
	})
	if err != nil {
		zap.L().Error("Failed to store reset token", zap.Error(err), zap.String("requestID", requestID))
		uniform()
		return
	}

	link := fmt.Sprintf("https://%s/reset-password?token=%s", viper.GetString("host.domain"), reset.Token)
	a.Notifier.Notify(user.Email, "Reset your password",
		fmt.Sprintf("Click <a href='%s'>here</a> to reset your password.<br><br>This link will expire in 30 minutes.", link))

	uniform()
}

type passwordResetBody struct {
	Token    string `json:"token"`
	Password string `json:"password"`
}

func (a *API) PasswordReset(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	var data passwordResetBody
	if err := c.ShouldBind(&data); err != nil || data.Token == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Token can't be empty",
			"requestID": requestID,
		})
		return
	}

	if err := validators.PasswordValidator(data.Password); err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     err.Error(),
			"requestID": requestID,
		})
		return
	}

	now := time.Now().UTC()

	var reset model.ResetToken
	err := a.DB.Where("token = ? AND used = ? AND expires_at > ?", data.Token, false, now).
		First(&reset).Error
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "Invalid or expired reset token",
			"requestID": requestID,
		})
		return
	}

	hash, err := a.Argon.GenerateFromPassword(data.Password)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to hash password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	err = a.DB.Transaction(func(tx *gorm.DB) error {
		err := tx.Model(model.User{}).
			Where("id = ?", reset.UserID).
			Update("password_hash", hash).Error
		if err != nil {
			return err
		}

		return tx.Model(model.ResetToken{}).
			Where("id = ?", reset.ID).
			Update("used", true).Error
	})
	if err != nil {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to reset password", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	c.Status(http.StatusOK)
}
