package api

import (
	"errors"
	"net/http"
	"time"

	"sharedrop/fileshare-api/model"
	"sharedrop/fileshare-api/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type shareDirectBody struct {
	FileID uint   `json:"file_id"`
	Email  string `json:"email"`
}

// ShareDirect grants another account read access to one of the caller's
// files. The recipient is addressed by email, like the share dialog does.
func (a *API) ShareDirect(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data shareDirectBody
	if err := c.ShouldBind(&data); err != nil || data.FileID == 0 || data.Email == "" {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "file_id and email can't be empty",
			"requestID": requestID,
		})
		return
	}

	now := time.Now()

	// Only the owner may share. A direct or public grant on the file is not
	// enough, and outsiders learn nothing beyond "not found".
	grant, _, err := a.Visibility.Authorize(c.Request.Context(), userID, "", data.FileID, now)
	if err != nil {
		abortServiceErr(c, requestID, err)
		return
	}
	if grant != service.GrantOwner {
		abortServiceErr(c, requestID, service.ErrNotFound)
		return
	}

	var recipient model.User
	if err := a.DB.Where("email = ?", data.Email).First(&recipient).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
				"error":     "No account with that email",
				"requestID": requestID,
			})
			return
		}

		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Failed to look up recipient", zap.Error(err), zap.String("requestID", requestID))
		return
	}

	if recipient.ID == userID {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "You can't share a file with yourself",
			"requestID": requestID,
		})
		return
	}

	created, err := a.Direct.Share(c.Request.Context(), data.FileID, recipient.ID, now)
	if err != nil {
		abortServiceErr(c, requestID, err)
		return
	}

	if created {
		c.JSON(http.StatusCreated, gin.H{
			"message": "File shared",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "File was already shared with this user",
	})
}

// SharesReceived lists the files other accounts shared with the caller.
func (a *API) SharesReceived(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	shares, err := a.Direct.ListSharedWith(c.Request.Context(), userID)
	if err != nil {
		abortServiceErr(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shares": shares,
	})
}
