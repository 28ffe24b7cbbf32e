package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"sharedrop/fileshare-api/service"

	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

type sharePublicBody struct {
	FileID         uint   `json:"file_id"`
	RecipientEmail string `json:"recipient_email"`
	Message        string `json:"message"`
	DurationHours  int    `json:"duration_hours"`
}

// SharePublic creates a file's public link, or renews it if one already
// exists. Renewing keeps the token, so a link that was already sent out
// stays valid under the new expiry and recipient.
func (a *API) SharePublic(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	var data sharePublicBody
	if err := c.ShouldBind(&data); err != nil || data.FileID == 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "file_id can't be empty",
			"requestID": requestID,
		})
		return
	}

	if data.DurationHours <= 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "duration_hours must be bigger than 0",
			"requestID": requestID,
		})
		return
	}

	now := time.Now()

	grant, file, err := a.Visibility.Authorize(c.Request.Context(), userID, "", data.FileID, now)
	if err != nil {
		abortServiceErr(c, requestID, err)
		return
	}
	if grant != service.GrantOwner {
		// Recipients of a share can't re-share
		abortServiceErr(c, requestID, service.ErrNotFound)
		return
	}

	share, created, err := a.Registry.CreateOrRenew(c.Request.Context(), data.FileID,
		data.RecipientEmail, data.Message, data.DurationHours, now)
	if err != nil {
		abortServiceErr(c, requestID, err)
		return
	}

	link := fmt.Sprintf("https://%s/shared/%s", viper.GetString("host.domain"), share.Token)

	if data.RecipientEmail != "" {
		body := fmt.Sprintf("A file was shared with you: <b>%s</b><br><br><a href='%s'>Open it here</a><br><br>The link expires %s.",
			file.DisplayName, link, share.ExpiresAt.Format(time.RFC1123))
		if share.Message != "" {
			body += "<br><br>Message from the sender:<br>" + share.Message
		}

		a.Notifier.Notify(data.RecipientEmail, "A file was shared with you", body)
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}

	c.JSON(status, gin.H{
		"token":      share.Token,
		"url":        link,
		"expires_at": share.ExpiresAt,
		"renewed":    !created,
	})
}

// SharePublicList returns the caller's public links together with whether
// and when each was first opened.
func (a *API) SharePublicList(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	shares, err := a.Registry.ListByOwner(c.Request.Context(), a.Ledger, userID, time.Now())
	if err != nil {
		abortServiceErr(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"shares": shares,
	})
}

// SharePublicRevoke drops a file's public link and its access trail.
func (a *API) SharePublicRevoke(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fileID, err := strconv.ParseUint(c.Param("fileID"), 10, 32)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "ID must be a number",
			"requestID": requestID,
		})
		return
	}

	if err := a.Registry.Revoke(c.Request.Context(), uint(fileID), userID); err != nil {
		abortServiceErr(c, requestID, err)
		return
	}

	c.Status(http.StatusOK)
}
