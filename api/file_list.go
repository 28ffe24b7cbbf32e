package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// FileList returns the caller's own files. Files merely shared with them
// never show up here, those live under /api/shares/received.
func (a *API) FileList(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	files, err := a.Visibility.ListOwned(c.Request.Context(), userID)
	if err != nil {
		abortServiceErr(c, requestID, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"files": files,
	})
}
