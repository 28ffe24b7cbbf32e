package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// FileDownload streams a file to an authenticated caller holding an owner
// or direct grant. Anonymous bearer-token fetches go through /api/public
// instead, the two credential kinds never mix on one route.
func (a *API) FileDownload(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)
	userID := c.MustGet("userID").(string)

	fileID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
			"error":     "ID must be a number",
			"requestID": requestID,
		})
		return
	}

	_, file, err := a.Visibility.Authorize(c.Request.Context(), userID, "", uint(fileID), time.Now())
	if err != nil {
		abortServiceErr(c, requestID, err)
		return
	}

	r, err := a.Files.Open(c.Request.Context(), file)
	if err != nil {
		abortServiceErr(c, requestID, err)
		return
	}
	defer r.Close()

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.DisplayName))
	c.DataFromReader(http.StatusOK, file.Size, "application/octet-stream", r, nil)
}
