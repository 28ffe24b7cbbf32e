package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// FileDelete removes a file and, in the same transaction, every share and
// access record pointing at it. Non-owners get the same 404 a missing file
// produces.
func (a *API) FileDelete(c *gin.Context) {
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

	if err := a.Files.Delete(c.Request.Context(), uint(fileID), userID); err != nil {
		abortServiceErr(c, requestID, err)
		return
	}

	c.Status(http.StatusOK)
}
