package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
)

// PublicFetch is the anonymous entry point. The bearer token in the path is
// the whole credential: no account, no cookie. ?meta=1 selects a JSON
// metadata response, anything else streams the file. Both variants append
// an access record, a metadata view counts as an access on purpose.
func (a *API) PublicFetch(c *gin.Context) {
	requestID := c.MustGet("requestID").(string)

	token := c.Param("token")
	now := time.Now()

	file, share, err := a.Registry.GetValid(c.Request.Context(), token, now)
	if err != nil {
		abortServiceErr(c, requestID, err)
		return
	}

	meta, err := strconv.ParseBool(c.DefaultQuery("meta", "0"))
	if err != nil {
		meta = false
	}

	if meta {
		a.Ledger.Record(c.Request.Context(), file.ID, token, now)

		c.JSON(http.StatusOK, gin.H{
			"name":       file.DisplayName,
			"size":       file.Size,
			"message":    share.Message,
			"expires_at": share.ExpiresAt,
		})
		return
	}

	r, err := a.Files.Open(c.Request.Context(), file)
	if err != nil {
		abortServiceErr(c, requestID, err)
		return
	}
	defer r.Close()

	a.Ledger.Record(c.Request.Context(), file.ID, token, now)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.DisplayName))
	c.DataFromReader(http.StatusOK, file.Size, "application/octet-stream", r, nil)
}
