package api

import (
	"errors"
	"net/http"

	"sharedrop/fileshare-api/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// abortServiceErr translates the service error taxonomy into HTTP. This is
// the only place a status code is picked from a core error, handlers just
// pass through whatever the service returned.
func abortServiceErr(c *gin.Context, requestID string, err error) {
	var depErr *service.DependencyError

	switch {
	case errors.Is(err, service.ErrNotFound):
		c.AbortWithStatusJSON(http.StatusNotFound, gin.H{
			"error":     "Not found",
			"requestID": requestID,
		})
	case errors.Is(err, service.ErrExpired):
		c.AbortWithStatusJSON(http.StatusGone, gin.H{
			"error":     "This share link has expired",
			"requestID": requestID,
		})
	case errors.Is(err, service.ErrUnauthorized):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
			"error":     "You're not allowed to do that",
			"requestID": requestID,
		})
	case errors.Is(err, service.ErrUnauthenticated):
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error":     "Not authenticated",
			"requestID": requestID,
		})
	case errors.Is(err, service.ErrConflict):
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{
			"error":     "Already exists",
			"requestID": requestID,
		})
	case errors.As(err, &depErr):
		c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
			"error":     "A backing service failed, please try again",
			"requestID": requestID,
		})

		zap.L().Error("Dependency failure", zap.Error(err), zap.String("requestID", requestID))
	default:
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
			"error":     "Internal server error",
			"requestID": requestID,
		})

		zap.L().Error("Unhandled error", zap.Error(err), zap.String("requestID", requestID))
	}
}
