package middleware

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	domainerrors "github.com/ranchopanda/22juneplantsaathiai-sub001/internal/domain/errors"
)

// AdminAuthMiddleware protects the admin surface with a static bearer token
// from configuration. The comparison is constant time.
func AdminAuthMiddleware(adminToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if adminToken == "" {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"reason":  domainerrors.ReasonInternal,
				"message": "admin access is not configured",
			})
			return
		}

		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"reason":  domainerrors.ReasonUnauthorized,
				"message": "missing admin token",
			})
			return
		}

		if subtle.ConstantTimeCompare([]byte(token), []byte(adminToken)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"reason":  domainerrors.ReasonUnauthorized,
				"message": "invalid admin token",
			})
			return
		}

		c.Next()
	}
}
