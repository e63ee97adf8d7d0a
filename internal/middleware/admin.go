package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/inquirygate/inquirygate/internal/config"
)

const HeaderAdminKey = "X-Admin-Key"

// AdminMiddleware guards the inquiry log API.
func AdminMiddleware(cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		if cfg.AdminKey == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin key not configured"})
			return
		}
		if subtle.ConstantTimeCompare([]byte(c.GetHeader(HeaderAdminKey)), []byte(cfg.AdminKey)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid admin key"})
			return
		}
		c.Next()
	}
}
