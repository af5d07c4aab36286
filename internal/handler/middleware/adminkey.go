package middleware

import (
	"crypto/subtle"
	"net/http"

	"devhours-api/internal/pkg/config"

	"github.com/gin-gonic/gin"
)

// RequireAdminKey guards operational endpoints with a shared key compared in
// constant time.
func RequireAdminKey(cfg config.AdminConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		provided := c.GetHeader("X-Admin-Key")
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(cfg.Key)) != 1 {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "Invalid admin key",
			})
			c.Abort()
			return
		}
		c.Next()
	}
}
