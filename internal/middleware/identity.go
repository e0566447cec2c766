package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Identity resolves the calling user from the X-User-Id header set by the
// upstream gateway. Authentication itself is stubbed upstream.
func Identity() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-Id")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing user identity"})
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}
