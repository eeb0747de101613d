package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// AdminMiddleware creates a middleware that ensures the user has admin role
// This middleware should be used after AuthMiddleware
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		caps, exists := Capabilities(c)
		if !exists {
			unauthorized(c, "Authentication required")
			return
		}

		if !caps.CanViewAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status":  "error",
				"message": "Admin privileges required",
			})
			return
		}

		c.Next()
	}
}

// RequireStaff keeps client accounts out of staff-only sections.
func RequireStaff() gin.HandlerFunc {
	return func(c *gin.Context) {
		caps, exists := Capabilities(c)
		if !exists {
			unauthorized(c, "Authentication required")
			return
		}
		if !caps.CanViewConsultants() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"status":  "error",
				"message": "Not available for client accounts",
			})
			return
		}
		c.Next()
	}
}
