package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

const IdempotencyHeader = "Idempotency-Key"

// OnceAcquirer claims a key for a scope, returning false if it was already claimed.
type OnceAcquirer interface {
	AcquireOnce(ctx context.Context, scope, key string) bool
}

// Idempotency rejects a repeated mutating request carrying the same
// Idempotency-Key from the same user. Requests without the header pass.
func Idempotency(guard OnceAcquirer) gin.HandlerFunc {
	return func(c *gin.Context) {
		switch c.Request.Method {
		case http.MethodGet, http.MethodHead, http.MethodOptions:
			c.Next()
			return
		}
		key := c.GetHeader(IdempotencyHeader)
		if key == "" {
			c.Next()
			return
		}

		scope := c.GetString(KeyUserID) + ":" + c.Request.Method + ":" + c.FullPath()
		if !guard.AcquireOnce(c.Request.Context(), scope, key) {
			c.AbortWithStatusJSON(http.StatusConflict, gin.H{
				"status":       "error",
				"message":      "Duplicate request, already being processed",
				"notification": gin.H{"variant": "destructive"},
			})
			return
		}
		c.Next()
	}
}
