package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
)

// SentryMiddleware gives every request its own hub and transaction, so scope
// data set while handling one request never shows up on another.
func SentryMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if sentry.CurrentHub().Client() == nil {
			c.Next()
			return
		}

		hub := sentry.CurrentHub().Clone()
		hub.ConfigureScope(func(scope *sentry.Scope) {
			scope.SetContext("request", sentry.Context{
				"method":  c.Request.Method,
				"url":     c.Request.URL.String(),
				"headers": getSafeHeaders(c.Request.Header),
			})
			scope.SetTag("http.method", c.Request.Method)
			scope.SetTag("http.route", c.FullPath())
		})

		ctx := sentry.SetHubOnContext(c.Request.Context(), hub)
		transaction := sentry.StartTransaction(ctx,
			c.Request.Method+" "+c.FullPath(),
			sentry.ContinueFromRequest(c.Request),
		)
		defer func() {
			transaction.Status = sentry.HTTPtoSpanStatus(c.Writer.Status())
			transaction.Finish()
		}()

		c.Request = c.Request.WithContext(transaction.Context())
		c.Next()
	}
}

// ErrorReporter sends errors attached to the gin context to the request's
// hub, tagged with who made the request.
func ErrorReporter() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		if len(c.Errors) == 0 {
			return
		}

		hub := sentry.GetHubFromContext(c.Request.Context())
		if hub == nil {
			hub = sentry.CurrentHub()
		}
		hub.WithScope(func(scope *sentry.Scope) {
			scope.SetExtra("status", c.Writer.Status())
			if caps, ok := Capabilities(c); ok {
				scope.SetUser(sentry.User{ID: caps.UserID})
				scope.SetTag("user_type", string(caps.UserType))
				scope.SetTag("is_admin", strconv.FormatBool(caps.IsAdmin))
			}
			for _, ginErr := range c.Errors {
				hub.CaptureException(ginErr.Err)
			}
		})
	}
}

func getSafeHeaders(h http.Header) map[string]interface{} {
	safe := make(map[string]interface{})
	for k, v := range h {
		if strings.EqualFold(k, "Authorization") || strings.EqualFold(k, "Cookie") {
			safe[k] = "[FILTERED]"
		} else {
			safe[k] = v
		}
	}
	return safe
}
