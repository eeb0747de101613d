package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/studio-desk/models"
	"github.com/studio-desk/services"
)

// Context keys set by AuthMiddleware.
const (
	KeyUserID       = "userId"
	KeyUser         = "user"
	KeySession      = "session"
	KeyCapabilities = "capabilities"
)

// AccessTokenCookie carries the session token for browser clients.
const AccessTokenCookie = "access_token"

// Capabilities returns the caller's capabilities resolved by AuthMiddleware.
func Capabilities(c *gin.Context) (services.Capabilities, bool) {
	v, ok := c.Get(KeyCapabilities)
	if !ok {
		return services.Capabilities{}, false
	}
	caps, ok := v.(services.Capabilities)
	return caps, ok
}

func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(KeyUser)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}

func CurrentSession(c *gin.Context) (models.Session, bool) {
	v, ok := c.Get(KeySession)
	if !ok {
		return models.Session{}, false
	}
	session, ok := v.(models.Session)
	return session, ok
}

// ClearAccessCookie expires the session cookie.
func ClearAccessCookie(c *gin.Context) {
	c.SetCookie(AccessTokenCookie, "", -1, "/", "", true, true)
}
