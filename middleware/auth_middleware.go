package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/studio-desk/models"
	"github.com/studio-desk/services"
)

// SessionVerifier checks tokens against stored sessions and accounts.
type SessionVerifier interface {
	GetSession(ctx context.Context, token string) (models.Session, error)
	GetUser(ctx context.Context, id string) (models.User, error)
	SignOut(ctx context.Context, session models.Session) error
}

// CapabilityResolver turns the verified user into the capabilities used for the request.
type CapabilityResolver interface {
	FromProfile(user models.User) services.Capabilities
}

// AuthMiddleware requires a live session. The token is read from the
// Authorization header, falling back to the access_token cookie.
func AuthMiddleware(auth SessionVerifier, authz CapabilityResolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			unauthorized(c, "Authentication required")
			return
		}

		ctx := c.Request.Context()
		session, err := auth.GetSession(ctx, token)
		if err != nil {
			logger.Debug("Session rejected", zap.Error(err))
			unauthorized(c, "Session expired or invalid")
			return
		}

		// The account may have been removed after the token was issued.
		user, err := auth.GetUser(ctx, session.UserID)
		if err != nil {
			logger.Info("Account no longer valid, signing out",
				zap.String("user_id", session.UserID), zap.Error(err))
			if err := auth.SignOut(ctx, session); err != nil {
				logger.Warn("Forced sign-out failed", zap.String("session_id", session.ID), zap.Error(err))
			}
			ClearAccessCookie(c)
			unauthorized(c, "Account is no longer available")
			return
		}

		c.Set(KeyUserID, user.ID)
		c.Set(KeyUser, user)
		c.Set(KeySession, session)
		c.Set(KeyCapabilities, authz.FromProfile(user))
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(AccessTokenCookie); err == nil {
		return cookie
	}
	return ""
}

func unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"status":   "error",
		"message":  message,
		"redirect": "/login",
	})
}
