package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/mamadbah2/herdbook/internal/domain/models"
)

const (
	// SessionCookie carries the session token for browser clients.
	SessionCookie = "herdbook_session"

	ownerKey = "herdbook.owner"
)

// Authenticator resolves a session token to an owner key.
type Authenticator interface {
	Authenticate(token string) (string, error)
}

// RequireUser rejects requests without a valid bearer token or session
// cookie and stores the owner key on the context.
func RequireUser(authn Authenticator, logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *gin.Context) {
		owner, err := authn.Authenticate(sessionToken(c))
		if err != nil {
			respondError(c, logger, models.ErrUnauthenticated)
			return
		}
		c.Set(ownerKey, owner)
		c.Next()
	}
}

func sessionToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		if scheme, token, ok := strings.Cut(header, " "); ok && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := c.Cookie(SessionCookie); err == nil {
		return cookie
	}
	return ""
}

// Owner returns the owner key stored by RequireUser.
func Owner(c *gin.Context) string {
	return c.GetString(ownerKey)
}
