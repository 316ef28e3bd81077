package ginserver

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	gin "github.com/gin-gonic/gin"

	"coastalstay/internal/app/actor"
	"coastalstay/internal/app/services/auth"
	domainauth "coastalstay/internal/domain/auth"
	"coastalstay/internal/infra/security"
)

const sessionTokenKey = "coastalstay.session_token"

// TokenResolver is the part of the auth service the middleware relies on.
type TokenResolver interface {
	ResolveToken(ctx context.Context, token string) (*auth.AuthResult, error)
}

// AuthMiddleware attaches the signed-in staff account to the request context.
// Requests without a valid token pass through anonymously; role checks happen
// on the command and query buses.
type AuthMiddleware struct {
	Service TokenResolver
	Logger  *slog.Logger
}

func (m AuthMiddleware) Handle(c *gin.Context) {
	token := extractBearerToken(c.GetHeader("Authorization"))
	if m.Service == nil || !security.LooksLikeToken(token) {
		c.Next()
		return
	}
	resolved, err := m.Service.ResolveToken(c.Request.Context(), token)
	if err != nil {
		if !errors.Is(err, domainauth.ErrSessionNotFound) && m.Logger != nil {
			m.Logger.Debug("token validation failed", "error", err)
		}
		c.Next()
		return
	}
	c.Set(sessionTokenKey, token)
	c.Request = c.Request.WithContext(actor.WithStaff(c.Request.Context(), resolved.Staff))
	c.Next()
}

func sessionToken(c *gin.Context) string {
	if token := c.GetString(sessionTokenKey); token != "" {
		return token
	}
	return extractBearerToken(c.GetHeader("Authorization"))
}

func extractBearerToken(header string) string {
	if header == "" {
		return ""
	}
	if !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
