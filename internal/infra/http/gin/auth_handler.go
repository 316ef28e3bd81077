package ginserver

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	gin "github.com/gin-gonic/gin"

	"coastalstay/internal/app/actor"
	"coastalstay/internal/app/dto"
	authsvc "coastalstay/internal/app/services/auth"
)

type AuthHTTP interface {
	Login(c *gin.Context)
	Logout(c *gin.Context)
	Me(c *gin.Context)
}

// Authenticator is the slice of the auth service the handler calls.
type Authenticator interface {
	Login(ctx context.Context, params authsvc.LoginParams) (*authsvc.AuthResult, error)
	Logout(ctx context.Context, token string) error
}

// AuthHandler serves the admin panel sign-in. Tokens travel in the
// Authorization header; no cookies are set.
type AuthHandler struct {
	Service Authenticator
	Logger  *slog.Logger
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

func (h AuthHandler) ready(c *gin.Context) bool {
	if h.Service == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "auth service unavailable"})
		return false
	}
	return true
}

func (h AuthHandler) Login(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}
	result, err := h.Service.Login(c.Request.Context(), authsvc.LoginParams{
		Email:    strings.TrimSpace(req.Email),
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.Logger, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, dto.AuthResponse{
		User:      dto.MapStaffProfile(result.Staff),
		Token:     string(result.Session.Token),
		ExpiresAt: result.Session.ExpiresAt,
	})
}

// Logout is idempotent: a missing or unknown token still answers 204.
func (h AuthHandler) Logout(c *gin.Context) {
	if !h.ready(c) {
		return
	}
	if token := sessionToken(c); token != "" {
		if err := h.Service.Logout(c.Request.Context(), token); err != nil {
			respondError(c, h.Logger, err)
			return
		}
	}
	c.Status(http.StatusNoContent)
}

func (h AuthHandler) Me(c *gin.Context) {
	staff, ok := actor.FromContext(c.Request.Context())
	if !ok {
		respondError(c, h.Logger, actor.ErrUnauthenticated)
		return
	}
	c.JSON(http.StatusOK, dto.MapStaffProfile(staff))
}

var _ AuthHTTP = (*AuthHandler)(nil)
