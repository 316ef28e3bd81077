// Package auth models admin panel sessions. A session is looked up by its
// opaque bearer token and slides forward while the editor keeps working.
package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"coastalstay/internal/domain/user"
)

var (
	ErrTokenRequired   = errors.New("auth: token is required")
	ErrUserRequired    = errors.New("auth: user is required")
	ErrTTLInvalid      = errors.New("auth: ttl must be positive")
	ErrSessionNotFound = errors.New("auth: session not found")
)

type Token string

// Session is a signed-in staff member behind an opaque token.
type Session struct {
	Token     Token     `json:"token"`
	UserID    user.ID   `json:"userId"`
	Role      user.Role `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	RenewedAt time.Time `json:"renewedAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

type CreateSessionParams struct {
	Token  Token
	UserID user.ID
	Role   user.Role
	TTL    time.Duration
	Now    time.Time
}

// NewSession opens a session that expires ttl after p.Now.
func NewSession(p CreateSessionParams) (*Session, error) {
	token := Token(strings.TrimSpace(string(p.Token)))
	switch {
	case token == "":
		return nil, ErrTokenRequired
	case strings.TrimSpace(string(p.UserID)) == "":
		return nil, ErrUserRequired
	case p.TTL <= 0:
		return nil, ErrTTLInvalid
	}
	now := p.Now.UTC()
	return &Session{
		Token:     token,
		UserID:    p.UserID,
		Role:      p.Role,
		CreatedAt: now,
		RenewedAt: now,
		ExpiresAt: now.Add(p.TTL),
	}, nil
}

func (s *Session) Expired(at time.Time) bool {
	return !s.ExpiresAt.After(at)
}

// TTL is the time left at the given instant, never negative.
func (s *Session) TTL(at time.Time) time.Duration {
	return max(s.ExpiresAt.Sub(at), 0)
}

// Renew pushes expiry to at+ttl once less than half of ttl is left, and
// reports whether it did. Expired sessions are never renewed.
func (s *Session) Renew(at time.Time, ttl time.Duration) bool {
	if ttl <= 0 || s.Expired(at) || s.TTL(at) >= ttl/2 {
		return false
	}
	s.RenewedAt = at.UTC()
	s.ExpiresAt = s.RenewedAt.Add(ttl)
	return true
}

// SessionStore persists sessions by token.
type SessionStore interface {
	Save(ctx context.Context, session *Session) error
	Get(ctx context.Context, token Token) (*Session, error)
	Delete(ctx context.Context, token Token) error
	DeleteByUser(ctx context.Context, userID user.ID) error
}
