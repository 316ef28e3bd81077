package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coastalstay/internal/domain/user"
)

var now = time.Date(2026, 10, 1, 12, 0, 0, 0, time.UTC)

func TestNewSession(t *testing.T) {
	s, err := NewSession(CreateSessionParams{Token: " cs_tok ", UserID: "u1", Role: user.RoleAdmin, TTL: time.Hour, Now: now})
	require.NoError(t, err)
	assert.Equal(t, Token("cs_tok"), s.Token)
	assert.Equal(t, now, s.RenewedAt)
	assert.False(t, s.Expired(now.Add(59*time.Minute)))
	assert.True(t, s.Expired(now.Add(time.Hour)))
	assert.Equal(t, 30*time.Minute, s.TTL(now.Add(30*time.Minute)))
	assert.Zero(t, s.TTL(now.Add(2*time.Hour)))

	tests := []struct {
		name   string
		params CreateSessionParams
		err    error
	}{
		{name: "token", params: CreateSessionParams{UserID: "u1", TTL: time.Hour}, err: ErrTokenRequired},
		{name: "user", params: CreateSessionParams{Token: "t", TTL: time.Hour}, err: ErrUserRequired},
		{name: "ttl", params: CreateSessionParams{Token: "t", UserID: "u1"}, err: ErrTTLInvalid},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSession(tt.params)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestSession_Renew(t *testing.T) {
	tests := []struct {
		name       string
		after      time.Duration
		renewed    bool
		wantExpiry time.Time
	}{
		{name: "fresh session kept", after: 10 * time.Minute, wantExpiry: now.Add(time.Hour)},
		{name: "half way kept", after: 30 * time.Minute, wantExpiry: now.Add(time.Hour)},
		{name: "late session extended", after: 40 * time.Minute, renewed: true, wantExpiry: now.Add(100 * time.Minute)},
		{name: "expired session left alone", after: 2 * time.Hour, wantExpiry: now.Add(time.Hour)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := NewSession(CreateSessionParams{Token: "t", UserID: "u1", TTL: time.Hour, Now: now})
			require.NoError(t, err)
			assert.Equal(t, tt.renewed, s.Renew(now.Add(tt.after), time.Hour))
			assert.Equal(t, tt.wantExpiry, s.ExpiresAt)
		})
	}
}
