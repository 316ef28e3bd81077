package security

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"strings"
)

const (
	defaultTokenBytes = 32
	TokenPrefix       = "cs_"
)

// SessionTokens issues opaque bearer tokens for admin sessions.
type SessionTokens struct {
	Bytes int
}

func (g SessionTokens) NewToken() (string, error) {
	size := g.Bytes
	if size <= 0 {
		size = defaultTokenBytes
	}
	buf := make([]byte, size)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("security: read token entropy: %w", err)
	}
	return TokenPrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

// LooksLikeToken lets the HTTP layer reject garbage before a store lookup.
func LooksLikeToken(raw string) bool {
	body, ok := strings.CutPrefix(raw, TokenPrefix)
	if !ok || body == "" {
		return false
	}
	_, err := base64.RawURLEncoding.DecodeString(body)
	return err == nil
}
