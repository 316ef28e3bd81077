package memory

import (
	"context"
	"sync"
	"time"

	domainauth "coastalstay/internal/domain/auth"
	domainuser "coastalstay/internal/domain/user"
)

// SessionStore keeps bearer sessions in memory. Expired sessions are
// dropped on read and swept on every Save.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[domainauth.Token]domainauth.Session
	now      func() time.Time
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[domainauth.Token]domainauth.Session),
		now:      time.Now,
	}
}

func (s *SessionStore) Save(_ context.Context, session *domainauth.Session) error {
	if session == nil || session.Token == "" {
		return domainauth.ErrTokenRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	for token, old := range s.sessions {
		if old.Expired(now) {
			delete(s.sessions, token)
		}
	}
	s.sessions[session.Token] = *session
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token domainauth.Token) (*domainauth.Session, error) {
	s.mu.RLock()
	session, ok := s.sessions[token]
	s.mu.RUnlock()
	if !ok {
		return nil, domainauth.ErrSessionNotFound
	}
	if session.Expired(s.now()) {
		_ = s.Delete(ctx, token)
		return nil, domainauth.ErrSessionNotFound
	}
	return &session, nil
}

func (s *SessionStore) Delete(_ context.Context, token domainauth.Token) error {
	s.mu.Lock()
	delete(s.sessions, token)
	s.mu.Unlock()
	return nil
}

// DeleteByUser scans every session; the admin panel has a handful of staff.
func (s *SessionStore) DeleteByUser(_ context.Context, userID domainuser.ID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for token, session := range s.sessions {
		if session.UserID == userID {
			delete(s.sessions, token)
		}
	}
	return nil
}

var _ domainauth.SessionStore = (*SessionStore)(nil)
