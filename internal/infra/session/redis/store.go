// Package redis keeps admin sessions in Redis so they survive restarts and are
// shared between replicas.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	domainauth "coastalstay/internal/domain/auth"
	domainuser "coastalstay/internal/domain/user"
)

const defaultPrefix = "coastalstay:"

// Connect parses a redis:// URL and pings the server.
func Connect(ctx context.Context, url string) (*goredis.Client, error) {
	opt, err := goredis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis: invalid url: %w", err)
	}
	client := goredis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping: %w", err)
	}
	return client, nil
}

// SessionStore implements auth.SessionStore. Each session is a JSON value
// expiring with the session; a per-user set indexes tokens for revocation.
type SessionStore struct {
	client goredis.UniversalClient
	prefix string
	now    func() time.Time
}

func NewSessionStore(client goredis.UniversalClient) *SessionStore {
	return &SessionStore{client: client, prefix: defaultPrefix, now: time.Now}
}

func (s *SessionStore) Save(ctx context.Context, session *domainauth.Session) error {
	if session == nil {
		return errors.New("redis: nil session")
	}
	ttl := session.TTL(s.now())
	if ttl <= 0 {
		return domainauth.ErrTTLInvalid
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("redis: encode session: %w", err)
	}
	indexKey := s.userKey(session.UserID)
	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Set(ctx, s.sessionKey(session.Token), payload, ttl)
		pipe.SAdd(ctx, indexKey, string(session.Token))
		pipe.ExpireGT(ctx, indexKey, ttl)
		pipe.ExpireNX(ctx, indexKey, ttl)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: save session: %w", err)
	}
	return nil
}

func (s *SessionStore) Get(ctx context.Context, token domainauth.Token) (*domainauth.Session, error) {
	raw, err := s.client.Get(ctx, s.sessionKey(token)).Bytes()
	if err != nil {
		if errors.Is(err, goredis.Nil) {
			return nil, domainauth.ErrSessionNotFound
		}
		return nil, fmt.Errorf("redis: get session: %w", err)
	}
	var session domainauth.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return nil, fmt.Errorf("redis: decode session: %w", err)
	}
	return &session, nil
}

func (s *SessionStore) Delete(ctx context.Context, token domainauth.Token) error {
	session, err := s.Get(ctx, token)
	if err != nil {
		if errors.Is(err, domainauth.ErrSessionNotFound) {
			return nil
		}
		return err
	}
	_, err = s.client.TxPipelined(ctx, func(pipe goredis.Pipeliner) error {
		pipe.Del(ctx, s.sessionKey(token))
		pipe.SRem(ctx, s.userKey(session.UserID), string(token))
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis: delete session: %w", err)
	}
	return nil
}

func (s *SessionStore) DeleteByUser(ctx context.Context, userID domainuser.ID) error {
	indexKey := s.userKey(userID)
	tokens, err := s.client.SMembers(ctx, indexKey).Result()
	if err != nil {
		return fmt.Errorf("redis: list user sessions: %w", err)
	}
	keys := make([]string, 0, len(tokens)+1)
	for _, token := range tokens {
		keys = append(keys, s.sessionKey(domainauth.Token(token)))
	}
	keys = append(keys, indexKey)
	if err := s.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("redis: delete user sessions: %w", err)
	}
	return nil
}

func (s *SessionStore) sessionKey(token domainauth.Token) string {
	return s.prefix + "session:" + string(token)
}

func (s *SessionStore) userKey(id domainuser.ID) string {
	return s.prefix + "staff-sessions:" + string(id)
}
