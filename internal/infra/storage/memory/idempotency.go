package memory

import (
	"context"
	"sync"
	"time"

	"coastalstay/internal/app/middleware"
)

// IdempotencyStore keeps command outcomes in memory. Records older than ttl
// are swept on Save so a long-running dev server does not grow forever.
type IdempotencyStore struct {
	mu    sync.RWMutex
	items map[string]middleware.IdempotencyRecord
	ttl   time.Duration
	now   func() time.Time
}

func NewIdempotencyStore(ttl time.Duration) *IdempotencyStore {
	return &IdempotencyStore{
		items: make(map[string]middleware.IdempotencyRecord),
		ttl:   ttl,
		now:   time.Now,
	}
}

func (s *IdempotencyStore) Get(_ context.Context, key string) (middleware.IdempotencyRecord, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rec, ok := s.items[key]
	return rec, ok, nil
}

func (s *IdempotencyStore) Save(_ context.Context, rec middleware.IdempotencyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ttl > 0 {
		cutoff := s.now().Add(-s.ttl)
		for key, old := range s.items {
			if old.OccurredAt.Before(cutoff) {
				delete(s.items, key)
			}
		}
	}
	s.items[rec.Key] = rec
	return nil
}

// Len reports how many records are held.
func (s *IdempotencyStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

var _ middleware.IdempotencyStore = (*IdempotencyStore)(nil)
