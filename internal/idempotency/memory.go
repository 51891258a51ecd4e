package idempotency

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is a process-local Store for single-instance deployments and tests.
type MemoryStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	expires map[string]time.Time
}

// NewMemoryStore constructs an empty memory-backed store.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryStore{
		ttl:     ttl,
		now:     time.Now,
		expires: make(map[string]time.Time),
	}
}

// Reserve implements the Store interface.
func (s *MemoryStore) Reserve(_ context.Context, key string) (bool, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.evictExpired(now)

	if _, held := s.expires[key]; held {
		return false, nil
	}
	s.expires[key] = now.Add(s.ttl)
	return true, nil
}

// Release implements the Store interface.
func (s *MemoryStore) Release(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.expires, key)
	return nil
}

// evictExpired must be called with mu held.
func (s *MemoryStore) evictExpired(now time.Time) {
	for key, expiresAt := range s.expires {
		if !now.Before(expiresAt) {
			delete(s.expires, key)
		}
	}
}
