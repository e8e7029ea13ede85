package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process counter backend for development and tests.
// It mirrors the shared-store semantics: a counter's expiry is fixed by
// the increment that creates it and later increments reuse it. Production
// deployments use RedisStore; a per-process store cannot enforce limits
// across gateway instances.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	now     func() time.Time
}

type memoryEntry struct {
	count     int64
	expiresAt time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

// Incr increments the counter for key, creating it with the given ttl if
// absent or expired.
func (s *MemoryStore) Incr(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	e, ok := s.entries[key]
	if !ok || !now.Before(e.expiresAt) {
		e = &memoryEntry{expiresAt: now.Add(ttl)}
		s.entries[key] = e
	}
	e.count++
	return e.count, nil
}
