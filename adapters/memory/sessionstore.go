// Package memory provides in-memory implementations for testing and
// single-process deployments.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/artpar/wxgate/ports"
)

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

// SessionStore is an in-memory implementation of ports.SessionStore.
type SessionStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	clock   ports.Clock
}

// NewSessionStore creates a new in-memory session store.
func NewSessionStore(clock ports.Clock) *SessionStore {
	return &SessionStore{
		entries: make(map[string]entry),
		clock:   clock,
	}
}

// Get retrieves a value. Expired entries are dropped lazily.
func (s *SessionStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, false, nil
	}
	if !e.expiresAt.IsZero() && s.clock.Now().After(e.expiresAt) {
		s.mu.Lock()
		delete(s.entries, key)
		s.mu.Unlock()
		return nil, false, nil
	}
	return e.value, true, nil
}

// Set stores a value with an optional TTL.
func (s *SessionStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	e := entry{value: append([]byte(nil), value...)}
	if ttl > 0 {
		e.expiresAt = s.clock.Now().Add(ttl)
	}
	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
	return nil
}

// Delete removes a key.
func (s *SessionStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

// Ensure interface compliance.
var _ ports.SessionStore = (*SessionStore)(nil)
