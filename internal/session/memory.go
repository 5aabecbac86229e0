package session

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

type memoryEntry struct {
	email     string
	expiresAt time.Time
}

// MemoryStore is a mutex-guarded in-process session store for tests and
// single-node development. Expired entries are dropped lazily on Resolve.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]memoryEntry
	ttl      time.Duration
	now      func() time.Time
}

// NewMemoryStore creates an in-memory session store. A non-positive ttl
// falls back to 24 hours.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &MemoryStore{
		sessions: make(map[string]memoryEntry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// Create issues a new token bound to email.
func (s *MemoryStore) Create(_ context.Context, email string) (string, error) {
	token := uuid.New().String()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[token] = memoryEntry{
		email:     email,
		expiresAt: s.now().Add(s.ttl),
	}
	return token, nil
}

// Resolve returns the email bound to token.
func (s *MemoryStore) Resolve(_ context.Context, token string) (string, error) {
	s.mu.RLock()
	entry, ok := s.sessions[token]
	s.mu.RUnlock()

	if !ok {
		return "", ErrNotFound
	}
	if s.now().After(entry.expiresAt) {
		s.mu.Lock()
		delete(s.sessions, token)
		s.mu.Unlock()
		return "", ErrNotFound
	}
	return entry.email, nil
}

// Delete removes the session unconditionally.
func (s *MemoryStore) Delete(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, token)
	return nil
}
