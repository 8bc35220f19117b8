// Package contextstore persists per-conversation search context between
// turns. The Redis store is used when configured; the in-memory store backs
// single-instance deployments and tests.
package contextstore

import (
	"context"
	"sync"
	"time"

	"stayfinder/internal/model"
)

// Store holds the evolving search context keyed by conversation ID. A nil
// context result with a nil error means the conversation has no context yet.
type Store interface {
	Load(ctx context.Context, conversationID string) (*model.SearchContext, error)
	Save(ctx context.Context, conversationID string, sc *model.SearchContext) error
	Delete(ctx context.Context, conversationID string) error
}

type memoryEntry struct {
	context   model.SearchContext
	expiresAt time.Time
}

// MemoryStore is a TTL-bounded in-process store.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
}

// NewMemoryStore creates an in-memory store with the given entry TTL.
func NewMemoryStore(ttl time.Duration) *MemoryStore {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return &MemoryStore{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
	}
}

// Load returns a copy of the stored context, or nil when absent or expired.
func (s *MemoryStore) Load(_ context.Context, conversationID string) (*model.SearchContext, error) {
	s.mu.RLock()
	entry, ok := s.entries[conversationID]
	s.mu.RUnlock()

	if !ok || time.Now().After(entry.expiresAt) {
		return nil, nil
	}
	sc := entry.context
	return &sc, nil
}

// Save stores a copy of the context, refreshing the TTL.
func (s *MemoryStore) Save(_ context.Context, conversationID string, sc *model.SearchContext) error {
	if sc == nil {
		return nil
	}
	s.mu.Lock()
	s.entries[conversationID] = memoryEntry{
		context:   *sc,
		expiresAt: time.Now().Add(s.ttl),
	}
	s.mu.Unlock()
	return nil
}

// Delete removes the conversation's context.
func (s *MemoryStore) Delete(_ context.Context, conversationID string) error {
	s.mu.Lock()
	delete(s.entries, conversationID)
	s.mu.Unlock()
	return nil
}
