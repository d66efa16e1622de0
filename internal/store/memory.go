package store

import (
	"context"
	"sync"

	"github.com/bertrandstanley/Weather-Dashboard/internal/history"
)

// MemoryStore is a concurrency-safe in-memory history backend. Entries are
// copied on the way in and out so callers never share its slice.
type MemoryStore struct {
	mu      sync.RWMutex
	entries []history.Entry
}

// NewMemoryStore creates a MemoryStore seeded with entries.
func NewMemoryStore(entries ...history.Entry) *MemoryStore {
	s := &MemoryStore{}
	s.entries = append(s.entries, entries...)
	return s
}

// Load returns a copy of the collection.
func (s *MemoryStore) Load(_ context.Context) ([]history.Entry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]history.Entry, len(s.entries))
	copy(out, s.entries)
	return out, nil
}

// Save replaces the collection.
func (s *MemoryStore) Save(_ context.Context, entries []history.Entry) error {
	next := make([]history.Entry, len(entries))
	copy(next, entries)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = next
	return nil
}
