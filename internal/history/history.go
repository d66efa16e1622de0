// Package history keeps the deduplicated list of previously searched cities.
//
// The whole collection is the unit of persistence: every mutation reads the
// full collection from the Backend, applies the change and writes the full
// collection back, inside a single-writer critical section.
package history

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/bertrandstanley/Weather-Dashboard/internal/common"
	"github.com/bertrandstanley/Weather-Dashboard/internal/metrics"
)

// ErrInvalidName is returned by AddCity for a blank name.
var ErrInvalidName = errors.New("city name must not be blank")

// Entry is one remembered search.
type Entry struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Backend loads and saves the full collection. Save must be atomic from the
// point of view of a concurrent Load.
type Backend interface {
	Load(ctx context.Context) ([]Entry, error)
	Save(ctx context.Context, entries []Entry) error
}

// Store serializes read-modify-write cycles over a Backend.
type Store struct {
	mu      sync.RWMutex
	backend Backend
	newID   func() string
	logger  *zap.SugaredLogger
}

// NewStore creates a Store. A nil logger disables logging.
func NewStore(backend Backend, logger *zap.SugaredLogger) *Store {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Store{
		backend: backend,
		newID:   uuid.NewString,
		logger:  logger,
	}
}

// List returns the entries in insertion order. A read failure yields an
// empty list.
func (s *Store) List(ctx context.Context) []Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := s.load(ctx)
	metrics.HistoryEntries.Set(float64(len(entries)))
	return entries
}

// AddCity appends name unless an entry with the same name, ignoring case,
// already exists.
func (s *Store) AddCity(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrInvalidName
	}
	key := common.FoldKey(name)

	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load(ctx)
	for _, e := range entries {
		if common.FoldKey(e.Name) == key {
			return nil
		}
	}

	entries = append(entries, Entry{ID: s.newID(), Name: name})
	if err := s.backend.Save(ctx, entries); err != nil {
		return fmt.Errorf("failed to save search history: %w", err)
	}
	metrics.HistoryEntries.Set(float64(len(entries)))
	s.logger.Debugw("city added to history", "city", name)
	return nil
}

// RemoveCity deletes the entry with the given id. Unknown ids are ignored.
func (s *Store) RemoveCity(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries := s.load(ctx)
	kept := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	if len(kept) == len(entries) {
		return nil
	}

	if err := s.backend.Save(ctx, kept); err != nil {
		return fmt.Errorf("failed to save search history: %w", err)
	}
	metrics.HistoryEntries.Set(float64(len(kept)))
	s.logger.Debugw("city removed from history", "id", id)
	return nil
}

// load must be called with mu held. The returned slice is owned by the caller.
func (s *Store) load(ctx context.Context) []Entry {
	entries, err := s.backend.Load(ctx)
	if err != nil {
		s.logger.Warnw("failed to read search history; treating as empty", "error", err)
		return []Entry{}
	}
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}
