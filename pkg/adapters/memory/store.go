// Package memory provides an in-process ports.HistoryStore.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/aretw0/concord/pkg/domain"
	"github.com/aretw0/concord/pkg/ports"
)

// Store implements ports.HistoryStore in memory.
// Safe for concurrent use.
type Store struct {
	data map[string]*domain.History
	mu   sync.RWMutex
}

var _ ports.HistoryStore = (*Store)(nil)

// NewStore creates a new in-memory store.
func NewStore() *Store {
	return &Store{
		data: make(map[string]*domain.History),
	}
}

func clone(h *domain.History) *domain.History {
	c := *h
	c.Attempts = append([]domain.Attempt(nil), h.Attempts...)
	return &c
}

// Save keeps a copy of the history, isolated like a serialized one.
func (s *Store) Save(ctx context.Context, pageID string, history *domain.History) error {
	copied := clone(history)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[pageID] = copied
	return nil
}

// Load returns a copy so callers can't mutate store state through the pointer.
func (s *Store) Load(ctx context.Context, pageID string) (*domain.History, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[pageID]
	if !ok {
		return nil, domain.ErrHistoryNotFound
	}
	return clone(history), nil
}

// Delete removes the history.
func (s *Store) Delete(ctx context.Context, pageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, pageID)
	return nil
}

// List returns the recorded page IDs, sorted.
func (s *Store) List(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]string, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}
