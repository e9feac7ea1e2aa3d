package middleware_test

import (
	"context"

	"github.com/aretw0/concord/pkg/domain"
)

// MockStore is a simple map-based store for testing middleware.
type MockStore struct {
	data map[string]*domain.History
}

func NewMockStore() *MockStore {
	return &MockStore{
		data: make(map[string]*domain.History),
	}
}

func (s *MockStore) Save(ctx context.Context, pageID string, h *domain.History) error {
	s.data[pageID] = h
	return nil
}

func (s *MockStore) Load(ctx context.Context, pageID string) (*domain.History, error) {
	h, ok := s.data[pageID]
	if !ok {
		return nil, domain.ErrHistoryNotFound
	}
	return h, nil
}

func (s *MockStore) Delete(ctx context.Context, pageID string) error {
	delete(s.data, pageID)
	return nil
}

func (s *MockStore) List(ctx context.Context) ([]string, error) {
	var ids []string
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}
