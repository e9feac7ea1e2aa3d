package ports

import (
	"context"

	"github.com/aretw0/concord/pkg/domain"
)

// HistoryStore defines the interface for persisting the submission history of pages.
type HistoryStore interface {
	// Save persists the history for a given page ID.
	Save(ctx context.Context, pageID string, history *domain.History) error

	// Load retrieves the history for a given page ID.
	// Returns domain.ErrHistoryNotFound if none exists.
	Load(ctx context.Context, pageID string) (*domain.History, error)

	// Delete removes the history for a given page ID.
	Delete(ctx context.Context, pageID string) error

	// List returns the page IDs that have a history.
	List(ctx context.Context) ([]string, error)
}
