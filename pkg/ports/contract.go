package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/concord/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunHistoryStoreContract runs a suite of tests to verify that a HistoryStore implementation
// adheres to the defined interface contract.
func RunHistoryStoreContract(t *testing.T, store HistoryStore) {
	ctx := context.Background()
	pageID := "contract-test-page-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
		history := domain.NewHistory(pageID)
		history.Attempts = append(history.Attempts, domain.Attempt{
			ID:  "attempt-1",
			Seq: 1,
			Payload: domain.OnboardingPayload{
				ConflictDescription: "My conflict",
				MediatorPreference:  domain.MediatorNeutral,
			},
			Outcome:    domain.Outcome{Status: domain.StatusSuccess, Message: "talk first", HTTPStatus: 200},
			StartedAt:  started,
			FinishedAt: started.Add(time.Second),
		})

		err := store.Save(ctx, pageID, history)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, pageID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, pageID, loaded.PageID)
		require.Len(t, loaded.Attempts, 1)
		got := loaded.Attempts[0]
		assert.Equal(t, "attempt-1", got.ID)
		assert.Equal(t, "My conflict", got.Payload.ConflictDescription)
		assert.Equal(t, domain.MediatorNeutral, got.Payload.MediatorPreference)
		assert.Equal(t, domain.StatusSuccess, got.Outcome.Status)
		assert.Equal(t, "talk first", got.Outcome.Message)
		assert.True(t, got.StartedAt.Equal(started))
	})

	t.Run("Save Overwrites", func(t *testing.T) {
		history := domain.NewHistory(pageID)
		history.Attempts = []domain.Attempt{{ID: "a"}, {ID: "b"}}
		require.NoError(t, store.Save(ctx, pageID, history))

		loaded, err := store.Load(ctx, pageID)
		require.NoError(t, err)
		assert.Len(t, loaded.Attempts, 2)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+pageID)
		assert.ErrorIs(t, err, domain.ErrHistoryNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, pageID, domain.NewHistory(pageID))
		require.NoError(t, err)

		err = store.Delete(ctx, pageID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, pageID)
		assert.ErrorIs(t, err, domain.ErrHistoryNotFound, "Load after Delete should return ErrHistoryNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := pageID + "-1"
		id2 := pageID + "-2"
		_ = store.Save(ctx, id1, domain.NewHistory(id1))
		_ = store.Save(ctx, id2, domain.NewHistory(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		pages, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, pages, id1)
		assert.Contains(t, pages, id2)
	})
}
