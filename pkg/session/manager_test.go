package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/concord/pkg/domain"
	"github.com/aretw0/concord/pkg/ports"
	"github.com/aretw0/concord/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke lost updates if locking is missing.
type SlowStore struct {
	data map[string]domain.History
	mu   sync.Mutex
}

func (s *SlowStore) Save(ctx context.Context, pageID string, h *domain.History) error {
	time.Sleep(2 * time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.data == nil {
		s.data = make(map[string]domain.History)
	}
	copied := *h
	copied.Attempts = append([]domain.Attempt(nil), h.Attempts...)
	s.data[pageID] = copied
	return nil
}

func (s *SlowStore) Load(ctx context.Context, pageID string) (*domain.History, error) {
	time.Sleep(2 * time.Millisecond)
	s.mu.Lock()
	defer s.mu.Unlock()
	if h, ok := s.data[pageID]; ok {
		h.Attempts = append([]domain.Attempt(nil), h.Attempts...)
		return &h, nil
	}
	return nil, domain.ErrHistoryNotFound
}

func (s *SlowStore) Delete(ctx context.Context, pageID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.data, pageID)
	return nil
}

func (s *SlowStore) List(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var ids []string
	for id := range s.data {
		ids = append(ids, id)
	}
	return ids, nil
}

func TestManager_ConcurrentAppendKeepsEveryAttempt(t *testing.T) {
	manager := session.NewManager(&SlowStore{})
	ctx := context.Background()
	id := "race-test"

	var wg sync.WaitGroup
	const writers = 20
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(seq int) {
			defer wg.Done()
			err := manager.Append(ctx, id, domain.Attempt{Seq: uint64(seq)})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	h, err := manager.Load(ctx, id)
	require.NoError(t, err)
	assert.Len(t, h.Attempts, writers)
	for _, a := range h.Attempts {
		assert.NotEmpty(t, a.ID, "attempt ids are assigned")
	}
	assert.False(t, h.UpdatedAt.IsZero())
}

func TestManager_DeleteAndList(t *testing.T) {
	manager := session.NewManager(&SlowStore{})
	ctx := context.Background()

	require.NoError(t, manager.Append(ctx, "a", domain.Attempt{}))
	require.NoError(t, manager.Append(ctx, "b", domain.Attempt{}))

	ids, err := manager.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, ids)

	require.NoError(t, manager.Delete(ctx, "a"))
	_, err = manager.Load(ctx, "a")
	assert.ErrorIs(t, err, domain.ErrHistoryNotFound)
}

type recordingLocker struct {
	mu      sync.Mutex
	keys    []string
	unlocks int
	fail    bool
}

func (l *recordingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	if l.fail {
		return nil, errors.New("redis down")
	}
	l.mu.Lock()
	l.keys = append(l.keys, key)
	l.mu.Unlock()
	return func(context.Context) error {
		l.mu.Lock()
		l.unlocks++
		l.mu.Unlock()
		return nil
	}, nil
}

func TestManager_UsesDistributedLocker(t *testing.T) {
	locker := &recordingLocker{}
	manager := session.NewManager(&SlowStore{}, session.WithLocker(locker))

	require.NoError(t, manager.Append(context.Background(), "page-1", domain.Attempt{}))
	assert.Equal(t, []string{"page-1"}, locker.keys)
	assert.Equal(t, 1, locker.unlocks)

	locker.fail = true
	err := manager.Append(context.Background(), "page-1", domain.Attempt{})
	assert.ErrorContains(t, err, "failed to acquire distributed lock")
}

func TestManager_HooksRecordResolvedAttempts(t *testing.T) {
	store := &SlowStore{}
	manager := session.NewManager(store)
	hooks := manager.Hooks()

	started := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	hooks.OnResolve(ctx, &domain.ResolveEvent{
		EventBase: domain.EventBase{PageID: "p1", Attempt: 3},
		Payload:   domain.OnboardingPayload{DesiredOutcome: "quiet"},
		Outcome:   domain.Outcome{Status: domain.StatusSuccess, Message: "ok"},
		StartedAt: started,
		Duration:  2 * time.Second,
	})
	// pages without an id are not recorded
	hooks.OnResolve(context.Background(), &domain.ResolveEvent{})

	h, err := manager.Load(context.Background(), "p1")
	require.NoError(t, err)
	require.Len(t, h.Attempts, 1)
	a := h.Attempts[0]
	assert.Equal(t, uint64(3), a.Seq)
	assert.Equal(t, "quiet", a.Payload.DesiredOutcome)
	assert.Equal(t, started.Add(2*time.Second), a.FinishedAt)

	ids, _ := manager.List(context.Background())
	assert.Equal(t, []string{"p1"}, ids)
}
