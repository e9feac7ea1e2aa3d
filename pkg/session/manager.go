package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/concord/internal/logging"
	"github.com/aretw0/concord/pkg/domain"
	"github.com/aretw0/concord/pkg/ports"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a distributed history lock is held.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates history access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.HistoryStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker  ports.DistributedLocker // Optional distributed locker
	lockTTL time.Duration
	logger  *slog.Logger
	now     func() time.Time
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a history Manager over the given store.
func NewManager(store ports.HistoryStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(pageID) after unlocking.
func (m *Manager) acquire(pageID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[pageID]
	if !exists {
		entry = &lockEntry{}
		m.locks[pageID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(pageID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[pageID]
	if !exists {
		return
	}
	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, pageID)
	}
}

// Append adds one resolved attempt to the page history, creating it if needed.
func (m *Manager) Append(ctx context.Context, pageID string, attempt domain.Attempt) error {
	return m.WithLock(ctx, pageID, func(ctx context.Context) error {
		history, err := m.store.Load(ctx, pageID)
		if errors.Is(err, domain.ErrHistoryNotFound) {
			history = domain.NewHistory(pageID)
		} else if err != nil {
			return fmt.Errorf("failed to load history: %w", err)
		}

		if attempt.ID == "" {
			attempt.ID = uuid.NewString()
		}
		history.Attempts = append(history.Attempts, attempt)
		history.UpdatedAt = m.now().UTC()

		if err := m.store.Save(ctx, pageID, history); err != nil {
			return fmt.Errorf("failed to save history: %w", err)
		}
		return nil
	})
}

// Load retrieves the history of a page.
func (m *Manager) Load(ctx context.Context, pageID string) (*domain.History, error) {
	var history *domain.History
	err := m.WithLock(ctx, pageID, func(ctx context.Context) error {
		var err error
		history, err = m.store.Load(ctx, pageID)
		return err
	})
	return history, err
}

// Delete removes the history of a page.
func (m *Manager) Delete(ctx context.Context, pageID string) error {
	return m.WithLock(ctx, pageID, func(ctx context.Context) error {
		return m.store.Delete(ctx, pageID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying history store.
func (m *Manager) Store() ports.HistoryStore {
	return m.store
}

// WithLock executes a function while holding the lock for the page.
func (m *Manager) WithLock(ctx context.Context, pageID string, fn func(context.Context) error) error {
	entry := m.acquire(pageID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(pageID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, pageID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"page_id", pageID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}

// Hooks returns lifecycle hooks that record every resolved attempt.
// Recording failures are logged and never affect the page.
func (m *Manager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnResolve: func(ctx context.Context, e *domain.ResolveEvent) {
			if e.PageID == "" {
				return
			}
			attempt := domain.Attempt{
				Seq:        e.Attempt,
				Payload:    e.Payload,
				Outcome:    e.Outcome,
				StartedAt:  e.StartedAt,
				FinishedAt: e.StartedAt.Add(e.Duration),
			}
			// The request that triggered the submit may already be gone.
			ctx = context.WithoutCancel(ctx)
			if err := m.Append(ctx, e.PageID, attempt); err != nil {
				m.logger.Error("Failed to record submission", "page_id", e.PageID, "attempt", e.Attempt, "err", err)
			}
		},
	}
}
