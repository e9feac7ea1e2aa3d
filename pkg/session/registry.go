package session

import (
	"context"
	"log/slog"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aretw0/concord/internal/logging"
	"github.com/aretw0/concord/pkg/coordinator"
	"github.com/aretw0/concord/pkg/domain"
	"github.com/aretw0/concord/pkg/ports"
	"github.com/google/uuid"
)

// DefaultPageTTL is how long an untouched page stays mounted.
const DefaultPageTTL = 30 * time.Minute

// Page is one mounted onboarding page.
type Page struct {
	ID          string
	MountedAt   time.Time
	Coordinator *coordinator.Coordinator

	lastSeen atomic.Int64 // unix nanos
}

// LastSeen is the last time the page was mounted or fetched.
func (p *Page) LastSeen() time.Time {
	return time.Unix(0, p.lastSeen.Load())
}

func (p *Page) touch(now time.Time) {
	p.lastSeen.Store(now.UnixNano())
}

// Registry holds the pages mounted in this process.
type Registry struct {
	client ports.GuidanceClient

	mu    sync.RWMutex
	pages map[string]*Page

	ttl    time.Duration
	hooks  []domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
}

// RegistryOption configures a Registry.
type RegistryOption func(*Registry)

// WithTTL sets the idle time after which Sweep discards a page. Zero disables expiry.
func WithTTL(ttl time.Duration) RegistryOption {
	return func(r *Registry) {
		r.ttl = ttl
	}
}

// WithPageHooks adds lifecycle hooks to every page mounted afterwards.
func WithPageHooks(h domain.LifecycleHooks) RegistryOption {
	return func(r *Registry) {
		r.hooks = append(r.hooks, h)
	}
}

// WithRegistryLogger configures the logger shared by the registry and its pages.
func WithRegistryLogger(logger *slog.Logger) RegistryOption {
	return func(r *Registry) {
		r.logger = logger
	}
}

// WithRegistryClock overrides time.Now.
func WithRegistryClock(now func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.now = now
	}
}

// NewRegistry creates an empty registry whose pages submit through client.
func NewRegistry(client ports.GuidanceClient, opts ...RegistryOption) *Registry {
	r := &Registry{
		client: client,
		pages:  make(map[string]*Page),
		ttl:    DefaultPageTTL,
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Mount creates a page with a new identifier, empty sub-entities and the idle state.
func (r *Registry) Mount() *Page {
	id := uuid.NewString()
	opts := []coordinator.Option{
		coordinator.WithPageID(id),
		coordinator.WithLogger(r.logger),
		coordinator.WithClock(r.now),
	}
	for _, h := range r.hooks {
		opts = append(opts, coordinator.WithHooks(h))
	}

	now := r.now()
	p := &Page{
		ID:          id,
		MountedAt:   now,
		Coordinator: coordinator.New(r.client, opts...),
	}
	p.touch(now)

	r.mu.Lock()
	r.pages[id] = p
	r.mu.Unlock()

	r.logger.Debug("page mounted", "page_id", id)
	return p
}

// Get returns a mounted page and refreshes its idle timer.
func (r *Registry) Get(id string) (*Page, error) {
	r.mu.RLock()
	p, ok := r.pages[id]
	r.mu.RUnlock()
	if !ok {
		return nil, domain.ErrPageNotFound
	}
	p.touch(r.now())
	return p, nil
}

// Unmount discards a page. In-flight submits of the page still resolve
// but nobody observes them.
func (r *Registry) Unmount(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pages[id]; !ok {
		return domain.ErrPageNotFound
	}
	delete(r.pages, id)
	r.logger.Debug("page unmounted", "page_id", id)
	return nil
}

// Len returns the number of mounted pages.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.pages)
}

// IDs lists the mounted page identifiers in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	ids := make([]string, 0, len(r.pages))
	for id := range r.pages {
		ids = append(ids, id)
	}
	r.mu.RUnlock()
	sort.Strings(ids)
	return ids
}

// Sweep unmounts pages idle for longer than the TTL and returns how many were removed.
func (r *Registry) Sweep() int {
	if r.ttl <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.ttl)

	r.mu.Lock()
	defer r.mu.Unlock()
	removed := 0
	for id, p := range r.pages {
		if p.LastSeen().Before(cutoff) {
			delete(r.pages, id)
			removed++
		}
	}
	if removed > 0 {
		r.logger.Info("expired idle pages", "count", removed)
	}
	return removed
}

// Run sweeps every interval until ctx is done.
func (r *Registry) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			r.Sweep()
		}
	}
}
