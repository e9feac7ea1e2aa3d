package coordinator

import (
	"log/slog"
	"time"

	"github.com/aretw0/concord/pkg/domain"
	"go.opentelemetry.io/otel/trace"
)

// Option defines a functional option for configuring the Coordinator.
type Option func(*Coordinator)

// WithPageID tags events, logs and spans with the page identifier.
func WithPageID(id string) Option {
	return func(c *Coordinator) {
		c.pageID = id
	}
}

// WithHooks registers lifecycle callbacks. Multiple calls are chained.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(c *Coordinator) {
		c.hooks = append(c.hooks, h)
	}
}

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

// WithClock overrides time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Coordinator) {
		c.now = now
	}
}

// WithTracerProvider sets the provider submit spans are started from.
// Defaults to the global provider.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(c *Coordinator) {
		c.tracer = tp.Tracer(tracerName)
	}
}

// WithForm seeds the initial form values.
func WithForm(f domain.Form) Option {
	return func(c *Coordinator) {
		c.form = f
	}
}
