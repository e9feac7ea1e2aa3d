package telemetry

import (
	"context"
	"log/slog"

	"github.com/aretw0/concord/pkg/domain"
)

// LogHooks logs every submission lifecycle event at debug level and every
// resolution at info level.
func LogHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.DebugContext(ctx, "state_transition",
				"page_id", e.PageID,
				"attempt", e.Attempt,
				"from", e.From,
				"to", e.To,
			)
		},
		OnSubmit: func(ctx context.Context, e *domain.SubmitEvent) {
			logger.DebugContext(ctx, "submit",
				"page_id", e.PageID,
				"attempt", e.Attempt,
				"mediator", e.Payload.MediatorPreference,
			)
		},
		OnResolve: func(ctx context.Context, e *domain.ResolveEvent) {
			logger.InfoContext(ctx, "resolve",
				"page_id", e.PageID,
				"attempt", e.Attempt,
				"status", e.Outcome.Status,
				"kind", e.Outcome.Kind,
				"degraded", e.Outcome.Degraded,
				"duration", e.Duration,
			)
		},
	}
}
