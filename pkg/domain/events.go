package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTransition EventType = "transition"
	EventSubmit     EventType = "submit"
	EventResolve    EventType = "resolve"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	PageID    string    `json:"page_id,omitempty"`
	Attempt   uint64    `json:"attempt"`
}

// TransitionEvent is emitted on every state change of a page.
type TransitionEvent struct {
	EventBase
	From    SubmissionStatus `json:"from"`
	To      SubmissionStatus `json:"to"`
	Message *string          `json:"message"`
}

// SubmitEvent is emitted right before the outbound call with the exact payload sent.
type SubmitEvent struct {
	EventBase
	Payload OnboardingPayload `json:"payload"`
}

// ResolveEvent is emitted once the outbound call has been classified.
type ResolveEvent struct {
	EventBase
	Payload   OnboardingPayload `json:"payload"`
	Outcome   Outcome           `json:"outcome"`
	StartedAt time.Time         `json:"started_at"`
	Duration  time.Duration     `json:"duration"`
}

// LifecycleHooks defines callbacks for coordinator observability.
// Nil callbacks are skipped.
type LifecycleHooks struct {
	OnTransition func(context.Context, *TransitionEvent)
	OnSubmit     func(context.Context, *SubmitEvent)
	OnResolve    func(context.Context, *ResolveEvent)
}

// ChainHooks fans every event out to each of the given hooks, in order.
func ChainHooks(hooks ...LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTransition: func(ctx context.Context, e *TransitionEvent) {
			for _, h := range hooks {
				if h.OnTransition != nil {
					h.OnTransition(ctx, e)
				}
			}
		},
		OnSubmit: func(ctx context.Context, e *SubmitEvent) {
			for _, h := range hooks {
				if h.OnSubmit != nil {
					h.OnSubmit(ctx, e)
				}
			}
		},
		OnResolve: func(ctx context.Context, e *ResolveEvent) {
			for _, h := range hooks {
				if h.OnResolve != nil {
					h.OnResolve(ctx, e)
				}
			}
		},
	}
}
