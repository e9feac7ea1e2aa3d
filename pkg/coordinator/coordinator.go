package coordinator

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/concord/internal/logging"
	"github.com/aretw0/concord/pkg/domain"
	"github.com/aretw0/concord/pkg/editor"
	"github.com/aretw0/concord/pkg/ports"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "github.com/aretw0/concord/pkg/coordinator"

// Coordinator holds the form and submission state of one page.
// It is safe for concurrent use.
type Coordinator struct {
	mu    sync.Mutex
	form  domain.Form
	state domain.SubmissionState
	seq   uint64

	client ports.GuidanceClient
	pageID string
	hooks  []domain.LifecycleHooks
	logger *slog.Logger
	now    func() time.Time
	tracer trace.Tracer
}

// Editors are the three field-group editors bound to a coordinator.
type Editors struct {
	Contextual editor.ContextualEditor
	Mediator   editor.MediatorSelector
	Goals      editor.GoalEditor
}

// New creates a coordinator in the idle state with empty sub-entities.
func New(client ports.GuidanceClient, opts ...Option) *Coordinator {
	c := &Coordinator{
		client: client,
		state:  domain.IdleState(),
		logger: logging.NewNop(),
		now:    time.Now,
		tracer: otel.GetTracerProvider().Tracer(tracerName),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PageID returns the identifier given with WithPageID.
func (c *Coordinator) PageID() string { return c.pageID }

// SetContextual replaces the contextual sub-entity.
func (c *Coordinator) SetContextual(v domain.ContextualInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Contextual = v
}

// SetMediator replaces the mediator preference.
func (c *Coordinator) SetMediator(v domain.MediatorPreference) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Mediator = v
}

// SetGoals replaces the goals sub-entity.
func (c *Coordinator) SetGoals(v domain.GoalInfo) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.form.Goals = v
}

// EditContextual edits one contextual field against the latest value.
func (c *Coordinator) EditContextual(field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ed := editor.ContextualEditor{
		Value:    c.form.Contextual,
		OnChange: func(v domain.ContextualInfo) { c.form.Contextual = v },
	}
	return ed.Edit(field, value)
}

// EditGoals edits one goals field against the latest value.
func (c *Coordinator) EditGoals(field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	ed := editor.GoalEditor{
		Value:    c.form.Goals,
		OnChange: func(v domain.GoalInfo) { c.form.Goals = v },
	}
	return ed.Edit(field, value)
}

// SelectMediator selects a mediator style by identifier.
func (c *Coordinator) SelectMediator(id domain.MediatorPreference) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	sel := editor.MediatorSelector{
		Selected: c.form.Mediator,
		OnSelect: func(v domain.MediatorPreference) { c.form.Mediator = v },
	}
	return sel.Select(id)
}

// Editors returns editors holding the current values and bound to the replace callbacks.
// Each editor reflects the values at the time of the call.
func (c *Coordinator) Editors() Editors {
	form := c.Form()
	return Editors{
		Contextual: editor.ContextualEditor{Value: form.Contextual, OnChange: c.SetContextual},
		Mediator:   editor.MediatorSelector{Selected: form.Mediator, OnSelect: c.SetMediator},
		Goals:      editor.GoalEditor{Value: form.Goals, OnChange: c.SetGoals},
	}
}

// Form returns a copy of the current form.
func (c *Coordinator) Form() domain.Form {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.form
}

// State returns the current submission state.
func (c *Coordinator) State() domain.SubmissionState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Payload derives the flat payload from the current form.
func (c *Coordinator) Payload() domain.OnboardingPayload {
	return c.Form().Payload()
}

// View renders the page as it is now.
func (c *Coordinator) View() View {
	c.mu.Lock()
	form, state := c.form, c.state
	c.mu.Unlock()
	v := Present(form, state)
	v.PageID = c.pageID
	return v
}

// Begin moves the page to loading and snapshots the payload for a new attempt.
// It returns the attempt number. Submit calls it; servers that answer before the
// call resolves use it directly together with Complete.
func (c *Coordinator) Begin(ctx context.Context) (uint64, domain.OnboardingPayload) {
	c.mu.Lock()
	c.seq++
	attempt := c.seq
	from := c.state.Status
	c.state = domain.SubmissionState{Status: domain.StatusLoading}
	payload := c.form.Payload()
	c.mu.Unlock()

	c.emitTransition(ctx, attempt, from, domain.SubmissionState{Status: domain.StatusLoading})
	return attempt, payload
}

// Complete performs the outbound call of an attempt started with Begin and
// stores its outcome.
func (c *Coordinator) Complete(ctx context.Context, attempt uint64, payload domain.OnboardingPayload) domain.SubmissionState {
	started := c.now()
	ctx, span := c.tracer.Start(ctx, "coordinator.submit",
		trace.WithAttributes(
			attribute.String("concord.page_id", c.pageID),
			attribute.Int64("concord.attempt", int64(attempt)),
			attribute.String("concord.mediator", string(payload.MediatorPreference)),
		),
	)
	defer span.End()

	for _, h := range c.hooks {
		if h.OnSubmit != nil {
			h.OnSubmit(ctx, &domain.SubmitEvent{
				EventBase: c.base(domain.EventSubmit, attempt),
				Payload:   payload,
			})
		}
	}
	c.logger.Debug("submitting onboarding data", "page_id", c.pageID, "attempt", attempt)

	resp, err := c.client.Submit(ctx, domain.NewEnvelope(payload))
	outcome := Resolve(resp, err)

	span.SetAttributes(
		attribute.String("concord.status", string(outcome.Status)),
		attribute.Int("http.response.status_code", outcome.HTTPStatus),
	)
	if outcome.Status == domain.StatusError {
		span.SetStatus(codes.Error, string(outcome.Kind))
		c.logger.Warn("submission failed", "page_id", c.pageID, "attempt", attempt,
			"kind", outcome.Kind, "status", outcome.HTTPStatus, "error", err)
	} else {
		c.logger.Info("submission succeeded", "page_id", c.pageID, "attempt", attempt,
			"degraded", outcome.Degraded)
	}

	final := outcome.State()
	c.mu.Lock()
	from := c.state.Status
	c.state = final
	c.mu.Unlock()

	c.emitTransition(ctx, attempt, from, final)
	for _, h := range c.hooks {
		if h.OnResolve != nil {
			h.OnResolve(ctx, &domain.ResolveEvent{
				EventBase: c.base(domain.EventResolve, attempt),
				Payload:   payload,
				Outcome:   outcome,
				StartedAt: started,
				Duration:  c.now().Sub(started),
			})
		}
	}
	return final
}

// Submit sends the current form to the guidance service and returns the resolved state.
func (c *Coordinator) Submit(ctx context.Context) domain.SubmissionState {
	attempt, payload := c.Begin(ctx)
	return c.Complete(ctx, attempt, payload)
}

func (c *Coordinator) base(t domain.EventType, attempt uint64) domain.EventBase {
	return domain.EventBase{Timestamp: c.now(), Type: t, PageID: c.pageID, Attempt: attempt}
}

func (c *Coordinator) emitTransition(ctx context.Context, attempt uint64, from domain.SubmissionStatus, to domain.SubmissionState) {
	for _, h := range c.hooks {
		if h.OnTransition != nil {
			h.OnTransition(ctx, &domain.TransitionEvent{
				EventBase: c.base(domain.EventTransition, attempt),
				From:      from,
				To:        to.Status,
				Message:   to.Message,
			})
		}
	}
}
