package domain_test

import (
	"context"
	"testing"

	"github.com/aretw0/concord/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestChainHooks_FansOutInOrder(t *testing.T) {
	var calls []string
	first := domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) { calls = append(calls, "first:"+string(e.To)) },
	}
	second := domain.LifecycleHooks{
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) { calls = append(calls, "second:"+string(e.To)) },
		OnResolve:    func(ctx context.Context, e *domain.ResolveEvent) { calls = append(calls, "second:resolve") },
	}

	hooks := domain.ChainHooks(first, domain.LifecycleHooks{}, second)
	hooks.OnTransition(context.Background(), &domain.TransitionEvent{To: domain.StatusLoading})
	hooks.OnSubmit(context.Background(), &domain.SubmitEvent{})
	hooks.OnResolve(context.Background(), &domain.ResolveEvent{})

	assert.Equal(t, []string{"first:loading", "second:loading", "second:resolve"}, calls)
}

func TestOutcome_State(t *testing.T) {
	state := domain.Outcome{Status: domain.StatusError, Message: "Error: boom"}.State()

	assert.Equal(t, domain.StatusError, state.Status)
	assert.Equal(t, "Error: boom", state.Text())
	assert.True(t, state.Status.Resolved())
	assert.False(t, domain.StatusLoading.Resolved())
	assert.Equal(t, "", domain.IdleState().Text())
}
