package ports

import (
	"context"

	"github.com/aretw0/concord/pkg/domain"
)

// GuidanceClient is the outbound collaborator of the submission coordinator.
type GuidanceClient interface {
	// Submit performs exactly one call carrying the envelope.
	// A non-nil error means the call could not complete and no response exists;
	// any completed exchange, whatever its status, is returned as a response.
	Submit(ctx context.Context, envelope domain.Envelope) (*domain.GuidanceResponse, error)
}

// GuidanceClientFunc adapts a function to GuidanceClient.
type GuidanceClientFunc func(ctx context.Context, envelope domain.Envelope) (*domain.GuidanceResponse, error)

// Submit calls f.
func (f GuidanceClientFunc) Submit(ctx context.Context, envelope domain.Envelope) (*domain.GuidanceResponse, error) {
	return f(ctx, envelope)
}
