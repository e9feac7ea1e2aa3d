package ports

import "context"

// Advisor produces guidance text from onboarding data.
// Data is kept as a generic map because callers other than the web form
// (chat integrations, scripts) send their own keys.
type Advisor interface {
	Advise(ctx context.Context, data map[string]any) (string, error)
}
