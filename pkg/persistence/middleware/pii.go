package middleware

import (
	"context"
	"fmt"
	"regexp"

	"github.com/aretw0/concord/pkg/domain"
	"github.com/aretw0/concord/pkg/ports"
	"github.com/mitchellh/mapstructure"
)

// Mask replaces a masked field value.
const Mask = "***"

type piiMiddleware struct {
	next     ports.HistoryStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks payload fields whose wire
// name (e.g. "partiesInvolved") matches one of the patterns.
func NewPIIMiddleware(patternStrings []string) Middleware {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		patterns[i] = regexp.MustCompile(p)
	}
	return func(next ports.HistoryStore) ports.HistoryStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}
}

func (m *piiMiddleware) Save(ctx context.Context, pageID string, history *domain.History) error {
	// Clone so the caller's history is untouched.
	cloned := *history
	cloned.Attempts = make([]domain.Attempt, len(history.Attempts))
	for i, a := range history.Attempts {
		masked, err := m.mask(a.Payload)
		if err != nil {
			return err
		}
		a.Payload = masked
		cloned.Attempts[i] = a
	}
	return m.next.Save(ctx, pageID, &cloned)
}

func (m *piiMiddleware) mask(p domain.OnboardingPayload) (domain.OnboardingPayload, error) {
	fields := map[string]any{}
	if err := mapstructure.Decode(p, &fields); err != nil {
		return p, fmt.Errorf("failed to flatten payload: %w", err)
	}
	changed := false
	for k, v := range fields {
		if s, ok := v.(string); !ok || s == "" {
			continue
		}
		for _, re := range m.patterns {
			if re.MatchString(k) {
				fields[k] = Mask
				changed = true
				break
			}
		}
	}
	if !changed {
		return p, nil
	}

	var out domain.OnboardingPayload
	if err := mapstructure.Decode(fields, &out); err != nil {
		return p, fmt.Errorf("failed to rebuild payload: %w", err)
	}
	return out, nil
}

func (m *piiMiddleware) Load(ctx context.Context, pageID string) (*domain.History, error) {
	return m.next.Load(ctx, pageID)
}

func (m *piiMiddleware) Delete(ctx context.Context, pageID string) error {
	return m.next.Delete(ctx, pageID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}
