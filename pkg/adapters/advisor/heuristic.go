package advisor

import (
	"context"
	"fmt"
	"strings"

	"github.com/aretw0/concord/pkg/domain"
	"github.com/aretw0/concord/pkg/ports"
)

// Heuristic builds a short next step from the mediator style and the stated goals.
// It never calls out and never fails on well-formed data.
type Heuristic struct{}

var _ ports.Advisor = Heuristic{}

// NewHeuristic returns the offline advisor.
func NewHeuristic() Heuristic { return Heuristic{} }

var openers = map[domain.MediatorPreference]string{
	domain.MediatorNeutral:    "Start by writing down the facts both sides would agree on, without judging them.",
	domain.MediatorEmpathetic: "Start by naming how the situation makes you feel, and ask how it feels on the other side.",
	domain.MediatorDirect:     "Ask for a short, focused conversation and state plainly what you need to change.",
}

const defaultOpener = "Start by describing the situation in a few neutral sentences you could share with everyone involved."

// Advise implements ports.Advisor.
func (Heuristic) Advise(ctx context.Context, data map[string]any) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	get := func(key string) string {
		s, _ := data[key].(string)
		return strings.TrimSpace(s)
	}

	var b strings.Builder
	opener, ok := openers[domain.MediatorPreference(get("mediatorPreference"))]
	if !ok {
		opener = defaultOpener
	}
	b.WriteString(opener)

	if who := get("partiesInvolved"); who != "" {
		fmt.Fprintf(&b, " Keep %s in the loop from the first step.", who)
	}
	if tried := get("attemptsMade"); tried != "" {
		b.WriteString(" Since you have already tried something, mention what you learned from it rather than repeating it.")
	}
	if goal := get("desiredOutcome"); goal != "" {
		fmt.Fprintf(&b, "\n\nAim the conversation at your goal: %s.", strings.TrimSuffix(goal, "."))
	}
	if give := get("willingToCompromise"); give != "" {
		fmt.Fprintf(&b, " Offering to be flexible on %s early can build trust.", strings.TrimSuffix(give, "."))
	}
	if when := get("idealResolutionTimeframe"); when != "" {
		fmt.Fprintf(&b, " Agree on a check-in that fits your timeframe (%s).", when)
	}
	return b.String(), nil
}
