package editor

import (
	"fmt"

	"github.com/aretw0/concord/pkg/domain"
)

// MediatorChoice is a mediator option together with its selection flag.
type MediatorChoice struct {
	domain.MediatorOption
	Selected bool `json:"selected"`
}

// MediatorSelector is the single-choice "Choose Your Mediator Style" section.
type MediatorSelector struct {
	Selected domain.MediatorPreference
	OnSelect func(domain.MediatorPreference)
}

// Title is the section heading.
func (s MediatorSelector) Title() string { return "Choose Your Mediator Style" }

// Options lists the styles in display order; at most one is marked selected.
func (s MediatorSelector) Options() []MediatorChoice {
	opts := domain.MediatorOptions()
	out := make([]MediatorChoice, len(opts))
	for i, o := range opts {
		out[i] = MediatorChoice{MediatorOption: o, Selected: o.ID == s.Selected}
	}
	return out
}

// Select reports the chosen identifier to OnSelect.
func (s MediatorSelector) Select(id domain.MediatorPreference) error {
	if id == domain.MediatorUnselected || !id.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnknownMediator, id)
	}
	if s.OnSelect != nil {
		s.OnSelect(id)
	}
	return nil
}
