package domain

// ContextualInfo describes the conflict itself. All fields are free text.
type ContextualInfo struct {
	ConflictDescription     string `json:"conflictDescription" yaml:"conflictDescription" mapstructure:"conflictDescription"`
	PartiesInvolved         string `json:"partiesInvolved" yaml:"partiesInvolved" mapstructure:"partiesInvolved"`
	RelationshipWithParties string `json:"relationshipWithParties" yaml:"relationshipWithParties" mapstructure:"relationshipWithParties"`
	AttemptsMade            string `json:"attemptsMade" yaml:"attemptsMade" mapstructure:"attemptsMade"`
}

// GoalInfo describes what the user wants out of the mediation. All fields are free text.
type GoalInfo struct {
	DesiredOutcome           string `json:"desiredOutcome" yaml:"desiredOutcome" mapstructure:"desiredOutcome"`
	WillingToCompromise      string `json:"willingToCompromise" yaml:"willingToCompromise" mapstructure:"willingToCompromise"`
	IdealResolutionTimeframe string `json:"idealResolutionTimeframe" yaml:"idealResolutionTimeframe" mapstructure:"idealResolutionTimeframe"`
}

// MediatorPreference is the selected mediator style. The empty string means unselected.
type MediatorPreference string

const (
	MediatorUnselected MediatorPreference = ""
	MediatorNeutral    MediatorPreference = "neutral"
	MediatorEmpathetic MediatorPreference = "empathetic"
	MediatorDirect     MediatorPreference = "direct"
)

// MediatorOption is one entry of the fixed mediator style list.
type MediatorOption struct {
	ID          MediatorPreference `json:"id"`
	Label       string             `json:"label"`
	Description string             `json:"description"`
}

var mediatorOptions = []MediatorOption{
	{ID: MediatorNeutral, Label: "Neutral", Description: "Focuses on fairness and impartiality."},
	{ID: MediatorEmpathetic, Label: "Empathetic", Description: "Prioritizes understanding feelings and perspectives."},
	{ID: MediatorDirect, Label: "Direct", Description: "Offers more straightforward guidance and suggestions."},
}

// MediatorOptions returns the closed set of mediator styles in display order.
// The returned slice is a copy.
func MediatorOptions() []MediatorOption {
	out := make([]MediatorOption, len(mediatorOptions))
	copy(out, mediatorOptions)
	return out
}

// Valid reports whether p is one of the known styles or unselected.
func (p MediatorPreference) Valid() bool {
	if p == MediatorUnselected {
		return true
	}
	for _, opt := range mediatorOptions {
		if opt.ID == p {
			return true
		}
	}
	return false
}

// Form holds the three sub-entities of one onboarding page.
// It is a value type: copies never alias each other.
type Form struct {
	Contextual ContextualInfo     `json:"contextual" yaml:"contextual"`
	Mediator   MediatorPreference `json:"mediatorPreference" yaml:"mediatorPreference"`
	Goals      GoalInfo           `json:"goals" yaml:"goals"`
}

// Payload merges the current sub-entities into the flat record sent to the guidance service.
func (f Form) Payload() OnboardingPayload {
	return OnboardingPayload{
		ConflictDescription:      f.Contextual.ConflictDescription,
		PartiesInvolved:          f.Contextual.PartiesInvolved,
		RelationshipWithParties:  f.Contextual.RelationshipWithParties,
		AttemptsMade:             f.Contextual.AttemptsMade,
		MediatorPreference:       f.Mediator,
		DesiredOutcome:           f.Goals.DesiredOutcome,
		WillingToCompromise:      f.Goals.WillingToCompromise,
		IdealResolutionTimeframe: f.Goals.IdealResolutionTimeframe,
	}
}
