package domain

// OnboardingPayload is the flat union of all form fields.
// Field order is the wire order.
type OnboardingPayload struct {
	ConflictDescription      string             `json:"conflictDescription" mapstructure:"conflictDescription"`
	PartiesInvolved          string             `json:"partiesInvolved" mapstructure:"partiesInvolved"`
	RelationshipWithParties  string             `json:"relationshipWithParties" mapstructure:"relationshipWithParties"`
	AttemptsMade             string             `json:"attemptsMade" mapstructure:"attemptsMade"`
	MediatorPreference       MediatorPreference `json:"mediatorPreference" mapstructure:"mediatorPreference"`
	DesiredOutcome           string             `json:"desiredOutcome" mapstructure:"desiredOutcome"`
	WillingToCompromise      string             `json:"willingToCompromise" mapstructure:"willingToCompromise"`
	IdealResolutionTimeframe string             `json:"idealResolutionTimeframe" mapstructure:"idealResolutionTimeframe"`
}

// Envelope wraps the payload under the single key expected by the guidance service.
type Envelope struct {
	OnboardingData OnboardingPayload `json:"onboarding_data"`
}

// NewEnvelope wraps p for transport.
func NewEnvelope(p OnboardingPayload) Envelope {
	return Envelope{OnboardingData: p}
}

// GuidanceResponse is a completed HTTP exchange with the guidance service.
// Body is kept raw so the coordinator decides how to degrade on malformed content.
type GuidanceResponse struct {
	StatusCode int
	Body       []byte
}

// OK reports whether the status is in the success range.
func (r *GuidanceResponse) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode <= 299
}
