package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/aretw0/concord/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestForm_PayloadMergesAllSubEntities(t *testing.T) {
	form := domain.Form{
		Contextual: domain.ContextualInfo{
			ConflictDescription:     "noise at night",
			PartiesInvolved:         "me, neighbour",
			RelationshipWithParties: "neighbours",
			AttemptsMade:            "a note",
		},
		Mediator: domain.MediatorEmpathetic,
		Goals: domain.GoalInfo{
			DesiredOutcome:           "quiet after 22h",
			WillingToCompromise:      "weekends",
			IdealResolutionTimeframe: "a month",
		},
	}

	p := form.Payload()

	assert.Equal(t, "noise at night", p.ConflictDescription)
	assert.Equal(t, "me, neighbour", p.PartiesInvolved)
	assert.Equal(t, "neighbours", p.RelationshipWithParties)
	assert.Equal(t, "a note", p.AttemptsMade)
	assert.Equal(t, domain.MediatorEmpathetic, p.MediatorPreference)
	assert.Equal(t, "quiet after 22h", p.DesiredOutcome)
	assert.Equal(t, "weekends", p.WillingToCompromise)
	assert.Equal(t, "a month", p.IdealResolutionTimeframe)
}

func TestEnvelope_WireShape(t *testing.T) {
	// All fields empty must still produce all 8 keys, in order.
	data, err := json.Marshal(domain.NewEnvelope(domain.Form{}.Payload()))
	require.NoError(t, err)

	want := `{"onboarding_data":{"conflictDescription":"","partiesInvolved":"","relationshipWithParties":"","attemptsMade":"","mediatorPreference":"","desiredOutcome":"","willingToCompromise":"","idealResolutionTimeframe":""}}`
	assert.Equal(t, want, string(data))
}

func TestMediatorPreference_Valid(t *testing.T) {
	for _, opt := range domain.MediatorOptions() {
		assert.True(t, opt.ID.Valid(), opt.ID)
	}
	assert.True(t, domain.MediatorUnselected.Valid())
	assert.False(t, domain.MediatorPreference("aggressive").Valid())
}

func TestMediatorOptions_ReturnsCopy(t *testing.T) {
	opts := domain.MediatorOptions()
	require.Len(t, opts, 3)
	opts[0].Label = "changed"

	assert.Equal(t, "Neutral", domain.MediatorOptions()[0].Label)
	assert.Equal(t, []domain.MediatorPreference{"neutral", "empathetic", "direct"},
		[]domain.MediatorPreference{opts[0].ID, opts[1].ID, opts[2].ID})
}

func TestGuidanceResponse_OK(t *testing.T) {
	assert.True(t, (&domain.GuidanceResponse{StatusCode: 200}).OK())
	assert.True(t, (&domain.GuidanceResponse{StatusCode: 204}).OK())
	assert.False(t, (&domain.GuidanceResponse{StatusCode: 302}).OK())
	assert.False(t, (&domain.GuidanceResponse{StatusCode: 500}).OK())
}
