package coordinator

import (
	"github.com/aretw0/concord/pkg/domain"
	"github.com/aretw0/concord/pkg/editor"
)

const (
	LabelSubmit     = "Submit Onboarding Data"
	LabelSubmitting = "Submitting..."
)

// Tone is the visual treatment of the result region.
type Tone string

const (
	ToneSuccess Tone = "success"
	ToneError   Tone = "error"
)

// Section is one rendered field group.
type Section struct {
	Title  string         `json:"title"`
	Fields []editor.Field `json:"fields,omitempty"`
}

// Button is the submit control.
type Button struct {
	Label    string `json:"label"`
	Disabled bool   `json:"disabled"`
}

// Result is the message region under the button.
type Result struct {
	Tone    Tone   `json:"tone"`
	Message string `json:"message"`
}

// View is the front-end independent rendering of a page.
type View struct {
	PageID     string                  `json:"page_id,omitempty"`
	Status     domain.SubmissionStatus `json:"status"`
	Contextual Section                 `json:"contextual"`
	Mediator   Section                 `json:"mediator"`
	Options    []editor.MediatorChoice `json:"mediator_options"`
	Goals      Section                 `json:"goals"`
	Button     Button                  `json:"button"`
	// Result is nil when there is no message to show.
	Result *Result `json:"result,omitempty"`
}

// Present renders a form and its submission state.
func Present(form domain.Form, state domain.SubmissionState) View {
	ctx := editor.ContextualEditor{Value: form.Contextual}
	med := editor.MediatorSelector{Selected: form.Mediator}
	goals := editor.GoalEditor{Value: form.Goals}

	v := View{
		Status:     state.Status,
		Contextual: Section{Title: ctx.Title(), Fields: ctx.Fields()},
		Mediator:   Section{Title: med.Title()},
		Options:    med.Options(),
		Goals:      Section{Title: goals.Title(), Fields: goals.Fields()},
		Button:     Button{Label: LabelSubmit},
	}
	if state.Status == domain.StatusLoading {
		v.Button = Button{Label: LabelSubmitting, Disabled: true}
	}
	if state.Message != nil {
		tone := ToneError
		if state.Status == domain.StatusSuccess {
			tone = ToneSuccess
		}
		v.Result = &Result{Tone: tone, Message: *state.Message}
	}
	return v
}
