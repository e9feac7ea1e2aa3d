package domain

// SubmissionStatus is a state of the submission state machine.
type SubmissionStatus string

const (
	StatusIdle    SubmissionStatus = "idle"
	StatusLoading SubmissionStatus = "loading"
	StatusSuccess SubmissionStatus = "success"
	StatusError   SubmissionStatus = "error"
)

// Resolved reports whether s is one of the two outcomes a submit can end in.
func (s SubmissionStatus) Resolved() bool {
	return s == StatusSuccess || s == StatusError
}

// SubmissionState is the display state of a page: a status and an optional message.
type SubmissionState struct {
	Status  SubmissionStatus `json:"status"`
	Message *string          `json:"message"`
}

// IdleState is the state of a freshly mounted page.
func IdleState() SubmissionState {
	return SubmissionState{Status: StatusIdle}
}

// Text returns the message or "" when there is none.
func (s SubmissionState) Text() string {
	if s.Message == nil {
		return ""
	}
	return *s.Message
}

// ErrorKind classifies why a submission ended in the error state.
type ErrorKind string

const (
	KindNone             ErrorKind = ""
	KindTransportFailure ErrorKind = "transport_failure"
	KindServerRejection  ErrorKind = "server_rejection"
)

// Outcome is the resolved result of one submission attempt.
type Outcome struct {
	Status  SubmissionStatus `json:"status"`
	Message string           `json:"message"`
	Kind    ErrorKind        `json:"kind,omitempty"`
	// Degraded is set when the response body was malformed or lacked the expected
	// field and a fallback string was used instead.
	Degraded bool `json:"degraded,omitempty"`
	// HTTPStatus is zero when no response was obtained.
	HTTPStatus int `json:"http_status,omitempty"`
}

// State converts the outcome into the display state it produces.
func (o Outcome) State() SubmissionState {
	msg := o.Message
	return SubmissionState{Status: o.Status, Message: &msg}
}
