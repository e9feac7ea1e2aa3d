package domain

import "time"

// Attempt is one resolved submission of a page.
type Attempt struct {
	ID         string            `json:"id"`
	Seq        uint64            `json:"seq"`
	Payload    OnboardingPayload `json:"payload"`
	Outcome    Outcome           `json:"outcome"`
	StartedAt  time.Time         `json:"started_at"`
	FinishedAt time.Time         `json:"finished_at"`
}

// History is the audit trail of a page. It is never used to restore form state.
type History struct {
	PageID    string    `json:"page_id"`
	Attempts  []Attempt `json:"attempts,omitempty"`
	UpdatedAt time.Time `json:"updated_at"`

	// Sealed carries the encrypted form of the history when an encrypting store
	// middleware is in use. It is empty otherwise.
	Sealed string `json:"sealed,omitempty"`
}

// NewHistory creates an empty history for a page.
func NewHistory(pageID string) *History {
	return &History{PageID: pageID}
}

// Last returns the most recent attempt, if any.
func (h *History) Last() (Attempt, bool) {
	if len(h.Attempts) == 0 {
		return Attempt{}, false
	}
	return h.Attempts[len(h.Attempts)-1], true
}
