package editor

import "github.com/aretw0/concord/pkg/domain"

// ContextualEditor edits the "Contextual Questions" section.
type ContextualEditor struct {
	Value    domain.ContextualInfo
	OnChange func(domain.ContextualInfo)
}

// Title is the section heading.
func (e ContextualEditor) Title() string { return "Contextual Questions" }

// Edit replaces one field and reports the whole new value to OnChange.
func (e ContextualEditor) Edit(field, value string) error {
	next, err := replaceField(e.Value, field, value)
	if err != nil {
		return err
	}
	if e.OnChange != nil {
		e.OnChange(next)
	}
	return nil
}

// Fields returns the rendered fields in display order.
func (e ContextualEditor) Fields() []Field {
	return describe(e.Value, contextualFields)
}
