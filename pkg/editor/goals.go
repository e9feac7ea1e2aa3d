package editor

import "github.com/aretw0/concord/pkg/domain"

// GoalEditor edits the "Define Your Goals" section.
type GoalEditor struct {
	Value    domain.GoalInfo
	OnChange func(domain.GoalInfo)
}

// Title is the section heading.
func (e GoalEditor) Title() string { return "Define Your Goals" }

// Edit replaces one field and reports the whole new value to OnChange.
func (e GoalEditor) Edit(field, value string) error {
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
func (e GoalEditor) Fields() []Field {
	return describe(e.Value, goalFields)
}
