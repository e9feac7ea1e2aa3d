package editor

import (
	"fmt"

	"github.com/aretw0/concord/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// Field describes one editable text field for rendering.
type Field struct {
	Name      string `json:"name"`
	Label     string `json:"label"`
	Value     string `json:"value"`
	Multiline bool   `json:"multiline"`
}

type fieldSpec struct {
	name      string
	label     string
	multiline bool
}

// limit is the character budget of the field before any override.
func (s fieldSpec) limit() int {
	if s.multiline {
		return MaxAnswerChars
	}
	return MaxShortAnswerChars
}

var contextualFields = []fieldSpec{
	{"conflictDescription", "Briefly describe the conflict:", true},
	{"partiesInvolved", "Who is involved? (e.g., names, roles)", false},
	{"relationshipWithParties", "What is your relationship with the other party/parties?", false},
	{"attemptsMade", "What have you tried so far to resolve the conflict?", true},
}

var goalFields = []fieldSpec{
	{"desiredOutcome", "What would a successful resolution look like for you?", true},
	{"willingToCompromise", "What are you willing to compromise on?", true},
	{"idealResolutionTimeframe", "What is your ideal timeframe for resolving this?", false},
}

func lookupField(name string) (fieldSpec, bool) {
	for _, group := range [][]fieldSpec{contextualFields, goalFields} {
		for _, s := range group {
			if s.name == name {
				return s, true
			}
		}
	}
	return fieldSpec{}, false
}

// toMap flattens a sub-entity into its wire-named fields.
func toMap(v any) (map[string]any, error) {
	out := map[string]any{}
	if err := mapstructure.Decode(v, &out); err != nil {
		return nil, fmt.Errorf("failed to flatten %T: %w", v, err)
	}
	return out, nil
}

// replaceField returns a copy of current with exactly one field set to value.
func replaceField[T any](current T, field, value string) (T, error) {
	var next T
	m, err := toMap(current)
	if err != nil {
		return next, err
	}
	if _, ok := m[field]; !ok {
		return next, fmt.Errorf("%w: %q", domain.ErrUnknownField, field)
	}
	m[field] = value

	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &next,
		ErrorUnused: true,
	})
	if err != nil {
		return next, err
	}
	if err := dec.Decode(m); err != nil {
		return next, fmt.Errorf("failed to rebuild %T: %w", next, err)
	}
	return next, nil
}

func describe(v any, specs []fieldSpec) []Field {
	m, err := toMap(v)
	if err != nil {
		return nil
	}
	out := make([]Field, 0, len(specs))
	for _, s := range specs {
		val, _ := m[s.name].(string)
		out = append(out, Field{Name: s.name, Label: s.label, Value: val, Multiline: s.multiline})
	}
	return out
}

// FieldNames lists the editable fields of a group ("contextual" or "goals").
func FieldNames(group string) []string {
	var specs []fieldSpec
	switch group {
	case "contextual":
		specs = contextualFields
	case "goals":
		specs = goalFields
	}
	names := make([]string, len(specs))
	for i, s := range specs {
		names[i] = s.name
	}
	return names
}
