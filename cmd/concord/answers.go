package main

import (
	"bytes"
	"fmt"
	"io"

	"github.com/agnivade/levenshtein"
	"github.com/aretw0/concord/pkg/domain"
	"github.com/aretw0/concord/pkg/editor"
	"gopkg.in/yaml.v3"
)

// maxSuggestDistance bounds how far a typo may be from a style to be suggested.
const maxSuggestDistance = 3

// readAnswers decodes an answers file into a form.
//
//	contextual:
//	  conflictDescription: ...
//	mediatorPreference: empathetic
//	goals:
//	  desiredOutcome: ...
func readAnswers(r io.Reader) (domain.Form, error) {
	var form domain.Form
	raw, err := io.ReadAll(r)
	if err != nil {
		return form, fmt.Errorf("read answers: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(&form); err != nil && err != io.EOF {
		return form, fmt.Errorf("parse answers: %w", err)
	}
	if err := sanitizeForm(&form); err != nil {
		return form, err
	}
	if !form.Mediator.Valid() {
		err := fmt.Errorf("%w: %q", domain.ErrUnknownMediator, form.Mediator)
		if s := suggestMediator(string(form.Mediator)); s != "" {
			err = fmt.Errorf("%w (did you mean %q?)", err, s)
		}
		return form, err
	}
	return form, nil
}

func sanitizeForm(form *domain.Form) error {
	fields := map[string]*string{
		"conflictDescription":      &form.Contextual.ConflictDescription,
		"partiesInvolved":          &form.Contextual.PartiesInvolved,
		"relationshipWithParties":  &form.Contextual.RelationshipWithParties,
		"attemptsMade":             &form.Contextual.AttemptsMade,
		"desiredOutcome":           &form.Goals.DesiredOutcome,
		"willingToCompromise":      &form.Goals.WillingToCompromise,
		"idealResolutionTimeframe": &form.Goals.IdealResolutionTimeframe,
	}
	for name, f := range fields {
		clean, err := editor.SanitizeField(name, *f)
		if err != nil {
			return fmt.Errorf("invalid answer: %w", err)
		}
		*f = clean
	}
	return nil
}

// suggestMediator returns the closest mediator style to s, or "" when none is close.
func suggestMediator(s string) string {
	best, bestDist := "", maxSuggestDistance+1
	for _, opt := range domain.MediatorOptions() {
		d := levenshtein.ComputeDistance(s, string(opt.ID))
		if d < bestDist {
			best, bestDist = string(opt.ID), d
		}
	}
	return best
}
