package domain

import "errors"

// ErrPageNotFound is returned when a page ID is not mounted.
var ErrPageNotFound = errors.New("page not found")

// ErrHistoryNotFound is returned when no history exists for a page ID in the store.
var ErrHistoryNotFound = errors.New("history not found")

// ErrUnknownField is returned when an editor is asked to change a field it does not own.
var ErrUnknownField = errors.New("unknown field")

// ErrUnknownMediator is returned when a mediator style outside the closed set is selected.
var ErrUnknownMediator = errors.New("unknown mediator style")
