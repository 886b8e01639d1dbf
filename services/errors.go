package services

import "errors"

// ErrNotFound covers both "does not exist" and "exists but is not
// yours"; callers must not be able to tell the two apart.
var ErrNotFound = errors.New("not found")

// ValidationError is malformed or out-of-range input. Surfaced verbatim.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErr(msg string) error { return &ValidationError{Message: msg} }

// ConflictError is an attempted duplicate (category name, email in use).
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

func conflictErr(msg string) error { return &ConflictError{Message: msg} }

// StateError is an operation the current data shape forbids: touching
// the Savings category, copying into a non-editable month, and so on.
type StateError struct {
	Message string
}

func (e *StateError) Error() string { return e.Message }

func stateErr(msg string) error { return &StateError{Message: msg} }
