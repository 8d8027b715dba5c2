package artist

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation marks user input that cannot be stored as-is.
	ErrValidation = errors.New("invalid persona")
	// ErrDuplicateID is returned when an id is already used by another persona.
	ErrDuplicateID = errors.New("persona id already exists")
	// ErrNotFound is returned when no persona has the requested id.
	ErrNotFound = errors.New("persona not found")
	// ErrNoDocument is returned by a Backend when nothing has been saved yet.
	ErrNoDocument = errors.New("persona document does not exist")
)

// DocumentError reports a persona document that exists but cannot be parsed.
type DocumentError struct {
	Location string
	Err      error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("malformed persona document %s: %v", e.Location, e.Err)
}

func (e *DocumentError) Unwrap() error {
	return e.Err
}

// HookError records a post-save hook that failed. The save itself stands.
type HookError struct {
	Hook string
	Err  error
}

func (e *HookError) Error() string {
	return fmt.Sprintf("%s hook: %v", e.Hook, e.Err)
}

func (e *HookError) Unwrap() error {
	return e.Err
}
