package domain

import (
	"errors"
	"fmt"
)

// Validation failures. Each one leaves the session where it was.
var (
	ErrNameRequired    = errors.New("name required")
	ErrAccessDenied    = errors.New("access denied")
	ErrIncorrectAnswer = errors.New("incorrect answer")
	ErrWrongStage      = errors.New("action not available in this stage")
)

// TransitionError records which action was refused and in which stage.
type TransitionError struct {
	Stage  Stage
	Action string
	Err    error
}

// Error implements the error interface.
func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s in stage %s: %v", e.Action, e.Stage, e.Err)
}

// Unwrap exposes the underlying validation error to errors.Is.
func (e *TransitionError) Unwrap() error { return e.Err }

// SnapshotNotFoundError indicates that no snapshot is stored under Key.
type SnapshotNotFoundError struct {
	Key string
}

// Error implements the error interface.
func (e *SnapshotNotFoundError) Error() string {
	return fmt.Sprintf("snapshot not found: key=%q", e.Key)
}
