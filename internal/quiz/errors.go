package quiz

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned when an operation is not permitted in
// the session's current phase.
var ErrInvalidTransition = errors.New("invalid transition")

// ErrAlreadyGraded is returned by Submit when the current item already has
// a final verdict. Each item is graded, and persisted, at most once.
var ErrAlreadyGraded = fmt.Errorf("item already graded: %w", ErrInvalidTransition)

// ErrNavigationInFlight is returned by Next or Previous when another
// navigation has not finished yet. The session is left unchanged.
var ErrNavigationInFlight = errors.New("navigation already in flight")

// TransitionError reports which operation was rejected and in what phase.
type TransitionError struct {
	Op    string
	Phase Phase
	Err   error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s in phase %s: %v", e.Op, e.Phase, e.Err)
}

func (e *TransitionError) Unwrap() error { return e.Err }

// ConfigError reports a malformed item found while building a session.
type ConfigError struct {
	Index  int
	ItemID string
	Err    error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("item %d (%q): %v", e.Index, e.ItemID, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }
