package statemachine

import (
	"errors"
	"fmt"
)

var (
	// ErrTransitionInProgress is returned when Transition is called while a
	// previous transition on the same machine has not finished. There is no
	// internal queue; callers needing ordered delivery must serialize.
	ErrTransitionInProgress = errors.New("transition already in progress")

	// ErrNilDefinition is returned when a machine is constructed without a
	// definition.
	ErrNilDefinition = errors.New("definition cannot be nil")
)

// NoTransitionError indicates the current state has no mapping for the
// fired event.
type NoTransitionError struct {
	State string
	Event string
}

func (e *NoTransitionError) Error() string {
	return fmt.Sprintf("no transition '%s' from state '%s'", e.Event, e.State)
}

// GuardRejectedError indicates a mapping exists but every candidate's guard
// evaluated false. Message, when set by the workflow author, is written for
// end-user display.
type GuardRejectedError struct {
	State   string
	Event   string
	Message string
}

func (e *GuardRejectedError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return fmt.Sprintf("transition '%s' from state '%s' rejected by guard", e.Event, e.State)
}

// InvalidDefinitionError indicates a resolved transition targets a state
// missing from the definition. This is a configuration defect, not a
// business rejection, and is logged at error severity by the machine.
type InvalidDefinitionError struct {
	State  string
	Event  string
	Target string
}

func (e *InvalidDefinitionError) Error() string {
	return fmt.Sprintf("transition '%s' from state '%s' targets unknown state '%s'", e.Event, e.State, e.Target)
}

// ActionError wraps a failure from an exit hook, transition action, or enter
// hook. Context mutations performed before the failing step are retained.
type ActionError struct {
	Step string
	Err  error
}

func (e *ActionError) Error() string {
	return fmt.Sprintf("%s failed: %v", e.Step, e.Err)
}

func (e *ActionError) Unwrap() error {
	return e.Err
}

// IsReentrancyError reports whether err is a rejected reentrant Transition
// call.
func IsReentrancyError(err error) bool {
	return errors.Is(err, ErrTransitionInProgress)
}

func IsNoTransitionError(err error) bool {
	var e *NoTransitionError
	return errors.As(err, &e)
}

func IsGuardRejectedError(err error) bool {
	var e *GuardRejectedError
	return errors.As(err, &e)
}

func IsInvalidDefinitionError(err error) bool {
	var e *InvalidDefinitionError
	return errors.As(err, &e)
}

func IsActionError(err error) bool {
	var e *ActionError
	return errors.As(err, &e)
}
