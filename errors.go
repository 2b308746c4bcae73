package statetable

import (
	"errors"
	"fmt"
	"strings"
)

type (
	// DefinitionError is returned by the builder when a table is incomplete
	// or inconsistent. It lists every problem found
	DefinitionError struct {
		Table  string
		Issues []string
	}

	// ExecutionError is the single error kind returned when an event fails.
	// Committed state is unchanged whenever an ExecutionError is returned
	ExecutionError struct {
		Table     string
		FromState string
		ToState   string
		Event     string
		Behavior  string
		Cause     error
	}
)

// Definition errors
var (
	ErrInvalidDefinition = errors.New("invalid table definition")
	ErrBuilderConsumed   = errors.New("builder already consumed")
	ErrDuplicateBehavior = errors.New("behavior already registered")
	ErrEmptyBehaviorName = errors.New("behavior name is empty")
)

// Execution errors
var (
	ErrExecution          = errors.New("event execution failed")
	ErrDataGet            = errors.New("failed to get working data")
	ErrDataCommit         = errors.New("failed to commit working data")
	ErrUnknownState       = errors.New("current state not in table")
	ErrUnexpectedEvent    = errors.New("unexpected event")
	ErrNoPriorState       = errors.New("no prior state recorded")
	ErrBehaviorPanicked   = errors.New("behavior panicked")
	ErrErrorHandlerFailed = errors.New("error handler failed")
	ErrMissingEventData   = errors.New("missing event data")
)

// Control errors
var (
	ErrNotStarted        = errors.New("control not started")
	ErrAlreadyStarted    = errors.New("control already started")
	ErrShutdown          = errors.New("control shut down")
	ErrInjectUnsupported = errors.New("control does not support injection")
)

func (e *DefinitionError) Error() string {
	name := e.Table
	if name == "" {
		name = "<unnamed>"
	}
	if len(e.Issues) == 1 {
		return fmt.Sprintf("%s %s: %s", ErrInvalidDefinition, name, e.Issues[0])
	}
	return fmt.Sprintf("%s %s: %d issues: %s",
		ErrInvalidDefinition, name, len(e.Issues),
		strings.Join(e.Issues, "; "))
}

// Unwrap allows errors.Is(err, ErrInvalidDefinition)
func (e *DefinitionError) Unwrap() error {
	return ErrInvalidDefinition
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf(
		"execution error [table=%s from=%s to=%s event=%s behavior=%s]: %v",
		e.Table, e.FromState, e.ToState, e.Event, e.Behavior, e.Cause)
}

// Unwrap returns both the execution marker and the underlying cause
func (e *ExecutionError) Unwrap() []error {
	return []error{ErrExecution, e.Cause}
}

// IsDefinitionError checks if an error is a DefinitionError
func IsDefinitionError(err error) bool {
	var de *DefinitionError
	return errors.As(err, &de)
}

// IsExecutionError checks if an error is an ExecutionError
func IsExecutionError(err error) bool {
	var ee *ExecutionError
	return errors.As(err, &ee)
}

// AsExecutionError extracts the ExecutionError from err, if present
func AsExecutionError(err error) (*ExecutionError, bool) {
	var ee *ExecutionError
	if errors.As(err, &ee) {
		return ee, true
	}
	return nil, false
}
