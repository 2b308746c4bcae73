// Package statetable provides an embeddable finite state machine engine driven
// by a declarative transition table. A table is assembled once with a
// validating builder, wrapped with a data manager into a Table instance, and
// fed events through a Control that serializes calls into the Engine.
package statetable

// Target-state sentinels and reserved event names. These values form the
// contract between table authors and the Engine and can never be used as
// state names.
const (
	// StayInState resolves to the state active when the event began
	StayInState = "$STAY_IN_STATE"

	// GoToPreviousState resolves to the prior state recorded before the event
	GoToPreviousState = "$GO_TO_PREVIOUS_STATE"

	// StateChangedByActor tells the Engine that an actor already wrote the
	// current and prior state, so the Engine must leave them untouched
	StateChangedByActor = "$STATE_CHANGED_BY_ACTOR"

	// DefaultEventName marks a state's fallback transition
	DefaultEventName = "$DEFAULT"

	// UnknownState is the placeholder reported when the target state could
	// not be resolved before a failure
	UnknownState = "UNKNOWN"
)

// IsSentinel reports whether name is one of the reserved target sentinels
func IsSentinel(name string) bool {
	switch name {
	case StayInState, GoToPreviousState, StateChangedByActor:
		return true
	default:
		return false
	}
}

func isReserved(name string) bool {
	return IsSentinel(name) || name == DefaultEventName
}
