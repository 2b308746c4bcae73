package statetable

import "slices"

// TransitionDefinition is the immutable edge taken when an event arrives in
// a state. The target is a declared state name or one of the sentinels
type TransitionDefinition[D Data, E Event] struct {
	event    string
	target   string
	actors   []Actor[D, E]
	fallback bool
}

// Event returns the triggering event name, or DefaultEventName for a
// state's default transition
func (t *TransitionDefinition[D, E]) Event() string {
	return t.event
}

// Target returns the nominal target state
func (t *TransitionDefinition[D, E]) Target() string {
	return t.target
}

// Actors returns a copy of the ordered actor list
func (t *TransitionDefinition[D, E]) Actors() []Actor[D, E] {
	return slices.Clone(t.actors)
}

// ActorNames returns the display names of the actors in order
func (t *TransitionDefinition[D, E]) ActorNames() []string {
	res := make([]string, 0, len(t.actors))
	for _, a := range t.actors {
		res = append(res, BehaviorName(a))
	}
	return res
}

// IsDefault reports whether this is a state's default transition
func (t *TransitionDefinition[D, E]) IsDefault() bool {
	return t.event == DefaultEventName
}

// IsFallback reports whether this is the built-in unexpected event
// transition rather than one declared by the table author
func (t *TransitionDefinition[D, E]) IsFallback() bool {
	return t.fallback
}

// IsSentinelTarget reports whether the target is resolved at execution time
func (t *TransitionDefinition[D, E]) IsSentinelTarget() bool {
	return IsSentinel(t.target)
}

func fallbackTransition[D Data, E Event]() *TransitionDefinition[D, E] {
	return &TransitionDefinition[D, E]{
		event:    DefaultEventName,
		target:   StayInState,
		actors:   []Actor[D, E]{UnexpectedEvent[D, E]()},
		fallback: true,
	}
}
