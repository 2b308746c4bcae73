package statetable

import "slices"

// StateDefinition is an immutable named node of a table. Every state has
// exactly one default transition, either declared or the built-in fallback
type StateDefinition[D Data, E Event] struct {
	name        string
	transitions map[string]*TransitionDefinition[D, E]
	events      []string
	defaultTr   *TransitionDefinition[D, E]
}

// Name returns the state name
func (s *StateDefinition[D, E]) Name() string {
	return s.name
}

// Transition returns the transition declared for event, if any
func (s *StateDefinition[D, E]) Transition(
	event string,
) (*TransitionDefinition[D, E], bool) {
	t, ok := s.transitions[event]
	return t, ok
}

// Resolve returns the transition for event, falling back to the state's
// default transition when there is no exact match
func (s *StateDefinition[D, E]) Resolve(event string) *TransitionDefinition[D, E] {
	if t, ok := s.transitions[event]; ok {
		return t
	}
	return s.defaultTr
}

// DefaultTransition returns the state's default transition
func (s *StateDefinition[D, E]) DefaultTransition() *TransitionDefinition[D, E] {
	return s.defaultTr
}

// Events returns the declared event names in declaration order
func (s *StateDefinition[D, E]) Events() []string {
	return slices.Clone(s.events)
}

// Transitions returns the declared transitions in declaration order, not
// including the default transition
func (s *StateDefinition[D, E]) Transitions() []*TransitionDefinition[D, E] {
	res := make([]*TransitionDefinition[D, E], 0, len(s.events))
	for _, ev := range s.events {
		res = append(res, s.transitions[ev])
	}
	return res
}
