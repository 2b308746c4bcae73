package statetable

import (
	"fmt"

	"github.com/anggasct/statetable/pkg/utils"
)

type (
	// TableBuilder assembles and validates a TableDefinition. A builder is
	// consumed by Build and cannot be reused
	TableBuilder[D Data, E Event] struct {
		name     string
		registry *Registry[D, E]
		states   []*StateBuilder[D, E]
		current  *StateBuilder[D, E]
		issues   *utils.ErrorCollector
		consumed bool
	}

	// StateBuilder configures the transitions of a single state
	StateBuilder[D Data, E Event] struct {
		table       *TableBuilder[D, E]
		name        string
		transitions []*TransitionBuilder[D, E]
		defaultTr   *TransitionBuilder[D, E]
		open        *TransitionBuilder[D, E]
		ended       bool
	}

	// TransitionBuilder configures the target and actors of a transition
	TransitionBuilder[D Data, E Event] struct {
		state     *StateBuilder[D, E]
		event     string
		target    string
		hasTarget bool
		steps     []actorRef[D, E]
		ended     bool
	}

	actorRef[D Data, E Event] struct {
		actor Actor[D, E]
		name  string
	}
)

// NewTableBuilder creates a builder for a table with the given name
func NewTableBuilder[D Data, E Event](name string) *TableBuilder[D, E] {
	return &TableBuilder[D, E]{
		name:   name,
		issues: utils.NewErrorCollector(),
	}
}

// WithRegistry sets the registry used to resolve actors added by name
func (b *TableBuilder[D, E]) WithRegistry(r *Registry[D, E]) *TableBuilder[D, E] {
	b.registry = r
	return b
}

// WithState opens a new state. States are kept in insertion order and the
// first one becomes the initial state
func (b *TableBuilder[D, E]) WithState(name string) *StateBuilder[D, E] {
	if cur := b.current; cur != nil && !cur.ended {
		if cur.open != nil {
			b.reportf("state %q opened while transition on %q of state %q "+
				"was not ended", name, cur.open.event, cur.name)
			cur.open = nil
		}
		cur.ended = true
	}
	sb := &StateBuilder[D, E]{
		table: b,
		name:  name,
	}
	b.states = append(b.states, sb)
	b.current = sb
	return sb
}

// Build validates the table and returns the immutable definition
func (b *TableBuilder[D, E]) Build() (*TableDefinition[D, E], error) {
	if b.consumed {
		return nil, ErrBuilderConsumed
	}
	b.consumed = true

	if cur := b.current; cur != nil && cur.open != nil {
		b.reportf("state %q was not ended: transition on %q is still open",
			cur.name, cur.open.event)
	}
	if len(b.states) == 0 {
		b.reportf("table has no states")
	}

	def := &TableDefinition[D, E]{
		name:   b.name,
		states: make(map[string]*StateDefinition[D, E], len(b.states)),
		order:  make([]string, 0, len(b.states)),
	}
	valid := make([]*StateBuilder[D, E], 0, len(b.states))
	for _, sb := range b.states {
		if !b.checkStateName(def, sb.name) {
			continue
		}
		def.states[sb.name] = &StateDefinition[D, E]{
			name:        sb.name,
			transitions: map[string]*TransitionDefinition[D, E]{},
		}
		def.order = append(def.order, sb.name)
		valid = append(valid, sb)
	}
	for _, sb := range valid {
		b.buildState(def, sb)
	}

	if b.issues.HasErrors() {
		return nil, &DefinitionError{
			Table:  b.name,
			Issues: b.issues.Messages(),
		}
	}
	return def, nil
}

func (b *TableBuilder[D, E]) checkStateName(
	def *TableDefinition[D, E], name string,
) bool {
	switch {
	case name == "":
		b.reportf("state name is empty")
	case isReserved(name):
		b.reportf("state name %q is reserved", name)
	case def.HasState(name):
		b.reportf("duplicate state %q", name)
	default:
		return true
	}
	return false
}

func (b *TableBuilder[D, E]) buildState(
	def *TableDefinition[D, E], sb *StateBuilder[D, E],
) {
	sd := def.states[sb.name]
	for _, tb := range sb.transitions {
		td, ok := b.buildTransition(def, sb.name, tb)
		if !ok {
			continue
		}
		if _, dup := sd.transitions[td.event]; dup {
			b.reportf("duplicate transition on %q in state %q",
				td.event, sb.name)
			continue
		}
		sd.transitions[td.event] = td
		sd.events = append(sd.events, td.event)
	}
	if sb.defaultTr != nil {
		if td, ok := b.buildTransition(def, sb.name, sb.defaultTr); ok {
			sd.defaultTr = td
		}
	}
	if sd.defaultTr == nil {
		sd.defaultTr = fallbackTransition[D, E]()
	}
}

func (b *TableBuilder[D, E]) buildTransition(
	def *TableDefinition[D, E], state string, tb *TransitionBuilder[D, E],
) (*TransitionDefinition[D, E], bool) {
	ok := true
	switch {
	case tb.event == "":
		b.reportf("transition with empty event name in state %q", state)
		ok = false
	case tb.event == DefaultEventName && tb != tb.state.defaultTr:
		b.reportf("event name %q is reserved in state %q", tb.event, state)
		ok = false
	}
	switch {
	case !tb.hasTarget || tb.target == "":
		b.reportf("transition on %q in state %q has no target state",
			tb.event, state)
		ok = false
	case !IsSentinel(tb.target) && !def.HasState(tb.target):
		b.reportf("transition on %q in state %q targets unknown state %q",
			tb.event, state, tb.target)
		ok = false
	}

	actors := make([]Actor[D, E], 0, len(tb.steps))
	for _, step := range tb.steps {
		a, found := b.resolveActor(step, state, tb.event)
		if !found {
			ok = false
			continue
		}
		actors = append(actors, a)
	}
	if !ok {
		return nil, false
	}
	return &TransitionDefinition[D, E]{
		event:  tb.event,
		target: tb.target,
		actors: actors,
	}, true
}

func (b *TableBuilder[D, E]) resolveActor(
	ref actorRef[D, E], state, event string,
) (Actor[D, E], bool) {
	if ref.actor != nil {
		return ref.actor, true
	}
	if ref.name == "" {
		b.reportf("nil actor on %q in state %q", event, state)
		return nil, false
	}
	if b.registry == nil {
		b.reportf("actor %q on %q in state %q needs a registry",
			ref.name, event, state)
		return nil, false
	}
	a, ok := b.registry.Actor(ref.name)
	if !ok {
		b.reportf("unknown actor %q on %q in state %q",
			ref.name, event, state)
		return nil, false
	}
	return a, true
}

func (b *TableBuilder[D, E]) reportf(format string, args ...any) {
	b.issues.ReportError(fmt.Sprintf(format, args...))
}

// Name returns the name of the state being configured
func (s *StateBuilder[D, E]) Name() string {
	return s.name
}

// TransitionOnEvent opens a transition triggered by the named event
func (s *StateBuilder[D, E]) TransitionOnEvent(event string) *TransitionBuilder[D, E] {
	return s.openTransition(event)
}

// WithDefaultEventHandler opens the transition used when no declared
// transition matches an event. It replaces the built-in unexpected event
// fallback
func (s *StateBuilder[D, E]) WithDefaultEventHandler() *TransitionBuilder[D, E] {
	tb := s.openTransition(DefaultEventName)
	if s.defaultTr != nil {
		s.table.reportf("state %q declares more than one default handler",
			s.name)
	}
	s.defaultTr = tb
	return tb
}

// EndState closes the state and returns to the table builder
func (s *StateBuilder[D, E]) EndState() *TableBuilder[D, E] {
	if s.open != nil {
		s.table.reportf("state %q ended while transition on %q was not ended",
			s.name, s.open.event)
		s.open = nil
	}
	s.ended = true
	if s.table.current == s {
		s.table.current = nil
	}
	return s.table
}

func (s *StateBuilder[D, E]) openTransition(event string) *TransitionBuilder[D, E] {
	if s.ended {
		s.table.reportf("transition on %q added to ended state %q",
			event, s.name)
	}
	if s.open != nil {
		s.table.reportf("transition on %q opened in state %q while "+
			"transition on %q was not ended", event, s.name, s.open.event)
	}
	tb := &TransitionBuilder[D, E]{
		state: s,
		event: event,
	}
	s.open = tb
	return tb
}

// ToState sets the target state, which may be a declared state name or
// one of StayInState, GoToPreviousState and StateChangedByActor
func (t *TransitionBuilder[D, E]) ToState(target string) *TransitionBuilder[D, E] {
	t.target = target
	t.hasTarget = true
	return t
}

// WithActor appends an actor to the transition's ordered actor list
func (t *TransitionBuilder[D, E]) WithActor(a Actor[D, E]) *TransitionBuilder[D, E] {
	t.steps = append(t.steps, actorRef[D, E]{actor: a})
	return t
}

// WithActors appends several actors in order
func (t *TransitionBuilder[D, E]) WithActors(
	actors ...Actor[D, E],
) *TransitionBuilder[D, E] {
	for _, a := range actors {
		t.WithActor(a)
	}
	return t
}

// WithActorFunc appends a function as a named actor
func (t *TransitionBuilder[D, E]) WithActorFunc(
	name string, fn func(*TransitionContext[D, E]) error,
) *TransitionBuilder[D, E] {
	return t.WithActor(NewActor(name, fn))
}

// WithActorNamed appends an actor that is resolved against the builder's
// registry when the table is built
func (t *TransitionBuilder[D, E]) WithActorNamed(name string) *TransitionBuilder[D, E] {
	if name == "" {
		t.state.table.reportf("empty actor name on %q in state %q",
			t.event, t.state.name)
		return t
	}
	t.steps = append(t.steps, actorRef[D, E]{name: name})
	return t
}

// EndTransition closes the transition and returns to its state
func (t *TransitionBuilder[D, E]) EndTransition() *StateBuilder[D, E] {
	s := t.state
	if t.ended {
		return s
	}
	t.ended = true
	if s.open == t {
		s.open = nil
	}
	if t.event != DefaultEventName || s.defaultTr != t {
		s.transitions = append(s.transitions, t)
	}
	return s
}
