package builders

import (
	"errors"
	"fmt"
	"slices"

	"github.com/anggasct/statetable"
	"github.com/anggasct/statetable/pkg/observers"
)

// ValidationBuilder checks a table definition for problems the table
// builder accepts, and prepares an AllowedTransitions hook for runtime
// checks. Findings go to an ErrorReporter
type ValidationBuilder[D statetable.Data, E statetable.Event] struct {
	def      *statetable.TableDefinition[D, E]
	reporter statetable.ErrorReporter
	observer *observers.AllowedTransitions[D, E]
	expected []string
	allowed  [][2]string
}

// TargetLister is implemented by actors that know every state they may
// move a record to, such as conditional.Navigator
type TargetLister interface {
	Targets() []string
}

var ErrValidationFailed = errors.New("table validation failed")

// NewValidationBuilder creates a validation builder for def
func NewValidationBuilder[D statetable.Data, E statetable.Event](
	def *statetable.TableDefinition[D, E], reporter statetable.ErrorReporter,
) *ValidationBuilder[D, E] {
	return &ValidationBuilder[D, E]{
		def:      def,
		reporter: reporter,
		observer: observers.NewAllowedTransitions[D, E](reporter),
	}
}

// ExpectState requires the table to declare and reach the state
func (v *ValidationBuilder[D, E]) ExpectState(state string) *ValidationBuilder[D, E] {
	v.expected = append(v.expected, state)
	return v
}

// AllowTransition adds an allowed transition to the runtime check
func (v *ValidationBuilder[D, E]) AllowTransition(from, to string) *ValidationBuilder[D, E] {
	v.allowed = append(v.allowed, [2]string{from, to})
	v.observer.Allow(from, to)
	return v
}

// Build returns the runtime validation hook
func (v *ValidationBuilder[D, E]) Build() *observers.AllowedTransitions[D, E] {
	return v.observer
}

// Validate reports every problem found in the definition and returns
// ErrValidationFailed if there was any
func (v *ValidationBuilder[D, E]) Validate() error {
	before := v.reporter.ErrorCount()
	reachable, dynamic := Reachable(v.def)

	if !dynamic {
		for _, name := range v.def.StateNames() {
			if !reachable[name] {
				v.reporter.ReportError(
					fmt.Sprintf("state %q is unreachable", name))
			}
		}
	}

	for _, sd := range v.def.States() {
		for _, td := range transitions(sd) {
			if td.Target() == statetable.StateChangedByActor &&
				len(td.Actors()) == 0 {
				v.reporter.ReportError(fmt.Sprintf(
					"transition on %q in state %q leaves the state to "+
						"actors but has none", td.Event(), sd.Name()))
			}
		}
	}

	for _, name := range v.expected {
		if !v.def.HasState(name) {
			v.reporter.ReportError(
				fmt.Sprintf("expected state %q is not declared", name))
		}
	}

	for _, pair := range v.allowed {
		for _, name := range pair {
			if !v.def.HasState(name) {
				v.reporter.ReportError(fmt.Sprintf(
					"allowed transition %s -> %s names unknown state %q",
					pair[0], pair[1], name))
			}
		}
	}

	if n := v.reporter.ErrorCount() - before; n > 0 {
		return fmt.Errorf("%w: %d issues", ErrValidationFailed, n)
	}
	return nil
}

// Reachable returns the states reachable from the initial state. dynamic is
// true when an actor-driven transition could reach states that cannot be
// determined statically
func Reachable[D statetable.Data, E statetable.Event](
	def *statetable.TableDefinition[D, E],
) (reachable map[string]bool, dynamic bool) {
	reachable = map[string]bool{}
	queue := []string{def.InitialState()}
	reachable[def.InitialState()] = true

	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		for _, td := range transitions(def.State(name)) {
			targets, ok := targetsOf(td)
			if !ok {
				dynamic = true
			}
			for _, t := range targets {
				if def.HasState(t) && !reachable[t] {
					reachable[t] = true
					queue = append(queue, t)
				}
			}
		}
	}
	return reachable, dynamic
}

// TerminalStates returns the states that declare no transition of their
// own and only carry the built-in unexpected event fallback
func TerminalStates[D statetable.Data, E statetable.Event](
	def *statetable.TableDefinition[D, E],
) []string {
	var res []string
	for _, sd := range def.States() {
		if len(sd.Events()) == 0 && sd.DefaultTransition().IsFallback() {
			res = append(res, sd.Name())
		}
	}
	return res
}

func transitions[D statetable.Data, E statetable.Event](
	sd *statetable.StateDefinition[D, E],
) []*statetable.TransitionDefinition[D, E] {
	return append(sd.Transitions(), sd.DefaultTransition())
}

func targetsOf[D statetable.Data, E statetable.Event](
	td *statetable.TransitionDefinition[D, E],
) ([]string, bool) {
	switch td.Target() {
	case statetable.StayInState, statetable.GoToPreviousState:
		return nil, true
	case statetable.StateChangedByActor:
		var res []string
		listed := false
		for _, a := range td.Actors() {
			if tl, ok := a.(TargetLister); ok {
				listed = true
				res = append(res, tl.Targets()...)
			}
		}
		slices.Sort(res)
		return slices.Compact(res), listed
	default:
		return []string{td.Target()}, true
	}
}
