package builders

import (
	"fmt"

	"github.com/anggasct/statetable"
)

// WorkflowBuilder builds linear tables where each step advances to the
// next on EventNext. Optional cancel and back transitions are added to
// every step
type WorkflowBuilder[D statetable.Data, E statetable.Event] struct {
	name     string
	registry *statetable.Registry[D, E]
	steps    []workflowStep[D, E]
	cancel   string
	back     bool
	final    string
	finish   []statetable.Actor[D, E]
}

type workflowStep[D statetable.Data, E statetable.Event] struct {
	name   string
	actors []statetable.Actor[D, E]
}

// Workflow event names
const (
	EventNext     = "NEXT"
	EventComplete = "COMPLETE"
	EventCancel   = "CANCEL"
	EventBack     = "BACK"
)

// NewWorkflowBuilder creates a new workflow builder
func NewWorkflowBuilder[D statetable.Data, E statetable.Event](
	name string,
) *WorkflowBuilder[D, E] {
	return &WorkflowBuilder[D, E]{name: name}
}

// WithRegistry sets the registry passed to the underlying table builder
func (w *WorkflowBuilder[D, E]) WithRegistry(
	r *statetable.Registry[D, E],
) *WorkflowBuilder[D, E] {
	w.registry = r
	return w
}

// AddStep appends a step. Its actors run on the transition entering it;
// actors of the first step are never run since it is the initial state
func (w *WorkflowBuilder[D, E]) AddStep(
	name string, actors ...statetable.Actor[D, E],
) *WorkflowBuilder[D, E] {
	w.steps = append(w.steps, workflowStep[D, E]{name: name, actors: actors})
	return w
}

// WithCancel adds a cancel state reachable on EventCancel from every step
func (w *WorkflowBuilder[D, E]) WithCancel(state string) *WorkflowBuilder[D, E] {
	w.cancel = state
	return w
}

// WithBack lets every step after the first return to the previous state
// on EventBack
func (w *WorkflowBuilder[D, E]) WithBack() *WorkflowBuilder[D, E] {
	w.back = true
	return w
}

// FinishWorkflow adds a final state entered from the last step on
// EventComplete
func (w *WorkflowBuilder[D, E]) FinishWorkflow(
	state string, actors ...statetable.Actor[D, E],
) *WorkflowBuilder[D, E] {
	w.final = state
	w.finish = actors
	return w
}

// Build returns the workflow's table definition
func (w *WorkflowBuilder[D, E]) Build() (*statetable.TableDefinition[D, E], error) {
	if len(w.steps) == 0 {
		return nil, fmt.Errorf("%w: workflow %q has no steps",
			statetable.ErrInvalidDefinition, w.name)
	}

	tb := statetable.NewTableBuilder[D, E](w.name)
	if w.registry != nil {
		tb.WithRegistry(w.registry)
	}

	for i, step := range w.steps {
		sb := tb.WithState(step.name)
		if i+1 < len(w.steps) {
			next := w.steps[i+1]
			sb.TransitionOnEvent(EventNext).
				ToState(next.name).
				WithActors(next.actors...).
				EndTransition()
		} else if w.final != "" {
			sb.TransitionOnEvent(EventComplete).
				ToState(w.final).
				WithActors(w.finish...).
				EndTransition()
		}
		if w.back && i > 0 {
			sb.TransitionOnEvent(EventBack).
				ToState(statetable.GoToPreviousState).
				EndTransition()
		}
		if w.cancel != "" {
			sb.TransitionOnEvent(EventCancel).
				ToState(w.cancel).
				EndTransition()
		}
		sb.EndState()
	}

	if w.final != "" {
		tb.WithState(w.final).EndState()
	}
	if w.cancel != "" && w.cancel != w.final {
		tb.WithState(w.cancel).EndState()
	}
	return tb.Build()
}
