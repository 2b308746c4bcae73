package observers

import (
	"errors"
	"fmt"
	"sync"

	"github.com/anggasct/statetable"
)

// AllowedTransitions checks observed transitions against an allow list and
// reports violations and failures to an ErrorReporter. When enforcing, a
// violation fails the event so it is never committed
type AllowedTransitions[D statetable.Data, E statetable.Event] struct {
	reporter statetable.ErrorReporter
	allowed  map[string]map[string]bool
	visited  map[string]bool
	enforce  bool
	mutex    sync.RWMutex
}

var ErrTransitionNotAllowed = errors.New("transition not allowed")

// NewAllowedTransitions creates a validation hook reporting to reporter
func NewAllowedTransitions[D statetable.Data, E statetable.Event](
	reporter statetable.ErrorReporter,
) *AllowedTransitions[D, E] {
	return &AllowedTransitions[D, E]{
		reporter: reporter,
		allowed:  make(map[string]map[string]bool),
		visited:  make(map[string]bool),
	}
}

// Allow adds an allowed transition. States without any allowed transition
// are not checked
func (o *AllowedTransitions[D, E]) Allow(from, to string) *AllowedTransitions[D, E] {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	if _, exists := o.allowed[from]; !exists {
		o.allowed[from] = make(map[string]bool)
	}
	o.allowed[from][to] = true
	return o
}

// Enforce makes violations fail the event instead of only being reported
func (o *AllowedTransitions[D, E]) Enforce(enforce bool) *AllowedTransitions[D, E] {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.enforce = enforce
	return o
}

// Name returns the hook's display name
func (o *AllowedTransitions[D, E]) Name() string {
	return "allowedTransitions"
}

// OnTransition validates the transition
func (o *AllowedTransitions[D, E]) OnTransition(
	tc *statetable.TransitionContext[D, E],
) error {
	from := tc.GetFromState()
	to := tc.GetResolvedTargetState()

	o.mutex.Lock()
	o.visited[to] = true
	allowed, checked := o.allowed[from]
	enforce := o.enforce
	o.mutex.Unlock()

	if !checked || allowed[to] {
		return nil
	}
	msg := fmt.Sprintf("invalid transition from %q to %q on event %q",
		from, to, tc.GetEventName())
	o.reporter.ReportError(msg)
	if enforce {
		return fmt.Errorf("%w: %s -> %s", ErrTransitionNotAllowed, from, to)
	}
	return nil
}

// OnError reports the failure with its cause
func (o *AllowedTransitions[D, E]) OnError(
	tc *statetable.TransitionContext[D, E], failing statetable.Behavior,
	cause error,
) {
	o.reporter.ReportErrorCause(
		fmt.Sprintf("event %q failed in state %q at %s",
			tc.GetEventName(), tc.GetFromState(),
			statetable.BehaviorName(failing)),
		cause,
	)
}

// Visited reports whether a transition into state was observed
func (o *AllowedTransitions[D, E]) Visited(state string) bool {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.visited[state]
}
