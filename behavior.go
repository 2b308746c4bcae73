package statetable

import "fmt"

type (
	// Behavior is the common shape of every callback a table invokes
	Behavior interface {
		Name() string
	}

	// Actor runs during a transition, in declared order, before the
	// transition is considered successful
	Actor[D Data, E Event] interface {
		Behavior
		OnAction(tc *TransitionContext[D, E]) error
	}

	// TransitionHook runs once after every actor of a transition succeeded
	// and before the working copy is committed
	TransitionHook[D Data, E Event] interface {
		Behavior
		OnTransition(tc *TransitionContext[D, E]) error
	}

	// ErrorHandler is a best-effort sink invoked on any failure. The failing
	// behavior is nil when the failure did not come from a behavior
	ErrorHandler[D Data, E Event] interface {
		Behavior
		OnError(tc *TransitionContext[D, E], failing Behavior, cause error)
	}

	// FuncActor adapts a function to the Actor interface
	FuncActor[D Data, E Event] struct {
		name string
		fn   func(*TransitionContext[D, E]) error
	}

	// FuncTransitionHook adapts a function to the TransitionHook interface
	FuncTransitionHook[D Data, E Event] struct {
		name string
		fn   func(*TransitionContext[D, E]) error
	}

	// FuncErrorHandler adapts a function to the ErrorHandler interface
	FuncErrorHandler[D Data, E Event] struct {
		name string
		fn   func(*TransitionContext[D, E], Behavior, error)
	}
)

const (
	// UnnamedBehavior is reported for behaviors without a display name
	UnnamedBehavior = "unnamed"

	// NoBehavior is reported when a failure has no associated behavior
	NoBehavior = "N/A"

	unexpectedEventActor = "unexpectedEvent"
)

// BehaviorName returns the display name of b
func BehaviorName(b Behavior) string {
	if b == nil {
		return NoBehavior
	}
	if name := b.Name(); name != "" {
		return name
	}
	return UnnamedBehavior
}

// NewActor wraps fn as a named Actor
func NewActor[D Data, E Event](
	name string, fn func(*TransitionContext[D, E]) error,
) *FuncActor[D, E] {
	return &FuncActor[D, E]{name: name, fn: fn}
}

// Name returns the actor's display name
func (a *FuncActor[D, E]) Name() string {
	return a.name
}

// OnAction invokes the wrapped function
func (a *FuncActor[D, E]) OnAction(tc *TransitionContext[D, E]) error {
	if a.fn == nil {
		return nil
	}
	return a.fn(tc)
}

// NewTransitionHook wraps fn as a named TransitionHook
func NewTransitionHook[D Data, E Event](
	name string, fn func(*TransitionContext[D, E]) error,
) *FuncTransitionHook[D, E] {
	return &FuncTransitionHook[D, E]{name: name, fn: fn}
}

// Name returns the hook's display name
func (h *FuncTransitionHook[D, E]) Name() string {
	return h.name
}

// OnTransition invokes the wrapped function
func (h *FuncTransitionHook[D, E]) OnTransition(
	tc *TransitionContext[D, E],
) error {
	if h.fn == nil {
		return nil
	}
	return h.fn(tc)
}

// NewErrorHandler wraps fn as a named ErrorHandler
func NewErrorHandler[D Data, E Event](
	name string, fn func(*TransitionContext[D, E], Behavior, error),
) *FuncErrorHandler[D, E] {
	return &FuncErrorHandler[D, E]{name: name, fn: fn}
}

// Name returns the handler's display name
func (h *FuncErrorHandler[D, E]) Name() string {
	return h.name
}

// OnError invokes the wrapped function
func (h *FuncErrorHandler[D, E]) OnError(
	tc *TransitionContext[D, E], failing Behavior, cause error,
) {
	if h.fn != nil {
		h.fn(tc, failing, cause)
	}
}

// UnexpectedEvent returns the actor installed as the default transition of
// every state that does not declare its own. It always fails
func UnexpectedEvent[D Data, E Event]() Actor[D, E] {
	return NewActor(unexpectedEventActor,
		func(tc *TransitionContext[D, E]) error {
			return fmt.Errorf("%w: %s in state %s",
				ErrUnexpectedEvent, eventName(tc.event), tc.from)
		},
	)
}
