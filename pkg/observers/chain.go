// Package observers provides transition hooks and error handlers that can
// be attached to a statetable.Table
package observers

import (
	"strings"

	"github.com/anggasct/statetable"
)

type (
	// Chain runs several transition hooks in order and stops at the first
	// failure
	Chain[D statetable.Data, E statetable.Event] struct {
		hooks []statetable.TransitionHook[D, E]
	}

	// ErrorChain forwards every failure to several error handlers
	ErrorChain[D statetable.Data, E statetable.Event] struct {
		handlers []statetable.ErrorHandler[D, E]
	}
)

// NewChain creates a hook running hooks in the given order
func NewChain[D statetable.Data, E statetable.Event](
	hooks ...statetable.TransitionHook[D, E],
) *Chain[D, E] {
	return &Chain[D, E]{hooks: hooks}
}

// Name lists the chained hooks
func (c *Chain[D, E]) Name() string {
	names := make([]string, 0, len(c.hooks))
	for _, h := range c.hooks {
		names = append(names, statetable.BehaviorName(h))
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

// OnTransition runs each hook, returning the first error
func (c *Chain[D, E]) OnTransition(tc *statetable.TransitionContext[D, E]) error {
	for _, h := range c.hooks {
		if err := h.OnTransition(tc); err != nil {
			return err
		}
	}
	return nil
}

// NewErrorChain creates a handler forwarding to handlers in order
func NewErrorChain[D statetable.Data, E statetable.Event](
	handlers ...statetable.ErrorHandler[D, E],
) *ErrorChain[D, E] {
	return &ErrorChain[D, E]{handlers: handlers}
}

// Name lists the chained handlers
func (c *ErrorChain[D, E]) Name() string {
	names := make([]string, 0, len(c.handlers))
	for _, h := range c.handlers {
		names = append(names, statetable.BehaviorName(h))
	}
	return "errorChain(" + strings.Join(names, ",") + ")"
}

// OnError forwards the failure to every handler. A panicking handler does
// not prevent the following ones from running
func (c *ErrorChain[D, E]) OnError(
	tc *statetable.TransitionContext[D, E], failing statetable.Behavior,
	cause error,
) {
	for _, h := range c.handlers {
		func() {
			defer func() { _ = recover() }()
			h.OnError(tc, failing, cause)
		}()
	}
}
