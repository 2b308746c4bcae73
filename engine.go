package statetable

import (
	"context"
	"errors"
	"fmt"

	"github.com/anggasct/statetable/pkg/log"
)

// Engine dispatches a single event against a table instance. It holds no
// state and may be shared freely between tables and goroutines
type Engine[D Data, E Event] struct{}

// ProcessEvent runs one event to completion. The working copy is committed
// only when every actor, the transition hook and the commit itself succeed.
// Any failure is reported to the table's error handler and returned as an
// *ExecutionError
func (en Engine[D, E]) ProcessEvent(
	ctx context.Context, table *Table[D, E], control Control[E], event E,
) (err error) {
	tc := newTransitionContext(ctx, table, control, event)
	var failing Behavior

	defer func() {
		if r := recover(); r != nil {
			err = en.fail(tc, failing, panicError(r))
		}
	}()

	if err := table.Validate(); err != nil {
		return en.fail(tc, nil, err)
	}

	data, err := table.data.Get(ctx, event)
	if err != nil {
		return en.fail(tc, nil, fmt.Errorf("%w: %w", ErrDataGet, err))
	}
	tc.data = data

	current := data.GetCurrentState()
	prior := data.GetPriorState()
	tc.from = current

	state := table.def.State(current)
	if state == nil {
		return en.fail(tc, nil,
			fmt.Errorf("%w: %q in table %q", ErrUnknownState, current,
				table.Name()),
		)
	}

	tr := state.Resolve(eventName(event))
	target, err := resolveTarget(tr.Target(), current, prior)
	if err != nil {
		return en.fail(tc, nil, err)
	}
	tc.target = target

	for _, actor := range tr.actors {
		failing = actor
		if err := callActor(actor, tc); err != nil {
			return en.fail(tc, actor, err)
		}
	}

	hook := table.TransitionHook()
	failing = hook
	if err := callHook(hook, tc); err != nil {
		return en.fail(tc, hook, err)
	}
	failing = nil

	if target != StateChangedByActor {
		data.SetPriorState(current)
		data.SetCurrentState(target)
	}

	if err := table.data.Set(ctx, event, data); err != nil {
		return en.fail(tc, nil, fmt.Errorf("%w: %w", ErrDataCommit, err))
	}
	return nil
}

func (en Engine[D, E]) fail(
	tc *TransitionContext[D, E], failing Behavior, cause error,
) error {
	ee := &ExecutionError{
		Table:     tc.GetTableName(),
		FromState: tc.from,
		ToState:   tc.target,
		Event:     tc.GetEventName(),
		Behavior:  BehaviorName(failing),
		Cause:     cause,
	}
	if tc.table == nil {
		return ee
	}
	if herr := notifyError(tc, failing, cause); herr != nil {
		if tc.table.strict {
			ee.Cause = errors.Join(cause, herr)
		} else {
			tc.table.Logger().Warn("Error handler failed",
				log.Table(ee.Table),
				log.Event(ee.Event),
				log.Error(herr))
		}
	}
	return ee
}

func resolveTarget(target, current, prior string) (string, error) {
	switch target {
	case StayInState:
		return current, nil
	case GoToPreviousState:
		if prior == "" {
			return UnknownState, fmt.Errorf("%w: state %q",
				ErrNoPriorState, current)
		}
		return prior, nil
	default:
		return target, nil
	}
}

func callActor[D Data, E Event](
	a Actor[D, E], tc *TransitionContext[D, E],
) (err error) {
	defer recoverBehavior(a, &err)
	return a.OnAction(tc)
}

func callHook[D Data, E Event](
	h TransitionHook[D, E], tc *TransitionContext[D, E],
) (err error) {
	defer recoverBehavior(h, &err)
	return h.OnTransition(tc)
}

func notifyError[D Data, E Event](
	tc *TransitionContext[D, E], failing Behavior, cause error,
) (err error) {
	h := tc.table.ErrorHandler()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %s: %v",
				ErrErrorHandlerFailed, BehaviorName(h), r)
		}
	}()
	h.OnError(tc, failing, cause)
	return nil
}

func recoverBehavior(b Behavior, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("%w: %s: %v", ErrBehaviorPanicked, BehaviorName(b), r)
	}
}

func panicError(r any) error {
	if err, ok := r.(error); ok {
		return fmt.Errorf("%w: %w", ErrBehaviorPanicked, err)
	}
	return fmt.Errorf("%w: %v", ErrBehaviorPanicked, r)
}
