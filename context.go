package statetable

import (
	"context"
	"log/slog"
)

// TransitionContext bundles everything a behavior may need while a single
// event is processed. It is built by the Engine and discarded once the event
// completes
type TransitionContext[D Data, E Event] struct {
	ctx     context.Context
	from    string
	target  string
	event   E
	data    D
	control Control[E]
	table   *Table[D, E]
}

func newTransitionContext[D Data, E Event](
	ctx context.Context, table *Table[D, E], control Control[E], event E,
) *TransitionContext[D, E] {
	return &TransitionContext[D, E]{
		ctx:     ctx,
		from:    UnknownState,
		target:  UnknownState,
		event:   event,
		control: control,
		table:   table,
	}
}

// NewTransitionContext creates a context outside of the Engine, which is
// useful for exercising behaviors in isolation
func NewTransitionContext[D Data, E Event](
	ctx context.Context, table *Table[D, E], control Control[E],
	event E, data D, from, target string,
) *TransitionContext[D, E] {
	tc := newTransitionContext(ctx, table, control, event)
	tc.data = data
	tc.from = from
	tc.target = target
	return tc
}

// Context returns the context.Context the event is being processed under
func (tc *TransitionContext[D, E]) Context() context.Context {
	if tc.ctx == nil {
		return context.Background()
	}
	return tc.ctx
}

// GetFromState returns the state active when the event began
func (tc *TransitionContext[D, E]) GetFromState() string {
	return tc.from
}

// GetTargetState returns the target after stay and previous sentinels were
// resolved. StateChangedByActor is returned as is
func (tc *TransitionContext[D, E]) GetTargetState() string {
	return tc.target
}

// GetResolvedTargetState returns the target state, substituting the
// working copy's current state when an actor owns the state change
func (tc *TransitionContext[D, E]) GetResolvedTargetState() string {
	if tc.target == StateChangedByActor && any(tc.data) != nil {
		return tc.data.GetCurrentState()
	}
	return tc.target
}

// GetEvent returns the event being processed
func (tc *TransitionContext[D, E]) GetEvent() E {
	return tc.event
}

// GetEventName returns the name of the event being processed
func (tc *TransitionContext[D, E]) GetEventName() string {
	return eventName(tc.event)
}

// GetData returns the working copy of the state-holding record
func (tc *TransitionContext[D, E]) GetData() D {
	return tc.data
}

// GetControl returns the control that submitted the event
func (tc *TransitionContext[D, E]) GetControl() Control[E] {
	return tc.control
}

// GetTable returns the table instance processing the event
func (tc *TransitionContext[D, E]) GetTable() *Table[D, E] {
	return tc.table
}

// GetTableName returns the name of the table definition
func (tc *TransitionContext[D, E]) GetTableName() string {
	if tc.table == nil {
		return ""
	}
	return tc.table.Name()
}

// Logger returns the table's logger
func (tc *TransitionContext[D, E]) Logger() *slog.Logger {
	if tc.table == nil {
		return slog.Default()
	}
	return tc.table.Logger()
}

// SignalEvent submits a follow-up event through the owning control. The
// event is queued and never processed inline
func (tc *TransitionContext[D, E]) SignalEvent(event E) error {
	if tc.control == nil {
		return ErrNotStarted
	}
	if q, ok := tc.control.(enqueuer[E]); ok {
		return q.enqueue(tc.Context(), event)
	}
	return tc.control.SignalEvent(tc.Context(), event)
}

// InjectEvent submits a follow-up event at the head of the owning control's
// queue. Controls without priority injection return ErrInjectUnsupported
func (tc *TransitionContext[D, E]) InjectEvent(event E) error {
	inj, ok := tc.control.(Injector[E])
	if !ok {
		return ErrInjectUnsupported
	}
	return inj.InjectEvent(tc.Context(), event)
}

func eventName(e any) (name string) {
	defer func() {
		if recover() != nil {
			name = ""
		}
	}()
	if ev, ok := e.(Event); ok && ev != nil {
		return ev.GetName()
	}
	return ""
}
