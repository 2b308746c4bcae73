package statetable

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/anggasct/statetable/pkg/log"
)

type (
	turnstile struct {
		StateRecord
		Tickets int
		Turns   int
		Trace   []string
	}

	ev = *BasicEvent
	tc = TransitionContext[*turnstile, ev]

	// memoryData is a minimal DataManager with switchable failures
	memoryData struct {
		committed *turnstile
		failGet   error
		failSet   error
		sets      int
		mu        sync.Mutex
	}

	// recorder captures hook calls and error handler calls
	recorder struct {
		transitions []string
		errors      []error
		behaviors   []string
		mu          sync.Mutex
	}
)

var errBoom = errors.New("boom")

func (t *turnstile) clone() *turnstile {
	res := *t
	res.Trace = append([]string(nil), t.Trace...)
	return &res
}

func (m *memoryData) Initialize(_ context.Context, initial string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed = &turnstile{}
	m.committed.SetCurrentState(initial)
	return nil
}

func (m *memoryData) Get(_ context.Context, _ ev) (*turnstile, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failGet != nil {
		return nil, m.failGet
	}
	return m.committed.clone(), nil
}

func (m *memoryData) Set(_ context.Context, _ ev, data *turnstile) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failSet != nil {
		return m.failSet
	}
	m.sets++
	m.committed = data.clone()
	return nil
}

func (m *memoryData) record() *turnstile {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.committed.clone()
}

func (m *memoryData) force(current, prior string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.committed.CurrentState = current
	m.committed.PriorState = prior
}

func (r *recorder) Name() string {
	return "recorder"
}

func (r *recorder) OnTransition(c *tc) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.transitions = append(r.transitions,
		c.GetFromState()+"->"+c.GetResolvedTargetState())
	return nil
}

func (r *recorder) OnError(_ *tc, failing Behavior, cause error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.errors = append(r.errors, cause)
	r.behaviors = append(r.behaviors, BehaviorName(failing))
}

func (r *recorder) errorCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.errors)
}

func trace(name string) Actor[*turnstile, ev] {
	return NewActor(name, func(c *tc) error {
		c.GetData().Trace = append(c.GetData().Trace, name)
		return nil
	})
}

func turnstileBuilder() *TableBuilder[*turnstile, ev] {
	return NewTableBuilder[*turnstile, ev]("turnstile").
		WithState("OFF").
		TransitionOnEvent("ON").ToState("LOCKED").EndTransition().
		EndState().
		WithState("LOCKED").
		TransitionOnEvent("TICKET").ToState("UNLOCKED").
		WithActorFunc("countTicket", func(c *tc) error {
			c.GetData().Tickets++
			return nil
		}).
		EndTransition().
		TransitionOnEvent("PUSH").ToState(StayInState).EndTransition().
		TransitionOnEvent("OFF").ToState("OFF").EndTransition().
		EndState().
		WithState("UNLOCKED").
		TransitionOnEvent("PUSH").ToState("LOCKED").
		WithActorFunc("countTurn", func(c *tc) error {
			c.GetData().Turns++
			return nil
		}).
		EndTransition().
		TransitionOnEvent("OFF").ToState("OFF").EndTransition().
		EndState()
}

func newTurnstileTable(
	t *testing.T, def *TableDefinition[*turnstile, ev],
) (*Table[*turnstile, ev], *memoryData, *recorder) {
	t.Helper()
	if def == nil {
		var err error
		def, err = turnstileBuilder().Build()
		require.NoError(t, err)
	}
	dm := &memoryData{}
	rec := &recorder{}
	table := NewTable[*turnstile, ev](def, dm).
		WithLogger(log.Discard()).
		WithTransitionHook(rec).
		WithErrorHandler(rec)
	return table, dm, rec
}

func startSerial(
	t *testing.T, table *Table[*turnstile, ev],
) *SerialControl[*turnstile, ev] {
	t.Helper()
	ctl := NewSerialControl(table)
	require.NoError(t, ctl.Start(context.Background()))
	return ctl
}

func signal(t *testing.T, ctl Control[ev], names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, ctl.SignalEvent(context.Background(), NewEvent(name)))
	}
}
