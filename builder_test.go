package statetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTableBuilder_Build(t *testing.T) {
	def, err := turnstileBuilder().Build()
	require.NoError(t, err)

	assert.Equal(t, "turnstile", def.Name())
	assert.Equal(t, "OFF", def.InitialState())
	assert.Equal(t, []string{"OFF", "LOCKED", "UNLOCKED"}, def.StateNames())
	assert.Len(t, def.States(), 3)
	assert.True(t, def.HasState("LOCKED"))
	assert.False(t, def.HasState("BROKEN"))
	assert.Nil(t, def.State("BROKEN"))

	locked := def.State("LOCKED")
	assert.Equal(t, []string{"TICKET", "PUSH", "OFF"}, locked.Events())

	tr, ok := locked.Transition("TICKET")
	require.True(t, ok)
	assert.Equal(t, "UNLOCKED", tr.Target())
	assert.Equal(t, []string{"countTicket"}, tr.ActorNames())
	assert.False(t, tr.IsDefault())

	push, _ := locked.Transition("PUSH")
	assert.True(t, push.IsSentinelTarget())

	fallback := locked.DefaultTransition()
	assert.True(t, fallback.IsDefault())
	assert.True(t, fallback.IsFallback())
	assert.Equal(t, StayInState, fallback.Target())
	assert.Same(t, fallback, locked.Resolve("UNKNOWN_EVENT"))
	assert.Same(t, tr, locked.Resolve("TICKET"))
}

func TestTableBuilder_Consumed(t *testing.T) {
	b := turnstileBuilder()
	_, err := b.Build()
	require.NoError(t, err)

	_, err = b.Build()
	assert.ErrorIs(t, err, ErrBuilderConsumed)
}

func TestTableBuilder_DefinitionErrors(t *testing.T) {
	tests := []struct {
		name    string
		build   func() *TableBuilder[*turnstile, ev]
		message string
	}{
		{
			name: "no states",
			build: func() *TableBuilder[*turnstile, ev] {
				return NewTableBuilder[*turnstile, ev]("empty")
			},
			message: "table has no states",
		},
		{
			name: "duplicate state",
			build: func() *TableBuilder[*turnstile, ev] {
				return NewTableBuilder[*turnstile, ev]("t").
					WithState("A").EndState().
					WithState("A").EndState()
			},
			message: `duplicate state "A"`,
		},
		{
			name: "reserved state name",
			build: func() *TableBuilder[*turnstile, ev] {
				return NewTableBuilder[*turnstile, ev]("t").
					WithState(StayInState).EndState()
			},
			message: "is reserved",
		},
		{
			name: "empty state name",
			build: func() *TableBuilder[*turnstile, ev] {
				return NewTableBuilder[*turnstile, ev]("t").
					WithState("").EndState()
			},
			message: "state name is empty",
		},
		{
			name: "unknown target",
			build: func() *TableBuilder[*turnstile, ev] {
				return NewTableBuilder[*turnstile, ev]("t").
					WithState("A").
					TransitionOnEvent("GO").ToState("B").EndTransition().
					EndState()
			},
			message: `targets unknown state "B"`,
		},
		{
			name: "missing target",
			build: func() *TableBuilder[*turnstile, ev] {
				return NewTableBuilder[*turnstile, ev]("t").
					WithState("A").
					TransitionOnEvent("GO").EndTransition().
					EndState()
			},
			message: "has no target state",
		},
		{
			name: "duplicate transition",
			build: func() *TableBuilder[*turnstile, ev] {
				return NewTableBuilder[*turnstile, ev]("t").
					WithState("A").
					TransitionOnEvent("GO").ToState("A").EndTransition().
					TransitionOnEvent("GO").ToState("A").EndTransition().
					EndState()
			},
			message: `duplicate transition on "GO"`,
		},
		{
			name: "reserved event name",
			build: func() *TableBuilder[*turnstile, ev] {
				return NewTableBuilder[*turnstile, ev]("t").
					WithState("A").
					TransitionOnEvent(DefaultEventName).ToState("A").
					EndTransition().
					EndState()
			},
			message: "is reserved",
		},
		{
			name: "open transition",
			build: func() *TableBuilder[*turnstile, ev] {
				b := NewTableBuilder[*turnstile, ev]("t")
				b.WithState("A").TransitionOnEvent("GO").ToState("A")
				return b
			},
			message: "is still open",
		},
		{
			name: "two default handlers",
			build: func() *TableBuilder[*turnstile, ev] {
				return NewTableBuilder[*turnstile, ev]("t").
					WithState("A").
					WithDefaultEventHandler().ToState(StayInState).
					EndTransition().
					WithDefaultEventHandler().ToState(StayInState).
					EndTransition().
					EndState()
			},
			message: "more than one default handler",
		},
		{
			name: "named actor without registry",
			build: func() *TableBuilder[*turnstile, ev] {
				return NewTableBuilder[*turnstile, ev]("t").
					WithState("A").
					TransitionOnEvent("GO").ToState("A").
					WithActorNamed("count").
					EndTransition().
					EndState()
			},
			message: "needs a registry",
		},
		{
			name: "unknown named actor",
			build: func() *TableBuilder[*turnstile, ev] {
				return NewTableBuilder[*turnstile, ev]("t").
					WithRegistry(NewRegistry[*turnstile, ev]()).
					WithState("A").
					TransitionOnEvent("GO").ToState("A").
					WithActorNamed("count").
					EndTransition().
					EndState()
			},
			message: `unknown actor "count"`,
		},
		{
			name: "nil actor",
			build: func() *TableBuilder[*turnstile, ev] {
				return NewTableBuilder[*turnstile, ev]("t").
					WithState("A").
					TransitionOnEvent("GO").ToState("A").
					WithActor(nil).
					EndTransition().
					EndState()
			},
			message: "nil actor",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := tt.build().Build()
			assert.Nil(t, def)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidDefinition)
			assert.True(t, IsDefinitionError(err))
			assert.Contains(t, err.Error(), tt.message)
		})
	}
}

func TestTableBuilder_CollectsAllIssues(t *testing.T) {
	_, err := NewTableBuilder[*turnstile, ev]("broken").
		WithState("A").
		TransitionOnEvent("GO").ToState("X").EndTransition().
		TransitionOnEvent("").ToState("A").EndTransition().
		EndState().
		WithState("A").EndState().
		Build()

	var de *DefinitionError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, "broken", de.Table)
	assert.Len(t, de.Issues, 3)
	assert.Contains(t, err.Error(), "3 issues")
}

func TestTableBuilder_RegistryActors(t *testing.T) {
	reg := NewRegistry[*turnstile, ev]()
	require.NoError(t, reg.RegisterActor("first", trace("first")))
	require.NoError(t, reg.RegisterActorFunc("second", func(c *tc) error {
		c.GetData().Trace = append(c.GetData().Trace, "second")
		return nil
	}))

	def, err := NewTableBuilder[*turnstile, ev]("named").
		WithRegistry(reg).
		WithState("A").
		TransitionOnEvent("GO").ToState("B").
		WithActorNamed("first").
		WithActorNamed("second").
		EndTransition().
		EndState().
		WithState("B").EndState().
		Build()
	require.NoError(t, err)

	table, dm, _ := newTurnstileTable(t, def)
	ctl := startSerial(t, table)
	signal(t, ctl, "GO")
	assert.Equal(t, []string{"first", "second"}, dm.record().Trace)
}

func TestRegistry(t *testing.T) {
	reg := NewRegistry[*turnstile, ev]()

	require.NoError(t, reg.RegisterActor("b", trace("b")))
	require.NoError(t, reg.RegisterActor("a", trace("a")))
	assert.ErrorIs(t, reg.RegisterActor("a", trace("a")), ErrDuplicateBehavior)
	assert.ErrorIs(t, reg.RegisterActor("", trace("x")), ErrEmptyBehaviorName)
	assert.Error(t, reg.RegisterActor("nil", nil))
	assert.Equal(t, []string{"a", "b"}, reg.ActorNames())

	_, ok := reg.Actor("missing")
	assert.False(t, ok)

	rec := &recorder{}
	require.NoError(t, reg.RegisterHook("rec", rec))
	assert.ErrorIs(t, reg.RegisterHook("rec", rec), ErrDuplicateBehavior)
	h, ok := reg.Hook("rec")
	assert.True(t, ok)
	assert.Equal(t, "recorder", h.Name())

	require.NoError(t, reg.RegisterErrorHandler("rec", rec))
	eh, ok := reg.ErrorHandler("rec")
	assert.True(t, ok)
	assert.Equal(t, "recorder", eh.Name())
	_, ok = reg.ErrorHandler("missing")
	assert.False(t, ok)
}

func TestBehaviorName(t *testing.T) {
	assert.Equal(t, NoBehavior, BehaviorName(nil))
	assert.Equal(t, UnnamedBehavior, BehaviorName(trace("")))
	assert.Equal(t, "named", BehaviorName(trace("named")))
}

func TestSentinels(t *testing.T) {
	for _, s := range []string{StayInState, GoToPreviousState, StateChangedByActor} {
		assert.True(t, IsSentinel(s))
		assert.True(t, isReserved(s))
	}
	assert.False(t, IsSentinel(DefaultEventName))
	assert.True(t, isReserved(DefaultEventName))
	assert.False(t, IsSentinel("LOCKED"))
}
