package loader_test

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anggasct/statetable"
	"github.com/anggasct/statetable/pkg/loader"
	"github.com/anggasct/statetable/pkg/log"
	"github.com/anggasct/statetable/pkg/store"
)

type (
	turnstile struct {
		statetable.StateRecord
		Tickets int `json:"tickets"`
		Turns   int `json:"turns"`
	}

	ev = *statetable.BasicEvent
	tc = statetable.TransitionContext[*turnstile, ev]
)

func newTurnstile() *turnstile {
	return &turnstile{}
}

func newRegistry(t *testing.T) (*statetable.Registry[*turnstile, ev], *int) {
	t.Helper()
	reg := statetable.NewRegistry[*turnstile, ev]()
	require.NoError(t, reg.RegisterActorFunc("countTicket", func(c *tc) error {
		c.GetData().Tickets++
		return nil
	}))
	require.NoError(t, reg.RegisterActorFunc("countTurn", func(c *tc) error {
		c.GetData().Turns++
		return nil
	}))

	transitions := 0
	require.NoError(t, reg.RegisterHook("counter",
		statetable.NewTransitionHook("counter", func(*tc) error {
			transitions++
			return nil
		}),
	))
	require.NoError(t, reg.RegisterErrorHandler("collector",
		statetable.NewErrorHandler[*turnstile, ev]("collector", nil),
	))
	return reg, &transitions
}

func TestLoadFile(t *testing.T) {
	reg, transitions := newRegistry(t)
	def, err := loader.LoadFile("testdata/turnstile.yaml", reg)
	require.NoError(t, err)

	assert.Equal(t, "turnstile", def.Name())
	assert.Equal(t, "OFF", def.InitialState())
	assert.Equal(t, []string{"OFF", "LOCKED", "UNLOCKED"}, def.StateNames())

	tr, ok := def.State("LOCKED").Transition("TICKET")
	require.True(t, ok)
	assert.Equal(t, []string{"countTicket"}, tr.ActorNames())
	assert.False(t, def.State("UNLOCKED").DefaultTransition().IsFallback())
	assert.True(t, def.State("LOCKED").DefaultTransition().IsFallback())

	push, ok := def.State("LOCKED").Transition("PUSH")
	require.True(t, ok)
	assert.Equal(t, statetable.StayInState, push.Target())

	dm := store.NewMemory[*turnstile, ev](
		newTurnstile, store.JSONClone(newTurnstile),
	)
	table := statetable.NewTable(def, dm).WithLogger(log.Discard())

	doc, err := loader.Parse(mustRead(t))
	require.NoError(t, err)
	require.NoError(t, loader.Configure(doc, table, reg))
	assert.True(t, table.IsStrict())
	assert.Equal(t, "counter", table.TransitionHook().Name())
	assert.Equal(t, "collector", table.ErrorHandler().Name())

	ctl := statetable.NewSerialControl(table)
	ctx := context.Background()
	require.NoError(t, ctl.Start(ctx))
	for _, name := range []string{
		"ON", "PUSH", "TICKET", "TICKET", "PUSH", "OFF",
	} {
		require.NoError(t, ctl.SignalEvent(ctx, statetable.NewEvent(name)))
	}

	rec, err := dm.Snapshot()
	require.NoError(t, err)
	assert.Equal(t, "OFF", rec.GetCurrentState())
	assert.Equal(t, 1, rec.Tickets)
	assert.Equal(t, 1, rec.Turns)
	assert.Equal(t, 6, *transitions)
}

func TestLoadErrors(t *testing.T) {
	reg, _ := newRegistry(t)

	t.Run("empty document", func(t *testing.T) {
		_, err := loader.Load(strings.NewReader(""), reg)
		assert.ErrorIs(t, err, loader.ErrInvalidDocument)
	})

	t.Run("missing name", func(t *testing.T) {
		_, err := loader.Load(strings.NewReader("states: []\n"), reg)
		assert.ErrorIs(t, err, loader.ErrInvalidDocument)
	})

	t.Run("unknown field", func(t *testing.T) {
		_, err := loader.Load(strings.NewReader("name: t\ncolour: red\n"), reg)
		assert.ErrorIs(t, err, loader.ErrInvalidDocument)
	})

	t.Run("unknown actor", func(t *testing.T) {
		src := `
name: t
states:
  - name: A
    transitions:
      - event: GO
        target: A
        actors: [missing]
`
		_, err := loader.Load(strings.NewReader(src), reg)
		require.Error(t, err)
		assert.ErrorIs(t, err, statetable.ErrInvalidDefinition)
		assert.Contains(t, err.Error(), `unknown actor "missing"`)
	})

	t.Run("unknown target", func(t *testing.T) {
		src := `
name: t
states:
  - name: A
    transitions:
      - event: GO
        target: B
`
		_, err := loader.Load(strings.NewReader(src), reg)
		assert.True(t, statetable.IsDefinitionError(err))
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loader.LoadFile("testdata/missing.yaml", reg)
		assert.Error(t, err)
	})

	t.Run("unknown hook", func(t *testing.T) {
		doc := &loader.Document{Name: "t", Hook: "nope"}
		table := statetable.NewTable[*turnstile, ev](nil, nil)
		err := loader.Configure(doc, table, reg)
		assert.ErrorIs(t, err, loader.ErrUnknownHook)
	})

	t.Run("unknown error handler", func(t *testing.T) {
		doc := &loader.Document{Name: "t", ErrorHandler: "nope"}
		table := statetable.NewTable[*turnstile, ev](nil, nil)
		err := loader.Configure(doc, table, reg)
		assert.ErrorIs(t, err, loader.ErrUnknownHandler)
	})
}

func TestFromDefinition(t *testing.T) {
	reg, _ := newRegistry(t)
	def, err := loader.LoadFile("testdata/turnstile.yaml", reg)
	require.NoError(t, err)

	data, err := loader.Marshal(loader.FromDefinition(def))
	require.NoError(t, err)

	again, err := loader.Load(strings.NewReader(string(data)), reg)
	require.NoError(t, err)
	assert.Equal(t, def.StateNames(), again.StateNames())
	for _, name := range def.StateNames() {
		assert.Equal(t,
			def.State(name).Events(), again.State(name).Events(),
		)
	}
}

func mustRead(t *testing.T) []byte {
	t.Helper()
	data, err := os.ReadFile("testdata/turnstile.yaml")
	require.NoError(t, err)
	return data
}
