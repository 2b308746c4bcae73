package conditional_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anggasct/statetable"
	"github.com/anggasct/statetable/pkg/conditional"
	"github.com/anggasct/statetable/pkg/log"
	"github.com/anggasct/statetable/pkg/store"
)

type (
	order struct {
		statetable.StateRecord
		Amount   float64 `json:"amount"`
		Priority string  `json:"priority"`
	}

	ev = *statetable.PayloadEvent
	tc = statetable.TransitionContext[*order, ev]
)

func newOrder() *order {
	return &order{}
}

func cloneOrder(o *order) *order {
	res := *o
	return &res
}

func buildTable(
	t *testing.T, nav statetable.Actor[*order, ev], seed func(*order),
) (*statetable.SerialControl[*order, ev], *store.Memory[*order, ev]) {
	t.Helper()
	def, err := statetable.NewTableBuilder[*order, ev]("orders").
		WithState("NEW").
		TransitionOnEvent("SUBMIT").
		ToState(statetable.StateChangedByActor).
		WithActorFunc("seed", func(c *tc) error {
			seed(c.GetData())
			return nil
		}).
		WithActor(nav).
		EndTransition().
		EndState().
		WithState("REVIEW").EndState().
		WithState("APPROVED").EndState().
		WithState("REJECTED").EndState().
		Build()
	require.NoError(t, err)

	dm := store.NewMemory[*order, ev](newOrder, cloneOrder)
	table := statetable.NewTable(def, dm).WithLogger(log.Discard())
	ctl := statetable.NewSerialControl(table)
	require.NoError(t, ctl.Start(context.Background()))
	return ctl, dm
}

func submit(payload map[string]any) ev {
	b := statetable.NewEventBuilder("SUBMIT")
	for k, v := range payload {
		b.With(k, v)
	}
	return b.Build()
}

func TestNavigator(t *testing.T) {
	nav := conditional.New[*order, ev]("route").
		When(conditional.DataPath[*order, ev]("amount", conditional.Greater(100)), "REVIEW").
		When(conditional.EventPathEquals[*order, ev]("decision", "reject"), "REJECTED").
		Else(conditional.GoTo("APPROVED")).
		MustBuild()
	assert.Equal(t, "route", nav.Name())
	assert.Equal(t, []string{"REVIEW", "REJECTED", "APPROVED"}, nav.Targets())

	tests := []struct {
		name    string
		amount  float64
		payload map[string]any
		want    string
	}{
		{name: "first_branch", amount: 500, want: "REVIEW"},
		{
			name:    "first_match_wins",
			amount:  500,
			payload: map[string]any{"decision": "reject"},
			want:    "REVIEW",
		},
		{
			name:    "second_branch",
			amount:  10,
			payload: map[string]any{"decision": "reject"},
			want:    "REJECTED",
		},
		{name: "else_goto", amount: 10, want: "APPROVED"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctl, dm := buildTable(t, nav, func(o *order) {
				o.Amount = tt.amount
			})
			require.NoError(t, ctl.SignalEvent(context.Background(),
				submit(tt.payload)))

			rec, err := dm.Snapshot()
			require.NoError(t, err)
			assert.Equal(t, tt.want, rec.GetCurrentState())
			assert.Equal(t, "NEW", rec.GetPriorState())
			assert.Equal(t, tt.amount, rec.Amount)
		})
	}
}

func TestNavigatorElsePolicies(t *testing.T) {
	never := conditional.Not(conditional.Always[*order, ev]())

	t.Run("fail", func(t *testing.T) {
		nav := conditional.New[*order, ev]("route").
			When(never, "REVIEW").
			MustBuild()
		ctl, dm := buildTable(t, nav, func(*order) {})

		err := ctl.SignalEvent(context.Background(), submit(nil))
		assert.ErrorIs(t, err, conditional.ErrNoBranchMatched)
		assert.ErrorIs(t, err, statetable.ErrExecution)

		rec, err := dm.Snapshot()
		require.NoError(t, err)
		assert.Equal(t, "NEW", rec.GetCurrentState())
	})

	t.Run("stay", func(t *testing.T) {
		nav := conditional.New[*order, ev]("route").
			When(never, "REVIEW").
			Else(conditional.Stay()).
			MustBuild()
		ctl, dm := buildTable(t, nav, func(o *order) { o.Priority = "low" })

		require.NoError(t, ctl.SignalEvent(context.Background(), submit(nil)))
		rec, err := dm.Snapshot()
		require.NoError(t, err)
		assert.Equal(t, "NEW", rec.GetCurrentState())
		assert.Equal(t, "NEW", rec.GetPriorState())
		assert.Equal(t, "low", rec.Priority)
	})

	t.Run("unknown_target", func(t *testing.T) {
		nav := conditional.New[*order, ev]("route").
			Else(conditional.GoTo("SHIPPED")).
			MustBuild()
		ctl, _ := buildTable(t, nav, func(*order) {})

		err := ctl.SignalEvent(context.Background(), submit(nil))
		assert.ErrorIs(t, err, conditional.ErrUnknownTarget)
	})
}

func TestBuilderValidation(t *testing.T) {
	_, err := conditional.New[*order, ev]("bad").
		When(nil, "REVIEW").
		When(conditional.Always[*order, ev](), statetable.StayInState).
		Else(conditional.GoTo("")).
		Build()
	assert.ErrorIs(t, err, conditional.ErrInvalidBranch)

	assert.Panics(t, func() {
		conditional.New[*order, ev]("bad").When(nil, "X").MustBuild()
	})
	assert.Equal(t, "fail", conditional.Fail().String())
	assert.Equal(t, "stay", conditional.Stay().String())
	assert.Equal(t, "goto X", conditional.GoTo("X").String())
}

func TestPredicates(t *testing.T) {
	rec := &order{Amount: 42, Priority: "high"}
	event := statetable.NewEventBuilder("PAY").
		With("method", "card").
		With("items", []any{map[string]any{"sku": "a"}}).
		Build()

	assert.True(t, conditional.EventIs[*order, ev]("PAY")(rec, event))
	assert.False(t, conditional.EventIs[*order, ev]("REFUND")(rec, event))

	assert.True(t, conditional.DataPathEquals[*order, ev]("priority", "high")(rec, event))
	assert.True(t, conditional.DataPathExists[*order, ev]("amount")(rec, event))
	assert.False(t, conditional.DataPathExists[*order, ev]("missing")(rec, event))
	assert.True(t, conditional.DataPath[*order, ev]("amount", conditional.AtMost(42))(rec, event))
	assert.False(t, conditional.DataPath[*order, ev]("priority", conditional.Greater(1))(rec, event))

	assert.True(t, conditional.EventPathEquals[*order, ev]("method", "card")(rec, event))
	assert.True(t, conditional.EventPathEquals[*order, ev]("items.0.sku", "a")(rec, event))

	high := conditional.DataPathEquals[*order, ev]("priority", "high")
	card := conditional.EventPathEquals[*order, ev]("method", "card")
	cash := conditional.EventPathEquals[*order, ev]("method", "cash")
	assert.True(t, conditional.All(high, card)(rec, event))
	assert.False(t, conditional.All(high, cash)(rec, event))
	assert.True(t, conditional.Any(cash, card)(rec, event))
	assert.False(t, conditional.Any(cash)(rec, event))
}

func TestEventPathWithoutPayload(t *testing.T) {
	type basic = *statetable.BasicEvent
	p := conditional.EventPathEquals[*order, basic]("method", "card")
	assert.False(t, p(&order{}, statetable.NewEvent("PAY")))
}
