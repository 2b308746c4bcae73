package statetable

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_Basic(t *testing.T) {
	e1 := NewEvent("ON")
	e2 := NewEvent("ON")

	assert.Equal(t, "ON", e1.GetName())
	assert.Equal(t, "ON", e1.String())
	assert.NotEmpty(t, e1.GetID())
	assert.NotEqual(t, e1.GetID(), e2.GetID())
	assert.False(t, e1.GetTimestamp().IsZero())
}

func TestEvent_Builder(t *testing.T) {
	b := NewEventBuilder("PAY").
		With("amount", 42).
		With("currency", "EUR")
	e := b.Build()

	assert.Equal(t, "PAY", e.GetName())
	assert.Equal(t, []string{"amount", "currency"}, e.Keys())

	v, ok := e.GetData("amount")
	assert.True(t, ok)
	assert.Equal(t, 42, v)

	_, ok = e.GetData("missing")
	assert.False(t, ok)

	_, err := e.RequiredData("missing")
	assert.ErrorIs(t, err, ErrMissingEventData)

	v, err = e.RequiredData("currency")
	require.NoError(t, err)
	assert.Equal(t, "EUR", v)

	b.With("late", true)
	assert.Same(t, e, b.Build())
	_, ok = e.GetData("late")
	assert.False(t, ok)

	payload := e.Payload()
	payload["amount"] = 0
	v, _ = e.GetData("amount")
	assert.Equal(t, 42, v)
}

func TestEventName(t *testing.T) {
	var nilEvent *BasicEvent
	assert.Equal(t, "", eventName(nilEvent))
	assert.Equal(t, "", eventName(nil))
	assert.Equal(t, "GO", eventName(NewEvent("GO")))
}
