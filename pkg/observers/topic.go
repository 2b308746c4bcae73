package observers

import (
	"time"

	"github.com/google/uuid"
	"github.com/kode4food/caravan/message"
	"github.com/kode4food/caravan/topic"

	"github.com/anggasct/statetable"
)

type (
	// Notification describes a transition that passed all of its actors
	Notification struct {
		ID        string
		Table     string
		FromState string
		ToState   string
		Event     string
		Time      time.Time
	}

	// Publisher is a TransitionHook that sends a Notification to a caravan
	// topic for every transition
	Publisher[D statetable.Data, E statetable.Event] struct {
		prod topic.Producer[*Notification]
	}
)

// NewPublisher creates a hook producing into t
func NewPublisher[D statetable.Data, E statetable.Event](
	t topic.Topic[*Notification],
) *Publisher[D, E] {
	return &Publisher[D, E]{prod: t.NewProducer()}
}

// Name returns the hook's display name
func (p *Publisher[D, E]) Name() string {
	return "publisher"
}

// OnTransition publishes the transition
func (p *Publisher[D, E]) OnTransition(tc *statetable.TransitionContext[D, E]) error {
	message.Send(p.prod, &Notification{
		ID:        uuid.New().String(),
		Table:     tc.GetTableName(),
		FromState: tc.GetFromState(),
		ToState:   tc.GetResolvedTargetState(),
		Event:     tc.GetEventName(),
		Time:      time.Now(),
	})
	return nil
}

// Close closes the underlying producer
func (p *Publisher[D, E]) Close() {
	p.prod.Close()
}
