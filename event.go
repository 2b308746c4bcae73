package statetable

import (
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
)

type (
	// Event is anything that can be dispatched against a table
	Event interface {
		GetName() string
	}

	// BasicEvent is a named event without payload
	BasicEvent struct {
		id        string
		name      string
		timestamp time.Time
	}

	// PayloadEvent is an immutable named event carrying read-only values
	PayloadEvent struct {
		BasicEvent
		data map[string]any
	}

	// EventBuilder accumulates payload values before producing a
	// PayloadEvent
	EventBuilder struct {
		name  string
		data  map[string]any
		built *PayloadEvent
	}
)

// NewEvent creates a new event with the given name
func NewEvent(name string) *BasicEvent {
	return &BasicEvent{
		id:        uuid.New().String(),
		name:      name,
		timestamp: time.Now(),
	}
}

// GetName returns the event name
func (e *BasicEvent) GetName() string {
	return e.name
}

// GetID returns the unique identifier assigned at construction
func (e *BasicEvent) GetID() string {
	return e.id
}

// GetTimestamp returns the creation time of the event
func (e *BasicEvent) GetTimestamp() time.Time {
	return e.timestamp
}

func (e *BasicEvent) String() string {
	return e.name
}

// NewEventBuilder starts building a payload event with the given name
func NewEventBuilder(name string) *EventBuilder {
	return &EventBuilder{
		name: name,
		data: map[string]any{},
	}
}

// With adds a named value to the event being built. Calls made after Build
// have no effect
func (b *EventBuilder) With(key string, value any) *EventBuilder {
	if b.built != nil {
		return b
	}
	b.data[key] = value
	return b
}

// Build finalizes the event. Subsequent calls return the same instance
func (b *EventBuilder) Build() *PayloadEvent {
	if b.built == nil {
		b.built = &PayloadEvent{
			BasicEvent: *NewEvent(b.name),
			data:       maps.Clone(b.data),
		}
		b.data = nil
	}
	return b.built
}

// GetData returns the value stored under key
func (e *PayloadEvent) GetData(key string) (any, bool) {
	v, ok := e.data[key]
	return v, ok
}

// RequiredData returns the value stored under key, or ErrMissingEventData
func (e *PayloadEvent) RequiredData(key string) (any, error) {
	if v, ok := e.data[key]; ok {
		return v, nil
	}
	return nil, fmt.Errorf("%w: %q on event %s",
		ErrMissingEventData, key, e.name)
}

// Keys returns the payload keys in sorted order
func (e *PayloadEvent) Keys() []string {
	return slices.Sorted(maps.Keys(e.data))
}

// Payload returns a copy of the event payload
func (e *PayloadEvent) Payload() map[string]any {
	return maps.Clone(e.data)
}
