package statetable

import (
	"context"
	"sync"
)

type (
	// Control owns the event queue of a table instance and feeds events to
	// the Engine, one at a time
	Control[E Event] interface {
		// Start initializes the table's record and begins accepting events
		Start(ctx context.Context) error

		// Stop stops accepting and processing events
		Stop() error

		// SignalEvent queues an event at the tail
		SignalEvent(ctx context.Context, event E) error
	}

	// Injector is implemented by controls that can place an event at the
	// head of their queue
	Injector[E Event] interface {
		InjectEvent(ctx context.Context, event E) error
	}

	// SerialControl processes events on the caller's goroutine. Events
	// submitted by an actor through its TransitionContext are queued and
	// processed after the current one completes, within the same call.
	// Calls from other goroutines wait for the running call to finish and
	// then process their own event, so every caller receives the execution
	// error of the events its call processed
	SerialControl[D Data, E Event] struct {
		table   *Table[D, E]
		engine  Engine[D, E]
		queue   []E
		started bool
		mu      sync.Mutex
		drain   sync.Mutex
	}

	// enqueuer is implemented by controls that queue events submitted from
	// inside an actor differently from external submissions
	enqueuer[E Event] interface {
		enqueue(ctx context.Context, event E) error
	}
)

// NewSerialControl creates a synchronous control for table
func NewSerialControl[D Data, E Event](table *Table[D, E]) *SerialControl[D, E] {
	return &SerialControl[D, E]{table: table}
}

// Start initializes the record with the table's initial state
func (c *SerialControl[D, E]) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.started {
		return ErrAlreadyStarted
	}
	if err := initialize(ctx, c.table); err != nil {
		return err
	}
	c.started = true
	return nil
}

// Stop does nothing; a serial control owns no background resources
func (c *SerialControl[D, E]) Stop() error {
	return nil
}

// SignalEvent queues the event and processes the queue until it is empty.
// The first execution error stops the drain and is returned; events still
// queued stay queued for the next call. Actors submit follow-up events
// through their TransitionContext; a direct call from inside an actor
// deadlocks
func (c *SerialControl[D, E]) SignalEvent(ctx context.Context, event E) error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return ErrNotStarted
	}
	c.mu.Unlock()

	c.drain.Lock()
	defer c.drain.Unlock()

	if err := c.enqueue(ctx, event); err != nil {
		return err
	}
	for {
		next, ok := c.pop()
		if !ok {
			return nil
		}
		if err := c.engine.ProcessEvent(ctx, c.table, c, next); err != nil {
			return err
		}
	}
}

// Pending returns the number of queued events not yet processed
func (c *SerialControl[D, E]) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

func (c *SerialControl[D, E]) enqueue(_ context.Context, event E) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return ErrNotStarted
	}
	c.queue = append(c.queue, event)
	return nil
}

func (c *SerialControl[D, E]) pop() (E, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var zero E
	if len(c.queue) == 0 {
		return zero, false
	}
	next := c.queue[0]
	c.queue[0] = zero
	c.queue = c.queue[1:]
	return next, true
}

func initialize[D Data, E Event](ctx context.Context, t *Table[D, E]) error {
	if err := t.Validate(); err != nil {
		return err
	}
	return t.data.Initialize(ctx, t.def.InitialState())
}
