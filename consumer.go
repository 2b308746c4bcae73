package statetable

import (
	"context"
	"sync"

	"github.com/anggasct/statetable/pkg/log"
)

// ConsumerControl processes events on a single dedicated goroutine fed by
// a blocking double-ended queue. Execution errors are logged and never
// reach the submitter; a failing event does not stop the consumer
type ConsumerControl[D Data, E Event] struct {
	table       *Table[D, E]
	engine      Engine[D, E]
	deque       []E
	started     bool
	stopped     bool
	cancel      context.CancelFunc
	done        chan struct{}
	onProcessed func(E, error)
	mu          sync.Mutex
	cond        *sync.Cond
}

// NewConsumerControl creates an asynchronous control for table
func NewConsumerControl[D Data, E Event](
	table *Table[D, E],
) *ConsumerControl[D, E] {
	c := &ConsumerControl[D, E]{
		table: table,
		done:  make(chan struct{}),
	}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// WithProcessedCallback registers fn to be called on the consumer goroutine
// after each event with its outcome. It must be set before Start
func (c *ConsumerControl[D, E]) WithProcessedCallback(
	fn func(E, error),
) *ConsumerControl[D, E] {
	c.onProcessed = fn
	return c
}

// Start initializes the record and launches the consumer goroutine. The
// goroutine also exits when ctx is canceled. A failed Start shuts the
// control down and closes Done
func (c *ConsumerControl[D, E]) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return ErrShutdown
	}
	if c.started {
		return ErrAlreadyStarted
	}
	if err := initialize(ctx, c.table); err != nil {
		c.stopped = true
		close(c.done)
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	context.AfterFunc(runCtx, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.cond.Broadcast()
	})
	c.cancel = cancel
	c.started = true
	go c.run(runCtx)
	return nil
}

// Stop sets the stop flag and interrupts the consumer. It does not wait for
// an in-flight event; use Done to observe the consumer exiting
func (c *ConsumerControl[D, E]) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.started {
		return ErrNotStarted
	}
	if c.stopped {
		return nil
	}
	c.stopped = true
	c.cancel()
	c.cond.Broadcast()
	return nil
}

// Done returns a channel closed once the consumer goroutine has exited or
// Start has failed. It stays open on a control that was never started
func (c *ConsumerControl[D, E]) Done() <-chan struct{} {
	return c.done
}

// SignalEvent appends the event to the tail of the queue
func (c *ConsumerControl[D, E]) SignalEvent(_ context.Context, event E) error {
	return c.offer(event, false)
}

// InjectEvent places the event at the head of the queue so it is processed
// before anything already waiting
func (c *ConsumerControl[D, E]) InjectEvent(_ context.Context, event E) error {
	return c.offer(event, true)
}

// Pending returns the number of queued events not yet taken by the consumer
func (c *ConsumerControl[D, E]) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.deque)
}

func (c *ConsumerControl[D, E]) offer(event E, head bool) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.stopped {
		return ErrShutdown
	}
	if !c.started {
		return ErrNotStarted
	}
	if head {
		c.deque = append([]E{event}, c.deque...)
	} else {
		c.deque = append(c.deque, event)
	}
	c.cond.Signal()
	return nil
}

func (c *ConsumerControl[D, E]) run(ctx context.Context) {
	defer close(c.done)
	for {
		event, ok := c.take(ctx)
		if !ok {
			return
		}
		c.process(ctx, event)
	}
}

func (c *ConsumerControl[D, E]) take(ctx context.Context) (E, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for len(c.deque) == 0 && !c.stopped && ctx.Err() == nil {
		c.cond.Wait()
	}
	var zero E
	if c.stopped || ctx.Err() != nil {
		c.stopped = true
		return zero, false
	}
	event := c.deque[0]
	c.deque[0] = zero
	c.deque = c.deque[1:]
	return event, true
}

func (c *ConsumerControl[D, E]) process(ctx context.Context, event E) {
	var err error
	defer func() {
		if r := recover(); r != nil {
			c.table.Logger().Error("Event processing panicked",
				log.Table(c.table.Name()),
				log.Event(eventName(event)),
				log.Panic(r))
			err = panicError(r)
		}
		if c.onProcessed != nil {
			c.notifyProcessed(event, err)
		}
	}()

	err = c.engine.ProcessEvent(ctx, c.table, c, event)
	if err != nil {
		c.table.Logger().Error("Event processing failed",
			log.Table(c.table.Name()),
			log.Event(eventName(event)),
			log.Error(err))
	}
}

func (c *ConsumerControl[D, E]) notifyProcessed(event E, err error) {
	defer func() {
		if r := recover(); r != nil {
			c.table.Logger().Error("Processed callback panicked",
				log.Event(eventName(event)),
				log.Panic(r))
		}
	}()
	c.onProcessed(event, err)
}
