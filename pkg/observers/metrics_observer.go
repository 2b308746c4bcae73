package observers

import (
	"maps"
	"sync"
	"time"

	"github.com/anggasct/statetable"
)

type (
	// Metrics counts transitions, events and failures of a table. It is both
	// a TransitionHook and an ErrorHandler; chain it with other behaviors as
	// needed. Hooks run before the record is committed, so a transition
	// whose commit fails is withdrawn again when the failure is reported
	Metrics[D statetable.Data, E statetable.Event] struct {
		stateVisits      map[string]int
		stateTimeSpent   map[string]time.Duration
		eventCounts      map[string]int
		transitionCounts map[string]int
		behaviorErrors   map[string]int
		errorCount       int
		lastStateEntry   map[string]time.Time
		last             *counted[D, E]
		now              func() time.Time
		mutex            sync.RWMutex
	}

	// counted remembers what OnTransition recorded for an event
	counted[D statetable.Data, E statetable.Event] struct {
		tc        *statetable.TransitionContext[D, E]
		from      string
		to        string
		spent     time.Duration
		fromEntry time.Time
		hadEntry  bool
	}
)

// NewMetrics creates a new metrics collector
func NewMetrics[D statetable.Data, E statetable.Event]() *Metrics[D, E] {
	m := &Metrics[D, E]{now: time.Now}
	m.reset()
	return m
}

// Name returns the collector's display name
func (o *Metrics[D, E]) Name() string {
	return "metrics"
}

// OnTransition records a transition that passed all of its actors
func (o *Metrics[D, E]) OnTransition(tc *statetable.TransitionContext[D, E]) error {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	from := tc.GetFromState()
	to := tc.GetResolvedTargetState()
	now := o.now()
	c := &counted[D, E]{tc: tc, from: from, to: to}

	if entry, ok := o.lastStateEntry[from]; ok {
		c.spent = now.Sub(entry)
		c.fromEntry = entry
		c.hadEntry = true
		o.stateTimeSpent[from] += c.spent
		delete(o.lastStateEntry, from)
	}
	o.lastStateEntry[to] = now
	o.stateVisits[to]++
	o.eventCounts[tc.GetEventName()]++
	o.transitionCounts[from+"->"+to]++
	o.last = c
	return nil
}

// OnError records a failed event
func (o *Metrics[D, E]) OnError(
	tc *statetable.TransitionContext[D, E], failing statetable.Behavior, _ error,
) {
	o.mutex.Lock()
	defer o.mutex.Unlock()

	o.errorCount++
	o.behaviorErrors[statetable.BehaviorName(failing)]++
	if c := o.last; c != nil && c.tc == tc {
		o.withdraw(c)
		return
	}
	o.eventCounts[tc.GetEventName()]++
}

// withdraw undoes the transition recorded for an event whose commit failed.
// The event itself stays counted
func (o *Metrics[D, E]) withdraw(c *counted[D, E]) {
	o.last = nil
	decrement(o.stateVisits, c.to)
	decrement(o.transitionCounts, c.from+"->"+c.to)
	delete(o.lastStateEntry, c.to)
	if !c.hadEntry {
		return
	}
	o.stateTimeSpent[c.from] -= c.spent
	if o.stateTimeSpent[c.from] <= 0 {
		delete(o.stateTimeSpent, c.from)
	}
	o.lastStateEntry[c.from] = c.fromEntry
}

func decrement(m map[string]int, key string) {
	if m[key] <= 1 {
		delete(m, key)
		return
	}
	m[key]--
}

// GetStateVisitCounts returns the number of times each state was entered
func (o *Metrics[D, E]) GetStateVisitCounts() map[string]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return maps.Clone(o.stateVisits)
}

// GetStateTimeSpent returns the time spent in each state that was left
func (o *Metrics[D, E]) GetStateTimeSpent() map[string]time.Duration {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return maps.Clone(o.stateTimeSpent)
}

// GetEventCounts returns the number of times each event was processed,
// successful or not
func (o *Metrics[D, E]) GetEventCounts() map[string]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return maps.Clone(o.eventCounts)
}

// GetTransitionCounts returns the number of times each from->to pair
// occurred
func (o *Metrics[D, E]) GetTransitionCounts() map[string]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return maps.Clone(o.transitionCounts)
}

// GetBehaviorErrors returns failure counts keyed by failing behavior name
func (o *Metrics[D, E]) GetBehaviorErrors() map[string]int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return maps.Clone(o.behaviorErrors)
}

// GetErrorCount returns the number of failed events
func (o *Metrics[D, E]) GetErrorCount() int {
	o.mutex.RLock()
	defer o.mutex.RUnlock()
	return o.errorCount
}

// Reset resets all metrics
func (o *Metrics[D, E]) Reset() {
	o.mutex.Lock()
	defer o.mutex.Unlock()
	o.reset()
}

func (o *Metrics[D, E]) reset() {
	o.stateVisits = make(map[string]int)
	o.stateTimeSpent = make(map[string]time.Duration)
	o.eventCounts = make(map[string]int)
	o.transitionCounts = make(map[string]int)
	o.behaviorErrors = make(map[string]int)
	o.errorCount = 0
	o.lastStateEntry = make(map[string]time.Time)
	o.last = nil
}
