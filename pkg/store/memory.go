// Package store provides DataManager implementations that keep a table
// instance's state-holding record in memory or in Redis
package store

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	"github.com/anggasct/statetable"
)

type (
	// Memory keeps the committed record in process memory. Every Get returns
	// a clone, so a discarded working copy never touches the committed one
	Memory[D statetable.Data, E statetable.Event] struct {
		newData func() D
		clone   func(D) D
		record  D
		ready   bool
		mu      sync.RWMutex
	}

	// CloneFunc produces an independent copy of a record
	CloneFunc[D statetable.Data] func(D) D
)

var (
	ErrNotInitialized = errors.New("record not initialized")
	ErrRecordNotFound = errors.New("record not found")
)

// NewMemory creates an in-memory data manager. newData allocates a blank
// record and clone copies one
func NewMemory[D statetable.Data, E statetable.Event](
	newData func() D, clone CloneFunc[D],
) *Memory[D, E] {
	return &Memory[D, E]{
		newData: newData,
		clone:   clone,
	}
}

// Initialize resets the record to a blank one in the initial state
func (m *Memory[D, E]) Initialize(_ context.Context, initial string) error {
	rec := m.newData()
	rec.SetCurrentState(initial)
	rec.SetPriorState("")

	m.mu.Lock()
	defer m.mu.Unlock()
	m.record = rec
	m.ready = true
	return nil
}

// Get returns a working copy of the committed record
func (m *Memory[D, E]) Get(_ context.Context, _ E) (D, error) {
	return m.Snapshot()
}

// Set commits the working copy
func (m *Memory[D, E]) Set(_ context.Context, _ E, data D) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.ready {
		return ErrNotInitialized
	}
	m.record = m.clone(data)
	return nil
}

// Snapshot returns a copy of the committed record
func (m *Memory[D, E]) Snapshot() (D, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.ready {
		var zero D
		return zero, ErrNotInitialized
	}
	return m.clone(m.record), nil
}

// JSONClone returns a CloneFunc that deep copies a record through its JSON
// encoding. newData allocates the destination
func JSONClone[D statetable.Data](newData func() D) CloneFunc[D] {
	return func(src D) D {
		dst := newData()
		b, err := json.Marshal(src)
		if err != nil {
			panic(err)
		}
		if err := json.Unmarshal(b, dst); err != nil {
			panic(err)
		}
		return dst
	}
}
