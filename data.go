package statetable

import "context"

type (
	// Data is the state-holding record owned by the embedding application.
	// The Engine only reads and writes the current and prior state
	Data interface {
		GetCurrentState() string
		SetCurrentState(string)
		GetPriorState() string
		SetPriorState(string)
	}

	// DataManager produces a fresh working copy of the record for each event
	// and commits it back once the event succeeds. A copy returned by Get
	// must not alias the committed record
	DataManager[D Data, E Event] interface {
		// Initialize is called once by Control.Start with the table's
		// initial state
		Initialize(ctx context.Context, initialState string) error

		// Get returns the working copy used to process the event
		Get(ctx context.Context, event E) (D, error)

		// Set commits the working copy after a successful event
		Set(ctx context.Context, event E, data D) error
	}

	// StateRecord is a minimal Data implementation that embedding types
	// can include to satisfy the interface
	StateRecord struct {
		CurrentState string `json:"current_state" yaml:"current_state"`
		PriorState   string `json:"prior_state" yaml:"prior_state"`
	}
)

// GetCurrentState returns the current state
func (r *StateRecord) GetCurrentState() string {
	return r.CurrentState
}

// SetCurrentState sets the current state
func (r *StateRecord) SetCurrentState(state string) {
	r.CurrentState = state
}

// GetPriorState returns the prior state
func (r *StateRecord) GetPriorState() string {
	return r.PriorState
}

// SetPriorState sets the prior state
func (r *StateRecord) SetPriorState(state string) {
	r.PriorState = state
}
