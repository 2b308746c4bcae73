package statetable

import "slices"

// TableDefinition is the immutable graph produced by a TableBuilder. The
// first state added is the initial state
type TableDefinition[D Data, E Event] struct {
	name   string
	states map[string]*StateDefinition[D, E]
	order  []string
}

// Name returns the table name
func (t *TableDefinition[D, E]) Name() string {
	return t.name
}

// InitialState returns the name of the first state added to the table
func (t *TableDefinition[D, E]) InitialState() string {
	return t.order[0]
}

// State returns the state definition with the given name, or nil
func (t *TableDefinition[D, E]) State(name string) *StateDefinition[D, E] {
	return t.states[name]
}

// HasState reports whether the table declares a state with the given name
func (t *TableDefinition[D, E]) HasState(name string) bool {
	_, ok := t.states[name]
	return ok
}

// States returns the state definitions in insertion order
func (t *TableDefinition[D, E]) States() []*StateDefinition[D, E] {
	res := make([]*StateDefinition[D, E], 0, len(t.order))
	for _, name := range t.order {
		res = append(res, t.states[name])
	}
	return res
}

// StateNames returns the state names in insertion order
func (t *TableDefinition[D, E]) StateNames() []string {
	return slices.Clone(t.order)
}
