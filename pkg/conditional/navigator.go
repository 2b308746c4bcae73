// Package conditional provides an actor that picks the next state from an
// ordered list of predicates. Transitions using it must target
// statetable.StateChangedByActor
package conditional

import (
	"errors"
	"fmt"

	"github.com/anggasct/statetable"
)

type (
	// Predicate inspects the working data and the event
	Predicate[D statetable.Data, E statetable.Event] func(data D, event E) bool

	// ElsePolicy decides what happens when no predicate matches
	ElsePolicy struct {
		kind   elseKind
		target string
	}

	// Navigator is an Actor that moves the working copy to the target of
	// the first matching branch
	Navigator[D statetable.Data, E statetable.Event] struct {
		name     string
		branches []branch[D, E]
		orElse   ElsePolicy
	}

	// Builder assembles a Navigator
	Builder[D statetable.Data, E statetable.Event] struct {
		nav  *Navigator[D, E]
		errs []error
	}

	branch[D statetable.Data, E statetable.Event] struct {
		when   Predicate[D, E]
		target string
	}

	elseKind int
)

const (
	elseFail elseKind = iota
	elseStay
	elseGoTo
)

var (
	ErrNoBranchMatched = errors.New("no conditional branch matched")
	ErrUnknownTarget   = errors.New("conditional target is not a table state")
	ErrInvalidBranch   = errors.New("invalid conditional branch")
)

// Fail makes the navigator fail when no branch matches
func Fail() ElsePolicy {
	return ElsePolicy{kind: elseFail}
}

// Stay keeps the record in the state the event started in
func Stay() ElsePolicy {
	return ElsePolicy{kind: elseStay}
}

// GoTo moves the record to the named state
func GoTo(state string) ElsePolicy {
	return ElsePolicy{kind: elseGoTo, target: state}
}

func (p ElsePolicy) String() string {
	switch p.kind {
	case elseStay:
		return "stay"
	case elseGoTo:
		return "goto " + p.target
	default:
		return "fail"
	}
}

// New starts a navigator with the given display name. The default else
// policy is Fail
func New[D statetable.Data, E statetable.Event](name string) *Builder[D, E] {
	return &Builder[D, E]{
		nav: &Navigator[D, E]{name: name, orElse: Fail()},
	}
}

// When adds a branch. Branches are evaluated in the order they are added
func (b *Builder[D, E]) When(p Predicate[D, E], target string) *Builder[D, E] {
	idx := len(b.nav.branches)
	switch {
	case p == nil:
		b.errs = append(b.errs,
			fmt.Errorf("%w: branch %d has no predicate", ErrInvalidBranch, idx))
	case target == "" || statetable.IsSentinel(target):
		b.errs = append(b.errs,
			fmt.Errorf("%w: branch %d target %q", ErrInvalidBranch, idx, target))
	}
	b.nav.branches = append(b.nav.branches, branch[D, E]{when: p, target: target})
	return b
}

// Else sets the policy applied when no branch matches
func (b *Builder[D, E]) Else(p ElsePolicy) *Builder[D, E] {
	if p.kind == elseGoTo &&
		(p.target == "" || statetable.IsSentinel(p.target)) {
		b.errs = append(b.errs,
			fmt.Errorf("%w: else target %q", ErrInvalidBranch, p.target))
	}
	b.nav.orElse = p
	return b
}

// Build returns the navigator or the first configuration error
func (b *Builder[D, E]) Build() (*Navigator[D, E], error) {
	if len(b.errs) > 0 {
		return nil, errors.Join(b.errs...)
	}
	return b.nav, nil
}

// MustBuild is like Build but panics on configuration errors
func (b *Builder[D, E]) MustBuild() *Navigator[D, E] {
	nav, err := b.Build()
	if err != nil {
		panic(err)
	}
	return nav
}

// Name returns the navigator's display name
func (n *Navigator[D, E]) Name() string {
	return n.name
}

// Targets returns every state the navigator may move to, in branch order
func (n *Navigator[D, E]) Targets() []string {
	res := make([]string, 0, len(n.branches)+1)
	for _, br := range n.branches {
		res = append(res, br.target)
	}
	if n.orElse.kind == elseGoTo {
		res = append(res, n.orElse.target)
	}
	return res
}

// OnAction evaluates the branches and writes the current and prior state
// of the working copy directly
func (n *Navigator[D, E]) OnAction(
	tc *statetable.TransitionContext[D, E],
) error {
	data := tc.GetData()
	event := tc.GetEvent()
	from := tc.GetFromState()

	for _, br := range n.branches {
		if br.when(data, event) {
			return n.move(tc, from, br.target)
		}
	}

	switch n.orElse.kind {
	case elseStay:
		return n.move(tc, from, from)
	case elseGoTo:
		return n.move(tc, from, n.orElse.target)
	default:
		return fmt.Errorf("%w: %s in state %s",
			ErrNoBranchMatched, tc.GetEventName(), from)
	}
}

func (n *Navigator[D, E]) move(
	tc *statetable.TransitionContext[D, E], from, to string,
) error {
	if t := tc.GetTable(); t != nil && t.Definition() != nil &&
		!t.Definition().HasState(to) {
		return fmt.Errorf("%w: %s", ErrUnknownTarget, to)
	}
	data := tc.GetData()
	data.SetPriorState(from)
	data.SetCurrentState(to)
	return nil
}
