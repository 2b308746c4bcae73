package statetable

import (
	"fmt"
	"maps"
	"slices"
	"sync"
)

// Registry maps behavior names to implementations. It is populated by the
// embedding code before a table is built and lets definitions refer to
// behaviors by name
type Registry[D Data, E Event] struct {
	actors   map[string]Actor[D, E]
	hooks    map[string]TransitionHook[D, E]
	handlers map[string]ErrorHandler[D, E]
	mu       sync.RWMutex
}

// NewRegistry creates an empty behavior registry
func NewRegistry[D Data, E Event]() *Registry[D, E] {
	return &Registry[D, E]{
		actors:   map[string]Actor[D, E]{},
		hooks:    map[string]TransitionHook[D, E]{},
		handlers: map[string]ErrorHandler[D, E]{},
	}
}

// RegisterActor binds an actor to name
func (r *Registry[D, E]) RegisterActor(name string, a Actor[D, E]) error {
	if a == nil {
		return fmt.Errorf("nil actor %q", name)
	}
	return register(&r.mu, r.actors, name, a)
}

// RegisterActorFunc binds fn to name as an actor with the same display name
func (r *Registry[D, E]) RegisterActorFunc(
	name string, fn func(*TransitionContext[D, E]) error,
) error {
	return r.RegisterActor(name, NewActor(name, fn))
}

// Actor looks up an actor by name
func (r *Registry[D, E]) Actor(name string) (Actor[D, E], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.actors[name]
	return a, ok
}

// ActorNames returns the registered actor names in sorted order
func (r *Registry[D, E]) ActorNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Sorted(maps.Keys(r.actors))
}

// RegisterHook binds a transition hook to name
func (r *Registry[D, E]) RegisterHook(
	name string, h TransitionHook[D, E],
) error {
	if h == nil {
		return fmt.Errorf("nil transition hook %q", name)
	}
	return register(&r.mu, r.hooks, name, h)
}

// Hook looks up a transition hook by name
func (r *Registry[D, E]) Hook(name string) (TransitionHook[D, E], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.hooks[name]
	return h, ok
}

// RegisterErrorHandler binds an error handler to name
func (r *Registry[D, E]) RegisterErrorHandler(
	name string, h ErrorHandler[D, E],
) error {
	if h == nil {
		return fmt.Errorf("nil error handler %q", name)
	}
	return register(&r.mu, r.handlers, name, h)
}

// ErrorHandler looks up an error handler by name
func (r *Registry[D, E]) ErrorHandler(name string) (ErrorHandler[D, E], bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

func register[T any](mu *sync.RWMutex, m map[string]T, name string, v T) error {
	if name == "" {
		return ErrEmptyBehaviorName
	}
	mu.Lock()
	defer mu.Unlock()
	if _, ok := m[name]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateBehavior, name)
	}
	m[name] = v
	return nil
}
