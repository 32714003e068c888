package fields

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
)

var (
	// ErrAlreadyRegistered is returned when a type name is taken.
	ErrAlreadyRegistered = errors.New("fields: handler already registered")
	// ErrNotRegistered is returned when a type name has no handler.
	ErrNotRegistered = errors.New("fields: handler not registered")
)

// Registry stores handlers by type name. It is safe for concurrent readers;
// registration is expected to happen during setup.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]Handler)}
}

// NewLeafRegistry creates a registry seeded with the built-in leaf handlers,
// minus any names listed in exclude.
func NewLeafRegistry(exclude ...string) *Registry {
	registry := NewRegistry()
	skip := make(map[string]struct{}, len(exclude))
	for _, name := range exclude {
		skip[name] = struct{}{}
	}
	for name, handler := range Builtins() {
		if _, ok := skip[name]; ok {
			continue
		}
		registry.MustRegister(name, handler)
	}
	return registry
}

// Register adds handler under name.
func (r *Registry) Register(name string, handler Handler) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("fields: handler name is required")
	}
	if handler == nil {
		return fmt.Errorf("fields: handler for %q is nil", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("%w: %q", ErrAlreadyRegistered, name)
	}
	r.handlers[name] = handler
	return nil
}

// MustRegister panics on registration failure. Useful for init-time wiring.
func (r *Registry) MustRegister(name string, handler Handler) {
	if err := r.Register(name, handler); err != nil {
		panic(err)
	}
}

// Unregister removes name. Missing names are ignored.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, strings.TrimSpace(name))
}

// Get retrieves the handler for name.
func (r *Registry) Get(name string) (Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	handler, ok := r.handlers[strings.TrimSpace(name)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNotRegistered, name)
	}
	return handler, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, ok := r.handlers[strings.TrimSpace(name)]
	return ok
}

// Names returns the registered type names sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Clone returns an independent registry holding the same handlers.
func (r *Registry) Clone() *Registry {
	r.mu.RLock()
	defer r.mu.RUnlock()

	cloned := NewRegistry()
	for name, handler := range r.handlers {
		cloned.handlers[name] = handler
	}
	return cloned
}
