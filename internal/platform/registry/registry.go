// internal/platform/registry/registry.go
package registry

import (
	"fmt"
	"sort"
	"sync"

	"pybaseline/internal/platform/errors"
	"pybaseline/internal/platform/logx"
)

// ErrNotRegistered is returned by Lookup for unknown names.
var ErrNotRegistered = errors.New("not registered")

// Registry is a name -> handler dispatch table. It is populated once at
// process start and read concurrently afterwards.
type Registry[H any] struct {
	mu       sync.RWMutex
	handlers map[string]H
	help     map[string]string
	order    []string
	logger   logx.Logger
}

// New creates an empty registry. kind names the handler family in logs.
func New[H any](kind string, logger logx.Logger) *Registry[H] {
	return &Registry[H]{
		handlers: make(map[string]H),
		help:     make(map[string]string),
		logger:   logger.With("component", kind+"-registry"),
	}
}

// Register adds a handler under name.
func (r *Registry[H]) Register(name, help string, handler H) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if name == "" {
		return fmt.Errorf("name cannot be empty")
	}
	if _, exists := r.handlers[name]; exists {
		return fmt.Errorf("%s is already registered", name)
	}

	r.handlers[name] = handler
	r.help[name] = help
	r.order = append(r.order, name)
	r.logger.Debug("registered", "name", name)
	return nil
}

// MustRegister panics on duplicate or empty names. Used for built-ins.
func (r *Registry[H]) MustRegister(name, help string, handler H) {
	if err := r.Register(name, help, handler); err != nil {
		panic(err)
	}
}

// Lookup returns the handler registered under name.
func (r *Registry[H]) Lookup(name string) (H, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	h, ok := r.handlers[name]
	if !ok {
		var zero H
		return zero, errors.Wrapf(ErrNotRegistered, "%q", name)
	}
	return h, nil
}

// Help returns the one-line description for name.
func (r *Registry[H]) Help(name string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.help[name]
}

// List returns every registered name, sorted.
func (r *Registry[H]) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.handlers))
	for name := range r.handlers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Ordered returns names in registration order.
func (r *Registry[H]) Ordered() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

func (r *Registry[H]) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.handlers[name]
	return ok
}

func (r *Registry[H]) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}

// Clear removes every handler. Intended for tests.
func (r *Registry[H]) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.handlers = make(map[string]H)
	r.help = make(map[string]string)
	r.order = nil
}
