// Package registry keeps named components in registration order.
package registry

import (
	"fmt"
	"sync"
)

// Registry maps names to components and remembers the order they were
// registered in. Iteration always follows that order.
type Registry[T any] struct {
	mu      sync.RWMutex
	order   []string
	entries map[string]T
}

func New[T any]() *Registry[T] {
	return &Registry[T]{entries: map[string]T{}}
}

// Register adds v under name. Names must be unique and non-empty.
func (r *Registry[T]) Register(name string, v T) error {
	if name == "" {
		return fmt.Errorf("registry: empty name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.entries[name]; ok {
		return fmt.Errorf("registry: %q already registered", name)
	}
	r.entries[name] = v
	r.order = append(r.order, name)
	return nil
}

// MustRegister is Register for static wiring; it panics on a duplicate.
func (r *Registry[T]) MustRegister(name string, v T) {
	if err := r.Register(name, v); err != nil {
		panic(err)
	}
}

func (r *Registry[T]) Get(name string) (T, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	v, ok := r.entries[name]
	return v, ok
}

func (r *Registry[T]) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}

func (r *Registry[T]) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// Each calls fn for every entry in registration order and stops at the
// first error.
func (r *Registry[T]) Each(fn func(name string, v T) error) error {
	r.mu.RLock()
	names := append([]string(nil), r.order...)
	r.mu.RUnlock()

	for _, name := range names {
		v, _ := r.Get(name)
		if err := fn(name, v); err != nil {
			return err
		}
	}
	return nil
}
