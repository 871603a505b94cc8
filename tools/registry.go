// Adapter registry and discovery.
//
// Information Hiding:
// - Adapter storage and lookup implementation hidden
// - Registration and discovery mechanisms abstracted

package tools

import (
	"fmt"
	"sort"
	"sync"
)

// Registry manages available adapters with dynamic registration.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates a new empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
	}
}

// NewDefaultRegistry creates a registry pre-populated with every built-in
// adapter.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	for _, a := range DefaultAdapters() {
		// Built-in IDs are distinct; a collision is a programming error.
		if err := r.Register(a); err != nil {
			panic(err)
		}
	}
	return r
}

// Register adds a new adapter to the registry.
// Returns error if an adapter with the same ID already exists.
func (r *Registry) Register(a Adapter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := a.ID()
	if _, exists := r.adapters[id]; exists {
		return fmt.Errorf("adapter '%s' already registered", id)
	}
	r.adapters[id] = a
	return nil
}

// Get returns an adapter by tool ID.
func (r *Registry) Get(id string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	a, exists := r.adapters[id]
	return a, exists
}

// Has checks if an adapter exists in the registry.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.adapters[id]
	return exists
}

// IDs returns all registered tool IDs in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.adapters))
	for id := range r.adapters {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
