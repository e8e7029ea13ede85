package provider

import (
	"context"
	"strings"
	"sync"
)

// Registry is a concurrency-safe directory of adapters keyed by lowercase
// provider name. Lookups take a shared lock so concurrent sends never block
// on each other; the lock is never held across the send itself.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
}

// NewRegistry creates an empty adapter registry.
func NewRegistry() *Registry {
	return &Registry{
		adapters: make(map[string]Adapter),
	}
}

// Register stores the adapter under its lowercased name. Re-registering a
// name overwrites the previous adapter, which is how test doubles are
// hot-swapped in.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.adapters[strings.ToLower(a.Name())] = a
}

// Get returns the adapter for the given name, case-insensitively. Misses
// fail with *ErrUnknownProvider; an unknown name is a configuration error
// and is never silently substituted.
func (r *Registry) Get(name string) (Adapter, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[strings.ToLower(name)]
	if !ok {
		return nil, &ErrUnknownProvider{Name: name}
	}
	return a, nil
}

// List returns the names of all registered adapters.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.adapters))
	for name := range r.adapters {
		names = append(names, name)
	}
	return names
}

// All returns all registered adapters.
func (r *Registry) All() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	adapters := make([]Adapter, 0, len(r.adapters))
	for _, a := range r.adapters {
		adapters = append(adapters, a)
	}
	return adapters
}

// CloseAll closes every registered adapter. Called once at shutdown.
func (r *Registry) CloseAll(ctx context.Context) {
	for _, a := range r.All() {
		_ = a.Close(ctx)
	}
}
