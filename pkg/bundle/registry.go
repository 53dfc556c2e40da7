package bundle

import (
	"context"
	"fmt"
	"sort"
	"sync"
)

// LoadFunc produces a bundle in process, the equivalent of a dynamic import.
type LoadFunc func(ctx context.Context) (*Bundle, error)

// Registry is a Source backed by registered LoadFuncs.
type Registry struct {
	mu    sync.RWMutex
	funcs map[string]LoadFunc
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]LoadFunc)}
}

// Register adds or replaces the LoadFunc for loaderID.
func (r *Registry) Register(loaderID string, fn LoadFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.funcs[loaderID] = fn
}

// IDs returns the registered loader IDs in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.funcs))
	for id := range r.funcs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Fetch implements Source.
func (r *Registry) Fetch(ctx context.Context, loaderID string) (*Bundle, error) {
	r.mu.RLock()
	fn, ok := r.funcs[loaderID]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no loader registered for %q", ErrNotFound, loaderID)
	}
	return fn(ctx)
}
