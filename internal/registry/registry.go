package registry

import (
	"fmt"
	"sync"

	"mcpd/pkg/types"
)

// Registry is an in-memory, insertion-ordered catalog of model descriptors.
// It is populated once at startup; all request-path access is read-only,
// so a single RWMutex is enough.
type Registry struct {
	mu     sync.RWMutex
	byID   map[string]types.ModelDescriptor
	order  []string
}

// New returns an empty registry.
func New() *Registry {
	return &Registry{byID: make(map[string]types.ModelDescriptor)}
}

// Register adds a descriptor. The id must be unique and the capability set
// non-empty; descriptors are immutable once registered.
func (r *Registry) Register(desc types.ModelDescriptor) error {
	if desc.ID == "" {
		return fmt.Errorf("register: empty model id")
	}
	if len(desc.Capabilities) == 0 {
		return fmt.Errorf("register %s: empty capability set", desc.ID)
	}
	for _, c := range desc.Capabilities {
		if !c.Valid() {
			return fmt.Errorf("register %s: unknown capability %q", desc.ID, c)
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byID[desc.ID]; exists {
		return ErrDuplicateModel(desc.ID)
	}
	r.byID[desc.ID] = desc
	r.order = append(r.order, desc.ID)
	return nil
}

// Lookup returns the descriptor for id. An empty id is reported the same
// way as any other unknown id.
func (r *Registry) Lookup(id string) (types.ModelDescriptor, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	desc, ok := r.byID[id]
	if !ok {
		return types.ModelDescriptor{}, ErrModelNotFound(id)
	}
	return desc, nil
}

// List returns all descriptors in registration order.
func (r *Registry) List() []types.ModelDescriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]types.ModelDescriptor, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id])
	}
	return out
}
