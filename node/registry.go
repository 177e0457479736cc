package node

import (
	"fmt"
	"sort"
	"sync"
)

// Registry is a thread-safe registry mapping model identifiers to specs.
// The workflow host enumerates it to build its node palette; the executor
// resolves models through it at execution time.
type Registry struct {
	specs map[string]*Spec
	mu    sync.RWMutex
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{specs: make(map[string]*Spec)}
}

// Register validates and adds a spec. A spec with the same model id
// replaces the previous one.
func (r *Registry) Register(spec *Spec) error {
	if spec == nil {
		return fmt.Errorf("registry: nil spec")
	}
	if err := spec.Validate(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.specs[spec.Model] = spec
	return nil
}

// MustRegister registers a spec and panics on validation failure.
// Catalog tables use it at init time, where a bad table is a bug.
func (r *Registry) MustRegister(spec *Spec) {
	if err := r.Register(spec); err != nil {
		panic(err)
	}
}

// Get retrieves a spec by model id.
func (r *Registry) Get(model string) (*Spec, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.specs[model]
	return s, ok
}

// List returns the sorted model ids of all registered specs.
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	models := make([]string, 0, len(r.specs))
	for model := range r.specs {
		models = append(models, model)
	}
	sort.Strings(models)
	return models
}

// Unregister removes a spec.
func (r *Registry) Unregister(model string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.specs, model)
}

// Len returns the number of registered specs.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.specs)
}
