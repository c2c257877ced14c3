package carrier

import (
	"sync"
)

// Registry maps carrier names to registered carriers.
type Registry struct {
	carriers map[string]Carrier
	mu       sync.RWMutex
}

// NewRegistry creates a new carrier registry.
func NewRegistry() *Registry {
	return &Registry{
		carriers: make(map[string]Carrier),
	}
}

// Register stores a carrier under name. Registering the same name again
// replaces the earlier carrier.
func (r *Registry) Register(name string, c Carrier) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carriers[name] = c
}

// Get returns a carrier by name. An unknown name is a configuration error,
// never a transient one.
func (r *Registry) Get(name string) (Carrier, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if c, ok := r.carriers[name]; ok {
		return c, nil
	}
	return nil, NewError(CodeUnsupportedCarrier, "carrier not registered: "+name).
		WithDetails(map[string]string{"name": name})
}

// Names returns the names of all registered carriers.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.carriers))
	for name := range r.carriers {
		names = append(names, name)
	}
	return names
}

// Count returns the number of registered carriers.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.carriers)
}
