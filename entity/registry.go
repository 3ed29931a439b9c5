package entity

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the entities one application works with. It is passed
// explicitly to DAOs and template compilation; there is no global instance.
type Registry struct {
	mu       sync.RWMutex
	entities map[string]*Entity
}

func NewRegistry() *Registry {
	return &Registry{entities: make(map[string]*Entity)}
}

// Register initializes e and adds it under e.Name.
func (r *Registry) Register(e *Entity) error {
	if err := e.Init(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.entities[e.Name]; exists {
		return fmt.Errorf("%w: %s registered twice", ErrInvalidEntity, e.Name)
	}
	r.entities[e.Name] = e
	return nil
}

// MustRegister is Register for package-level setup code.
func (r *Registry) MustRegister(es ...*Entity) *Registry {
	for _, e := range es {
		if err := r.Register(e); err != nil {
			panic(err)
		}
	}
	return r
}

func (r *Registry) Get(name string) (*Entity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.entities[name]
	return e, ok
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.entities))
	for n := range r.entities {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
