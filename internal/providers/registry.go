package providers

import (
	"fmt"
	"sync"
)

// Registry es el conjunto cerrado de adaptadores, indexado por nombre.
type Registry struct {
	mu       sync.RWMutex
	adapters map[string]Adapter
	order    []string
}

func NewRegistry(adapters ...Adapter) *Registry {
	r := &Registry{adapters: make(map[string]Adapter)}
	for _, a := range adapters {
		r.Register(a)
	}
	return r
}

// Register agrega o reemplaza un adaptador. Se llama solo en el arranque.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.adapters[a.Name()]; !ok {
		r.order = append(r.order, a.Name())
	}
	r.adapters[a.Name()] = a
}

func (r *Registry) Get(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.adapters[name]
	return a, ok
}

// MustGet es para nombres que el código ya sabe registrados; un nombre
// desconocido es un error de programación.
func (r *Registry) MustGet(name string) Adapter {
	a, ok := r.Get(name)
	if !ok {
		panic(fmt.Sprintf("providers: %q not registered", name))
	}
	return a
}

// All devuelve los adaptadores en orden de registro.
func (r *Registry) All() []Adapter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Adapter, 0, len(r.order))
	for _, n := range r.order {
		out = append(out, r.adapters[n])
	}
	return out
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.order...)
}
