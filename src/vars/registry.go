package vars

import (
	"fmt"
	"sort"
	"sync"
)

// Registry holds the named variables of one node.
type Registry struct {
	mu       sync.RWMutex
	handlers map[string]Handler
}

// NewRegistry ...
func NewRegistry() *Registry {
	return &Registry{
		handlers: make(map[string]Handler),
	}
}

// Add registers h. Names are unique.
func (r *Registry) Add(h Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.handlers[h.Name()]; ok {
		return fmt.Errorf("variable %s already registered", h.Name())
	}
	r.handlers[h.Name()] = h
	return nil
}

// Put registers h, replacing any variable with the same name.
func (r *Registry) Put(h Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handlers[h.Name()] = h
}

// Remove unregisters the named variable.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, name)
}

// Handler returns the named variable.
func (r *Registry) Handler(name string) (Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handlers[name]
	return h, ok
}

// Get reads the named variable.
func (r *Registry) Get(name string) (Value, error) {
	h, ok := r.Handler(name)
	if !ok {
		return Value{}, ErrNotFound
	}
	if !h.Readable() {
		return Value{}, ErrWriteOnly
	}
	return h.Get()
}

// Set writes the variable named by v.
func (r *Registry) Set(v Value) error {
	h, ok := r.Handler(v.Name)
	if !ok {
		return ErrNotFound
	}
	if !h.Writable() {
		return ErrReadOnly
	}
	return h.Set(v)
}

// Names returns the sorted variable names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.handlers))
	for n := range r.handlers {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// List returns the values of the readable variables, sorted by name.
// Variables whose getter fails are skipped.
func (r *Registry) List() []Value {
	res := []Value{}
	for _, n := range r.Names() {
		if v, err := r.Get(n); err == nil {
			res = append(res, v)
		}
	}
	return res
}

// Len ...
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.handlers)
}
