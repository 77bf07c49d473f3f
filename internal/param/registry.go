// SPDX-License-Identifier: MIT
package param

import "sync"

// Registry holds a processor's parameter set, keyed by stable string ID,
// preserving declaration order for indexed display. The set itself is fixed
// after construction; the mutex only guards the map against concurrent
// lookup during registration at startup.
type Registry struct {
	mu     sync.RWMutex
	params map[string]*Parameter
	order  []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{params: make(map[string]*Parameter)}
}

// Add registers parameters. Duplicate IDs are skipped.
func (r *Registry) Add(params ...*Parameter) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, p := range params {
		if _, exists := r.params[p.ID()]; exists {
			continue
		}
		r.params[p.ID()] = p
		r.order = append(r.order, p.ID())
	}
}

// Get retrieves a parameter by ID, or nil.
func (r *Registry) Get(id string) *Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.params[id]
}

// Count returns the number of registered parameters.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.order)
}

// All returns the parameters in declaration order.
func (r *Registry) All() []*Parameter {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Parameter, len(r.order))
	for i, id := range r.order {
		out[i] = r.params[id]
	}
	return out
}

// SetSampleRate propagates the host sample rate to every parameter's
// smoother.
func (r *Registry) SetSampleRate(sampleRate float64) {
	for _, p := range r.All() {
		p.SetSampleRate(sampleRate)
	}
}
