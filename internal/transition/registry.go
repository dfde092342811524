// Package transition blends two adjacent scenes across their shared
// boundary.
package transition

import (
	"fmt"
	"image"
	"sort"
	"strings"
	"sync"
)

// Effect blends frame a into frame b. p is the progress in [0,1]. Both
// frames have the same bounds. The result may alias neither input.
type Effect func(a, b *image.RGBA, p float64) (*image.RGBA, error)

// Registry maps effect names to implementations. It is safe for
// concurrent use.
type Registry struct {
	mu      sync.RWMutex
	effects map[string]Effect
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{effects: make(map[string]Effect)}
}

// DefaultRegistry returns a registry holding the built-in effects.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for name, e := range builtins {
		r.effects[name] = e
	}
	return r
}

// Register adds or replaces an effect.
func (r *Registry) Register(name string, e Effect) error {
	key := strings.ToLower(strings.TrimSpace(name))
	if key == "" {
		return fmt.Errorf("effect name is empty")
	}
	if e == nil {
		return fmt.Errorf("effect %q is nil", name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.effects[key] = e
	return nil
}

// Lookup returns the effect registered under name.
func (r *Registry) Lookup(name string) (Effect, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.effects[strings.ToLower(strings.TrimSpace(name))]
	return e, ok
}

// Names returns the registered effect names in sorted order.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.effects))
	for n := range r.effects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
