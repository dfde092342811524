package render

import (
	"fmt"
	"sort"
	"sync"

	"github.com/five82/montage/internal/animate"
	"github.com/five82/montage/internal/model"
)

// Drawer paints one element. st is the element state for the frame with
// geometry in parent pixels; the surface transform already places,
// rotates and scales it about the anchor.
type Drawer interface {
	Draw(st animate.State, s *Surface) error
}

// Closer is implemented by drawers holding resources such as decoded
// images or open documents.
type Closer interface {
	Close() error
}

// Factory builds a drawer for one element. It runs at most once per
// element per renderer, so drawers may cache decoded assets.
type Factory func(el *model.Element) (Drawer, error)

// FrameInfo describes the frame being rendered.
type FrameInfo struct {
	// Index is the frame number, or -1 for a single-frame render.
	Index int
	// Time is the global time of the frame.
	Time float64
	// Local is the element's local time.
	Local float64
	FPS   int
}

// Hook observes or adjusts an element while it renders.
//
// OnLoaded fires the first time the element is active within a chunk of
// frames. OnFrame fires on every active frame before drawing and may
// return a modified state.
type Hook interface {
	OnLoaded(st animate.State) error
	OnFrame(st animate.State, info FrameInfo, s *Surface) (animate.State, error)
}

// HookFactory builds a hook instance for one element.
type HookFactory func(el *model.Element) (Hook, error)

// Registry maps element types to drawer factories and hook names to hook
// factories. Registration normally happens before rendering starts; the
// registry is safe for concurrent use either way.
type Registry struct {
	mu      sync.RWMutex
	drawers map[string]Factory
	hooks   map[string]HookFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		drawers: make(map[string]Factory),
		hooks:   make(map[string]HookFactory),
	}
}

// RegisterDrawer binds an element type to a factory.
func (r *Registry) RegisterDrawer(typ string, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drawers[typ] = f
}

// RegisterHook binds a hook name to a factory.
func (r *Registry) RegisterHook(name string, f HookFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.hooks[name] = f
}

// HasDrawer reports whether typ can be drawn. Composition elements are
// always drawable.
func (r *Registry) HasDrawer(typ string) bool {
	if typ == model.TypeComposition {
		return true
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.drawers[typ]
	return ok
}

// HasHook reports whether a hook is registered under name.
func (r *Registry) HasHook(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.hooks[name]
	return ok
}

// Types returns the registered element types in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	types := make([]string, 0, len(r.drawers))
	for t := range r.drawers {
		types = append(types, t)
	}
	sort.Strings(types)
	return types
}

func (r *Registry) newDrawer(el *model.Element) (Drawer, error) {
	r.mu.RLock()
	f, ok := r.drawers[el.Type]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("no drawer for element type %q", el.Type)
	}
	return f(el)
}

func (r *Registry) newHook(name string, el *model.Element) (Hook, error) {
	r.mu.RLock()
	f, ok := r.hooks[name]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unknown hook %q", name)
	}
	return f(el)
}
