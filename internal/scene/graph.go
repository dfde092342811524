// Package scene compiles a composition tree into an immutable, index
// addressed render graph and validates it.
package scene

import (
	"github.com/gogpu/gg"

	"github.com/five82/montage/internal/model"
	"github.com/five82/montage/internal/timeline"
	"github.com/five82/montage/internal/transition"
)

// None marks an absent arena index.
const None = -1

// Graph is the compiled form of a composition tree. Compositions, layers
// and elements live in flat arenas and refer to each other by index.
// A Graph is read-only after Compile and may be shared by any number of
// renderers.
type Graph struct {
	Root     int
	Comps    []Comp
	Layers   []Layer
	Elements []Element

	// Viewport is the root composition size.
	Viewport model.Size
	FPS      int
	Duration float64
	Frames   int
}

// Comp is a compiled composition. A composition referenced from several
// places is compiled once per distinct inherited duration.
type Comp struct {
	ID string
	// Size is the logical drawing size. Zero means the composition takes
	// the size of each placement.
	Size          model.Size
	Duration      float64
	Background    gg.RGBA
	HasBackground bool

	// Layers holds arena indices in declaration order. Timeline orders
	// them for painting.
	Layers      []int
	Timeline    *timeline.Timeline
	Transitions []*transition.Engine
}

// Layer is a compiled layer. Start and Duration are resolved against the
// owning composition.
type Layer struct {
	Name     string
	Comp     int
	Start    float64
	Duration float64
	ZIndex   int

	// Child is the nested composition of a composition layer, or None.
	Child int
	X, Y  model.Value
	W, H  model.Value

	Elements []int
	Timeline *timeline.Timeline
}

// End returns the exclusive end of the layer window.
func (l *Layer) End() float64 {
	return l.Start + l.Duration
}

// Label names the layer in errors.
func (l *Layer) Label() string {
	return l.Name
}

// Element is a compiled element. Start and Duration are resolved against
// the owning layer.
type Element struct {
	Model    *model.Element
	Layer    int
	Start    float64
	Duration float64
	// Child is the nested composition of a composition element, or None.
	Child int
}

// Type returns the element type tag.
func (e *Element) Type() string {
	return e.Model.Type
}

// Label names the element in errors.
func (e *Element) Label() string {
	return e.Model.Label()
}

// FrameTime returns the global time of frame i.
func (g *Graph) FrameTime(i int) float64 {
	return timeline.FrameTime(i, g.FPS)
}

// RootComp returns the root composition.
func (g *Graph) RootComp() *Comp {
	return &g.Comps[g.Root]
}

// LogicalSize returns the size a composition draws at when placed in an
// area of the given size.
func (g *Graph) LogicalSize(comp int, area model.Size) model.Size {
	c := &g.Comps[comp]
	if c.Size.W > 0 && c.Size.H > 0 {
		return c.Size
	}
	return area
}

// Placement resolves a composition layer's box inside an area.
func (l *Layer) Placement(area, viewport model.Size) (x, y, w, h float64, err error) {
	if x, err = l.X.Resolve(model.AxisX, area, viewport); err != nil {
		return
	}
	if y, err = l.Y.Resolve(model.AxisY, area, viewport); err != nil {
		return
	}
	w, h = area.W, area.H
	if l.W.IsSet() {
		if w, err = l.W.Resolve(model.AxisX, area, viewport); err != nil {
			return
		}
	}
	if l.H.IsSet() {
		if h, err = l.H.Resolve(model.AxisY, area, viewport); err != nil {
			return
		}
	}
	return x, y, w, h, nil
}

// ElementTypes returns the distinct element types used in the graph.
func (g *Graph) ElementTypes() []string {
	seen := make(map[string]bool)
	var types []string
	for i := range g.Elements {
		t := g.Elements[i].Type()
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	return types
}
