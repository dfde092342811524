package transition

import (
	"fmt"
	"image"
	"math"

	"github.com/five82/montage/internal/timeline"
)

// AdjacencyTolerance is how far apart the end of one scene and the start
// of the next may be and still count as a shared boundary.
const AdjacencyTolerance = 1e-6

// Phase is the state of a transition at one instant.
type Phase int

const (
	Idle Phase = iota
	Blending
)

func (p Phase) String() string {
	if p == Blending {
		return "blending"
	}
	return "idle"
}

// Window is the blending interval of a transition in parent local time.
// Both ends are inclusive.
type Window struct {
	Start, End, Boundary float64
}

// NewWindow centers a window of duration d on the boundary between scene
// A [aStart, aEnd) and scene B [bStart, bEnd), clipped to [aStart, bEnd].
func NewWindow(aStart, aEnd, bStart, bEnd, d float64) (Window, error) {
	if d <= 0 {
		return Window{}, fmt.Errorf("duration must be positive, got %v", d)
	}
	if math.Abs(aEnd-bStart) > AdjacencyTolerance {
		return Window{}, fmt.Errorf("scenes are not adjacent: first ends at %v, second starts at %v", aEnd, bStart)
	}
	w := Window{
		Start:    max(aEnd-d/2, aStart),
		End:      min(aEnd+d/2, bEnd),
		Boundary: aEnd,
	}
	if w.End <= w.Start {
		return Window{}, fmt.Errorf("empty window at %v", aEnd)
	}
	return w, nil
}

// Contains reports whether t lies in the window.
func (w Window) Contains(t float64) bool {
	return t >= w.Start-timeline.Epsilon && t <= w.End+timeline.Epsilon
}

// Progress returns (t-Start)/(End-Start) clamped to [0,1].
func (w Window) Progress(t float64) float64 {
	p := (t - w.Start) / (w.End - w.Start)
	switch {
	case p < timeline.Epsilon:
		return 0
	case p > 1-timeline.Epsilon:
		return 1
	}
	return p
}

// Engine is one compiled transition between two sibling layers.
type Engine struct {
	Label  string
	Effect string
	// From and To are indices into the parent composition's layers.
	From, To int
	Window   Window

	effect Effect
}

// NewEngine binds an effect to a window.
func NewEngine(label, name string, effect Effect, from, to int, w Window) *Engine {
	return &Engine{Label: label, Effect: name, From: from, To: to, Window: w, effect: effect}
}

// StateAt returns the phase at parent local time t and the progress
// when blending.
func (e *Engine) StateAt(t float64) (Phase, float64) {
	if !e.Window.Contains(t) {
		return Idle, 0
	}
	return Blending, e.Window.Progress(t)
}

// Blend runs the effect. Progress 0 returns a and progress 1 returns b
// without invoking it.
func (e *Engine) Blend(a, b *image.RGBA, p float64) (*image.RGBA, error) {
	switch {
	case p <= 0:
		return a, nil
	case p >= 1:
		return b, nil
	}
	out, err := e.effect(a, b, p)
	if err != nil {
		return nil, fmt.Errorf("effect %s: %w", e.Effect, err)
	}
	return out, nil
}
