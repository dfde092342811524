// Package model defines the declarative composition tree: compositions,
// layers, elements, animations and transitions.
//
// The model is plain data. It is built once, from Go code or from a YAML
// file, and then compiled by package scene into an immutable render graph.
// Nothing in the render path mutates it.
package model

import "fmt"

// Element type tags understood by the built-in drawers.
const (
	TypeRect        = "rect"
	TypeEllipse     = "ellipse"
	TypeCircle      = "circle"
	TypeText        = "text"
	TypeImage       = "image"
	TypePDF         = "pdf"
	TypeQRCode      = "qrcode"
	TypeAudio       = "audio"
	TypeComposition = "composition"
)

// Composition is a timed scene graph with its own size, frame rate and
// ordered layers. A composition nested in a layer or element is drawn at
// the size of its placement.
type Composition struct {
	ID          string       `yaml:"id,omitempty"`
	Width       int          `yaml:"width,omitempty"`
	Height      int          `yaml:"height,omitempty"`
	FPS         int          `yaml:"fps,omitempty"`
	Duration    float64      `yaml:"duration"`
	Background  string       `yaml:"background,omitempty"`
	Layers      []*Layer     `yaml:"layers,omitempty"`
	Transitions []Transition `yaml:"transitions,omitempty"`
}

// Layer is a time-scoped bucket inside a composition. It holds either a
// flat list of elements or a single nested composition.
type Layer struct {
	Name     string  `yaml:"name,omitempty"`
	Start    float64 `yaml:"start,omitempty"`
	Duration float64 `yaml:"duration,omitempty"` // <= 0 means until the parent ends
	ZIndex   int     `yaml:"z,omitempty"`

	Elements    []*Element   `yaml:"elements,omitempty"`
	Composition *Composition `yaml:"composition,omitempty"`
	Ref         string       `yaml:"ref,omitempty"`

	// Placement of a composition layer. Unset values default to the full
	// parent area.
	X      Value `yaml:"x,omitempty"`
	Y      Value `yaml:"y,omitempty"`
	Width  Value `yaml:"width,omitempty"`
	Height Value `yaml:"height,omitempty"`
}

// IsComposition reports whether the layer carries a nested composition.
func (l *Layer) IsComposition() bool {
	return l.Composition != nil
}

// Element is the atomic unit of content.
type Element struct {
	ID       string  `yaml:"id,omitempty"`
	Type     string  `yaml:"type"`
	Start    float64 `yaml:"start,omitempty"`
	Duration float64 `yaml:"duration,omitempty"` // <= 0 means until the layer ends
	ZIndex   int     `yaml:"z,omitempty"`

	X      Value `yaml:"x,omitempty"`
	Y      Value `yaml:"y,omitempty"`
	Width  Value `yaml:"width,omitempty"`
	Height Value `yaml:"height,omitempty"`

	// Anchor is the pivot for rotation and scale, as a fraction of the
	// element box. (0,0) is the top-left corner.
	AnchorX float64 `yaml:"anchorX,omitempty"`
	AnchorY float64 `yaml:"anchorY,omitempty"`

	Opacity  *float64 `yaml:"opacity,omitempty"`
	Rotation float64  `yaml:"rotation,omitempty"` // degrees, clockwise
	ScaleX   *float64 `yaml:"scaleX,omitempty"`
	ScaleY   *float64 `yaml:"scaleY,omitempty"`
	Color    string   `yaml:"color,omitempty"`

	Props      map[string]any `yaml:"props,omitempty"`
	Animations []Animation    `yaml:"animations,omitempty"`
	Hooks      []string       `yaml:"hooks,omitempty"`

	// Optional elements whose asset is missing draw nothing instead of
	// failing the export.
	Optional bool `yaml:"optional,omitempty"`

	Composition *Composition `yaml:"composition,omitempty"`
	Ref         string       `yaml:"ref,omitempty"`
}

// Label returns the element ID, or a positional description when unset.
func (e *Element) Label() string {
	if e.ID != "" {
		return e.ID
	}
	return fmt.Sprintf("<%s>", e.Type)
}

// PropString returns a string property or def.
func (e *Element) PropString(key, def string) string {
	if v, ok := e.Props[key]; ok {
		switch s := v.(type) {
		case string:
			return s
		case fmt.Stringer:
			return s.String()
		default:
			return fmt.Sprint(v)
		}
	}
	return def
}

// PropFloat returns a numeric property or def.
func (e *Element) PropFloat(key string, def float64) float64 {
	switch v := e.Props[key].(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case uint64:
		return float64(v)
	default:
		return def
	}
}

// PropInt returns an integer property or def.
func (e *Element) PropInt(key string, def int) int {
	return int(e.PropFloat(key, float64(def)))
}

// PropBool returns a boolean property or def.
func (e *Element) PropBool(key string, def bool) bool {
	if v, ok := e.Props[key].(bool); ok {
		return v
	}
	return def
}

// Fill modes for animations.
const (
	FillForwards = "forwards"
	FillNone     = "none"
)

// Animation interpolates one or more element state fields over a window
// relative to the element's local time.
type Animation struct {
	Property   string     `yaml:"property,omitempty"`
	Properties []string   `yaml:"properties,omitempty"`
	From       Value      `yaml:"from,omitempty"`
	To         Value      `yaml:"to,omitempty"`
	FromColor  string     `yaml:"fromColor,omitempty"`
	ToColor    string     `yaml:"toColor,omitempty"`
	Keyframes  []Keyframe `yaml:"keyframes,omitempty"`
	Start      float64    `yaml:"start,omitempty"`
	Duration   float64    `yaml:"duration"`
	Easing     string     `yaml:"easing,omitempty"`
	Fill       string     `yaml:"fill,omitempty"`
}

// Fields returns every state field the animation writes.
func (a *Animation) Fields() []string {
	if a.Property == "" {
		return a.Properties
	}
	if len(a.Properties) == 0 {
		return []string{a.Property}
	}
	return append([]string{a.Property}, a.Properties...)
}

// HoldsAfterEnd reports whether the end value persists after the window.
func (a *Animation) HoldsAfterEnd() bool {
	return a.Fill == "" || a.Fill == FillForwards
}

// Keyframe is one stop of a keyframed animation. At is seconds from the
// animation start. Easing shapes the segment ending at this keyframe.
type Keyframe struct {
	At     float64 `yaml:"at"`
	Value  Value   `yaml:"value,omitempty"`
	Color  string  `yaml:"color,omitempty"`
	Easing string  `yaml:"easing,omitempty"`
}

// Transition blends two adjacent sibling layers of one composition across
// their shared boundary.
type Transition struct {
	From     string  `yaml:"from"`
	To       string  `yaml:"to"`
	Effect   string  `yaml:"effect"`
	Duration float64 `yaml:"duration"`
}

// Label identifies the transition in errors and logs.
func (t Transition) Label() string {
	return t.From + "->" + t.To
}
