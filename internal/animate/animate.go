// Package animate computes the visual state of an element at a local time.
package animate

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gogpu/gg"

	"github.com/five82/montage/internal/easing"
	merrors "github.com/five82/montage/internal/errors"
	"github.com/five82/montage/internal/model"
	"github.com/five82/montage/internal/timeline"
)

// Built-in state fields an animation may target. Any other property name
// is stored in State.Extra.
const (
	FieldX        = "x"
	FieldY        = "y"
	FieldWidth    = "width"
	FieldHeight   = "height"
	FieldAnchorX  = "anchorx"
	FieldAnchorY  = "anchory"
	FieldScale    = "scale"
	FieldScaleX   = "scalex"
	FieldScaleY   = "scaley"
	FieldRotation = "rotation"
	FieldOpacity  = "opacity"
	FieldColor    = "color"
)

// DefaultColor is used when an element sets no color.
var DefaultColor = gg.White

// State is the resolved visual state of an element at one instant.
// Geometry is in pixels of the parent coordinate space.
type State struct {
	X, Y          float64
	Width, Height float64

	// Anchor is the pivot as a fraction of the box.
	AnchorX, AnchorY float64

	ScaleX, ScaleY float64
	Rotation       float64 // degrees, clockwise
	Opacity        float64
	Color          gg.RGBA

	// Local is the element's local time.
	Local float64

	Extra map[string]float64
}

// Pivot returns the anchor point in parent coordinates.
func (s State) Pivot() (float64, float64) {
	return s.X + s.AnchorX*s.Width, s.Y + s.AnchorY*s.Height
}

// Visible reports whether the element would paint anything.
func (s State) Visible() bool {
	return s.Opacity > 0 && s.ScaleX != 0 && s.ScaleY != 0
}

// Get returns a numeric field by name.
func (s State) Get(field string) (float64, bool) {
	switch normalizeField(field) {
	case FieldX:
		return s.X, true
	case FieldY:
		return s.Y, true
	case FieldWidth:
		return s.Width, true
	case FieldHeight:
		return s.Height, true
	case FieldAnchorX:
		return s.AnchorX, true
	case FieldAnchorY:
		return s.AnchorY, true
	case FieldScale, FieldScaleX:
		return s.ScaleX, true
	case FieldScaleY:
		return s.ScaleY, true
	case FieldRotation:
		return s.Rotation, true
	case FieldOpacity:
		return s.Opacity, true
	}
	v, ok := s.Extra[field]
	return v, ok
}

func (s *State) set(field string, v float64) {
	switch normalizeField(field) {
	case FieldX:
		s.X = v
	case FieldY:
		s.Y = v
	case FieldWidth:
		s.Width = v
	case FieldHeight:
		s.Height = v
	case FieldAnchorX:
		s.AnchorX = v
	case FieldAnchorY:
		s.AnchorY = v
	case FieldScale:
		s.ScaleX, s.ScaleY = v, v
	case FieldScaleX:
		s.ScaleX = v
	case FieldScaleY:
		s.ScaleY = v
	case FieldRotation:
		s.Rotation = v
	case FieldOpacity:
		s.Opacity = v
	default:
		if s.Extra == nil {
			s.Extra = make(map[string]float64)
		}
		s.Extra[field] = v
	}
}

// Clone returns a copy that does not share the Extra map.
func (s State) Clone() State {
	if s.Extra != nil {
		extra := make(map[string]float64, len(s.Extra))
		for k, v := range s.Extra {
			extra[k] = v
		}
		s.Extra = extra
	}
	return s
}

func normalizeField(f string) string {
	return strings.ToLower(f)
}

// axisOf returns the axis a length field resolves against, or false for
// unitless fields.
func axisOf(field string) (model.Axis, bool) {
	switch normalizeField(field) {
	case FieldX, FieldWidth:
		return model.AxisX, true
	case FieldY, FieldHeight:
		return model.AxisY, true
	}
	return 0, false
}

// Evaluate returns the state of el at its local time. parent is the
// concrete size of the containing area and viewport the root composition
// size. It has no side effects: equal inputs give equal states.
//
// Animations are applied in two passes, each in declaration order. The
// first pass holds finished animations with fill "forwards" at their end
// value. The second applies animations whose window covers local. A later
// declaration overwrites an earlier one on the same field.
func Evaluate(el *model.Element, local float64, parent, viewport model.Size) (State, error) {
	st, err := Base(el, parent, viewport)
	if err != nil {
		return State{}, err
	}
	st.Local = local

	for pass := 0; pass < 2; pass++ {
		for i := range el.Animations {
			a := &el.Animations[i]
			rel := local - a.Start
			covering := timeline.Active(rel, a.Duration)
			ended := !covering && rel >= -timeline.Epsilon

			switch {
			case pass == 0 && ended && a.HoldsAfterEnd():
				rel = max(a.Duration, 0)
			case pass == 1 && covering:
			default:
				continue
			}
			if err := apply(&st, a, rel, parent, viewport); err != nil {
				return State{}, merrors.NewConfigErrorf("animation %d: %v", i, err).WithElement(el.Label())
			}
		}
	}
	return st, nil
}

// Base returns the element's static state, ignoring animations. Unset
// width and height fill the parent.
func Base(el *model.Element, parent, viewport model.Size) (State, error) {
	st := State{
		AnchorX: el.AnchorX,
		AnchorY: el.AnchorY,
		ScaleX:  1,
		ScaleY:  1,
		Opacity: 1,
	}
	if el.Opacity != nil {
		st.Opacity = *el.Opacity
	}
	if el.ScaleX != nil {
		st.ScaleX = *el.ScaleX
	}
	if el.ScaleY != nil {
		st.ScaleY = *el.ScaleY
	}
	st.Rotation = el.Rotation

	fail := func(field string, err error) (State, error) {
		return State{}, merrors.NewConfigErrorf("%s: %v", field, err).WithElement(el.Label())
	}

	var err error
	if st.X, err = el.X.Resolve(model.AxisX, parent, viewport); err != nil {
		return fail(FieldX, err)
	}
	if st.Y, err = el.Y.Resolve(model.AxisY, parent, viewport); err != nil {
		return fail(FieldY, err)
	}
	st.Width, st.Height = parent.W, parent.H
	if el.Width.IsSet() {
		if st.Width, err = el.Width.Resolve(model.AxisX, parent, viewport); err != nil {
			return fail(FieldWidth, err)
		}
	}
	if el.Height.IsSet() {
		if st.Height, err = el.Height.Resolve(model.AxisY, parent, viewport); err != nil {
			return fail(FieldHeight, err)
		}
	}

	if st.Color, err = model.ColorOr(el.Color, DefaultColor); err != nil {
		return fail(FieldColor, err)
	}
	return st, nil
}

// apply writes the value of a at rel seconds into its window.
func apply(st *State, a *model.Animation, rel float64, parent, viewport model.Size) error {
	fields := a.Fields()
	if len(fields) == 0 {
		return fmt.Errorf("no property")
	}
	ease, err := easing.Lookup(a.Easing)
	if err != nil {
		return err
	}

	for _, field := range fields {
		if normalizeField(field) == FieldColor {
			c, err := colorAt(st.Color, a, rel, ease)
			if err != nil {
				return err
			}
			st.Color = c
			continue
		}
		v, err := valueAt(*st, field, a, rel, ease, parent, viewport)
		if err != nil {
			return fmt.Errorf("%s: %w", field, err)
		}
		st.set(field, v)
	}
	return nil
}

// progress is the eased fraction of a plain from/to animation.
func progress(a *model.Animation, rel float64, ease easing.Func) float64 {
	if a.Duration <= 0 {
		return 1
	}
	return easing.Apply(ease, rel/a.Duration)
}

func resolveField(field string, v model.Value, parent, viewport model.Size) (float64, error) {
	if axis, ok := axisOf(field); ok {
		return v.Resolve(axis, parent, viewport)
	}
	switch v.Unit {
	case model.UnitPercent:
		return v.Amount / 100, nil
	case model.UnitNone, model.UnitPx:
		return v.Amount, nil
	default:
		return 0, fmt.Errorf("unit %q not allowed", v.Unit)
	}
}

func valueAt(st State, field string, a *model.Animation, rel float64, ease easing.Func, parent, viewport model.Size) (float64, error) {
	if len(a.Keyframes) > 0 {
		return keyframeValue(field, a, rel, ease, parent, viewport)
	}

	from, ok := st.Get(field)
	if !ok {
		from = 0
	}
	if a.From.IsSet() {
		f, err := resolveField(field, a.From, parent, viewport)
		if err != nil {
			return 0, err
		}
		from = f
	}
	to := from
	if a.To.IsSet() {
		t, err := resolveField(field, a.To, parent, viewport)
		if err != nil {
			return 0, err
		}
		to = t
	}
	return lerp(from, to, progress(a, rel, ease)), nil
}

// segment locates rel among sorted keyframes and returns the surrounding
// pair and the eased fraction between them.
func segment(a *model.Animation, rel float64, ease easing.Func) (lo, hi model.Keyframe, p float64, err error) {
	kfs := sortedKeyframes(a.Keyframes)
	if rel <= kfs[0].At {
		return kfs[0], kfs[0], 0, nil
	}
	last := kfs[len(kfs)-1]
	if rel >= last.At {
		return last, last, 0, nil
	}
	idx := sort.Search(len(kfs), func(i int) bool { return kfs[i].At > rel })
	lo, hi = kfs[idx-1], kfs[idx]
	fn := ease
	if hi.Easing != "" {
		if fn, err = easing.Lookup(hi.Easing); err != nil {
			return lo, hi, 0, err
		}
	}
	span := hi.At - lo.At
	if span <= 0 {
		return hi, hi, 0, nil
	}
	return lo, hi, easing.Apply(fn, (rel-lo.At)/span), nil
}

func sortedKeyframes(kfs []model.Keyframe) []model.Keyframe {
	if sort.SliceIsSorted(kfs, func(i, j int) bool { return kfs[i].At < kfs[j].At }) {
		return kfs
	}
	out := append([]model.Keyframe(nil), kfs...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].At < out[j].At })
	return out
}

func keyframeValue(field string, a *model.Animation, rel float64, ease easing.Func, parent, viewport model.Size) (float64, error) {
	lo, hi, p, err := segment(a, rel, ease)
	if err != nil {
		return 0, err
	}
	from, err := resolveField(field, lo.Value, parent, viewport)
	if err != nil {
		return 0, err
	}
	to, err := resolveField(field, hi.Value, parent, viewport)
	if err != nil {
		return 0, err
	}
	return lerp(from, to, p), nil
}

func colorAt(current gg.RGBA, a *model.Animation, rel float64, ease easing.Func) (gg.RGBA, error) {
	if len(a.Keyframes) > 0 {
		lo, hi, p, err := segment(a, rel, ease)
		if err != nil {
			return gg.RGBA{}, err
		}
		from, err := model.ColorOr(lo.Color, current)
		if err != nil {
			return gg.RGBA{}, err
		}
		to, err := model.ColorOr(hi.Color, current)
		if err != nil {
			return gg.RGBA{}, err
		}
		return from.Lerp(to, p), nil
	}

	from, err := model.ColorOr(a.FromColor, current)
	if err != nil {
		return gg.RGBA{}, err
	}
	to, err := model.ColorOr(a.ToColor, from)
	if err != nil {
		return gg.RGBA{}, err
	}
	p := progress(a, rel, ease)
	if p >= 1 {
		return to, nil
	}
	return from.Lerp(to, p), nil
}

func lerp(a, b, t float64) float64 {
	if t >= 1 {
		return b
	}
	return a + (b-a)*t
}
