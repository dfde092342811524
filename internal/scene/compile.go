package scene

import (
	"fmt"
	"strings"

	"github.com/five82/montage/internal/animate"
	merrors "github.com/five82/montage/internal/errors"
	"github.com/five82/montage/internal/model"
	"github.com/five82/montage/internal/timeline"
	"github.com/five82/montage/internal/transition"
)

// MaxFPS bounds the root frame rate.
const MaxFPS = 240

// Options controls what Compile accepts.
type Options struct {
	// Effects resolves transition effect names. Nil means the built-ins.
	Effects *transition.Registry
	// KnownType reports whether an element type has a drawer. Nil accepts
	// every type.
	KnownType func(string) bool
	// KnownHook reports whether a hook name is registered. Nil accepts
	// every name.
	KnownHook func(string) bool
}

// compKey identifies one compiled instance of a composition. Compositions
// without their own duration inherit it from the placement, so each
// distinct placed duration gets its own instance.
type compKey struct {
	comp   *model.Composition
	placed float64
}

type compiler struct {
	g        *Graph
	opts     Options
	index    map[compKey]int
	visiting map[*model.Composition]bool
	path     []string
}

// Compile validates root and freezes it into a Graph. All configuration
// errors are reported here: reference cycles, bad frame rate, size or
// duration, unresolvable units, unknown effects, element types and hooks,
// and transitions between scenes that do not touch.
func Compile(root *model.Composition, opts Options) (*Graph, error) {
	if root == nil {
		return nil, merrors.NewConfigError("no composition")
	}
	if opts.Effects == nil {
		opts.Effects = transition.DefaultRegistry()
	}
	if err := validateRoot(root); err != nil {
		return nil, err
	}

	viewport := model.Size{W: float64(root.Width), H: float64(root.Height)}
	c := &compiler{
		g: &Graph{
			Viewport: viewport,
			FPS:      root.FPS,
			Duration: root.Duration,
			Frames:   timeline.FrameCount(root.Duration, root.FPS),
		},
		opts:     opts,
		index:    make(map[compKey]int),
		visiting: make(map[*model.Composition]bool),
	}

	idx, err := c.comp(root, viewport, root.Duration)
	if err != nil {
		return nil, err
	}
	c.g.Root = idx
	return c.g, nil
}

func validateRoot(root *model.Composition) error {
	switch {
	case root.Width <= 0 || root.Height <= 0:
		return merrors.NewConfigErrorf("invalid size %dx%d", root.Width, root.Height)
	case root.FPS <= 0 || root.FPS > MaxFPS:
		return merrors.NewConfigErrorf("invalid frame rate %d", root.FPS)
	case root.Duration <= 0:
		return merrors.NewConfigErrorf("invalid duration %v", root.Duration)
	}
	return nil
}

func compLabel(c *model.Composition) string {
	if c.ID != "" {
		return c.ID
	}
	return "<composition>"
}

// comp compiles a composition placed in an area of the given size for
// the given duration. A shared composition is compiled once per distinct
// inherited duration; sizes are resolved per placement at render time.
func (c *compiler) comp(mc *model.Composition, area model.Size, placed float64) (int, error) {
	if c.visiting[mc] {
		cycle := append(append([]string(nil), c.path...), compLabel(mc))
		return None, merrors.NewConfigErrorf("composition cycle: %s", strings.Join(cycle, " -> ")).WithElement(compLabel(mc))
	}
	key := compKey{comp: mc}
	if mc.Duration == 0 {
		key.placed = placed
	}
	if idx, ok := c.index[key]; ok {
		return idx, nil
	}
	c.visiting[mc] = true
	c.path = append(c.path, compLabel(mc))
	defer func() {
		delete(c.visiting, mc)
		c.path = c.path[:len(c.path)-1]
	}()

	if mc.Duration < 0 {
		return None, merrors.NewConfigErrorf("invalid duration %v", mc.Duration).WithElement(compLabel(mc))
	}
	out := Comp{ID: mc.ID, Duration: mc.Duration}
	if out.Duration == 0 {
		out.Duration = placed
	}
	if mc.Width > 0 && mc.Height > 0 {
		out.Size = model.Size{W: float64(mc.Width), H: float64(mc.Height)}
		area = out.Size
	}
	if mc.Background != "" {
		bg, err := model.ParseColor(mc.Background)
		if err != nil {
			return None, merrors.NewConfigErrorf("background: %v", err).WithElement(compLabel(mc))
		}
		out.Background, out.HasBackground = bg, true
	}

	idx := len(c.g.Comps)
	c.g.Comps = append(c.g.Comps, out)

	byName := make(map[string]int)
	items := make([]timeline.Item, 0, len(mc.Layers))
	for i, ml := range mc.Layers {
		li, err := c.layer(mc, ml, i, idx, area, out.Duration)
		if err != nil {
			return None, err
		}
		out.Layers = append(out.Layers, li)
		l := &c.g.Layers[li]
		if ml.Name != "" {
			if _, dup := byName[ml.Name]; dup {
				return None, merrors.NewConfigErrorf("duplicate layer name %q", ml.Name).WithElement(compLabel(mc))
			}
			byName[ml.Name] = li
		}
		items = append(items, timeline.Item{Index: li, Start: l.Start, Duration: l.Duration, ZIndex: l.ZIndex})
	}
	out.Timeline = timeline.New(items)

	for _, mt := range mc.Transitions {
		e, err := c.transition(mt, byName)
		if err != nil {
			return None, err
		}
		out.Transitions = append(out.Transitions, e)
	}

	c.g.Comps[idx] = out
	c.index[key] = idx
	return idx, nil
}

func (c *compiler) layer(mc *model.Composition, ml *model.Layer, pos, comp int, area model.Size, parentDur float64) (int, error) {
	name := ml.Name
	if name == "" {
		name = fmt.Sprintf("%s/layer %d", compLabel(mc), pos)
	}
	fail := func(format string, args ...any) (int, error) {
		return None, merrors.NewConfigErrorf(format, args...).WithElement(name)
	}

	if ml.Composition != nil && len(ml.Elements) > 0 {
		return fail("layer holds both elements and a composition")
	}
	dur := ml.Duration
	if dur <= 0 {
		dur = parentDur - ml.Start
	}
	if dur <= 0 {
		return fail("layer starts at %v, after its composition ends", ml.Start)
	}

	li := len(c.g.Layers)
	c.g.Layers = append(c.g.Layers, Layer{})
	out := Layer{
		Name:     name,
		Comp:     comp,
		Start:    ml.Start,
		Duration: dur,
		ZIndex:   ml.ZIndex,
		Child:    None,
		X:        ml.X,
		Y:        ml.Y,
		W:        ml.Width,
		H:        ml.Height,
	}

	if ml.Composition != nil {
		_, _, w, h, err := out.Placement(area, c.g.Viewport)
		if err != nil {
			return fail("placement: %v", err)
		}
		child, err := c.comp(ml.Composition, model.Size{W: w, H: h}, dur)
		if err != nil {
			return None, err
		}
		out.Child = child
	} else {
		items := make([]timeline.Item, 0, len(ml.Elements))
		for _, me := range ml.Elements {
			ei, err := c.element(me, li, area, dur)
			if err != nil {
				return None, err
			}
			e := &c.g.Elements[ei]
			out.Elements = append(out.Elements, ei)
			items = append(items, timeline.Item{Index: ei, Start: e.Start, Duration: e.Duration, ZIndex: me.ZIndex})
		}
		out.Timeline = timeline.New(items)
	}

	c.g.Layers[li] = out
	return li, nil
}

func (c *compiler) element(me *model.Element, layer int, area model.Size, layerDur float64) (int, error) {
	fail := func(format string, args ...any) (int, error) {
		return None, merrors.NewConfigErrorf(format, args...).WithElement(me.Label())
	}

	switch {
	case me.Type == "":
		return fail("element has no type")
	case me.Type == model.TypeComposition && me.Composition == nil:
		return fail("composition element has no composition")
	case me.Type != model.TypeComposition && me.Composition != nil:
		return fail("element of type %q carries a composition", me.Type)
	case me.Type != model.TypeComposition && c.opts.KnownType != nil && !c.opts.KnownType(me.Type):
		return fail("unknown element type %q", me.Type)
	case me.Type == model.TypeAudio && me.PropString("src", "") == "":
		return fail("audio element has no src")
	}
	for _, h := range me.Hooks {
		if c.opts.KnownHook != nil && !c.opts.KnownHook(h) {
			return fail("unknown hook %q", h)
		}
	}

	dur := me.Duration
	if dur <= 0 {
		dur = layerDur - me.Start
	}
	if dur <= 0 {
		return fail("element starts at %v, after its layer ends", me.Start)
	}

	if err := checkAnimations(me, area, c.g.Viewport); err != nil {
		return None, err
	}

	ei := len(c.g.Elements)
	c.g.Elements = append(c.g.Elements, Element{})
	out := Element{Model: me, Layer: layer, Start: me.Start, Duration: dur, Child: None}

	if me.Composition != nil {
		st, err := animate.Base(me, area, c.g.Viewport)
		if err != nil {
			return None, err
		}
		child, err := c.comp(me.Composition, model.Size{W: st.Width, H: st.Height}, dur)
		if err != nil {
			return None, err
		}
		out.Child = child
	}

	c.g.Elements[ei] = out
	return ei, nil
}

// checkAnimations evaluates the element at the start and at the middle
// and end of every animation so unit and easing errors surface before
// rendering.
func checkAnimations(me *model.Element, area, viewport model.Size) error {
	for i, a := range me.Animations {
		if len(a.Fields()) == 0 {
			return merrors.NewConfigErrorf("animation %d has no property", i).WithElement(me.Label())
		}
		if a.Fill != "" && a.Fill != model.FillForwards && a.Fill != model.FillNone {
			return merrors.NewConfigErrorf("animation %d: unknown fill %q", i, a.Fill).WithElement(me.Label())
		}
	}

	times := []float64{0}
	for _, a := range me.Animations {
		times = append(times, a.Start+a.Duration/2, a.Start+a.Duration)
	}
	for _, t := range times {
		if _, err := animate.Evaluate(me, t, area, viewport); err != nil {
			return err
		}
	}
	return nil
}

func (c *compiler) transition(mt model.Transition, byName map[string]int) (*transition.Engine, error) {
	fail := func(format string, args ...any) (*transition.Engine, error) {
		return nil, merrors.NewConfigErrorf(format, args...).WithElement(mt.Label())
	}

	effect, ok := c.opts.Effects.Lookup(mt.Effect)
	if !ok {
		return fail("unknown transition effect %q", mt.Effect)
	}
	from, ok := byName[mt.From]
	if !ok {
		return fail("no layer named %q", mt.From)
	}
	to, ok := byName[mt.To]
	if !ok {
		return fail("no layer named %q", mt.To)
	}
	if from == to {
		return fail("transition joins a layer to itself")
	}

	a, b := &c.g.Layers[from], &c.g.Layers[to]
	w, err := transition.NewWindow(a.Start, a.End(), b.Start, b.End(), mt.Duration)
	if err != nil {
		return fail("%v", err)
	}
	return transition.NewEngine(mt.Label(), mt.Effect, effect, from, to, w), nil
}
