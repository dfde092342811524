// Package render draws frames of a compiled scene graph.
package render

import (
	"errors"
	"image"
	"math"

	"github.com/gogpu/gg"

	"github.com/five82/montage/internal/animate"
	merrors "github.com/five82/montage/internal/errors"
	"github.com/five82/montage/internal/logging"
	"github.com/five82/montage/internal/model"
	"github.com/five82/montage/internal/scene"
	"github.com/five82/montage/internal/timeline"
	"github.com/five82/montage/internal/transition"
)

// RootBackground fills the root composition when it sets no background.
var RootBackground = gg.Black

// Renderer draws frames of one graph. It owns every drawer, hook and
// surface it creates and must be used by a single goroutine; parallel
// rendering uses one Renderer per worker over a shared Graph.
type Renderer struct {
	g   *scene.Graph
	reg *Registry

	drawers map[int]Drawer
	skipped map[int]bool
	hooks   map[int][]Hook
	loaded  map[int]bool

	frame FrameInfo
}

// NewRenderer returns a renderer for g using the drawers and hooks in reg.
func NewRenderer(g *scene.Graph, reg *Registry) *Renderer {
	return &Renderer{
		g:       g,
		reg:     reg,
		drawers: make(map[int]Drawer),
		skipped: make(map[int]bool),
		hooks:   make(map[int][]Hook),
		loaded:  make(map[int]bool),
	}
}

// Graph returns the graph being rendered.
func (r *Renderer) Graph() *scene.Graph {
	return r.g
}

// BeginChunk starts a new run of frames. OnLoaded hooks fire again for
// elements active in the new chunk.
func (r *Renderer) BeginChunk() {
	clear(r.loaded)
}

// Render renders frame index of the root composition.
func (r *Renderer) Render(index int) (*image.RGBA, error) {
	return r.render(index, r.g.FrameTime(index))
}

// RenderFrame renders the root composition at global time t.
func (r *Renderer) RenderFrame(t float64) (*image.RGBA, error) {
	return r.render(-1, t)
}

func (r *Renderer) render(index int, t float64) (*image.RGBA, error) {
	r.frame = FrameInfo{Index: index, Time: t, FPS: r.g.FPS}
	return r.RenderAt(r.g.Root, t, r.g.Viewport)
}

// RenderAt renders composition comp at its local time into an image of
// the given size.
func (r *Renderer) RenderAt(comp int, local float64, size model.Size) (*image.RGBA, error) {
	s := NewSurface(pixels(size.W), pixels(size.H))
	defer func() { _ = s.Close() }()

	if err := r.paintComp(s, comp, local, size); err != nil {
		return nil, err
	}
	return s.Image(), nil
}

// Close releases every drawer that holds resources.
func (r *Renderer) Close() error {
	var errs []error
	for _, d := range r.drawers {
		if c, ok := d.(Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, err)
			}
		}
	}
	clear(r.drawers)
	return errors.Join(errs...)
}

func pixels(v float64) int {
	return max(int(math.Round(v)), 1)
}

func (r *Renderer) paintComp(s *Surface, ci int, local float64, size model.Size) error {
	c := &r.g.Comps[ci]
	switch {
	case c.HasBackground:
		s.Clear(c.Background)
	case ci == r.g.Root:
		s.Clear(RootBackground)
	}

	blending := make(map[int]*blend)
	for _, e := range c.Transitions {
		phase, p := e.StateAt(local)
		if phase != transition.Blending {
			continue
		}
		b := &blend{engine: e, progress: p}
		blending[e.From] = b
		blending[e.To] = b
	}

	active := make(map[int]float64)
	for _, a := range c.Timeline.ActiveAt(local, nil) {
		active[a.Item.Index] = a.Local
	}

	for _, it := range c.Timeline.Items() {
		li := it.Index
		if b, ok := blending[li]; ok {
			if b.painted {
				continue
			}
			b.painted = true
			if err := r.paintBlend(s, b, local, size); err != nil {
				return err
			}
			continue
		}
		layerLocal, ok := active[li]
		if !ok {
			continue
		}
		if err := r.paintLayer(s, li, layerLocal, size); err != nil {
			return err
		}
	}
	return nil
}

type blend struct {
	engine   *transition.Engine
	progress float64
	painted  bool
}

// paintBlend renders both sides of a transition offscreen and paints the
// blended frame in their place. Each side is presented at its own local
// time clamped into its window.
func (r *Renderer) paintBlend(s *Surface, b *blend, local float64, size model.Size) error {
	e := b.engine
	side := func(li int) (*image.RGBA, error) {
		l := &r.g.Layers[li]
		off := NewSurface(s.Width(), s.Height())
		defer func() { _ = off.Close() }()
		if err := r.paintLayer(off, li, timeline.Clamp(local-l.Start, l.Duration), size); err != nil {
			return nil, err
		}
		return off.Image(), nil
	}

	a, err := side(e.From)
	if err != nil {
		return err
	}
	bImg, err := side(e.To)
	if err != nil {
		return err
	}
	out, err := e.Blend(a, bImg, b.progress)
	if err != nil {
		return merrors.NewRenderError(e.Label, r.frame.Time, err)
	}
	s.DrawRaster(out, 0, 0, float64(s.Width()), float64(s.Height()))
	return nil
}

func (r *Renderer) paintLayer(s *Surface, li int, local float64, area model.Size) error {
	l := &r.g.Layers[li]
	if l.Child != scene.None {
		x, y, w, h, err := l.Placement(area, r.g.Viewport)
		if err != nil {
			return merrors.NewRenderError(l.Label(), r.frame.Time, err)
		}
		if w <= 0 || h <= 0 {
			return nil
		}
		img, err := r.RenderAt(l.Child, local, r.g.LogicalSize(l.Child, model.Size{W: w, H: h}))
		if err != nil {
			return err
		}
		s.DrawRaster(img, x, y, w, h)
		return nil
	}

	for _, a := range l.Timeline.ActiveAt(local, nil) {
		if err := r.paintElement(s, a.Item.Index, a.Local, area); err != nil {
			return err
		}
	}
	return nil
}

func (r *Renderer) paintElement(s *Surface, ei int, local float64, area model.Size) error {
	e := &r.g.Elements[ei]
	fail := func(err error) error {
		var ce *merrors.CoreError
		if errors.As(err, &ce) && ce.Kind == merrors.KindRender {
			return err
		}
		return merrors.NewRenderError(e.Label(), r.frame.Time, err)
	}

	st, err := animate.Evaluate(e.Model, local, area, r.g.Viewport)
	if err != nil {
		return fail(err)
	}
	if st, err = r.runHooks(ei, st, local, s); err != nil {
		return fail(err)
	}
	if !st.Visible() {
		return nil
	}

	var drawer Drawer
	if e.Child == scene.None {
		if drawer, err = r.drawer(ei); err != nil {
			return fail(err)
		}
		if drawer == nil {
			return nil
		}
	}

	dc := s.Context()
	dc.Push()
	defer dc.Pop()
	px, py := st.Pivot()
	dc.Translate(px, py)
	dc.Rotate(st.Rotation * math.Pi / 180)
	dc.Scale(st.ScaleX, st.ScaleY)
	dc.Translate(-px, -py)

	layered := st.Opacity < 1
	if layered {
		dc.PushLayer(gg.BlendNormal, st.Opacity)
	}

	if e.Child != scene.None {
		if st.Width > 0 && st.Height > 0 {
			img, cerr := r.RenderAt(e.Child, local, r.g.LogicalSize(e.Child, model.Size{W: st.Width, H: st.Height}))
			if cerr != nil {
				err = cerr
			} else {
				s.DrawRaster(img, st.X, st.Y, st.Width, st.Height)
			}
		}
	} else {
		err = drawer.Draw(st, s)
	}

	if layered {
		dc.PopLayer()
	}
	if err != nil {
		if r.skipOptional(ei, err) {
			return nil
		}
		return fail(err)
	}
	return nil
}

// drawer returns the element's drawer, creating it on first use. A nil
// drawer with nil error means an optional element whose asset is missing.
func (r *Renderer) drawer(ei int) (Drawer, error) {
	if d, ok := r.drawers[ei]; ok {
		return d, nil
	}
	if r.skipped[ei] {
		return nil, nil
	}
	d, err := r.reg.newDrawer(r.g.Elements[ei].Model)
	if err != nil {
		if r.skipOptional(ei, err) {
			return nil, nil
		}
		return nil, err
	}
	r.drawers[ei] = d
	return d, nil
}

// skipOptional reports whether err is a resource error on an optional
// element, logging it the first time.
func (r *Renderer) skipOptional(ei int, err error) bool {
	e := &r.g.Elements[ei]
	if !e.Model.Optional || !merrors.IsKind(err, merrors.KindResource) {
		return false
	}
	if !r.skipped[ei] {
		r.skipped[ei] = true
		logging.Warn("Skipping optional element", "element", e.Label(), "error", err)
	}
	if c, ok := r.drawers[ei].(Closer); ok {
		_ = c.Close()
	}
	delete(r.drawers, ei)
	return true
}

func (r *Renderer) runHooks(ei int, st animate.State, local float64, s *Surface) (animate.State, error) {
	m := r.g.Elements[ei].Model
	if len(m.Hooks) == 0 {
		return st, nil
	}
	hooks, ok := r.hooks[ei]
	if !ok {
		for _, name := range m.Hooks {
			h, err := r.reg.newHook(name, m)
			if err != nil {
				return st, err
			}
			hooks = append(hooks, h)
		}
		r.hooks[ei] = hooks
	}

	if !r.loaded[ei] {
		r.loaded[ei] = true
		for _, h := range hooks {
			if err := h.OnLoaded(st.Clone()); err != nil {
				return st, err
			}
		}
	}

	info := r.frame
	info.Local = local
	for _, h := range hooks {
		next, err := h.OnFrame(st.Clone(), info, s)
		if err != nil {
			return st, err
		}
		st = next
	}
	return st, nil
}
