package render

import (
	"image"
	"math"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"
)

// Surface is a drawing target owned by one renderer. Drawers paint into
// it through the gg context in parent coordinates; the renderer has
// already applied the element transform.
type Surface struct {
	dc *gg.Context
	w  int
	h  int
}

// NewSurface allocates a transparent surface of the given pixel size.
func NewSurface(w, h int) *Surface {
	w, h = max(w, 1), max(h, 1)
	return &Surface{dc: gg.NewContext(w, h), w: w, h: h}
}

// Context returns the gg drawing context.
func (s *Surface) Context() *gg.Context {
	return s.dc
}

// Width returns the surface width in pixels.
func (s *Surface) Width() int { return s.w }

// Height returns the surface height in pixels.
func (s *Surface) Height() int { return s.h }

// Clear fills the whole surface, ignoring the current transform.
func (s *Surface) Clear(c gg.RGBA) {
	s.dc.ClearWithColor(c)
}

// Image returns a copy of the surface pixels.
func (s *Surface) Image() *image.RGBA {
	_ = s.dc.FlushGPU()
	img := s.dc.Image()
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}

// Close releases the context.
func (s *Surface) Close() error {
	return s.dc.Close()
}

// DrawRaster paints img stretched over the box (x, y, w, h) under the
// current transform. Axis-aligned placements go through gg directly.
// Rotated or mirrored ones are resampled with x/image/draw, since gg
// image drawing only maps the box corners.
func (s *Surface) DrawRaster(img image.Image, x, y, w, h float64) {
	b := img.Bounds()
	if w <= 0 || h <= 0 || b.Empty() {
		return
	}
	m := s.dc.GetTransform()
	if m.B == 0 && m.D == 0 && m.A > 0 && m.E > 0 {
		s.dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{
			X:         x,
			Y:         y,
			DstWidth:  w,
			DstHeight: h,
			Opacity:   1,
		})
		return
	}

	sx, sy := w/float64(b.Dx()), h/float64(b.Dy())
	// source pixels -> box -> device
	s2d := f64.Aff3{
		m.A * sx, m.B * sy, m.A*(x-sx*float64(b.Min.X)) + m.B*(y-sy*float64(b.Min.Y)) + m.C,
		m.D * sx, m.E * sy, m.D*(x-sx*float64(b.Min.X)) + m.E*(y-sy*float64(b.Min.Y)) + m.F,
	}
	if math.IsNaN(s2d[0]) || math.IsNaN(s2d[4]) {
		return
	}
	overlay := image.NewRGBA(image.Rect(0, 0, s.w, s.h))
	draw.BiLinear.Transform(overlay, s2d, img, b, draw.Over, nil)

	s.dc.Push()
	s.dc.Identity()
	s.dc.DrawImageEx(gg.ImageBufFromImage(overlay), gg.DrawImageOptions{Opacity: 1})
	s.dc.Pop()
}
