// Package elements provides the built-in element drawers.
package elements

import (
	"image"
	"math"

	"github.com/gogpu/gg"

	"github.com/five82/montage/internal/animate"
	"github.com/five82/montage/internal/model"
	"github.com/five82/montage/internal/render"
)

// Register adds every built-in drawer to reg.
func Register(reg *render.Registry) {
	reg.RegisterDrawer(model.TypeRect, NewRect)
	reg.RegisterDrawer(model.TypeEllipse, NewEllipse)
	reg.RegisterDrawer(model.TypeCircle, NewCircle)
	reg.RegisterDrawer(model.TypeText, NewText)
	reg.RegisterDrawer(model.TypeImage, NewImage)
	reg.RegisterDrawer(model.TypePDF, NewPDFPage)
	reg.RegisterDrawer(model.TypeQRCode, NewQRCode)
	reg.RegisterDrawer(model.TypeAudio, NewAudio)
}

// DefaultRegistry returns a registry holding the built-in drawers.
func DefaultRegistry() *render.Registry {
	reg := render.NewRegistry()
	Register(reg)
	return reg
}

func setColor(dc *gg.Context, c gg.RGBA) {
	dc.SetRGBA(c.R, c.G, c.B, c.A)
}

// number returns an animated value from st.Extra, falling back to the
// element property and then def.
func number(st animate.State, el *model.Element, key string, def float64) float64 {
	if v, ok := st.Extra[key]; ok {
		return v
	}
	return el.PropFloat(key, def)
}

// Fit modes for raster content.
const (
	FitFill    = "fill"
	FitContain = "contain"
	FitCover   = "cover"
)

// fit places a source of size (sw, sh) into the box (x, y, w, h). It
// returns the source region to sample and the destination box.
func fit(src image.Rectangle, x, y, w, h float64, mode string) (image.Rectangle, float64, float64, float64, float64) {
	sw, sh := float64(src.Dx()), float64(src.Dy())
	if sw <= 0 || sh <= 0 || w <= 0 || h <= 0 {
		return src, x, y, 0, 0
	}
	switch mode {
	case FitContain:
		scale := math.Min(w/sw, h/sh)
		dw, dh := sw*scale, sh*scale
		return src, x + (w-dw)/2, y + (h-dh)/2, dw, dh
	case FitCover:
		scale := math.Max(w/sw, h/sh)
		cw, ch := int(math.Round(w/scale)), int(math.Round(h/scale))
		cw, ch = max(min(cw, src.Dx()), 1), max(min(ch, src.Dy()), 1)
		off := image.Pt((src.Dx()-cw)/2, (src.Dy()-ch)/2)
		crop := image.Rectangle{Min: src.Min.Add(off), Max: src.Min.Add(off).Add(image.Pt(cw, ch))}
		return crop, x, y, w, h
	default:
		return src, x, y, w, h
	}
}

type subImager interface {
	SubImage(r image.Rectangle) image.Image
}

// drawFitted paints img into the element box using the fit mode.
func drawFitted(s *render.Surface, img image.Image, st animate.State, mode string) {
	region, x, y, w, h := fit(img.Bounds(), st.X, st.Y, st.Width, st.Height, mode)
	if region != img.Bounds() {
		if si, ok := img.(subImager); ok {
			img = si.SubImage(region)
		}
	}
	s.DrawRaster(img, x, y, w, h)
}

// Audio draws nothing; its sound is mixed by the exporter.
type Audio struct{}

// NewAudio returns the audio drawer.
func NewAudio(*model.Element) (render.Drawer, error) {
	return Audio{}, nil
}

// Draw does nothing.
func (Audio) Draw(animate.State, *render.Surface) error { return nil }
