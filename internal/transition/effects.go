package transition

import (
	"fmt"
	"image"
	"math"

	"github.com/gogpu/gg"
	"golang.org/x/image/draw"
)

var builtins = map[string]Effect{
	"fade":       Fade,
	"fadeblack":  FadeBlack,
	"wipeleft":   wipe(edgeRight),
	"wiperight":  wipe(edgeLeft),
	"wipeup":     wipe(edgeBottom),
	"wipedown":   wipe(edgeTop),
	"slideleft":  slide(-1, 0),
	"slideright": slide(1, 0),
	"slideup":    slide(0, -1),
	"slidedown":  slide(0, 1),
	"dissolve":   Dissolve,
	"circleopen": CircleOpen,
}

func checkBounds(a, b *image.RGBA) error {
	if a == nil || b == nil {
		return fmt.Errorf("missing frame")
	}
	if a.Bounds().Size() != b.Bounds().Size() {
		return fmt.Errorf("frame sizes differ: %v vs %v", a.Bounds().Size(), b.Bounds().Size())
	}
	return nil
}

func clone(src *image.RGBA) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, src.Bounds().Dx(), src.Bounds().Dy()))
	draw.Draw(dst, dst.Bounds(), src, src.Bounds().Min, draw.Src)
	return dst
}

// canvas returns a gg context of the given size cleared to bg.
func canvas(size image.Point, bg gg.RGBA) *gg.Context {
	dc := gg.NewContext(size.X, size.Y)
	dc.ClearWithColor(bg)
	return dc
}

// overlay paints img onto dc at the given opacity. gg treats an opacity
// of 0 as unset, so fully transparent draws are skipped here.
func overlay(dc *gg.Context, img *image.RGBA, opacity float64) {
	if opacity <= 0 {
		return
	}
	dc.DrawImageEx(gg.ImageBufFromImage(img), gg.DrawImageOptions{Opacity: min(opacity, 1)})
}

func snapshot(dc *gg.Context) *image.RGBA {
	_ = dc.FlushGPU()
	img := dc.Image()
	if rgba, ok := img.(*image.RGBA); ok {
		return rgba
	}
	out := image.NewRGBA(img.Bounds())
	draw.Draw(out, out.Bounds(), img, img.Bounds().Min, draw.Src)
	return out
}

// Fade crossfades a into b.
func Fade(a, b *image.RGBA, p float64) (*image.RGBA, error) {
	if err := checkBounds(a, b); err != nil {
		return nil, err
	}
	dc := canvas(a.Bounds().Size(), gg.Transparent)
	defer func() { _ = dc.Close() }()
	overlay(dc, a, 1)
	overlay(dc, b, p)
	return snapshot(dc), nil
}

// FadeBlack fades a out to black over the first half and b in over the
// second.
func FadeBlack(a, b *image.RGBA, p float64) (*image.RGBA, error) {
	if err := checkBounds(a, b); err != nil {
		return nil, err
	}
	dc := canvas(a.Bounds().Size(), gg.Black)
	defer func() { _ = dc.Close() }()
	if p < 0.5 {
		overlay(dc, a, 1-2*p)
	} else {
		overlay(dc, b, 2*p-1)
	}
	return snapshot(dc), nil
}

type edge int

const (
	edgeLeft edge = iota
	edgeRight
	edgeTop
	edgeBottom
)

// wipe reveals b behind a line that travels away from the given edge.
func wipe(from edge) Effect {
	return func(a, b *image.RGBA, p float64) (*image.RGBA, error) {
		if err := checkBounds(a, b); err != nil {
			return nil, err
		}
		out := clone(a)
		w, h := out.Bounds().Dx(), out.Bounds().Dy()
		var r image.Rectangle
		switch from {
		case edgeLeft:
			r = image.Rect(0, 0, int(math.Round(float64(w)*p)), h)
		case edgeRight:
			r = image.Rect(w-int(math.Round(float64(w)*p)), 0, w, h)
		case edgeTop:
			r = image.Rect(0, 0, w, int(math.Round(float64(h)*p)))
		case edgeBottom:
			r = image.Rect(0, h-int(math.Round(float64(h)*p)), w, h)
		}
		draw.Draw(out, r, b, b.Bounds().Min.Add(r.Min), draw.Src)
		return out, nil
	}
}

// slide pushes a out of frame in direction (dx, dy) while b follows it in.
func slide(dx, dy int) Effect {
	return func(a, b *image.RGBA, p float64) (*image.RGBA, error) {
		if err := checkBounds(a, b); err != nil {
			return nil, err
		}
		w, h := a.Bounds().Dx(), a.Bounds().Dy()
		out := image.NewRGBA(image.Rect(0, 0, w, h))
		off := image.Pt(
			int(math.Round(float64(dx*w)*p)),
			int(math.Round(float64(dy*h)*p)),
		)
		// b sits one frame behind a along the direction of travel.
		offB := off.Sub(image.Pt(dx*w, dy*h))
		draw.Draw(out, out.Bounds().Add(off), a, a.Bounds().Min, draw.Src)
		draw.Draw(out, out.Bounds().Add(offB), b, b.Bounds().Min, draw.Src)
		return out, nil
	}
}

// Dissolve switches pixels from a to b in a fixed pseudo-random order.
// The order depends only on pixel position, so every worker produces the
// same frame.
func Dissolve(a, b *image.RGBA, p float64) (*image.RGBA, error) {
	if err := checkBounds(a, b); err != nil {
		return nil, err
	}
	out := clone(a)
	w, h := out.Bounds().Dx(), out.Bounds().Dy()
	threshold := uint32(p * float64(math.MaxUint32))
	bMin := b.Bounds().Min
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if pixelHash(x, y) >= threshold {
				continue
			}
			di := out.PixOffset(x, y)
			si := b.PixOffset(bMin.X+x, bMin.Y+y)
			copy(out.Pix[di:di+4], b.Pix[si:si+4])
		}
	}
	return out, nil
}

func pixelHash(x, y int) uint32 {
	h := uint32(x)*0x9E3779B1 ^ uint32(y)*0x85EBCA77
	h ^= h >> 15
	h *= 0xC2B2AE3D
	h ^= h >> 13
	return h
}

// CircleOpen reveals b inside a circle growing from the frame center.
func CircleOpen(a, b *image.RGBA, p float64) (*image.RGBA, error) {
	if err := checkBounds(a, b); err != nil {
		return nil, err
	}
	w, h := a.Bounds().Dx(), a.Bounds().Dy()
	dc := canvas(a.Bounds().Size(), gg.Transparent)
	defer func() { _ = dc.Close() }()
	overlay(dc, a, 1)

	radius := p * math.Hypot(float64(w), float64(h)) / 2
	if radius > 0 {
		dc.SetFillPattern(dc.CreateImagePattern(gg.ImageBufFromImage(b), 0, 0, w, h))
		dc.DrawCircle(float64(w)/2, float64(h)/2, radius)
		if err := dc.Fill(); err != nil {
			return nil, err
		}
	}
	return snapshot(dc), nil
}
