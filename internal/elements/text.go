package elements

import (
	"fmt"
	"image"
	"math"
	"os"
	"strings"

	"github.com/gogpu/gg"
	"github.com/gogpu/gg/text"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/five82/montage/internal/animate"
	merrors "github.com/five82/montage/internal/errors"
	"github.com/five82/montage/internal/model"
	"github.com/five82/montage/internal/render"
)

// DefaultFontSize is the text size when the element sets none.
const DefaultFontSize = 48

// Text draws one or more lines of text inside the element box. Glyphs
// are rasterized into an offscreen image that is then placed with the
// element transform, so rotation and scale apply to text as well.
type Text struct {
	el     *model.Element
	source *text.FontSource
	lines  []string
	halign float64
	valign float64

	cacheKey string
	cached   *image.RGBA
}

// NewText creates a text drawer. The "font" property names a TTF or OTF
// file; without it the Go Regular font is used.
func NewText(el *model.Element) (render.Drawer, error) {
	data := goregular.TTF
	if path := el.PropString("font", ""); path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, merrors.NewResourceError(path, err)
		}
		data = b
	}
	source, err := text.NewFontSource(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load font: %w", err)
	}

	t := &Text{
		el:     el,
		source: source,
		lines:  strings.Split(el.PropString("text", ""), "\n"),
	}
	switch el.PropString("align", "left") {
	case "center":
		t.halign = 0.5
	case "right":
		t.halign = 1
	}
	switch el.PropString("valign", "top") {
	case "middle":
		t.valign = 0.5
	case "bottom":
		t.valign = 1
	}
	return t, nil
}

// Draw paints the text.
func (t *Text) Draw(st animate.State, s *render.Surface) error {
	w, h := int(math.Ceil(st.Width)), int(math.Ceil(st.Height))
	if w <= 0 || h <= 0 {
		return nil
	}
	size := number(st, t.el, "size", DefaultFontSize)
	if size <= 0 {
		return nil
	}

	key := fmt.Sprintf("%dx%d/%g/%v", w, h, size, st.Color)
	if key != t.cacheKey {
		img, err := t.rasterize(w, h, size, st.Color)
		if err != nil {
			return err
		}
		t.cacheKey, t.cached = key, img
	}
	s.DrawRaster(t.cached, st.X, st.Y, float64(w), float64(h))
	return nil
}

func (t *Text) rasterize(w, h int, size float64, c gg.RGBA) (*image.RGBA, error) {
	dc := gg.NewContext(w, h)
	defer func() { _ = dc.Close() }()

	dc.SetFont(t.source.Face(size))
	setColor(dc, c)

	_, lineH := dc.MeasureString("Mg")
	lineH *= t.el.PropFloat("lineHeight", 1)
	blockH := lineH * float64(len(t.lines))
	top := (float64(h) - blockH) * t.valign

	for i, line := range t.lines {
		x := float64(w) * t.halign
		y := top + lineH*float64(i)
		dc.DrawStringAnchored(line, x, y, t.halign, 1)
	}
	_ = dc.FlushGPU()
	img, ok := dc.Image().(*image.RGBA)
	if !ok {
		return nil, fmt.Errorf("unexpected image type %T", dc.Image())
	}
	return img, nil
}

// Close releases the font source.
func (t *Text) Close() error {
	return t.source.Close()
}
