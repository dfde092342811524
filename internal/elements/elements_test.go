package elements

import (
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/five82/montage/internal/animate"
	merrors "github.com/five82/montage/internal/errors"
	"github.com/five82/montage/internal/model"
	"github.com/five82/montage/internal/render"
)

func state(x, y, w, h float64, c string) animate.State {
	col, _ := model.ParseColor(c)
	return animate.State{X: x, Y: y, Width: w, Height: h, ScaleX: 1, ScaleY: 1, Opacity: 1, Color: col}
}

func opaque(img *image.RGBA) int {
	n := 0
	for i := 3; i < len(img.Pix); i += 4 {
		if img.Pix[i] > 0 {
			n++
		}
	}
	return n
}

func TestDefaultRegistryTypes(t *testing.T) {
	got := DefaultRegistry().Types()
	want := []string{"audio", "circle", "ellipse", "image", "pdf", "qrcode", "rect", "text"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Types() = %v, want %v", got, want)
	}
}

func TestFit(t *testing.T) {
	src := image.Rect(0, 0, 200, 100)
	tests := []struct {
		mode       string
		wantRegion image.Rectangle
		wantBox    [4]float64
	}{
		{FitFill, src, [4]float64{0, 0, 100, 100}},
		{FitContain, src, [4]float64{0, 25, 100, 50}},
		{FitCover, image.Rect(50, 0, 150, 100), [4]float64{0, 0, 100, 100}},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			region, x, y, w, h := fit(src, 0, 0, 100, 100, tt.mode)
			if region != tt.wantRegion {
				t.Errorf("fit(%s) region = %v, want %v", tt.mode, region, tt.wantRegion)
			}
			if got := [4]float64{x, y, w, h}; got != tt.wantBox {
				t.Errorf("fit(%s) box = %v, want %v", tt.mode, got, tt.wantBox)
			}
		})
	}
}

func TestRectDraw(t *testing.T) {
	d, err := NewRect(&model.Element{Type: model.TypeRect})
	if err != nil {
		t.Fatal(err)
	}
	s := render.NewSurface(20, 20)
	defer func() { _ = s.Close() }()

	if err := d.Draw(state(5, 5, 10, 10, "#00ff00"), s); err != nil {
		t.Fatalf("Draw() error = %v", err)
	}
	img := s.Image()
	if got := img.RGBAAt(10, 10); got != (color.RGBA{0, 255, 0, 255}) {
		t.Errorf("inside = %v, want green", got)
	}
	if got := img.RGBAAt(1, 1); got.A != 0 {
		t.Errorf("outside = %v, want transparent", got)
	}
}

func TestRectStrokeOnly(t *testing.T) {
	el := &model.Element{Type: model.TypeRect, Props: map[string]any{"fill": false, "stroke": "#ffffff", "strokeWidth": 2}}
	d, err := NewRect(el)
	if err != nil {
		t.Fatal(err)
	}
	s := render.NewSurface(40, 40)
	defer func() { _ = s.Close() }()

	if err := d.Draw(state(10, 10, 20, 20, "#ff0000"), s); err != nil {
		t.Fatal(err)
	}
	if got := s.Image().RGBAAt(20, 20); got.A != 0 {
		t.Errorf("center of unfilled rect = %v, want transparent", got)
	}
}

func TestShapeBadStrokeColor(t *testing.T) {
	el := &model.Element{Type: model.TypeEllipse, Props: map[string]any{"stroke": "nope"}}
	if _, err := NewEllipse(el); err == nil {
		t.Error("NewEllipse() should reject an invalid stroke color")
	}
}

func TestCircleDraw(t *testing.T) {
	d, _ := NewCircle(&model.Element{Type: model.TypeCircle})
	s := render.NewSurface(40, 20)
	defer func() { _ = s.Close() }()

	if err := d.Draw(state(0, 0, 40, 20, "#ffffff"), s); err != nil {
		t.Fatal(err)
	}
	img := s.Image()
	if got := img.RGBAAt(20, 10); got.A != 255 {
		t.Errorf("center = %v, want opaque", got)
	}
	if got := img.RGBAAt(2, 10); got.A != 0 {
		t.Errorf("left edge = %v, want transparent for circle of radius 10", got)
	}
}

func writePNG(t *testing.T, dir string, w, h int, c color.RGBA) string {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGBA(x, y, c)
		}
	}
	path := filepath.Join(dir, "img.png")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = f.Close() }()
	if err := png.Encode(f, img); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestImageDraw(t *testing.T) {
	src := writePNG(t, t.TempDir(), 4, 2, color.RGBA{255, 0, 0, 255})
	d, err := NewImage(&model.Element{Type: model.TypeImage, Props: map[string]any{"src": src, "fit": "contain"}})
	if err != nil {
		t.Fatalf("NewImage() error = %v", err)
	}
	s := render.NewSurface(20, 20)
	defer func() { _ = s.Close() }()

	if err := d.Draw(state(0, 0, 20, 20, ""), s); err != nil {
		t.Fatal(err)
	}
	img := s.Image()
	if got := img.RGBAAt(10, 10); got != (color.RGBA{255, 0, 0, 255}) {
		t.Errorf("center = %v, want red", got)
	}
	if got := img.RGBAAt(10, 1); got.A != 0 {
		t.Errorf("letterbox = %v, want transparent", got)
	}
}

func TestImageMissing(t *testing.T) {
	_, err := NewImage(&model.Element{Type: model.TypeImage, Props: map[string]any{"src": filepath.Join(t.TempDir(), "none.png")}})
	if !merrors.IsKind(err, merrors.KindResource) {
		t.Errorf("NewImage() error = %v, want resource error", err)
	}
	if _, err := NewImage(&model.Element{Type: model.TypeImage}); err == nil {
		t.Error("NewImage() without src should fail")
	}
}

func TestPDFMissing(t *testing.T) {
	_, err := NewPDFPage(&model.Element{Type: model.TypePDF, Props: map[string]any{"src": filepath.Join(t.TempDir(), "none.pdf")}})
	if !merrors.IsKind(err, merrors.KindResource) {
		t.Errorf("NewPDFPage() error = %v, want resource error", err)
	}
}

func TestQRCode(t *testing.T) {
	if _, err := NewQRCode(&model.Element{Type: model.TypeQRCode}); err == nil {
		t.Error("NewQRCode() without content should fail")
	}
	if _, err := NewQRCode(&model.Element{Type: model.TypeQRCode, Props: map[string]any{"content": "x", "level": "Z"}}); err == nil {
		t.Error("NewQRCode() with bad level should fail")
	}

	d, err := NewQRCode(&model.Element{Type: model.TypeQRCode, Color: "#000000", Props: map[string]any{"content": "https://example.com", "level": "h"}})
	if err != nil {
		t.Fatalf("NewQRCode() error = %v", err)
	}
	s := render.NewSurface(120, 100)
	defer func() { _ = s.Close() }()
	if err := d.Draw(state(0, 0, 120, 100, ""), s); err != nil {
		t.Fatal(err)
	}
	img := s.Image()
	if got := img.RGBAAt(5, 50); got.A != 0 {
		t.Errorf("outside square = %v, want transparent", got)
	}
	if got := img.RGBAAt(60, 50); got.A != 255 {
		t.Errorf("inside square = %v, want opaque", got)
	}
}

func TestTextDraw(t *testing.T) {
	d, err := NewText(&model.Element{Type: model.TypeText, Props: map[string]any{"text": "Hello\nWorld", "size": 24, "align": "center"}})
	if err != nil {
		t.Fatalf("NewText() error = %v", err)
	}
	defer func() { _ = d.(render.Closer).Close() }()

	s := render.NewSurface(200, 100)
	defer func() { _ = s.Close() }()
	if err := d.Draw(state(0, 0, 200, 100, "#ffffff"), s); err != nil {
		t.Fatal(err)
	}
	if opaque(s.Image()) == 0 {
		t.Error("text drew no pixels")
	}
}

func TestTextMissingFont(t *testing.T) {
	_, err := NewText(&model.Element{Type: model.TypeText, Props: map[string]any{"font": "/no/such/font.ttf"}})
	if !merrors.IsKind(err, merrors.KindResource) {
		t.Errorf("NewText() error = %v, want resource error", err)
	}
}

func TestAudioDrawsNothing(t *testing.T) {
	d, _ := NewAudio(nil)
	s := render.NewSurface(4, 4)
	defer func() { _ = s.Close() }()
	if err := d.Draw(state(0, 0, 4, 4, "#ffffff"), s); err != nil {
		t.Fatal(err)
	}
	if opaque(s.Image()) != 0 {
		t.Error("audio drawer painted pixels")
	}
}
