package montage

import (
	"context"
	"errors"
	"image"
	"slices"
	"testing"

	"github.com/five82/montage/internal/config"
	merrors "github.com/five82/montage/internal/errors"
)

func TestParsePreset(t *testing.T) {
	tests := []struct {
		input   string
		want    Preset
		wantErr bool
	}{
		{"draft", PresetDraft, false},
		{"Balanced", PresetBalanced, false},
		{"QUALITY", PresetQuality, false},
		{"grain", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePreset(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePreset(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePreset(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestNewOptions(t *testing.T) {
	tests := []struct {
		name    string
		opts    []Option
		wantErr error
	}{
		{"defaults", nil, nil},
		{"preset and workers", []Option{WithPreset(PresetDraft), WithWorkers(4)}, nil},
		{"negative workers", []Option{WithWorkers(-1)}, config.ErrInvalidWorkers},
		{"bad bitrate", []Option{WithBitrate("fast")}, config.ErrInvalidBitrate},
		{"bad crf", []Option{WithCRF(80)}, config.ErrInvalidCRF},
		{"empty codec", []Option{WithCodec("")}, config.ErrMissingEncoder},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.opts...)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("New() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("New() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestNewRejectsNilEffect(t *testing.T) {
	if _, err := New(WithEffect("broken", nil)); err == nil {
		t.Error("New() with a nil effect succeeded")
	}
}

func TestEffects(t *testing.T) {
	invert := func(a, b *image.RGBA, p float64) (*image.RGBA, error) { return b, nil }
	r, err := New(WithEffect("Invert", invert))
	if err != nil {
		t.Fatal(err)
	}
	names := r.Effects()
	for _, want := range []string{"fade", "invert"} {
		if !slices.Contains(names, want) {
			t.Errorf("Effects() = %v, missing %q", names, want)
		}
	}
	if !slices.IsSorted(names) {
		t.Errorf("Effects() = %v, not sorted", names)
	}
}

// fillDrawer paints the element box with the element color.
type fillDrawer struct{}

func (fillDrawer) Draw(st State, s *Surface) error {
	dc := s.Context()
	dc.SetRGBA(st.Color.R, st.Color.G, st.Color.B, st.Color.A)
	dc.DrawRectangle(st.X, st.Y, st.Width, st.Height)
	return dc.Fill()
}

func sampleComposition(typ string) *Composition {
	return &Composition{
		Width: 20, Height: 10, FPS: 10, Duration: 1,
		Background: "#0000ff",
		Layers: []*Layer{{
			Name: "main",
			Elements: []*Element{{
				ID: "late", Type: typ, Start: 0.5,
				Width: Percent(100), Height: Percent(100),
				Color: "#ff0000",
			}},
		}},
	}
}

func TestCompileAndRenderFrame(t *testing.T) {
	r, err := New(WithDrawer("fill", func(*Element) (Drawer, error) { return fillDrawer{}, nil }))
	if err != nil {
		t.Fatal(err)
	}

	s, err := r.Compile(sampleComposition("fill"))
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}
	if w, h := s.Size(); w != 20 || h != 10 || s.Frames() != 10 || s.FPS() != 10 || s.Duration() != 1 {
		t.Errorf("scene = %dx%d, %d frames at %d fps, %gs", w, h, s.Frames(), s.FPS(), s.Duration())
	}

	tests := []struct {
		t       float64
		r, g, b uint8
	}{
		{0.2, 0, 0, 255},
		{0.7, 255, 0, 0},
	}
	for _, tt := range tests {
		img, err := r.RenderFrame(s, tt.t)
		if err != nil {
			t.Fatalf("RenderFrame(%v) error = %v", tt.t, err)
		}
		c := img.RGBAAt(10, 5)
		if c.R != tt.r || c.G != tt.g || c.B != tt.b {
			t.Errorf("RenderFrame(%v) center = %v, want (%d,%d,%d)", tt.t, c, tt.r, tt.g, tt.b)
		}
	}
}

func TestCompileUnknownType(t *testing.T) {
	r, err := New()
	if err != nil {
		t.Fatal(err)
	}
	_, err = r.Compile(sampleComposition("fill"))
	if !merrors.IsKind(err, merrors.KindConfig) {
		t.Errorf("Compile() error = %v, want configuration error", err)
	}
	if !slices.Contains(r.ElementTypes(), "rect") {
		t.Errorf("ElementTypes() = %v, missing rect", r.ElementTypes())
	}
}

func TestExportCancelledBeforeStart(t *testing.T) {
	r, err := New(WithoutValidation(), WithFFmpeg("/nonexistent/ffmpeg", ""))
	if err != nil {
		t.Fatal(err)
	}
	s, err := r.Compile(sampleComposition("rect"))
	if err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = r.Export(ctx, s, t.TempDir()+"/out.mp4")
	if !merrors.IsCancelled(err) {
		t.Errorf("Export() error = %v, want cancelled", err)
	}
}
