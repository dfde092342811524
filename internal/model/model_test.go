package model

import (
	"bytes"
	"math"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseValue(t *testing.T) {
	tests := []struct {
		in      string
		want    Value
		wantErr bool
	}{
		{"12", Px(12), false},
		{"12px", Px(12), false},
		{"50%", Percent(50), false},
		{"10vw", VW(10), false},
		{" 5vh ", VH(5), false},
		{"3vmin", Value{3, UnitVMin}, false},
		{"-2.5vmax", Value{-2.5, UnitVMax}, false},
		{"", Value{}, false},
		{"wide", Value{}, true},
		{"10em", Value{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseValue(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseValue(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseValue(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestValueResolve(t *testing.T) {
	parent := Size{W: 400, H: 200}
	viewport := Size{W: 1920, H: 1080}

	tests := []struct {
		name    string
		v       Value
		axis    Axis
		parent  Size
		want    float64
		wantErr bool
	}{
		{"unset", Value{}, AxisX, parent, 0, false},
		{"px", Px(13), AxisX, parent, 13, false},
		{"percent x", Percent(50), AxisX, parent, 200, false},
		{"percent y", Percent(50), AxisY, parent, 100, false},
		{"vw", VW(10), AxisY, parent, 192, false},
		{"vh", VH(10), AxisX, parent, 108, false},
		{"vmin", Value{10, UnitVMin}, AxisX, parent, 108, false},
		{"vmax", Value{10, UnitVMax}, AxisX, parent, 192, false},
		{"percent of unknown parent", Percent(50), AxisX, Size{}, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.v.Resolve(tt.axis, tt.parent, viewport)
			if (err != nil) != tt.wantErr {
				t.Fatalf("Resolve() error = %v, wantErr %v", err, tt.wantErr)
			}
			if math.Abs(got-tt.want) > 1e-9 {
				t.Errorf("Resolve() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParseColor(t *testing.T) {
	tests := []struct {
		in      string
		wantA   float64
		wantErr bool
	}{
		{"#ff0000", 1, false},
		{"ff000080", 128.0 / 255, false},
		{"#fff", 1, false},
		{"white", 1, false},
		{"transparent", 0, false},
		{"#12345", 0, true},
		{"#gggggg", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseColor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseColor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if !tt.wantErr && math.Abs(got.A-tt.wantA) > 1e-9 {
				t.Errorf("ParseColor(%q).A = %v, want %v", tt.in, got.A, tt.wantA)
			}
		})
	}
}

func TestElementProps(t *testing.T) {
	el := &Element{Type: TypeText, Props: map[string]any{
		"text":  "hello",
		"size":  48,
		"scale": 1.5,
		"bold":  true,
	}}

	if got := el.PropString("text", ""); got != "hello" {
		t.Errorf("PropString(text) = %q", got)
	}
	if got := el.PropFloat("size", 0); got != 48 {
		t.Errorf("PropFloat(size) = %v", got)
	}
	if got := el.PropInt("scale", 0); got != 1 {
		t.Errorf("PropInt(scale) = %v", got)
	}
	if !el.PropBool("bold", false) {
		t.Error("PropBool(bold) = false")
	}
	if got := el.PropFloat("missing", 7); got != 7 {
		t.Errorf("PropFloat(missing) = %v, want default", got)
	}
	if got := el.Label(); got != "<text>" {
		t.Errorf("Label() = %q", got)
	}
}

const sampleYAML = `
width: 1280
height: 720
fps: 30
duration: 6
background: "#101010"
layers:
  - name: intro
    duration: 3
    ref: card
  - name: main
    start: 3
    duration: 3
    elements:
      - id: logo
        type: image
        x: 10%
        y: 20
        width: 5vw
        props:
          src: assets/logo.png
        animations:
          - property: opacity
            from: 0
            to: 1
            duration: 1
transitions:
  - from: intro
    to: main
    effect: fade
    duration: 1
compositions:
  card:
    duration: 3
    layers:
      - elements:
          - id: title
            type: text
            props:
              text: Hello
`

func TestDecode(t *testing.T) {
	comp, err := DecodeBytes([]byte(sampleYAML), "/project")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	if comp.Width != 1280 || comp.FPS != 30 || comp.Duration != 6 {
		t.Errorf("root = %dx%d@%d for %vs", comp.Width, comp.Height, comp.FPS, comp.Duration)
	}
	if len(comp.Layers) != 2 {
		t.Fatalf("len(Layers) = %d, want 2", len(comp.Layers))
	}

	intro := comp.Layers[0]
	if !intro.IsComposition() || intro.Composition.ID != "card" {
		t.Fatalf("intro layer not linked to card: %+v", intro)
	}

	logo := comp.Layers[1].Elements[0]
	if logo.X != Percent(10) || logo.Y != Px(20) || logo.Width != VW(5) {
		t.Errorf("logo geometry = %v %v %v", logo.X, logo.Y, logo.Width)
	}
	if got := logo.PropString("src", ""); got != filepath.Join("/project", "assets/logo.png") {
		t.Errorf("src = %q, want resolved against base dir", got)
	}
	if len(logo.Animations) != 1 || logo.Animations[0].To != Px(1) {
		t.Errorf("animations = %+v", logo.Animations)
	}
	if len(comp.Transitions) != 1 || comp.Transitions[0].Label() != "intro->main" {
		t.Errorf("transitions = %+v", comp.Transitions)
	}
}

func TestDecodeErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown ref", "duration: 1\nlayers:\n  - ref: nope\n", "unknown composition reference"},
		{"unknown field", "duration: 1\nspeed: 2\n", "speed"},
		{"bad length", "duration: 1\nlayers:\n  - elements:\n      - type: rect\n        x: wide\n", "invalid length"},
		{"empty", "", "empty composition"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := DecodeBytes([]byte(tt.yaml), "")
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Decode() error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestDecodeSelfReferenceTerminates(t *testing.T) {
	// A cyclic reference must decode; the cycle is reported at compile time.
	src := `
duration: 1
layers:
  - ref: loop
compositions:
  loop:
    duration: 1
    layers:
      - ref: loop
`
	comp, err := DecodeBytes([]byte(src), "")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	loop := comp.Layers[0].Composition
	if loop.Layers[0].Composition != loop {
		t.Error("expected loop to reference itself")
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	comp := &Composition{
		Width: 320, Height: 240, FPS: 24, Duration: 2,
		Layers: []*Layer{{Name: "a", Elements: []*Element{{Type: TypeRect, X: Percent(25), Width: Px(10)}}}},
	}
	var buf bytes.Buffer
	if err := Encode(&buf, comp); err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if !strings.Contains(buf.String(), "x: 25%") {
		t.Errorf("encoded YAML missing percentage: %s", buf.String())
	}
	back, err := Decode(&buf, "")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if back.Layers[0].Elements[0].X != Percent(25) || back.Layers[0].Elements[0].Width != Px(10) {
		t.Errorf("round trip geometry = %+v", back.Layers[0].Elements[0])
	}
}
