package animate

import (
	"math"
	"reflect"
	"testing"

	merrors "github.com/five82/montage/internal/errors"
	"github.com/five82/montage/internal/model"
)

var (
	viewport = model.Size{W: 1920, H: 1080}
	parent   = model.Size{W: 1000, H: 500}
)

func near(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func fadeIn() *model.Element {
	return &model.Element{
		ID:   "title",
		Type: model.TypeText,
		Animations: []model.Animation{
			{Property: "opacity", From: model.Px(0), To: model.Px(1), Duration: 1},
		},
	}
}

func TestEvaluateFadeScenario(t *testing.T) {
	tests := []struct {
		local float64
		want  float64
	}{
		{0, 0},
		{0.25, 0.25},
		{0.5, 0.5},
		{1, 1},
		{3, 1},
	}

	el := fadeIn()
	for _, tt := range tests {
		st, err := Evaluate(el, tt.local, parent, viewport)
		if err != nil {
			t.Fatalf("Evaluate(%v) error = %v", tt.local, err)
		}
		if !near(st.Opacity, tt.want) {
			t.Errorf("Evaluate(%v).Opacity = %v, want %v", tt.local, st.Opacity, tt.want)
		}
	}
}

func TestEvaluateFillNone(t *testing.T) {
	el := fadeIn()
	el.Animations[0].Fill = model.FillNone

	st, err := Evaluate(el, 2, parent, viewport)
	if err != nil {
		t.Fatal(err)
	}
	if st.Opacity != 1 {
		t.Errorf("Opacity after window = %v, want base value 1", st.Opacity)
	}

	el.Animations[0].From = model.Px(0.2)
	el.Animations[0].To = model.Px(0.4)
	st, _ = Evaluate(el, 2, parent, viewport)
	if st.Opacity != 1 {
		t.Errorf("Opacity after window = %v, want base value 1", st.Opacity)
	}
}

func TestEvaluateIdempotent(t *testing.T) {
	el := fadeIn()
	el.Animations = append(el.Animations, model.Animation{
		Property: "x", From: model.Percent(0), To: model.Percent(50), Duration: 2, Easing: "easeInOutCubic",
	})

	first, err := Evaluate(el, 0.7, parent, viewport)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 5; i++ {
		again, err := Evaluate(el, 0.7, parent, viewport)
		if err != nil {
			t.Fatal(err)
		}
		if !reflect.DeepEqual(first, again) {
			t.Fatalf("Evaluate is not idempotent: %+v vs %+v", first, again)
		}
	}
}

func TestEvaluateLastWriterWins(t *testing.T) {
	el := &model.Element{
		Type: model.TypeRect,
		Animations: []model.Animation{
			{Property: "rotation", From: model.Px(0), To: model.Px(90), Duration: 2},
			{Property: "rotation", From: model.Px(180), To: model.Px(180), Duration: 2},
		},
	}

	st, err := Evaluate(el, 1, parent, viewport)
	if err != nil {
		t.Fatal(err)
	}
	if st.Rotation != 180 {
		t.Errorf("Rotation = %v, want 180 from the later animation", st.Rotation)
	}
}

func TestEvaluateCoveringBeatsHeld(t *testing.T) {
	// The second animation finished; the first still runs and wins even
	// though it was declared earlier.
	el := &model.Element{
		Type: model.TypeRect,
		Animations: []model.Animation{
			{Property: "opacity", From: model.Px(0), To: model.Px(1), Duration: 4},
			{Property: "opacity", From: model.Px(1), To: model.Px(0.1), Duration: 1},
		},
	}

	st, err := Evaluate(el, 2, parent, viewport)
	if err != nil {
		t.Fatal(err)
	}
	if !near(st.Opacity, 0.5) {
		t.Errorf("Opacity = %v, want 0.5", st.Opacity)
	}
}

func TestEvaluateGeometry(t *testing.T) {
	el := &model.Element{
		Type:   model.TypeRect,
		X:      model.Percent(10),
		Y:      model.VH(10),
		Width:  model.Percent(50),
		Height: model.Px(40),
	}

	st, err := Evaluate(el, 0, parent, viewport)
	if err != nil {
		t.Fatal(err)
	}
	want := [4]float64{100, 108, 500, 40}
	got := [4]float64{st.X, st.Y, st.Width, st.Height}
	for i := range want {
		if !near(got[i], want[i]) {
			t.Errorf("geometry = %v, want %v", got, want)
			break
		}
	}
	if st.ScaleX != 1 || st.ScaleY != 1 || st.Opacity != 1 {
		t.Errorf("defaults = scale %v/%v opacity %v", st.ScaleX, st.ScaleY, st.Opacity)
	}
}

func TestEvaluateUnsetSizeFillsParent(t *testing.T) {
	st, err := Evaluate(&model.Element{Type: model.TypeRect}, 0, parent, viewport)
	if err != nil {
		t.Fatal(err)
	}
	if st.Width != parent.W || st.Height != parent.H {
		t.Errorf("size = %vx%v, want parent %vx%v", st.Width, st.Height, parent.W, parent.H)
	}
}

func TestEvaluatePercentWithoutParent(t *testing.T) {
	el := &model.Element{ID: "box", Type: model.TypeRect, Width: model.Percent(50)}
	_, err := Evaluate(el, 0, model.Size{}, viewport)
	if !merrors.IsKind(err, merrors.KindConfig) {
		t.Fatalf("Evaluate() error = %v, want config error", err)
	}
}

func TestEvaluateKeyframes(t *testing.T) {
	el := &model.Element{
		Type: model.TypeRect,
		Animations: []model.Animation{{
			Property: "y",
			Duration: 3,
			Keyframes: []model.Keyframe{
				{At: 0, Value: model.Px(0)},
				{At: 1, Value: model.Px(100)},
				{At: 3, Value: model.Percent(100), Easing: "step"},
			},
		}},
	}

	tests := []struct {
		local float64
		want  float64
	}{
		{0, 0},
		{0.5, 50},
		{1, 100},
		{2, 100},
		{2.99, 100},
		{5, 500},
	}
	for _, tt := range tests {
		st, err := Evaluate(el, tt.local, parent, viewport)
		if err != nil {
			t.Fatalf("Evaluate(%v) error = %v", tt.local, err)
		}
		if !near(st.Y, tt.want) {
			t.Errorf("Evaluate(%v).Y = %v, want %v", tt.local, st.Y, tt.want)
		}
	}
}

func TestEvaluateColorAndExtra(t *testing.T) {
	el := &model.Element{
		Type:  model.TypeRect,
		Color: "#000000",
		Animations: []model.Animation{
			{Property: "color", ToColor: "#ffffff", Duration: 2},
			{Property: "radius", From: model.Px(0), To: model.Px(20), Duration: 2},
			{Properties: []string{"scaleX", "scaleY"}, From: model.Px(1), To: model.Px(2), Duration: 2},
		},
	}

	st, err := Evaluate(el, 1, parent, viewport)
	if err != nil {
		t.Fatal(err)
	}
	if !near(st.Color.R, 0.5) || !near(st.Color.A, 1) {
		t.Errorf("Color = %+v, want mid gray", st.Color)
	}
	if !near(st.Extra["radius"], 10) {
		t.Errorf("Extra[radius] = %v, want 10", st.Extra["radius"])
	}
	if !near(st.ScaleX, 1.5) || !near(st.ScaleY, 1.5) {
		t.Errorf("scale = %v/%v, want 1.5", st.ScaleX, st.ScaleY)
	}
}

func TestEvaluateUnknownEasing(t *testing.T) {
	el := fadeIn()
	el.Animations[0].Easing = "bounce"
	if _, err := Evaluate(el, 0.5, parent, viewport); err == nil {
		t.Error("expected error for unknown easing")
	}
}

func TestEvaluateDelayedStart(t *testing.T) {
	el := fadeIn()
	el.Animations[0].Start = 1

	st, _ := Evaluate(el, 0.5, parent, viewport)
	if st.Opacity != 1 {
		t.Errorf("Opacity before delayed start = %v, want base 1", st.Opacity)
	}
	st, _ = Evaluate(el, 1.5, parent, viewport)
	if !near(st.Opacity, 0.5) {
		t.Errorf("Opacity mid window = %v, want 0.5", st.Opacity)
	}
}
