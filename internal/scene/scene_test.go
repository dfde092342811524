package scene

import (
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	merrors "github.com/five82/montage/internal/errors"
	"github.com/five82/montage/internal/model"
)

func root(layers ...*model.Layer) *model.Composition {
	return &model.Composition{ID: "root", Width: 640, Height: 360, FPS: 30, Duration: 10, Layers: layers}
}

func rect(id string) *model.Element {
	return &model.Element{ID: id, Type: model.TypeRect}
}

func TestCompileInheritsDurations(t *testing.T) {
	g, err := Compile(root(
		&model.Layer{Name: "bg", Elements: []*model.Element{rect("a")}},
		&model.Layer{Name: "late", Start: 4, Elements: []*model.Element{{ID: "b", Type: model.TypeRect, Start: 1}}},
	), Options{})
	if err != nil {
		t.Fatalf("Compile() error = %v", err)
	}

	if g.Frames != 300 {
		t.Errorf("Frames = %d, want 300", g.Frames)
	}
	late := g.Layers[g.RootComp().Layers[1]]
	if late.Duration != 6 {
		t.Errorf("late layer duration = %v, want 6", late.Duration)
	}
	b := g.Elements[late.Elements[0]]
	if b.Duration != 5 {
		t.Errorf("element b duration = %v, want 5", b.Duration)
	}
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		comp *model.Composition
		opts Options
		want string
	}{
		{
			name: "bad fps",
			comp: &model.Composition{Width: 10, Height: 10, FPS: 0, Duration: 1},
			want: "invalid frame rate",
		},
		{
			name: "bad duration",
			comp: &model.Composition{Width: 10, Height: 10, FPS: 30},
			want: "invalid duration",
		},
		{
			name: "bad size",
			comp: &model.Composition{FPS: 30, Duration: 1},
			want: "invalid size",
		},
		{
			name: "unknown effect",
			comp: func() *model.Composition {
				c := root(
					&model.Layer{Name: "a", Duration: 5, Elements: []*model.Element{rect("x")}},
					&model.Layer{Name: "b", Start: 5, Elements: []*model.Element{rect("y")}},
				)
				c.Transitions = []model.Transition{{From: "a", To: "b", Effect: "spin", Duration: 1}}
				return c
			}(),
			want: `unknown transition effect "spin"`,
		},
		{
			name: "not adjacent",
			comp: func() *model.Composition {
				c := root(
					&model.Layer{Name: "a", Duration: 4, Elements: []*model.Element{rect("x")}},
					&model.Layer{Name: "b", Start: 5, Elements: []*model.Element{rect("y")}},
				)
				c.Transitions = []model.Transition{{From: "a", To: "b", Effect: "fade", Duration: 1}}
				return c
			}(),
			want: "not adjacent",
		},
		{
			name: "unknown layer",
			comp: func() *model.Composition {
				c := root(&model.Layer{Name: "a", Elements: []*model.Element{rect("x")}})
				c.Transitions = []model.Transition{{From: "a", To: "z", Effect: "fade", Duration: 1}}
				return c
			}(),
			want: `no layer named "z"`,
		},
		{
			name: "unknown type",
			comp: root(&model.Layer{Elements: []*model.Element{{ID: "v", Type: "video"}}}),
			opts: Options{KnownType: func(t string) bool { return t == model.TypeRect }},
			want: `unknown element type "video"`,
		},
		{
			name: "unknown hook",
			comp: root(&model.Layer{Elements: []*model.Element{{ID: "h", Type: model.TypeRect, Hooks: []string{"glow"}}}}),
			opts: Options{KnownHook: func(string) bool { return false }},
			want: `unknown hook "glow"`,
		},
		{
			name: "bad easing",
			comp: root(&model.Layer{Elements: []*model.Element{{
				ID: "e", Type: model.TypeRect,
				Animations: []model.Animation{{Property: "x", To: model.Px(5), Duration: 1, Easing: "wobble"}},
			}}}),
			want: "unknown easing",
		},
		{
			name: "percent in unsized nested composition",
			comp: root(&model.Layer{Composition: &model.Composition{
				ID: "inner",
				Layers: []*model.Layer{{Elements: []*model.Element{{
					ID: "p", Type: model.TypeRect, Width: model.Percent(50),
				}}}},
			}, Width: model.Px(0)}),
			want: "unknown parent size",
		},
		{
			name: "layer after end",
			comp: root(&model.Layer{Name: "ghost", Start: 12, Elements: []*model.Element{rect("x")}}),
			want: "after its composition ends",
		},
		{
			name: "audio without src",
			comp: root(&model.Layer{Elements: []*model.Element{{ID: "a", Type: model.TypeAudio}}}),
			want: "audio element has no src",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Compile(tt.comp, tt.opts)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("Compile() error = %v, want containing %q", err, tt.want)
			}
			if !merrors.IsKind(err, merrors.KindConfig) {
				t.Errorf("Compile() error kind = %v, want config", err)
			}
			if merrors.StageOf(err) != merrors.StageBuild {
				t.Errorf("Compile() error stage = %v, want build", merrors.StageOf(err))
			}
		})
	}
}

func TestCompileDetectsCycle(t *testing.T) {
	comp, err := model.DecodeBytes([]byte(`
width: 100
height: 100
fps: 10
duration: 2
layers:
  - ref: a
compositions:
  a:
    layers:
      - ref: b
  b:
    layers:
      - elements:
          - type: composition
            ref: a
`), "")
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	_, err = Compile(comp, Options{})
	if err == nil || !strings.Contains(err.Error(), "a -> b -> a") {
		t.Fatalf("Compile() error = %v, want cycle", err)
	}
}

func TestCompileSharesReferencedComposition(t *testing.T) {
	card := &model.Composition{ID: "card", Width: 100, Height: 50, Layers: []*model.Layer{{Elements: []*model.Element{rect("t")}}}}
	g, err := Compile(root(
		&model.Layer{Name: "one", Duration: 5, Composition: card},
		&model.Layer{Name: "two", Start: 5, Composition: card},
	), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if len(g.Comps) != 2 {
		t.Errorf("len(Comps) = %d, want 2", len(g.Comps))
	}
	one, two := g.Layers[g.RootComp().Layers[0]], g.Layers[g.RootComp().Layers[1]]
	if one.Child != two.Child {
		t.Errorf("shared composition compiled twice: %d vs %d", one.Child, two.Child)
	}
	if got := g.LogicalSize(one.Child, model.Size{W: 640, H: 360}); got != (model.Size{W: 100, H: 50}) {
		t.Errorf("LogicalSize() = %v, want intrinsic size", got)
	}
}

func TestCompileSharedCompositionPerPlacement(t *testing.T) {
	music := touch(t, t.TempDir(), "music.wav")
	card := &model.Composition{ID: "card", Layers: []*model.Layer{{Elements: []*model.Element{
		rect("t"),
		{ID: "bed", Type: model.TypeAudio, Props: map[string]any{"src": music}},
	}}}}

	tests := []struct {
		name       string
		first      *model.Layer
		second     *model.Layer
		wantComps  int
		wantShared bool
		wantDurs   [2]float64
	}{
		{
			name:       "equal placements share",
			first:      &model.Layer{Name: "one", Duration: 5, Composition: card},
			second:     &model.Layer{Name: "two", Start: 5, Composition: card},
			wantComps:  2,
			wantShared: true,
			wantDurs:   [2]float64{5, 5},
		},
		{
			name:      "longer second placement",
			first:     &model.Layer{Name: "first", Duration: 1, Composition: card},
			second:    &model.Layer{Name: "second", Start: 1, Composition: card},
			wantComps: 3,
			wantDurs:  [2]float64{1, 9},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g, err := Compile(root(tt.first, tt.second), Options{})
			if err != nil {
				t.Fatalf("Compile() error = %v", err)
			}
			if len(g.Comps) != tt.wantComps {
				t.Errorf("len(Comps) = %d, want %d", len(g.Comps), tt.wantComps)
			}
			a, b := g.Layers[g.RootComp().Layers[0]], g.Layers[g.RootComp().Layers[1]]
			if (a.Child == b.Child) != tt.wantShared {
				t.Errorf("children %d and %d, shared want %v", a.Child, b.Child, tt.wantShared)
			}
			for i, child := range []int{a.Child, b.Child} {
				c := g.Comps[child]
				if c.Duration != tt.wantDurs[i] {
					t.Errorf("placement %d duration = %v, want %v", i, c.Duration, tt.wantDurs[i])
				}
				inner := g.Layers[c.Layers[0]]
				if el := g.Elements[inner.Elements[0]]; el.Duration != tt.wantDurs[i] {
					t.Errorf("placement %d element duration = %v, want %v", i, el.Duration, tt.wantDurs[i])
				}
			}

			clips, err := CollectAudio(g)
			if err != nil {
				t.Fatalf("CollectAudio() error = %v", err)
			}
			if len(clips) != 2 {
				t.Fatalf("len(clips) = %d, want 2", len(clips))
			}
			if clips[1].Start != a.Duration || clips[1].Duration != tt.wantDurs[1] {
				t.Errorf("second clip = %+v, want start %v duration %v", clips[1], a.Duration, tt.wantDurs[1])
			}
		})
	}
}

func TestCompileTransitionWindow(t *testing.T) {
	c := root(
		&model.Layer{Name: "a", Duration: 3, Elements: []*model.Element{rect("x")}},
		&model.Layer{Name: "b", Start: 3, Duration: 3, Elements: []*model.Element{rect("y")}},
	)
	c.Transitions = []model.Transition{{From: "a", To: "b", Effect: "fade", Duration: 1}}

	g, err := Compile(c, Options{})
	if err != nil {
		t.Fatal(err)
	}
	tr := g.RootComp().Transitions
	if len(tr) != 1 {
		t.Fatalf("len(Transitions) = %d, want 1", len(tr))
	}
	w := tr[0].Window
	if w.Start != 2.5 || w.End != 3.5 || w.Boundary != 3 {
		t.Errorf("Window = %+v, want [2.5, 3.5] at 3", w)
	}
}

func touch(t *testing.T, dir, name string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	return p
}

func TestCollectAudioNestedOffsets(t *testing.T) {
	dir := t.TempDir()
	music := touch(t, dir, "music.wav")

	// element [1,3) inside a scene layer starting at 5 inside a track at
	// the root plays on [6,8).
	scene := &model.Composition{ID: "scene", Layers: []*model.Layer{{
		Name:  "scene",
		Start: 5,
		Elements: []*model.Element{{
			ID: "voice", Type: model.TypeAudio, Start: 1, Duration: 2,
			Props: map[string]any{"src": music, "volume": 0.5},
		}},
	}}}
	g, err := Compile(root(&model.Layer{Name: "track", Composition: scene}), Options{})
	if err != nil {
		t.Fatal(err)
	}

	clips, err := CollectAudio(g)
	if err != nil {
		t.Fatalf("CollectAudio() error = %v", err)
	}
	if len(clips) != 1 {
		t.Fatalf("len(clips) = %d, want 1", len(clips))
	}
	got := clips[0]
	if got.Start != 6 || got.Duration != 2 || got.Trim != 0 || got.Gain != 0.5 {
		t.Errorf("clip = %+v, want start 6 duration 2 gain 0.5", got)
	}
}

func TestCollectAudioClipsToAncestors(t *testing.T) {
	dir := t.TempDir()
	music := touch(t, dir, "music.wav")

	c := root(
		&model.Layer{Name: "short", Start: 8, Elements: []*model.Element{{
			ID: "tail", Type: model.TypeAudio, Start: -1, Duration: 5,
			Props: map[string]any{"src": music, "trim": 2.0},
		}}},
	)
	g, err := Compile(c, Options{})
	if err != nil {
		t.Fatal(err)
	}
	clips, err := CollectAudio(g)
	if err != nil {
		t.Fatal(err)
	}
	got := clips[0]
	// Element spans [7,12) but the layer starts at 8 and the root ends at 10.
	if math.Abs(got.Start-8) > 1e-9 || math.Abs(got.Duration-2) > 1e-9 || math.Abs(got.Trim-3) > 1e-9 {
		t.Errorf("clip = %+v, want start 8 duration 2 trim 3", got)
	}
}

func TestCollectAudioMissingSource(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope.wav")
	el := &model.Element{ID: "sfx", Type: model.TypeAudio, Props: map[string]any{"src": missing}}

	g, err := Compile(root(&model.Layer{Elements: []*model.Element{el}}), Options{})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := CollectAudio(g); !merrors.IsKind(err, merrors.KindResource) {
		t.Errorf("CollectAudio() error = %v, want resource error", err)
	}

	el.Optional = true
	clips, err := CollectAudio(g)
	if err != nil {
		t.Fatalf("CollectAudio() optional error = %v", err)
	}
	if len(clips) != 0 {
		t.Errorf("optional missing clip kept: %+v", clips)
	}
}
