// Package montage renders declarative video compositions.
//
// A composition is a tree of timed layers and elements. montage compiles
// it once, renders its frames in parallel and encodes them, together with
// a mix of the composition's audio clips, with ffmpeg.
//
// Basic usage:
//
//	r, err := montage.New(
//	    montage.WithPreset(montage.PresetQuality),
//	    montage.WithProgress(func(f float64) { fmt.Printf("\r%.0f%%", f*100) }),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	comp, err := montage.Load("intro.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	scene, err := r.Compile(comp)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := r.Export(ctx, scene, "out/intro.mp4")
package montage

import (
	"context"
	"fmt"
	"image"

	"github.com/five82/montage/internal/animate"
	"github.com/five82/montage/internal/config"
	"github.com/five82/montage/internal/discovery"
	"github.com/five82/montage/internal/elements"
	"github.com/five82/montage/internal/model"
	"github.com/five82/montage/internal/processing"
	"github.com/five82/montage/internal/render"
	"github.com/five82/montage/internal/reporter"
	"github.com/five82/montage/internal/scene"
	"github.com/five82/montage/internal/transition"
	"github.com/five82/montage/internal/util"
	"github.com/five82/montage/internal/worker"
)

// Composition tree types.
type (
	Composition = model.Composition
	Layer       = model.Layer
	Element     = model.Element
	Animation   = model.Animation
	Keyframe    = model.Keyframe
	Transition  = model.Transition
	Value       = model.Value
)

// Unit constructors for element geometry.
var (
	Px      = model.Px
	Percent = model.Percent
	VW      = model.VW
	VH      = model.VH
)

// Extension points.
type (
	State         = animate.State
	Surface       = render.Surface
	Drawer        = render.Drawer
	DrawerFactory = render.Factory
	Hook          = render.Hook
	HookFactory   = render.HookFactory
	FrameInfo     = render.FrameInfo
	Effect        = transition.Effect
	Reporter      = reporter.Reporter
)

// Re-export preset types
type Preset = config.Preset

const (
	PresetDraft    = config.PresetDraft
	PresetBalanced = config.PresetBalanced
	PresetQuality  = config.PresetQuality
)

// ParsePreset converts a preset string to a Preset value.
// Valid values are "draft", "balanced" and "quality" (case-insensitive).
func ParsePreset(s string) (Preset, error) {
	return config.ParsePreset(s)
}

// Renderer compiles and exports compositions.
type Renderer struct {
	config   *config.Config
	registry *render.Registry
	effects  *transition.Registry
	reporter reporter.Reporter
	progress func(float64)
	err      error
}

// Result contains the result of a single export.
type Result struct {
	OutputFile       string
	Frames           int
	Duration         float64
	Size             uint64
	AudioClips       int
	Validated        bool
	ValidationPassed bool
}

// FileResult is the outcome of one composition of a batch.
type FileResult = processing.RenderResult

// Option configures the renderer.
type Option func(*Renderer)

// New creates a Renderer with the built-in element types and transition
// effects.
func New(opts ...Option) (*Renderer, error) {
	r := &Renderer{
		config:   config.NewConfig(".", ""),
		registry: elements.DefaultRegistry(),
		effects:  transition.DefaultRegistry(),
		reporter: reporter.NullReporter{},
	}

	for _, opt := range opts {
		opt(r)
	}
	if r.err != nil {
		return nil, r.err
	}

	if err := r.config.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// WithPreset applies a quality preset.
func WithPreset(p Preset) Option {
	return func(r *Renderer) {
		r.config.ApplyPreset(p)
	}
}

// WithWorkers sets the number of parallel renderers. Zero picks one per
// logical CPU.
func WithWorkers(n int) Option {
	return func(r *Renderer) {
		r.config.Workers = n
	}
}

// WithBitrate sets a target video bitrate such as "8M", overriding CRF.
func WithBitrate(b string) Option {
	return func(r *Renderer) {
		r.config.Bitrate = b
	}
}

// WithCRF sets the constant rate factor.
func WithCRF(crf uint8) Option {
	return func(r *Renderer) {
		r.config.CRF = crf
	}
}

// WithCodec sets the ffmpeg video encoder.
func WithCodec(codec string) Option {
	return func(r *Renderer) {
		r.config.Codec = codec
	}
}

// WithPixelFormat sets the output pixel format.
func WithPixelFormat(pixFmt string) Option {
	return func(r *Renderer) {
		r.config.PixelFormat = pixFmt
	}
}

// WithAudioBitrate sets the bitrate of the mixed audio track.
func WithAudioBitrate(b string) Option {
	return func(r *Renderer) {
		r.config.AudioBitrate = b
	}
}

// WithChunkSize sets how many consecutive frames a worker renders at once.
func WithChunkSize(n int) Option {
	return func(r *Renderer) {
		r.config.ChunkSize = n
	}
}

// WithWindow bounds how many frames may be rendered ahead of the encoder.
func WithWindow(n int) Option {
	return func(r *Renderer) {
		r.config.Window = n
	}
}

// WithPNGSequence writes frames to a temporary PNG sequence instead of
// piping them into the encoder.
func WithPNGSequence() Option {
	return func(r *Renderer) {
		r.config.UsePipe = false
	}
}

// WithTempDir sets where work directories are created.
func WithTempDir(dir string) Option {
	return func(r *Renderer) {
		r.config.TempDir = dir
	}
}

// WithFFmpeg sets the ffmpeg and ffprobe executables. Empty values keep
// the defaults.
func WithFFmpeg(ffmpegPath, ffprobePath string) Option {
	return func(r *Renderer) {
		if ffmpegPath != "" {
			r.config.FFmpegPath = ffmpegPath
		}
		if ffprobePath != "" {
			r.config.FFprobePath = ffprobePath
		}
	}
}

// WithoutValidation skips probing the finished file.
func WithoutValidation() Option {
	return func(r *Renderer) {
		r.config.ValidateOutput = false
	}
}

// WithProgress sets a callback receiving the committed fraction of frames
// after each frame.
func WithProgress(fn func(fraction float64)) Option {
	return func(r *Renderer) {
		r.progress = fn
	}
}

// WithReporter sends detailed progress events to rep.
func WithReporter(rep Reporter) Option {
	return func(r *Renderer) {
		if rep != nil {
			r.reporter = rep
		}
	}
}

// WithDrawer registers a drawer for an element type, replacing any
// built-in drawer for it.
func WithDrawer(typ string, f DrawerFactory) Option {
	return func(r *Renderer) {
		r.registry.RegisterDrawer(typ, f)
	}
}

// WithHook registers a named element hook.
func WithHook(name string, f HookFactory) Option {
	return func(r *Renderer) {
		r.registry.RegisterHook(name, f)
	}
}

// WithEffect registers a transition effect.
func WithEffect(name string, e Effect) Option {
	return func(r *Renderer) {
		if err := r.effects.Register(name, e); err != nil && r.err == nil {
			r.err = err
		}
	}
}

// Scene is a compiled composition, ready to render. It is immutable and
// may be rendered and exported concurrently.
type Scene struct {
	graph *scene.Graph
}

// Frames returns the number of frames of the scene.
func (s *Scene) Frames() int { return s.graph.Frames }

// FPS returns the frame rate.
func (s *Scene) FPS() int { return s.graph.FPS }

// Duration returns the duration in seconds.
func (s *Scene) Duration() float64 { return s.graph.Duration }

// Size returns the frame size in pixels.
func (s *Scene) Size() (width, height int) {
	return int(s.graph.Viewport.W), int(s.graph.Viewport.H)
}

// Load reads a composition file.
func Load(path string) (*Composition, error) {
	return model.Load(path)
}

// FindCompositions finds composition files in a directory.
func FindCompositions(dir string) ([]string, error) {
	return discovery.FindCompositionFiles(dir)
}

// Compile validates comp and freezes it into a Scene.
func (r *Renderer) Compile(comp *Composition) (*Scene, error) {
	g, err := scene.Compile(comp, scene.Options{
		Effects:   r.effects,
		KnownType: r.registry.HasDrawer,
		KnownHook: r.registry.HasHook,
	})
	if err != nil {
		return nil, err
	}
	return &Scene{graph: g}, nil
}

// RenderFrame renders the scene at global time t.
func (r *Renderer) RenderFrame(s *Scene, t float64) (img *image.RGBA, err error) {
	fr := render.NewRenderer(s.graph, r.registry)
	defer func() {
		if cerr := fr.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return fr.RenderFrame(t)
}

// Export renders the scene and encodes it to output. The output file only
// appears once the export has succeeded.
func (r *Renderer) Export(ctx context.Context, s *Scene, output string) (*Result, error) {
	res, err := processing.ExportGraph(ctx, r.config, s.graph, output, r.processingOptions())
	if err != nil {
		return nil, err
	}

	result := &Result{
		OutputFile: res.Output,
		Frames:     res.Frames,
		Duration:   res.Duration,
		Size:       res.Size,
		AudioClips: res.AudioClips,
	}
	if res.Validation != nil {
		result.Validated = true
		result.ValidationPassed = res.Validation.IsValid()
	}
	return result, nil
}

// RenderFile loads, compiles and exports a composition file.
func (r *Renderer) RenderFile(ctx context.Context, input, output string) (*Result, error) {
	comp, err := Load(input)
	if err != nil {
		return nil, err
	}
	s, err := r.Compile(comp)
	if err != nil {
		return nil, err
	}
	return r.Export(ctx, s, output)
}

// RenderBatch renders every composition file into outputDir, naming each
// output after its input. Failed compositions are reported and skipped.
func (r *Renderer) RenderBatch(ctx context.Context, inputs []string, outputDir string) ([]FileResult, error) {
	cfg := *r.config
	cfg.OutputDir = outputDir

	if err := util.EnsureDirectory(outputDir); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	return processing.ProcessCompositions(ctx, &cfg, inputs, r.processingOptions())
}

// Effects returns the names of the registered transition effects.
func (r *Renderer) Effects() []string {
	return r.effects.Names()
}

// ElementTypes returns the registered element types.
func (r *Renderer) ElementTypes() []string {
	return r.registry.Types()
}

func (r *Renderer) processingOptions() processing.Options {
	opts := processing.Options{
		Registry: r.registry,
		Effects:  r.effects,
		Reporter: r.reporter,
	}
	if r.progress != nil {
		fn := r.progress
		opts.Progress = func(p worker.Progress) { fn(p.Fraction()) }
	}
	return opts
}
