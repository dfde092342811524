package processing

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/five82/montage/internal/chunk"
	"github.com/five82/montage/internal/config"
	"github.com/five82/montage/internal/elements"
	"github.com/five82/montage/internal/export"
	"github.com/five82/montage/internal/model"
	"github.com/five82/montage/internal/render"
	"github.com/five82/montage/internal/reporter"
	"github.com/five82/montage/internal/scene"
	"github.com/five82/montage/internal/transition"
	"github.com/five82/montage/internal/util"
	"github.com/five82/montage/internal/worker"
)

// Options holds the collaborators shared by every composition of a batch.
type Options struct {
	// Registry supplies element drawers and hooks. Nil means the built-ins.
	Registry *render.Registry
	// Effects supplies transition effects. Nil means the built-ins.
	Effects *transition.Registry
	// Reporter receives progress events. Nil discards them.
	Reporter reporter.Reporter
	// TargetOverride names the output file of a single-file batch.
	TargetOverride string
	// Progress, when set, is called after each committed frame.
	Progress func(worker.Progress)
}

func (o Options) withDefaults() Options {
	if o.Registry == nil {
		o.Registry = elements.DefaultRegistry()
	}
	if o.Effects == nil {
		o.Effects = transition.DefaultRegistry()
	}
	if o.Reporter == nil {
		o.Reporter = reporter.NullReporter{}
	}
	return o
}

// Compile loads and compiles a composition file against the registries
// in opts.
func Compile(path string, opts Options) (*scene.Graph, error) {
	opts = opts.withDefaults()
	comp, err := model.Load(path)
	if err != nil {
		return nil, err
	}
	return scene.Compile(comp, scene.Options{
		Effects:   opts.Effects,
		KnownType: opts.Registry.HasDrawer,
		KnownHook: opts.Registry.HasHook,
	})
}

// RenderFile compiles the composition at input and exports it to output,
// reporting every stage to opts.Reporter.
func RenderFile(ctx context.Context, cfg *config.Config, input, output string, opts Options) (*export.Result, error) {
	opts = opts.withDefaults()
	rep := opts.Reporter

	rep.StageProgress(reporter.StageProgress{Stage: "Compile", Message: fmt.Sprintf("Compiling %s", filepath.Base(input))})
	g, err := Compile(input, opts)
	if err != nil {
		return nil, err
	}

	rep.Initialization(reporter.InitializationSummary{
		InputFile:  filepath.Base(input),
		OutputFile: filepath.Base(output),
		Duration:   util.FormatDuration(g.Duration),
		Resolution: fmt.Sprintf("%dx%d", int(g.Viewport.W), int(g.Viewport.H)),
		FPS:        g.FPS,
		Frames:     g.Frames,
		Layers:     len(g.Layers),
		Elements:   len(g.Elements),
	})

	return ExportGraph(ctx, cfg, g, output, opts)
}

// ExportGraph exports an already compiled graph, reporting progress.
func ExportGraph(ctx context.Context, cfg *config.Config, g *scene.Graph, output string, opts Options) (*export.Result, error) {
	opts = opts.withDefaults()
	rep := opts.Reporter
	tracker := newProgressTracker()

	var ex *export.Exporter
	ex = export.New(export.Options{
		Config:   cfg,
		Registry: opts.Registry,
		Progress: func(p worker.Progress) {
			if opts.Progress != nil {
				opts.Progress(p)
			}
			rep.RenderProgress(tracker.snapshot(p))
			if p.Done() {
				rep.RenderComplete(tracker.summary(p.FramesTotal))
			}
		},
		OnStep: func(step string) {
			if step == export.StepRender {
				tracker = newProgressTracker()
				plan := ex.Plan(g)
				rep.RenderStarted(reporter.RenderStartInfo{
					TotalFrames: g.Frames,
					Chunks:      len(chunk.Split(g.Frames, plan.ChunkSize)),
					Workers:     plan.Workers,
					Window:      plan.Window,
					Mode:        renderMode(cfg),
				})
				return
			}
			if msg, ok := stepMessages[step]; ok {
				rep.StageProgress(reporter.StageProgress{Stage: "Export", Message: msg})
			}
		},
		OnAudio: func(clips []scene.AudioClip) {
			rep.AudioPrepared(audioSummary(clips))
		},
	})

	res, err := ex.Export(ctx, g, output)
	if err != nil {
		return nil, err
	}

	if res.Validation != nil {
		rep.ValidationComplete(validationSummary(res))
	}
	rep.ExportComplete(reporter.ExportOutcome{
		OutputFile: res.Output,
		Size:       res.Size,
		Frames:     res.Frames,
		Duration:   res.Duration,
		Resolution: fmt.Sprintf("%dx%d", res.Width, res.Height),
		AudioClips: res.AudioClips,
		RenderTime: res.RenderTime,
		TotalTime:  res.TotalTime,
	})
	return res, nil
}

var stepMessages = map[string]string{
	export.StepPrepare:  "Preparing work directory",
	export.StepAudio:    "Mixing audio",
	export.StepEncode:   "Finishing video encode",
	export.StepMux:      "Muxing final output",
	export.StepValidate: "Validating output",
}

func renderMode(cfg *config.Config) string {
	if cfg != nil && !cfg.UsePipe {
		return "png sequence"
	}
	return "pipe"
}

func audioSummary(clips []scene.AudioClip) reporter.AudioSummary {
	summary := reporter.AudioSummary{Clips: make([]reporter.AudioClipInfo, 0, len(clips))}
	for _, c := range clips {
		summary.Clips = append(summary.Clips, reporter.AudioClipInfo{
			ElementID: c.ElementID,
			Source:    c.Src,
			Start:     c.Start,
			Duration:  c.Duration,
		})
	}
	return summary
}

func validationSummary(res *export.Result) reporter.ValidationSummary {
	summary := reporter.ValidationSummary{Passed: res.Validation.IsValid()}
	for _, step := range res.Validation.GetValidationSteps() {
		summary.Steps = append(summary.Steps, reporter.ValidationStep{
			Name:    step.Name,
			Passed:  step.Passed,
			Details: step.Details,
		})
	}
	return summary
}
