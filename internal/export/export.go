// Package export renders a compiled scene graph and encodes it, with its
// mixed audio, into a video file.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/five82/montage/internal/config"
	merrors "github.com/five82/montage/internal/errors"
	"github.com/five82/montage/internal/ffmpeg"
	"github.com/five82/montage/internal/logging"
	"github.com/five82/montage/internal/render"
	"github.com/five82/montage/internal/scene"
	"github.com/five82/montage/internal/schedule"
	"github.com/five82/montage/internal/util"
	"github.com/five82/montage/internal/validation"
)

// Export steps, used in errors and stage callbacks.
const (
	StepPrepare  = "prepare"
	StepRender   = "render"
	StepEncode   = "encode"
	StepAudio    = "audio"
	StepMux      = "mux"
	StepValidate = "validate"
)

// tempPrefix names the work directories of export runs.
const tempPrefix = "montage"

// Work directories older than this were left behind by a killed run.
const staleWorkDirAge = 24 * time.Hour

// Result describes a finished export.
type Result struct {
	RunID      string
	Output     string
	Frames     int
	Duration   float64
	Width      int
	Height     int
	FPS        int
	AudioClips int
	Size       uint64
	RenderTime time.Duration
	TotalTime  time.Duration
	Validation *validation.Result // nil when validation is disabled
}

// Options configures an Exporter.
type Options struct {
	Config   *config.Config
	Registry *render.Registry

	// Progress is called after each frame is committed to the encoder.
	Progress schedule.ProgressCallback
	// OnStep is called when an export step starts. Audio mixing runs
	// alongside rendering, so it may be called concurrently.
	OnStep func(step string)
	// OnAudio is called once the audio clips are known.
	OnAudio func(clips []scene.AudioClip)
}

// Exporter turns compiled graphs into video files.
type Exporter struct {
	cfg      *config.Config
	reg      *render.Registry
	progress schedule.ProgressCallback
	onStep   func(string)
	onAudio  func([]scene.AudioClip)
}

// New returns an Exporter. A nil Config uses defaults.
func New(opts Options) *Exporter {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.NewConfig("", "")
	}
	return &Exporter{
		cfg:      cfg,
		reg:      opts.Registry,
		progress: opts.Progress,
		onStep:   opts.OnStep,
		onAudio:  opts.OnAudio,
	}
}

func (e *Exporter) step(name string) {
	logging.Debug("export step", "step", name)
	if e.onStep != nil {
		e.onStep(name)
	}
}

// run holds the state of one export.
type run struct {
	id      string
	g       *scene.Graph
	output  string
	workDir *util.TempDir
	clips   []scene.AudioClip

	width, height int
}

// Export renders g and writes the encoded result to output. The file at
// output only appears once the export has fully succeeded; on failure or
// cancellation every temporary file is removed and no encoder process is
// left running.
func (e *Exporter) Export(ctx context.Context, g *scene.Graph, output string) (res *Result, err error) {
	start := time.Now()

	output, err = filepath.Abs(output)
	if err != nil {
		return nil, merrors.NewExportError("invalid output path", err)
	}

	r := &run{
		id:     util.NewRunID(),
		g:      g,
		output: output,
		width:  int(g.Viewport.W),
		height: int(g.Viewport.H),
	}
	logging.Info("export started", "run", r.id, "output", output,
		"frames", g.Frames, "fps", g.FPS, "size", fmt.Sprintf("%dx%d", r.width, r.height))

	defer func() {
		if err != nil {
			err = classify(ctx, err)
			logging.Error("export failed", "run", r.id, "error", err)
		}
	}()

	e.step(StepPrepare)
	if err := e.prepare(r); err != nil {
		return nil, err
	}
	defer func() {
		if cerr := r.workDir.Cleanup(); cerr != nil {
			logging.Warn("failed to remove work dir", "dir", r.workDir.Path(), "error", cerr)
		}
	}()

	var (
		video, audio string
		renderTime   time.Duration
	)

	eg, gctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		renderStart := time.Now()
		v, err := e.encodeVideo(gctx, r)
		renderTime = time.Since(renderStart)
		video = v
		return err
	})
	if len(r.clips) > 0 {
		eg.Go(func() error {
			a, err := e.mixAudio(gctx, r)
			audio = a
			return err
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	e.step(StepMux)
	if err := e.mux(ctx, r, video, audio); err != nil {
		return nil, err
	}

	res = &Result{
		RunID:      r.id,
		Output:     output,
		Frames:     g.Frames,
		Duration:   g.Duration,
		Width:      r.width,
		Height:     r.height,
		FPS:        g.FPS,
		AudioClips: len(r.clips),
		RenderTime: renderTime,
	}
	if size, err := util.GetFileSize(output); err == nil {
		res.Size = size
	}

	if e.cfg.ValidateOutput {
		e.step(StepValidate)
		res.Validation = e.validate(ctx, r)
	}

	res.TotalTime = time.Since(start)
	logging.Info("export complete", "run", r.id, "output", output,
		"size", util.FormatBytes(res.Size), "elapsed", res.TotalTime.Round(time.Millisecond))
	return res, nil
}

// prepare collects audio and creates the work directory.
func (e *Exporter) prepare(r *run) error {
	if r.g.Frames <= 0 {
		return merrors.NewConfigError("composition has no frames")
	}

	clips, err := scene.CollectAudio(r.g)
	if err != nil {
		return err
	}
	r.clips = clips
	if e.onAudio != nil {
		e.onAudio(clips)
	}

	outDir := filepath.Dir(r.output)
	if err := util.EnsureDirectory(outDir); err != nil {
		return merrors.NewExportError("cannot create output directory", err)
	}
	if err := util.EnsureDirectoryWritable(outDir); err != nil {
		return merrors.NewExportError("output directory is not usable", err)
	}

	base := e.cfg.TempDir
	if base == "" {
		base = outDir
	}
	if n, err := util.CleanupStaleTempDirs(base, tempPrefix, staleWorkDirAge); err == nil && n > 0 {
		logging.Info("removed stale work directories", "dir", base, "count", n)
	}
	wd, err := util.CreateTempDir(base, tempPrefix)
	if err != nil {
		return merrors.NewExportError("cannot create work directory", err)
	}
	r.workDir = wd
	return nil
}

// mux combines the streams into a partial file next to the output and
// renames it into place.
func (e *Exporter) mux(ctx context.Context, r *run, video, audio string) error {
	partial := util.PartialOutputPath(r.output)
	format := ffmpeg.FormatForExt(filepath.Ext(r.output))

	args := ffmpeg.BuildMuxArgs(video, audio, partial, format)
	if err := ffmpeg.Run(ctx, e.cfg.FFmpegPath, args, ffmpeg.Options{}); err != nil {
		_ = os.Remove(partial)
		return stepError(StepMux, err)
	}
	if err := ctx.Err(); err != nil {
		_ = os.Remove(partial)
		return err
	}
	if err := os.Rename(partial, r.output); err != nil {
		_ = os.Remove(partial)
		return merrors.NewExportError("failed to move output into place", err)
	}
	return nil
}

// validate probes the finished file. Problems are logged, not returned.
func (e *Exporter) validate(ctx context.Context, r *run) *validation.Result {
	duration := r.g.Duration
	fps := float64(r.g.FPS)
	hasAudio := len(r.clips) > 0
	res, err := validation.ValidateOutputVideo(ctx, e.cfg.FFprobePath, r.output, validation.Options{
		ExpectedCodec:      e.cfg.Codec,
		ExpectedDimensions: expectedSize(r.width, r.height, e.cfg.PixelFormat),
		ExpectedDuration:   &duration,
		ExpectedFPS:        &fps,
		ExpectedAudio:      &hasAudio,
	})
	if err != nil {
		logging.Warn("output validation failed to run", "output", r.output, "error", err)
		return nil
	}
	for _, f := range res.GetFailures() {
		logging.Warn("output validation", "output", r.output, "failure", f)
	}
	return res
}

// expectedSize returns the encoded frame size, which is rounded up to even
// dimensions for subsampled pixel formats.
func expectedSize(w, h int, pixFmt string) *[2]uint32 {
	if !ffmpeg.NewVideoFilterChain().AddEvenDimensions(w, h, pixFmt).IsEmpty() {
		w += w % 2
		h += h % 2
	}
	return &[2]uint32{uint32(w), uint32(h)}
}

// stepError wraps a failure of an external step.
func stepError(step string, err error) error {
	var core *merrors.CoreError
	if errors.As(err, &core) && core.Kind != merrors.KindCommand && core.Kind != merrors.KindIO {
		return err
	}
	return merrors.NewExportError(step+" failed", err)
}

// classify turns any failure observed after ctx was cancelled into a
// cancellation error.
func classify(ctx context.Context, err error) error {
	if ctx.Err() == nil && !errors.Is(err, context.Canceled) {
		return err
	}
	if merrors.IsCancelled(err) {
		return err
	}
	return merrors.NewCancelledError().WithStage(merrors.StageOf(err))
}
