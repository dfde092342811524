package export

import (
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"

	"github.com/five82/montage/internal/ffmpeg"
	"github.com/five82/montage/internal/logging"
	"github.com/five82/montage/internal/render"
	"github.com/five82/montage/internal/scene"
	"github.com/five82/montage/internal/schedule"
	"github.com/five82/montage/internal/util"
)

// videoFile is the name of the encoded video stream inside the work dir.
const videoFile = "video.mkv"

func (e *Exporter) encodeParams(r *run) *ffmpeg.EncodeParams {
	return &ffmpeg.EncodeParams{
		Width:       r.width,
		Height:      r.height,
		FPS:         r.g.FPS,
		Frames:      r.g.Frames,
		Codec:       e.cfg.Codec,
		PixelFormat: e.cfg.PixelFormat,
		CRF:         e.cfg.CRF,
		Preset:      e.cfg.EncoderPreset,
		Bitrate:     e.cfg.Bitrate,
	}
}

// Plan returns the worker, chunk and window settings an export of g uses.
func (e *Exporter) Plan(g *scene.Graph) schedule.Config {
	workers := e.cfg.Workers
	if workers <= 0 {
		workers = util.LogicalCores()
	}
	window := e.cfg.Window
	if window <= 0 {
		window = schedule.CalculateWindow(workers, int(g.Viewport.W), int(g.Viewport.H), e.cfg.MemoryFraction)
	}
	return schedule.Config{
		Workers:   workers,
		ChunkSize: e.cfg.ChunkSize,
		Window:    window,
	}.Resolve(g.Frames)
}

func (e *Exporter) factory(r *run) schedule.Factory {
	return func() (schedule.FrameRenderer, error) {
		return render.NewRenderer(r.g, e.reg), nil
	}
}

// encodeVideo renders every frame and encodes the video stream.
func (e *Exporter) encodeVideo(ctx context.Context, r *run) (string, error) {
	out := r.workDir.Join(videoFile)
	if e.cfg.UsePipe {
		return out, e.encodePipe(ctx, r, out)
	}
	return out, e.encodeSequence(ctx, r, out)
}

// encodePipe streams raw frames into the encoder's stdin in order.
func (e *Exporter) encodePipe(ctx context.Context, r *run, out string) error {
	params := e.encodeParams(r)
	args := ffmpeg.BuildPipeArgs(params, out)

	e.step(StepRender)
	proc, err := ffmpeg.Start(ctx, e.cfg.FFmpegPath, args, ffmpeg.Options{
		Stdin:       true,
		Duration:    params.Duration(),
		TotalFrames: uint64(params.Frames),
	})
	if err != nil {
		return stepError(StepEncode, err)
	}
	logging.Global().Component("export").Debug("encoder started",
		"pid", proc.Pid(), "frames", params.Frames, "pipe", true)

	stdin := proc.Stdin()
	var writeFailed bool
	sink := func(index int, img *image.RGBA) error {
		if err := writeRGBA(stdin, img); err != nil {
			writeFailed = true
			return err
		}
		return nil
	}

	cfg := e.Plan(r.g)
	logging.Info("rendering", "frames", r.g.Frames, "workers", cfg.Workers, "window", cfg.Window, "mode", "pipe")

	if err := schedule.RenderAll(ctx, r.g.Frames, cfg, e.factory(r), sink, e.progress); err != nil {
		if writeFailed && ctx.Err() == nil {
			// The encoder went away; its exit status explains why.
			if werr := proc.Wait(); werr != nil {
				return stepError(StepEncode, werr)
			}
		}
		proc.Kill()
		return err
	}

	e.step(StepEncode)
	if err := proc.Wait(); err != nil {
		return stepError(StepEncode, err)
	}
	return nil
}

// encodeSequence writes every frame as a PNG file, then encodes the
// sequence. Workers write their own frames, so the ordered sink only
// counts them.
func (e *Exporter) encodeSequence(ctx context.Context, r *run, out string) error {
	dir := r.workDir.Join("frames")
	if err := util.EnsureDirectory(dir); err != nil {
		return stepError(StepRender, err)
	}

	// PNG frames of rendered graphics compress to roughly a quarter of raw.
	need := uint64(r.width) * uint64(r.height) * uint64(r.g.Frames)
	if !util.CheckDiskSpace(dir, need) {
		logging.Warn("work directory may run out of space", "dir", dir, "need", util.FormatBytes(need))
	}

	base := e.factory(r)
	factory := func() (schedule.FrameRenderer, error) {
		fr, err := base()
		if err != nil {
			return nil, err
		}
		return &pngWriter{
			FrameRenderer: fr,
			dir:           dir,
			enc:           png.Encoder{CompressionLevel: png.BestSpeed},
		}, nil
	}
	sink := func(int, *image.RGBA) error { return nil }

	cfg := e.Plan(r.g)
	logging.Info("rendering", "frames", r.g.Frames, "workers", cfg.Workers, "window", cfg.Window, "mode", "png")

	e.step(StepRender)
	if err := schedule.RenderAll(ctx, r.g.Frames, cfg, factory, sink, e.progress); err != nil {
		return err
	}

	e.step(StepEncode)
	params := e.encodeParams(r)
	if err := ffmpeg.Run(ctx, e.cfg.FFmpegPath, ffmpeg.BuildSequenceArgs(params, dir, out), ffmpeg.Options{
		Duration:    params.Duration(),
		TotalFrames: uint64(params.Frames),
	}); err != nil {
		return stepError(StepEncode, err)
	}
	return nil
}

// pngWriter saves each rendered frame into dir before handing it on.
type pngWriter struct {
	schedule.FrameRenderer
	dir string
	enc png.Encoder
}

func (w *pngWriter) Render(index int) (*image.RGBA, error) {
	img, err := w.FrameRenderer.Render(index)
	if err != nil {
		return nil, err
	}
	path := filepath.Join(w.dir, ffmpeg.FrameFileName(index))
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create frame file: %w", err)
	}
	if err := w.enc.Encode(f, img); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := f.Close(); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return img, nil
}

// writeRGBA writes the pixel rows of img without padding.
func writeRGBA(w io.Writer, img *image.RGBA) error {
	b := img.Bounds()
	rowLen := b.Dx() * 4
	if img.Stride == rowLen && b.Min == (image.Point{}) {
		_, err := w.Write(img.Pix[:rowLen*b.Dy()])
		return err
	}
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		if _, err := w.Write(img.Pix[off : off+rowLen]); err != nil {
			return err
		}
	}
	return nil
}
