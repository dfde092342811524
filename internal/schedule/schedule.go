// Package schedule renders the frames of a composition in parallel and
// delivers them to a sink in strict index order.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/five82/montage/internal/chunk"
	merrors "github.com/five82/montage/internal/errors"
	"github.com/five82/montage/internal/logging"
	"github.com/five82/montage/internal/worker"
)

// FrameRenderer renders frames by index. Each worker owns one instance.
type FrameRenderer interface {
	// BeginChunk is called before the first frame of every chunk.
	BeginChunk()
	Render(index int) (*image.RGBA, error)
	Close() error
}

// Factory creates a fresh FrameRenderer for one worker.
type Factory func() (FrameRenderer, error)

// Sink receives frames in ascending index order, exactly once each.
type Sink func(index int, img *image.RGBA) error

// ProgressCallback is called after each frame is committed to the sink.
type ProgressCallback func(progress worker.Progress)

// Config contains configuration for the parallel render pipeline.
type Config struct {
	Workers   int // Number of parallel renderers
	ChunkSize int // Frames per chunk, zero picks one from the frame count
	Window    int // Frames admitted ahead of the committed prefix, zero means Workers*2
}

// Resolve fills unset fields with the defaults for a render of frames frames.
func (c Config) Resolve(frames int) Config {
	c.Workers = max(c.Workers, 1)
	if c.ChunkSize <= 0 {
		c.ChunkSize = chunk.SizeFor(frames, c.Workers)
	}
	if c.Window <= 0 {
		c.Window = c.Workers * 2
	}
	return c
}

// RenderAll renders frames [0, frames) with cfg.Workers workers and feeds
// them to sink in order. The first failure cancels the remaining work and
// is returned; frames already delivered to the sink stay delivered.
//
// A cancelled ctx yields a KindCancelled error.
func RenderAll(ctx context.Context, frames int, cfg Config, factory Factory, sink Sink, progressCb ProgressCallback) error {
	if frames <= 0 {
		return nil
	}
	cfg = cfg.Resolve(frames)

	chunks := chunk.Split(frames, cfg.ChunkSize)
	dispatcher := chunk.NewDispatcher(chunks)
	window := worker.NewWindow(cfg.Window)
	results := make(chan worker.FrameResult, cfg.Window)

	log := logging.Global().Component("schedule")
	log.Debug("scheduling frames",
		"frames", frames, "chunks", len(chunks), "workers", cfg.Workers, "window", cfg.Window)

	g, gctx := errgroup.WithContext(ctx)

	for id := range cfg.Workers {
		g.Go(func() error {
			return renderWorker(gctx, id, factory, dispatcher, window, results)
		})
	}

	g.Go(func() error {
		return collect(gctx, frames, len(chunks), dispatcher, window, results, sink, progressCb)
	})

	err := g.Wait()
	if err != nil && ctx.Err() != nil {
		return merrors.NewCancelledError()
	}
	return err
}

// renderWorker pulls chunks until none remain. Frames of a chunk are
// rendered in order, each only once the window admits it.
func renderWorker(
	ctx context.Context,
	id int,
	factory Factory,
	dispatcher *chunk.Dispatcher,
	window *worker.Window,
	results chan<- worker.FrameResult,
) (err error) {
	r, err := factory()
	if err != nil {
		return fmt.Errorf("failed to create renderer for worker %d: %w", id, err)
	}
	defer func() {
		if cerr := r.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("failed to release renderer for worker %d: %w", id, cerr)
		}
	}()

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		ch, ok := dispatcher.Next()
		if !ok {
			return nil
		}

		r.BeginChunk()
		for i := ch.Start; i < ch.End; i++ {
			if err := window.Wait(ctx, i); err != nil {
				return err
			}
			img, err := r.Render(i)
			if err != nil {
				return err
			}
			select {
			case results <- worker.FrameResult{Index: i, Image: img}:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		dispatcher.MarkComplete(ch.Idx)
	}
}

// collect is the single writer of the committed prefix. It buffers out of
// order frames and flushes the contiguous run starting at next.
func collect(
	ctx context.Context,
	frames, chunksTotal int,
	dispatcher *chunk.Dispatcher,
	window *worker.Window,
	results <-chan worker.FrameResult,
	sink Sink,
	progressCb ProgressCallback,
) error {
	pending := make(map[int]*image.RGBA, window.Size())
	next := 0

	for next < frames {
		select {
		case res := <-results:
			pending[res.Index] = res.Image
		case <-ctx.Done():
			return ctx.Err()
		}

		for {
			img, ok := pending[next]
			if !ok {
				break
			}
			delete(pending, next)
			if err := sink(next, img); err != nil {
				return fmt.Errorf("failed to commit frame %d: %w", next, err)
			}
			next++
			if progressCb != nil {
				progressCb(worker.Progress{
					ChunksComplete: dispatcher.Completed(),
					ChunksTotal:    chunksTotal,
					FramesComplete: next,
					FramesTotal:    frames,
				})
			}
		}
		window.Advance(next)
	}
	return nil
}

// Collector is a Sink that keeps every frame in memory. It is meant for
// previews and tests of short compositions.
type Collector struct {
	mu     sync.Mutex
	frames []*image.RGBA
}

// Sink returns the collecting sink.
func (c *Collector) Sink() Sink {
	return func(index int, img *image.RGBA) error {
		c.mu.Lock()
		defer c.mu.Unlock()
		if index != len(c.frames) {
			return errors.New("frame delivered out of order")
		}
		c.frames = append(c.frames, img)
		return nil
	}
}

// Frames returns the collected frames.
func (c *Collector) Frames() []*image.RGBA {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.frames
}
