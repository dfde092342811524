package processing

import (
	"time"

	"github.com/five82/montage/internal/reporter"
	"github.com/five82/montage/internal/worker"
)

// progressTracker turns scheduler progress into reporter snapshots with a
// render rate and ETA.
type progressTracker struct {
	start time.Time
	now   func() time.Time
}

func newProgressTracker() *progressTracker {
	return &progressTracker{start: time.Now(), now: time.Now}
}

func (p *progressTracker) snapshot(progress worker.Progress) reporter.ProgressSnapshot {
	elapsed := p.now().Sub(p.start)

	var fps float32
	var eta time.Duration
	if elapsed > 0 && progress.FramesComplete > 0 {
		rate := float64(progress.FramesComplete) / elapsed.Seconds()
		fps = float32(rate)
		remaining := progress.FramesTotal - progress.FramesComplete
		eta = time.Duration(float64(remaining) / rate * float64(time.Second))
	}

	return reporter.ProgressSnapshot{
		CurrentFrame:   progress.FramesComplete,
		TotalFrames:    progress.FramesTotal,
		Percent:        float32(progress.Percent()),
		FPS:            fps,
		ETA:            eta,
		ChunksComplete: progress.ChunksComplete,
		ChunksTotal:    progress.ChunksTotal,
	}
}

func (p *progressTracker) summary(frames int) reporter.RenderSummary {
	elapsed := p.now().Sub(p.start)
	var fps float32
	if elapsed > 0 {
		fps = float32(float64(frames) / elapsed.Seconds())
	}
	return reporter.RenderSummary{Frames: frames, Elapsed: elapsed, FPS: fps}
}
