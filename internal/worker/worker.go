// Package worker provides the types shared by parallel frame workers and
// the coordinator that consumes their output.
package worker

import (
	"image"
)

// FrameResult is one rendered frame handed from a worker to the coordinator.
type FrameResult struct {
	Index int
	Image *image.RGBA
}

// Progress represents rendering progress information.
type Progress struct {
	ChunksComplete int
	ChunksTotal    int
	FramesComplete int
	FramesTotal    int
}

// Fraction returns the committed share of frames in [0, 1].
func (p Progress) Fraction() float64 {
	if p.FramesTotal == 0 {
		return 0
	}
	return float64(p.FramesComplete) / float64(p.FramesTotal)
}

// Percent returns the completion percentage.
func (p Progress) Percent() float64 {
	return p.Fraction() * 100
}

// Done reports whether every frame has been committed.
func (p Progress) Done() bool {
	return p.FramesTotal > 0 && p.FramesComplete >= p.FramesTotal
}
