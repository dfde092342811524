package schedule

import "github.com/five82/montage/internal/util"

// CalculateWindow determines how many frames may be rendered ahead of the
// ordered stream. The base is workers*2, capped so the buffered frames use
// at most memFraction of available memory.
//
// Every buffered frame costs one RGBA image (width*height*4 bytes) plus the
// offscreen surfaces a renderer keeps, roughly two more frames.
//
// Returns at least workers, so every worker can hold one frame.
func CalculateWindow(workers, width, height int, memFraction float64) int {
	workers = max(workers, 1)
	window := workers * 2

	memWindow := util.MaxPermitsForMemory(FrameMemoryBytes(width, height), memFraction)
	if memWindow < window {
		window = memWindow
	}

	return max(window, workers)
}

// FrameMemoryBytes returns the estimated memory per in-flight frame.
// Useful for verbose logging.
func FrameMemoryBytes(width, height int) uint64 {
	frameSize := uint64(max(width, 0)) * uint64(max(height, 0)) * 4
	return frameSize * 3
}
