// Package chunk splits a frame range into contiguous chunks and hands
// them out to workers.
package chunk

// DefaultSize is the number of frames per chunk when none is configured.
const DefaultSize = 24

// Chunk is a contiguous run of frames [Start, End).
type Chunk struct {
	Idx   int
	Start int
	End   int
}

// Frames returns the number of frames in the chunk.
func (c Chunk) Frames() int {
	return c.End - c.Start
}

// Split divides [0, frames) into chunks of at most size frames.
func Split(frames, size int) []Chunk {
	if frames <= 0 {
		return nil
	}
	if size <= 0 {
		size = DefaultSize
	}
	chunks := make([]Chunk, 0, (frames+size-1)/size)
	for start := 0; start < frames; start += size {
		chunks = append(chunks, Chunk{
			Idx:   len(chunks),
			Start: start,
			End:   min(start+size, frames),
		})
	}
	return chunks
}

// SizeFor picks a chunk size giving each worker several chunks, so the
// lowest pending frames are never stuck behind one long chunk.
func SizeFor(frames, workers int) int {
	if workers <= 0 {
		workers = 1
	}
	size := frames / (workers * 4)
	return max(min(size, DefaultSize), 1)
}
