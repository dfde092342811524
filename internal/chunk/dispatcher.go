package chunk

import (
	"sync"
)

// Dispatcher hands out chunks lowest index first. The frame the ordered
// stream waits for is always in the lowest pending chunk, so this order
// keeps the reorder buffer small.
type Dispatcher struct {
	mu        sync.Mutex
	ready     map[int]Chunk // chunks not yet started
	completed map[int]bool  // completed chunk indices
}

// NewDispatcher creates a new dispatcher with the given chunks.
func NewDispatcher(chunks []Chunk) *Dispatcher {
	ready := make(map[int]Chunk, len(chunks))
	for _, ch := range chunks {
		ready[ch.Idx] = ch
	}
	return &Dispatcher{
		ready:     ready,
		completed: make(map[int]bool),
	}
}

// Next returns the unstarted chunk with the lowest index.
// Returns false if no chunks remain.
func (d *Dispatcher) Next() (Chunk, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if len(d.ready) == 0 {
		return Chunk{}, false
	}
	return d.pickLowest(), true
}

// MarkComplete records a chunk as completed.
func (d *Dispatcher) MarkComplete(idx int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.completed[idx] = true
}

// Remaining returns the count of unstarted chunks.
func (d *Dispatcher) Remaining() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.ready)
}

// Completed returns the count of completed chunks.
func (d *Dispatcher) Completed() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.completed)
}

// pickLowest returns and removes the chunk with the lowest index.
func (d *Dispatcher) pickLowest() Chunk {
	lowestIdx := -1
	var lowestChunk Chunk

	for idx, ch := range d.ready {
		if lowestIdx < 0 || idx < lowestIdx {
			lowestIdx = idx
			lowestChunk = ch
		}
	}

	delete(d.ready, lowestIdx)
	return lowestChunk
}
