package worker

import (
	"context"
	"sync"
)

// Window bounds how far ahead of the ordered stream workers may render.
// A worker may start frame i only while i < next+size, where next is the
// first frame the coordinator has not yet committed. Only the coordinator
// calls Advance.
type Window struct {
	mu      sync.Mutex
	size    int
	next    int
	changed chan struct{} // closed and replaced on every advance
}

// NewWindow creates a window admitting size frames beyond the committed
// prefix. Size is at least 1.
func NewWindow(size int) *Window {
	if size <= 0 {
		size = 1
	}
	return &Window{
		size:    size,
		changed: make(chan struct{}),
	}
}

// Size returns the number of frames admitted ahead of the committed prefix.
func (w *Window) Size() int {
	return w.size
}

// Next returns the first uncommitted frame index.
func (w *Window) Next() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.next
}

// Wait blocks until frame i is inside the window or ctx is done.
func (w *Window) Wait(ctx context.Context, i int) error {
	for {
		w.mu.Lock()
		if i < w.next+w.size {
			w.mu.Unlock()
			return nil
		}
		ch := w.changed
		w.mu.Unlock()

		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Advance moves the committed prefix to next and wakes waiting workers.
// Moving backwards is ignored.
func (w *Window) Advance(next int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if next <= w.next {
		return
	}
	w.next = next
	close(w.changed)
	w.changed = make(chan struct{})
}
