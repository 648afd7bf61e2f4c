// Package frame gates instance-construction batches to rendering frame
// boundaries, so all cells of one placement attach within a single frame
// instead of thrashing layout cell by cell.
package frame

import (
	"context"
	"time"
)

// Sync runs a batch of work at the next frame boundary.
type Sync interface {
	// Do blocks until fn has run at a frame boundary, or ctx is done.
	Do(ctx context.Context, fn func()) error
}

// Immediate runs batches inline. Used by tests and headless runs.
type Immediate struct{}

// Do implements Sync.
func (Immediate) Do(_ context.Context, fn func()) error {
	fn()
	return nil
}

// Ticker batches all pending callers onto a fixed-rate tick. Everything
// queued between two ticks runs back to back on the boundary.
type Ticker struct {
	requests chan request
	stop     chan struct{}
}

type request struct {
	fn   func()
	done chan struct{}
}

// NewTicker starts a frame clock with the given interval. A zero or
// negative interval defaults to 60Hz.
func NewTicker(interval time.Duration) *Ticker {
	if interval <= 0 {
		interval = time.Second / 60
	}
	t := &Ticker{
		requests: make(chan request, 64),
		stop:     make(chan struct{}),
	}
	go t.loop(interval)
	return t
}

func (t *Ticker) loop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			t.drain()
		case <-t.stop:
			// Flush whatever is queued so no caller blocks forever.
			t.drain()
			return
		}
	}
}

// drain runs every batch queued so far, back to back.
func (t *Ticker) drain() {
	for {
		select {
		case req := <-t.requests:
			req.fn()
			close(req.done)
		default:
			return
		}
	}
}

// Do implements Sync.
func (t *Ticker) Do(ctx context.Context, fn func()) error {
	select {
	case <-t.stop:
		// The clock is gone; run inline rather than block.
		fn()
		return nil
	default:
	}

	req := request{fn: fn, done: make(chan struct{})}
	select {
	case t.requests <- req:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case <-req.done:
		return nil
	case <-t.stop:
		// Close raced with the enqueue; drain covers our own request.
		t.drain()
		<-req.done
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close stops the frame clock. Pending batches are flushed inline.
func (t *Ticker) Close() {
	close(t.stop)
}
