package engine

import "context"

// Batch is the handle returned for every scheduled operation. Callers that
// care (tests, the state machine, a cautious UI) can await it; fire-and-
// forget callers just drop it.
type Batch struct {
	done chan struct{}
	err  error
}

// Wait blocks until the batch settles or ctx is done.
func (b *Batch) Wait(ctx context.Context) error {
	select {
	case <-b.done:
		return b.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Done exposes the settle channel for select loops.
func (b *Batch) Done() <-chan struct{} {
	return b.done
}

// Err returns the batch error after Done is closed.
func (b *Batch) Err() error {
	return b.err
}

// completedBatch returns an already settled handle.
func completedBatch(err error) *Batch {
	b := &Batch{done: make(chan struct{}), err: err}
	close(b.done)
	return b
}

// opRequest is one queued lifecycle operation.
type opRequest struct {
	ctx context.Context
	fn  func(ctx context.Context) error
	b   *Batch
}

// enqueue schedules a lifecycle operation (activation, deactivation, set
// switch, refresh) on the single ops worker. The worker preserves
// submission order, so a pile-up of track-select events settles on exactly
// the last one. The queued context keeps the caller's logger but not its
// cancellation: an in-flight operation outlives the control message that
// started it.
func (e *Engine) enqueue(ctx context.Context, fn func(ctx context.Context) error) *Batch {
	b := &Batch{done: make(chan struct{})}
	req := opRequest{ctx: context.WithoutCancel(ctx), fn: fn, b: b}

	// The stopped flag is flipped under stopMu before stop closes, so a send
	// that wins the race here is guaranteed to land before the worker's final
	// drain. After shutdown operations run inline so the handle still settles.
	e.stopMu.Lock()
	if e.stopped {
		e.stopMu.Unlock()
		b.err = fn(req.ctx)
		close(b.done)
		return b
	}
	e.ops <- req
	e.stopMu.Unlock()
	return b
}

// opsLoop is the single worker draining lifecycle operations in order.
func (e *Engine) opsLoop() {
	for {
		select {
		case req := <-e.ops:
			req.b.err = req.fn(req.ctx)
			close(req.b.done)
		case <-e.stop:
			for {
				select {
				case req := <-e.ops:
					req.b.err = req.fn(req.ctx)
					close(req.b.done)
				default:
					return
				}
			}
		}
	}
}

// submit schedules fn asynchronously without ordering guarantees. Trigger
// batches use this: across batches only program submission order applies,
// and overlapping batches for the same placement may interleave.
func (e *Engine) submit(ctx context.Context, fn func(ctx context.Context) error) *Batch {
	b := &Batch{done: make(chan struct{})}
	detached := context.WithoutCancel(ctx)
	go func() {
		defer close(b.done)
		b.err = fn(detached)
	}()
	return b
}
