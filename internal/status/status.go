// Package status defines the messages the core produces for the UI
// collaborator and the batcher that coalesces debug output.
package status

import (
	"sync"
	"time"
)

// Sink receives status messages. Transports (websocket hub, test doubles)
// implement it; the core never knows which.
type Sink interface {
	// Ready signals that a track activation has fully completed.
	Ready(track string)
	// Debug delivers a batch of debug log lines.
	Debug(lines []string)
}

// Nop discards all status messages.
type Nop struct{}

// Ready implements Sink.
func (Nop) Ready(string) {}

// Debug implements Sink.
func (Nop) Debug([]string) {}

// Batcher coalesces debug lines on a short timer while the debug overlay is
// open, flushing them to the sink as one batch. While the overlay is closed
// lines are dropped: slog still records them, only the UI feed pauses.
type Batcher struct {
	sink     Sink
	interval time.Duration

	mu    sync.Mutex
	open  bool
	buf   []string
	timer *time.Timer
}

// DefaultInterval is the coalescing window for debug batches.
const DefaultInterval = 120 * time.Millisecond

// NewBatcher creates a batcher flushing to sink. A zero interval uses
// DefaultInterval.
func NewBatcher(sink Sink, interval time.Duration) *Batcher {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Batcher{sink: sink, interval: interval}
}

// SetOverlayVisible gates the feed. Closing the overlay flushes anything
// still buffered.
func (b *Batcher) SetOverlayVisible(open bool) {
	b.mu.Lock()
	b.open = open
	if !open {
		b.flushLocked()
	}
	b.mu.Unlock()
}

// Log buffers one debug line, arming the flush timer if idle.
func (b *Batcher) Log(line string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.open {
		return
	}
	b.buf = append(b.buf, line)
	if b.timer == nil {
		b.timer = time.AfterFunc(b.interval, b.flush)
	}
}

func (b *Batcher) flush() {
	b.mu.Lock()
	b.flushLocked()
	b.mu.Unlock()
}

// flushLocked sends the buffered batch. Caller holds b.mu.
func (b *Batcher) flushLocked() {
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	if len(b.buf) == 0 {
		return
	}
	lines := b.buf
	b.buf = nil
	b.sink.Debug(lines)
}

// Ready passes the ready-signal straight through, making the batcher usable
// wherever a Sink is expected.
func (b *Batcher) Ready(track string) {
	b.sink.Ready(track)
}

// Debug forwards an already batched set of lines unchanged.
func (b *Batcher) Debug(lines []string) {
	b.sink.Debug(lines)
}
