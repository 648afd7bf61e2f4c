package status

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

type captureSink struct {
	mu      sync.Mutex
	ready   []string
	batches [][]string
}

func (c *captureSink) Ready(track string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ready = append(c.ready, track)
}

func (c *captureSink) Debug(lines []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.batches = append(c.batches, lines)
}

func (c *captureSink) debugBatches() [][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([][]string(nil), c.batches...)
}

func TestBatcher_CoalescesLinesIntoOneBatch(t *testing.T) {
	sink := &captureSink{}
	b := NewBatcher(sink, 20*time.Millisecond)
	b.SetOverlayVisible(true)

	b.Log("one")
	b.Log("two")
	b.Log("three")

	require.Eventually(t, func() bool {
		return len(sink.debugBatches()) == 1
	}, time.Second, 5*time.Millisecond)
	require.Equal(t, []string{"one", "two", "three"}, sink.debugBatches()[0])
}

func TestBatcher_DropsLinesWhileOverlayClosed(t *testing.T) {
	sink := &captureSink{}
	b := NewBatcher(sink, 10*time.Millisecond)

	b.Log("invisible")
	time.Sleep(30 * time.Millisecond)

	require.Empty(t, sink.debugBatches())
}

func TestBatcher_ClosingOverlayFlushesBuffer(t *testing.T) {
	sink := &captureSink{}
	b := NewBatcher(sink, time.Hour)
	b.SetOverlayVisible(true)

	b.Log("pending")
	b.SetOverlayVisible(false)

	require.Equal(t, [][]string{{"pending"}}, sink.debugBatches())
}

func TestBatcher_SeparateWindowsYieldSeparateBatches(t *testing.T) {
	sink := &captureSink{}
	b := NewBatcher(sink, 10*time.Millisecond)
	b.SetOverlayVisible(true)

	b.Log("first")
	require.Eventually(t, func() bool {
		return len(sink.debugBatches()) == 1
	}, time.Second, 2*time.Millisecond)

	b.Log("second")
	require.Eventually(t, func() bool {
		return len(sink.debugBatches()) == 2
	}, time.Second, 2*time.Millisecond)

	require.Equal(t, [][]string{{"first"}, {"second"}}, sink.debugBatches())
}

func TestBatcher_ReadyPassesThrough(t *testing.T) {
	sink := &captureSink{}
	b := NewBatcher(sink, time.Hour)

	b.Ready("Intro")

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Equal(t, []string{"Intro"}, sink.ready)
}
