package frame

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestImmediate_RunsInline(t *testing.T) {
	ran := false
	require.NoError(t, Immediate{}.Do(context.Background(), func() { ran = true }))
	require.True(t, ran)
}

func TestTicker_BatchesCallersOntoOneBoundary(t *testing.T) {
	ticker := NewTicker(10 * time.Millisecond)
	defer ticker.Close()

	var mu sync.Mutex
	var order []int
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = ticker.Do(context.Background(), func() {
				mu.Lock()
				order = append(order, i)
				mu.Unlock()
			})
		}()
	}
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, order, 4, "every queued batch runs")
}

func TestTicker_DoRespectsContext(t *testing.T) {
	ticker := NewTicker(time.Hour)
	defer ticker.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := ticker.Do(ctx, func() {})
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestTicker_CloseFlushesPendingWork(t *testing.T) {
	ticker := NewTicker(time.Hour)

	done := make(chan struct{})
	go func() {
		_ = ticker.Do(context.Background(), func() {})
		close(done)
	}()

	// Give the request time to queue behind the never-firing tick.
	time.Sleep(20 * time.Millisecond)
	ticker.Close()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("pending batch never ran after Close")
	}
}

func TestTicker_DoAfterCloseRunsInline(t *testing.T) {
	ticker := NewTicker(time.Hour)
	ticker.Close()
	time.Sleep(10 * time.Millisecond)

	ran := false
	require.NoError(t, ticker.Do(context.Background(), func() { ran = true }))
	require.True(t, ran)
}
