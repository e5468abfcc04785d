package pulse

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestRelay_DeliversInOrder(t *testing.T) {
	m := newMonitor(t, 1000)
	r := NewRelay(context.Background(), m, 16)

	r.RecordFrame(40)
	r.RecordFrame(10)
	r.RecordScrollEvent(200)
	r.RecordSizing(100, 100, false, 1)
	r.RecordAccess("k", 100, false)

	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	snap := m.GetMetrics()
	if snap.FrameDropDetection.FrameDropRate != 50 {
		t.Errorf("expected 50%% drop rate after relay drain, got %v",
			snap.FrameDropDetection.FrameDropRate)
	}
	if snap.SmoothScrollMetrics.SmoothScrollPercentage != 100 {
		t.Errorf("expected 100%% smooth, got %v", snap.SmoothScrollMetrics.SmoothScrollPercentage)
	}
	if snap.CacheStats.Misses != 1 {
		t.Errorf("expected 1 miss, got %d", snap.CacheStats.Misses)
	}
}

func TestRelay_MultipleProducers(t *testing.T) {
	m := newMonitor(t, 1<<20)
	r := NewRelay(context.Background(), m, 64)

	var wg sync.WaitGroup
	for p := 0; p < 4; p++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 25; i++ {
				r.RecordFrame(10)
			}
		}()
	}
	wg.Wait()

	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	// 100 clean frames across producers; window is 120.
	if got := m.GetMetrics().FrameDropDetection.FrameDropRate; got != 0 {
		t.Errorf("expected 0%% drop rate, got %v", got)
	}
	if got := m.GetMetrics().FrameDropDetection.AvgFrameTimeMs; got != 10 {
		t.Errorf("expected avg 10ms, got %v", got)
	}
}

func TestRelay_CancelDiscardsSendsAndCloseReturnsNil(t *testing.T) {
	m := newMonitor(t, 1000)
	ctx, cancel := context.WithCancel(context.Background())
	r := NewRelay(ctx, m, 1)

	cancel()

	// With the consumer gone, sends beyond the queue depth must be
	// discarded rather than block the producer forever.
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		r.RecordFrame(40)
		r.RecordFrame(40)
		r.RecordScrollEvent(2000)
	}()

	select {
	case <-finished:
	case <-time.After(2 * time.Second):
		t.Fatal("producer blocked after context cancellation")
	}

	// Cancellation is an ordinary shutdown, not a Close failure.
	if err := r.Close(); err != nil {
		t.Errorf("close after cancel should report success, got %v", err)
	}
}

func TestRelay_CloseIsIdempotentAndDiscardsLateSends(t *testing.T) {
	m := newMonitor(t, 1000)
	r := NewRelay(context.Background(), m, 4)

	if err := r.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := r.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}

	// Must not panic or deliver.
	r.RecordFrame(99)
	if got := m.GetMetrics().FrameDropDetection.FrameDropRate; got != 0 {
		t.Errorf("late send must be discarded, got drop rate %v", got)
	}
}
