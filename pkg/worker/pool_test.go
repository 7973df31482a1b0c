package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

// Test data structure for worker pool tests
type testWork struct {
	id   int
	fail bool
}

func TestNewPool(t *testing.T) {
	processor := func(_ context.Context, _ testWork) error { return nil }

	pool := NewPool(5, 100, processor)
	if pool.workers != 5 {
		t.Errorf("Expected 5 workers, got %d", pool.workers)
	}
	if pool.queueSize != 100 {
		t.Errorf("Expected queue size 100, got %d", pool.queueSize)
	}

	// Zero values fall back to defaults
	pool = NewPool(0, 0, processor)
	if pool.workers != 8 {
		t.Errorf("Expected default 8 workers, got %d", pool.workers)
	}
	if pool.queueSize != 256 {
		t.Errorf("Expected default queue size 256, got %d", pool.queueSize)
	}
}

func TestNewPool_NilProcessor(t *testing.T) {
	defer func() {
		if r := recover(); r == nil {
			t.Errorf("Expected panic for nil processor")
		}
	}()
	NewPool[testWork](5, 100, nil)
}

func TestPool_SubmitBeforeStart(t *testing.T) {
	pool := NewPool(2, 10, func(_ context.Context, _ testWork) error { return nil })

	err := pool.Submit(testWork{id: 1})
	if !errors.Is(err, ErrPoolNotStarted) {
		t.Errorf("Expected ErrPoolNotStarted, got %v", err)
	}
}

func TestPool_ProcessesWork(t *testing.T) {
	var processedCount int64
	var failedSeen int64
	processor := func(_ context.Context, w testWork) error {
		atomic.AddInt64(&processedCount, 1)
		if w.fail {
			atomic.AddInt64(&failedSeen, 1)
			return errors.New("task failed")
		}
		return nil
	}

	pool := NewPool(2, 10, processor)
	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start pool: %v", err)
	}

	if err := pool.Start(context.Background()); !errors.Is(err, ErrPoolAlreadyStarted) {
		t.Errorf("Expected ErrPoolAlreadyStarted, got %v", err)
	}

	for i := 0; i < 5; i++ {
		if err := pool.Submit(testWork{id: i, fail: i == 0}); err != nil {
			t.Fatalf("Failed to submit work: %v", err)
		}
	}

	if err := pool.Stop(time.Second); err != nil {
		t.Fatalf("Failed to stop pool: %v", err)
	}

	if got := atomic.LoadInt64(&processedCount); got != 5 {
		t.Errorf("Expected 5 processed, got %d", got)
	}

	stats := pool.Stats()
	if stats.Submitted != 5 {
		t.Errorf("Expected 5 submitted, got %d", stats.Submitted)
	}
	if stats.Processed != 5 {
		t.Errorf("Expected 5 processed, got %d", stats.Processed)
	}
	if stats.Failed != 1 {
		t.Errorf("Expected 1 failed, got %d", stats.Failed)
	}
}

func TestPool_QueueFull(t *testing.T) {
	block := make(chan struct{})
	processor := func(_ context.Context, _ testWork) error {
		<-block
		return nil
	}

	pool := NewPool(1, 1, processor)
	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start pool: %v", err)
	}
	defer func() {
		close(block)
		_ = pool.Stop(time.Second)
	}()

	// Fill the single worker plus the single queue slot, then overflow.
	// The worker may not have picked up the first item yet, so allow one
	// extra submit before requiring ErrQueueFull.
	var full bool
	for i := 0; i < 3; i++ {
		if err := pool.Submit(testWork{id: i}); errors.Is(err, ErrQueueFull) {
			full = true
			break
		}
	}
	if !full {
		t.Error("Expected ErrQueueFull once queue capacity was exceeded")
	}

	if pool.Stats().Dropped == 0 {
		t.Error("Expected dropped counter to increase")
	}
}

func TestPool_StopIdempotent(t *testing.T) {
	pool := NewPool(1, 1, func(_ context.Context, _ testWork) error { return nil })
	if err := pool.Start(context.Background()); err != nil {
		t.Fatalf("Failed to start pool: %v", err)
	}

	if err := pool.Stop(time.Second); err != nil {
		t.Fatalf("First stop failed: %v", err)
	}
	if err := pool.Stop(time.Second); err != nil {
		t.Errorf("Second stop should be a no-op, got %v", err)
	}

	if err := pool.Submit(testWork{}); !errors.Is(err, ErrPoolStopped) {
		t.Errorf("Expected ErrPoolStopped after stop, got %v", err)
	}
}

func TestPool_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())

	started := make(chan struct{}, 1)
	processor := func(c context.Context, _ testWork) error {
		started <- struct{}{}
		<-c.Done()
		return c.Err()
	}

	pool := NewPool(1, 10, processor)
	if err := pool.Start(ctx); err != nil {
		t.Fatalf("Failed to start pool: %v", err)
	}

	if err := pool.Submit(testWork{id: 1}); err != nil {
		t.Fatalf("Failed to submit: %v", err)
	}
	<-started

	cancel()

	// Workers should exit promptly once the context is cancelled
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if pool.Stats().Processed == 1 {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Error("worker did not finish after context cancellation")
}
