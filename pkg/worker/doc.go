// Package worker implements a generic, thread-safe worker pool with bounded
// queues and backpressure.
//
// The pool manages a fixed number of goroutines that process work items of
// any type T from a buffered channel. Submit is non-blocking: when the queue
// is full it returns ErrQueueFull immediately rather than blocking the
// caller, so overload shows up as dropped work instead of latency.
//
//	pool := worker.NewPool[evalTask](8, 256, processTask)
//	if err := pool.Start(ctx); err != nil { ... }
//	defer pool.Stop(5 * time.Second)
//
//	if err := pool.Submit(task); errors.Is(err, worker.ErrQueueFull) {
//		// overloaded - drop or back off
//	}
//
// Workers exit when the context is cancelled or the queue channel is closed
// by Stop. Stop waits up to its timeout for in-flight work and returns
// ErrStopTimeout if workers are stuck; the process is free to exit anyway.
//
// Statistics (submitted, processed, failed, dropped, active, queue depth)
// are always tracked atomically via Stats(). Prometheus export is opt-in
// through WithMetricsRegistry.
//
// There is no per-item timeout and no cancellation of queued items; callers
// that need a deadline enforce it around the result, abandoning work that
// finishes late.
package worker
