package worker

import "errors"

var (
	// ErrPoolNotStarted is returned by Submit before Start has run.
	ErrPoolNotStarted = errors.New("worker pool not started")

	// ErrPoolAlreadyStarted is returned by a second Start.
	ErrPoolAlreadyStarted = errors.New("worker pool already started")

	// ErrPoolStopped is returned by Submit after Stop.
	ErrPoolStopped = errors.New("worker pool stopped")

	// ErrQueueFull is returned by Submit when the queue is at capacity.
	// Callers decide whether dropped work is acceptable; the pool never
	// blocks on a full queue.
	ErrQueueFull = errors.New("worker pool queue full")

	// ErrStopTimeout is returned when workers do not drain within the
	// Stop timeout.
	ErrStopTimeout = errors.New("timeout waiting for workers to stop")

	// ErrNilProcessor is the panic value for a nil processor function.
	ErrNilProcessor = errors.New("processor function cannot be nil")
)
