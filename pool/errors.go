package pool

import (
	"errors"
	"fmt"
)

var (
	// ErrPoolStopped is returned by every submission function when the pool is
	// not running: it was never started, or Stop has begun. No task is queued.
	ErrPoolStopped = errors.New("threadpool: pool is stopped")

	// ErrAlreadyStarted is returned by Start on a pool that was started or
	// stopped before. Pools are single-use.
	ErrAlreadyStarted = errors.New("threadpool: pool already started")

	// ErrInvalidWorkerCount is returned by Start for a non-positive worker count.
	ErrInvalidWorkerCount = errors.New("threadpool: worker count must be positive")

	// ErrQueueFull is returned by submissions to a bounded pool configured
	// with WithRejectWhenFull when every slot is taken.
	ErrQueueFull = errors.New("threadpool: queue is full")

	// ErrResourceExhausted is matched by a *StartError when not every worker
	// could be brought up.
	ErrResourceExhausted = errors.New("threadpool: could not start every worker")

	// ErrShutdownTimeout is returned by Shutdown when its context ends before
	// every worker has exited.
	ErrShutdownTimeout = errors.New("threadpool: shutdown timed out")

	// ErrNilFunc is returned when a nil function is submitted.
	ErrNilFunc = errors.New("threadpool: nil task function")
)

// PanicError is the failure delivered to a Future whose task panicked.
type PanicError struct {
	Value any
	Stack []byte
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("task panic: %v", e.Value)
}

// Unwrap exposes the panic value when the task panicked with an error.
func (e *PanicError) Unwrap() error {
	if err, ok := e.Value.(error); ok {
		return err
	}
	return nil
}

// StartError reports a Start that brought up fewer workers than requested.
// The pool is left stopped; nothing was accepted.
type StartError struct {
	Requested int
	Failed    int
	Err       error // every worker's setup failure, combined
}

func (e *StartError) Error() string {
	return fmt.Sprintf("%v: %d of %d workers failed: %v", ErrResourceExhausted, e.Failed, e.Requested, e.Err)
}

func (e *StartError) Is(target error) bool {
	return target == ErrResourceExhausted
}

func (e *StartError) Unwrap() error {
	return e.Err
}
