package pool

import (
	"context"
	"sync"
	"time"
)

// Future is the caller's handle to the outcome of one submitted task.
//
// Exactly one of {value, error} is written, exactly once, by the worker that
// ran the task. Reads never consume the outcome: every Get, GetWithContext or
// TryGet after completion returns the same value and error.
type Future[R any] struct {
	id   uint64
	done chan struct{}
	once sync.Once

	value R
	err   error
}

func newFuture[R any](id uint64) *Future[R] {
	return &Future[R]{
		id:   id,
		done: make(chan struct{}),
	}
}

// complete writes the outcome. Only the first call has any effect; it
// reports whether this call was the one that wrote.
func (f *Future[R]) complete(value R, err error) bool {
	written := false
	f.once.Do(func() {
		f.value, f.err = value, err
		close(f.done)
		written = true
	})
	return written
}

func (f *Future[R]) resolve(value R) bool {
	return f.complete(value, nil)
}

func (f *Future[R]) reject(err error) bool {
	var zero R
	return f.complete(zero, err)
}

// ID returns the pool-assigned task ID, as passed to the task hooks.
func (f *Future[R]) ID() uint64 {
	return f.id
}

// Done returns a channel that is closed once the outcome is available.
func (f *Future[R]) Done() <-chan struct{} {
	return f.done
}

// IsReady reports whether the outcome is available without blocking.
func (f *Future[R]) IsReady() bool {
	select {
	case <-f.done:
		return true
	default:
		return false
	}
}

// Get blocks until the task has finished and returns its value, or the error
// the task returned. A task that panicked reports a *PanicError.
func (f *Future[R]) Get() (R, error) {
	<-f.done
	return f.value, f.err
}

// GetWithContext is Get bounded by ctx. Giving up does not affect the task,
// which still runs to completion; the outcome stays readable afterwards.
func (f *Future[R]) GetWithContext(ctx context.Context) (R, error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		var zero R
		return zero, ctx.Err()
	}
}

// GetWithTimeout is Get bounded by a timeout.
func (f *Future[R]) GetWithTimeout(timeout time.Duration) (R, error) {
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	return f.GetWithContext(ctx)
}

// TryGet returns the outcome without blocking. ready is false, and value and
// err are zero, while the task has not finished.
func (f *Future[R]) TryGet() (value R, err error, ready bool) {
	select {
	case <-f.done:
		return f.value, f.err, true
	default:
		var zero R
		return zero, nil, false
	}
}
