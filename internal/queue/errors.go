package queue

import "errors"

var (
	// ErrClosed is returned by Enqueue when the queue is not accepting items,
	// either because it was never opened or because Close was called.
	ErrClosed = errors.New("queue is closed")

	// ErrFull is returned by Enqueue on a bounded queue configured to reject
	// instead of blocking when every slot is taken.
	ErrFull = errors.New("queue is full")

	// ErrNotIdle is returned by Open when the queue has already left the idle state.
	ErrNotIdle = errors.New("queue already opened or closed")
)
