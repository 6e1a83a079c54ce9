package pool

import (
	"context"
	"fmt"
	"runtime"
)

const panicStackSize = 4096

func newPanicError(r any) *PanicError {
	buf := make([]byte, panicStackSize)
	n := runtime.Stack(buf, false)
	return &PanicError{Value: r, Stack: buf[:n]}
}

// waitUntil blocks until either the done channel is closed or ctx ends.
// It is used during shutdown to wait for workers to drain the queue.
func waitUntil(ctx context.Context, done <-chan struct{}) error {
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("%w: %w", ErrShutdownTimeout, ctx.Err())
	}
}
