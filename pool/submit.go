package pool

import (
	"context"
	"errors"

	"github.com/utkarsh5026/threadpool/internal/queue"
)

// Submit queues fn for execution and returns a Future for its outcome
// without waiting for it to run.
//
// Returns:
//   - ErrPoolStopped if the pool is not running; fn will never run
//   - ErrQueueFull on a full bounded pool configured with WithRejectWhenFull
//
// On a full bounded pool without WithRejectWhenFull, Submit waits for a
// free slot; use SubmitContext to bound that wait.
//
// Example:
//
//	future, err := Submit(p, func() (string, error) {
//	    return fetch(url)
//	})
//	if err != nil {
//	    return err
//	}
//	body, err := future.Get()
func Submit[R any](p *ThreadPool, fn func() (R, error)) (*Future[R], error) {
	return SubmitContext(context.Background(), p, fn)
}

// SubmitContext is Submit where ctx bounds the wait for a slot in a full
// bounded queue. ctx does not reach the task: once accepted, it runs to
// completion.
func SubmitContext[R any](ctx context.Context, p *ThreadPool, fn func() (R, error)) (*Future[R], error) {
	if fn == nil {
		return nil, ErrNilFunc
	}

	id := p.taskIDs.Add(1)
	future := newFuture[R](id)

	if err := p.enqueue(ctx, newTask(id, fn, future)); err != nil {
		return nil, err
	}
	return future, nil
}

// Call queues fn bound to arg; it is Submit for single-argument functions.
//
// Example:
//
//	future, err := Call(p, strconv.Atoi, "42")
func Call[A, R any](p *ThreadPool, fn func(A) (R, error), arg A) (*Future[R], error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	return Submit(p, func() (R, error) {
		return fn(arg)
	})
}

// Go queues a function that produces no value. The Future reports when it
// finished and whether it panicked.
func Go(p *ThreadPool, fn func()) (*Future[struct{}], error) {
	if fn == nil {
		return nil, ErrNilFunc
	}
	return Submit(p, func() (struct{}, error) {
		fn()
		return struct{}{}, nil
	})
}

func (p *ThreadPool) enqueue(ctx context.Context, t *task) error {
	// Counted before the task is visible to workers, so a Stats snapshot
	// never has more finished tasks than submitted ones.
	p.stats.submitted.Add(1)
	err := p.queue.Enqueue(ctx, t)
	if err == nil {
		return nil
	}

	p.stats.submitted.Add(^uint64(0))
	p.stats.rejected.Add(1)
	switch {
	case errors.Is(err, queue.ErrClosed):
		return ErrPoolStopped
	case errors.Is(err, queue.ErrFull):
		return ErrQueueFull
	default:
		return err
	}
}
