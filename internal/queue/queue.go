// Package queue implements the shared task queue of the pool: a FIFO buffer,
// the accepting/closed lifecycle flag, and the wait/notify monitor that puts
// idle workers to sleep. All three live behind a single mutex.
package queue

import (
	"context"
	"sync"

	"golang.org/x/sync/semaphore"
)

// State is the lifecycle of a Queue. Transitions only move forward:
// Idle -> Open -> Closed, or Idle -> Closed.
type State int32

const (
	// StateIdle queues accept nothing yet; consumers may already wait on them.
	StateIdle State = iota
	// StateOpen queues accept items.
	StateOpen
	// StateClosed queues reject new items; consumers drain what is left.
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateOpen:
		return "open"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// FullPolicy decides what Enqueue does when a bounded queue has no free slot.
type FullPolicy int

const (
	// PolicyBlock makes the producer wait until a consumer frees a slot
	// or the producer's context ends.
	PolicyBlock FullPolicy = iota
	// PolicyReject fails the enqueue immediately with ErrFull.
	PolicyReject
)

// Option configures a Queue.
type Option func(*config)

type config struct {
	capacity int
	policy   FullPolicy
}

// WithCapacity bounds the number of items resident in the queue.
// Zero or negative values keep the queue unbounded (the default).
func WithCapacity(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithFullPolicy sets the behaviour of Enqueue on a full bounded queue.
// It has no effect on unbounded queues.
func WithFullPolicy(p FullPolicy) Option {
	return func(c *config) {
		c.policy = p
	}
}

// Queue is a multi-producer multi-consumer FIFO monitor.
//
// Producers call Enqueue. Consumers loop on Wait followed by TryDequeue:
// Wait sleeps on a condition variable until there is an item or the queue is
// closed, and reports when a consumer should exit (closed and empty).
// Consumers never exit while items remain, which gives drain-on-close.
type Queue[T any] struct {
	mu    sync.Mutex
	cond  *sync.Cond
	items ring[T]
	state State

	// slots is nil for unbounded queues. A slot is held from a successful
	// acquire in Enqueue until the item is dequeued.
	slots    *semaphore.Weighted
	capacity int
	policy   FullPolicy
}

// New creates an idle queue. Call Open before producers can enqueue.
func New[T any](opts ...Option) *Queue[T] {
	cfg := &config{policy: PolicyBlock}
	for _, opt := range opts {
		opt(cfg)
	}

	q := &Queue[T]{
		items:    newRing[T](cfg.capacity),
		capacity: cfg.capacity,
		policy:   cfg.policy,
	}
	q.cond = sync.NewCond(&q.mu)

	if cfg.capacity > 0 {
		q.slots = semaphore.NewWeighted(int64(cfg.capacity))
	}
	return q
}

// Open moves an idle queue into the accepting state.
func (q *Queue[T]) Open() error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.state != StateIdle {
		return ErrNotIdle
	}
	q.state = StateOpen
	return nil
}

// Enqueue appends item to the tail and wakes one waiting consumer.
// It fails with ErrClosed, leaving the queue untouched, unless the queue is open.
//
// On a bounded queue the context only governs the wait for a free slot.
func (q *Queue[T]) Enqueue(ctx context.Context, item T) error {
	if q.slots != nil {
		if !q.accepting() {
			return ErrClosed
		}
		if err := q.acquire(ctx); err != nil {
			return err
		}
	}

	q.mu.Lock()
	if q.state != StateOpen {
		q.mu.Unlock()
		q.release()
		return ErrClosed
	}
	q.items.push(item)
	q.mu.Unlock()

	q.cond.Signal()
	return nil
}

// Wait blocks until the queue holds an item or is closed.
// It returns true when the caller should exit: the queue is closed and empty.
// A false return does not promise an item; another consumer may win the
// following TryDequeue.
func (q *Queue[T]) Wait() (exit bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	for q.items.len() == 0 && q.state != StateClosed {
		q.cond.Wait()
	}
	return q.items.len() == 0 && q.state == StateClosed
}

// TryDequeue removes and returns the head item, if any, without blocking.
func (q *Queue[T]) TryDequeue() (T, bool) {
	q.mu.Lock()
	item, ok := q.items.pop()
	q.mu.Unlock()

	if ok {
		q.release()
	}
	return item, ok
}

// Close stops the queue from accepting items and wakes every consumer.
// It reports whether this call performed the transition.
func (q *Queue[T]) Close() bool {
	q.mu.Lock()
	if q.state == StateClosed {
		q.mu.Unlock()
		return false
	}
	q.state = StateClosed
	q.mu.Unlock()

	q.cond.Broadcast()
	return true
}

// Len returns the number of resident items.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.items.len()
}

// Cap returns the bound of the queue, or 0 when unbounded.
func (q *Queue[T]) Cap() int {
	return q.capacity
}

// State returns the current lifecycle state.
func (q *Queue[T]) State() State {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state
}

func (q *Queue[T]) accepting() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.state == StateOpen
}

func (q *Queue[T]) acquire(ctx context.Context) error {
	if q.policy == PolicyReject {
		if !q.slots.TryAcquire(1) {
			return ErrFull
		}
		return nil
	}
	return q.slots.Acquire(ctx, 1)
}

func (q *Queue[T]) release() {
	if q.slots != nil {
		q.slots.Release(1)
	}
}
