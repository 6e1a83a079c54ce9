package pool

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/utkarsh5026/threadpool/internal/queue"
)

// State is the lifecycle of a ThreadPool. It only moves forward:
// StateIdle -> StateRunning -> StateStopped, or StateIdle -> StateStopped.
type State int32

const (
	// StateIdle pools have not been started; submissions are rejected.
	StateIdle State = iota
	// StateRunning pools accept submissions.
	StateRunning
	// StateStopped pools reject submissions; workers drain the queue and exit.
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// ThreadPool is a fixed-size pool of long-lived workers fed from one shared
// FIFO queue. Tasks are submitted with Submit, SubmitContext, Call or Go and
// report their outcome through a Future.
//
// A pool is single-use: it is started once with a fixed worker count and,
// once stopped, cannot be restarted. Stop drains every task that was accepted
// before it began, so accepted work is never dropped.
type ThreadPool struct {
	conf  *poolConfig
	log   *zap.Logger
	queue *queue.Queue[*task]

	mu      sync.Mutex // serializes Start and the first stop
	started bool       // Start (or a stop) has run; no further Start allowed
	workers atomic.Int32
	done    chan struct{} // closed once every worker has exited

	taskIDs atomic.Uint64
	stats   counters
}

// New creates an unstarted pool with the given options.
// This does NOT start any workers; use Start to begin processing tasks.
//
// Example:
//
//	p := New(WithName("ingest"), WithQueueCapacity(1024))
//	if err := p.Start(8); err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Stop()
func New(opts ...Option) *ThreadPool {
	cfg := newConfig(opts...)

	qopts := []queue.Option{queue.WithCapacity(cfg.queueCapacity)}
	if cfg.rejectWhenFull {
		qopts = append(qopts, queue.WithFullPolicy(queue.PolicyReject))
	}

	log := cfg.logger.Named("threadpool")
	if cfg.name != "" {
		log = log.With(zap.String("pool", cfg.name))
	}

	return &ThreadPool{
		conf:  cfg,
		log:   log,
		queue: queue.New[*task](qopts...),
		done:  make(chan struct{}),
	}
}

// Start spawns exactly n workers and puts the pool into the running state.
//
// Start returns only once every worker is up and waiting for work. If any
// worker fails to come up (for instance its thread cannot be pinned), the
// workers already running are released, the pool is left stopped and a
// *StartError matching ErrResourceExhausted is returned: a pool is never
// running with fewer workers than requested.
//
// Returns:
//   - ErrInvalidWorkerCount when n <= 0
//   - ErrAlreadyStarted when the pool was started or stopped before
//
// Example:
//
//	p := New()
//	if err := p.Start(4); err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Stop()
//	fmt.Println(p.WorkerCount()) // 4
func (p *ThreadPool) Start(n int) error {
	if n <= 0 {
		return fmt.Errorf("%w: got %d", ErrInvalidWorkerCount, n)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.started {
		return ErrAlreadyStarted
	}
	p.started = true

	ready := make(chan error, n)
	var g errgroup.Group
	for i := range n {
		g.Go(func() error {
			return p.worker(i, ready)
		})
	}

	go func() {
		_ = g.Wait()
		close(p.done)
	}()

	var errs error
	for range n {
		errs = multierr.Append(errs, <-ready)
	}

	if errs != nil {
		p.queue.Close()
		<-p.done

		failed := len(multierr.Errors(errs))
		p.log.Error("pool failed to start", zap.Int("requested", n), zap.Int("failed", failed), zap.Error(errs))
		return &StartError{Requested: n, Failed: failed, Err: errs}
	}

	p.workers.Store(int32(n)) // #nosec G115 -- worker counts are far below MaxInt32
	if err := p.queue.Open(); err != nil {
		return fmt.Errorf("open queue: %w", err)
	}

	p.log.Info("pool started", zap.Int("workers", n), zap.Int("queue_capacity", p.queue.Cap()))
	return nil
}

// Stop stops accepting tasks, wakes every worker and blocks until all of
// them have exited. Workers first finish every task still in the queue.
//
// Stop is idempotent and safe for concurrent use: every call returns once the
// workers are gone. Stopping a pool that was never started marks it stopped.
// Stop must not be called from inside a task, since it waits for that task's
// worker.
func (p *ThreadPool) Stop() {
	p.beginStop()
	<-p.done
}

// Close stops the pool. It implements io.Closer so a pool can be released
// with defer on every exit path; the error is always nil.
func (p *ThreadPool) Close() error {
	p.Stop()
	return nil
}

// Shutdown is Stop bounded by ctx. If ctx ends first, Shutdown returns an
// error matching both ErrShutdownTimeout and ctx.Err(); the workers keep
// draining in the background and Done is closed once they have exited.
//
// Example:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
//	defer cancel()
//	if err := p.Shutdown(ctx); err != nil {
//	    log.Printf("shutdown error: %v", err)
//	}
func (p *ThreadPool) Shutdown(ctx context.Context) error {
	p.beginStop()
	return waitUntil(ctx, p.done)
}

// Done returns a channel that is closed once the pool is stopped and every
// worker has exited.
func (p *ThreadPool) Done() <-chan struct{} {
	return p.done
}

// beginStop flips the pool to stopped and wakes the workers without waiting.
func (p *ThreadPool) beginStop() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.started {
		// No worker will ever close done.
		p.started = true
		p.queue.Close()
		close(p.done)
		return
	}

	if p.queue.Close() {
		p.log.Info("pool stopping", zap.Int("queued", p.queue.Len()))
	}
}

// WorkerCount returns the fixed number of workers set by Start, or 0 before.
func (p *ThreadPool) WorkerCount() int {
	return int(p.workers.Load())
}

// State returns the pool's lifecycle state.
func (p *ThreadPool) State() State {
	switch p.queue.State() {
	case queue.StateOpen:
		return StateRunning
	case queue.StateClosed:
		return StateStopped
	default:
		return StateIdle
	}
}

// Name returns the name set with WithName.
func (p *ThreadPool) Name() string {
	return p.conf.name
}

// Run starts a pool of n workers, hands it to fn and stops it on every exit
// path: normal return, error return or panic. Every task accepted while fn
// ran has finished by the time Run returns.
//
// Example:
//
//	err := Run(4, func(p *ThreadPool) error {
//	    f, err := Submit(p, func() (int, error) { return 42, nil })
//	    if err != nil {
//	        return err
//	    }
//	    v, err := f.Get()
//	    fmt.Println(v) // 42
//	    return err
//	})
func Run(n int, fn func(p *ThreadPool) error, opts ...Option) error {
	p := New(opts...)
	if err := p.Start(n); err != nil {
		return err
	}
	defer p.Stop()

	return fn(p)
}
