package pool

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/utkarsh5026/threadpool/internal/backoff"
	"github.com/utkarsh5026/threadpool/internal/cpu"
)

// workerState is the position of a worker in its loop.
type workerState int

const (
	waitingForWork workerState = iota
	executing
	exited
)

// worker brings up one worker, reports the outcome on ready, then runs the
// loop until the queue is closed and empty:
//
//	waitingForWork -> executing -> waitingForWork ... -> exited
//
// A worker never exits while a task is still queued, and never because of a
// task: failures and panics are captured and handed to the task's Future.
func (p *ThreadPool) worker(id int, ready chan<- error) error {
	release, err := p.setupWorker(id)
	ready <- err
	if err != nil {
		return err
	}
	defer release()

	log := p.log.With(zap.Int("worker", id))
	log.Debug("worker started")

	state := waitingForWork
	var current *task

	for {
		switch state {
		case waitingForWork:
			if p.queue.Wait() {
				state = exited
				continue
			}
			t, ok := p.queue.TryDequeue()
			if !ok {
				// another worker won the race for this wake-up
				continue
			}
			current = t
			state = executing

		case executing:
			p.execute(log, current)
			current = nil
			state = waitingForWork

		case exited:
			log.Debug("worker exited")
			return nil
		}
	}
}

// setupWorker runs on the worker goroutine before it takes any task.
// The returned release undoes the setup when the worker exits.
func (p *ThreadPool) setupWorker(id int) (release func(), err error) {
	switch {
	case p.conf.cpuAffinity:
		release, err = cpu.Pin(id)
	case p.conf.lockOSThread:
		release = cpu.LockThread()
	default:
		release = func() {}
	}

	if err == nil && p.conf.setup != nil {
		if err = p.conf.setup(id); err != nil {
			release()
		}
	}

	if err != nil {
		return nil, fmt.Errorf("worker %d: %w", id, err)
	}
	return release, nil
}

// execute runs one task outside the queue lock and settles its Future.
// Hooks and counters are updated before the Future is settled, so a caller
// returning from Get observes them.
func (p *ThreadPool) execute(log *zap.Logger, t *task) {
	if p.conf.rateLimiter != nil {
		// Accepted tasks are never cancelled. Wait only fails for a burst
		// below 1, which WithRateLimit rejects.
		_ = p.conf.rateLimiter.Wait(context.Background())
	}

	p.stats.active.Add(1)

	if p.conf.beforeTaskStart != nil {
		p.safeHook(log, "before_task_start", func() { p.conf.beforeTaskStart(t.id) })
	}

	err := p.runWithRecovery(log, t)
	if err != nil {
		p.stats.failed.Add(1)
		log.Debug("task failed", zap.Uint64("task", t.id), zap.Error(err))
	} else {
		p.stats.completed.Add(1)
	}
	p.stats.active.Add(-1)

	if p.conf.onTaskEnd != nil {
		p.safeHook(log, "on_task_end", func() { p.conf.onTaskEnd(t.id, err) })
	}

	t.settle(err)
}

// runWithRecovery runs the task's attempts, converting a panic into a
// *PanicError so it can never unwind through the worker.
func (p *ThreadPool) runWithRecovery(log *zap.Logger, t *task) (err error) {
	defer func() {
		if r := recover(); r != nil {
			pe := newPanicError(r)
			p.stats.panicked.Add(1)
			log.Warn("task panicked",
				zap.Uint64("task", t.id),
				zap.Any("panic", r),
				zap.ByteString("stack", pe.Stack),
			)
			err = pe
		}
	}()

	return p.runWithRetry(log, t)
}

// runWithRetry calls the task up to maxAttempts times, sleeping per the
// backoff strategy between attempts, and returns the last error.
func (p *ThreadPool) runWithRetry(log *zap.Logger, t *task) error {
	attempts := max(p.conf.maxAttempts, 1)

	var strategy backoff.Strategy
	var err error
	for attempt := range attempts {
		if attempt > 0 {
			if strategy == nil {
				strategy = backoff.New(p.conf.backoff)
			}
			if delay := strategy.NextDelay(attempt - 1); delay > 0 {
				time.Sleep(delay)
			}
		}

		if err = t.attempt(); err == nil {
			return nil
		}

		if attempt < attempts-1 {
			p.stats.retries.Add(1)
			log.Debug("retrying task", zap.Uint64("task", t.id), zap.Int("attempt", attempt+1), zap.Error(err))
			if p.conf.onRetry != nil {
				p.safeHook(log, "on_retry", func() { p.conf.onRetry(t.id, attempt+1, err) })
			}
		}
	}

	return err
}

// safeHook runs a user hook; a panicking hook is logged and ignored.
func (p *ThreadPool) safeHook(log *zap.Logger, name string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			log.Warn("hook panicked", zap.String("hook", name), zap.Any("panic", r))
		}
	}()
	fn()
}
