// Package pool provides a fixed-size worker pool: a set of long-lived
// workers that consume tasks from one shared FIFO queue and hand each task's
// result back to its submitter through a Future.
//
// The primary type is ThreadPool. It is created with New, started once with
// a fixed worker count, fed with Submit (or Call, Go, SubmitContext), and
// stopped with Stop, which drains every accepted task before returning.
//
// # Basic Usage
//
//	p := pool.New()
//	if err := p.Start(4); err != nil {
//	    log.Fatal(err)
//	}
//	defer p.Stop()
//
//	future, err := pool.Submit(p, func() (int, error) {
//	    return 6 * 7, nil
//	})
//	if err != nil {
//	    log.Fatal(err) // pool.ErrPoolStopped if the pool is not running
//	}
//	v, err := future.Get() // 42, nil
//
// # Scoped Pools
//
// Run starts a pool, passes it to a function and stops it on every exit
// path, including panics:
//
//	err := pool.Run(8, func(p *pool.ThreadPool) error {
//	    for _, f := range files {
//	        if _, err := pool.Call(p, process, f); err != nil {
//	            return err
//	        }
//	    }
//	    return nil
//	}) // every accepted task has finished here
//
// # Results and Failures
//
// A Future receives exactly one outcome, exactly once: the task's value, the
// error it returned, or a *PanicError if it panicked. A failing task never
// takes its worker down and never affects other tasks. Futures can be read
// blocking (Get), with a deadline (GetWithContext, GetWithTimeout) or by
// polling (TryGet, IsReady, Done). Abandoning a Future does not cancel its
// task.
//
// # Lifecycle
//
// A pool moves StateIdle -> StateRunning -> StateStopped and never back.
// Submissions outside StateRunning fail with ErrPoolStopped and have no side
// effects. Start fails with ErrAlreadyStarted on a second call, and as a
// whole (a *StartError) if any worker cannot be brought up. Stop is
// idempotent; Shutdown is Stop with a deadline.
//
// # Configuration Options
//
//   - WithQueueCapacity(n): bound the queue (default: unbounded); submitters block when full
//   - WithRejectWhenFull(): fail with ErrQueueFull instead of blocking
//   - WithRateLimit(tasksPerSecond, burst): throttle task starts
//   - WithRetryPolicy(maxAttempts, initialDelay): retry failing tasks with backoff
//   - WithBackoff(kind, initial, max, jitter): choose the retry backoff algorithm
//   - WithLockOSThread(), WithCPUAffinity(): dedicate an OS thread (and core) to each worker
//   - WithBeforeTaskStart, WithOnTaskEnd, WithOnRetry: task hooks
//   - WithLogger(*zap.Logger), WithName(name): structured logging
package pool
