package main

import (
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"

	"github.com/utkarsh5026/threadpool/pool"
)

type config struct {
	workers    int
	tasks      int
	submitters int
	work       time.Duration

	failEvery  int
	panicEvery int

	queueCapacity int
	reject        bool

	rate  float64
	burst int

	retries     int
	lockThreads bool

	ci      bool
	verbose bool
}

func (c config) validate() error {
	switch {
	case c.workers <= 0:
		return fmt.Errorf("--workers must be positive, got %d", c.workers)
	case c.submitters <= 0:
		return fmt.Errorf("--submitters must be positive, got %d", c.submitters)
	case c.tasks < 0:
		return fmt.Errorf("--tasks must not be negative, got %d", c.tasks)
	case c.retries < 0:
		return fmt.Errorf("--retries must not be negative, got %d", c.retries)
	case c.reject && c.queueCapacity <= 0:
		return errors.New("--reject requires --queue-capacity")
	}
	return nil
}

func (c config) options(logger *zap.Logger) []pool.Option {
	opts := []pool.Option{
		pool.WithName("poolrun"),
		pool.WithLogger(logger),
	}
	if c.queueCapacity > 0 {
		opts = append(opts, pool.WithQueueCapacity(c.queueCapacity))
	}
	if c.reject {
		opts = append(opts, pool.WithRejectWhenFull())
	}
	if c.rate > 0 {
		opts = append(opts, pool.WithRateLimit(c.rate, c.burst))
	}
	if c.retries > 0 {
		opts = append(opts, pool.WithRetryPolicy(c.retries+1, time.Millisecond))
	}
	if c.lockThreads {
		opts = append(opts, pool.WithLockOSThread())
	}
	return opts
}

// report is the outcome of one load run.
type report struct {
	Accepted int64 // submissions the pool took
	Rejected int64 // submissions refused with ErrQueueFull
	Executed int64 // tasks whose function ran at least once

	Succeeded int
	Failed    int
	Panicked  int

	Elapsed time.Duration
	Stats   pool.Stats
}

// consistent reports whether every accepted task ran exactly once.
func (r report) consistent() bool {
	return r.Executed == r.Accepted
}

// runLoad starts a pool, feeds it cfg.tasks tasks from cfg.submitters
// goroutines, stops it and collects every Future. bar may be nil.
func runLoad(cfg config, logger *zap.Logger, bar *progressbar.ProgressBar) (report, error) {
	p := pool.New(cfg.options(logger)...)
	if err := p.Start(cfg.workers); err != nil {
		return report{}, fmt.Errorf("start pool: %w", err)
	}

	var (
		rep      report
		executed atomic.Int64
		accepted atomic.Int64
		rejected atomic.Int64
	)

	futures := make(chan *pool.Future[int], cfg.workers*4)
	collected := make(chan struct{})
	go func() {
		defer close(collected)
		for f := range futures {
			_, err := f.Get()
			var pe *pool.PanicError
			switch {
			case errors.As(err, &pe):
				rep.Panicked++
			case err != nil:
				rep.Failed++
			default:
				rep.Succeeded++
			}
			if bar != nil {
				_ = bar.Add(1)
			}
		}
	}()

	start := time.Now()
	var wg sync.WaitGroup
	for s := range cfg.submitters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := s; i < cfg.tasks; i += cfg.submitters {
				f, err := pool.Submit(p, newTask(cfg, i, &executed))
				switch {
				case errors.Is(err, pool.ErrQueueFull):
					rejected.Add(1)
					if bar != nil {
						_ = bar.Add(1)
					}
					continue
				case err != nil:
					logger.Error("submit failed", zap.Int("task", i), zap.Error(err))
					return
				}
				accepted.Add(1)
				futures <- f
			}
		}()
	}

	wg.Wait()
	p.Stop()
	rep.Elapsed = time.Since(start)

	close(futures)
	<-collected
	if bar != nil {
		_ = bar.Finish()
	}

	rep.Accepted = accepted.Load()
	rep.Rejected = rejected.Load()
	rep.Executed = executed.Load()
	rep.Stats = p.Stats()
	return rep, nil
}

// newTask builds task i. executed counts tasks on their first attempt only,
// so retries do not inflate it.
func newTask(cfg config, i int, executed *atomic.Int64) func() (int, error) {
	var ran atomic.Bool
	return func() (int, error) {
		if ran.CompareAndSwap(false, true) {
			executed.Add(1)
		}
		if cfg.work > 0 {
			time.Sleep(cfg.work)
		}

		n := i + 1
		if cfg.panicEvery > 0 && n%cfg.panicEvery == 0 {
			panic(fmt.Sprintf("task %d panicked", i))
		}
		if cfg.failEvery > 0 && n%cfg.failEvery == 0 {
			return 0, fmt.Errorf("task %d failed", i)
		}
		return i, nil
	}
}
