package pool

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/utkarsh5026/threadpool/internal/backoff"
)

// BackoffType selects how retry delays grow.
type BackoffType = backoff.Kind

const (
	// BackoffExponential doubles the delay after each failed attempt (default).
	BackoffExponential = backoff.Exponential
	// BackoffJittered adds random jitter to the exponential delay.
	BackoffJittered = backoff.Jittered
	// BackoffDecorrelated uses AWS-style decorrelated jitter.
	BackoffDecorrelated = backoff.Decorrelated
)

// Option is a functional option for configuring a ThreadPool.
type Option func(*poolConfig)

type poolConfig struct {
	name   string
	logger *zap.Logger

	queueCapacity  int
	rejectWhenFull bool

	rateLimiter *rate.Limiter
	maxAttempts int
	backoff     backoff.Config

	lockOSThread bool
	cpuAffinity  bool

	beforeTaskStart func(id uint64)
	onTaskEnd       func(id uint64, err error)
	onRetry         func(id uint64, attempt int, err error)

	// setup runs on every worker before it reports ready; an error fails Start.
	setup func(workerID int) error
}

func newConfig(opts ...Option) *poolConfig {
	cfg := &poolConfig{
		logger:      zap.NewNop(),
		maxAttempts: 1,
		backoff: backoff.Config{
			Kind:         backoff.Exponential,
			InitialDelay: 100 * time.Millisecond,
			MaxDelay:     5 * time.Second,
			JitterFactor: 0.1,
		},
	}

	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// WithName labels the pool in its log lines.
func WithName(name string) Option {
	return func(cfg *poolConfig) {
		cfg.name = name
	}
}

// WithLogger sets the structured logger. The pool logs under the
// "threadpool" name. Defaults to a no-op logger; nil is ignored.
func WithLogger(logger *zap.Logger) Option {
	return func(cfg *poolConfig) {
		if logger != nil {
			cfg.logger = logger
		}
	}
}

// WithQueueCapacity bounds the number of queued (not yet running) tasks.
// By default the queue is unbounded. When the bound is reached, submitters
// block until a worker dequeues a task; SubmitContext can bound that wait.
// Combine with WithRejectWhenFull to fail fast instead.
//
// A task that submits to its own full pool with the blocking policy can
// deadlock when every worker does the same.
func WithQueueCapacity(capacity int) Option {
	return func(cfg *poolConfig) {
		if capacity > 0 {
			cfg.queueCapacity = capacity
		}
	}
}

// WithRejectWhenFull makes submissions to a full bounded queue fail with
// ErrQueueFull. It has no effect without WithQueueCapacity.
func WithRejectWhenFull() Option {
	return func(cfg *poolConfig) {
		cfg.rejectWhenFull = true
	}
}

// WithRateLimit sets a rate limiter for controlling task throughput.
// tasksPerSecond specifies the maximum number of tasks to start per second.
// burst specifies the maximum number of tasks that can start in a burst.
// If not specified, no rate limiting is applied.
//
// Example:
//
//	WithRateLimit(10, 5) // Allow 10 tasks/sec with burst of 5
func WithRateLimit(tasksPerSecond float64, burst int) Option {
	return func(cfg *poolConfig) {
		if tasksPerSecond > 0 && burst > 0 {
			cfg.rateLimiter = rate.NewLimiter(rate.Limit(tasksPerSecond), burst)
		}
	}
}

// WithRetryPolicy lets a failing task run up to maxAttempts times before its
// error is delivered. initialDelay is the wait before the first retry; later
// waits follow the configured backoff (exponential by default). A panic is
// never retried. The Future still receives exactly one outcome.
func WithRetryPolicy(maxAttempts int, initialDelay time.Duration) Option {
	return func(cfg *poolConfig) {
		if maxAttempts > 0 {
			cfg.maxAttempts = maxAttempts
		}

		if initialDelay > 0 {
			cfg.backoff.InitialDelay = initialDelay
		}
	}
}

// WithBackoff selects the retry backoff algorithm and its bounds.
// jitterFactor only applies to BackoffJittered and is clamped to [0, 1].
func WithBackoff(kind BackoffType, initialDelay, maxDelay time.Duration, jitterFactor float64) Option {
	return func(cfg *poolConfig) {
		cfg.backoff.Kind = kind
		if initialDelay > 0 {
			cfg.backoff.InitialDelay = initialDelay
		}
		if maxDelay > 0 {
			cfg.backoff.MaxDelay = maxDelay
		}
		if jitterFactor >= 0 {
			cfg.backoff.JitterFactor = jitterFactor
		}
	}
}

// WithLockOSThread runs every worker on a dedicated OS thread for the
// lifetime of the pool.
func WithLockOSThread() Option {
	return func(cfg *poolConfig) {
		cfg.lockOSThread = true
	}
}

// WithCPUAffinity locks every worker to its own OS thread and pins worker i
// to the i-th (modulo) CPU the process is allowed to run on. The thread's
// original affinity is restored when the worker exits. Where pinning is
// unsupported only the thread lock applies. A pinning failure makes Start
// fail as a whole.
func WithCPUAffinity() Option {
	return func(cfg *poolConfig) {
		cfg.lockOSThread = true
		cfg.cpuAffinity = true
	}
}

// WithBeforeTaskStart registers a hook run by the worker right before a task
// executes. It receives the task ID reported by Future.ID.
func WithBeforeTaskStart(fn func(id uint64)) Option {
	return func(cfg *poolConfig) {
		cfg.beforeTaskStart = fn
	}
}

// WithOnTaskEnd registers a hook run after a task finishes and before its
// Future is settled, so the hook has run by the time Get returns.
func WithOnTaskEnd(fn func(id uint64, err error)) Option {
	return func(cfg *poolConfig) {
		cfg.onTaskEnd = fn
	}
}

// WithOnRetry registers a hook run before each retry with the attempt
// number (1-based) that just failed and its error.
func WithOnRetry(fn func(id uint64, attempt int, err error)) Option {
	return func(cfg *poolConfig) {
		cfg.onRetry = fn
	}
}

// withWorkerSetup injects per-worker startup work; used by tests to simulate
// workers that cannot be brought up.
func withWorkerSetup(fn func(workerID int) error) Option {
	return func(cfg *poolConfig) {
		cfg.setup = fn
	}
}
