package pool

import (
	"testing"
	"time"
)

// configCase is a named pool configuration every behavioural test runs under.
type configCase struct {
	name string
	opts []Option
}

// getAllConfigs returns the queue/thread configurations to test.
func getAllConfigs() []configCase {
	return []configCase{
		{name: "Unbounded"},
		{name: "Bounded", opts: []Option{WithQueueCapacity(2048)}},
		{name: "LockedThreads", opts: []Option{WithLockOSThread()}},
	}
}

// getAllConfigsWithOpts returns all configurations with additional options
func getAllConfigsWithOpts(additionalOpts ...Option) []configCase {
	cases := getAllConfigs()
	for i := range cases {
		cases[i].opts = append(cases[i].opts, additionalOpts...)
	}
	return cases
}

func runConfigTest(t *testing.T, testFunc func(t *testing.T, c configCase), additionalOpts ...Option) {
	t.Helper()
	for _, c := range getAllConfigsWithOpts(additionalOpts...) {
		t.Run(c.name, func(t *testing.T) {
			testFunc(t, c)
		})
	}
}

// startPool starts a pool with n workers and stops it when the test ends.
func startPool(t *testing.T, n int, opts ...Option) *ThreadPool {
	t.Helper()
	p := New(opts...)
	if err := p.Start(n); err != nil {
		t.Fatalf("failed to start pool: %v", err)
	}
	t.Cleanup(p.Stop)
	return p
}

// blockWorker occupies one worker until the returned release func is called.
// It returns once the blocking task is executing.
func blockWorker(t *testing.T, p *ThreadPool) (release func()) {
	t.Helper()
	started := make(chan struct{})
	gate := make(chan struct{})

	_, err := Go(p, func() {
		close(started)
		<-gate
	})
	if err != nil {
		t.Fatalf("failed to submit blocking task: %v", err)
	}

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatal("blocking task never started")
	}

	var released bool
	return func() {
		if !released {
			released = true
			close(gate)
		}
	}
}
