package benchmarks

import (
	"math"
	"slices"
	"strconv"
	"testing"
	"time"

	"github.com/utkarsh5026/threadpool/pool"
)

// poolConfig defines a benchmark configuration for one pool setup
type poolConfig struct {
	name string
	opts []pool.Option
}

// getAllConfigs returns every queue and thread configuration worth comparing
func getAllConfigs() []poolConfig {
	return []poolConfig{
		{name: "Unbounded"},
		{name: "Bounded_1024", opts: []pool.Option{pool.WithQueueCapacity(1024)}},
		{name: "Bounded_64", opts: []pool.Option{pool.WithQueueCapacity(64)}},
		{name: "LockedThreads", opts: []pool.Option{pool.WithLockOSThread()}},
	}
}

// getQueueConfigs returns configurations that differ only in queue capacity
func getQueueConfigs(capacities ...int) []poolConfig {
	configs := []poolConfig{{name: "Unbounded"}}
	for _, c := range capacities {
		configs = append(configs, poolConfig{
			name: "Bounded_" + strconv.Itoa(c),
			opts: []pool.Option{pool.WithQueueCapacity(c)},
		})
	}
	return configs
}

// runConfigBenchmark runs a benchmark function for all configurations
func runConfigBenchmark(b *testing.B, configs []poolConfig, benchFunc func(b *testing.B, c poolConfig)) {
	for _, c := range configs {
		b.Run(c.name, func(b *testing.B) {
			benchFunc(b, c)
		})
	}
}

// startPool starts a pool for one benchmark iteration
func startPool(b *testing.B, workers int, opts ...pool.Option) *pool.ThreadPool {
	b.Helper()
	p := pool.New(opts...)
	if err := p.Start(workers); err != nil {
		b.Fatal(err)
	}
	return p
}

// submitAll submits taskCount tasks built by work and waits for every result
func submitAll(b *testing.B, p *pool.ThreadPool, taskCount int, work func(task int) (int, error)) {
	b.Helper()
	futures := make([]*pool.Future[int], taskCount)
	for j := range taskCount {
		f, err := pool.Call(p, work, j)
		if err != nil {
			b.Fatal(err)
		}
		futures[j] = f
	}
	for _, f := range futures {
		if _, err := f.Get(); err != nil {
			b.Fatal(err)
		}
	}
}

// reportThroughput reports tasks/sec for taskCount tasks per op
func reportThroughput(b *testing.B, taskCount int) float64 {
	nsPerOp := float64(b.Elapsed().Nanoseconds()) / float64(b.N)
	tasksPerSec := (float64(taskCount) / nsPerOp) * 1e9
	b.ReportMetric(tasksPerSec, "tasks/sec")
	return tasksPerSec
}

// =============================================================================
// Benchmark Workload Generators
// =============================================================================

// cpuBoundWork simulates a CPU-intensive operation
func cpuBoundWork(iterations int) func(task int) (int, error) {
	return func(task int) (int, error) {
		result := 0
		for i := range iterations {
			result += i * task
		}
		return result, nil
	}
}

// ioBoundWork simulates an I/O operation with a delay
func ioBoundWork(delay time.Duration) func(task int) (int, error) {
	return func(task int) (int, error) {
		time.Sleep(delay)
		return task * 2, nil
	}
}

// mixedWork simulates a realistic workload with variable processing time
func mixedWork() func(task int) (int, error) {
	return func(task int) (int, error) {
		// 0-3ms
		time.Sleep(time.Duration(task%4) * time.Millisecond)

		result := 0
		for i := range 1000 {
			result += i
		}
		return result + task, nil
	}
}

func percentile(latencies []time.Duration, p float64) time.Duration {
	if len(latencies) == 0 {
		return 0
	}

	sorted := slices.Clone(latencies)
	slices.Sort(sorted)

	// nearest-rank: p=0.50 over 100 elements is index 49
	index := max(int(math.Round(p*float64(len(sorted)-1))), 0)
	if index >= len(sorted) {
		index = len(sorted) - 1
	}

	return sorted[index]
}
