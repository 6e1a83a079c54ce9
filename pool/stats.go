package pool

import "sync/atomic"

// Stats is a point-in-time snapshot of a pool's counters.
// Fields are read independently, so a snapshot taken while tasks are moving
// may be off by the tasks in flight.
type Stats struct {
	Workers   int    // fixed worker count, 0 before Start
	Queued    int    // tasks waiting in the queue
	Active    int64  // tasks executing right now
	Submitted uint64 // tasks accepted into the queue
	Rejected  uint64 // submissions refused (stopped pool, full queue, context)
	Completed uint64 // tasks whose Future got a value
	Failed    uint64 // tasks whose Future got an error, panics included
	Panicked  uint64 // tasks that panicked
	Retries   uint64 // extra attempts made by the retry policy
}

// Finished returns the number of tasks whose Future has been settled.
func (s Stats) Finished() uint64 {
	return s.Completed + s.Failed
}

type counters struct {
	active    atomic.Int64
	submitted atomic.Uint64
	rejected  atomic.Uint64
	completed atomic.Uint64
	failed    atomic.Uint64
	panicked  atomic.Uint64
	retries   atomic.Uint64
}

// Stats returns a snapshot of the pool's counters.
func (p *ThreadPool) Stats() Stats {
	return Stats{
		Workers:   p.WorkerCount(),
		Queued:    p.queue.Len(),
		Active:    p.stats.active.Load(),
		Submitted: p.stats.submitted.Load(),
		Rejected:  p.stats.rejected.Load(),
		Completed: p.stats.completed.Load(),
		Failed:    p.stats.failed.Load(),
		Panicked:  p.stats.panicked.Load(),
		Retries:   p.stats.retries.Load(),
	}
}
