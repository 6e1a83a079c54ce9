package pool

import (
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestStats(t *testing.T) {
	p := New()
	assert.Equal(t, Stats{}, p.Stats())

	require.NoError(t, p.Start(2))
	release := blockWorker(t, p)

	assert.Equal(t, 2, p.Stats().Workers)
	assert.Equal(t, int64(1), p.Stats().Active)

	fs := []*Future[int]{}
	for i := range 5 {
		f, err := Submit(p, func() (int, error) {
			if i == 0 {
				return 0, errors.New("failed")
			}
			if i == 1 {
				panic("boom")
			}
			return i, nil
		})
		require.NoError(t, err)
		fs = append(fs, f)
	}
	for _, f := range fs {
		_, _ = f.Get()
	}

	release()
	p.Stop()

	_, err := Go(p, func() {})
	require.ErrorIs(t, err, ErrPoolStopped)

	stats := p.Stats()
	assert.Equal(t, 2, stats.Workers)
	assert.Equal(t, 0, stats.Queued)
	assert.Equal(t, int64(0), stats.Active)
	assert.Equal(t, uint64(6), stats.Submitted)
	assert.Equal(t, uint64(1), stats.Rejected)
	assert.Equal(t, uint64(4), stats.Completed) // 3 values + the blocking task
	assert.Equal(t, uint64(2), stats.Failed)
	assert.Equal(t, uint64(1), stats.Panicked)
	assert.Equal(t, uint64(6), stats.Finished())
}

func TestLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	logger := zap.New(core)

	p := New(WithLogger(logger), WithName("ingest"))
	require.NoError(t, p.Start(2))
	assert.Equal(t, "ingest", p.Name())

	f, err := Go(p, func() { panic("boom") })
	require.NoError(t, err)
	_, _ = f.Get()

	p.Stop()

	started := logs.FilterMessage("pool started").All()
	require.Len(t, started, 1)
	assert.Equal(t, "threadpool", started[0].LoggerName)
	assert.Equal(t, int64(2), started[0].ContextMap()["workers"])
	assert.Equal(t, "ingest", started[0].ContextMap()["pool"])

	panicked := logs.FilterMessage("task panicked").All()
	require.Len(t, panicked, 1)
	assert.Equal(t, zapcore.WarnLevel, panicked[0].Level)
	assert.Equal(t, f.ID(), panicked[0].ContextMap()["task"])

	assert.Equal(t, 1, logs.FilterMessage("pool stopping").Len())
	assert.Equal(t, 2, logs.FilterMessage("worker exited").Len())
}

func TestLogging_StartFailure(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)

	p := New(
		WithLogger(zap.New(core)),
		withWorkerSetup(func(id int) error { return errors.New("no thread") }),
	)
	require.ErrorIs(t, p.Start(3), ErrResourceExhausted)

	entries := logs.FilterMessage("pool failed to start").All()
	require.Len(t, entries, 1)
	assert.Equal(t, zapcore.ErrorLevel, entries[0].Level)
	assert.Equal(t, int64(3), entries[0].ContextMap()["failed"])
}

func TestLogging_NilLoggerIgnored(t *testing.T) {
	p := New(WithLogger(nil))
	require.NoError(t, p.Start(1))
	defer p.Stop()

	f, err := Submit(p, func() (int, error) { return 1, nil })
	require.NoError(t, err)

	v, err := f.GetWithTimeout(time.Second)
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestStats_FinishedNeverExceedsSubmitted(t *testing.T) {
	var (
		p          *ThreadPool
		violations atomic.Int64
	)
	p = New(WithOnTaskEnd(func(uint64, error) {
		if s := p.Stats(); s.Finished() > s.Submitted {
			violations.Add(1)
		}
	}))
	require.NoError(t, p.Start(4))

	for range 20000 {
		_, err := Go(p, func() {})
		require.NoError(t, err)
	}
	p.Stop()

	assert.Zero(t, violations.Load(), "a task finished before its submission was counted")
	assert.Equal(t, uint64(20000), p.Stats().Submitted)
	assert.Equal(t, uint64(20000), p.Stats().Finished())
}

func TestStats_RejectedSubmissionNotCounted(t *testing.T) {
	p := startPool(t, 1, WithQueueCapacity(1), WithRejectWhenFull())
	release := blockWorker(t, p)
	defer release()

	_, err := Go(p, func() {})
	require.NoError(t, err)
	_, err = Go(p, func() {})
	require.ErrorIs(t, err, ErrQueueFull)

	stats := p.Stats()
	assert.Equal(t, uint64(2), stats.Submitted) // the blocking task + one queued
	assert.Equal(t, uint64(1), stats.Rejected)
}
