// Package backoff computes the delays between retry attempts of a task.
//
// A Strategy is created per task and is not safe for concurrent use.
package backoff

import (
	"math/rand/v2"
	"time"
)

// Prevent overflow in the 1<<attempt shift.
const maxShift = 62

// Kind selects the delay algorithm.
type Kind int

const (
	// Exponential doubles the delay on every attempt (default).
	Exponential Kind = iota
	// Jittered is Exponential with a random ±jitter fraction applied.
	Jittered
	// Decorrelated picks each delay at random between the initial delay and
	// three times the previous one (AWS "decorrelated jitter").
	Decorrelated
)

func (k Kind) String() string {
	switch k {
	case Exponential:
		return "exponential"
	case Jittered:
		return "jittered"
	case Decorrelated:
		return "decorrelated"
	default:
		return "unknown"
	}
}

// Strategy yields the delay to sleep before a retry.
// attempt is 0-indexed: 0 is the delay before the first retry.
type Strategy interface {
	NextDelay(attempt int) time.Duration
}

// Config describes a Strategy. Zero MaxDelay means InitialDelay is also the cap.
type Config struct {
	Kind         Kind
	InitialDelay time.Duration
	MaxDelay     time.Duration
	JitterFactor float64
}

// New builds a fresh Strategy from cfg.
func New(cfg Config) Strategy {
	maxDelay := max(cfg.MaxDelay, cfg.InitialDelay)

	switch cfg.Kind {
	case Jittered:
		return &jittered{initial: cfg.InitialDelay, max: maxDelay, factor: clamp(cfg.JitterFactor, 0, 1)}
	case Decorrelated:
		return &decorrelated{initial: cfg.InitialDelay, max: maxDelay, prev: cfg.InitialDelay}
	default:
		return &exponential{initial: cfg.InitialDelay, max: maxDelay}
	}
}

type exponential struct {
	initial, max time.Duration
}

func (e *exponential) NextDelay(attempt int) time.Duration {
	return exponentialDelay(attempt, e.initial, e.max)
}

type jittered struct {
	initial, max time.Duration
	factor       float64 // 0.1 = ±10%
}

func (j *jittered) NextDelay(attempt int) time.Duration {
	if attempt < 0 {
		return 0
	}

	base := exponentialDelay(attempt, j.initial, j.max)
	multiplier := 1.0 + (rand.Float64()*2-1)*j.factor // #nosec G404 -- jitter does not need crypto rand
	return clamp(time.Duration(float64(base)*multiplier), 0, j.max)
}

type decorrelated struct {
	initial, max, prev time.Duration
}

// NextDelay returns random(initial, prev*3), capped at max.
func (d *decorrelated) NextDelay(attempt int) time.Duration {
	if attempt <= 0 {
		d.prev = d.initial
		return d.initial
	}

	upper := min(d.prev*3, d.max)
	span := upper - d.initial
	if span <= 0 {
		d.prev = d.initial
		return d.initial
	}

	d.prev = d.initial + rand.N(span) // #nosec G404 -- jitter does not need crypto rand
	return d.prev
}

func exponentialDelay(attempt int, initial, maxDelay time.Duration) time.Duration {
	if attempt < 0 {
		return 0
	}
	if attempt >= maxShift {
		return maxDelay
	}

	delay := time.Duration(int64(1)<<uint(attempt)) * initial
	if delay > maxDelay || delay < 0 {
		return maxDelay
	}
	return delay
}

func clamp[T int | int64 | float64 | time.Duration](v, lo, hi T) T {
	return max(lo, min(v, hi))
}
