// Package limits provides the pacing primitives of the monitor: a jittered
// rate limiter and a failure-count circuit breaker. Duration computation is
// side-effect free and kept separate from the blocking helpers so both can
// be unit tested and reused.
package limits

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// ErrInvalidConfig is returned by constructors for unusable settings.
// Configuration errors are the only errors this package surfaces; everything
// at steady state is expressed as a wait duration.
var ErrInvalidConfig = errors.New("invalid configuration")

// LimiterConfig holds the interval window for the rate limiter.
type LimiterConfig struct {
	// MinInterval and MaxInterval bound the base wait in seconds.
	MinInterval int
	MaxInterval int

	// JitterRatio perturbs the base by +/- this fraction. Must be in [0, 1].
	JitterRatio float64

	// Sleep overrides the waiting primitive. Nil means a real,
	// context-aware sleep.
	Sleep SleepFunc
}

// RateLimiter computes jittered wait durations within a min/max window.
// Jitter keeps the probing pattern less predictable to the target site.
type RateLimiter struct {
	min    int
	max    int
	jitter float64
	sleep  SleepFunc
}

// NewRateLimiter validates the window and builds a limiter.
func NewRateLimiter(cfg LimiterConfig) (*RateLimiter, error) {
	if cfg.MinInterval <= 0 || cfg.MaxInterval < cfg.MinInterval {
		return nil, fmt.Errorf("%w: interval bounds min=%d max=%d", ErrInvalidConfig, cfg.MinInterval, cfg.MaxInterval)
	}
	if cfg.JitterRatio < 0 || cfg.JitterRatio > 1 {
		return nil, fmt.Errorf("%w: jitter ratio %v outside [0,1]", ErrInvalidConfig, cfg.JitterRatio)
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = ctxSleep
	}
	return &RateLimiter{
		min:    cfg.MinInterval,
		max:    cfg.MaxInterval,
		jitter: cfg.JitterRatio,
		sleep:  sleep,
	}, nil
}

// ComputeWait returns a jittered wait duration in whole seconds.
// A base <= 0 draws the base uniformly from [min, max]. The result always
// lies in [max(1, base-delta), base+delta] where delta = floor(base*jitter).
func (l *RateLimiter) ComputeWait(base int) int {
	if base <= 0 {
		base = randRange(l.min, l.max)
	}
	delta := int(float64(base) * l.jitter)
	lo := base - delta
	if lo < 1 {
		lo = 1
	}
	return randRange(lo, base+delta)
}

// SleepWithJitter computes a jittered wait and blocks for it. The computed
// duration is returned even when the wait is cut short by ctx cancellation.
func (l *RateLimiter) SleepWithJitter(ctx context.Context, base int) int {
	wait := l.ComputeWait(base)
	l.sleep(ctx, time.Duration(wait)*time.Second)
	return wait
}

// randRange returns a uniform random integer in [lo, hi].
func randRange(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + rand.IntN(hi-lo+1)
}
