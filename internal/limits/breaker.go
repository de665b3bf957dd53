package limits

import (
	"context"
	"fmt"
	"math"
	"sync"
	"time"
)

// Action records the last timing decision the breaker took.
type Action string

const (
	ActionNone     Action = ""
	ActionBackoff  Action = "backoff"
	ActionCooldown Action = "cooldown"
)

// BreakerState is a point-in-time copy of the breaker for status reporting.
// Invariant: Open == (Failures >= Threshold).
type BreakerState struct {
	Failures   int    `json:"failures"`
	Threshold  int    `json:"threshold"`
	Open       bool   `json:"open"`
	LastAction Action `json:"last_action,omitempty"`
}

// BreakerConfig holds circuit breaker settings, all in whole seconds.
type BreakerConfig struct {
	// FailureThreshold is the consecutive failure count at which the
	// breaker opens and a cooldown becomes eligible. Must be positive.
	FailureThreshold int

	// CooldownSeconds is the fixed long pause taken when the breaker is
	// open and the failure mode warrants it.
	CooldownSeconds int

	// BackoffBase and BackoffMax bound the exponential backoff window.
	BackoffBase int
	BackoffMax  int

	// Sleep overrides the waiting primitive. Nil means a real,
	// context-aware sleep.
	Sleep SleepFunc
}

// CircuitBreaker is a minimal failure-count breaker with exponential
// backoff and a long cooldown. CLOSED while failures < threshold, OPEN at or
// above it; OPEN is not terminal, CooldownSleep closes it again by resetting.
type CircuitBreaker struct {
	mu          sync.Mutex
	threshold   int
	cooldown    int
	backoffBase int
	backoffMax  int
	fails       int
	lastAction  Action
	sleep       SleepFunc
}

// NewCircuitBreaker validates the threshold and builds a breaker.
func NewCircuitBreaker(cfg BreakerConfig) (*CircuitBreaker, error) {
	if cfg.FailureThreshold <= 0 {
		return nil, fmt.Errorf("%w: failure threshold must be > 0, got %d", ErrInvalidConfig, cfg.FailureThreshold)
	}
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = ctxSleep
	}
	return &CircuitBreaker{
		threshold:   cfg.FailureThreshold,
		cooldown:    cfg.CooldownSeconds,
		backoffBase: cfg.BackoffBase,
		backoffMax:  cfg.BackoffMax,
		sleep:       sleep,
	}, nil
}

// State returns a snapshot copy; safe to call from any goroutine.
func (b *CircuitBreaker) State() BreakerState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return BreakerState{
		Failures:   b.fails,
		Threshold:  b.threshold,
		Open:       b.fails >= b.threshold,
		LastAction: b.lastAction,
	}
}

// RecordFailure increments the consecutive failure count.
func (b *CircuitBreaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fails++
}

// Reset clears the failure count and last action. Called after any cycle
// that completes without special handling.
func (b *CircuitBreaker) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fails = 0
	b.lastAction = ActionNone
}

// ShouldCooldown reports whether the failure count has reached the threshold.
func (b *CircuitBreaker) ShouldCooldown() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.fails >= b.threshold
}

// ComputeBackoff returns min(base * 2^max(0, fails-1), backoffMax) plus a
// uniform jitter of up to half the base, in seconds. Monotonically
// non-decreasing in the failure count until capped.
func (b *CircuitBreaker) ComputeBackoff() int {
	b.mu.Lock()
	fails := b.fails
	b.mu.Unlock()

	exp := float64(b.backoffBase) * math.Pow(2, math.Max(0, float64(fails-1)))
	if exp > float64(b.backoffMax) {
		exp = float64(b.backoffMax)
	}
	return int(exp) + randRange(0, b.backoffBase/2)
}

// BackoffSleep waits the computed backoff and records it as the last action.
// The failure count is left untouched so repeated failures keep doubling.
func (b *CircuitBreaker) BackoffSleep(ctx context.Context) int {
	dur := b.ComputeBackoff()
	b.sleep(ctx, time.Duration(dur)*time.Second)
	b.mu.Lock()
	b.lastAction = ActionBackoff
	b.mu.Unlock()
	return dur
}

// CooldownSleep waits the fixed cooldown, records the action, then resets
// the breaker. The reset clears LastAction as well, so callers that need to
// report "cooldown" must capture the return value or a State() snapshot
// before their next breaker call; this ordering is deliberate and pinned by
// tests.
func (b *CircuitBreaker) CooldownSleep(ctx context.Context) int {
	b.sleep(ctx, time.Duration(b.cooldown)*time.Second)
	b.mu.Lock()
	b.lastAction = ActionCooldown
	b.mu.Unlock()
	b.Reset()
	return b.cooldown
}
