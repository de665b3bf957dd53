package limits

import (
	"context"
	"time"
)

// SleepFunc is the waiting primitive used by the limiter and breaker.
// Injectable via the config structs so tests can observe computed
// durations without actually waiting.
type SleepFunc func(ctx context.Context, d time.Duration)

// ctxSleep waits for d or until ctx is cancelled, whichever comes first.
// A cancelled wait ends the current sleep early; the caller's loop decides
// what to do with the cancellation at its own boundary.
func ctxSleep(ctx context.Context, d time.Duration) {
	if d <= 0 {
		return
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
