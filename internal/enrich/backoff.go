package enrich

import (
	"context"
	"time"
)

// MaxBackoff bounds every wait returned by Backoff.
const MaxBackoff = 10 * time.Minute

// Backoff returns the wait before retry number attempt (zero based):
// base, 2*base, 4*base and so on, capped at MaxBackoff.
func Backoff(base time.Duration, attempt int) time.Duration {
	if base <= 0 || attempt < 0 {
		return 0
	}
	if attempt > 30 {
		attempt = 30
	}
	if base > MaxBackoff>>uint(attempt) {
		return MaxBackoff
	}
	return base << uint(attempt)
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// ContextSleep is the default SleepFunc.
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
