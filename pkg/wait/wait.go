// Package wait provides the bounded polling and click-retry
// primitives every element interaction goes through. All primitives
// block the calling goroutine.
package wait

import (
	"context"
	"time"
)

// DefaultInterval is the poll interval used when none is given.
const DefaultInterval = 500 * time.Millisecond

// Poll calls fn until it reports done, the timeout elapses or ctx is
// cancelled. The first call is immediate and one last call is made
// at the deadline. Errors from fn count as "not yet". The returned
// bool is false on timeout or cancellation.
func Poll[T any](
	ctx context.Context,
	fn func() (T, bool, error),
	timeout, interval time.Duration,
) (T, bool) {
	if interval <= 0 {
		interval = DefaultInterval
	}
	deadline := time.Now().Add(timeout)

	for {
		if ctx.Err() != nil {
			var zero T
			return zero, false
		}
		if v, done, err := fn(); err == nil && done {
			return v, true
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			var zero T
			return zero, false
		}
		if !Sleep(ctx, min(interval, remaining)) {
			var zero T
			return zero, false
		}
	}
}

// Until polls predicate until it holds or the timeout elapses. It
// never returns an error: timeout and cancellation mean false.
func Until(
	ctx context.Context,
	predicate func() (bool, error),
	timeout, interval time.Duration,
) bool {
	_, ok := Poll(ctx, func() (struct{}, bool, error) {
		done, err := predicate()
		return struct{}{}, done, err
	}, timeout, interval)
	return ok
}

// Sleep pauses for d. It returns false if ctx ends first.
func Sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
