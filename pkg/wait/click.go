package wait

import (
	"context"
	"fmt"
	"time"

	"digital.vasic.webaccept/pkg/failure"
	"digital.vasic.webaccept/pkg/logging"
)

const (
	// DefaultClickAttempts bounds RetryClick.
	DefaultClickAttempts = 10
	// DefaultClickDelay is the pause before each retried click.
	DefaultClickDelay = time.Second
)

// Clicker is anything that can be clicked.
type Clicker interface {
	Click() error
}

// ClickOptions tunes RetryClick. Zero values take the defaults.
type ClickOptions struct {
	// Attempts is the total number of clicks tried.
	Attempts int
	// Delay is slept before every attempt after the first. A
	// negative delay retries immediately.
	Delay time.Duration
	// Scroll brings the target into view after an obstruction.
	Scroll func() error
	// Logger receives retry diagnostics.
	Logger logging.Logger
	// OnRetry is called after each failed attempt.
	OnRetry func(attempt int, err error)
}

func (o ClickOptions) withDefaults() ClickOptions {
	if o.Attempts <= 0 {
		o.Attempts = DefaultClickAttempts
	}
	if o.Delay < 0 {
		o.Delay = 0
	} else if o.Delay == 0 {
		o.Delay = DefaultClickDelay
	}
	if o.Logger == nil {
		o.Logger = logging.NullLogger{}
	}
	return o
}

// RetryClick clicks target, retrying on failure. After an
// obstruction the target is scrolled into view before the next
// attempt. A non-obstruction error on the final attempt is returned
// as is; an obstruction on the final attempt is returned as an
// Obstructed failure wrapping it. Cancelling ctx stops retries
// and returns the last error seen.
func RetryClick(
	ctx context.Context, target Clicker, opts ClickOptions,
) error {
	opts = opts.withDefaults()

	var lastErr error
	for attempt := 1; attempt <= opts.Attempts; attempt++ {
		if attempt > 1 && !Sleep(ctx, opts.Delay) {
			return cancelled(ctx, lastErr)
		}

		err := target.Click()
		if err == nil {
			return nil
		}
		lastErr = err
		if opts.OnRetry != nil {
			opts.OnRetry(attempt, err)
		}

		if !failure.IsObstructed(err) {
			if attempt == opts.Attempts {
				return err
			}
			opts.Logger.Warn("click failed, retrying",
				logging.IntField("attempt", attempt),
				logging.ErrorField(err),
			)
			continue
		}

		opts.Logger.Debug("click obstructed, scrolling into view",
			logging.IntField("attempt", attempt),
		)
		if opts.Scroll != nil {
			if serr := opts.Scroll(); serr != nil {
				opts.Logger.Warn("scroll into view failed",
					logging.ErrorField(serr),
				)
			}
		}
	}

	return failure.Wrap(
		failure.KindObstructed, "click",
		fmt.Sprintf("%d attempts", opts.Attempts), lastErr,
	)
}

func cancelled(ctx context.Context, lastErr error) error {
	if lastErr != nil {
		return lastErr
	}
	return ctx.Err()
}
