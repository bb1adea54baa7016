// Package element resolves locators against the live browser with
// bounded waits and activates elements through the click-retry
// primitive. An Accessor caches nothing: every call re-resolves.
package element

import (
	"context"
	"strings"
	"time"

	"digital.vasic.webaccept/pkg/driver"
	"digital.vasic.webaccept/pkg/failure"
	"digital.vasic.webaccept/pkg/locator"
	"digital.vasic.webaccept/pkg/logging"
	"digital.vasic.webaccept/pkg/metrics"
	"digital.vasic.webaccept/pkg/wait"
)

// DefaultTimeout bounds every resolution unless overridden.
const DefaultTimeout = 20 * time.Second

// ScrollIntoViewScript centres its first argument in the viewport.
const ScrollIntoViewScript = "arguments[0].scrollIntoView({block: 'center'});"

// Accessor performs element lookups and interactions.
type Accessor struct {
	drv      driver.Driver
	timeout  time.Duration
	interval time.Duration
	click    wait.ClickOptions
	logger   logging.Logger
	metrics  metrics.Recorder
}

// Option configures an Accessor.
type Option func(*Accessor)

// WithTimeout sets the default resolution timeout.
func WithTimeout(d time.Duration) Option {
	return func(a *Accessor) { a.timeout = d }
}

// WithInterval sets the poll interval.
func WithInterval(d time.Duration) Option {
	return func(a *Accessor) { a.interval = d }
}

// WithClickRetry sets the attempt count and delay used by Activate.
func WithClickRetry(attempts int, delay time.Duration) Option {
	return func(a *Accessor) {
		a.click.Attempts = attempts
		a.click.Delay = delay
	}
}

// WithLogger sets the logger.
func WithLogger(l logging.Logger) Option {
	return func(a *Accessor) { a.logger = l }
}

// WithMetrics sets the metrics recorder.
func WithMetrics(m metrics.Recorder) Option {
	return func(a *Accessor) { a.metrics = m }
}

// New creates an Accessor over drv.
func New(drv driver.Driver, opts ...Option) *Accessor {
	a := &Accessor{
		drv:      drv,
		timeout:  DefaultTimeout,
		interval: wait.DefaultInterval,
		logger:   logging.NullLogger{},
		metrics:  metrics.NoopRecorder{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CallOption overrides defaults for a single call.
type CallOption func(*call)

type call struct {
	timeout time.Duration
}

// Timeout overrides the resolution timeout for one call.
func Timeout(d time.Duration) CallOption {
	return func(c *call) { c.timeout = d }
}

func (a *Accessor) callTimeout(opts []CallOption) time.Duration {
	c := call{timeout: a.timeout}
	for _, opt := range opts {
		opt(&c)
	}
	return c.timeout
}

// Driver returns the driver the accessor resolves against.
func (a *Accessor) Driver() driver.Driver {
	return a.drv
}

// Interval returns the poll interval.
func (a *Accessor) Interval() time.Duration {
	return a.interval
}

// ResolvePresent waits until at least one element matches loc and
// returns the first match.
func (a *Accessor) ResolvePresent(
	ctx context.Context, loc locator.Locator, opts ...CallOption,
) (driver.Element, error) {
	el, ok := wait.Poll(ctx, func() (driver.Element, bool, error) {
		found, err := a.drv.FindElements(loc)
		if err != nil || len(found) == 0 {
			return nil, false, err
		}
		return found[0], true, nil
	}, a.callTimeout(opts), a.interval)
	if !ok {
		return nil, failure.New(
			failure.KindNotFound, "resolve present", loc.String(),
		)
	}
	return el, nil
}

// ResolveClickable waits until the first match of loc is displayed
// and enabled. A match that never becomes interactable is
// NotClickable; no match at all is NotFound.
func (a *Accessor) ResolveClickable(
	ctx context.Context, loc locator.Locator, opts ...CallOption,
) (driver.Element, error) {
	seen := false
	el, ok := wait.Poll(ctx, func() (driver.Element, bool, error) {
		found, err := a.drv.FindElements(loc)
		if err != nil || len(found) == 0 {
			return nil, false, err
		}
		seen = true
		ready, err := interactable(found[0])
		return found[0], ready, err
	}, a.callTimeout(opts), a.interval)
	if ok {
		return el, nil
	}
	kind := failure.KindNotClickable
	if !seen {
		kind = failure.KindNotFound
	}
	return nil, failure.New(kind, "resolve clickable", loc.String())
}

// ResolveAll waits until at least one element matches loc and
// returns every match.
func (a *Accessor) ResolveAll(
	ctx context.Context, loc locator.Locator, opts ...CallOption,
) ([]driver.Element, error) {
	els, ok := wait.Poll(ctx, func() ([]driver.Element, bool, error) {
		found, err := a.drv.FindElements(loc)
		return found, err == nil && len(found) > 0, err
	}, a.callTimeout(opts), a.interval)
	if !ok {
		return nil, failure.New(
			failure.KindNotFound, "resolve all", loc.String(),
		)
	}
	return els, nil
}

// IsVisible reports whether the first match of loc becomes
// displayed within the timeout. It never fails.
func (a *Accessor) IsVisible(
	ctx context.Context, loc locator.Locator, opts ...CallOption,
) bool {
	return wait.Until(ctx, func() (bool, error) {
		found, err := a.drv.FindElements(loc)
		if err != nil || len(found) == 0 {
			return false, err
		}
		return found[0].Displayed()
	}, a.callTimeout(opts), a.interval)
}

// Activate clicks el with retry, scrolling it into view when another
// element intercepts the click.
func (a *Accessor) Activate(ctx context.Context, el driver.Element) error {
	opts := a.click
	opts.Logger = a.logger
	opts.Scroll = func() error {
		return a.drv.ExecuteScript(ScrollIntoViewScript, el)
	}
	opts.OnRetry = func(_ int, err error) {
		reason := "error"
		if failure.IsObstructed(err) {
			reason = "obstructed"
		}
		a.metrics.RecordClickRetry(reason)
	}
	return wait.RetryClick(ctx, el, opts)
}

// URLContains reports whether the current URL contains fragment
// within the timeout.
func (a *Accessor) URLContains(
	ctx context.Context, fragment string, opts ...CallOption,
) bool {
	return wait.Until(ctx, func() (bool, error) {
		url, err := a.drv.CurrentURL()
		if err != nil {
			return false, err
		}
		return strings.Contains(url, fragment), nil
	}, a.callTimeout(opts), a.interval)
}

// Attribute resolves loc and returns the named attribute of the
// first match.
func (a *Accessor) Attribute(
	ctx context.Context, loc locator.Locator, name string,
	opts ...CallOption,
) (string, error) {
	el, err := a.ResolvePresent(ctx, loc, opts...)
	if err != nil {
		return "", err
	}
	return el.Attribute(name)
}

// Texts resolves every match of loc and returns their texts in
// document order. Elements whose text cannot be read are skipped.
func (a *Accessor) Texts(
	ctx context.Context, loc locator.Locator, opts ...CallOption,
) ([]string, error) {
	els, err := a.ResolveAll(ctx, loc, opts...)
	if err != nil {
		return nil, err
	}
	texts := make([]string, 0, len(els))
	for _, el := range els {
		text, err := el.Text()
		if err != nil {
			a.logger.Debug("element text unavailable",
				logging.StringField("locator", loc.String()),
				logging.ErrorField(err),
			)
			continue
		}
		texts = append(texts, text)
	}
	return texts, nil
}

func interactable(el driver.Element) (bool, error) {
	shown, err := el.Displayed()
	if err != nil || !shown {
		return false, err
	}
	return el.Enabled()
}
