package runner

import (
	"io"

	"digital.vasic.webaccept/pkg/logging"
	"digital.vasic.webaccept/pkg/metrics"
	"digital.vasic.webaccept/pkg/monitor"
	"digital.vasic.webaccept/pkg/report"
)

// Option configures a Controller.
type Option func(*Controller)

// WithSessionOpener sets how the browser session is opened.
func WithSessionOpener(open SessionOpener) Option {
	return func(c *Controller) {
		c.opener = open
	}
}

// WithSuite sets the factory that builds the cases against the
// opened session.
func WithSuite(factory SuiteFactory) Option {
	return func(c *Controller) {
		c.suite = factory
	}
}

// WithLogger sets the logger used by the controller.
func WithLogger(logger logging.Logger) Option {
	return func(c *Controller) {
		c.logger = logger
	}
}

// WithMetrics sets the metrics recorder.
func WithMetrics(rec metrics.Recorder) Option {
	return func(c *Controller) {
		c.metrics = rec
	}
}

// WithMonitor feeds run events into collector.
func WithMonitor(collector *monitor.EventCollector) Option {
	return func(c *Controller) {
		c.monitor = collector
	}
}

// WithFilter restricts which cases run. Excluded cases are
// recorded as skipped.
func WithFilter(f Filter) Option {
	return func(c *Controller) {
		c.filter = f
	}
}

// WithPreHook adds a hook run before each case. A failing pre-hook
// fails the case without running its steps.
func WithPreHook(h Hook) Option {
	return func(c *Controller) {
		c.preHooks = append(c.preHooks, h)
	}
}

// WithPostHook adds a hook run after each case. Post-hook errors
// are logged and do not change the verdict.
func WithPostHook(h Hook) Option {
	return func(c *Controller) {
		c.postHooks = append(c.postHooks, h)
	}
}

// WithReporter adds a reporter invoked once the run finishes.
func WithReporter(r report.Reporter) Option {
	return func(c *Controller) {
		c.reporters = append(c.reporters, r)
	}
}

// WithOutput sets where verdict lines are printed. A nil writer
// disables them. colorize enables terminal colour.
func WithOutput(w io.Writer, colorize bool) Option {
	return func(c *Controller) {
		c.output = w
		c.colorize = colorize
	}
}
