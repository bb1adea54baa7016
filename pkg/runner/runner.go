// Package runner provides the test run controller. It owns the
// browser session for the length of a run, executes the suite's
// cases sequentially and folds their outcomes into an ordered
// verdict mapping.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"time"

	"github.com/google/uuid"

	"digital.vasic.webaccept/pkg/config"
	"digital.vasic.webaccept/pkg/driver"
	"digital.vasic.webaccept/pkg/env"
	"digital.vasic.webaccept/pkg/logging"
	"digital.vasic.webaccept/pkg/metrics"
	"digital.vasic.webaccept/pkg/monitor"
	"digital.vasic.webaccept/pkg/report"
	"digital.vasic.webaccept/pkg/scenario"
)

// ErrNoSuite is returned by Run when no suite factory is set.
var ErrNoSuite = errors.New("runner: no suite configured")

// SessionOpener opens the remote browser session for a run.
type SessionOpener func(
	ctx context.Context,
	opts driver.Options,
) (driver.Session, error)

// SuiteFactory builds the cases of a run against the opened
// session. The driver is borrowed: cases must not quit it.
type SuiteFactory func(drv driver.Driver) (scenario.Suite, error)

// Hook is a function invoked before or after each case.
type Hook func(ctx context.Context, c scenario.Case) error

// OpenWebDriver is the default SessionOpener. It connects to the
// remote WebDriver endpoint in opts.
func OpenWebDriver(
	ctx context.Context,
	opts driver.Options,
) (driver.Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	wd, err := driver.Open(opts)
	if err != nil {
		return nil, err
	}
	return wd, nil
}

// Controller is the test run controller.
type Controller struct {
	cfg       config.Config
	opener    SessionOpener
	suite     SuiteFactory
	logger    logging.Logger
	metrics   metrics.Recorder
	monitor   *monitor.EventCollector
	filter    Filter
	preHooks  []Hook
	postHooks []Hook
	reporters []report.Reporter
	output    io.Writer
	colorize  bool
}

// New creates a Controller for cfg with the supplied options.
func New(cfg config.Config, opts ...Option) *Controller {
	c := &Controller{
		cfg:      cfg,
		opener:   OpenWebDriver,
		logger:   logging.NullLogger{},
		metrics:  metrics.NoopRecorder{},
		output:   os.Stdout,
		colorize: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = logging.NullLogger{}
	}
	if c.metrics == nil {
		c.metrics = metrics.NoopRecorder{}
	}
	return c
}

// Run opens the session, executes every case and releases the
// session exactly once. It returns an error only when the run could
// not start; case failures are reported as verdicts.
func (c *Controller) Run(ctx context.Context) (*report.Run, error) {
	if c.suite == nil {
		return nil, ErrNoSuite
	}

	run := &report.Run{
		ID:        uuid.NewString(),
		StartTime: time.Now(),
		Verdicts:  scenario.NewVerdicts(),
	}
	logger := c.logger.WithFields(logging.StringField("run_id", run.ID))
	logger.Info("run started",
		logging.StringField("endpoint", env.RedactURL(c.cfg.Endpoint)),
		logging.StringField("filter", c.filter.String()),
	)
	c.emit(func(m *monitor.EventCollector) { m.EmitRunStarted(run.ID) })

	sess, err := c.opener(ctx, c.cfg.DriverOptions())
	if err == nil && sess == nil {
		err = errors.New("opener returned no session")
	}
	if err != nil {
		c.metrics.RecordSession(false)
		logger.Error("failed to open browser session", logging.ErrorField(err))
		c.abort(run)
		return nil, fmt.Errorf("open session: %w", err)
	}
	c.metrics.RecordSession(true)
	defer c.release(sess, logger)

	suite, err := c.suite(sess)
	if err == nil {
		err = suite.Validate()
	}
	if err != nil {
		logger.Error("failed to build suite", logging.ErrorField(err))
		c.abort(run)
		return nil, fmt.Errorf("build suite: %w", err)
	}
	run.Suite = suite.Name

	obs := &observer{c: c, runID: run.ID, logger: logger}
	for _, kase := range suite.Cases {
		result := c.runCase(ctx, kase, obs, logger)
		if err := run.Verdicts.Record(kase.Name, result.Verdict); err != nil {
			logger.Error("verdict not recorded", logging.ErrorField(err))
			continue
		}
		if result.Verdict != scenario.Skipped {
			run.Cases = append(run.Cases, result)
		}

		c.metrics.RecordCase(kase.Name, string(result.Verdict), result.Duration)
		c.emit(func(m *monitor.EventCollector) {
			m.EmitCaseFinished(
				kase.Name, result.Verdict,
				result.Failure.Message(), result.Duration,
			)
		})
	}

	c.finish(run, logger)
	return run, nil
}

// runCase executes one case through hooks and the case boundary.
// Cases excluded by the filter, or reached after ctx is done, are
// skipped.
func (c *Controller) runCase(
	ctx context.Context,
	kase scenario.Case,
	obs scenario.Observer,
	logger logging.Logger,
) *scenario.CaseResult {
	logger = logger.WithFields(logging.CaseField(kase.Name))

	if !c.filter.Match(kase.Name) {
		logger.Info("case skipped by filter")
		return skippedResult(kase.Name)
	}
	if err := ctx.Err(); err != nil {
		logger.Warn("case skipped, run cancelled", logging.ErrorField(err))
		return skippedResult(kase.Name)
	}

	logger.Info("case started", logging.IntField("steps", len(kase.Steps)))
	c.emit(func(m *monitor.EventCollector) { m.EmitCaseStarted(kase.Name) })

	result := c.execute(ctx, kase, obs, logger)

	logger.Info("case finished",
		logging.StringField("verdict", string(result.Verdict)),
		logging.DurationField("duration", result.Duration),
	)
	return result
}

// execute runs the pre-hooks, the case and the post-hooks behind a
// single recover. Step panics are already recovered by the case; this
// catches panics raised by hooks or observers. A failing or panicking
// pre-hook fails the case without running it. A failing or panicking
// post-hook is logged and leaves the verdict unchanged.
func (c *Controller) execute(
	ctx context.Context,
	kase scenario.Case,
	obs scenario.Observer,
	logger logging.Logger,
) (result *scenario.CaseResult) {
	start := time.Now()
	stage := "pre-hook"
	var executed *scenario.CaseResult
	defer func() {
		r := recover()
		if r == nil {
			return
		}
		err, ok := r.(error)
		if !ok {
			err = fmt.Errorf("%v", r)
		}
		if executed != nil {
			logger.Warn("post-hook panicked", logging.ErrorField(err))
			result = executed
			return
		}
		description := "case setup"
		if stage == "case" {
			description = kase.Name
		}
		end := time.Now()
		result = &scenario.CaseResult{
			Name:    kase.Name,
			Verdict: scenario.Failed,
			Failure: &scenario.StepFailure{
				Step:        stage,
				Description: description,
				Err:         err,
				Panicked:    true,
				Stack:       string(debug.Stack()),
			},
			StartTime: start,
			EndTime:   end,
			Duration:  end.Sub(start),
		}
		logger.Error("case panicked outside a step",
			logging.StringField("stage", stage),
			logging.ErrorField(err),
		)
	}()

	for _, hook := range c.preHooks {
		if err := hook(ctx, kase); err != nil {
			logger.Error("pre-hook failed", logging.ErrorField(err))
			now := time.Now()
			return &scenario.CaseResult{
				Name:    kase.Name,
				Verdict: scenario.Failed,
				Failure: &scenario.StepFailure{
					Step:        "pre-hook",
					Description: "case setup",
					Err:         err,
				},
				StartTime: start,
				EndTime:   now,
				Duration:  now.Sub(start),
			}
		}
	}

	stage = "case"
	executed = kase.Execute(ctx, obs)

	for _, hook := range c.postHooks {
		if err := hook(ctx, kase); err != nil {
			logger.Warn("post-hook failed", logging.ErrorField(err))
		}
	}
	return executed
}

// release quits the session. It is deferred once per run.
func (c *Controller) release(sess driver.Session, logger logging.Logger) {
	if err := sess.Quit(); err != nil {
		logger.Warn("failed to close browser session", logging.ErrorField(err))
		return
	}
	logger.Debug("browser session closed")
}

// abort closes a run that never executed a case. Nothing is
// reported.
func (c *Controller) abort(run *report.Run) {
	run.EndTime = time.Now()
	c.emit(func(m *monitor.EventCollector) { m.EmitRunFinished(run.Duration()) })
}

// finish stamps the run, prints verdicts and invokes reporters.
func (c *Controller) finish(run *report.Run, logger logging.Logger) {
	run.EndTime = time.Now()
	c.emit(func(m *monitor.EventCollector) { m.EmitRunFinished(run.Duration()) })

	if c.output != nil {
		vr := report.NewVerdictReporter(c.output, logger, c.colorize)
		if err := vr.Report(run); err != nil {
			logger.Warn("failed to print verdicts", logging.ErrorField(err))
		}
	}
	for _, r := range c.reporters {
		if err := r.Report(run); err != nil {
			logger.Warn("reporter failed", logging.ErrorField(err))
		}
	}

	logger.Info("run finished",
		logging.IntField("passed", run.Verdicts.Count(scenario.Passed)),
		logging.IntField("failed", run.Verdicts.Count(scenario.Failed)),
		logging.IntField("skipped", run.Verdicts.Count(scenario.Skipped)),
		logging.DurationField("duration", run.Duration()),
	)
}

func (c *Controller) emit(fn func(*monitor.EventCollector)) {
	if c.monitor != nil {
		fn(c.monitor)
	}
}

func skippedResult(name string) *scenario.CaseResult {
	now := time.Now()
	return &scenario.CaseResult{
		Name:      name,
		Verdict:   scenario.Skipped,
		StartTime: now,
		EndTime:   now,
	}
}

// observer forwards step outcomes to the step log, metrics and the
// monitor.
type observer struct {
	c      *Controller
	runID  string
	logger logging.Logger
}

func (o *observer) StepStarted(caseName string, step scenario.Step, index int) {
	o.logger.Debug("step started",
		logging.CaseField(caseName),
		logging.StepField(step.Name),
		logging.IntField("index", index),
	)
}

func (o *observer) StepFinished(
	caseName string,
	step scenario.Step,
	failure *scenario.StepFailure,
	duration time.Duration,
) {
	record := logging.StepRecord{
		RunID:       o.runID,
		Case:        caseName,
		Step:        step.Name,
		Description: step.Description,
		Passed:      failure == nil,
		DurationMs:  duration.Milliseconds(),
	}
	if failure != nil {
		record.Error = failure.Message()
		record.Panicked = failure.Panicked
	}
	o.logger.LogStep(record)
	if failure != nil && failure.Panicked {
		o.logger.Debug("step panic stack",
			logging.StepField(step.Name),
			logging.StringField("stack", failure.Stack),
		)
	}

	o.c.metrics.RecordStep(caseName, step.Name, failure == nil, duration)
	if failure != nil {
		o.c.emit(func(m *monitor.EventCollector) {
			m.EmitStepFailed(caseName, step.Name, failure.Message())
		})
	}
}
