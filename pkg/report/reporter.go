// Package report renders the outcome of a test run: verdict lines
// on the console, a JSON and Markdown run summary, and JUnit XML.
package report

import (
	"errors"
	"time"

	"digital.vasic.webaccept/pkg/scenario"
)

// Run is the outcome of one test run.
type Run struct {
	ID        string                 `json:"id"`
	Suite     string                 `json:"suite"`
	StartTime time.Time              `json:"start_time"`
	EndTime   time.Time              `json:"end_time"`
	Verdicts  *scenario.Verdicts     `json:"verdicts"`
	Cases     []*scenario.CaseResult `json:"cases"`
}

// Duration returns the wall time of the run.
func (r *Run) Duration() time.Duration {
	if r.EndTime.IsZero() {
		return time.Since(r.StartTime)
	}
	return r.EndTime.Sub(r.StartTime)
}

// Failed reports whether any case failed.
func (r *Run) Failed() bool {
	return r.Verdicts != nil && r.Verdicts.AnyFailed()
}

// Reporter defines the interface for publishing a finished run.
type Reporter interface {
	// Report publishes run. It is called once, after every case
	// has a verdict.
	Report(run *Run) error
}

// ReporterFunc adapts a function to Reporter.
type ReporterFunc func(run *Run) error

// Report calls f(run).
func (f ReporterFunc) Report(run *Run) error {
	return f(run)
}

// Multi runs every reporter and joins their errors.
func Multi(reporters ...Reporter) Reporter {
	return ReporterFunc(func(run *Run) error {
		var errs []error
		for _, r := range reporters {
			if r == nil {
				continue
			}
			if err := r.Report(run); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}
