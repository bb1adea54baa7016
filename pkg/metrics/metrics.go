// Package metrics records acceptance-run measurements: case
// verdicts, step durations, click retries and session lifecycle.
package metrics

import "time"

// Recorder defines the interface for recording run metrics.
type Recorder interface {
	// RecordCase records a case verdict and its duration.
	RecordCase(name, verdict string, duration time.Duration)
	// RecordStep records a step outcome and its duration.
	RecordStep(caseName, step string, passed bool, duration time.Duration)
	// RecordClickRetry records a failed click attempt; reason is
	// "obstructed" or "error".
	RecordClickRetry(reason string)
	// RecordSession records a session open attempt.
	RecordSession(opened bool)
}

// NoopRecorder is a no-op implementation of Recorder useful for
// testing or when metrics collection is disabled.
type NoopRecorder struct{}

func (NoopRecorder) RecordCase(_, _ string, _ time.Duration)         {}
func (NoopRecorder) RecordStep(_, _ string, _ bool, _ time.Duration) {}
func (NoopRecorder) RecordClickRetry(_ string)                       {}
func (NoopRecorder) RecordSession(_ bool)                            {}
