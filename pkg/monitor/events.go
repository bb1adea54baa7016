// Package monitor collects run lifecycle events and exposes them to
// live observers: a JSON dashboard snapshot and a websocket feed.
package monitor

import (
	"time"
)

// EventType represents the type of run event.
type EventType string

const (
	EventRunStarted  EventType = "run_started"
	EventCaseStarted EventType = "case_started"
	EventCasePassed  EventType = "case_passed"
	EventCaseFailed  EventType = "case_failed"
	EventCaseSkipped EventType = "case_skipped"
	EventStepFailed  EventType = "step_failed"
	EventRunFinished EventType = "run_finished"
)

// RunEvent represents a lifecycle event during a test run.
type RunEvent struct {
	Type      EventType     `json:"type"`
	RunID     string        `json:"run_id,omitempty"`
	Case      string        `json:"case,omitempty"`
	Step      string        `json:"step,omitempty"`
	Message   string        `json:"message,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}

// IsCaseFinal reports whether the event closes a case.
func (e RunEvent) IsCaseFinal() bool {
	switch e.Type {
	case EventCasePassed, EventCaseFailed, EventCaseSkipped:
		return true
	}
	return false
}
