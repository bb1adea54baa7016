package monitor

import (
	"sync"
	"time"

	"digital.vasic.webaccept/pkg/scenario"
)

// EventCollector captures run events and timing data.
type EventCollector struct {
	mu       sync.RWMutex
	runID    string
	events   []RunEvent
	handlers []func(RunEvent)
	stats    CollectorStats
}

// CollectorStats holds aggregate statistics.
type CollectorStats struct {
	Cases       int           `json:"cases"`
	Passed      int           `json:"passed"`
	Failed      int           `json:"failed"`
	Skipped     int           `json:"skipped"`
	StepsFailed int           `json:"steps_failed"`
	StartTime   time.Time     `json:"start_time"`
	Duration    time.Duration `json:"duration"`
}

// NewEventCollector creates a new event collector.
func NewEventCollector() *EventCollector {
	return &EventCollector{
		events: make([]RunEvent, 0, 64),
		stats:  CollectorStats{StartTime: time.Now()},
	}
}

// OnEvent registers a handler to be called for each event.
// Handlers run synchronously on the emitting goroutine.
func (c *EventCollector) OnEvent(handler func(RunEvent)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers = append(c.handlers, handler)
}

// Emit records an event and notifies all handlers. Events without
// a run ID inherit the one from the last run_started event.
func (c *EventCollector) Emit(event RunEvent) {
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}

	c.mu.Lock()
	if event.Type == EventRunStarted && event.RunID != "" {
		c.runID = event.RunID
	}
	if event.RunID == "" {
		event.RunID = c.runID
	}
	c.events = append(c.events, event)
	switch event.Type {
	case EventCasePassed:
		c.stats.Cases++
		c.stats.Passed++
	case EventCaseFailed:
		c.stats.Cases++
		c.stats.Failed++
	case EventCaseSkipped:
		c.stats.Cases++
		c.stats.Skipped++
	case EventStepFailed:
		c.stats.StepsFailed++
	}
	c.stats.Duration = time.Since(c.stats.StartTime)
	handlers := make([]func(RunEvent), len(c.handlers))
	copy(handlers, c.handlers)
	c.mu.Unlock()

	for _, h := range handlers {
		h(event)
	}
}

// EmitRunStarted emits a run started event.
func (c *EventCollector) EmitRunStarted(runID string) {
	c.Emit(RunEvent{Type: EventRunStarted, RunID: runID})
}

// EmitCaseStarted emits a case started event.
func (c *EventCollector) EmitCaseStarted(name string) {
	c.Emit(RunEvent{Type: EventCaseStarted, Case: name})
}

// EmitCaseFinished emits the event matching the case verdict.
func (c *EventCollector) EmitCaseFinished(
	name string,
	verdict scenario.Verdict,
	message string,
	duration time.Duration,
) {
	var typ EventType
	switch verdict {
	case scenario.Passed:
		typ = EventCasePassed
	case scenario.Skipped:
		typ = EventCaseSkipped
	default:
		typ = EventCaseFailed
	}
	c.Emit(RunEvent{
		Type:     typ,
		Case:     name,
		Message:  message,
		Duration: duration,
	})
}

// EmitStepFailed emits a step failed event.
func (c *EventCollector) EmitStepFailed(caseName, step, message string) {
	c.Emit(RunEvent{
		Type:    EventStepFailed,
		Case:    caseName,
		Step:    step,
		Message: message,
	})
}

// EmitRunFinished emits a run finished event.
func (c *EventCollector) EmitRunFinished(duration time.Duration) {
	c.Emit(RunEvent{Type: EventRunFinished, Duration: duration})
}

// Events returns a copy of all collected events.
func (c *EventCollector) Events() []RunEvent {
	c.mu.RLock()
	defer c.mu.RUnlock()
	result := make([]RunEvent, len(c.events))
	copy(result, c.events)
	return result
}

// Stats returns the current aggregate statistics.
func (c *EventCollector) Stats() CollectorStats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.Duration = time.Since(s.StartTime)
	return s
}

// Reset clears all collected events and statistics. Handlers stay
// registered.
func (c *EventCollector) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.runID = ""
	c.events = c.events[:0]
	c.stats = CollectorStats{StartTime: time.Now()}
}
