package monitor

import (
	"sync"
	"time"
)

// Run status values shown on the dashboard.
const (
	StatusIdle    = "idle"
	StatusRunning = "running"
	StatusPassed  = "passed"
	StatusFailed  = "failed"
)

// Dashboard maintains the live state of a run.
type Dashboard struct {
	mu   sync.RWMutex
	view DashboardView
}

// DashboardView is a point-in-time copy of the dashboard.
type DashboardView struct {
	RunID     string               `json:"run_id"`
	StartTime time.Time            `json:"start_time"`
	Status    string               `json:"status"`
	Order     []string             `json:"order"`
	Cases     map[string]CaseState `json:"cases"`
	Summary   DashboardSummary     `json:"summary"`
}

// CaseState represents the current state of a case on the dashboard.
type CaseState struct {
	Name       string        `json:"name"`
	Status     string        `json:"status"`
	FailedStep string        `json:"failed_step,omitempty"`
	Message    string        `json:"message,omitempty"`
	StartTime  *time.Time    `json:"start_time,omitempty"`
	EndTime    *time.Time    `json:"end_time,omitempty"`
	Duration   time.Duration `json:"duration,omitempty"`
}

// DashboardSummary holds aggregate stats for the dashboard.
type DashboardSummary struct {
	Total    int     `json:"total"`
	Passed   int     `json:"passed"`
	Failed   int     `json:"failed"`
	Skipped  int     `json:"skipped"`
	Running  int     `json:"running"`
	PassRate float64 `json:"pass_rate"`
	Elapsed  string  `json:"elapsed"`
}

// NewDashboard creates an idle dashboard.
func NewDashboard() *Dashboard {
	return &Dashboard{
		view: DashboardView{
			Status:    StatusIdle,
			StartTime: time.Now(),
			Cases:     make(map[string]CaseState),
		},
	}
}

// Apply folds an event into the dashboard state.
func (d *Dashboard) Apply(event RunEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()

	at := event.Timestamp
	if at.IsZero() {
		at = time.Now()
	}

	v := &d.view
	switch event.Type {
	case EventRunStarted:
		v.RunID = event.RunID
		v.StartTime = at
		v.Status = StatusRunning
		v.Order = nil
		v.Cases = make(map[string]CaseState)
	case EventRunFinished:
		v.Status = StatusPassed
		for _, c := range v.Cases {
			if c.Status == "failed" {
				v.Status = StatusFailed
				break
			}
		}
	default:
		if event.Case == "" {
			return
		}
		state, exists := v.Cases[event.Case]
		if !exists {
			state = CaseState{Name: event.Case, Status: "pending"}
			v.Order = append(v.Order, event.Case)
		}
		switch event.Type {
		case EventCaseStarted:
			state.Status = "running"
			state.StartTime = &at
		case EventStepFailed:
			state.FailedStep = event.Step
			state.Message = event.Message
		case EventCasePassed, EventCaseFailed, EventCaseSkipped:
			state.Status = caseStatus(event.Type)
			state.EndTime = &at
			state.Duration = event.Duration
			if event.Message != "" {
				state.Message = event.Message
			}
		}
		v.Cases[event.Case] = state
	}
	d.recalcSummary()
}

func caseStatus(t EventType) string {
	switch t {
	case EventCasePassed:
		return "passed"
	case EventCaseSkipped:
		return "skipped"
	}
	return "failed"
}

func (d *Dashboard) recalcSummary() {
	s := DashboardSummary{}
	for _, c := range d.view.Cases {
		s.Total++
		switch c.Status {
		case "passed":
			s.Passed++
		case "failed":
			s.Failed++
		case "skipped":
			s.Skipped++
		case "running":
			s.Running++
		}
	}
	if completed := s.Passed + s.Failed; completed > 0 {
		s.PassRate = float64(s.Passed) / float64(completed) * 100
	}
	s.Elapsed = time.Since(d.view.StartTime).Round(time.Millisecond).String()
	d.view.Summary = s
}

// Snapshot returns a copy of the current dashboard state.
func (d *Dashboard) Snapshot() DashboardView {
	d.mu.RLock()
	defer d.mu.RUnlock()
	snap := d.view
	snap.Order = append([]string(nil), d.view.Order...)
	snap.Cases = make(map[string]CaseState, len(d.view.Cases))
	for k, v := range d.view.Cases {
		snap.Cases[k] = v
	}
	return snap
}

// BuildDashboard replays every event held by collector into a
// fresh dashboard.
func BuildDashboard(collector *EventCollector) *Dashboard {
	d := NewDashboard()
	for _, event := range collector.Events() {
		d.Apply(event)
	}
	return d
}
