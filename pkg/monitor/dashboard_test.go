package monitor

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDashboard_Apply_CaseLifecycle(t *testing.T) {
	d := NewDashboard()
	assert.Equal(t, StatusIdle, d.Snapshot().Status)

	d.Apply(RunEvent{Type: EventRunStarted, RunID: "run-1"})
	d.Apply(RunEvent{Type: EventCaseStarted, Case: "Homepage Test"})

	snap := d.Snapshot()
	assert.Equal(t, "run-1", snap.RunID)
	assert.Equal(t, StatusRunning, snap.Status)
	assert.Equal(t, 1, snap.Summary.Running)
	assert.Equal(t, "running", snap.Cases["Homepage Test"].Status)
	require.NotNil(t, snap.Cases["Homepage Test"].StartTime)

	d.Apply(RunEvent{
		Type:     EventCasePassed,
		Case:     "Homepage Test",
		Duration: 2 * time.Second,
	})

	snap = d.Snapshot()
	assert.Equal(t, "passed", snap.Cases["Homepage Test"].Status)
	assert.Equal(t, 2*time.Second, snap.Cases["Homepage Test"].Duration)
	assert.Equal(t, 1, snap.Summary.Passed)
	assert.Equal(t, float64(100), snap.Summary.PassRate)
}

func TestDashboard_Apply_StepFailure(t *testing.T) {
	d := NewDashboard()
	d.Apply(RunEvent{Type: EventCaseStarted, Case: "QA Jobs Test"})
	d.Apply(RunEvent{
		Type:    EventStepFailed,
		Case:    "QA Jobs Test",
		Step:    "cookies",
		Message: "not found",
	})
	d.Apply(RunEvent{Type: EventCaseFailed, Case: "QA Jobs Test"})
	d.Apply(RunEvent{Type: EventRunFinished})

	snap := d.Snapshot()
	state := snap.Cases["QA Jobs Test"]
	assert.Equal(t, "failed", state.Status)
	assert.Equal(t, "cookies", state.FailedStep)
	assert.Equal(t, "not found", state.Message)
	assert.Equal(t, StatusFailed, snap.Status)
	assert.Equal(t, float64(0), snap.Summary.PassRate)
}

func TestDashboard_Apply_KeepsCaseOrder(t *testing.T) {
	d := NewDashboard()
	for _, name := range []string{"b", "a", "c"} {
		d.Apply(RunEvent{Type: EventCaseStarted, Case: name})
	}
	d.Apply(RunEvent{Type: EventCaseSkipped, Case: "a"})
	assert.Equal(t, []string{"b", "a", "c"}, d.Snapshot().Order)
	assert.Equal(t, 1, d.Snapshot().Summary.Skipped)
}

func TestDashboard_Apply_RunStartedResets(t *testing.T) {
	d := NewDashboard()
	d.Apply(RunEvent{Type: EventCasePassed, Case: "old"})
	d.Apply(RunEvent{Type: EventRunStarted, RunID: "run-2"})

	snap := d.Snapshot()
	assert.Empty(t, snap.Cases)
	assert.Empty(t, snap.Order)
	assert.Equal(t, 0, snap.Summary.Total)
}

func TestDashboard_Apply_IgnoresCaselessEvents(t *testing.T) {
	d := NewDashboard()
	d.Apply(RunEvent{Type: EventCaseStarted})
	assert.Empty(t, d.Snapshot().Cases)
}

func TestDashboard_Snapshot_IsCopy(t *testing.T) {
	d := NewDashboard()
	d.Apply(RunEvent{Type: EventCaseStarted, Case: "a"})

	snap := d.Snapshot()
	snap.Cases["a"] = CaseState{Status: "mutated"}
	snap.Order[0] = "mutated"

	again := d.Snapshot()
	assert.Equal(t, "running", again.Cases["a"].Status)
	assert.Equal(t, "a", again.Order[0])
}

func TestBuildDashboard(t *testing.T) {
	c := NewEventCollector()
	c.EmitRunStarted("run-9")
	c.EmitCaseStarted("a")
	c.Emit(RunEvent{Type: EventCasePassed, Case: "a"})
	c.EmitRunFinished(time.Second)

	snap := BuildDashboard(c).Snapshot()
	assert.Equal(t, "run-9", snap.RunID)
	assert.Equal(t, StatusPassed, snap.Status)
	assert.Equal(t, 1, snap.Summary.Passed)
}
