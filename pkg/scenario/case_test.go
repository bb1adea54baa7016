package scenario

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- stub observer ---

type recordingObserver struct {
	mu       sync.Mutex
	started  []string
	finished []string
	failures []*StepFailure
}

func (o *recordingObserver) StepStarted(_ string, step Step, _ int) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.started = append(o.started, step.Name)
}

func (o *recordingObserver) StepFinished(
	_ string, step Step, failure *StepFailure, _ time.Duration,
) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.finished = append(o.finished, step.Name)
	o.failures = append(o.failures, failure)
}

func counting(calls *[]string, name string, err error) Step {
	return NewStep(name, func(context.Context) error {
		*calls = append(*calls, name)
		return err
	}, "run "+name)
}

func TestCase_Execute_AllPass(t *testing.T) {
	var calls []string
	c := NewCase("Homepage Test",
		counting(&calls, "navigate", nil),
		counting(&calls, "verify", nil),
		counting(&calls, "company_menu", nil),
		counting(&calls, "careers_menu", nil),
	)
	obs := &recordingObserver{}

	res := c.Execute(context.Background(), obs)

	assert.Equal(t, Passed, res.Verdict)
	assert.Nil(t, res.Failure)
	assert.Equal(t, 4, res.StepsRun)
	assert.Equal(t, []string{"navigate", "verify", "company_menu", "careers_menu"}, calls)
	assert.Equal(t, calls, obs.started)
	assert.Equal(t, calls, obs.finished)
	assert.False(t, res.EndTime.Before(res.StartTime))
}

func TestCase_Execute_StopsAtFirstFailure(t *testing.T) {
	var calls []string
	boom := errors.New("submenu missing")
	c := NewCase("Homepage Test",
		counting(&calls, "navigate", nil),
		counting(&calls, "verify", boom),
		counting(&calls, "company_menu", nil),
	)

	res := c.Execute(context.Background(), nil)

	assert.Equal(t, Failed, res.Verdict)
	require.NotNil(t, res.Failure)
	assert.Equal(t, "verify", res.Failure.Step)
	assert.Equal(t, "run verify", res.Failure.Description)
	assert.True(t, errors.Is(res.Failure, boom))
	assert.False(t, res.Failure.Panicked)
	assert.Equal(t, 2, res.StepsRun)
	assert.Equal(t, []string{"navigate", "verify"}, calls)
}

func TestCase_Execute_PanicIsFailure(t *testing.T) {
	var calls []string
	c := NewCase("QA Jobs Test",
		counting(&calls, "navigate", nil),
		NewStep("cookies", func(context.Context) error {
			panic("driver exploded")
		}, "Accepting cookies"),
		counting(&calls, "qa_jobs", nil),
	)
	obs := &recordingObserver{}

	res := c.Execute(context.Background(), obs)

	assert.Equal(t, Failed, res.Verdict)
	require.NotNil(t, res.Failure)
	assert.True(t, res.Failure.Panicked)
	assert.Equal(t, "cookies", res.Failure.Step)
	assert.Contains(t, res.Failure.Error(), "driver exploded")
	assert.NotEmpty(t, res.Failure.Stack)
	assert.Equal(t, []string{"navigate"}, calls)
	assert.Equal(t, []string{"navigate", "cookies"}, obs.finished)
	assert.Nil(t, obs.failures[0])
	assert.NotNil(t, obs.failures[1])
}

func TestCase_Execute_PanicWithError(t *testing.T) {
	sentinel := errors.New("nil element")
	c := NewCase("x", NewStep("s", func(context.Context) error {
		panic(sentinel)
	}, ""))

	res := c.Execute(context.Background(), nil)
	assert.True(t, errors.Is(res.Failure, sentinel))
}

func TestCase_Execute_Empty(t *testing.T) {
	res := NewCase("empty").Execute(context.Background(), nil)
	assert.Equal(t, Passed, res.Verdict)
	assert.Zero(t, res.StepsRun)
}

func TestCase_Execute_NilRun(t *testing.T) {
	res := NewCase("x", Step{Name: "broken"}).Execute(context.Background(), nil)
	assert.Equal(t, Failed, res.Verdict)
	assert.Equal(t, "broken", res.Failure.Step)
}

func TestFromBool(t *testing.T) {
	ok := FromBool(func(context.Context) bool { return true })
	bad := FromBool(func(context.Context) bool { return false })

	assert.NoError(t, ok(context.Background()))
	assert.ErrorIs(t, bad(context.Background()), ErrStepFailed)
}

func TestStepFailure_Message(t *testing.T) {
	var nilFailure *StepFailure
	assert.Empty(t, nilFailure.Message())

	f := &StepFailure{Step: "view_role", Err: errors.New("no context")}
	assert.Equal(t, "step view_role failed: no context", f.Message())
}

func TestSuite_Validate(t *testing.T) {
	step := NewStep("s", func(context.Context) error { return nil }, "")
	tests := []struct {
		name    string
		suite   Suite
		wantErr bool
	}{
		{"ok", Suite{Cases: []Case{NewCase("a", step), NewCase("b", step)}}, false},
		{"duplicate case", Suite{Cases: []Case{NewCase("a"), NewCase("a")}}, true},
		{"empty name", Suite{Cases: []Case{NewCase("")}}, true},
		{"duplicate step", Suite{Cases: []Case{NewCase("a", step, step)}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.suite.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
