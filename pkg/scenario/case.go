package scenario

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"
)

// Observer is notified around every executed step.
type Observer interface {
	StepStarted(caseName string, step Step, index int)
	StepFinished(caseName string, step Step, failure *StepFailure, duration time.Duration)
}

// Case is a named, ordered sequence of steps.
type Case struct {
	Name  string
	Steps []Step
}

// NewCase creates a case.
func NewCase(name string, steps ...Step) Case {
	return Case{Name: name, Steps: steps}
}

// CaseResult is the outcome of executing a case.
type CaseResult struct {
	Name      string        `json:"name"`
	Verdict   Verdict       `json:"verdict"`
	Failure   *StepFailure  `json:"failure,omitempty"`
	StepsRun  int           `json:"steps_run"`
	StartTime time.Time     `json:"start_time"`
	EndTime   time.Time     `json:"end_time"`
	Duration  time.Duration `json:"duration"`
}

// Execute runs the steps in order and stops at the first failure.
// A panicking step is recovered here and fails the case. A case
// with no steps passes. Cancellation of ctx is left to the steps.
func (c Case) Execute(ctx context.Context, obs Observer) *CaseResult {
	res := &CaseResult{
		Name:      c.Name,
		Verdict:   Running,
		StartTime: time.Now(),
	}

	for i, step := range c.Steps {
		if obs != nil {
			obs.StepStarted(c.Name, step, i)
		}
		start := time.Now()
		failure := runStep(ctx, step)
		res.StepsRun++
		if obs != nil {
			obs.StepFinished(c.Name, step, failure, time.Since(start))
		}
		if failure != nil {
			res.Verdict = Failed
			res.Failure = failure
			break
		}
	}

	if res.Verdict == Running {
		res.Verdict = Passed
	}
	res.EndTime = time.Now()
	res.Duration = res.EndTime.Sub(res.StartTime)
	return res
}

func runStep(ctx context.Context, step Step) (failure *StepFailure) {
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			failure = &StepFailure{
				Step:        step.Name,
				Description: step.Description,
				Err:         err,
				Panicked:    true,
				Stack:       string(debug.Stack()),
			}
		}
	}()

	if step.Run == nil {
		return &StepFailure{
			Step:        step.Name,
			Description: step.Description,
			Err:         fmt.Errorf("step has no action"),
		}
	}
	if err := step.Run(ctx); err != nil {
		return &StepFailure{
			Step:        step.Name,
			Description: step.Description,
			Err:         err,
		}
	}
	return nil
}
