package scenario

import (
	"context"
	"errors"
	"fmt"
)

// ErrStepFailed is returned by steps adapted with FromBool when the
// underlying check reports false.
var ErrStepFailed = errors.New("step reported failure")

// StepFunc performs one action. A nil error means success.
type StepFunc func(ctx context.Context) error

// Step is a named, described action. Steps are immutable once
// built.
type Step struct {
	Name        string
	Description string
	Run         StepFunc
}

// NewStep creates a step.
func NewStep(name string, run StepFunc, description string) Step {
	return Step{Name: name, Description: description, Run: run}
}

// FromBool adapts a predicate to a StepFunc.
func FromBool(check func(ctx context.Context) bool) StepFunc {
	return func(ctx context.Context) error {
		if !check(ctx) {
			return ErrStepFailed
		}
		return nil
	}
}

// StepFailure describes why a case failed.
type StepFailure struct {
	// Step is the name of the failing step.
	Step string `json:"step"`
	// Description is the failing step's description.
	Description string `json:"description"`
	// Err is the returned error, or the recovered panic value.
	Err error `json:"-"`
	// Panicked is true when the step panicked.
	Panicked bool `json:"panicked,omitempty"`
	// Stack holds the goroutine stack of a panic.
	Stack string `json:"-"`
}

func (f *StepFailure) Error() string {
	if f.Panicked {
		return fmt.Sprintf("step %s panicked: %v", f.Step, f.Err)
	}
	return fmt.Sprintf("step %s failed: %v", f.Step, f.Err)
}

// Unwrap returns the step's error.
func (f *StepFailure) Unwrap() error {
	return f.Err
}

// Message returns the failure text for reports.
func (f *StepFailure) Message() string {
	if f == nil {
		return ""
	}
	return f.Error()
}
