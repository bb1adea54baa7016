// Package scenario defines test steps, test cases and the verdicts
// they produce. A case runs its steps strictly in order and stops at
// the first failure; a panic inside a step fails the case like an
// error return.
package scenario

import "strings"

// Verdict is the state of a test case.
type Verdict string

// Verdict constants. Passed, Failed and Skipped are final.
const (
	Pending Verdict = "pending"
	Running Verdict = "running"
	Passed  Verdict = "passed"
	Failed  Verdict = "failed"
	Skipped Verdict = "skipped"
)

// Label returns the verdict as printed in reports, e.g. "PASSED".
func (v Verdict) Label() string {
	return strings.ToUpper(string(v))
}

// Glyph returns the report symbol: a check mark for Passed and a
// cross for everything else.
func (v Verdict) Glyph() string {
	if v == Passed {
		return "✅"
	}
	return "❌"
}

// IsFinal reports whether v is a terminal state.
func (v Verdict) IsFinal() bool {
	switch v {
	case Passed, Failed, Skipped:
		return true
	}
	return false
}
