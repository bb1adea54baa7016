package runner

import (
	"fmt"
	"regexp"
)

// Filter selects cases by name. A case runs when it matches Run
// (or Run is nil) and does not match Skip (or Skip is nil).
type Filter struct {
	Run  *regexp.Regexp
	Skip *regexp.Regexp
}

// NewFilter compiles the run and skip expressions. Empty strings
// leave the corresponding side unset.
func NewFilter(run, skip string) (Filter, error) {
	var f Filter
	if run != "" {
		re, err := regexp.Compile(run)
		if err != nil {
			return Filter{}, fmt.Errorf("invalid run filter %q: %w", run, err)
		}
		f.Run = re
	}
	if skip != "" {
		re, err := regexp.Compile(skip)
		if err != nil {
			return Filter{}, fmt.Errorf("invalid skip filter %q: %w", skip, err)
		}
		f.Skip = re
	}
	return f, nil
}

// Match reports whether the case named name should run.
func (f Filter) Match(name string) bool {
	if f.Run != nil && !f.Run.MatchString(name) {
		return false
	}
	if f.Skip != nil && f.Skip.MatchString(name) {
		return false
	}
	return true
}

// String describes the filter for logs and reports.
func (f Filter) String() string {
	run, skip := "", ""
	if f.Run != nil {
		run = f.Run.String()
	}
	if f.Skip != nil {
		skip = f.Skip.String()
	}
	return fmt.Sprintf("run=%q skip=%q", run, skip)
}
