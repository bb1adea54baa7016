package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"

	"digital.vasic.webaccept/pkg/logging"
	"digital.vasic.webaccept/pkg/scenario"
)

// VerdictReporter prints one "<name>: <VERDICT> <glyph>" line per
// case in execution order, and mirrors each line to a logger.
type VerdictReporter struct {
	w      io.Writer
	logger logging.Logger
	pass   *color.Color
	fail   *color.Color
	skip   *color.Color
}

// NewVerdictReporter creates a verdict reporter writing to w. When
// colorize is false the lines carry no escape codes; otherwise
// colour follows the terminal detection of fatih/color.
func NewVerdictReporter(
	w io.Writer,
	logger logging.Logger,
	colorize bool,
) *VerdictReporter {
	if logger == nil {
		logger = logging.NullLogger{}
	}
	r := &VerdictReporter{
		w:      w,
		logger: logger,
		pass:   color.New(color.FgGreen, color.Bold),
		fail:   color.New(color.FgRed, color.Bold),
		skip:   color.New(color.FgYellow),
	}
	if !colorize {
		r.pass.DisableColor()
		r.fail.DisableColor()
		r.skip.DisableColor()
	}
	return r
}

// Report writes the verdict lines of run.
func (r *VerdictReporter) Report(run *Run) error {
	if run == nil || run.Verdicts == nil {
		return nil
	}
	var err error
	run.Verdicts.Each(func(name string, v scenario.Verdict) {
		if err != nil {
			return
		}
		err = r.WriteVerdict(name, v)
	})
	return err
}

// WriteVerdict writes a single verdict line.
func (r *VerdictReporter) WriteVerdict(name string, v scenario.Verdict) error {
	status := r.colorFor(v).Sprintf("%s %s", v.Label(), v.Glyph())
	if _, err := fmt.Fprintf(r.w, "%s: %s\n", name, status); err != nil {
		return fmt.Errorf("write verdict for %q: %w", name, err)
	}

	line := VerdictLine(name, v)
	fields := []logging.Field{
		logging.CaseField(name),
		logging.StringField("verdict", string(v)),
	}
	if v == scenario.Passed {
		r.logger.Info(line, fields...)
	} else {
		r.logger.Error(line, fields...)
	}
	return nil
}

func (r *VerdictReporter) colorFor(v scenario.Verdict) *color.Color {
	switch v {
	case scenario.Passed:
		return r.pass
	case scenario.Skipped:
		return r.skip
	}
	return r.fail
}

// VerdictLine formats a verdict line without colour.
func VerdictLine(name string, v scenario.Verdict) string {
	return fmt.Sprintf("%s: %s %s", name, v.Label(), v.Glyph())
}

// WriteVerdicts writes plain verdict lines for every entry of
// verdicts to w.
func WriteVerdicts(w io.Writer, verdicts *scenario.Verdicts) error {
	return NewVerdictReporter(w, nil, false).Report(&Run{Verdicts: verdicts})
}
