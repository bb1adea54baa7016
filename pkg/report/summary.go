package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"digital.vasic.webaccept/pkg/scenario"
)

// Summary is an aggregated view of a run, saved alongside the logs.
type Summary struct {
	ID            string        `json:"id"`
	Suite         string        `json:"suite,omitempty"`
	GeneratedAt   time.Time     `json:"generated_at"`
	Cases         []CaseSummary `json:"cases"`
	TotalCases    int           `json:"total_cases"`
	PassedCases   int           `json:"passed_cases"`
	FailedCases   int           `json:"failed_cases"`
	SkippedCases  int           `json:"skipped_cases"`
	TotalDuration time.Duration `json:"total_duration"`
	PassRate      float64       `json:"pass_rate"`
}

// CaseSummary represents a summary of a single case.
type CaseSummary struct {
	Name       string           `json:"name"`
	Verdict    scenario.Verdict `json:"verdict"`
	Duration   time.Duration    `json:"duration"`
	StepsRun   int              `json:"steps_run"`
	FailedStep string           `json:"failed_step,omitempty"`
	Error      string           `json:"error,omitempty"`
	Panicked   bool             `json:"panicked,omitempty"`
}

// BuildSummary creates a summary from run. Cases follow verdict
// order; a verdict without a case result (a skipped case) gets a
// zero-duration entry.
func BuildSummary(run *Run) *Summary {
	summary := &Summary{
		ID:          run.ID,
		Suite:       run.Suite,
		GeneratedAt: time.Now(),
	}
	if summary.ID == "" {
		summary.ID = fmt.Sprintf(
			"summary_%s",
			summary.GeneratedAt.Format("20060102_150405"),
		)
	}

	results := make(map[string]*scenario.CaseResult, len(run.Cases))
	for _, r := range run.Cases {
		if r != nil {
			results[r.Name] = r
		}
	}

	if run.Verdicts != nil {
		run.Verdicts.Each(func(name string, v scenario.Verdict) {
			cs := CaseSummary{Name: name, Verdict: v}
			if r, ok := results[name]; ok {
				cs.Duration = r.Duration
				cs.StepsRun = r.StepsRun
				if r.Failure != nil {
					cs.FailedStep = r.Failure.Step
					cs.Error = r.Failure.Message()
					cs.Panicked = r.Failure.Panicked
				}
			}

			summary.Cases = append(summary.Cases, cs)
			summary.TotalCases++
			summary.TotalDuration += cs.Duration
			switch v {
			case scenario.Passed:
				summary.PassedCases++
			case scenario.Skipped:
				summary.SkippedCases++
			default:
				summary.FailedCases++
			}
		})
	}

	if executed := summary.PassedCases + summary.FailedCases; executed > 0 {
		summary.PassRate = float64(summary.PassedCases) / float64(executed)
	}
	return summary
}

// SaveSummary saves the summary to both JSON and Markdown files in
// outputDir, and points latest_summary.{json,md} at them.
func SaveSummary(summary *Summary, outputDir string) error {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf(
			"failed to create output directory: %w", err,
		)
	}

	ts := summary.GeneratedAt.Format("20060102_150405")

	jsonPath := filepath.Join(
		outputDir,
		fmt.Sprintf("run_summary_%s.json", ts),
	)
	jsonData, err := json.MarshalIndent(summary, "", "  ")
	if err != nil {
		return fmt.Errorf(
			"failed to marshal summary: %w", err,
		)
	}
	if err := os.WriteFile(jsonPath, jsonData, 0644); err != nil {
		return fmt.Errorf(
			"failed to write JSON summary: %w", err,
		)
	}

	mdPath := filepath.Join(
		outputDir,
		fmt.Sprintf("run_summary_%s.md", ts),
	)
	if err := os.WriteFile(
		mdPath, []byte(generateSummaryMarkdown(summary)), 0644,
	); err != nil {
		return fmt.Errorf(
			"failed to write Markdown summary: %w", err,
		)
	}

	latestJSON := filepath.Join(outputDir, "latest_summary.json")
	latestMD := filepath.Join(outputDir, "latest_summary.md")

	_ = os.Remove(latestJSON)
	_ = os.Remove(latestMD)
	_ = os.Symlink(filepath.Base(jsonPath), latestJSON)
	_ = os.Symlink(filepath.Base(mdPath), latestMD)

	return nil
}

// SummaryReporter saves a run summary into a results directory.
type SummaryReporter struct {
	outputDir string
}

// NewSummaryReporter creates a summary reporter for outputDir.
func NewSummaryReporter(outputDir string) *SummaryReporter {
	return &SummaryReporter{outputDir: outputDir}
}

// Report builds and saves the summary of run.
func (r *SummaryReporter) Report(run *Run) error {
	return SaveSummary(BuildSummary(run), r.outputDir)
}

func generateSummaryMarkdown(summary *Summary) string {
	var sb strings.Builder

	sb.WriteString("# Acceptance Run Summary\n\n")
	sb.WriteString(fmt.Sprintf("**Run ID:** %s\n\n", summary.ID))
	if summary.Suite != "" {
		sb.WriteString(fmt.Sprintf("**Suite:** %s\n\n", summary.Suite))
	}
	sb.WriteString(
		fmt.Sprintf(
			"**Generated:** %s\n\n",
			summary.GeneratedAt.Format(time.RFC3339),
		),
	)

	sb.WriteString("## Cases\n\n")
	sb.WriteString("| Case | Verdict | Duration | Steps | Failure |\n")
	sb.WriteString("|------|---------|----------|-------|---------|\n")
	for _, c := range summary.Cases {
		sb.WriteString(
			fmt.Sprintf(
				"| %s | %s %s | %v | %d | %s |\n",
				c.Name, c.Verdict.Label(), c.Verdict.Glyph(),
				c.Duration.Round(time.Millisecond), c.StepsRun,
				markdownCell(c.Error),
			),
		)
	}

	sb.WriteString("\n## Statistics\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	sb.WriteString(fmt.Sprintf("| Total Cases | %d |\n", summary.TotalCases))
	sb.WriteString(fmt.Sprintf("| Passed | %d |\n", summary.PassedCases))
	sb.WriteString(fmt.Sprintf("| Failed | %d |\n", summary.FailedCases))
	sb.WriteString(fmt.Sprintf("| Skipped | %d |\n", summary.SkippedCases))
	sb.WriteString(
		fmt.Sprintf("| Pass Rate | %.0f%% |\n", summary.PassRate*100),
	)
	sb.WriteString(
		fmt.Sprintf(
			"| Total Duration | %v |\n",
			summary.TotalDuration.Round(time.Millisecond),
		),
	)

	return sb.String()
}

// markdownCell keeps a failure message on one table row.
func markdownCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", "\\|")
}
