package report

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"digital.vasic.webaccept/pkg/scenario"
)

// Struct definitions for the JUnit XML schema understood by CI
// servers (the go-junit-report dialect).

type jUnitXMLDocument struct {
	XMLName xml.Name            `xml:"testsuites"`
	Suites  []jUnitXMLTestSuite `xml:"testsuite"`
}

type jUnitXMLTestSuite struct {
	XMLName    xml.Name           `xml:"testsuite"`
	Tests      int                `xml:"tests,attr"`
	Failures   int                `xml:"failures,attr"`
	Skipped    int                `xml:"skipped,attr"`
	Time       string             `xml:"time,attr"`
	Name       string             `xml:"name,attr"`
	Timestamp  string             `xml:"timestamp,attr,omitempty"`
	Properties []jUnitXMLProperty `xml:"properties>property,omitempty"`
	TestCases  []jUnitXMLTestCase `xml:"testcase"`
}

type jUnitXMLTestCase struct {
	XMLName     xml.Name             `xml:"testcase"`
	Classname   string               `xml:"classname,attr"`
	Name        string               `xml:"name,attr"`
	Time        string               `xml:"time,attr"`
	SkipMessage *jUnitXMLSkipMessage `xml:"skipped,omitempty"`
	Failure     *jUnitXMLFailure     `xml:"failure,omitempty"`
}

type jUnitXMLSkipMessage struct {
	Message string `xml:"message,attr"`
}

type jUnitXMLProperty struct {
	Name  string `xml:"name,attr"`
	Value string `xml:"value,attr"`
}

type jUnitXMLFailure struct {
	Message  string `xml:"message,attr"`
	Type     string `xml:"type,attr"`
	Contents string `xml:",chardata"`
}

// JUnitReporter writes a run as a JUnit XML document.
type JUnitReporter struct {
	filePath   string
	properties map[string]string
}

// NewJUnitReporter creates a reporter writing to filePath. The
// properties are attached to the suite element.
func NewJUnitReporter(
	filePath string,
	properties map[string]string,
) *JUnitReporter {
	return &JUnitReporter{
		filePath:   filePath,
		properties: properties,
	}
}

// Report encodes run and writes it to the configured file.
func (j *JUnitReporter) Report(run *Run) error {
	data, err := BuildJUnit(run, j.properties)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(j.filePath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create junit directory: %w", err)
		}
	}
	if err := os.WriteFile(j.filePath, data, 0644); err != nil {
		return fmt.Errorf("write junit report: %w", err)
	}
	return nil
}

// BuildJUnit encodes run as a single JUnit test suite with one test
// case per verdict.
func BuildJUnit(run *Run, properties map[string]string) ([]byte, error) {
	name := run.Suite
	if name == "" {
		name = "acceptance"
	}
	suite := jUnitXMLTestSuite{
		Name: name,
		Time: jUnitDurationString(run.Duration()),
	}
	if !run.StartTime.IsZero() {
		suite.Timestamp = run.StartTime.UTC().Format(time.RFC3339)
	}
	if run.ID != "" {
		suite.Properties = append(suite.Properties, jUnitXMLProperty{
			Name:  "run.id",
			Value: run.ID,
		})
	}
	for _, key := range sortedKeys(properties) {
		suite.Properties = append(suite.Properties, jUnitXMLProperty{
			Name:  key,
			Value: properties[key],
		})
	}

	results := make(map[string]*scenario.CaseResult, len(run.Cases))
	for _, r := range run.Cases {
		if r != nil {
			results[r.Name] = r
		}
	}

	if run.Verdicts != nil {
		run.Verdicts.Each(func(caseName string, v scenario.Verdict) {
			tc := jUnitXMLTestCase{
				Classname: name,
				Name:      caseName,
				Time:      jUnitDurationString(0),
			}
			r := results[caseName]
			if r != nil {
				tc.Time = jUnitDurationString(r.Duration)
			}

			suite.Tests++
			switch v {
			case scenario.Skipped:
				suite.Skipped++
				tc.SkipMessage = &jUnitXMLSkipMessage{
					Message: "excluded by run filter",
				}
			case scenario.Failed:
				suite.Failures++
				tc.Failure = jUnitFailure(r)
			}
			suite.TestCases = append(suite.TestCases, tc)
		})
	}

	doc := jUnitXMLDocument{Suites: []jUnitXMLTestSuite{suite}}
	bytes, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode junit report: %w", err)
	}
	bytes = append([]byte(xml.Header), bytes...)
	return append(bytes, '\n'), nil
}

func jUnitFailure(r *scenario.CaseResult) *jUnitXMLFailure {
	f := &jUnitXMLFailure{Type: "failure", Message: "case failed"}
	if r == nil || r.Failure == nil {
		return f
	}
	f.Message = r.Failure.Message()
	f.Contents = r.Failure.Description
	if r.Failure.Panicked {
		f.Type = "panic"
		if r.Failure.Stack != "" {
			f.Contents += "\n" + r.Failure.Stack
		}
	}
	return f
}

func jUnitDurationString(d time.Duration) string {
	return fmt.Sprintf("%.3f", d.Seconds())
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
