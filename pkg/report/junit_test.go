package report

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"digital.vasic.webaccept/pkg/scenario"
)

func TestBuildJUnit_Structure(t *testing.T) {
	data, err := BuildJUnit(makeTestRun(t), map[string]string{
		"endpoint": "http://chrome:4444/wd/hub",
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), xml.Header))

	var doc jUnitXMLDocument
	require.NoError(t, xml.Unmarshal(data, &doc))
	require.Len(t, doc.Suites, 1)

	suite := doc.Suites[0]
	assert.Equal(t, "insider", suite.Name)
	assert.Equal(t, 3, suite.Tests)
	assert.Equal(t, 1, suite.Failures)
	assert.Equal(t, 1, suite.Skipped)
	assert.Equal(t, "5.000", suite.Time)
	assert.Equal(t, "2026-01-02T03:04:05Z", suite.Timestamp)

	require.Len(t, suite.Properties, 2)
	assert.Equal(t, "run.id", suite.Properties[0].Name)
	assert.Equal(t, "endpoint", suite.Properties[1].Name)

	require.Len(t, suite.TestCases, 3)
	assert.Equal(t, "Homepage Test", suite.TestCases[0].Name)
	assert.Equal(t, "2.000", suite.TestCases[0].Time)
	assert.Nil(t, suite.TestCases[0].Failure)

	failed := suite.TestCases[1]
	require.NotNil(t, failed.Failure)
	assert.Equal(t, "step cookies failed: not found", failed.Failure.Message)
	assert.Equal(t, "failure", failed.Failure.Type)
	assert.Equal(t, "Accept cookies", failed.Failure.Contents)

	skipped := suite.TestCases[2]
	require.NotNil(t, skipped.SkipMessage)
	assert.Equal(t, "0.000", skipped.Time)
}

func TestBuildJUnit_Panic(t *testing.T) {
	verdicts := scenario.NewVerdicts()
	require.NoError(t, verdicts.Record("a", scenario.Failed))
	run := &Run{
		Verdicts: verdicts,
		Cases: []*scenario.CaseResult{{
			Name:    "a",
			Verdict: scenario.Failed,
			Failure: &scenario.StepFailure{
				Step:        "boom",
				Description: "Explodes",
				Err:         fmt.Errorf("nil map"),
				Panicked:    true,
				Stack:       "goroutine 1",
			},
		}},
	}

	data, err := BuildJUnit(run, nil)
	require.NoError(t, err)

	var doc jUnitXMLDocument
	require.NoError(t, xml.Unmarshal(data, &doc))
	f := doc.Suites[0].TestCases[0].Failure
	require.NotNil(t, f)
	assert.Equal(t, "panic", f.Type)
	assert.Contains(t, f.Contents, "goroutine 1")
	assert.Equal(t, "acceptance", doc.Suites[0].Name)
}

func TestBuildJUnit_FailedWithoutResult(t *testing.T) {
	verdicts := scenario.NewVerdicts()
	require.NoError(t, verdicts.Record("a", scenario.Failed))

	data, err := BuildJUnit(&Run{Verdicts: verdicts}, nil)
	require.NoError(t, err)
	assert.Contains(t, string(data), `message="case failed"`)
}

func TestJUnitReporter_Report(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "junit.xml")

	require.NoError(t, NewJUnitReporter(path, nil).Report(makeTestRun(t)))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `<testcase classname="insider" name="QA Jobs Test"`)
}

func TestJUnitReporter_WriteError(t *testing.T) {
	file := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0644))

	err := NewJUnitReporter(filepath.Join(file, "junit.xml"), nil).
		Report(makeTestRun(t))
	require.Error(t, err)
}
