package logging

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConsoleLogger_Levels(t *testing.T) {
	tests := []struct {
		name  string
		log   func(l *ConsoleLogger)
		level string
		msg   string
	}{
		{"info", func(l *ConsoleLogger) { l.Info("hello world") }, "INFO", "hello world"},
		{"warn", func(l *ConsoleLogger) { l.Warn("careful") }, "WARN", "careful"},
		{"error", func(l *ConsoleLogger) { l.Error("broken") }, "ERROR", "broken"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			tt.log(NewConsoleLoggerTo(&buf, false))
			assert.Contains(t, buf.String(), tt.level)
			assert.Contains(t, buf.String(), tt.msg)
		})
	}
}

func TestConsoleLogger_Debug_Verbose(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleLoggerTo(&buf, true).Debug("debug info")
	assert.Contains(t, buf.String(), "debug info")
}

func TestConsoleLogger_Debug_NotVerbose(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleLoggerTo(&buf, false).Debug("debug info")
	assert.Empty(t, buf.String())
}

func TestConsoleLogger_WithFields(t *testing.T) {
	var buf bytes.Buffer
	logger := NewConsoleLoggerTo(&buf, false)

	child := logger.WithFields(LogField("case", "Homepage Test"))
	require.NotNil(t, child)

	child.Info("msg", LogField("key", "val"))
	out := buf.String()
	assert.Contains(t, out, "case=Homepage Test")
	assert.Contains(t, out, "key=val")

	cl, ok := child.(*ConsoleLogger)
	require.True(t, ok)
	assert.Equal(t, "Homepage Test", cl.fields["case"])
	assert.Empty(t, logger.fields)
}

func TestConsoleLogger_LogStep_Passed(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleLoggerTo(&buf, false).LogStep(StepRecord{
		Case: "Homepage Test", Step: "navigate", Passed: true,
	})

	out := buf.String()
	assert.Contains(t, out, "step passed")
	assert.Contains(t, out, "step=navigate")
	assert.NotContains(t, out, "ERROR")
}

func TestConsoleLogger_LogStep_Failed(t *testing.T) {
	var buf bytes.Buffer
	NewConsoleLoggerTo(&buf, false).LogStep(StepRecord{
		Case:        "QA Jobs Test",
		Step:        "view_role",
		Description: "Open the first role",
		Error:       "not found",
		Panicked:    true,
	})

	out := buf.String()
	assert.Contains(t, out, "ERROR")
	assert.Contains(t, out, "step failed")
	assert.Contains(t, out, "description=Open the first role")
	assert.Contains(t, out, "panicked=true")
}

func TestConsoleLogger_Close(t *testing.T) {
	assert.NoError(t, NewConsoleLogger(false).Close())
}
