package logging

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLogLevel_String(t *testing.T) {
	tests := []struct {
		level    LogLevel
		expected string
	}{
		{LevelDebug, "DEBUG"},
		{LevelInfo, "INFO"},
		{LevelWarn, "WARN"},
		{LevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.level.String())
		})
	}
}

func TestFieldHelpers(t *testing.T) {
	assert.Equal(t, Field{Key: "k", Value: "v"}, LogField("k", "v"))
	assert.Equal(t, Field{Key: "name", Value: "x"}, StringField("name", "x"))
	assert.Equal(t, Field{Key: "n", Value: 3}, IntField("n", 3))
	assert.Equal(t, Field{Key: "n", Value: int64(7)}, Int64Field("n", 7))
	assert.Equal(t, Field{Key: "ok", Value: true}, BoolField("ok", true))
	assert.Equal(t, Field{Key: "case", Value: "QA Jobs Test"}, CaseField("QA Jobs Test"))
	assert.Equal(t, Field{Key: "step", Value: "cookies"}, StepField("cookies"))
	assert.Equal(t,
		Field{Key: "wait", Value: "1.5s"},
		DurationField("wait", 1500*time.Millisecond),
	)
}

func TestErrorField_WithError(t *testing.T) {
	f := ErrorField(errors.New("boom"))
	assert.Equal(t, "error", f.Key)
	assert.Equal(t, "boom", f.Value)
}

func TestErrorField_Nil(t *testing.T) {
	f := ErrorField(nil)
	assert.Equal(t, "<nil>", f.Value)
}

func TestNullLogger_AllMethodsSucceed(t *testing.T) {
	var l Logger = NullLogger{}
	l.Info("a")
	l.Warn("b")
	l.Error("c")
	l.Debug("d")
	l.LogStep(StepRecord{Case: "c", Step: "s"})
	assert.Equal(t, NullLogger{}, l.WithFields(LogField("k", 1)))
	assert.NoError(t, l.Close())
}

func TestLoggers_ImplementInterface(t *testing.T) {
	var _ Logger = NullLogger{}
	var _ Logger = &MultiLogger{}
	var _ Logger = &ConsoleLogger{}
	var _ Logger = &JSONLogger{}
}
