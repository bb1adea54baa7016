package logging

import (
	"fmt"
	"io"
	"maps"
	"os"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
)

var (
	consoleTime  = color.New(color.FgHiBlack)
	consoleInfo  = color.New(color.FgBlue)
	consoleWarn  = color.New(color.FgYellow)
	consoleError = color.New(color.FgRed)
	consoleDebug = color.New(color.FgHiBlack)
	consolePass  = color.New(color.FgGreen)
)

// ConsoleLogger provides colored console output.
type ConsoleLogger struct {
	mu      *sync.Mutex
	output  io.Writer
	verbose bool
	fields  map[string]any
}

// NewConsoleLogger creates a console logger writing to stdout.
// When verbose is true, debug messages are emitted.
func NewConsoleLogger(verbose bool) *ConsoleLogger {
	return NewConsoleLoggerTo(os.Stdout, verbose)
}

// NewConsoleLoggerTo creates a console logger writing to w.
func NewConsoleLoggerTo(w io.Writer, verbose bool) *ConsoleLogger {
	return &ConsoleLogger{
		mu:      &sync.Mutex{},
		output:  w,
		verbose: verbose,
		fields:  make(map[string]any),
	}
}

func (c *ConsoleLogger) log(
	level LogLevel, paint *color.Color, msg string, fields ...Field,
) {
	merged := make(map[string]any, len(c.fields)+len(fields))
	maps.Copy(merged, c.fields)
	for _, f := range fields {
		merged[f.Key] = f.Value
	}

	var b strings.Builder
	b.WriteString(consoleTime.Sprint(time.Now().Format("15:04:05")))
	b.WriteString(" [")
	b.WriteString(paint.Sprintf("%-5s", level.String()))
	b.WriteString("] ")
	b.WriteString(msg)
	if len(merged) > 0 {
		parts := make([]string, 0, len(merged))
		for _, k := range slices.Sorted(maps.Keys(merged)) {
			parts = append(parts, fmt.Sprintf("%s=%v", k, merged[k]))
		}
		b.WriteString(" ")
		b.WriteString(consoleTime.Sprintf("{%s}", strings.Join(parts, ", ")))
	}
	b.WriteByte('\n')

	c.mu.Lock()
	defer c.mu.Unlock()
	io.WriteString(c.output, b.String())
}

// Info logs an informational message.
func (c *ConsoleLogger) Info(msg string, fields ...Field) {
	c.log(LevelInfo, consoleInfo, msg, fields...)
}

// Warn logs a warning message.
func (c *ConsoleLogger) Warn(msg string, fields ...Field) {
	c.log(LevelWarn, consoleWarn, msg, fields...)
}

// Error logs an error message.
func (c *ConsoleLogger) Error(msg string, fields ...Field) {
	c.log(LevelError, consoleError, msg, fields...)
}

// Debug logs a debug message only if verbose is enabled.
func (c *ConsoleLogger) Debug(msg string, fields ...Field) {
	if c.verbose {
		c.log(LevelDebug, consoleDebug, msg, fields...)
	}
}

// WithFields returns a child sharing the parent's writer and lock.
func (c *ConsoleLogger) WithFields(fields ...Field) Logger {
	child := *c
	child.fields = make(map[string]any, len(c.fields)+len(fields))
	maps.Copy(child.fields, c.fields)
	for _, f := range fields {
		child.fields[f.Key] = f.Value
	}
	return &child
}

// LogStep prints a one-line step outcome. Failed steps are
// logged at error level with the step description.
func (c *ConsoleLogger) LogStep(record StepRecord) {
	fields := []Field{
		CaseField(record.Case),
		StepField(record.Step),
		Int64Field("duration_ms", record.DurationMs),
	}
	if record.Passed {
		c.log(LevelInfo, consolePass, "step passed", fields...)
		return
	}
	fields = append(fields,
		StringField("description", record.Description),
		StringField("error", record.Error),
	)
	if record.Panicked {
		fields = append(fields, BoolField("panicked", true))
	}
	c.log(LevelError, consoleError, "step failed", fields...)
}

// Close is a no-op for ConsoleLogger.
func (c *ConsoleLogger) Close() error {
	return nil
}
