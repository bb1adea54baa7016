// Package logging provides structured logging for acceptance runs
// with console, JSON-lines, and multi-destination output.
package logging

// Logger defines the interface for structured run logging. It is
// injected into the controller, pages and wait primitives; there is
// no package-level logger.
type Logger interface {
	// Info logs an informational message.
	Info(msg string, fields ...Field)

	// Warn logs a warning message.
	Warn(msg string, fields ...Field)

	// Error logs an error message.
	Error(msg string, fields ...Field)

	// Debug logs a debug-level message.
	Debug(msg string, fields ...Field)

	// WithFields returns a Logger with additional default
	// fields attached to every subsequent log entry.
	WithFields(fields ...Field) Logger

	// LogStep records the outcome of a single test step.
	LogStep(record StepRecord)

	// Close flushes any buffers and releases resources.
	Close() error
}

// Field represents a key-value pair for structured logging.
type Field struct {
	Key   string
	Value any
}

// StepRecord captures the outcome of one executed step.
type StepRecord struct {
	Timestamp   string `json:"timestamp"`
	RunID       string `json:"run_id,omitempty"`
	Case        string `json:"case"`
	Step        string `json:"step"`
	Description string `json:"description,omitempty"`
	Passed      bool   `json:"passed"`
	Panicked    bool   `json:"panicked,omitempty"`
	Error       string `json:"error,omitempty"`
	DurationMs  int64  `json:"duration_ms"`
}

// LogLevel represents logging severity levels.
type LogLevel int

const (
	// LevelDebug is the most verbose level.
	LevelDebug LogLevel = iota
	// LevelInfo is the default level.
	LevelInfo
	// LevelWarn indicates potential issues.
	LevelWarn
	// LevelError indicates failures.
	LevelError
)

// String returns the string representation of a log level.
func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
