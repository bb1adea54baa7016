package logging

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// jsonMarshal is a variable for dependency injection in tests.
var jsonMarshal = json.Marshal

// LogEntry is one line of the execution log.
type LogEntry struct {
	Timestamp string         `json:"timestamp"`
	Level     string         `json:"level"`
	Message   string         `json:"message"`
	Fields    map[string]any `json:"fields,omitempty"`
}

// LoggerConfig configures the JSONLogger.
type LoggerConfig struct {
	// OutputPath receives the log entries. Empty means stdout.
	OutputPath string
	// StepLog, when set, receives one StepRecord per line.
	StepLog string
	Level   LogLevel
	Verbose bool
	Fields  map[string]any
}

// sink is the pair of writers shared by a JSONLogger and every
// logger derived from it with WithFields.
type sink struct {
	mu     sync.Mutex
	out    io.Writer
	steps  io.Writer
	files  []*os.File
	closed bool
}

func (s *sink) writeLine(w io.Writer, v any) {
	data, err := jsonMarshal(v)
	if err != nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed || w == nil {
		return
	}
	fmt.Fprintln(w, string(data))
}

func (s *sink) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	var errs []error
	for _, f := range s.files {
		if err := f.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// JSONLogger writes JSON Lines: log entries to the execution log and
// step records to an optional step log.
type JSONLogger struct {
	sink    *sink
	level   LogLevel
	verbose bool
	fields  map[string]any
}

// NewJSONLogger creates a JSON logger. Files are created along with
// their parent directories and appended to.
func NewJSONLogger(config LoggerConfig) (*JSONLogger, error) {
	s := &sink{out: os.Stdout}
	if config.OutputPath != "" {
		f, err := openAppend(config.OutputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		s.out = f
		s.files = append(s.files, f)
	}
	if config.StepLog != "" {
		f, err := openAppend(config.StepLog)
		if err != nil {
			_ = s.close()
			return nil, fmt.Errorf("failed to open step log: %w", err)
		}
		s.steps = f
		s.files = append(s.files, f)
	}

	fields := maps.Clone(config.Fields)
	if fields == nil {
		fields = make(map[string]any)
	}
	return &JSONLogger{
		sink:    s,
		level:   config.Level,
		verbose: config.Verbose,
		fields:  fields,
	}, nil
}

func openAppend(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
}

func (l *JSONLogger) log(level LogLevel, msg string, fields []Field) {
	if level < l.level {
		return
	}
	entry := LogEntry{
		Timestamp: time.Now().Format(time.RFC3339Nano),
		Level:     level.String(),
		Message:   msg,
		Fields:    maps.Clone(l.fields),
	}
	for _, f := range fields {
		entry.Fields[f.Key] = f.Value
	}
	l.sink.writeLine(l.sink.out, entry)
}

func (l *JSONLogger) Info(msg string, fields ...Field)  { l.log(LevelInfo, msg, fields) }
func (l *JSONLogger) Warn(msg string, fields ...Field)  { l.log(LevelWarn, msg, fields) }
func (l *JSONLogger) Error(msg string, fields ...Field) { l.log(LevelError, msg, fields) }

// Debug logs only in verbose mode.
func (l *JSONLogger) Debug(msg string, fields ...Field) {
	if l.verbose {
		l.log(LevelDebug, msg, fields)
	}
}

// WithFields returns a child sharing the parent's writers. Closing
// either closes both.
func (l *JSONLogger) WithFields(fields ...Field) Logger {
	child := *l
	child.fields = maps.Clone(l.fields)
	for _, f := range fields {
		child.fields[f.Key] = f.Value
	}
	return &child
}

// LogStep writes record to the step log and a one-line outcome to
// the execution log.
func (l *JSONLogger) LogStep(record StepRecord) {
	if record.Timestamp == "" {
		record.Timestamp = time.Now().Format(time.RFC3339Nano)
	}

	fields := []Field{
		CaseField(record.Case),
		StepField(record.Step),
		Int64Field("duration_ms", record.DurationMs),
	}
	if record.Passed {
		l.log(LevelInfo, "step passed", fields)
	} else {
		fields = append(fields,
			StringField("description", record.Description),
			StringField("error", record.Error),
		)
		l.log(LevelError, "step failed", fields)
	}

	l.sink.writeLine(l.sink.steps, record)
}

// Close closes the log files. It is safe to call more than once.
func (l *JSONLogger) Close() error {
	return l.sink.close()
}

// SetupLogging creates a JSON logger writing the execution log to
// logPath and step records next to it as steps.log. Verbose mode
// lowers the level to debug.
func SetupLogging(logPath string, verbose bool) (*JSONLogger, error) {
	level := LevelInfo
	if verbose {
		level = LevelDebug
	}
	return NewJSONLogger(LoggerConfig{
		OutputPath: logPath,
		StepLog:    filepath.Join(filepath.Dir(logPath), "steps.log"),
		Level:      level,
		Verbose:    verbose,
	})
}
