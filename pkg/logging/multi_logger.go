package logging

import "errors"

// MultiLogger fans every call out to a set of loggers, for example
// the console and the JSON-lines execution log.
type MultiLogger struct {
	loggers []Logger
}

// NewMultiLogger creates a MultiLogger. Nil loggers are dropped.
func NewMultiLogger(loggers ...Logger) *MultiLogger {
	kept := make([]Logger, 0, len(loggers))
	for _, l := range loggers {
		if l != nil {
			kept = append(kept, l)
		}
	}
	return &MultiLogger{loggers: kept}
}

func (m *MultiLogger) each(fn func(Logger)) {
	for _, l := range m.loggers {
		fn(l)
	}
}

func (m *MultiLogger) Info(msg string, fields ...Field) {
	m.each(func(l Logger) { l.Info(msg, fields...) })
}

func (m *MultiLogger) Warn(msg string, fields ...Field) {
	m.each(func(l Logger) { l.Warn(msg, fields...) })
}

func (m *MultiLogger) Error(msg string, fields ...Field) {
	m.each(func(l Logger) { l.Error(msg, fields...) })
}

func (m *MultiLogger) Debug(msg string, fields ...Field) {
	m.each(func(l Logger) { l.Debug(msg, fields...) })
}

func (m *MultiLogger) LogStep(record StepRecord) {
	m.each(func(l Logger) { l.LogStep(record) })
}

// WithFields derives each inner logger.
func (m *MultiLogger) WithFields(fields ...Field) Logger {
	derived := make([]Logger, len(m.loggers))
	for i, l := range m.loggers {
		derived[i] = l.WithFields(fields...)
	}
	return &MultiLogger{loggers: derived}
}

// Close closes every logger and joins their errors.
func (m *MultiLogger) Close() error {
	var errs []error
	m.each(func(l Logger) {
		if err := l.Close(); err != nil {
			errs = append(errs, err)
		}
	})
	return errors.Join(errs...)
}

// NullLogger discards everything. Components given a nil logger
// fall back to it.
type NullLogger struct{}

func (NullLogger) Info(string, ...Field)      {}
func (NullLogger) Warn(string, ...Field)      {}
func (NullLogger) Error(string, ...Field)     {}
func (NullLogger) Debug(string, ...Field)     {}
func (NullLogger) LogStep(StepRecord)         {}
func (NullLogger) WithFields(...Field) Logger { return NullLogger{} }
func (NullLogger) Close() error               { return nil }
