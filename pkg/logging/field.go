package logging

import "time"

// LogField creates a Field from a key-value pair.
func LogField(key string, value any) Field {
	return Field{Key: key, Value: value}
}

// StringField, IntField, Int64Field and BoolField create typed fields.
func StringField(key, value string) Field      { return Field{Key: key, Value: value} }
func IntField(key string, value int) Field     { return Field{Key: key, Value: value} }
func Int64Field(key string, value int64) Field { return Field{Key: key, Value: value} }
func BoolField(key string, value bool) Field   { return Field{Key: key, Value: value} }

// CaseField names the test case an entry belongs to.
func CaseField(name string) Field {
	return Field{Key: "case", Value: name}
}

// StepField names the step an entry belongs to.
func StepField(name string) Field {
	return Field{Key: "step", Value: name}
}

// DurationField renders d as a string such as "1.5s".
func DurationField(key string, d time.Duration) Field {
	return Field{Key: key, Value: d.String()}
}

// ErrorField records err under "error". A nil err is recorded as
// "<nil>".
func ErrorField(err error) Field {
	if err == nil {
		return Field{Key: "error", Value: "<nil>"}
	}
	return Field{Key: "error", Value: err.Error()}
}
