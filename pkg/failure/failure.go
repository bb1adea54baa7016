// Package failure defines the typed failure kinds produced by
// element resolution, clicking, navigation and browsing-context
// switching.
package failure

import (
	"errors"
	"fmt"
)

// Kind classifies a failure.
type Kind int

const (
	// KindUnknown is used for errors that carry no classification.
	KindUnknown Kind = iota
	// KindNotFound means no element matched within the timeout.
	KindNotFound
	// KindNotClickable means an element matched but never became
	// displayed and enabled within the timeout.
	KindNotClickable
	// KindObstructed means another element received the click.
	KindObstructed
	// KindNavigation means the browser could not load a page.
	KindNavigation
	// KindContextSwitch means a browsing-context precondition or
	// switch failed.
	KindContextSwitch
)

// String returns a human-readable kind name.
func (k Kind) String() string {
	switch k {
	case KindNotFound:
		return "not found"
	case KindNotClickable:
		return "not clickable"
	case KindObstructed:
		return "obstructed"
	case KindNavigation:
		return "navigation failure"
	case KindContextSwitch:
		return "context switch failure"
	default:
		return "unknown"
	}
}

// Sentinels for errors.Is matching against a kind.
var (
	ErrNotFound      = errors.New("not found")
	ErrNotClickable  = errors.New("not clickable")
	ErrObstructed    = errors.New("obstructed")
	ErrNavigation    = errors.New("navigation failure")
	ErrContextSwitch = errors.New("context switch failure")
)

var sentinels = map[Kind]error{
	KindNotFound:      ErrNotFound,
	KindNotClickable:  ErrNotClickable,
	KindObstructed:    ErrObstructed,
	KindNavigation:    ErrNavigation,
	KindContextSwitch: ErrContextSwitch,
}

// Error is a classified failure. Op names the operation that failed
// and Target what it acted on, typically a locator or URL.
type Error struct {
	Kind   Kind
	Op     string
	Target string
	Err    error
}

func (e *Error) Error() string {
	msg := e.Kind.String()
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Target != "" {
		msg = fmt.Sprintf("%s [%s]", msg, e.Target)
	}
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the sentinel for e's kind.
func (e *Error) Is(target error) bool {
	s, ok := sentinels[e.Kind]
	return ok && s == target
}

// New creates a failure without an underlying cause.
func New(kind Kind, op, target string) *Error {
	return &Error{Kind: kind, Op: op, Target: target}
}

// Wrap creates a failure wrapping err.
func Wrap(kind Kind, op, target string, err error) *Error {
	return &Error{Kind: kind, Op: op, Target: target, Err: err}
}

// KindOf returns the kind of the outermost *Error in err's chain,
// or KindUnknown.
func KindOf(err error) Kind {
	var fe *Error
	if errors.As(err, &fe) {
		return fe.Kind
	}
	return KindUnknown
}

// IsObstructed reports whether err is an obstruction failure.
func IsObstructed(err error) bool {
	return errors.Is(err, ErrObstructed)
}
