package scenario

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Verdicts is an insertion-ordered mapping from case name to
// verdict. Each name is written at most once.
type Verdicts struct {
	order  []string
	values map[string]Verdict
}

// NewVerdicts creates an empty mapping.
func NewVerdicts() *Verdicts {
	return &Verdicts{values: make(map[string]Verdict)}
}

// Record stores the final verdict for name.
func (v *Verdicts) Record(name string, verdict Verdict) error {
	if !verdict.IsFinal() {
		return fmt.Errorf("verdict for %q is not final: %s", name, verdict)
	}
	if _, dup := v.values[name]; dup {
		return fmt.Errorf("verdict for %q already recorded", name)
	}
	v.order = append(v.order, name)
	v.values[name] = verdict
	return nil
}

// Get returns the verdict for name.
func (v *Verdicts) Get(name string) (Verdict, bool) {
	verdict, ok := v.values[name]
	return verdict, ok
}

// Names returns case names in execution order.
func (v *Verdicts) Names() []string {
	return append([]string(nil), v.order...)
}

// Len returns the number of recorded verdicts.
func (v *Verdicts) Len() int {
	return len(v.order)
}

// Each calls fn for every entry in execution order.
func (v *Verdicts) Each(fn func(name string, verdict Verdict)) {
	for _, name := range v.order {
		fn(name, v.values[name])
	}
}

// Count returns how many cases have the given verdict.
func (v *Verdicts) Count(verdict Verdict) int {
	n := 0
	for _, got := range v.values {
		if got == verdict {
			n++
		}
	}
	return n
}

// AnyFailed reports whether any case failed.
func (v *Verdicts) AnyFailed() bool {
	return v.Count(Failed) > 0
}

// MarshalJSON encodes the mapping as an object whose keys keep
// execution order.
func (v *Verdicts) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, name := range v.order {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(v.values[name])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}
