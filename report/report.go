// Package report defines serializable snapshots of spies and their call
// logs, and the codecs, storage and rendering built around them.
package report

import (
	"fmt"
	"reflect"
	"strconv"
	"time"
)

// CurrentVersion is the version written into new reports.
const CurrentVersion = 1

// Report is a snapshot of every interception an agency tracked at one
// point in time.
type Report struct {
	Version   int       `yaml:"version" json:"version" msgpack:"version"`
	Label     string    `yaml:"label,omitempty" json:"label,omitempty" msgpack:"label,omitempty"`
	CreatedAt time.Time `yaml:"created_at" json:"created_at" msgpack:"created_at"`
	Spies     []Spy     `yaml:"spies" json:"spies" msgpack:"spies"`
}

// Spy describes one method spy, constant spy or double.
type Spy struct {
	Kind   string `yaml:"kind" json:"kind" msgpack:"kind"`
	Target string `yaml:"target" json:"target" msgpack:"target"`
	Name   string `yaml:"name,omitempty" json:"name,omitempty" msgpack:"name,omitempty"`
	Hooked bool   `yaml:"hooked" json:"hooked" msgpack:"hooked"`
	Policy string `yaml:"policy,omitempty" json:"policy,omitempty" msgpack:"policy,omitempty"`
	Value  string `yaml:"value,omitempty" json:"value,omitempty" msgpack:"value,omitempty"`
	Calls  []Call `yaml:"calls,omitempty" json:"calls,omitempty" msgpack:"calls,omitempty"`
}

// Call describes one recorded invocation, values already formatted.
type Call struct {
	Args    []string `yaml:"args" json:"args" msgpack:"args"`
	Results []string `yaml:"results,omitempty" json:"results,omitempty" msgpack:"results,omitempty"`
	Error   string   `yaml:"error,omitempty" json:"error,omitempty" msgpack:"error,omitempty"`
	Panic   string   `yaml:"panic,omitempty" json:"panic,omitempty" msgpack:"panic,omitempty"`
}

// New returns an empty report stamped with the current time.
func New(label string) Report {
	return Report{Version: CurrentVersion, Label: label, CreatedAt: time.Now().UTC()}
}

// Calls returns the total number of calls recorded in r.
func (r Report) Calls() int {
	total := 0
	for _, s := range r.Spies {
		total += len(s.Calls)
	}

	return total
}

// FormatValue renders v for a report. Pointers and funcs render as their
// type so snapshots of equal runs compare equal.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "nil"
	case string:
		return strconv.Quote(x)
	case error:
		return "error(" + strconv.Quote(x.Error()) + ")"
	case fmt.Stringer:
		return x.String()
	}

	switch reflect.TypeOf(v).Kind() {
	case reflect.Func, reflect.Pointer, reflect.Chan, reflect.UnsafePointer:
		return reflect.TypeOf(v).String()
	}

	return fmt.Sprintf("%v", v)
}

// FormatValues applies FormatValue to every element of values.
func FormatValues(values []any) []string {
	if values == nil {
		return nil
	}

	out := make([]string, len(values))
	for i, v := range values {
		out[i] = FormatValue(v)
	}

	return out
}
