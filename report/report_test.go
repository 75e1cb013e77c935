package report

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type named struct{}

func (named) String() string { return "named!" }

func TestNew(t *testing.T) {
	before := time.Now().UTC()
	r := New("case")

	assert.Equal(t, CurrentVersion, r.Version)
	assert.Equal(t, "case", r.Label)
	assert.False(t, r.CreatedAt.Before(before.Add(-time.Second)))
	assert.Empty(t, r.Spies)
	assert.Equal(t, 0, r.Calls())
}

func TestReport_Calls(t *testing.T) {
	reports := sampleReports()

	assert.Equal(t, 1, reports[0].Calls())
	assert.Equal(t, 2, reports[1].Calls())
}

func TestFormatValue(t *testing.T) {
	value := 3

	tests := []struct {
		name  string
		value any
		want  string
	}{
		{name: "nil", value: nil, want: "nil"},
		{name: "string", value: "hi", want: `"hi"`},
		{name: "int", value: 42, want: "42"},
		{name: "bool", value: true, want: "true"},
		{name: "slice", value: []int{1, 2}, want: "[1 2]"},
		{name: "error", value: errors.New("boom"), want: `error("boom")`},
		{name: "stringer", value: named{}, want: "named!"},
		{name: "pointer", value: &value, want: "*int"},
		{name: "func", value: func(int) string { return "" }, want: "func(int) string"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatValue(tt.value))
		})
	}
}

func TestFormatValues(t *testing.T) {
	assert.Nil(t, FormatValues(nil))
	assert.Equal(t, []string{`"a"`, "1", "nil"}, FormatValues([]any{"a", 1, nil}))
}
