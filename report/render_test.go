package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRender(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReports()...))

	out := buf.String()
	upper := strings.ToUpper(out)

	assert.Contains(t, out, "Report first (2026-10-14 09:30:00)")
	assert.Contains(t, out, "Report second (2026-10-14 09:30:01)")
	assert.Contains(t, upper, "KIND")
	assert.Contains(t, upper, "POLICY")
	assert.Contains(t, upper, "TOTAL SPIES 2")
	assert.Contains(t, out, "*app.Greeter")
	assert.Contains(t, out, "return [yo]")
	assert.Contains(t, out, "value 5")
	assert.Contains(t, out, `*app.Greeter.Greet`)
	assert.Contains(t, out, `"bob"`)
	assert.Contains(t, out, `panic "kaput"`)
	assert.Contains(t, out, "boom")
}

func TestRender_WithoutCalls(t *testing.T) {
	r := sampleReports()[0]
	r.Label = ""
	r.Spies = r.Spies[1:]

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, r))

	out := buf.String()
	assert.Contains(t, out, "Report (unlabeled)")
	assert.Contains(t, out, "*app.Limits")
	assert.NotContains(t, strings.ToUpper(out), "RESULTS")
}

func TestRender_Nothing(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf))
	assert.Empty(t, buf.String())
}
