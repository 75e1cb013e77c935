package report

import (
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranscript(t *testing.T) {
	want := "report first\n" +
		"  subroutine *app.Greeter.Greet hooked=true policy=\"return [yo]\"\n" +
		"    call 1 (\"bob\") -> \"yo\"\n" +
		"  constant *app.Limits.LIMIT hooked=false value=5\n"

	assert.Equal(t, want, Transcript(sampleReports()[0]))
}

func TestTranscript_IgnoresTimestamps(t *testing.T) {
	a := sampleReports()
	b := sampleReports()
	b[0].CreatedAt = b[0].CreatedAt.AddDate(1, 0, 0)

	assert.Equal(t, Transcript(a...), Transcript(b...))
}

func TestDiff(t *testing.T) {
	t.Run("identical reports", func(t *testing.T) {
		text, err := Diff(sampleReports(), sampleReports(), "a.yaml", "b.yaml")
		require.NoError(t, err)
		assert.Empty(t, text)
	})

	t.Run("changed call", func(t *testing.T) {
		changed := sampleReports()
		changed[0].Spies[0].Calls[0].Results = []string{`"hey"`}

		text, err := Diff(sampleReports(), changed, "a.yaml", "b.yaml")
		require.NoError(t, err)

		assert.Contains(t, text, "--- a.yaml\n")
		assert.Contains(t, text, "+++ b.yaml\n")
		assert.Contains(t, text, "@@")
		assert.Contains(t, text, "-    call 1 (\"bob\") -> \"yo\"\n")
		assert.Contains(t, text, "+    call 1 (\"bob\") -> \"hey\"\n")
	})
}

func TestColorize(t *testing.T) {
	previous := color.NoColor
	color.NoColor = false
	t.Cleanup(func() { color.NoColor = previous })

	diff := "--- a\n+++ b\n@@ -1 +1 @@\n-old\n+new\n same\n"
	out := Colorize(diff)

	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "old")
	assert.Contains(t, out, "new")
	assert.Contains(t, out, " same\n")
}

func TestColorize_Disabled(t *testing.T) {
	previous := color.NoColor
	color.NoColor = true
	t.Cleanup(func() { color.NoColor = previous })

	diff := "-old\n+new\n"
	assert.Equal(t, diff, Colorize(diff))
}
