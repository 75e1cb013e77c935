package cli

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffCmd_Identical(t *testing.T) {
	dir := t.TempDir()
	old := filepath.Join(dir, "old.yaml")
	current := filepath.Join(dir, "new.json")
	writeReports(t, old, sampleReport("case", `"hi"`))
	writeReports(t, current, sampleReport("case", `"hi"`))

	out, err := executeCommand(t, newDiffCmd(), "diff", old, current)
	require.NoError(t, err)
	assert.Contains(t, out, "reports are identical")
}

func TestDiffCmd_Differs(t *testing.T) {
	previous := noColorFlag
	noColorFlag = true
	t.Cleanup(func() { noColorFlag = previous })

	dir := t.TempDir()
	old := filepath.Join(dir, "old.yaml")
	current := filepath.Join(dir, "new.yaml")
	writeReports(t, old, sampleReport("case", `"hi"`))
	writeReports(t, current, sampleReport("case", `"yo"`))

	out, err := executeCommand(t, newDiffCmd(), "diff", old, current)
	require.ErrorIs(t, err, errReportsDiffer)

	assert.Contains(t, out, "--- "+old)
	assert.Contains(t, out, "+++ "+current)
	assert.Contains(t, out, `-    call 1 ("bob") -> "hi"`)
	assert.Contains(t, out, `+    call 1 ("bob") -> "yo"`)
}

func TestDiffCmd_Args(t *testing.T) {
	_, err := executeCommand(t, newDiffCmd(), "diff", "only-one.yaml")
	require.Error(t, err)
}
