package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/berkcaputcu/spy/report"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func executeCommand(t *testing.T, sub *cobra.Command, args ...string) (string, error) {
	t.Helper()

	previous := logFileFlag
	logFileFlag = filepath.Join(t.TempDir(), "spy.log")
	t.Cleanup(func() { logFileFlag = previous })

	cmd := newRootCmd()
	cmd.AddCommand(sub)

	out := &bytes.Buffer{}
	cmd.SetOut(out)
	cmd.SetErr(out)
	cmd.SetArgs(args)

	err := cmd.Execute()

	return out.String(), err
}

func writeReports(t *testing.T, path string, reports ...report.Report) {
	t.Helper()

	require.NoError(t, report.NewFileStore("").SaveReports(path, reports))
}

func sampleReport(label string, results ...string) report.Report {
	r := report.New(label)
	r.Spies = []report.Spy{{
		Kind:   "subroutine",
		Target: "*app.Greeter",
		Name:   "Greet",
		Hooked: true,
		Policy: "pass through",
		Calls:  []report.Call{{Args: []string{`"bob"`}, Results: results}},
	}}

	return r
}
