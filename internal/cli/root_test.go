package cli

import (
	"path/filepath"
	"testing"

	"github.com/berkcaputcu/spy/report"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Help(t *testing.T) {
	out, err := executeCommand(t, newVersionCmd())
	require.NoError(t, err)

	assert.Contains(t, out, "spy inspects the reports")
	assert.Contains(t, out, "version")
}

func TestRootCmd_RegistersSubcommands(t *testing.T) {
	names := make([]string, 0, len(rootCmd.Commands()))
	for _, c := range rootCmd.Commands() {
		names = append(names, c.Name())
	}

	for _, want := range []string{"show", "diff", "convert", "init", "version"} {
		assert.Contains(t, names, want)
	}

	for _, flag := range []string{formatFlagName, noColorFlagName, logFileFlagName, verboseFlagName} {
		assert.NotNil(t, rootCmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		path    string
		want    report.Format
		wantErr bool
	}{
		{name: "extension", path: "out.json", want: report.FormatJSON},
		{name: "flag wins over extension", flag: "msgpack", path: "out.json", want: report.FormatMsgpack},
		{name: "config default without extension", path: "out", want: report.FormatYAML},
		{name: "unknown flag", flag: "toml", path: "out.json", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			previous := formatFlag
			formatFlag = tt.flag
			t.Cleanup(func() { formatFlag = previous })

			got, err := outputFormat(filepath.Join(t.TempDir(), tt.path))
			if tt.wantErr {
				require.Error(t, err)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestColorEnabled(t *testing.T) {
	previous := noColorFlag
	t.Cleanup(func() { noColorFlag = previous })

	noColorFlag = true
	assert.False(t, colorEnabled())

	noColorFlag = false
	assert.True(t, colorEnabled())
}
