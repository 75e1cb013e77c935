package cli

import (
	"runtime/debug"
	"strings"

	"github.com/berkcaputcu/spy/report"
	"github.com/spf13/cobra"
)

// versionCmd represents the version command.
var versionCmd = newVersionCmd()

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the spy version and the report formats it reads",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cmd.Printf("spy %s\n", buildVersion())

			names := make([]string, len(report.Formats))
			for i, f := range report.Formats {
				names[i] = string(f)
			}

			cmd.Printf("report format v%d (%s)\n", report.CurrentVersion, strings.Join(names, ", "))

			if info, ok := debug.ReadBuildInfo(); ok {
				cmd.Printf("built with %s\n", info.GoVersion)
			}
		},
	}
}

func buildVersion() string {
	info, ok := debug.ReadBuildInfo()
	if !ok || info.Main.Version == "" {
		return "unknown"
	}

	return info.Main.Version
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
