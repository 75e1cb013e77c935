// Package cli provides the commands of the spy report tool.
package cli

import (
	"fmt"
	"os"

	"github.com/berkcaputcu/spy/report"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

var store report.Store

// formatFlag overrides the report format otherwise taken from file names.
var formatFlag string

// noColorFlag disables colored output.
var noColorFlag bool

var logFileFlag string

var verboseFlag bool

func init() {
	configureRootFlags(rootCmd)

	store = report.NewFileStore("")
}

const rootLongDescription = `spy inspects the reports written by the spy test-doubling library:
snapshots of the method spies, constant spies and doubles active in a test,
with every call they recorded.

Report files are streams of reports in YAML (.yaml, .yml), JSON (.json)
or MessagePack (.msgpack, .mp), picked by file extension.`

// rootCmd represents the base command when called without any subcommands.
var rootCmd = newRootCmd()

func newRootCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "spy",
		Short: "Inspect spy call reports",
		Long:  rootLongDescription,
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			configureLogger(logFileFlag, verboseFlag)
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}
}

func configureRootFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().
		StringVarP(
			&formatFlag, formatFlagName, "f",
			"",
			"report format for written files (yaml, json, msgpack); default: by extension",
		)

	cmd.PersistentFlags().BoolVar(&noColorFlag, noColorFlagName, !viper.GetBool(reportColorKey), "disable colored output")

	cmd.PersistentFlags().StringVar(&logFileFlag, logFileFlagName, viper.GetString(logFilenameKey), "log file path")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(logFileFlagName), logFilenameKey)

	cmd.PersistentFlags().BoolVarP(&verboseFlag, verboseFlagName, "v", viper.GetBool(logVerboseKey), "log at debug level")
	bindFlagToConfig(cmd.PersistentFlags().Lookup(verboseFlagName), logVerboseKey)
}

// bindFlagToConfig wires a Cobra flag to a Viper key so config/env values feed the flag.
func bindFlagToConfig(flag *pflag.Flag, key string) {
	if flag == nil {
		cobra.CheckErr(fmt.Errorf("flag for config key %q not found", key))
		return
	}

	cobra.CheckErr(viper.BindPFlag(key, flag))
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// outputFormat resolves the format of a file the tool writes.
func outputFormat(path string) (report.Format, error) {
	name := formatFlag
	if name == "" {
		if f, err := report.FormatFromPath(path); err == nil {
			return f, nil
		}

		name = viper.GetString(reportFormatKey)
	}

	return report.ParseFormat(name)
}

func colorEnabled() bool {
	return !noColorFlag && viper.GetBool(reportColorKey)
}
