package cli

import (
	"errors"

	"github.com/berkcaputcu/spy/report"
	"github.com/spf13/cobra"
)

// errReportsDiffer makes diff exit non-zero when the reports differ.
var errReportsDiffer = errors.New("reports differ")

// diffCmd represents the diff command.
var diffCmd = newDiffCmd()

func newDiffCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "diff <old> <new>",
		Short: "Compare the calls recorded in two report files",
		Long: `Print a unified diff of the spies and calls recorded in two report files.
Timestamps are ignored. Exits non-zero when the reports differ.`,
		Args:         cobra.ExactArgs(2),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := loadAll(cmd.Context(), store, args)
			if err != nil {
				return err
			}

			text, err := report.Diff(files[0], files[1], args[0], args[1])
			if err != nil {
				return err
			}

			if text == "" {
				cmd.Println("reports are identical")
				return nil
			}

			if colorEnabled() {
				text = report.Colorize(text)
			}

			cmd.Print(text)

			return errReportsDiffer
		},
	}
}

func init() {
	rootCmd.AddCommand(diffCmd)
}
