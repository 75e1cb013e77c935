package cli

import (
	"fmt"

	"github.com/berkcaputcu/spy/report"
	"github.com/spf13/cobra"
)

// convertCmd represents the convert command.
var convertCmd = newConvertCmd()

func newConvertCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "convert <in> <out>",
		Short: "Convert a report file to another format",
		Long: `Read every report of <in> and write them to <out>. The output format is
taken from --format, the extension of <out>, or report.format in spy.yaml.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			reports, err := store.LoadReports(args[0])
			if err != nil {
				return err
			}

			format, err := outputFormat(args[1])
			if err != nil {
				return err
			}

			if err := report.NewFileStore(format).SaveReports(args[1], reports); err != nil {
				return fmt.Errorf("failed to convert %s: %w", args[0], err)
			}

			cmd.Printf("wrote %d report(s) to %s (%s)\n", len(reports), args[1], format)

			return nil
		},
	}
}

func init() {
	rootCmd.AddCommand(convertCmd)
}
