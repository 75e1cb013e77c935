package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/berkcaputcu/spy/report"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// showCmd represents the show command.
var showCmd = newShowCmd()

func newShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <files...>",
		Short: "Render report files as tables",
		Long:  "Render every report of the given files as a table of spies and a table of their calls.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := loadAll(cmd.Context(), store, args)
			if err != nil {
				return err
			}

			for i, reports := range files {
				cmd.Printf("==> %s <==\n", args[i])

				if err := report.Render(cmd.OutOrStdout(), reports...); err != nil {
					return fmt.Errorf("failed to render %s: %w", args[i], err)
				}
			}

			return nil
		},
	}
}

// loadAll loads every path concurrently, keeping the order of paths.
func loadAll(ctx context.Context, s report.Store, paths []string) ([][]report.Report, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	files := make([][]report.Report, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			reports, err := s.LoadReports(path)
			if err != nil {
				slog.Error("Failed to load reports", "path", path, "error", err)
				return err
			}

			files[i] = reports

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return files, nil
}

func init() {
	rootCmd.AddCommand(showCmd)
}
