package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// initCmd represents the init command.
var initCmd = newInitCmd()

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a spy.yaml with the settings in effect",
		Long: `Write spy.yaml to the current directory with the report and log settings
currently in effect, defaults included. An existing file is kept unless
--force is given.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			force, err := cmd.Flags().GetBool(forceFlagName)
			if err != nil {
				return err
			}

			write := viper.SafeWriteConfigAs
			if force {
				write = viper.WriteConfigAs
			}

			path := filepath.Join(configFolderPath, configFileName)
			if err := write(path); err != nil {
				return fmt.Errorf("failed to write config file: %w", err)
			}

			cmd.Printf("wrote %s\n", path)

			return nil
		},
	}

	cmd.Flags().Bool(forceFlagName, false, "overwrite an existing "+configFileName)

	return cmd
}

func init() {
	rootCmd.AddCommand(initCmd)
}
