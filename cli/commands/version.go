package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/migrago/cli/internal/update"
	"github.com/satishbabariya/migrago/cli/internal/version"
)

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	var full bool
	var checkUpdates bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			if full {
				fmt.Println(info.FullString())
			} else {
				fmt.Println(info.String())
			}
			if checkUpdates {
				return update.CheckForUpdates(info.Version)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&full, "full", false, "Print build date, commit, and platform details")
	cmd.Flags().BoolVar(&checkUpdates, "check-updates", false, "Check whether a newer release exists")

	return cmd
}
