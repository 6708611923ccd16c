// Package commands implements the migrago CLI commands.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/satishbabariya/migrago/cli/internal/ui"
)

// NewRootCommand creates the root command with all subcommands attached.
func NewRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "migrago",
		Short:         "Database schema migrations for Go projects",
		Long:          "Generate, inspect, and apply database schema migrations from a declarative model snapshot",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.AddCommand(NewMakeMigrationsCommand())
	cmd.AddCommand(NewMigrateCommand())
	cmd.AddCommand(NewSQLMigrateCommand())
	cmd.AddCommand(NewShowMigrationsCommand())
	cmd.AddCommand(NewSquashMigrationsCommand())
	cmd.AddCommand(NewDiffCommand())
	cmd.AddCommand(NewWatchCommand())
	cmd.AddCommand(NewVersionCommand())

	return cmd
}

// Execute is the main entry point for the CLI
func Execute() error {
	if err := NewRootCommand().Execute(); err != nil {
		ui.PrintError("%v", err)
		return err
	}
	return nil
}
