package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/migrago/cli/internal/config"
	"github.com/satishbabariya/migrago/cli/internal/ui"
	"github.com/satishbabariya/migrago/diff"
	"github.com/satishbabariya/migrago/loader"
)

// NewDiffCommand creates the diff command.
func NewDiffCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "diff",
		Short: "Show the schema difference between migrations and the snapshot",
		Long:  "Print a unified diff of the schema state described by the migration files against the model snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDiff()
		},
	}

	return cmd
}

func runDiff() error {
	cfg, l, err := loadProject()
	if err != nil {
		return err
	}

	current, err := l.ProjectState()
	if err != nil {
		return fmt.Errorf("failed to replay migrations: %w", err)
	}

	target, err := loader.ReadSnapshot(config.AppFs, cfg.SnapshotPath)
	if err != nil {
		return fmt.Errorf("failed to read snapshot %s: %w", cfg.SnapshotPath, err)
	}

	text, err := diff.Unified(current, target, "migrations", cfg.SnapshotPath)
	if err != nil {
		return err
	}
	if text == "" {
		ui.PrintInfo("No schema differences")
		return nil
	}

	ui.PrintUnifiedDiff(text)
	return nil
}
