package commands

import (
	"fmt"
	"sort"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/satishbabariya/migrago/cli/internal/config"
	"github.com/satishbabariya/migrago/cli/internal/ui"
	"github.com/satishbabariya/migrago/diff"
	"github.com/satishbabariya/migrago/graph"
	"github.com/satishbabariya/migrago/loader"
)

// NewMakeMigrationsCommand creates the makemigrations command.
func NewMakeMigrationsCommand() *cobra.Command {
	var name string
	var snapshot string
	var dryRun bool
	var noInput bool

	cmd := &cobra.Command{
		Use:   "makemigrations [app]",
		Short: "Generate migrations from snapshot changes",
		Long:  "Compare the model snapshot against the state described by existing migrations and write new migration files for the difference",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			onlyApp := ""
			if len(args) == 1 {
				onlyApp = args[0]
			}
			return runMakeMigrations(onlyApp, name, snapshot, dryRun, noInput)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name for the generated migrations")
	cmd.Flags().StringVar(&snapshot, "snapshot", "", "Path to the model snapshot (defaults to the configured snapshot_path)")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be generated without writing files")
	cmd.Flags().BoolVar(&noInput, "no-input", false, "Never prompt; use automatic names")

	return cmd
}

func runMakeMigrations(onlyApp, name, snapshot string, dryRun, noInput bool) error {
	cfg, l, err := loadProject()
	if err != nil {
		return err
	}

	current, err := l.ProjectState()
	if err != nil {
		return fmt.Errorf("failed to replay migrations: %w", err)
	}

	snapshotPath := snapshot
	if snapshotPath == "" {
		snapshotPath = cfg.SnapshotPath
	}
	target, err := loader.ReadSnapshot(config.AppFs, snapshotPath)
	if err != nil {
		return fmt.Errorf("failed to read snapshot %s: %w", snapshotPath, err)
	}

	changes := diff.Changes(current, target)
	if len(changes) == 0 {
		ui.PrintInfo("No changes detected")
		return nil
	}

	apps := make([]string, 0, len(changes))
	for app := range changes {
		if onlyApp != "" && app != onlyApp {
			continue
		}
		apps = append(apps, app)
	}
	sort.Strings(apps)
	if len(apps) == 0 {
		ui.PrintInfo("No changes detected for app %q", onlyApp)
		return nil
	}

	for _, app := range apps {
		ops := changes[app]

		custom := name
		if custom == "" && !noInput {
			prompt := &survey.Input{
				Message: fmt.Sprintf("Migration name for %q (leave empty for automatic):", app),
			}
			if err := survey.AskOne(prompt, &custom); err != nil {
				return err
			}
		}

		number := loader.NextMigrationNumber(config.AppFs, cfg.MigrationsDir, app)
		migrationName := loader.GenerateMigrationName(number, custom)

		m := graph.NewMigration(app, migrationName)
		leaves := l.Graph().LeafNodes(app)
		if len(leaves) == 0 {
			m.MarkInitial()
		}
		for _, leaf := range leaves {
			m.DependsOn(leaf.App, leaf.Name)
		}
		for _, op := range ops {
			m.Add(op)
		}

		ui.PrintSection(fmt.Sprintf("Migrations for %q:", app))
		lines := make([]string, 0, len(ops))
		for _, op := range ops {
			lines = append(lines, op.Describe())
		}
		ui.PrintList(lines)

		if dryRun {
			ui.PrintWarning("Dry run, not writing %s", loader.MigrationFilePath(cfg.MigrationsDir, app, migrationName))
			continue
		}

		path, err := loader.WriteMigration(config.AppFs, cfg.MigrationsDir, m)
		if err != nil {
			return err
		}
		ui.PrintSuccess("Created %s", path)
	}

	return nil
}
