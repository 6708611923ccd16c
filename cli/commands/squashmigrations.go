package commands

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/migrago/cli/internal/config"
	"github.com/satishbabariya/migrago/cli/internal/ui"
	"github.com/satishbabariya/migrago/graph"
	"github.com/satishbabariya/migrago/loader"
	"github.com/satishbabariya/migrago/operation"
	"github.com/satishbabariya/migrago/squash"
)

// NewSquashMigrationsCommand creates the squashmigrations command.
func NewSquashMigrationsCommand() *cobra.Command {
	var name string
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "squashmigrations <app>",
		Short: "Squash an app's migrations into one",
		Long:  "Merge the operations of all migrations of one app into a single equivalent migration",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSquashMigrations(args[0], name, dryRun)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "squashed", "Name for the squashed migration")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show the squashed operations without writing a file")

	return cmd
}

func runSquashMigrations(app, name string, dryRun bool) error {
	cfg, l, err := loadProject()
	if err != nil {
		return err
	}

	order, err := l.Graph().TopologicalOrder()
	if err != nil {
		return err
	}

	allOps := l.Operations()
	var combined []operation.Operation
	var squashedKeys []graph.Key
	externalDeps := map[graph.Key]bool{}
	initial := false

	for _, key := range order {
		if key.App != app {
			continue
		}
		squashedKeys = append(squashedKeys, key)
		combined = append(combined, allOps[key]...)
		if l.Graph().Initial(key) {
			initial = true
		}
		for _, dep := range l.Graph().Dependencies(key) {
			if dep.App != app {
				externalDeps[dep] = true
			}
		}
	}

	if len(squashedKeys) == 0 {
		return fmt.Errorf("no migrations found for app %q", app)
	}
	if len(squashedKeys) == 1 {
		ui.PrintInfo("App %q has a single migration, nothing to squash", app)
		return nil
	}

	optimized := squash.Squash(combined)
	ui.PrintSection(fmt.Sprintf("Squashing %d migrations of %q: %d operations down to %d", len(squashedKeys), app, len(combined), len(optimized)))

	lines := make([]string, 0, len(optimized))
	for _, op := range optimized {
		lines = append(lines, op.Describe())
	}
	ui.PrintList(lines)

	number := loader.NextMigrationNumber(config.AppFs, cfg.MigrationsDir, app)
	migrationName := loader.GenerateMigrationName(number, name)

	m := graph.NewMigration(app, migrationName)
	if initial {
		m.MarkInitial()
	}
	deps := make([]graph.Key, 0, len(externalDeps))
	for dep := range externalDeps {
		deps = append(deps, dep)
	}
	sort.Slice(deps, func(i, j int) bool {
		if deps[i].App != deps[j].App {
			return deps[i].App < deps[j].App
		}
		return deps[i].Name < deps[j].Name
	})
	for _, dep := range deps {
		m.DependsOn(dep.App, dep.Name)
	}
	for _, op := range optimized {
		m.Add(op)
	}

	if dryRun {
		ui.PrintWarning("Dry run, not writing %s", loader.MigrationFilePath(cfg.MigrationsDir, app, migrationName))
		return nil
	}

	path, err := loader.WriteMigration(config.AppFs, cfg.MigrationsDir, m)
	if err != nil {
		return err
	}
	ui.PrintSuccess("Created %s", path)
	ui.PrintWarning("Delete the replaced migration files before the next run: the squashed migration starts the app's history over")

	var replaced []string
	for _, key := range squashedKeys {
		replaced = append(replaced, loader.MigrationFilePath(cfg.MigrationsDir, key.App, key.Name))
	}
	ui.PrintList(replaced)
	return nil
}
