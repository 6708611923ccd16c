package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/migrago/cli/internal/ui"
	"github.com/satishbabariya/migrago/executor"
	"github.com/satishbabariya/migrago/graph"
	"github.com/satishbabariya/migrago/history"
	"github.com/satishbabariya/migrago/sqlgen"
)

// NewSQLMigrateCommand creates the sqlmigrate command.
func NewSQLMigrateCommand() *cobra.Command {
	var database string
	var backwards bool

	cmd := &cobra.Command{
		Use:   "sqlmigrate <app> <migration>",
		Short: "Print the SQL for one migration",
		Long:  "Render the SQL statements a migration would execute, without touching any database",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSQLMigrate(args[0], args[1], database, backwards)
		},
	}

	cmd.Flags().StringVar(&database, "database", "", "Database provider to render for (defaults to the configured provider)")
	cmd.Flags().BoolVar(&backwards, "backwards", false, "Render the SQL for reverting the migration")

	return cmd
}

func runSQLMigrate(app, name, database string, backwards bool) error {
	cfg, l, err := loadProject()
	if err != nil {
		return err
	}

	provider := database
	if provider == "" {
		provider = cfg.Provider
	}
	editor, err := sqlgen.New(provider)
	if err != nil {
		return err
	}

	target := graph.Key{App: app, Name: name}
	if _, ok := l.Migration(target); !ok {
		return fmt.Errorf("migration %s not found in %s", target, cfg.MigrationsDir)
	}

	order, err := l.Graph().TopologicalOrder()
	if err != nil {
		return err
	}
	ops := l.Operations()

	// Schema state just before the target migration
	var before []graph.Key
	for _, key := range order {
		if key == target {
			break
		}
		before = append(before, key)
	}
	initial := executor.StateAfter(before, ops)

	recorder := history.NewRecorder()
	if backwards {
		recorder.Apply(target)
	}
	exec := executor.New(editor, recorder)

	direction := executor.Forward
	if backwards {
		direction = executor.Backward
		// the backward step renders against the state with the target applied
		initial = executor.StateAfter(append(before, target), ops)
	}

	plan := executor.Plan{Steps: []executor.Step{{Migration: target, Direction: direction}}}
	sqls, err := exec.ExecutePlan(plan, ops, initial)
	if err != nil {
		return err
	}

	if len(sqls) == 0 {
		ui.PrintInfo("Migration %s produces no SQL on %s", target, editor.Vendor())
		return nil
	}

	ui.PrintSection(fmt.Sprintf("SQL for %s (%s, %s):", target, editor.Vendor(), direction))
	return ui.PrintSQL(sqls)
}
