package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/migrago/cli/internal/ui"
	"github.com/satishbabariya/migrago/executor"
	"github.com/satishbabariya/migrago/history"
	"github.com/satishbabariya/migrago/sqlgen"
)

// NewMigrateCommand creates the migrate command.
func NewMigrateCommand() *cobra.Command {
	var fake bool
	var planOnly bool

	cmd := &cobra.Command{
		Use:   "migrate [app] [migration]",
		Short: "Apply migrations to the database",
		Long:  "Apply unapplied migrations, or migrate one app to a target migration, rolling back applied migrations past it",
		Args:  cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runMigrate(cmd.Context(), args, fake, planOnly)
		},
	}

	cmd.Flags().BoolVar(&fake, "fake", false, "Record migrations as applied without running their SQL")
	cmd.Flags().BoolVar(&planOnly, "plan", false, "Show the migration plan without applying it")

	return cmd
}

func runMigrate(ctx context.Context, args []string, fake, planOnly bool) error {
	cfg, l, err := loadProject()
	if err != nil {
		return err
	}

	target, err := parseTarget(args)
	if err != nil {
		return err
	}

	if cfg.DatabaseURL == "" {
		return fmt.Errorf("no database URL configured; set DATABASE_URL or database_url in .migrago.yaml")
	}

	editor, err := sqlgen.New(cfg.Provider)
	if err != nil {
		return err
	}

	backend, err := history.OpenSQLBackend(cfg.Provider, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer backend.Close()

	recorder := history.NewRecorder()
	if err := recorder.LoadFromDB(ctx, backend); err != nil {
		return fmt.Errorf("failed to load migration history: %w", err)
	}

	exec := executor.New(editor, recorder)
	plan, err := exec.MakePlan(l.Graph(), target)
	if err != nil {
		return err
	}

	if plan.IsEmpty() {
		ui.PrintInfo("Nothing to migrate")
		return nil
	}

	if planOnly {
		ui.PrintSection("Planned operations:")
		rows := make([][]string, 0, len(plan.Steps))
		for _, step := range plan.Steps {
			rows = append(rows, []string{step.Migration.App, step.Migration.Name, step.Direction.String()})
		}
		ui.PrintTable([]string{"App", "Migration", "Direction"}, rows)
		return nil
	}

	ops := l.Operations()
	initial, err := appliedState(l.Graph(), ops, recorder)
	if err != nil {
		return err
	}

	spinner, _ := ui.PrintSpinner(fmt.Sprintf("Applying %d migration(s)...", len(plan.Steps)))
	sqls, err := exec.ExecuteAgainstDB(ctx, plan, ops, initial, backend, fake)
	if err != nil {
		if spinner != nil {
			spinner.Fail("Migration failed")
		}
		return err
	}
	if spinner != nil {
		spinner.Success("Migrations applied")
	}

	for _, step := range plan.Steps {
		ui.PrintSuccess("%s %s (%s)", step.Migration.App, step.Migration.Name, step.Direction)
	}
	if fake {
		ui.PrintWarning("Faked %d migration(s); %d statement(s) were rendered but not executed", len(plan.Steps), len(sqls))
	}
	return nil
}
