package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/migrago/cli/internal/ui"
	"github.com/satishbabariya/migrago/history"
)

// NewShowMigrationsCommand creates the showmigrations command.
func NewShowMigrationsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "showmigrations [app]",
		Short: "List migrations and their applied state",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app := ""
			if len(args) == 1 {
				app = args[0]
			}
			return runShowMigrations(cmd.Context(), app)
		},
	}

	return cmd
}

func runShowMigrations(ctx context.Context, onlyApp string) error {
	cfg, l, err := loadProject()
	if err != nil {
		return err
	}

	recorder := history.NewRecorder()
	if cfg.DatabaseURL != "" {
		backend, err := history.OpenSQLBackend(cfg.Provider, cfg.DatabaseURL)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer backend.Close()
		if err := recorder.LoadFromDB(ctx, backend); err != nil {
			return fmt.Errorf("failed to load migration history: %w", err)
		}
	} else {
		ui.PrintWarning("No database URL configured; showing all migrations as unapplied")
	}

	migrations := l.Migrations()

	printers := ui.GetColorPrinters()
	var rows [][]string
	for _, app := range appLabels(l.Graph()) {
		if onlyApp != "" && app != onlyApp {
			continue
		}
		for _, m := range migrations {
			if m.AppLabel != app {
				continue
			}
			status := printers["warning"].Sprint("[ ]")
			if recorder.IsApplied(m.Key()) {
				status = printers["success"].Sprint("[X]")
			}
			rows = append(rows, []string{app, m.Name, status})
		}
	}

	if len(rows) == 0 {
		ui.PrintInfo("No migrations found in %s", cfg.MigrationsDir)
		return nil
	}

	ui.PrintTable([]string{"App", "Migration", "Applied"}, rows)
	return nil
}
