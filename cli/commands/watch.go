package commands

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/satishbabariya/migrago/cli/internal/config"
	"github.com/satishbabariya/migrago/cli/internal/ui"
	"github.com/satishbabariya/migrago/cli/internal/watch"
)

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	var name string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Regenerate migrations when the snapshot changes",
		Long:  "Watch the model snapshot file and run makemigrations automatically on every change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(name)
		},
	}

	cmd.Flags().StringVarP(&name, "name", "n", "", "Name for the generated migrations")

	return cmd
}

func runWatch(name string) error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}

	ui.PrintHeader("migrago watch", "Watching "+cfg.SnapshotPath)

	w, err := watch.NewWatcher(cfg.SnapshotPath, func() error {
		// prompting inside a watch loop would stall it
		if err := runMakeMigrations("", name, "", false, true); err != nil {
			ui.PrintError("%v", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	if err := w.Start(); err != nil {
		return err
	}
	defer w.Stop()

	ui.PrintInfo("Press Ctrl+C to stop")

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig

	ui.PrintInfo("Stopping watcher")
	return nil
}
