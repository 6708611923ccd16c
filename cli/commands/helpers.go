package commands

import (
	"fmt"
	"sort"

	"github.com/satishbabariya/migrago/cli/internal/config"
	"github.com/satishbabariya/migrago/executor"
	"github.com/satishbabariya/migrago/graph"
	"github.com/satishbabariya/migrago/history"
	"github.com/satishbabariya/migrago/loader"
	"github.com/satishbabariya/migrago/operation"
	"github.com/satishbabariya/migrago/state"
)

// loadProject reads the configuration and the on-disk migration files.
func loadProject() (*config.Config, *loader.Loader, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	l := loader.New(config.AppFs, cfg.MigrationsDir)
	if err := l.Load(); err != nil {
		return nil, nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	return cfg, l, nil
}

// parseTarget interprets the positional arguments of migration commands.
// No arguments means "everything"; "app name" pins a target migration.
func parseTarget(args []string) (*graph.Key, error) {
	switch len(args) {
	case 0:
		return nil, nil
	case 2:
		return &graph.Key{App: args[0], Name: args[1]}, nil
	default:
		return nil, fmt.Errorf("expected no arguments or <app> <migration>, got %d arguments", len(args))
	}
}

// appliedState replays the state changes of every already-applied migration
// in dependency order, reconstructing the schema the database is at.
func appliedState(g *graph.Graph, ops map[graph.Key][]operation.Operation, recorder *history.Recorder) (state.ProjectState, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return state.ProjectState{}, err
	}
	var applied []graph.Key
	for _, key := range order {
		if recorder.IsApplied(key) {
			applied = append(applied, key)
		}
	}
	return executor.StateAfter(applied, ops), nil
}

// appLabels returns the sorted set of app labels present in the graph.
func appLabels(g *graph.Graph) []string {
	seen := map[string]bool{}
	for _, key := range g.NodeKeys() {
		seen[key.App] = true
	}
	labels := make([]string, 0, len(seen))
	for app := range seen {
		labels = append(labels, app)
	}
	sort.Strings(labels)
	return labels
}
