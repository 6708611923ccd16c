package loader

import (
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/afero"

	"github.com/satishbabariya/migrago/executor"
	"github.com/satishbabariya/migrago/graph"
	"github.com/satishbabariya/migrago/operation"
	"github.com/satishbabariya/migrago/state"
)

// Loader reads every migration under a directory tree laid out as
// <dir>/<app_label>/<name>.json and exposes the resulting graph. A missing
// directory is not an error: the project simply has no migrations yet.
type Loader struct {
	fs         afero.Fs
	dir        string
	migrations map[graph.Key]*graph.Migration
	graph      *graph.Graph
}

func New(fs afero.Fs, dir string) *Loader {
	return &Loader{
		fs:         fs,
		dir:        dir,
		migrations: map[graph.Key]*graph.Migration{},
		graph:      graph.New(),
	}
}

// Load scans the migrations directory and builds a validated graph. All
// nodes register before any edge, so dependency order between files does
// not matter; a dependency on an unknown migration is an error.
func (l *Loader) Load() error {
	l.migrations = map[graph.Key]*graph.Migration{}
	l.graph = graph.New()

	exists, err := afero.DirExists(l.fs, l.dir)
	if err != nil {
		return fmt.Errorf("checking migrations directory: %w", err)
	}
	if !exists {
		return nil
	}

	entries, err := afero.ReadDir(l.fs, l.dir)
	if err != nil {
		return fmt.Errorf("reading migrations directory: %w", err)
	}
	var apps []string
	for _, entry := range entries {
		if entry.IsDir() {
			apps = append(apps, entry.Name())
		}
	}
	sort.Strings(apps)

	for _, app := range apps {
		files, err := afero.ReadDir(l.fs, filepath.Join(l.dir, app))
		if err != nil {
			return fmt.Errorf("reading migrations for app %s: %w", app, err)
		}
		var names []string
		for _, f := range files {
			if !f.IsDir() && strings.HasSuffix(f.Name(), ".json") {
				names = append(names, f.Name())
			}
		}
		sort.Strings(names)

		for _, name := range names {
			m, err := ReadMigration(l.fs, filepath.Join(l.dir, app, name))
			if err != nil {
				return err
			}
			l.migrations[m.Key()] = m
			l.graph.AddNode(m.Key(), m.Initial)
		}
	}

	for key, m := range l.migrations {
		for _, dep := range m.Dependencies {
			if err := l.graph.AddDependency(key, dep); err != nil {
				return fmt.Errorf("migration %s: %w", key, err)
			}
		}
	}
	return l.graph.Validate()
}

func (l *Loader) Graph() *graph.Graph { return l.graph }

// Migration returns one loaded migration.
func (l *Loader) Migration(key graph.Key) (*graph.Migration, bool) {
	m, ok := l.migrations[key]
	return m, ok
}

// Migrations returns every loaded migration in topological order. The order
// is only valid while the graph validates, which Load guarantees.
func (l *Loader) Migrations() []*graph.Migration {
	order, err := l.graph.TopologicalOrder()
	if err != nil {
		return nil
	}
	out := make([]*graph.Migration, 0, len(order))
	for _, key := range order {
		if m, ok := l.migrations[key]; ok {
			out = append(out, m)
		}
	}
	return out
}

// Operations returns every migration's operations keyed for the executor.
func (l *Loader) Operations() map[graph.Key][]operation.Operation {
	ops := make(map[graph.Key][]operation.Operation, len(l.migrations))
	for key, m := range l.migrations {
		ops[key] = m.Operations
	}
	return ops
}

// ProjectState replays every loaded migration in dependency order and
// returns the schema they describe.
func (l *Loader) ProjectState() (state.ProjectState, error) {
	order, err := l.graph.TopologicalOrder()
	if err != nil {
		return state.ProjectState{}, err
	}
	return executor.StateAfter(order, l.Operations()), nil
}

// ReadSnapshot parses a desired-state snapshot file.
func ReadSnapshot(fs afero.Fs, path string) (state.ProjectState, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return state.ProjectState{}, fmt.Errorf("reading snapshot %s: %w", path, err)
	}
	return state.UnmarshalSnapshot(data)
}
