// Package loader reads and writes migration files and builds the migration
// graph from a migrations directory.
package loader

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/afero"

	"github.com/satishbabariya/migrago/graph"
	"github.com/satishbabariya/migrago/operation"
)

// migrationDoc is the on-disk JSON shape of one migration. Dependencies are
// two-element [app, name] arrays; malformed entries are skipped on read.
type migrationDoc struct {
	AppLabel     string                `json:"app_label"`
	Name         string                `json:"name"`
	Dependencies [][]string            `json:"dependencies"`
	Initial      bool                  `json:"initial,omitempty"`
	Operations   []operation.Operation `json:"operations"`
}

// MarshalMigration renders a migration as indented JSON.
func MarshalMigration(m *graph.Migration) ([]byte, error) {
	doc := migrationDoc{
		AppLabel:     m.AppLabel,
		Name:         m.Name,
		Dependencies: [][]string{},
		Initial:      m.Initial,
		Operations:   m.Operations,
	}
	for _, dep := range m.Dependencies {
		doc.Dependencies = append(doc.Dependencies, []string{dep.App, dep.Name})
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("serializing migration %s: %w", m.Name, err)
	}
	return data, nil
}

// UnmarshalMigration parses migration JSON.
func UnmarshalMigration(data []byte) (*graph.Migration, error) {
	var doc migrationDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing migration: %w", err)
	}
	m := &graph.Migration{
		AppLabel:   doc.AppLabel,
		Name:       doc.Name,
		Initial:    doc.Initial,
		Operations: doc.Operations,
	}
	for _, dep := range doc.Dependencies {
		if len(dep) != 2 {
			continue
		}
		m.Dependencies = append(m.Dependencies, graph.Key{App: dep[0], Name: dep[1]})
	}
	return m, nil
}

// MigrationFilePath is the canonical location of one migration file:
// dir/<app_label>/<name>.json.
func MigrationFilePath(dir, appLabel, name string) string {
	return filepath.Join(dir, appLabel, name+".json")
}

// WriteMigration writes the migration to its canonical path, creating
// parent directories.
func WriteMigration(fs afero.Fs, dir string, m *graph.Migration) (string, error) {
	data, err := MarshalMigration(m)
	if err != nil {
		return "", err
	}
	path := MigrationFilePath(dir, m.AppLabel, m.Name)
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("creating migrations directory: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return "", fmt.Errorf("writing migration %s: %w", m.Name, err)
	}
	return path, nil
}

// ReadMigration parses one migration file.
func ReadMigration(fs afero.Fs, path string) (*graph.Migration, error) {
	data, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, fmt.Errorf("reading migration file %s: %w", path, err)
	}
	return UnmarshalMigration(data)
}

// GenerateMigrationName builds "0001_custom" style names; without a custom
// part it falls back to a timestamped auto name.
func GenerateMigrationName(number int, custom string) string {
	if custom != "" {
		return fmt.Sprintf("%04d_%s", number, custom)
	}
	return fmt.Sprintf("%04d_auto_%s", number, time.Now().Format("20060102_1504"))
}

// NextMigrationNumber scans an app's migration directory and returns the
// highest leading number plus one, or 1 when the app has no migrations yet.
func NextMigrationNumber(fs afero.Fs, dir, appLabel string) int {
	entries, err := afero.ReadDir(fs, filepath.Join(dir, appLabel))
	if err != nil {
		return 1
	}
	max := 0
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || !strings.HasSuffix(name, ".json") {
			continue
		}
		digits := name
		for i, r := range name {
			if r < '0' || r > '9' {
				digits = name[:i]
				break
			}
		}
		if n, err := strconv.Atoi(digits); err == nil && n > max {
			max = n
		}
	}
	return max + 1
}
