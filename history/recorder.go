// Package history tracks which migrations have been applied, mirroring
// Django's django_migrations table.
package history

import (
	"context"
	"fmt"
	"sort"

	"github.com/satishbabariya/migrago/graph"
)

// Backend is the minimal database surface the recorder and executor need.
// Statements arrive fully rendered; the backend does no templating.
type Backend interface {
	Execute(ctx context.Context, query string) error
	Query(ctx context.Context, query string) ([][]string, error)
	Vendor() string
}

const (
	ensureTableSQL = `CREATE TABLE IF NOT EXISTS "django_migrations" (` +
		`"id" BIGSERIAL PRIMARY KEY, ` +
		`"app" VARCHAR(255) NOT NULL, ` +
		`"name" VARCHAR(255) NOT NULL, ` +
		`"applied" TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`

	ensureTableSQLite = `CREATE TABLE IF NOT EXISTS "django_migrations" (` +
		`"id" INTEGER PRIMARY KEY AUTOINCREMENT, ` +
		`"app" TEXT NOT NULL, ` +
		`"name" TEXT NOT NULL, ` +
		`"applied" TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP)`

	selectAppliedSQL = `SELECT "app", "name" FROM "django_migrations"`
)

// Recorder is the in-memory applied set plus its database persistence.
// Migration app and name strings are developer-authored input; the history
// statements interpolate them directly and their exact shape is part of the
// compatibility contract with Django's table.
type Recorder struct {
	applied map[graph.Key]struct{}
}

func NewRecorder() *Recorder {
	return &Recorder{applied: map[graph.Key]struct{}{}}
}

// Apply marks a migration applied in memory only.
func (r *Recorder) Apply(key graph.Key) {
	r.applied[key] = struct{}{}
}

// Unapply clears the in-memory applied mark.
func (r *Recorder) Unapply(key graph.Key) {
	delete(r.applied, key)
}

func (r *Recorder) IsApplied(key graph.Key) bool {
	_, ok := r.applied[key]
	return ok
}

// Applied returns the applied keys in sorted order.
func (r *Recorder) Applied() []graph.Key {
	keys := make([]graph.Key, 0, len(r.applied))
	for k := range r.applied {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

// EnsureTable creates the history table when missing.
func (r *Recorder) EnsureTable(ctx context.Context, backend Backend) error {
	ddl := ensureTableSQL
	if backend.Vendor() == "sqlite" {
		ddl = ensureTableSQLite
	}
	if err := backend.Execute(ctx, ddl); err != nil {
		return fmt.Errorf("creating history table: %w", err)
	}
	return nil
}

// RecordSQL renders the INSERT for one applied migration.
func RecordSQL(key graph.Key) string {
	return fmt.Sprintf(`INSERT INTO "django_migrations" ("app", "name", "applied") VALUES ('%s', '%s', CURRENT_TIMESTAMP)`,
		key.App, key.Name)
}

// UnrecordSQL renders the DELETE for one reverted migration.
func UnrecordSQL(key graph.Key) string {
	return fmt.Sprintf(`DELETE FROM "django_migrations" WHERE "app" = '%s' AND "name" = '%s'`,
		key.App, key.Name)
}

// RecordToDB persists one applied migration.
func (r *Recorder) RecordToDB(ctx context.Context, backend Backend, key graph.Key) error {
	if err := backend.Execute(ctx, RecordSQL(key)); err != nil {
		return fmt.Errorf("recording %s: %w", key, err)
	}
	return nil
}

// UnrecordFromDB removes one migration's history row.
func (r *Recorder) UnrecordFromDB(ctx context.Context, backend Backend, key graph.Key) error {
	if err := backend.Execute(ctx, UnrecordSQL(key)); err != nil {
		return fmt.Errorf("unrecording %s: %w", key, err)
	}
	return nil
}

// LoadFromDB replaces the in-memory set with the table's contents, creating
// the table first when missing.
func (r *Recorder) LoadFromDB(ctx context.Context, backend Backend) error {
	if err := r.EnsureTable(ctx, backend); err != nil {
		return err
	}
	rows, err := backend.Query(ctx, selectAppliedSQL)
	if err != nil {
		return fmt.Errorf("loading applied migrations: %w", err)
	}
	r.applied = map[graph.Key]struct{}{}
	for _, row := range rows {
		if len(row) < 2 {
			continue
		}
		r.applied[graph.Key{App: row[0], Name: row[1]}] = struct{}{}
	}
	return nil
}

func sortKeys(keys []graph.Key) {
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].App != keys[j].App {
			return keys[i].App < keys[j].App
		}
		return keys[i].Name < keys[j].Name
	})
}
