package history

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
)

// SQLBackend adapts a database/sql handle to the Backend interface. The
// driver is registered by the caller; the binary blank-imports lib/pq,
// go-sql-driver/mysql and mattn/go-sqlite3.
type SQLBackend struct {
	db     *sql.DB
	vendor string
}

// NewSQLBackend wraps an open handle. The provider string is normalized to
// the vendor names the engine switches on.
func NewSQLBackend(db *sql.DB, provider string) *SQLBackend {
	return &SQLBackend{db: db, vendor: normalizeVendor(provider)}
}

// OpenSQLBackend opens a connection for a provider and DSN.
func OpenSQLBackend(provider, dsn string) (*SQLBackend, error) {
	driver := driverName(provider)
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("opening %s database: %w", provider, err)
	}
	return NewSQLBackend(db, provider), nil
}

func (b *SQLBackend) Execute(ctx context.Context, query string) error {
	if _, err := b.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("executing statement: %w", err)
	}
	return nil
}

func (b *SQLBackend) Query(ctx context.Context, query string) ([][]string, error) {
	rows, err := b.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying: %w", err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	var out [][]string
	for rows.Next() {
		values := make([]sql.NullString, len(cols))
		scan := make([]interface{}, len(cols))
		for i := range values {
			scan[i] = &values[i]
		}
		if err := rows.Scan(scan...); err != nil {
			return nil, err
		}
		row := make([]string, len(cols))
		for i, v := range values {
			row[i] = v.String
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

func (b *SQLBackend) Vendor() string { return b.vendor }

func (b *SQLBackend) Close() error { return b.db.Close() }

func normalizeVendor(provider string) string {
	switch strings.ToLower(provider) {
	case "postgresql", "postgres":
		return "postgres"
	case "sqlite", "sqlite3":
		return "sqlite"
	default:
		return strings.ToLower(provider)
	}
}

func driverName(provider string) string {
	switch strings.ToLower(provider) {
	case "postgresql", "postgres":
		return "postgres"
	case "sqlite", "sqlite3":
		return "sqlite3"
	default:
		return strings.ToLower(provider)
	}
}
