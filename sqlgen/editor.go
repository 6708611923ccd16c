// Package sqlgen renders dialect-specific DDL for schema operations.
package sqlgen

import (
	"fmt"
	"strings"

	"github.com/satishbabariya/migrago/state"
)

// Editor renders DDL statements for one database dialect. Every method
// returns complete statements ready to execute in order; statements starting
// with "--" are advisory only and must not be sent to the database.
type Editor interface {
	Vendor() string
	CreateTable(model state.ModelState) []string
	DropTable(table string) []string
	AddColumn(table string, field state.FieldDef) []string
	DropColumn(table, column string) []string
	AlterColumn(table string, oldField, newField state.FieldDef) []string
	RenameColumn(table, oldName, newName string) []string
	CreateIndex(table string, index state.Index) []string
	DropIndex(name string) []string
	AddUniqueConstraint(table string, columns []string) []string
	ColumnSQL(field state.FieldDef) string
}

// ErrUnknownProvider is returned by New for unsupported database providers.
var ErrUnknownProvider = fmt.Errorf("unknown database provider")

// New returns the editor for a provider string as it appears in
// configuration or connection URLs.
func New(provider string) (Editor, error) {
	switch strings.ToLower(provider) {
	case "postgresql", "postgres":
		return PostgresEditor{}, nil
	case "sqlite", "sqlite3":
		return SQLiteEditor{}, nil
	case "mysql":
		return MySQLEditor{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, provider)
	}
}

func defaultSQL(field state.FieldDef) string {
	if field.Default == nil {
		return ""
	}
	return " DEFAULT " + defaultLiteral(*field.Default)
}

func defaultLiteral(v state.Value) string {
	if b, ok := v.Bool(); ok {
		if b {
			return "TRUE"
		}
		return "FALSE"
	}
	if s, ok := v.Str(); ok {
		return "'" + strings.ReplaceAll(s, "'", "''") + "'"
	}
	if v.IsNull() {
		return "NULL"
	}
	return v.String()
}

func onDeleteSQL(action state.OnDelete) string {
	switch action {
	case state.Cascade:
		return "CASCADE"
	case state.Protect:
		return "RESTRICT"
	case state.SetNull:
		return "SET NULL"
	case state.SetDefault:
		return "SET DEFAULT"
	default:
		return "NO ACTION"
	}
}

// fkTargetTable maps an "app_label.model_name" reference to its table name.
func fkTargetTable(to string) string {
	return strings.ReplaceAll(to, ".", "_")
}

// createTableSQL assembles a CREATE TABLE statement with the dialect's quote
// rune; relation fields add inline FOREIGN KEY constraints after the columns.
func createTableSQL(model state.ModelState, quote func(string) string, columnSQL func(state.FieldDef) string) []string {
	var colDefs, constraints []string
	for _, f := range model.Fields {
		colDefs = append(colDefs, fmt.Sprintf("%s %s", quote(f.ColumnName()), columnSQL(f)))
		if f.IsRelation() {
			constraints = append(constraints, fmt.Sprintf(
				"FOREIGN KEY (%s) REFERENCES %s (%s) ON DELETE %s",
				quote(f.ColumnName()),
				quote(fkTargetTable(f.Type.To)),
				quote("id"),
				onDeleteSQL(f.Type.OnDelete),
			))
		}
	}
	body := strings.Join(append(colDefs, constraints...), ", ")
	return []string{fmt.Sprintf("CREATE TABLE %s (%s)", quote(model.DBTable()), body)}
}

func dq(s string) string { return `"` + s + `"` }
func bq(s string) string { return "`" + s + "`" }

func indexName(idx state.Index) string {
	if idx.Name == "" {
		return "unnamed_index"
	}
	return idx.Name
}

func quoteAll(items []string, quote func(string) string) string {
	quoted := make([]string, len(items))
	for i, it := range items {
		quoted[i] = quote(it)
	}
	return strings.Join(quoted, ", ")
}

func uniqueConstraintName(table string, columns []string) string {
	return fmt.Sprintf("%s_%s_uniq", table, strings.Join(columns, "_"))
}
