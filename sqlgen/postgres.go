package sqlgen

import (
	"fmt"

	"github.com/satishbabariya/migrago/state"
)

// PostgresEditor renders PostgreSQL DDL: SERIAL autofields, JSONB, native
// UUID and BOOLEAN, and full ALTER COLUMN support.
type PostgresEditor struct{}

func (PostgresEditor) Vendor() string { return "postgres" }

func (e PostgresEditor) CreateTable(model state.ModelState) []string {
	return createTableSQL(model, dq, e.ColumnSQL)
}

func (PostgresEditor) DropTable(table string) []string {
	return []string{fmt.Sprintf(`DROP TABLE IF EXISTS "%s"`, table)}
}

func (e PostgresEditor) AddColumn(table string, field state.FieldDef) []string {
	return []string{fmt.Sprintf(`ALTER TABLE "%s" ADD COLUMN "%s" %s`,
		table, field.ColumnName(), e.ColumnSQL(field))}
}

func (PostgresEditor) DropColumn(table, column string) []string {
	return []string{fmt.Sprintf(`ALTER TABLE "%s" DROP COLUMN "%s"`, table, column)}
}

func (PostgresEditor) AlterColumn(table string, _, newField state.FieldDef) []string {
	col := newField.ColumnName()
	stmts := []string{fmt.Sprintf(`ALTER TABLE "%s" ALTER COLUMN "%s" TYPE %s`,
		table, col, pgTypeSQL(newField.Type, newField.MaxLength))}

	if newField.Null {
		stmts = append(stmts, fmt.Sprintf(`ALTER TABLE "%s" ALTER COLUMN "%s" DROP NOT NULL`, table, col))
	} else {
		stmts = append(stmts, fmt.Sprintf(`ALTER TABLE "%s" ALTER COLUMN "%s" SET NOT NULL`, table, col))
	}

	if newField.Default != nil {
		stmts = append(stmts, fmt.Sprintf(`ALTER TABLE "%s" ALTER COLUMN "%s" SET DEFAULT %s`,
			table, col, defaultLiteral(*newField.Default)))
	} else {
		stmts = append(stmts, fmt.Sprintf(`ALTER TABLE "%s" ALTER COLUMN "%s" DROP DEFAULT`, table, col))
	}
	return stmts
}

func (PostgresEditor) RenameColumn(table, oldName, newName string) []string {
	return []string{fmt.Sprintf(`ALTER TABLE "%s" RENAME COLUMN "%s" TO "%s"`,
		table, oldName, newName)}
}

func (PostgresEditor) CreateIndex(table string, index state.Index) []string {
	unique := ""
	if index.Unique {
		unique = "UNIQUE "
	}
	return []string{fmt.Sprintf(`CREATE %sINDEX "%s" ON "%s" (%s)`,
		unique, indexName(index), table, quoteAll(index.Fields, dq))}
}

func (PostgresEditor) DropIndex(name string) []string {
	return []string{fmt.Sprintf(`DROP INDEX IF EXISTS "%s"`, name)}
}

func (PostgresEditor) AddUniqueConstraint(table string, columns []string) []string {
	return []string{fmt.Sprintf(`ALTER TABLE "%s" ADD CONSTRAINT "%s" UNIQUE (%s)`,
		table, uniqueConstraintName(table, columns), quoteAll(columns, dq))}
}

func (PostgresEditor) ColumnSQL(field state.FieldDef) string {
	nullStr := " NOT NULL"
	if field.PrimaryKey {
		nullStr = " PRIMARY KEY"
	} else if field.Null {
		nullStr = " NULL"
	}
	uniqueStr := ""
	if field.Unique && !field.PrimaryKey {
		uniqueStr = " UNIQUE"
	}
	return pgTypeSQL(field.Type, field.MaxLength) + nullStr + uniqueStr + defaultSQL(field)
}

func pgTypeSQL(t state.FieldType, maxLength int) string {
	switch t.Kind {
	case state.AutoField:
		return "SERIAL"
	case state.BigAutoField:
		return "BIGSERIAL"
	case state.CharField, state.EmailField, state.URLField, state.SlugField:
		if maxLength == 0 {
			maxLength = 255
		}
		return fmt.Sprintf("VARCHAR(%d)", maxLength)
	case state.TextField:
		return "TEXT"
	case state.IntegerField:
		return "INTEGER"
	case state.BigIntegerField:
		return "BIGINT"
	case state.SmallIntegerField:
		return "SMALLINT"
	case state.FloatField:
		return "DOUBLE PRECISION"
	case state.DecimalField:
		return fmt.Sprintf("NUMERIC(%d, %d)", t.MaxDigits, t.DecimalPlaces)
	case state.BooleanField:
		return "BOOLEAN"
	case state.DateField:
		return "DATE"
	case state.DateTimeField:
		return "TIMESTAMP"
	case state.TimeField:
		return "TIME"
	case state.DurationField:
		return "INTERVAL"
	case state.UUIDField:
		return "UUID"
	case state.BinaryField:
		return "BYTEA"
	case state.JSONField:
		return "JSONB"
	case state.IPAddressField:
		return "INET"
	case state.FilePathField:
		return "VARCHAR(255)"
	case state.ForeignKey, state.OneToOneField:
		return "BIGINT"
	default:
		return ""
	}
}
