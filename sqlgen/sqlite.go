package sqlgen

import (
	"fmt"

	"github.com/satishbabariya/migrago/state"
)

// SQLiteEditor renders SQLite DDL. SQLite has limited ALTER TABLE support,
// so column alterations fall back to the table recreation strategy and emit
// advisory "--" statements describing the manual part.
type SQLiteEditor struct{}

func (SQLiteEditor) Vendor() string { return "sqlite" }

func (e SQLiteEditor) CreateTable(model state.ModelState) []string {
	return createTableSQL(model, dq, e.ColumnSQL)
}

func (SQLiteEditor) DropTable(table string) []string {
	return []string{fmt.Sprintf(`DROP TABLE IF EXISTS "%s"`, table)}
}

func (e SQLiteEditor) AddColumn(table string, field state.FieldDef) []string {
	return []string{fmt.Sprintf(`ALTER TABLE "%s" ADD COLUMN "%s" %s`,
		table, field.ColumnName(), e.ColumnSQL(field))}
}

func (SQLiteEditor) DropColumn(table, column string) []string {
	return []string{
		fmt.Sprintf(`-- SQLite: recreate table to drop column "%s"`, column),
		fmt.Sprintf(`ALTER TABLE "%s" DROP COLUMN "%s"`, table, column),
	}
}

func (SQLiteEditor) AlterColumn(table string, _, newField state.FieldDef) []string {
	col := newField.ColumnName()
	nullStr := " NOT NULL"
	if newField.Null {
		nullStr = " NULL"
	}
	return []string{
		fmt.Sprintf(`-- SQLite: recreate table to alter column "%s"`, col),
		fmt.Sprintf(`-- New column definition: "%s" %s%s%s`,
			col, sqliteTypeSQL(newField.Type), nullStr, defaultSQL(newField)),
		fmt.Sprintf(`CREATE TABLE "__%s_new" AS SELECT * FROM "%s"`, table, table),
		fmt.Sprintf(`DROP TABLE "%s"`, table),
		fmt.Sprintf(`ALTER TABLE "__%s_new" RENAME TO "%s"`, table, table),
	}
}

func (SQLiteEditor) RenameColumn(table, oldName, newName string) []string {
	// RENAME COLUMN needs SQLite 3.25.0+
	return []string{fmt.Sprintf(`ALTER TABLE "%s" RENAME COLUMN "%s" TO "%s"`,
		table, oldName, newName)}
}

func (SQLiteEditor) CreateIndex(table string, index state.Index) []string {
	unique := ""
	if index.Unique {
		unique = "UNIQUE "
	}
	return []string{fmt.Sprintf(`CREATE %sINDEX "%s" ON "%s" (%s)`,
		unique, indexName(index), table, quoteAll(index.Fields, dq))}
}

func (SQLiteEditor) DropIndex(name string) []string {
	return []string{fmt.Sprintf(`DROP INDEX IF EXISTS "%s"`, name)}
}

func (SQLiteEditor) AddUniqueConstraint(table string, columns []string) []string {
	// enforced through a unique index, ADD CONSTRAINT is unsupported
	return []string{fmt.Sprintf(`CREATE UNIQUE INDEX "%s" ON "%s" (%s)`,
		uniqueConstraintName(table, columns), table, quoteAll(columns, dq))}
}

func (SQLiteEditor) ColumnSQL(field state.FieldDef) string {
	nullStr := " NOT NULL"
	if field.PrimaryKey {
		nullStr = " PRIMARY KEY"
	} else if field.Null {
		nullStr = ""
	}
	autoInc := ""
	if field.PrimaryKey && (field.Type.Kind == state.AutoField || field.Type.Kind == state.BigAutoField) {
		autoInc = " AUTOINCREMENT"
	}
	uniqueStr := ""
	if field.Unique && !field.PrimaryKey {
		uniqueStr = " UNIQUE"
	}
	return sqliteTypeSQL(field.Type) + nullStr + autoInc + uniqueStr + defaultSQL(field)
}

func sqliteTypeSQL(t state.FieldType) string {
	switch t.Kind {
	case state.AutoField, state.BigAutoField,
		state.IntegerField, state.BigIntegerField, state.SmallIntegerField,
		state.BooleanField, state.ForeignKey, state.OneToOneField:
		return "INTEGER"
	case state.FloatField, state.DecimalField:
		return "REAL"
	case state.BinaryField:
		return "BLOB"
	default:
		return "TEXT"
	}
}
