package sqlgen

import (
	"fmt"

	"github.com/satishbabariya/migrago/state"
)

// MySQLEditor renders MySQL DDL: AUTO_INCREMENT keys, TINYINT(1) booleans,
// JSON columns, and MODIFY COLUMN for alterations.
type MySQLEditor struct{}

func (MySQLEditor) Vendor() string { return "mysql" }

func (e MySQLEditor) CreateTable(model state.ModelState) []string {
	return createTableSQL(model, bq, e.ColumnSQL)
}

func (MySQLEditor) DropTable(table string) []string {
	return []string{fmt.Sprintf("DROP TABLE IF EXISTS `%s`", table)}
}

func (e MySQLEditor) AddColumn(table string, field state.FieldDef) []string {
	return []string{fmt.Sprintf("ALTER TABLE `%s` ADD COLUMN `%s` %s",
		table, field.ColumnName(), e.ColumnSQL(field))}
}

func (MySQLEditor) DropColumn(table, column string) []string {
	return []string{fmt.Sprintf("ALTER TABLE `%s` DROP COLUMN `%s`", table, column)}
}

func (e MySQLEditor) AlterColumn(table string, _, newField state.FieldDef) []string {
	return []string{fmt.Sprintf("ALTER TABLE `%s` MODIFY COLUMN `%s` %s",
		table, newField.ColumnName(), e.ColumnSQL(newField))}
}

func (MySQLEditor) RenameColumn(table, oldName, newName string) []string {
	return []string{fmt.Sprintf("ALTER TABLE `%s` RENAME COLUMN `%s` TO `%s`",
		table, oldName, newName)}
}

func (MySQLEditor) CreateIndex(table string, index state.Index) []string {
	unique := ""
	if index.Unique {
		unique = "UNIQUE "
	}
	return []string{fmt.Sprintf("CREATE %sINDEX `%s` ON `%s` (%s)",
		unique, indexName(index), table, quoteAll(index.Fields, bq))}
}

func (MySQLEditor) DropIndex(name string) []string {
	return []string{fmt.Sprintf("DROP INDEX `%s`", name)}
}

func (MySQLEditor) AddUniqueConstraint(table string, columns []string) []string {
	return []string{fmt.Sprintf("ALTER TABLE `%s` ADD CONSTRAINT `%s` UNIQUE (%s)",
		table, uniqueConstraintName(table, columns), quoteAll(columns, bq))}
}

func (MySQLEditor) ColumnSQL(field state.FieldDef) string {
	nullStr := " NOT NULL"
	if field.PrimaryKey {
		nullStr = " PRIMARY KEY"
	} else if field.Null {
		nullStr = " NULL"
	}
	autoInc := ""
	if field.PrimaryKey && (field.Type.Kind == state.AutoField || field.Type.Kind == state.BigAutoField) {
		autoInc = " AUTO_INCREMENT"
	}
	uniqueStr := ""
	if field.Unique && !field.PrimaryKey {
		uniqueStr = " UNIQUE"
	}
	return mysqlTypeSQL(field.Type, field.MaxLength) + nullStr + autoInc + uniqueStr + defaultSQL(field)
}

func mysqlTypeSQL(t state.FieldType, maxLength int) string {
	switch t.Kind {
	case state.AutoField:
		return "INT"
	case state.BigAutoField:
		return "BIGINT"
	case state.CharField, state.EmailField, state.URLField, state.SlugField:
		if maxLength == 0 {
			maxLength = 255
		}
		return fmt.Sprintf("VARCHAR(%d)", maxLength)
	case state.TextField:
		return "LONGTEXT"
	case state.IntegerField:
		return "INT"
	case state.BigIntegerField:
		return "BIGINT"
	case state.SmallIntegerField:
		return "SMALLINT"
	case state.FloatField:
		return "DOUBLE"
	case state.DecimalField:
		return fmt.Sprintf("DECIMAL(%d, %d)", t.MaxDigits, t.DecimalPlaces)
	case state.BooleanField:
		return "TINYINT(1)"
	case state.DateField:
		return "DATE"
	case state.DateTimeField:
		return "DATETIME"
	case state.TimeField:
		return "TIME"
	case state.DurationField:
		return "BIGINT"
	case state.UUIDField:
		return "CHAR(36)"
	case state.BinaryField:
		return "LONGBLOB"
	case state.JSONField:
		return "JSON"
	case state.IPAddressField:
		return "VARCHAR(45)"
	case state.FilePathField:
		return "VARCHAR(255)"
	case state.ForeignKey, state.OneToOneField:
		return "BIGINT"
	default:
		return ""
	}
}
