// Package operation defines the schema change operations a migration is
// made of.
package operation

import (
	"errors"
	"fmt"

	"github.com/satishbabariya/migrago/sqlgen"
	"github.com/satishbabariya/migrago/state"
)

// Kind discriminates the operation union. The values double as the "type"
// tag in serialized migration files.
type Kind string

const (
	KindCreateModel         Kind = "CreateModel"
	KindDeleteModel         Kind = "DeleteModel"
	KindAddField            Kind = "AddField"
	KindRemoveField         Kind = "RemoveField"
	KindAlterField          Kind = "AlterField"
	KindRenameField         Kind = "RenameField"
	KindAddIndex            Kind = "AddIndex"
	KindRemoveIndex         Kind = "RemoveIndex"
	KindAlterUniqueTogether Kind = "AlterUniqueTogether"
	KindRunSQL              Kind = "RunSQL"
)

var (
	ErrModelNotFound = errors.New("model not found")
	ErrFieldNotFound = errors.New("field not found")
	ErrIndexNotFound = errors.New("index not found")
	// ErrIrreversible marks operations that cannot be run backwards.
	ErrIrreversible = errors.New("operation is not reversible")
)

// Operation is one schema change. It is a tagged union: Type selects the
// variant and only that variant's fields are set. A union rather than an
// interface keeps operations directly serializable and lets the squasher
// pattern-match pairs without type assertions.
type Operation struct {
	Type Kind `json:"type"`

	// CreateModel, DeleteModel
	Name    string             `json:"name,omitempty"`
	Fields  []state.FieldDef   `json:"fields,omitempty"`
	Options state.ModelOptions `json:"options,omitempty"`

	// field and index operations
	ModelName string          `json:"model_name,omitempty"`
	Field     *state.FieldDef `json:"field,omitempty"`
	FieldName string          `json:"field_name,omitempty"`
	OldName   string          `json:"old_name,omitempty"`
	NewName   string          `json:"new_name,omitempty"`
	Index     *state.Index    `json:"index,omitempty"`
	IndexName string          `json:"index_name,omitempty"`

	// AlterUniqueTogether
	UniqueTogether [][]string `json:"unique_together,omitempty"`

	// RunSQL; an empty SQLBackwards makes the operation irreversible
	SQLForwards  string `json:"sql_forwards,omitempty"`
	SQLBackwards string `json:"sql_backwards,omitempty"`
}

func CreateModel(name string, fields []state.FieldDef, options state.ModelOptions) Operation {
	return Operation{Type: KindCreateModel, Name: name, Fields: fields, Options: options}
}

func DeleteModel(name string) Operation {
	return Operation{Type: KindDeleteModel, Name: name}
}

func AddField(modelName string, field state.FieldDef) Operation {
	return Operation{Type: KindAddField, ModelName: modelName, Field: &field}
}

func RemoveField(modelName, fieldName string) Operation {
	return Operation{Type: KindRemoveField, ModelName: modelName, FieldName: fieldName}
}

func AlterField(modelName, fieldName string, field state.FieldDef) Operation {
	return Operation{Type: KindAlterField, ModelName: modelName, FieldName: fieldName, Field: &field}
}

func RenameField(modelName, oldName, newName string) Operation {
	return Operation{Type: KindRenameField, ModelName: modelName, OldName: oldName, NewName: newName}
}

func AddIndex(modelName string, index state.Index) Operation {
	return Operation{Type: KindAddIndex, ModelName: modelName, Index: &index}
}

func RemoveIndex(modelName, indexName string) Operation {
	return Operation{Type: KindRemoveIndex, ModelName: modelName, IndexName: indexName}
}

func AlterUniqueTogether(modelName string, uniqueTogether [][]string) Operation {
	return Operation{Type: KindAlterUniqueTogether, ModelName: modelName, UniqueTogether: uniqueTogether}
}

func RunSQL(forwards, backwards string) Operation {
	return Operation{Type: KindRunSQL, SQLForwards: forwards, SQLBackwards: backwards}
}

// Describe returns a one-line human description.
func (op Operation) Describe() string {
	switch op.Type {
	case KindCreateModel:
		return fmt.Sprintf("Create model %s", op.Name)
	case KindDeleteModel:
		return fmt.Sprintf("Delete model %s", op.Name)
	case KindAddField:
		return fmt.Sprintf("Add field %s to %s", op.Field.Name, op.ModelName)
	case KindRemoveField:
		return fmt.Sprintf("Remove field %s from %s", op.FieldName, op.ModelName)
	case KindAlterField:
		return fmt.Sprintf("Alter field %s on %s", op.FieldName, op.ModelName)
	case KindRenameField:
		return fmt.Sprintf("Rename field %s to %s on %s", op.OldName, op.NewName, op.ModelName)
	case KindAddIndex:
		name := "unnamed"
		if op.Index != nil && op.Index.Name != "" {
			name = op.Index.Name
		}
		return fmt.Sprintf("Add index %s on %s", name, op.ModelName)
	case KindRemoveIndex:
		return fmt.Sprintf("Remove index %s from %s", op.IndexName, op.ModelName)
	case KindAlterUniqueTogether:
		return fmt.Sprintf("Alter unique_together for %s", op.ModelName)
	case KindRunSQL:
		return "Run SQL"
	default:
		return string(op.Type)
	}
}

// Reversible reports whether the operation has a backward direction.
func (op Operation) Reversible() bool {
	if op.Type == KindRunSQL {
		return op.SQLBackwards != ""
	}
	return true
}

// StateForwards applies the operation to the in-memory project state.
func (op Operation) StateForwards(appLabel string, st *state.ProjectState) {
	switch op.Type {
	case KindCreateModel:
		// fields are copied so later state mutations never write back
		// into the operation itself
		st.AddModel(state.ModelState{
			AppLabel: appLabel,
			Name:     op.Name,
			Fields:   append([]state.FieldDef(nil), op.Fields...),
			Options:  op.Options,
		})
	case KindDeleteModel:
		st.RemoveModel(appLabel, op.Name)
	case KindAddField:
		if model, ok := st.Model(appLabel, op.ModelName); ok {
			model.AddField(*op.Field)
			st.AddModel(model)
		}
	case KindRemoveField:
		if model, ok := st.Model(appLabel, op.ModelName); ok {
			model.RemoveField(op.FieldName)
			st.AddModel(model)
		}
	case KindAlterField:
		if model, ok := st.Model(appLabel, op.ModelName); ok {
			model.ReplaceField(op.FieldName, *op.Field)
			st.AddModel(model)
		}
	case KindRenameField:
		if model, ok := st.Model(appLabel, op.ModelName); ok {
			model.RenameField(op.OldName, op.NewName)
			st.AddModel(model)
		}
	case KindAddIndex:
		if model, ok := st.Model(appLabel, op.ModelName); ok {
			model.Options.Indexes = append(model.Options.Indexes, *op.Index)
			st.AddModel(model)
		}
	case KindRemoveIndex:
		if model, ok := st.Model(appLabel, op.ModelName); ok {
			kept := model.Options.Indexes[:0]
			for _, idx := range model.Options.Indexes {
				if idx.Name != op.IndexName {
					kept = append(kept, idx)
				}
			}
			model.Options.Indexes = kept
			st.AddModel(model)
		}
	case KindAlterUniqueTogether:
		if model, ok := st.Model(appLabel, op.ModelName); ok {
			model.Options.UniqueTogether = op.UniqueTogether
			st.AddModel(model)
		}
	case KindRunSQL:
		// raw SQL does not change the project state
	}
}

// tableName is the table operations act on. Operations address tables by the
// default naming scheme; per-model db_table overrides only affect
// CreateModel's own statement.
func tableName(appLabel, modelName string) string {
	return fmt.Sprintf("%s_%s", appLabel, modelName)
}

// DatabaseForwards renders the SQL applying the operation. fromState is the
// project state before this migration's operations, toState the state with
// operations up to and including this one applied.
func (op Operation) DatabaseForwards(appLabel string, editor sqlgen.Editor, fromState, toState *state.ProjectState) ([]string, error) {
	switch op.Type {
	case KindCreateModel:
		model, ok := toState.Model(appLabel, op.Name)
		if !ok {
			return nil, fmt.Errorf("%w: model %s not found in state", ErrModelNotFound, op.Name)
		}
		return editor.CreateTable(model), nil
	case KindDeleteModel:
		return editor.DropTable(tableName(appLabel, op.Name)), nil
	case KindAddField:
		return editor.AddColumn(tableName(appLabel, op.ModelName), *op.Field), nil
	case KindRemoveField:
		return editor.DropColumn(tableName(appLabel, op.ModelName), op.FieldName), nil
	case KindAlterField:
		oldField, err := lookupField(fromState, appLabel, op.ModelName, op.FieldName)
		if err != nil {
			return nil, err
		}
		return editor.AlterColumn(tableName(appLabel, op.ModelName), oldField, *op.Field), nil
	case KindRenameField:
		return editor.RenameColumn(tableName(appLabel, op.ModelName), op.OldName, op.NewName), nil
	case KindAddIndex:
		return editor.CreateIndex(tableName(appLabel, op.ModelName), *op.Index), nil
	case KindRemoveIndex:
		return editor.DropIndex(op.IndexName), nil
	case KindAlterUniqueTogether:
		var sqls []string
		for _, group := range op.UniqueTogether {
			sqls = append(sqls, editor.AddUniqueConstraint(tableName(appLabel, op.ModelName), group)...)
		}
		return sqls, nil
	case KindRunSQL:
		return []string{op.SQLForwards}, nil
	default:
		return nil, fmt.Errorf("unknown operation type %q", op.Type)
	}
}

// DatabaseBackwards renders the SQL undoing the operation. fromState is the
// state the forward operation produced; it supplies the definitions needed
// to restore what forwards removed.
func (op Operation) DatabaseBackwards(appLabel string, editor sqlgen.Editor, fromState, toState *state.ProjectState) ([]string, error) {
	switch op.Type {
	case KindCreateModel:
		return editor.DropTable(tableName(appLabel, op.Name)), nil
	case KindDeleteModel:
		model, ok := fromState.Model(appLabel, op.Name)
		if !ok {
			return nil, fmt.Errorf("%w: model %s not found in from state", ErrModelNotFound, op.Name)
		}
		return editor.CreateTable(model), nil
	case KindAddField:
		return editor.DropColumn(tableName(appLabel, op.ModelName), op.Field.ColumnName()), nil
	case KindRemoveField:
		field, err := lookupField(fromState, appLabel, op.ModelName, op.FieldName)
		if err != nil {
			return nil, err
		}
		return editor.AddColumn(tableName(appLabel, op.ModelName), field), nil
	case KindAlterField:
		oldField, err := lookupField(fromState, appLabel, op.ModelName, op.FieldName)
		if err != nil {
			return nil, err
		}
		return editor.AlterColumn(tableName(appLabel, op.ModelName), *op.Field, oldField), nil
	case KindRenameField:
		return editor.RenameColumn(tableName(appLabel, op.ModelName), op.NewName, op.OldName), nil
	case KindAddIndex:
		name := "unnamed_index"
		if op.Index != nil && op.Index.Name != "" {
			name = op.Index.Name
		}
		return editor.DropIndex(name), nil
	case KindRemoveIndex:
		model, ok := fromState.Model(appLabel, op.ModelName)
		if !ok {
			return nil, fmt.Errorf("%w: %s.%s", ErrModelNotFound, appLabel, op.ModelName)
		}
		for _, idx := range model.Options.Indexes {
			if idx.Name == op.IndexName {
				return editor.CreateIndex(tableName(appLabel, op.ModelName), idx), nil
			}
		}
		return nil, fmt.Errorf("%w: %s", ErrIndexNotFound, op.IndexName)
	case KindAlterUniqueTogether:
		var sqls []string
		if model, ok := fromState.Model(appLabel, op.ModelName); ok {
			for _, group := range model.Options.UniqueTogether {
				sqls = append(sqls, editor.AddUniqueConstraint(tableName(appLabel, op.ModelName), group)...)
			}
		}
		return sqls, nil
	case KindRunSQL:
		if op.SQLBackwards == "" {
			return nil, fmt.Errorf("%w: RunSQL has no backwards SQL", ErrIrreversible)
		}
		return []string{op.SQLBackwards}, nil
	default:
		return nil, fmt.Errorf("unknown operation type %q", op.Type)
	}
}

func lookupField(st *state.ProjectState, appLabel, modelName, fieldName string) (state.FieldDef, error) {
	model, ok := st.Model(appLabel, modelName)
	if !ok {
		return state.FieldDef{}, fmt.Errorf("%w: %s.%s", ErrModelNotFound, appLabel, modelName)
	}
	field, ok := model.Field(fieldName)
	if !ok {
		return state.FieldDef{}, fmt.Errorf("%w: %s on %s.%s", ErrFieldNotFound, fieldName, appLabel, modelName)
	}
	return field, nil
}
