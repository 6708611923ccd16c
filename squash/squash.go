// Package squash collapses a sequence of operations into a minimal
// equivalent list, mirroring Django's squashmigrations.
package squash

import (
	"github.com/satishbabariya/migrago/operation"
	"github.com/satishbabariya/migrago/state"
)

// Squash optimizes an operation list. Passes repeat until the list length is
// stable, so chained reductions (AddField then AlterField then RemoveField)
// fully collapse. Squashing an already squashed list is a no-op.
//
// Reductions:
//   - CreateModel + DeleteModel of the same model cancel, along with every
//     field and index operation on that model in between
//   - AddField folds into an earlier CreateModel
//   - RemoveField cancels a standalone AddField, or drops the field from an
//     earlier CreateModel
//   - AlterField rewrites the field in a standalone AddField or CreateModel
//   - RenameField renames the field in a standalone AddField or CreateModel
//   - RemoveIndex cancels an AddIndex with the same index name
//
// Everything else, RunSQL included, passes through unchanged. A DeleteModel
// with no earlier CreateModel survives: the model predates the squashed
// window.
func Squash(ops []operation.Operation) []operation.Operation {
	result := append([]operation.Operation(nil), ops...)
	for {
		before := len(result)
		result = optimizePass(result)
		if len(result) == before {
			return result
		}
	}
}

func optimizePass(ops []operation.Operation) []operation.Operation {
	var result []operation.Operation
	for _, op := range ops {
		if merged := tryMerge(&result, op); !merged {
			result = append(result, op)
		}
	}
	return result
}

// tryMerge folds op into the accumulated list. It reports true when the
// operation was absorbed and should not be appended.
func tryMerge(existing *[]operation.Operation, op operation.Operation) bool {
	switch op.Type {
	case operation.KindDeleteModel:
		if idx := findCreateModel(*existing, op.Name); idx >= 0 {
			out := (*existing)[:0]
			for i, e := range *existing {
				if i == idx || touchesModel(e, op.Name) {
					continue
				}
				out = append(out, e)
			}
			*existing = out
			return true
		}

	case operation.KindAddField:
		if idx := findCreateModel(*existing, op.ModelName); idx >= 0 {
			(*existing)[idx].Fields = append(cloneFields((*existing)[idx].Fields), *op.Field)
			return true
		}

	case operation.KindRemoveField:
		if idx := findAddField(*existing, op.ModelName, op.FieldName); idx >= 0 {
			*existing = append((*existing)[:idx], (*existing)[idx+1:]...)
			return true
		}
		if idx := findCreateModelWithField(*existing, op.ModelName, op.FieldName); idx >= 0 {
			var kept []state.FieldDef
			for _, f := range (*existing)[idx].Fields {
				if f.Name != op.FieldName {
					kept = append(kept, f)
				}
			}
			(*existing)[idx].Fields = kept
			return true
		}

	case operation.KindAlterField:
		if idx := findAddField(*existing, op.ModelName, op.FieldName); idx >= 0 {
			field := *op.Field
			(*existing)[idx].Field = &field
			return true
		}
		if idx := findCreateModelWithField(*existing, op.ModelName, op.FieldName); idx >= 0 {
			fields := cloneFields((*existing)[idx].Fields)
			for i := range fields {
				if fields[i].Name == op.FieldName {
					fields[i] = *op.Field
					break
				}
			}
			(*existing)[idx].Fields = fields
			return true
		}

	case operation.KindRenameField:
		if idx := findAddField(*existing, op.ModelName, op.OldName); idx >= 0 {
			field := *(*existing)[idx].Field
			field.Name = op.NewName
			field.Column = op.NewName
			(*existing)[idx].Field = &field
			return true
		}
		if idx := findCreateModelWithField(*existing, op.ModelName, op.OldName); idx >= 0 {
			fields := cloneFields((*existing)[idx].Fields)
			for i := range fields {
				if fields[i].Name == op.OldName {
					fields[i].Name = op.NewName
					fields[i].Column = op.NewName
					break
				}
			}
			(*existing)[idx].Fields = fields
			return true
		}

	case operation.KindRemoveIndex:
		for i, e := range *existing {
			if e.Type == operation.KindAddIndex && e.ModelName == op.ModelName &&
				e.Index != nil && e.Index.Name == op.IndexName {
				*existing = append((*existing)[:i], (*existing)[i+1:]...)
				return true
			}
		}
	}
	return false
}

// cloneFields detaches a CreateModel's field list from its backing array
// before an edit. Input operations share that array with the caller, and for
// autodetected operations with the snapshot state itself, so merges must
// produce fresh values rather than write in place.
func cloneFields(fields []state.FieldDef) []state.FieldDef {
	return append([]state.FieldDef(nil), fields...)
}

func findCreateModel(ops []operation.Operation, name string) int {
	for i, e := range ops {
		if e.Type == operation.KindCreateModel && e.Name == name {
			return i
		}
	}
	return -1
}

func findCreateModelWithField(ops []operation.Operation, name, fieldName string) int {
	for i, e := range ops {
		if e.Type == operation.KindCreateModel && e.Name == name {
			for _, f := range e.Fields {
				if f.Name == fieldName {
					return i
				}
			}
		}
	}
	return -1
}

func findAddField(ops []operation.Operation, modelName, fieldName string) int {
	for i, e := range ops {
		if e.Type == operation.KindAddField && e.ModelName == modelName &&
			e.Field != nil && e.Field.Name == fieldName {
			return i
		}
	}
	return -1
}

// touchesModel reports whether a field or index operation targets the model.
func touchesModel(op operation.Operation, name string) bool {
	switch op.Type {
	case operation.KindAddField, operation.KindRemoveField, operation.KindAlterField,
		operation.KindRenameField, operation.KindAddIndex, operation.KindRemoveIndex,
		operation.KindAlterUniqueTogether:
		return op.ModelName == name
	}
	return false
}
