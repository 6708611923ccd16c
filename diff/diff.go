// Package diff detects schema changes between two project states and turns
// them into migration operations.
package diff

import (
	"github.com/satishbabariya/migrago/operation"
	"github.com/satishbabariya/migrago/state"
)

// Changes compares two project states and returns the operations per app
// label that transform from into to. Output order is deterministic: models
// iterate in sorted key order, fields in declaration order.
//
// Per surviving model the order is: rename, added fields, removed fields,
// altered fields, unique_together, removed indexes, added indexes. New and
// deleted models come first, app by app.
func Changes(from, to state.ProjectState) map[string][]operation.Operation {
	result := map[string][]operation.Operation{}
	add := func(app string, op operation.Operation) {
		result[app] = append(result[app], op)
	}

	for _, key := range to.Keys() {
		if _, ok := from.Models[key]; !ok {
			model := to.Models[key]
			add(key.App, operation.CreateModel(model.Name, model.Fields, model.Options))
		}
	}

	for _, key := range from.Keys() {
		if _, ok := to.Models[key]; !ok {
			add(key.App, operation.DeleteModel(from.Models[key].Name))
		}
	}

	for _, key := range to.Keys() {
		newModel := to.Models[key]
		oldModel, ok := from.Models[key]
		if !ok {
			continue
		}
		diffModel(oldModel, newModel, func(op operation.Operation) { add(key.App, op) })
	}

	return result
}

func diffModel(oldModel, newModel state.ModelState, add func(operation.Operation)) {
	var added, removed []state.FieldDef
	for _, f := range newModel.Fields {
		if _, ok := oldModel.Field(f.Name); !ok {
			added = append(added, f)
		}
	}
	for _, f := range oldModel.Fields {
		if _, ok := newModel.Field(f.Name); !ok {
			removed = append(removed, f)
		}
	}

	// Rename heuristic: exactly one field vanished and exactly one appeared,
	// with the same type kind. Anything more ambiguous falls through to
	// add + remove; no guessing beyond this.
	renamedOld, renamedNew := "", ""
	if len(added) == 1 && len(removed) == 1 && added[0].Type.SameKind(removed[0].Type) {
		add(operation.RenameField(newModel.Name, removed[0].Name, added[0].Name))
		renamedOld, renamedNew = removed[0].Name, added[0].Name
	}

	for _, f := range added {
		if f.Name != renamedNew {
			add(operation.AddField(newModel.Name, f))
		}
	}
	for _, f := range removed {
		if f.Name != renamedOld {
			add(operation.RemoveField(newModel.Name, f.Name))
		}
	}

	for _, newField := range newModel.Fields {
		if oldField, ok := oldModel.Field(newField.Name); ok && fieldsDiffer(oldField, newField) {
			add(operation.AlterField(newModel.Name, newField.Name, newField))
		}
	}

	if !uniqueTogetherEqual(oldModel.Options.UniqueTogether, newModel.Options.UniqueTogether) {
		add(operation.AlterUniqueTogether(newModel.Name, newModel.Options.UniqueTogether))
	}

	for _, idx := range oldModel.Options.Indexes {
		if idx.Name != "" && !hasIndexNamed(newModel.Options.Indexes, idx.Name) {
			add(operation.RemoveIndex(newModel.Name, idx.Name))
		}
	}
	for _, idx := range newModel.Options.Indexes {
		if idx.Name != "" && !hasIndexNamed(oldModel.Options.Indexes, idx.Name) {
			add(operation.AddIndex(newModel.Name, idx))
		}
	}
}

// fieldsDiffer reports whether a field changed in a schema-relevant way.
// Types compare by kind only, so parameter tweaks alone do not retrigger;
// max_length is tracked separately and does.
func fieldsDiffer(a, b state.FieldDef) bool {
	if !a.Type.SameKind(b.Type) {
		return true
	}
	if a.Null != b.Null || a.PrimaryKey != b.PrimaryKey ||
		a.Unique != b.Unique || a.DBIndex != b.DBIndex ||
		a.MaxLength != b.MaxLength || a.ColumnName() != b.ColumnName() {
		return true
	}
	switch {
	case a.Default == nil && b.Default == nil:
		return false
	case a.Default == nil || b.Default == nil:
		return true
	default:
		return !a.Default.Equal(*b.Default)
	}
}

func uniqueTogetherEqual(a, b [][]string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if len(a[i]) != len(b[i]) {
			return false
		}
		for j := range a[i] {
			if a[i][j] != b[i][j] {
				return false
			}
		}
	}
	return true
}

func hasIndexNamed(indexes []state.Index, name string) bool {
	for _, idx := range indexes {
		if idx.Name == name {
			return true
		}
	}
	return false
}
