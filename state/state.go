package state

import (
	"fmt"
	"sort"
)

// Index is a named (or unnamed) index over model fields.
type Index struct {
	Name   string   `json:"name,omitempty"`
	Fields []string `json:"fields"`
	Unique bool     `json:"unique,omitempty"`
}

// ModelOptions carries table-level settings.
type ModelOptions struct {
	DBTable        *string    `json:"db_table,omitempty"`
	UniqueTogether [][]string `json:"unique_together,omitempty"`
	Indexes        []Index    `json:"indexes,omitempty"`
}

func (o ModelOptions) clone() ModelOptions {
	out := ModelOptions{}
	if o.DBTable != nil {
		t := *o.DBTable
		out.DBTable = &t
	}
	for _, group := range o.UniqueTogether {
		out.UniqueTogether = append(out.UniqueTogether, append([]string(nil), group...))
	}
	for _, idx := range o.Indexes {
		idx.Fields = append([]string(nil), idx.Fields...)
		out.Indexes = append(out.Indexes, idx)
	}
	return out
}

// ModelState is the full description of one model.
type ModelState struct {
	AppLabel string       `json:"app_label"`
	Name     string       `json:"name"`
	Fields   []FieldDef   `json:"fields"`
	Options  ModelOptions `json:"options,omitempty"`
}

func NewModel(appLabel, name string, fields ...FieldDef) ModelState {
	return ModelState{AppLabel: appLabel, Name: name, Fields: fields}
}

// DBTable returns the table name: the explicit override when set, otherwise
// "{app_label}_{name}" exactly as written.
func (m ModelState) DBTable() string {
	if m.Options.DBTable != nil {
		return *m.Options.DBTable
	}
	return fmt.Sprintf("%s_%s", m.AppLabel, m.Name)
}

// Field returns the field with the given name.
func (m ModelState) Field(name string) (FieldDef, bool) {
	for _, f := range m.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDef{}, false
}

func (m *ModelState) AddField(f FieldDef) {
	m.Fields = append(m.Fields, f)
}

func (m *ModelState) RemoveField(name string) {
	out := m.Fields[:0]
	for _, f := range m.Fields {
		if f.Name != name {
			out = append(out, f)
		}
	}
	m.Fields = out
}

// ReplaceField swaps the field with the given name for a new definition,
// keeping its position.
func (m *ModelState) ReplaceField(name string, f FieldDef) {
	for i := range m.Fields {
		if m.Fields[i].Name == name {
			m.Fields[i] = f
			return
		}
	}
}

// RenameField updates both the field name and its column.
func (m *ModelState) RenameField(oldName, newName string) {
	for i := range m.Fields {
		if m.Fields[i].Name == oldName {
			m.Fields[i].Name = newName
			m.Fields[i].Column = newName
			return
		}
	}
}

func (m ModelState) Clone() ModelState {
	out := m
	out.Fields = append([]FieldDef(nil), m.Fields...)
	out.Options = m.Options.clone()
	return out
}

// ModelKey addresses a model inside a project.
type ModelKey struct {
	App   string `json:"app"`
	Model string `json:"model"`
}

func (k ModelKey) String() string { return k.App + "." + k.Model }

// ProjectState is the schema of the whole project at one point in time.
type ProjectState struct {
	Models map[ModelKey]ModelState
}

func NewProjectState() ProjectState {
	return ProjectState{Models: map[ModelKey]ModelState{}}
}

func (s *ProjectState) AddModel(m ModelState) {
	if s.Models == nil {
		s.Models = map[ModelKey]ModelState{}
	}
	s.Models[ModelKey{App: m.AppLabel, Model: m.Name}] = m
}

func (s *ProjectState) RemoveModel(app, name string) {
	delete(s.Models, ModelKey{App: app, Model: name})
}

func (s ProjectState) Model(app, name string) (ModelState, bool) {
	m, ok := s.Models[ModelKey{App: app, Model: name}]
	return m, ok
}

// Keys returns all model keys in deterministic order.
func (s ProjectState) Keys() []ModelKey {
	keys := make([]ModelKey, 0, len(s.Models))
	for k := range s.Models {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].App != keys[j].App {
			return keys[i].App < keys[j].App
		}
		return keys[i].Model < keys[j].Model
	})
	return keys
}

func (s ProjectState) Clone() ProjectState {
	out := NewProjectState()
	for k, m := range s.Models {
		out.Models[k] = m.Clone()
	}
	return out
}
