package graph

import (
	"github.com/satishbabariya/migrago/operation"
)

// Migration is a named, ordered list of operations for one app, plus the
// migrations it depends on.
type Migration struct {
	AppLabel     string
	Name         string
	Dependencies []Key
	Operations   []operation.Operation
	Initial      bool
}

func NewMigration(appLabel, name string) *Migration {
	return &Migration{AppLabel: appLabel, Name: name}
}

// MarkInitial flags this as the app's first migration.
func (m *Migration) MarkInitial() *Migration {
	m.Initial = true
	return m
}

// DependsOn appends a dependency on another migration.
func (m *Migration) DependsOn(app, name string) *Migration {
	m.Dependencies = append(m.Dependencies, Key{App: app, Name: name})
	return m
}

// Add appends an operation.
func (m *Migration) Add(op operation.Operation) *Migration {
	m.Operations = append(m.Operations, op)
	return m
}

func (m *Migration) Key() Key {
	return Key{App: m.AppLabel, Name: m.Name}
}

// FromMigrations builds a validated graph out of a migration list.
func FromMigrations(migrations []*Migration) (*Graph, error) {
	g := New()
	for _, m := range migrations {
		g.AddNode(m.Key(), m.Initial)
	}
	for _, m := range migrations {
		for _, dep := range m.Dependencies {
			if err := g.AddDependency(m.Key(), dep); err != nil {
				return nil, err
			}
		}
	}
	if err := g.Validate(); err != nil {
		return nil, err
	}
	return g, nil
}
