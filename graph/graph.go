// Package graph holds migrations and the dependency DAG between them.
package graph

import (
	"errors"
	"fmt"
	"sort"
)

var (
	ErrNodeNotFound = errors.New("migration not found in graph")
	// ErrCircularDependency is returned when the dependency graph has a cycle.
	ErrCircularDependency = errors.New("circular dependency detected in migration graph")
)

// Key identifies a migration by app label and migration name.
type Key struct {
	App  string `json:"app"`
	Name string `json:"name"`
}

func (k Key) String() string { return k.App + "." + k.Name }

func keyLess(a, b Key) bool {
	if a.App != b.App {
		return a.App < b.App
	}
	return a.Name < b.Name
}

func sortKeys(keys []Key) {
	sort.Slice(keys, func(i, j int) bool { return keyLess(keys[i], keys[j]) })
}

type node struct {
	initial bool
}

// Graph is an explicit migration DAG: a node set plus adjacency in both
// directions. Forward edges run from a dependency to its dependents.
type Graph struct {
	nodes    map[Key]node
	forward  map[Key][]Key
	backward map[Key][]Key
}

func New() *Graph {
	return &Graph{
		nodes:    map[Key]node{},
		forward:  map[Key][]Key{},
		backward: map[Key][]Key{},
	}
}

// AddNode registers a migration. Adding an existing key overwrites its
// initial flag and keeps its edges.
func (g *Graph) AddNode(key Key, initial bool) {
	g.nodes[key] = node{initial: initial}
	if _, ok := g.forward[key]; !ok {
		g.forward[key] = nil
	}
	if _, ok := g.backward[key]; !ok {
		g.backward[key] = nil
	}
}

// AddDependency records that child depends on parent. Both endpoints must
// already be nodes.
func (g *Graph) AddDependency(child, parent Key) error {
	if _, ok := g.nodes[child]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, child)
	}
	if _, ok := g.nodes[parent]; !ok {
		return fmt.Errorf("%w: %s", ErrNodeNotFound, parent)
	}
	g.forward[parent] = append(g.forward[parent], child)
	g.backward[child] = append(g.backward[child], parent)
	return nil
}

func (g *Graph) Contains(key Key) bool {
	_, ok := g.nodes[key]
	return ok
}

func (g *Graph) Len() int { return len(g.nodes) }

// Initial reports the initial flag of a node.
func (g *Graph) Initial(key Key) bool { return g.nodes[key].initial }

// Dependencies returns the keys this migration depends on, sorted.
func (g *Graph) Dependencies(key Key) []Key {
	deps := append([]Key(nil), g.backward[key]...)
	sortKeys(deps)
	return deps
}

// Dependents returns the keys that depend on this migration, sorted.
func (g *Graph) Dependents(key Key) []Key {
	deps := append([]Key(nil), g.forward[key]...)
	sortKeys(deps)
	return deps
}

// NodeKeys returns every key in the graph, sorted.
func (g *Graph) NodeKeys() []Key {
	keys := make([]Key, 0, len(g.nodes))
	for k := range g.nodes {
		keys = append(keys, k)
	}
	sortKeys(keys)
	return keys
}

// TopologicalOrder returns the keys so that every migration comes after all
// of its dependencies. Ties break by sorted key order, so the result is
// stable across runs.
func (g *Graph) TopologicalOrder() ([]Key, error) {
	inDegree := make(map[Key]int, len(g.nodes))
	for k := range g.nodes {
		inDegree[k] = len(g.backward[k])
	}

	var queue []Key
	for k, deg := range inDegree {
		if deg == 0 {
			queue = append(queue, k)
		}
	}
	sortKeys(queue)

	order := make([]Key, 0, len(g.nodes))
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		order = append(order, current)

		children := append([]Key(nil), g.forward[current]...)
		sortKeys(children)
		for _, child := range children {
			inDegree[child]--
			if inDegree[child] == 0 {
				queue = append(queue, child)
			}
		}
	}

	if len(order) != len(g.nodes) {
		return nil, ErrCircularDependency
	}
	return order, nil
}

// LeafNodes returns the app's migrations nothing depends on, sorted. A new
// migration for the app should depend on these.
func (g *Graph) LeafNodes(app string) []Key {
	var leaves []Key
	for k := range g.nodes {
		if k.App == app && len(g.forward[k]) == 0 {
			leaves = append(leaves, k)
		}
	}
	sortKeys(leaves)
	return leaves
}

// RootNodes returns the app's migrations with no dependencies, sorted.
func (g *Graph) RootNodes(app string) []Key {
	var roots []Key
	for k := range g.nodes {
		if k.App == app && len(g.backward[k]) == 0 {
			roots = append(roots, k)
		}
	}
	sortKeys(roots)
	return roots
}

// Validate checks the graph is acyclic.
func (g *Graph) Validate() error {
	_, err := g.TopologicalOrder()
	return err
}
