package graph

import (
	"errors"
	"reflect"
	"testing"
)

func key(app, name string) Key { return Key{App: app, Name: name} }

func chain(t *testing.T, keys ...Key) *Graph {
	t.Helper()
	g := New()
	for _, k := range keys {
		g.AddNode(k, false)
	}
	for i := 1; i < len(keys); i++ {
		if err := g.AddDependency(keys[i], keys[i-1]); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func TestTopologicalOrderLinear(t *testing.T) {
	g := chain(t, key("blog", "0001_initial"), key("blog", "0002_title"), key("blog", "0003_body"))
	order, err := g.TopologicalOrder()
	if err != nil {
		t.Fatal(err)
	}
	want := []Key{key("blog", "0001_initial"), key("blog", "0002_title"), key("blog", "0003_body")}
	if !reflect.DeepEqual(order, want) {
		t.Errorf("order = %v, want %v", order, want)
	}
}

func TestTopologicalOrderDiamond(t *testing.T) {
	g := New()
	a, b, c, d := key("app", "0001_a"), key("app", "0002_b"), key("app", "0003_c"), key("app", "0004_d")
	for _, k := range []Key{a, b, c, d} {
		g.AddNode(k, false)
	}
	for _, dep := range []struct{ child, parent Key }{{b, a}, {c, a}, {d, b}, {d, c}} {
		if err := g.AddDependency(dep.child, dep.parent); err != nil {
			t.Fatal(err)
		}
	}

	order, err := g.TopologicalOrder()
	if err != nil {
		t.Fatal(err)
	}
	pos := map[Key]int{}
	for i, k := range order {
		pos[k] = i
	}
	if pos[a] > pos[b] || pos[a] > pos[c] || pos[b] > pos[d] || pos[c] > pos[d] {
		t.Errorf("order violates dependencies: %v", order)
	}
	// sorted tie-break makes the order fully deterministic
	if !reflect.DeepEqual(order, []Key{a, b, c, d}) {
		t.Errorf("order = %v, want deterministic %v", order, []Key{a, b, c, d})
	}
}

func TestTopologicalOrderCycle(t *testing.T) {
	g := New()
	a, b := key("app", "0001_a"), key("app", "0002_b")
	g.AddNode(a, false)
	g.AddNode(b, false)
	if err := g.AddDependency(b, a); err != nil {
		t.Fatal(err)
	}
	if err := g.AddDependency(a, b); err != nil {
		t.Fatal(err)
	}
	if _, err := g.TopologicalOrder(); !errors.Is(err, ErrCircularDependency) {
		t.Errorf("err = %v, want ErrCircularDependency", err)
	}
	if err := g.Validate(); !errors.Is(err, ErrCircularDependency) {
		t.Errorf("Validate() = %v, want ErrCircularDependency", err)
	}
}

func TestAddDependencyUnknownNode(t *testing.T) {
	g := New()
	g.AddNode(key("app", "0001_a"), true)
	err := g.AddDependency(key("app", "0001_a"), key("other", "0001_x"))
	if !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("err = %v, want ErrNodeNotFound", err)
	}
	err = g.AddDependency(key("ghost", "0001_g"), key("app", "0001_a"))
	if !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("err = %v, want ErrNodeNotFound", err)
	}
}

func TestCrossAppDependency(t *testing.T) {
	g := New()
	user := key("auth", "0001_initial")
	post := key("blog", "0001_initial")
	g.AddNode(user, true)
	g.AddNode(post, true)
	if err := g.AddDependency(post, user); err != nil {
		t.Fatal(err)
	}

	order, err := g.TopologicalOrder()
	if err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(order, []Key{user, post}) {
		t.Errorf("order = %v, want auth before blog", order)
	}
}

func TestLeafAndRootNodes(t *testing.T) {
	g := chain(t, key("blog", "0001_initial"), key("blog", "0002_title"))
	g.AddNode(key("auth", "0001_initial"), true)

	if got := g.LeafNodes("blog"); !reflect.DeepEqual(got, []Key{key("blog", "0002_title")}) {
		t.Errorf("LeafNodes(blog) = %v", got)
	}
	if got := g.RootNodes("blog"); !reflect.DeepEqual(got, []Key{key("blog", "0001_initial")}) {
		t.Errorf("RootNodes(blog) = %v", got)
	}
	if got := g.LeafNodes("auth"); !reflect.DeepEqual(got, []Key{key("auth", "0001_initial")}) {
		t.Errorf("LeafNodes(auth) = %v", got)
	}
}

func TestDependenciesAndDependents(t *testing.T) {
	g := chain(t, key("blog", "0001_initial"), key("blog", "0002_title"))
	if got := g.Dependencies(key("blog", "0002_title")); !reflect.DeepEqual(got, []Key{key("blog", "0001_initial")}) {
		t.Errorf("Dependencies = %v", got)
	}
	if got := g.Dependents(key("blog", "0001_initial")); !reflect.DeepEqual(got, []Key{key("blog", "0002_title")}) {
		t.Errorf("Dependents = %v", got)
	}
	if deps := g.Dependencies(key("blog", "0001_initial")); len(deps) != 0 {
		t.Errorf("initial migration has dependencies: %v", deps)
	}
}

func TestFromMigrations(t *testing.T) {
	migrations := []*Migration{
		NewMigration("blog", "0002_title").DependsOn("blog", "0001_initial"),
		NewMigration("blog", "0001_initial").MarkInitial(),
	}
	g, err := FromMigrations(migrations)
	if err != nil {
		t.Fatal(err)
	}
	if g.Len() != 2 {
		t.Errorf("Len() = %d, want 2", g.Len())
	}
	if !g.Initial(key("blog", "0001_initial")) {
		t.Error("initial flag lost")
	}

	bad := append(migrations, NewMigration("blog", "0003_x").DependsOn("blog", "0099_missing"))
	if _, err := FromMigrations(bad); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("err = %v, want ErrNodeNotFound", err)
	}
}
