package loader

import (
	"errors"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/satishbabariya/migrago/graph"
	"github.com/satishbabariya/migrago/operation"
	"github.com/satishbabariya/migrago/state"
)

func initialMigration() *graph.Migration {
	return graph.NewMigration("blog", "0001_initial").
		MarkInitial().
		Add(operation.CreateModel("post", []state.FieldDef{
			state.NewField("id", state.FieldType{Kind: state.BigAutoField}).AsPrimaryKey(),
		}, state.ModelOptions{}))
}

func titleMigration() *graph.Migration {
	return graph.NewMigration("blog", "0002_add_title").
		DependsOn("blog", "0001_initial").
		Add(operation.AddField("post",
			state.NewField("title", state.FieldType{Kind: state.CharField}).WithMaxLength(100)))
}

func TestMigrationJSONRoundTrip(t *testing.T) {
	m := titleMigration()
	data, err := MarshalMigration(m)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), `"type": "AddField"`) {
		t.Errorf("serialized form missing operation tag:\n%s", data)
	}

	back, err := UnmarshalMigration(data)
	if err != nil {
		t.Fatal(err)
	}
	if back.Key() != m.Key() {
		t.Errorf("key = %v, want %v", back.Key(), m.Key())
	}
	if len(back.Dependencies) != 1 || back.Dependencies[0] != (graph.Key{App: "blog", Name: "0001_initial"}) {
		t.Errorf("dependencies = %v", back.Dependencies)
	}
	if len(back.Operations) != 1 || back.Operations[0].Type != operation.KindAddField {
		t.Errorf("operations = %v", back.Operations)
	}
}

func TestMalformedDependencySkipped(t *testing.T) {
	data := []byte(`{
  "app_label": "blog",
  "name": "0002_x",
  "dependencies": [["blog"], ["blog", "0001_initial"]],
  "operations": []
}`)
	m, err := UnmarshalMigration(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(m.Dependencies) != 1 {
		t.Errorf("dependencies = %v, want only the well-formed entry", m.Dependencies)
	}
}

func TestMigrationFilePath(t *testing.T) {
	got := MigrationFilePath("migrations", "blog", "0001_initial")
	if got != "migrations/blog/0001_initial.json" {
		t.Errorf("path = %q", got)
	}
}

func TestWriteAndLoad(t *testing.T) {
	fs := afero.NewMemMapFs()
	for _, m := range []*graph.Migration{initialMigration(), titleMigration()} {
		if _, err := WriteMigration(fs, "migrations", m); err != nil {
			t.Fatal(err)
		}
	}

	l := New(fs, "migrations")
	if err := l.Load(); err != nil {
		t.Fatal(err)
	}

	g := l.Graph()
	if g.Len() != 2 {
		t.Fatalf("graph has %d nodes, want 2", g.Len())
	}
	order, err := g.TopologicalOrder()
	if err != nil {
		t.Fatal(err)
	}
	if order[0].Name != "0001_initial" {
		t.Errorf("order = %v", order)
	}
	if !g.Initial(graph.Key{App: "blog", Name: "0001_initial"}) {
		t.Error("initial flag lost through disk round trip")
	}

	st, err := l.ProjectState()
	if err != nil {
		t.Fatal(err)
	}
	model, ok := st.Model("blog", "post")
	if !ok || len(model.Fields) != 2 {
		t.Errorf("replayed model = %+v", model)
	}

	migrations := l.Migrations()
	if len(migrations) != 2 || migrations[0].Name != "0001_initial" {
		t.Errorf("Migrations() = %v", migrations)
	}
}

func TestLoadMissingDirIsEmpty(t *testing.T) {
	l := New(afero.NewMemMapFs(), "does/not/exist")
	if err := l.Load(); err != nil {
		t.Fatalf("missing dir should load empty, got %v", err)
	}
	if l.Graph().Len() != 0 {
		t.Errorf("graph not empty: %d nodes", l.Graph().Len())
	}
}

func TestLoadUnknownDependencyFails(t *testing.T) {
	fs := afero.NewMemMapFs()
	m := graph.NewMigration("blog", "0002_x").DependsOn("blog", "0001_missing")
	if _, err := WriteMigration(fs, "migrations", m); err != nil {
		t.Fatal(err)
	}

	l := New(fs, "migrations")
	if err := l.Load(); !errors.Is(err, graph.ErrNodeNotFound) {
		t.Errorf("err = %v, want ErrNodeNotFound", err)
	}
}

func TestLoadDetectsCycle(t *testing.T) {
	fs := afero.NewMemMapFs()
	a := graph.NewMigration("blog", "0001_a").DependsOn("blog", "0002_b")
	b := graph.NewMigration("blog", "0002_b").DependsOn("blog", "0001_a")
	for _, m := range []*graph.Migration{a, b} {
		if _, err := WriteMigration(fs, "migrations", m); err != nil {
			t.Fatal(err)
		}
	}

	l := New(fs, "migrations")
	if err := l.Load(); !errors.Is(err, graph.ErrCircularDependency) {
		t.Errorf("err = %v, want ErrCircularDependency", err)
	}
}

func TestGenerateMigrationName(t *testing.T) {
	if got := GenerateMigrationName(3, "add_title"); got != "0003_add_title" {
		t.Errorf("name = %q", got)
	}
	auto := GenerateMigrationName(12, "")
	if !strings.HasPrefix(auto, "0012_auto_") {
		t.Errorf("auto name = %q", auto)
	}
}

func TestNextMigrationNumber(t *testing.T) {
	fs := afero.NewMemMapFs()
	if got := NextMigrationNumber(fs, "migrations", "blog"); got != 1 {
		t.Errorf("empty app number = %d, want 1", got)
	}

	for _, name := range []string{"0001_initial.json", "0002_add_title.json", "notes.txt"} {
		if err := afero.WriteFile(fs, "migrations/blog/"+name, []byte("{}"), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if got := NextMigrationNumber(fs, "migrations", "blog"); got != 3 {
		t.Errorf("number = %d, want 3", got)
	}
}

func TestReadSnapshot(t *testing.T) {
	fs := afero.NewMemMapFs()
	snapshot := `{"models": [{"app_label": "blog", "name": "post", "fields": [
		{"name": "id", "type": {"kind": "BigAutoField"}, "primary_key": true}
	]}]}`
	if err := afero.WriteFile(fs, "schema.json", []byte(snapshot), 0o644); err != nil {
		t.Fatal(err)
	}

	st, err := ReadSnapshot(fs, "schema.json")
	if err != nil {
		t.Fatal(err)
	}
	model, ok := st.Model("blog", "post")
	if !ok {
		t.Fatal("snapshot model missing")
	}
	if f, ok := model.Field("id"); !ok || !f.PrimaryKey || f.Type.Kind != state.BigAutoField {
		t.Errorf("id field = %+v", model.Fields)
	}
}
