package state

import (
	"encoding/json"
	"testing"
)

func TestDBTableDefault(t *testing.T) {
	m := NewModel("blog", "Post")
	if got := m.DBTable(); got != "blog_Post" {
		t.Errorf("DBTable() = %q, want %q", got, "blog_Post")
	}
}

func TestDBTableOverride(t *testing.T) {
	m := NewModel("blog", "post")
	custom := "legacy_posts"
	m.Options.DBTable = &custom
	if got := m.DBTable(); got != "legacy_posts" {
		t.Errorf("DBTable() = %q, want %q", got, "legacy_posts")
	}
}

func TestNewFieldColumnDefaultsToName(t *testing.T) {
	f := NewField("title", FieldType{Kind: CharField})
	if f.ColumnName() != "title" {
		t.Errorf("ColumnName() = %q, want %q", f.ColumnName(), "title")
	}
	f = f.WithColumn("post_title")
	if f.ColumnName() != "post_title" {
		t.Errorf("ColumnName() = %q, want %q", f.ColumnName(), "post_title")
	}
}

func TestFieldBuilders(t *testing.T) {
	f := NewField("email", FieldType{Kind: EmailField}).
		WithMaxLength(254).
		AsUnique().
		Nullable().
		Indexed().
		WithDefault(StringValue("none@example.com"))

	if f.MaxLength != 254 || !f.Unique || !f.Null || !f.DBIndex {
		t.Errorf("builder flags not applied: %+v", f)
	}
	if f.Default == nil {
		t.Fatal("Default not set")
	}
	if s, ok := f.Default.Str(); !ok || s != "none@example.com" {
		t.Errorf("Default = %v, want string none@example.com", f.Default)
	}
}

func TestFieldEqual(t *testing.T) {
	a := NewField("title", FieldType{Kind: CharField}).WithMaxLength(100)
	b := NewField("title", FieldType{Kind: CharField}).WithMaxLength(100)
	if !a.Equal(b) {
		t.Error("identical fields reported unequal")
	}
	if a.Equal(b.WithMaxLength(200)) {
		t.Error("max_length change not detected")
	}
	if a.Equal(b.Nullable()) {
		t.Error("null change not detected")
	}
}

func TestIsRelation(t *testing.T) {
	fk := NewField("author", Relation(ForeignKey, "auth.user", Cascade))
	if !fk.IsRelation() {
		t.Error("ForeignKey should be a relation")
	}
	if NewField("title", FieldType{Kind: CharField}).IsRelation() {
		t.Error("CharField should not be a relation")
	}
}

func TestProjectStateAddAndRemove(t *testing.T) {
	st := NewProjectState()
	st.AddModel(NewModel("blog", "post"))
	if _, ok := st.Model("blog", "post"); !ok {
		t.Fatal("model not found after AddModel")
	}
	st.RemoveModel("blog", "post")
	if _, ok := st.Model("blog", "post"); ok {
		t.Fatal("model still present after RemoveModel")
	}
}

func TestProjectStateCloneIsDeep(t *testing.T) {
	st := NewProjectState()
	st.AddModel(NewModel("blog", "post", NewField("id", FieldType{Kind: AutoField}).AsPrimaryKey()))

	clone := st.Clone()
	model, _ := clone.Model("blog", "post")
	model.Fields[0].Name = "pk"

	original, _ := st.Model("blog", "post")
	if original.Fields[0].Name != "id" {
		t.Error("mutating a clone leaked into the original state")
	}
}

func TestModelRenameFieldUpdatesColumn(t *testing.T) {
	m := NewModel("blog", "post", NewField("title", FieldType{Kind: CharField}))
	m.RenameField("title", "headline")
	f, ok := m.Field("headline")
	if !ok {
		t.Fatal("renamed field not found")
	}
	if f.Column != "headline" {
		t.Errorf("column = %q, want %q", f.Column, "headline")
	}
}

func TestValueJSONRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		json string
	}{
		{"null", NullValue(), "null"},
		{"bool", BoolValue(true), "true"},
		{"int", IntValue(42), "42"},
		{"float", FloatValue(1.5), "1.5"},
		{"string", StringValue("it's"), `"it's"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.v)
			if err != nil {
				t.Fatal(err)
			}
			if string(data) != tt.json {
				t.Errorf("marshal = %s, want %s", data, tt.json)
			}
			var back Value
			if err := json.Unmarshal(data, &back); err != nil {
				t.Fatal(err)
			}
			if !back.Equal(tt.v) {
				t.Errorf("round trip %v != %v", back, tt.v)
			}
		})
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	st := NewProjectState()
	st.AddModel(NewModel("blog", "post",
		NewField("id", FieldType{Kind: BigAutoField}).AsPrimaryKey(),
		NewField("title", FieldType{Kind: CharField}).WithMaxLength(200),
	))
	st.AddModel(NewModel("auth", "user",
		NewField("id", FieldType{Kind: BigAutoField}).AsPrimaryKey(),
	))

	data, err := MarshalSnapshot(st)
	if err != nil {
		t.Fatal(err)
	}
	back, err := UnmarshalSnapshot(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(back.Models) != 2 {
		t.Fatalf("got %d models, want 2", len(back.Models))
	}
	post, ok := back.Model("blog", "post")
	if !ok {
		t.Fatal("blog.post missing after round trip")
	}
	title, ok := post.Field("title")
	if !ok || title.MaxLength != 200 {
		t.Errorf("title field lost detail: %+v", title)
	}
}
