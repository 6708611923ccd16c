package diff

import (
	"strings"
	"testing"

	"github.com/satishbabariya/migrago/operation"
	"github.com/satishbabariya/migrago/state"
)

func charField(name string, maxLength int) state.FieldDef {
	return state.NewField(name, state.FieldType{Kind: state.CharField}).WithMaxLength(maxLength)
}

func postModel(fields ...state.FieldDef) state.ModelState {
	return state.NewModel("blog", "post", fields...)
}

func singleState(m state.ModelState) state.ProjectState {
	st := state.NewProjectState()
	st.AddModel(m)
	return st
}

func TestNoChanges(t *testing.T) {
	st := singleState(postModel(charField("title", 100)))
	changes := Changes(st, st.Clone())
	if len(changes) != 0 {
		t.Errorf("identical states produced changes: %v", changes)
	}
}

func TestCreateModel(t *testing.T) {
	changes := Changes(state.NewProjectState(), singleState(postModel(charField("title", 100))))
	ops := changes["blog"]
	if len(ops) != 1 || ops[0].Type != operation.KindCreateModel {
		t.Fatalf("ops = %v, want single CreateModel", ops)
	}
	if ops[0].Name != "post" || len(ops[0].Fields) != 1 {
		t.Errorf("CreateModel = %+v", ops[0])
	}
}

func TestDeleteModel(t *testing.T) {
	changes := Changes(singleState(postModel()), state.NewProjectState())
	ops := changes["blog"]
	if len(ops) != 1 || ops[0].Type != operation.KindDeleteModel || ops[0].Name != "post" {
		t.Fatalf("ops = %v, want single DeleteModel post", ops)
	}
}

func TestAddAndRemoveField(t *testing.T) {
	from := singleState(postModel(charField("title", 100)))
	to := singleState(postModel(
		charField("title", 100),
		state.NewField("body", state.FieldType{Kind: state.TextField}),
	))

	ops := Changes(from, to)["blog"]
	if len(ops) != 1 || ops[0].Type != operation.KindAddField || ops[0].Field.Name != "body" {
		t.Fatalf("ops = %v, want AddField body", ops)
	}

	back := Changes(to, from)["blog"]
	if len(back) != 1 || back[0].Type != operation.KindRemoveField || back[0].FieldName != "body" {
		t.Fatalf("ops = %v, want RemoveField body", back)
	}
}

func TestRenameHeuristic(t *testing.T) {
	from := singleState(postModel(charField("title", 100)))
	to := singleState(postModel(charField("headline", 100)))

	ops := Changes(from, to)["blog"]
	if len(ops) != 1 {
		t.Fatalf("got %d ops, want exactly one RenameField: %v", len(ops), ops)
	}
	op := ops[0]
	if op.Type != operation.KindRenameField || op.OldName != "title" || op.NewName != "headline" {
		t.Errorf("op = %+v", op)
	}
}

func TestRenameHeuristicTypeMismatch(t *testing.T) {
	from := singleState(postModel(charField("title", 100)))
	to := singleState(postModel(state.NewField("views", state.FieldType{Kind: state.IntegerField})))

	ops := Changes(from, to)["blog"]
	if len(ops) != 2 {
		t.Fatalf("got %d ops, want AddField + RemoveField: %v", len(ops), ops)
	}
	if ops[0].Type != operation.KindAddField || ops[1].Type != operation.KindRemoveField {
		t.Errorf("ops = %v", ops)
	}
}

func TestRenameHeuristicAmbiguous(t *testing.T) {
	// two fields swapped for two others: too ambiguous to call a rename
	from := singleState(postModel(charField("a", 50), charField("b", 50)))
	to := singleState(postModel(charField("c", 50), charField("d", 50)))

	ops := Changes(from, to)["blog"]
	for _, op := range ops {
		if op.Type == operation.KindRenameField {
			t.Fatalf("ambiguous change produced a rename: %v", ops)
		}
	}
	if len(ops) != 4 {
		t.Errorf("got %d ops, want 2 adds + 2 removes", len(ops))
	}
}

func TestAlterFieldOnMaxLength(t *testing.T) {
	from := singleState(postModel(charField("title", 100)))
	to := singleState(postModel(charField("title", 200)))

	ops := Changes(from, to)["blog"]
	if len(ops) != 1 || ops[0].Type != operation.KindAlterField {
		t.Fatalf("ops = %v, want single AlterField", ops)
	}
	if ops[0].FieldName != "title" || ops[0].Field.MaxLength != 200 {
		t.Errorf("AlterField = %+v", ops[0])
	}
}

func TestAlterFieldOnNullChange(t *testing.T) {
	from := singleState(postModel(charField("title", 100)))
	to := singleState(postModel(charField("title", 100).Nullable()))

	ops := Changes(from, to)["blog"]
	if len(ops) != 1 || ops[0].Type != operation.KindAlterField {
		t.Fatalf("ops = %v, want single AlterField", ops)
	}
}

func TestAlterUniqueTogether(t *testing.T) {
	from := singleState(postModel(charField("title", 100)))
	toModel := postModel(charField("title", 100))
	toModel.Options.UniqueTogether = [][]string{{"title", "author"}}

	ops := Changes(from, singleState(toModel))["blog"]
	if len(ops) != 1 || ops[0].Type != operation.KindAlterUniqueTogether {
		t.Fatalf("ops = %v, want AlterUniqueTogether", ops)
	}
	if len(ops[0].UniqueTogether) != 1 || ops[0].UniqueTogether[0][1] != "author" {
		t.Errorf("unique_together = %v", ops[0].UniqueTogether)
	}
}

func TestIndexDiffByName(t *testing.T) {
	oldModel := postModel(charField("title", 100))
	oldModel.Options.Indexes = []state.Index{{Name: "title_idx", Fields: []string{"title"}}}
	newModel := postModel(charField("title", 100))
	newModel.Options.Indexes = []state.Index{{Name: "title_uniq_idx", Fields: []string{"title"}, Unique: true}}

	ops := Changes(singleState(oldModel), singleState(newModel))["blog"]
	if len(ops) != 2 {
		t.Fatalf("ops = %v, want RemoveIndex + AddIndex", ops)
	}
	if ops[0].Type != operation.KindRemoveIndex || ops[0].IndexName != "title_idx" {
		t.Errorf("first op = %+v", ops[0])
	}
	if ops[1].Type != operation.KindAddIndex || ops[1].Index.Name != "title_uniq_idx" {
		t.Errorf("second op = %+v", ops[1])
	}
}

func TestUnnamedIndexesIgnored(t *testing.T) {
	oldModel := postModel(charField("title", 100))
	oldModel.Options.Indexes = []state.Index{{Fields: []string{"title"}}}
	newModel := postModel(charField("title", 100))

	ops := Changes(singleState(oldModel), singleState(newModel))["blog"]
	if len(ops) != 0 {
		t.Errorf("unnamed index produced ops: %v", ops)
	}
}

func TestChangesGroupedByApp(t *testing.T) {
	to := state.NewProjectState()
	to.AddModel(state.NewModel("blog", "post"))
	to.AddModel(state.NewModel("auth", "user"))

	changes := Changes(state.NewProjectState(), to)
	if len(changes) != 2 {
		t.Fatalf("apps = %v, want blog and auth", changes)
	}
	if len(changes["blog"]) != 1 || len(changes["auth"]) != 1 {
		t.Errorf("per-app ops: blog=%d auth=%d", len(changes["blog"]), len(changes["auth"]))
	}
}

func TestUnifiedDiff(t *testing.T) {
	from := singleState(postModel(charField("title", 100)))
	to := singleState(postModel(charField("title", 200)))

	text, err := Unified(from, to, "current", "desired")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(text, "current") || !strings.Contains(text, "desired") {
		t.Errorf("diff missing labels:\n%s", text)
	}
	if !strings.Contains(text, "200") {
		t.Errorf("diff missing changed value:\n%s", text)
	}

	same, err := Unified(from, from.Clone(), "a", "b")
	if err != nil {
		t.Fatal(err)
	}
	if same != "" {
		t.Errorf("identical states produced a diff:\n%s", same)
	}
}
