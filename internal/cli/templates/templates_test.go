package templates

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/pjournal/internal/cli/clitest"
	"github.com/julianstephens/pjournal/internal/constants"
	"github.com/julianstephens/pjournal/internal/models"
)

func newSubject(t *testing.T, h *clitest.Harness, kind constants.TemplateKind) models.Subject {
	t.Helper()
	s, err := h.Journal.AddSubject(context.Background(), "Lifts", kind)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func template(t *testing.T, h *clitest.Harness) models.Entry {
	t.Helper()
	s, err := h.Journal.Subject(context.Background(), "Lifts")
	if err != nil {
		t.Fatal(err)
	}
	return *s.Template
}

func fieldNames(e models.Entry) []string {
	var names []string
	for _, f := range e.Fields {
		names = append(names, f.Name)
	}
	return names
}

func TestResolveField(t *testing.T) {
	h := clitest.New(t)
	newSubject(t, h, constants.TemplateJournal)
	ed := h.Journal.NewEditor()
	s, _ := h.Journal.Subject(context.Background(), "Lifts")
	ed.Load(s)
	ed.AddField(constants.TemplateWeightTraining)

	tests := []struct {
		ref     string
		want    int
		wantErr bool
	}{
		{ref: "1", want: 0},
		{ref: "2", want: 1},
		{ref: "exercise", want: 1},
		{ref: "Journal", want: 0},
		{ref: "0", wantErr: true},
		{ref: "3", wantErr: true},
		{ref: "Bench", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			got, err := resolveField(ed, tt.ref)
			if (err != nil) != tt.wantErr {
				t.Fatalf("resolveField(%q) error = %v, wantErr %v", tt.ref, err, tt.wantErr)
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("resolveField(%q) = %d, want %d", tt.ref, got, tt.want)
			}
		})
	}
}

func TestFieldCommands(t *testing.T) {
	h := clitest.New(t)
	newSubject(t, h, constants.TemplateWeightTraining)

	steps := []struct {
		name string
		run  func() error
		want []string
	}{
		{
			name: "add field",
			run: func() error {
				return (&AddFieldCmd{Subject: "Lifts", Kind: "weights", Name: "Bench"}).Run(h.Context)
			},
			want: []string{"Exercise", "Bench"},
		},
		{
			name: "clone field",
			run:  func() error { return (&CloneFieldCmd{Subject: "Lifts", Field: "1", Name: "Squat"}).Run(h.Context) },
			want: []string{"Exercise", "Squat", "Bench"},
		},
		{
			name: "rename field",
			run:  func() error { return (&RenameFieldCmd{Subject: "Lifts", Field: "exercise", Name: "Row"}).Run(h.Context) },
			want: []string{"Row", "Squat", "Bench"},
		},
		{
			name: "move field",
			run:  func() error { return (&MoveFieldCmd{Subject: "Lifts", Field: "Bench", To: 1}).Run(h.Context) },
			want: []string{"Bench", "Row", "Squat"},
		},
		{
			name: "remove field",
			run:  func() error { return (&RemoveFieldCmd{Subject: "Lifts", Field: "2"}).Run(h.Context) },
			want: []string{"Bench", "Squat"},
		},
	}
	for _, st := range steps {
		if err := st.run(); err != nil {
			t.Fatalf("%s: %v", st.name, err)
		}
		if diff := cmp.Diff(st.want, fieldNames(template(t, h))); diff != "" {
			t.Errorf("%s: fields mismatch (-want +got):\n%s", st.name, diff)
		}
	}
}

func TestCloneFieldPlacesCopyAfterSource(t *testing.T) {
	h := clitest.New(t)
	newSubject(t, h, constants.TemplateWeightTraining)
	if err := (&CloneFieldCmd{Subject: "Lifts", Field: "1"}).Run(h.Context); err != nil {
		t.Fatal(err)
	}
	tmpl := template(t, h)
	if len(tmpl.Fields) != 2 {
		t.Fatalf("fields = %d, want 2", len(tmpl.Fields))
	}
	if tmpl.Fields[0].ID == tmpl.Fields[1].ID {
		t.Error("clone shares the source field id")
	}
	if len(tmpl.Fields[1].Inputs) != len(tmpl.Fields[0].Inputs) {
		t.Errorf("clone has %d inputs, source %d", len(tmpl.Fields[1].Inputs), len(tmpl.Fields[0].Inputs))
	}
}

func TestRemoveLastFieldFails(t *testing.T) {
	h := clitest.New(t)
	newSubject(t, h, constants.TemplateJournal)
	if err := (&RemoveFieldCmd{Subject: "Lifts", Field: "1"}).Run(h.Context); err == nil {
		t.Fatal("expected error removing the only field")
	}
}

func TestInputCommands(t *testing.T) {
	h := clitest.New(t)
	newSubject(t, h, constants.TemplateJournal)

	if err := (&AddInputCmd{Subject: "Lifts", Field: "1", Kind: "boolean", Helper: "Rested?"}).Run(h.Context); err != nil {
		t.Fatalf("add input: %v", err)
	}
	inputs := template(t, h).Fields[0].Inputs
	if len(inputs) != 2 {
		t.Fatalf("inputs = %d, want 2", len(inputs))
	}
	if inputs[1].Kind != models.InputBoolean || inputs[1].HelperText() != "Rested?" {
		t.Errorf("new input = %s %q", inputs[1].Kind, inputs[1].HelperText())
	}

	helper := "Slept well?"
	if err := (&SetInputCmd{Subject: "Lifts", Field: "Journal", Input: 2, Helper: &helper}).Run(h.Context); err != nil {
		t.Fatalf("set input: %v", err)
	}
	if got := template(t, h).Fields[0].Inputs[1].HelperText(); got != helper {
		t.Errorf("helper = %q, want %q", got, helper)
	}

	if err := (&SetInputCmd{Subject: "Lifts", Field: "1", Input: 2, Kind: "RANGE"}).Run(h.Context); err != nil {
		t.Fatalf("set kind: %v", err)
	}
	if got := template(t, h).Fields[0].Inputs[1].Kind; got != models.InputRange {
		t.Errorf("kind = %s, want RANGE", got)
	}

	// Saved inputs cannot be removed.
	if err := (&RemoveInputCmd{Subject: "Lifts", Field: "1", Input: 2}).Run(h.Context); err == nil {
		t.Error("expected error removing a saved input")
	}
}

func TestInputCommandErrors(t *testing.T) {
	h := clitest.New(t)
	newSubject(t, h, constants.TemplateJournal)

	tests := []struct {
		name string
		run  func() error
	}{
		{"unknown kind", func() error { return (&AddInputCmd{Subject: "Lifts", Field: "1", Kind: "SLIDER"}).Run(h.Context) }},
		{"nothing to set", func() error { return (&SetInputCmd{Subject: "Lifts", Field: "1", Input: 1}).Run(h.Context) }},
		{"input out of range", func() error {
			return (&SetInputCmd{Subject: "Lifts", Field: "1", Input: 5, Kind: "NUMBER"}).Run(h.Context)
		}},
		{"unknown subject", func() error { return (&AddInputCmd{Subject: "Nope", Field: "1", Kind: "NUMBER"}).Run(h.Context) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.run(); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestCategoryCommands(t *testing.T) {
	h := clitest.New(t)
	newSubject(t, h, constants.TemplateWeightTraining)

	if err := (&CategoryCmd{Subject: "Lifts", Name: "Legs"}).Run(h.Context); err != nil {
		t.Fatalf("category: %v", err)
	}
	if err := (&SetCategoryCmd{Subject: "Lifts", Field: "1", Category: "Legs"}).Run(h.Context); err != nil {
		t.Fatalf("set category: %v", err)
	}
	tmpl := template(t, h)
	if diff := cmp.Diff(models.CategorySet{"Legs"}, tmpl.Categories); diff != "" {
		t.Errorf("categories mismatch (-want +got):\n%s", diff)
	}
	if c := tmpl.Fields[0].Category; c == nil || *c != "Legs" {
		t.Errorf("field category = %v, want Legs", c)
	}
	if out := h.Output(); !strings.Contains(out, "[Legs]") {
		t.Errorf("output missing category tag:\n%s", out)
	}

	if err := (&SetCategoryCmd{Subject: "Lifts", Field: "1"}).Run(h.Context); err != nil {
		t.Fatalf("clear category: %v", err)
	}
	if c := template(t, h).Fields[0].Category; c != nil {
		t.Errorf("field category = %q, want cleared", *c)
	}

	if err := (&SetCategoryCmd{Subject: "Lifts", Field: "1", Category: "Arms"}).Run(h.Context); err == nil {
		t.Error("expected error assigning an undeclared category")
	}
}

func TestAddFieldWithNewCategory(t *testing.T) {
	h := clitest.New(t)
	newSubject(t, h, constants.TemplateJournal)
	if err := (&AddFieldCmd{Subject: "Lifts", Kind: "weights", Category: "Push"}).Run(h.Context); err != nil {
		t.Fatal(err)
	}
	tmpl := template(t, h)
	if c := tmpl.Fields[1].Category; c == nil || *c != "Push" {
		t.Errorf("field category = %v, want Push", c)
	}
}

func TestExportImport(t *testing.T) {
	h := clitest.New(t)
	newSubject(t, h, constants.TemplateWeightTraining)
	path := filepath.Join(t.TempDir(), "lifts.yaml")

	if err := (&ExportCmd{Subject: "Lifts", Out: path}).Run(h.Context); err != nil {
		t.Fatalf("export: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "Exercise") {
		t.Errorf("export missing field name:\n%s", data)
	}

	if err := (&ImportCmd{File: path, Name: "Lifts Copy"}).Run(h.Context); err != nil {
		t.Fatalf("import: %v", err)
	}
	copied, err := h.Journal.Subject(context.Background(), "Lifts Copy")
	if err != nil {
		t.Fatal(err)
	}
	orig := template(t, h)
	if diff := cmp.Diff(fieldNames(orig), fieldNames(*copied.Template)); diff != "" {
		t.Errorf("imported fields mismatch (-want +got):\n%s", diff)
	}
	if copied.Template.Fields[0].ID == orig.Fields[0].ID {
		t.Error("imported field reuses the exported field id")
	}

	h.Output()
	if err := (&ExportCmd{Subject: "Lifts"}).Run(h.Context); err != nil {
		t.Fatal(err)
	}
	if out := h.Output(); out != string(data) {
		t.Errorf("stdout export differs from file export")
	}
}
