package editor

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/julianstephens/pjournal/internal/constants"
	apperrors "github.com/julianstephens/pjournal/internal/errors"
	"github.com/julianstephens/pjournal/internal/models"
)

func loadedSubject() models.Subject {
	return models.Subject{
		ID:   "s1",
		Name: "Lifting",
		Template: &models.Entry{
			ID:       "t1",
			Template: true,
			Fields: []models.Field{
				{ID: "1", Name: "A", Inputs: []models.FieldInput{{ID: "i1", Kind: models.InputTextarea, Value: models.TextValue{}}}},
				{ID: "2", Name: "B", Inputs: []models.FieldInput{{ID: "i2", Kind: models.InputNumber, Helper: models.Ptr("kg"), Value: models.NumberValue{}}}},
			},
		},
	}
}

func TestSelectNewSeedsJournalField(t *testing.T) {
	e := New()
	e.Load(loadedSubject())
	e.SelectNew()

	fields := e.Fields()
	if len(fields) != 1 {
		t.Fatalf("seed has %d fields, want 1", len(fields))
	}
	if fields[0].Name != "Journal" {
		t.Errorf("seed field name = %q", fields[0].Name)
	}
	if len(fields[0].Inputs) != 1 || fields[0].Inputs[0].Kind != models.InputTextarea || fields[0].Inputs[0].Helper != nil {
		t.Errorf("seed inputs = %+v", fields[0].Inputs)
	}
	if !e.IsNew() || e.Selection() != "new" {
		t.Errorf("selection = %q", e.Selection())
	}
	if len(e.DiffDeletedFields()) != 0 || len(e.Deleted()) != 0 {
		t.Error("deleted tracking not cleared")
	}
}

func TestAddFieldPresets(t *testing.T) {
	tests := []struct {
		name  string
		kind  constants.TemplateKind
		field string
		want  []models.FieldInput
	}{
		{
			name:  "weight training",
			kind:  constants.TemplateWeightTraining,
			field: "Exercise",
			want: []models.FieldInput{
				models.NewInput(models.InputNumber, models.Ptr("kg")),
				models.NewInput(models.InputNumber, models.Ptr("reps")),
				models.NewInput(models.InputNumber, models.Ptr("sets")),
				models.NewInput(models.InputRange, models.Ptr("Effort")),
			},
		},
		{
			name:  "journal",
			kind:  constants.TemplateJournal,
			field: "Journal",
			want:  []models.FieldInput{models.NewInput(models.InputTextarea, nil)},
		},
		{
			name:  "unknown falls back to journal",
			kind:  constants.TemplateKind("yoga"),
			field: "Journal",
			want:  []models.FieldInput{models.NewInput(models.InputTextarea, nil)},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New()
			idx := e.AddField(tt.kind)
			if idx != 1 {
				t.Fatalf("AddField index = %d, want 1", idx)
			}
			got := e.Fields()[idx]
			if got.ID != "" {
				t.Errorf("new field has id %q", got.ID)
			}
			if got.Name != tt.field {
				t.Errorf("name = %q, want %q", got.Name, tt.field)
			}
			if diff := cmp.Diff(tt.want, got.Inputs); diff != "" {
				t.Errorf("inputs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestRemoveFieldGuard(t *testing.T) {
	e := New()
	err := e.RemoveField(0)
	if !errors.Is(err, ErrLastField) {
		t.Fatalf("RemoveField on last field = %v, want ErrLastField", err)
	}
	if !errors.Is(err, apperrors.ErrInvalid) {
		t.Error("ErrLastField should be an invalid-kind error")
	}
	if len(e.Fields()) != 1 {
		t.Errorf("field count = %d after refused remove", len(e.Fields()))
	}
	if err := e.RemoveField(5); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("RemoveField(5) = %v, want ErrIndexOutOfRange", err)
	}
}

func TestDeleteTracking(t *testing.T) {
	e := New()
	e.Load(loadedSubject())

	if err := e.RemoveField(1); err != nil {
		t.Fatalf("RemoveField: %v", err)
	}
	if diff := cmp.Diff([]string{"2"}, e.DiffDeletedFields()); diff != "" {
		t.Errorf("after remove (-want +got):\n%s", diff)
	}

	e.AddField(constants.TemplateJournal)
	e.RenameField(1, "B")
	if diff := cmp.Diff([]string{"2"}, e.DiffDeletedFields()); diff != "" {
		t.Errorf("after re-add (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"2"}, e.Deleted()); diff != "" {
		t.Errorf("tracked deletes (-want +got):\n%s", diff)
	}

	// removing an unsaved field records nothing
	if err := e.RemoveField(1); err != nil {
		t.Fatalf("RemoveField unsaved: %v", err)
	}
	if len(e.Deleted()) != 1 {
		t.Errorf("unsaved removal tracked: %v", e.Deleted())
	}

	plan := e.Plan()
	if plan.Create || plan.TemplateEntryID != "t1" || len(plan.DeletedFieldIDs) != 1 {
		t.Errorf("plan = %+v", plan)
	}
}

func TestLoadIsolatesBaseline(t *testing.T) {
	src := loadedSubject()
	e := New()
	e.Load(src)

	e.RenameField(0, "changed")
	if src.Template.Fields[0].Name != "A" {
		t.Error("editor mutated the loaded subject")
	}
	if len(e.DiffDeletedFields()) != 0 {
		t.Error("rename reported as delete")
	}
}

func TestFieldInputs(t *testing.T) {
	e := New()
	e.Load(loadedSubject())

	j, err := e.AddFieldInput(1)
	if err != nil {
		t.Fatalf("AddFieldInput: %v", err)
	}
	in := e.Fields()[1].Inputs[j]
	if in.Kind != models.InputNumber || in.Helper == nil || *in.Helper != "" {
		t.Errorf("new input = %+v", in)
	}

	if err := e.RemoveFieldInput(1, 0); !errors.Is(err, ErrPersistedInput) {
		t.Errorf("removing saved input = %v, want ErrPersistedInput", err)
	}
	if err := e.RemoveFieldInput(1, j); err != nil {
		t.Errorf("removing new input: %v", err)
	}
	if len(e.Fields()[1].Inputs) != 1 {
		t.Errorf("inputs = %d", len(e.Fields()[1].Inputs))
	}

	fresh := New()
	if err := fresh.RemoveFieldInput(0, 0); !errors.Is(err, ErrLastInput) {
		t.Errorf("removing only input = %v, want ErrLastInput", err)
	}
	if err := fresh.RemoveFieldInput(0, 3); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("bad input index = %v", err)
	}

	if err := e.SetInputKind(0, 0, models.InputBoolean); err != nil {
		t.Fatal(err)
	}
	if _, ok := e.Fields()[0].Inputs[0].Value.(models.BoolValue); !ok {
		t.Errorf("value not reset for new kind: %#v", e.Fields()[0].Inputs[0].Value)
	}
	if err := e.SetInputHelper(0, 0, "Stretched?"); err != nil {
		t.Fatal(err)
	}
	if got := e.Fields()[0].Inputs[0].HelperText(); got != "Stretched?" {
		t.Errorf("helper = %q", got)
	}
}

func TestCategories(t *testing.T) {
	e := New()

	if err := e.SetCategory(0, "push"); !errors.Is(err, ErrUnknownCategory) {
		t.Fatalf("SetCategory undeclared = %v", err)
	}
	if err := e.CreateCategory("push"); err != nil {
		t.Fatal(err)
	}
	if err := e.CreateCategory("push"); err != nil {
		t.Fatal(err)
	}
	if err := e.CreateCategory(" "); !errors.Is(err, ErrEmptyCategory) {
		t.Errorf("blank category = %v", err)
	}
	if got := e.Categories().String(); got != "push" {
		t.Errorf("categories = %q", got)
	}
	if err := e.SetCategory(0, "push"); err != nil {
		t.Fatal(err)
	}
	if e.Fields()[0].CategoryName() != "push" {
		t.Error("category not assigned")
	}
	if err := e.SetCategory(0, ""); err != nil || e.Fields()[0].Category != nil {
		t.Errorf("clearing category: %v", err)
	}
}

func TestCloneAndMove(t *testing.T) {
	e := New()
	e.Load(loadedSubject())
	e.Fields()[1].Inputs[0].Value = models.NumberValue{Number: models.Ptr(80.0)}

	idx, err := e.CloneField(1)
	if err != nil || idx != 2 {
		t.Fatalf("CloneField = %d, %v", idx, err)
	}
	clone := e.Fields()[2]
	if clone.ID != "" || clone.Inputs[0].ID != "" {
		t.Errorf("clone kept ids: %+v", clone)
	}
	if clone.Name != "B" || *clone.Inputs[0].Value.(models.NumberValue).Number != 80 {
		t.Errorf("clone lost shape or values: %+v", clone)
	}
	*clone.Inputs[0].Value.(models.NumberValue).Number = 1
	if *e.Fields()[1].Inputs[0].Value.(models.NumberValue).Number != 80 {
		t.Error("clone shares value with source")
	}

	if err := e.MoveField(2, 0); err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, f := range e.Fields() {
		names = append(names, f.ID+f.Name)
	}
	if diff := cmp.Diff([]string{"B", "1A", "2B"}, names); diff != "" {
		t.Errorf("order after move (-want +got):\n%s", diff)
	}
	if err := e.MoveField(0, 9); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("MoveField out of range = %v", err)
	}
}

type fakeStore struct {
	subject models.Subject
	created int
	updates [][]string
	err     error
}

func (f *fakeStore) GetSubjectWithTemplate(ctx context.Context, id string) (models.Subject, error) {
	if f.err != nil {
		return models.Subject{}, f.err
	}
	return f.subject.Clone(), nil
}

func (f *fakeStore) CreateSubject(ctx context.Context, s models.Subject) (models.Subject, error) {
	f.created++
	s.ID = "s-new"
	s.Template.ID = "t-new"
	for i := range s.Template.Fields {
		s.Template.Fields[i].ID = "f-new"
	}
	f.subject = s
	return s, nil
}

func (f *fakeStore) UpdateSubject(ctx context.Context, s models.Subject, deleted []string) (models.Subject, error) {
	if f.err != nil {
		return models.Subject{}, f.err
	}
	f.updates = append(f.updates, deleted)
	f.subject = s
	return s, nil
}

func TestSave(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{}

	e := New()
	if _, err := e.Save(ctx, store); !errors.Is(err, apperrors.ErrValidation) {
		t.Fatalf("saving unnamed subject = %v, want validation error", err)
	}

	e.RenameSubject("Lifting")
	saved, err := e.Save(ctx, store)
	if err != nil {
		t.Fatalf("Save create: %v", err)
	}
	if store.created != 1 || saved.ID != "s-new" || e.Selection() != "s-new" {
		t.Errorf("create not applied: %+v", saved)
	}

	e.AddField(constants.TemplateWeightTraining)
	if err := e.RemoveField(0); err != nil {
		t.Fatal(err)
	}
	if _, err := e.Save(ctx, store); err != nil {
		t.Fatalf("Save update: %v", err)
	}
	if diff := cmp.Diff([][]string{{"f-new"}}, store.updates); diff != "" {
		t.Errorf("update deletes (-want +got):\n%s", diff)
	}
	if len(e.DiffDeletedFields()) != 0 {
		t.Error("baseline not rebased after save")
	}

	store.err = errors.New("connection reset")
	e.RenameSubject("Strength")
	if _, err := e.Save(ctx, store); err == nil {
		t.Error("expected store failure to surface")
	}
	if e.Draft().Name != "Strength" {
		t.Error("draft lost after failed save")
	}
}

func TestSelect(t *testing.T) {
	ctx := context.Background()
	store := &fakeStore{subject: loadedSubject()}
	e := New()

	if err := e.Select(ctx, store, "s1"); err != nil {
		t.Fatal(err)
	}
	if e.Selection() != "s1" || len(e.Fields()) != 2 {
		t.Errorf("select loaded %q with %d fields", e.Selection(), len(e.Fields()))
	}
	if err := e.Select(ctx, store, "new"); err != nil || !e.IsNew() {
		t.Errorf("select new: %v", err)
	}

	store.err = apperrors.NotFound("subject", "gone")
	if err := e.Select(ctx, store, "gone"); !errors.Is(err, apperrors.ErrNotFound) {
		t.Errorf("select missing = %v", err)
	}
}

func TestLoadWithoutIDIsNew(t *testing.T) {
	src := loadedSubject()
	src.ID = ""
	e := New()
	e.Load(src)

	if !e.IsNew() {
		t.Fatalf("selection = %q, want new", e.Selection())
	}
	if e.Fields()[0].Name != "A" {
		t.Error("draft not loaded")
	}
	if !e.Plan().Create {
		t.Error("plan should create")
	}
}

func TestReplaceDraft(t *testing.T) {
	e := New()
	e.Load(loadedSubject())

	next := loadedSubject()
	next.ID = "ignored"
	next.Template.ID = ""
	next.Template.Fields = next.Template.Fields[1:]
	if err := e.ReplaceDraft(next); err != nil {
		t.Fatalf("ReplaceDraft: %v", err)
	}

	if diff := cmp.Diff([]string{"1"}, e.DiffDeletedFields()); diff != "" {
		t.Errorf("deleted (-want +got):\n%s", diff)
	}
	plan := e.Plan()
	if plan.Create || plan.Subject.ID != "s1" || plan.TemplateEntryID != "t1" {
		t.Errorf("plan = %+v", plan)
	}
}

func TestReplaceDraftKeepsSavedInputs(t *testing.T) {
	tests := []struct {
		name    string
		edit    func(f *models.Field)
		wantErr bool
	}{
		{
			name: "extra input added",
			edit: func(f *models.Field) {
				f.Inputs = append(f.Inputs, models.FieldInput{Kind: models.InputNumber, Helper: models.Ptr("reps"), Value: models.NumberValue{}})
			},
		},
		{
			name: "kind changed in place",
			edit: func(f *models.Field) {
				f.Inputs[0].Kind = models.InputRange
			},
		},
		{
			name: "saved input dropped",
			edit: func(f *models.Field) {
				f.Inputs = []models.FieldInput{{Kind: models.InputTextarea, Value: models.TextValue{}}}
			},
			wantErr: true,
		},
		{
			name: "saved input id cleared",
			edit: func(f *models.Field) {
				f.Inputs[0].ID = ""
			},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New()
			e.Load(loadedSubject())

			next := loadedSubject()
			tt.edit(&next.Template.Fields[1])
			err := e.ReplaceDraft(next)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ReplaceDraft() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			if !errors.Is(err, ErrPersistedInput) || !apperrors.Is(err, apperrors.KindInvalid) {
				t.Errorf("error = %v, want ErrPersistedInput", err)
			}
			if diff := cmp.Diff(loadedSubject(), e.Draft()); diff != "" {
				t.Errorf("rejected draft changed the editor (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLegacyInputKindSurvivesEdits(t *testing.T) {
	subject := loadedSubject()
	subject.Template.Fields[0].Inputs = append(subject.Template.Fields[0].Inputs,
		models.FieldInput{ID: "i9", Kind: models.InputKind("SLIDER"), Helper: models.Ptr("Mood"), Value: models.RawValue{}})

	e := New()
	e.Load(subject)
	if err := e.RenameField(0, "Notes"); err != nil {
		t.Fatal(err)
	}
	if r := e.Validate(); !r.Valid() {
		t.Fatalf("rename blocked by legacy input: %+v", r.Issues)
	}

	if _, err := e.CloneField(0); err != nil {
		t.Fatal(err)
	}
	if r := e.Validate(); len(r.At("template.fields[1].inputs[1].kind")) != 1 {
		t.Errorf("cloned legacy input should be flagged: %+v", r.Issues)
	}
}
