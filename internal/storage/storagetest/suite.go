// Package storagetest holds behaviour tests shared by every storage backend.
package storagetest

import (
	"context"
	"errors"
	"testing"

	apperrors "github.com/julianstephens/pjournal/internal/errors"
	"github.com/julianstephens/pjournal/internal/models"
	"github.com/julianstephens/pjournal/internal/storage"
)

// Template returns a two field template: a journal field and a weight
// training field in category "push".
func Template() models.Entry {
	return models.Entry{
		Template:   true,
		Categories: models.CategorySet{"push"},
		Fields: []models.Field{
			{Name: "Journal", Inputs: []models.FieldInput{models.NewInput(models.InputTextarea, nil)}},
			{
				Name:     "Bench",
				Category: models.Ptr("push"),
				Inputs: []models.FieldInput{
					models.NewInput(models.InputNumber, models.Ptr("kg")),
					models.NewInput(models.InputNumber, models.Ptr("reps")),
					models.NewInput(models.InputNumber, models.Ptr("sets")),
					models.NewInput(models.InputRange, models.Ptr("Effort")),
				},
			},
		},
	}
}

// Run exercises a freshly initialised provider. Owner ids are unique per
// call so the suite can share a database with other runs.
func Run(t *testing.T, p storage.Provider, owner string) {
	ctx := context.Background()
	other := owner + "-other"
	t.Cleanup(func() {
		_ = p.DeleteOwnerData(ctx, owner)
		_ = p.DeleteOwnerData(ctx, other)
	})

	subject, err := p.CreateSubject(ctx, owner, "Lifting", Template())
	if err != nil {
		t.Fatalf("CreateSubject: %v", err)
	}

	t.Run("CreateSubject", func(t *testing.T) {
		if subject.ID == "" || subject.OwnerID != owner || subject.Name != "Lifting" {
			t.Fatalf("subject = %+v", subject)
		}
		tmpl := subject.Template
		if tmpl == nil || !tmpl.Template || tmpl.ID == "" {
			t.Fatalf("template = %+v", tmpl)
		}
		if tmpl.Categories.String() != "push" {
			t.Errorf("categories = %q", tmpl.Categories.String())
		}
		if len(tmpl.Fields) != 2 || tmpl.Fields[1].Name != "Bench" || len(tmpl.Fields[1].Inputs) != 4 {
			t.Fatalf("fields = %+v", tmpl.Fields)
		}
		effort := tmpl.Fields[1].Inputs[3]
		if effort.Kind != models.InputRange || effort.HelperText() != "Effort" || effort.ID == "" {
			t.Errorf("effort input = %+v", effort)
		}
		if tmpl.Fields[0].Inputs[0].Helper != nil {
			t.Errorf("textarea helper should stay null")
		}
		if tmpl.Fields[1].CategoryName() != "push" {
			t.Errorf("category = %q", tmpl.Fields[1].CategoryName())
		}
	})

	t.Run("OwnerScoping", func(t *testing.T) {
		if _, err := p.GetSubjectWithTemplate(ctx, other, subject.ID); !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("foreign get = %v, want not found", err)
		}
		if err := p.DeleteSubject(ctx, other, subject.ID); !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("foreign delete = %v, want not found", err)
		}
		if err := p.DeleteFields(ctx, other, subject.Template.ID, []string{subject.Template.Fields[0].ID}); !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("foreign delete fields = %v, want not found", err)
		}
		list, err := p.ListSubjects(ctx, other)
		if err != nil || len(list) != 0 {
			t.Errorf("foreign list = %v, %v", list, err)
		}
	})

	t.Run("GetSubjectByName", func(t *testing.T) {
		got, err := p.GetSubjectByName(ctx, owner, "lifting")
		if err != nil || got.ID != subject.ID {
			t.Errorf("GetSubjectByName = %+v, %v", got, err)
		}
		if _, err := p.GetSubjectByName(ctx, owner, "Running"); !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("missing name = %v", err)
		}
	})

	t.Run("UpdateSubject", func(t *testing.T) {
		draft := subject.Clone()
		journalID := draft.Template.Fields[0].ID
		draft.Name = "Strength"
		draft.Template.Categories = models.CategorySet{"push", "legs"}
		draft.Template.Fields = draft.Template.Fields[1:]
		draft.Template.Fields[0].Inputs[0].Helper = models.Ptr("lb")
		draft.Template.Fields = append(draft.Template.Fields, models.Field{
			Name:     "Squat",
			Category: models.Ptr("legs"),
			Inputs:   []models.FieldInput{models.NewInput(models.InputNumber, models.Ptr("kg"))},
		})
		draft.Template.Fields[0].Inputs = append(draft.Template.Fields[0].Inputs,
			models.NewInput(models.InputBoolean, models.Ptr("Paused?")))

		if err := p.UpdateSubject(ctx, owner, draft, []string{journalID}); err != nil {
			t.Fatalf("UpdateSubject: %v", err)
		}

		got, err := p.GetSubjectWithTemplate(ctx, owner, subject.ID)
		if err != nil {
			t.Fatal(err)
		}
		if got.Name != "Strength" || got.Template.Categories.String() != "push,legs" {
			t.Errorf("header = %q %q", got.Name, got.Template.Categories.String())
		}
		if len(got.Template.Fields) != 2 {
			t.Fatalf("fields after update = %+v", got.Template.Fields)
		}
		bench := got.Template.Fields[0]
		if bench.ID != subject.Template.Fields[1].ID {
			t.Errorf("existing field not updated in place: %s", bench.ID)
		}
		if bench.Inputs[0].HelperText() != "lb" || len(bench.Inputs) != 5 || bench.Inputs[4].Kind != models.InputBoolean {
			t.Errorf("bench inputs = %+v", bench.Inputs)
		}
		if got.Template.Fields[1].Name != "Squat" || got.Template.Fields[1].ID == "" {
			t.Errorf("new field = %+v", got.Template.Fields[1])
		}
		subject = got
	})

	t.Run("UpdateSubjectIsAtomic", func(t *testing.T) {
		draft := subject.Clone()
		draft.Name = "Renamed"
		draft.Template.ID = "not-the-template"
		err := p.UpdateSubject(ctx, owner, draft, []string{subject.Template.Fields[0].ID})
		if !errors.Is(err, apperrors.ErrConflict) {
			t.Fatalf("mismatched template = %v, want conflict", err)
		}
		got, _ := p.GetSubjectWithTemplate(ctx, owner, subject.ID)
		if got.Name != "Strength" || len(got.Template.Fields) != 2 {
			t.Errorf("failed update leaked: %q with %d fields", got.Name, len(got.Template.Fields))
		}
	})

	t.Run("DeleteFields", func(t *testing.T) {
		draft := subject.Clone()
		draft.Template.Fields = append(draft.Template.Fields, models.Field{
			Name:   "Notes",
			Inputs: []models.FieldInput{models.NewInput(models.InputTextarea, nil)},
		})
		if err := p.UpdateSubject(ctx, owner, draft, nil); err != nil {
			t.Fatal(err)
		}
		got, _ := p.GetSubjectWithTemplate(ctx, owner, subject.ID)
		notes := got.Template.Fields[2]
		if err := p.DeleteFields(ctx, owner, got.Template.ID, []string{notes.ID}); err != nil {
			t.Fatalf("DeleteFields: %v", err)
		}
		got, _ = p.GetSubjectWithTemplate(ctx, owner, subject.ID)
		if len(got.Template.Fields) != 2 {
			t.Errorf("fields after delete = %d", len(got.Template.Fields))
		}
	})

	var entryID string
	t.Run("Entries", func(t *testing.T) {
		entry := models.Entry{
			Categories: subject.Template.Categories,
			Fields: []models.Field{{
				Name:     "Bench",
				Category: models.Ptr("push"),
				Inputs: []models.FieldInput{
					{Kind: models.InputNumber, Helper: models.Ptr("lb"), Value: models.NumberValue{Number: models.Ptr(185.0)}},
					{Kind: models.InputNumber, Helper: models.Ptr("reps"), Value: models.NumberValue{Number: models.Ptr(5.0)}},
					{Kind: models.InputBoolean, Helper: models.Ptr("Paused?"), Value: models.BoolValue{Bool: models.Ptr(false)}},
					{Kind: models.InputKind("SLIDER"), Value: models.RawValue{String: models.Ptr("legacy")}},
				},
			}},
		}

		created, err := p.CreateEntryInstance(ctx, owner, subject.ID, entry)
		if err != nil {
			t.Fatalf("CreateEntryInstance: %v", err)
		}
		if created.ID == "" || created.Template || created.CreatedAt.IsZero() {
			t.Fatalf("created = %+v", created)
		}
		entryID = created.ID

		inputs := created.Fields[0].Inputs
		if len(inputs) != 4 {
			t.Fatalf("inputs = %+v", inputs)
		}
		if inputs[0].Display() != "185 lb" || inputs[2].Display() != "Paused? No" {
			t.Errorf("values = %q %q", inputs[0].Display(), inputs[2].Display())
		}
		if raw, ok := inputs[3].Value.(models.RawValue); !ok || raw.String == nil || *raw.String != "legacy" {
			t.Errorf("unknown kind not preserved: %#v", inputs[3])
		}

		if _, err := p.CreateEntryInstance(ctx, other, subject.ID, entry); !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("foreign create = %v", err)
		}

		list, err := p.ListEntryInstances(ctx, owner, subject.ID)
		if err != nil || len(list) != 1 || list[0].ID != entryID {
			t.Errorf("ListEntryInstances = %+v, %v", list, err)
		}
		if _, err := p.GetEntryInstance(ctx, owner, subject.ID, subject.Template.ID); !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("template fetched as instance: %v", err)
		}
		if _, err := p.GetEntryInstance(ctx, other, subject.ID, entryID); !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("foreign get entry = %v", err)
		}
	})

	t.Run("Settings", func(t *testing.T) {
		s, err := p.GetSettings(ctx, owner)
		if err != nil || s.Units != "Metric" || s.Bodyweight != nil {
			t.Fatalf("default settings = %+v, %v", s, err)
		}
		s.Bodyweight = models.Ptr(82.5)
		s.Units = "Imperial"
		if err := p.SaveSettings(ctx, s); err != nil {
			t.Fatal(err)
		}
		s.Units = "Metric"
		if err := p.SaveSettings(ctx, s); err != nil {
			t.Fatal(err)
		}
		got, _ := p.GetSettings(ctx, owner)
		if got.Units != "Metric" || got.Bodyweight == nil || *got.Bodyweight != 82.5 {
			t.Errorf("saved settings = %+v", got)
		}
	})

	t.Run("DeleteSubjectCascades", func(t *testing.T) {
		second, err := p.CreateSubject(ctx, owner, "Running", Template())
		if err != nil {
			t.Fatal(err)
		}
		if err := p.DeleteSubject(ctx, owner, second.ID); err != nil {
			t.Fatalf("DeleteSubject: %v", err)
		}
		if _, err := p.GetSubjectWithTemplate(ctx, owner, second.ID); !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("deleted subject still readable: %v", err)
		}
		if _, err := p.GetEntryInstance(ctx, owner, subject.ID, entryID); err != nil {
			t.Errorf("unrelated entry lost: %v", err)
		}
	})

	t.Run("DeleteOwnerData", func(t *testing.T) {
		if _, err := p.CreateSubject(ctx, other, "Theirs", Template()); err != nil {
			t.Fatal(err)
		}
		if err := p.DeleteOwnerData(ctx, owner); err != nil {
			t.Fatalf("DeleteOwnerData: %v", err)
		}
		list, _ := p.ListSubjects(ctx, owner)
		if len(list) != 0 {
			t.Errorf("subjects left after purge: %+v", list)
		}
		if _, err := p.GetEntryInstance(ctx, owner, subject.ID, entryID); !errors.Is(err, apperrors.ErrNotFound) {
			t.Errorf("entry survived purge: %v", err)
		}
		s, _ := p.GetSettings(ctx, owner)
		if s.Bodyweight != nil {
			t.Errorf("settings survived purge: %+v", s)
		}
		theirs, _ := p.ListSubjects(ctx, other)
		if len(theirs) != 1 {
			t.Errorf("other owner's data touched: %+v", theirs)
		}
	})
}
