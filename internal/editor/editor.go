package editor

import (
	"context"
	"fmt"
	"strings"

	"github.com/julianstephens/pjournal/internal/constants"
	"github.com/julianstephens/pjournal/internal/errors"
	"github.com/julianstephens/pjournal/internal/models"
	"github.com/julianstephens/pjournal/internal/validation"
)

var (
	ErrLastField       = errors.New(errors.KindInvalid, "a template must keep at least one field")
	ErrLastInput       = errors.New(errors.KindInvalid, "a field must keep at least one input")
	ErrPersistedInput  = errors.New(errors.KindInvalid, "saved inputs cannot be removed")
	ErrIndexOutOfRange = errors.New(errors.KindInvalid, "index out of range")
	ErrUnknownCategory = errors.New(errors.KindInvalid, "category does not exist")
	ErrEmptyCategory   = errors.New(errors.KindInvalid, "category name is required")
)

// TemplateLoader fetches a subject with its template entry.
type TemplateLoader interface {
	GetSubjectWithTemplate(ctx context.Context, subjectID string) (models.Subject, error)
}

// Saver persists a draft. Both calls return the subject as stored so the
// editor can rebase onto fresh ids.
type Saver interface {
	CreateSubject(ctx context.Context, subject models.Subject) (models.Subject, error)
	UpdateSubject(ctx context.Context, subject models.Subject, deletedFieldIDs []string) (models.Subject, error)
}

// SavePlan describes what Save is about to do.
type SavePlan struct {
	Create          bool
	Subject         models.Subject
	DeletedFieldIDs []string
	TemplateEntryID string
}

// Option configures an Editor.
type Option func(*Editor)

// WithLegacyFieldNames validates field names against the older 50 character limit.
func WithLegacyFieldNames() Option {
	return func(e *Editor) { e.validator = validation.New(validation.Options{LegacyFieldNames: true}) }
}

// Editor holds a template draft, the baseline it was loaded from and the
// ids of persisted fields removed since then. It is not safe for
// concurrent use.
type Editor struct {
	draft     models.Subject
	baseline  *models.Subject
	deleted   []string
	selection string
	validator *validation.Validator
}

// New returns an editor for a brand new subject.
func New(opts ...Option) *Editor {
	e := &Editor{validator: validation.New(validation.Options{})}
	for _, opt := range opts {
		opt(e)
	}
	e.SelectNew()
	return e
}

// SeedTemplate returns the template every new subject starts with: one
// "Journal" field holding a single TEXTAREA input.
func SeedTemplate() *models.Entry {
	return &models.Entry{
		Template: true,
		Fields: []models.Field{{
			Name:   constants.DefaultFieldName,
			Inputs: PresetInputs(constants.TemplateJournal),
		}},
	}
}

// PresetInputs returns the default inputs for a template kind. Unknown kinds
// fall back to the journal layout.
func PresetInputs(kind constants.TemplateKind) []models.FieldInput {
	switch kind {
	case constants.TemplateWeightTraining:
		return []models.FieldInput{
			models.NewInput(models.InputNumber, models.Ptr(constants.HelperWeight)),
			models.NewInput(models.InputNumber, models.Ptr(constants.HelperReps)),
			models.NewInput(models.InputNumber, models.Ptr(constants.HelperSets)),
			models.NewInput(models.InputRange, models.Ptr(constants.HelperEffort)),
		}
	default:
		return []models.FieldInput{models.NewInput(models.InputTextarea, nil)}
	}
}

func presetName(kind constants.TemplateKind) string {
	if kind == constants.TemplateWeightTraining {
		return constants.DefaultExerciseName
	}
	return constants.DefaultFieldName
}

// SelectNew resets the draft to the seed template.
func (e *Editor) SelectNew() {
	e.selection = constants.SelectionNew
	e.draft = models.Subject{Template: SeedTemplate()}
	e.baseline = nil
	e.deleted = nil
}

// Load replaces the draft wholesale with subject and makes a deep copy of
// it the new baseline. A subject without an id is treated as new.
func (e *Editor) Load(subject models.Subject) {
	if subject.Template == nil {
		subject.Template = &models.Entry{Template: true}
	}
	e.draft = subject.Clone()
	e.deleted = nil
	if subject.ID == "" {
		e.selection = constants.SelectionNew
		e.baseline = nil
		return
	}
	base := subject.Clone()
	e.baseline = &base
	e.selection = subject.ID
}

// ReplaceDraft swaps in a whole new draft and keeps the baseline, so fields
// the new draft no longer carries are reported by DiffDeletedFields. A
// persisted field that stays must keep every saved input; otherwise the
// draft is rejected with ErrPersistedInput and the editor is unchanged.
func (e *Editor) ReplaceDraft(subject models.Subject) error {
	if subject.Template == nil {
		subject.Template = &models.Entry{Template: true}
	}
	if e.baseline != nil {
		if err := keepsPersistedInputs(e.baseline.Template, subject.Template); err != nil {
			return err
		}
		subject.ID = e.baseline.ID
		if subject.Template.ID == "" && e.baseline.Template != nil {
			subject.Template.ID = e.baseline.Template.ID
		}
	}
	e.draft = subject.Clone()
	return nil
}

func keepsPersistedInputs(baseline, draft *models.Entry) error {
	if baseline == nil {
		return nil
	}
	kept := make(map[string]map[string]bool, len(draft.Fields))
	for _, f := range draft.Fields {
		if f.ID == "" {
			continue
		}
		ids := kept[f.ID]
		if ids == nil {
			ids = map[string]bool{}
			kept[f.ID] = ids
		}
		for _, in := range f.Inputs {
			if in.ID != "" {
				ids[in.ID] = true
			}
		}
	}
	for _, f := range baseline.Fields {
		ids, ok := kept[f.ID]
		if f.ID == "" || !ok {
			continue
		}
		for _, in := range f.Inputs {
			if in.Persisted() && !ids[in.ID] {
				return fmt.Errorf("%w: input %s of field %q", ErrPersistedInput, in.ID, f.Name)
			}
		}
	}
	return nil
}

// Select switches to id, loading it through loader unless id is "new".
func (e *Editor) Select(ctx context.Context, loader TemplateLoader, id string) error {
	if id == "" || id == constants.SelectionNew {
		e.SelectNew()
		return nil
	}
	subject, err := loader.GetSubjectWithTemplate(ctx, id)
	if err != nil {
		return fmt.Errorf("load subject %s: %w", id, err)
	}
	e.Load(subject)
	return nil
}

// Selection returns "new" or the id of the loaded subject.
func (e *Editor) Selection() string { return e.selection }

// IsNew reports whether Save will create a subject.
func (e *Editor) IsNew() bool { return e.selection == constants.SelectionNew }

// Draft returns a deep copy of the current draft.
func (e *Editor) Draft() models.Subject { return e.draft.Clone() }

// Fields returns the template fields of the draft. The slice is shared;
// mutate through the editor methods.
func (e *Editor) Fields() []models.Field { return e.draft.Template.Fields }

// Categories returns the categories declared on the template.
func (e *Editor) Categories() models.CategorySet { return e.draft.Template.Categories.Clone() }

// Deleted returns the ids recorded by RemoveField since the last load.
func (e *Editor) Deleted() []string { return append([]string(nil), e.deleted...) }

func (e *Editor) field(i int) (*models.Field, error) {
	if i < 0 || i >= len(e.draft.Template.Fields) {
		return nil, fmt.Errorf("%w: field %d", ErrIndexOutOfRange, i)
	}
	return &e.draft.Template.Fields[i], nil
}

func (e *Editor) input(i, j int) (*models.FieldInput, error) {
	f, err := e.field(i)
	if err != nil {
		return nil, err
	}
	if j < 0 || j >= len(f.Inputs) {
		return nil, fmt.Errorf("%w: input %d of field %d", ErrIndexOutOfRange, j, i)
	}
	return &f.Inputs[j], nil
}

// RenameSubject sets the subject name.
func (e *Editor) RenameSubject(name string) { e.draft.Name = name }

// RenameField sets the name of field i.
func (e *Editor) RenameField(i int, name string) error {
	f, err := e.field(i)
	if err != nil {
		return err
	}
	f.Name = name
	return nil
}

// AddField appends an unsaved field preset for kind and returns its index.
func (e *Editor) AddField(kind constants.TemplateKind) int {
	e.draft.Template.Fields = append(e.draft.Template.Fields, models.Field{
		Name:   presetName(kind),
		Inputs: PresetInputs(kind),
	})
	return len(e.draft.Template.Fields) - 1
}

// RemoveField drops field i. The last remaining field cannot be removed.
func (e *Editor) RemoveField(i int) error {
	f, err := e.field(i)
	if err != nil {
		return err
	}
	if len(e.draft.Template.Fields) <= 1 {
		return ErrLastField
	}
	if f.Persisted() {
		e.deleted = append(e.deleted, f.ID)
	}
	fields := e.draft.Template.Fields
	e.draft.Template.Fields = append(fields[:i:i], fields[i+1:]...)
	return nil
}

// AddFieldInput appends a NUMBER input with an empty helper to field i.
func (e *Editor) AddFieldInput(i int) (int, error) {
	f, err := e.field(i)
	if err != nil {
		return 0, err
	}
	f.Inputs = append(f.Inputs, models.NewInput(models.InputNumber, models.Ptr("")))
	return len(f.Inputs) - 1, nil
}

// RemoveFieldInput drops input j of field i. Only inputs added since the
// last save can be removed, and a field keeps at least one input.
func (e *Editor) RemoveFieldInput(i, j int) error {
	in, err := e.input(i, j)
	if err != nil {
		return err
	}
	if in.Persisted() {
		return ErrPersistedInput
	}
	f := &e.draft.Template.Fields[i]
	if len(f.Inputs) <= 1 {
		return ErrLastInput
	}
	f.Inputs = append(f.Inputs[:j:j], f.Inputs[j+1:]...)
	return nil
}

// SetInputKind changes the kind of input j on field i. The value is reset
// to the empty slot of the new kind.
func (e *Editor) SetInputKind(i, j int, kind models.InputKind) error {
	in, err := e.input(i, j)
	if err != nil {
		return err
	}
	if in.Kind == kind {
		return nil
	}
	in.Kind = kind
	in.Value = models.EmptyValue(kind)
	return nil
}

// SetInputHelper sets the unit or question label of input j on field i.
func (e *Editor) SetInputHelper(i, j int, helper string) error {
	in, err := e.input(i, j)
	if err != nil {
		return err
	}
	in.Helper = models.Ptr(helper)
	return nil
}

// SetCategory assigns category to field i. The category must already be
// declared on the template; an empty string clears the assignment.
func (e *Editor) SetCategory(i int, category string) error {
	f, err := e.field(i)
	if err != nil {
		return err
	}
	if category == "" {
		f.Category = nil
		return nil
	}
	if !e.draft.Template.Categories.Contains(category) {
		return fmt.Errorf("%w: %q", ErrUnknownCategory, category)
	}
	f.Category = models.Ptr(category)
	return nil
}

// CreateCategory declares name on the template if it is not already there.
func (e *Editor) CreateCategory(name string) error {
	name = strings.TrimSpace(name)
	if name == "" || strings.Contains(name, ",") {
		return ErrEmptyCategory
	}
	e.draft.Template.Categories = e.draft.Template.Categories.Add(name)
	return nil
}

// CloneField inserts a copy of field i at i+1. The copy keeps category,
// kinds, helpers and values but has no ids.
func (e *Editor) CloneField(i int) (int, error) {
	f, err := e.field(i)
	if err != nil {
		return 0, err
	}
	clone := ClearIDs(f.Clone())
	fields := e.draft.Template.Fields
	out := make([]models.Field, 0, len(fields)+1)
	out = append(out, fields[:i+1]...)
	out = append(out, clone)
	out = append(out, fields[i+1:]...)
	e.draft.Template.Fields = out
	return i + 1, nil
}

// ClearIDs strips persisted ids from f and its inputs.
func ClearIDs(f models.Field) models.Field {
	f.ID = ""
	f.EntryID = ""
	for k := range f.Inputs {
		f.Inputs[k].ID = ""
		f.Inputs[k].FieldID = ""
	}
	return f
}

// MoveField moves field from to position to.
func (e *Editor) MoveField(from, to int) error {
	f, err := e.field(from)
	if err != nil {
		return err
	}
	if _, err := e.field(to); err != nil {
		return err
	}
	moved := *f
	fields := e.draft.Template.Fields
	fields = append(fields[:from:from], fields[from+1:]...)
	fields = append(fields[:to], append([]models.Field{moved}, fields[to:]...)...)
	e.draft.Template.Fields = fields
	return nil
}

// DiffDeletedFields returns the ids of baseline fields missing from the
// draft, in baseline order.
func (e *Editor) DiffDeletedFields() []string {
	if e.baseline == nil || e.baseline.Template == nil {
		return nil
	}
	present := make(map[string]bool, len(e.draft.Template.Fields))
	for _, f := range e.draft.Template.Fields {
		if f.ID != "" {
			present[f.ID] = true
		}
	}
	var out []string
	for _, f := range e.baseline.Template.Fields {
		if f.ID != "" && !present[f.ID] {
			out = append(out, f.ID)
		}
	}
	return out
}

// Validate runs the template validator against the draft. Saved inputs
// still holding the unrecognized kind they were loaded with pass.
func (e *Editor) Validate() validation.Result {
	return e.validator.ValidateSubjectChange(e.draft, e.baseline)
}

// Plan reports what Save would send to the store.
func (e *Editor) Plan() SavePlan {
	plan := SavePlan{Create: e.IsNew(), Subject: e.draft.Clone()}
	if !plan.Create {
		plan.DeletedFieldIDs = e.DiffDeletedFields()
		plan.TemplateEntryID = e.draft.Template.ID
	}
	return plan
}

// Save validates the draft and creates or updates it through saver. On
// success the stored subject becomes both draft and baseline.
func (e *Editor) Save(ctx context.Context, saver Saver) (models.Subject, error) {
	if r := e.Validate(); !r.Valid() {
		return models.Subject{}, r.Err()
	}

	plan := e.Plan()
	var (
		saved models.Subject
		err   error
	)
	if plan.Create {
		saved, err = saver.CreateSubject(ctx, plan.Subject)
	} else {
		saved, err = saver.UpdateSubject(ctx, plan.Subject, plan.DeletedFieldIDs)
	}
	if err != nil {
		return models.Subject{}, err
	}
	e.Load(saved)
	return saved.Clone(), nil
}
