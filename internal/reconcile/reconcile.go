package reconcile

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/julianstephens/pjournal/internal/category"
	"github.com/julianstephens/pjournal/internal/errors"
	"github.com/julianstephens/pjournal/internal/models"
)

var (
	ErrNoTemplate      = errors.New(errors.KindNoTemplate, "no template")
	ErrEmptySubmission = errors.New(errors.KindEmptySubmission, "nothing to save")
	ErrIndexOutOfRange = errors.New(errors.KindInvalid, "index out of range")
	ErrKindMismatch    = errors.New(errors.KindInvalid, "value does not match input type")
	ErrNotFinite       = errors.New(errors.KindInvalid, "number must be finite")
)

// Mode is how a draft was built
type Mode int

const (
	ModeFresh Mode = iota
	ModeLoad
)

// Options tunes how fresh drafts are seeded
type Options struct {
	// SeedNumbers copies a number stored on the template input into the
	// fresh value instead of leaving it unset.
	SeedNumbers bool
}

type draftField struct {
	field   models.Field
	initial *models.Field
	touched bool
}

// View is a field as seen through a category selection, with its index in
// the full draft.
type View struct {
	Index int
	Field models.Field
}

// Draft is an editable journal entry built from a template.
type Draft struct {
	mode       Mode
	subjectID  string
	categories models.CategorySet
	fields     []draftField
}

// BuildDraft builds a draft with default options.
func BuildDraft(template *models.Entry, prior *models.Entry) (*Draft, error) {
	return Build(template, prior, Options{})
}

// Build returns a fresh draft mirroring template, or, when prior is set, a
// draft carrying prior's values. A nil template fails with ErrNoTemplate.
func Build(template *models.Entry, prior *models.Entry, opts Options) (*Draft, error) {
	if template == nil {
		return nil, ErrNoTemplate
	}

	d := &Draft{
		subjectID:  template.SubjectID,
		categories: template.Categories.Clone(),
	}

	if prior == nil {
		d.mode = ModeFresh
		for _, tf := range template.Fields {
			d.add(freshField(tf, opts))
		}
		return d, nil
	}

	d.mode = ModeLoad
	if prior.SubjectID != "" {
		d.subjectID = prior.SubjectID
	}
	byName := make(map[string]models.Field, len(template.Fields))
	for _, tf := range template.Fields {
		if _, ok := byName[tf.Name]; !ok {
			byName[tf.Name] = tf
		}
	}
	for _, pf := range prior.Fields {
		f := pf.Clone()
		if f.Category == nil {
			if tf, ok := byName[f.Name]; ok && tf.Category != nil {
				f.Category = models.Ptr(*tf.Category)
			}
		}
		d.add(f)
	}
	return d, nil
}

func freshField(tf models.Field, opts Options) models.Field {
	f := models.Field{Name: tf.Name, Category: tf.Category}
	f = f.Clone()
	f.Inputs = make([]models.FieldInput, len(tf.Inputs))
	for j, ti := range tf.Inputs {
		in := models.NewInput(ti.Kind, ti.Helper)
		switch ti.Kind {
		case models.InputTextarea:
			in.Value = models.TextValue{Text: models.Ptr("")}
		case models.InputBoolean:
			in.Value = models.BoolValue{Bool: models.Ptr(false)}
		case models.InputNumber, models.InputRange:
			if nv, ok := ti.Value.(models.NumberValue); ok && opts.SeedNumbers && nv.Number != nil {
				in.Value = models.NumberValue{Number: models.Ptr(*nv.Number)}
			}
		}
		f.Inputs[j] = in
	}
	return f
}

func (d *Draft) add(f models.Field) {
	initial := f.Clone()
	d.fields = append(d.fields, draftField{field: f, initial: &initial})
}

func (d *Draft) Mode() Mode { return d.mode }

func (d *Draft) SubjectID() string { return d.subjectID }

func (d *Draft) Categories() models.CategorySet { return d.categories.Clone() }

// Len returns the number of fields in the draft.
func (d *Draft) Len() int { return len(d.fields) }

// Field returns a copy of field i.
func (d *Draft) Field(i int) (models.Field, error) {
	if i < 0 || i >= len(d.fields) {
		return models.Field{}, fmt.Errorf("%w: field %d", ErrIndexOutOfRange, i)
	}
	return d.fields[i].field.Clone(), nil
}

// Fields returns the fields matched by sel with their draft indices.
func (d *Draft) Fields(sel category.Selection) []View {
	out := []View{}
	for i, df := range d.fields {
		if sel.Match(df.field) {
			out = append(out, View{Index: i, Field: df.field.Clone()})
		}
	}
	return out
}

// FindField returns the index of the first field named name.
func (d *Draft) FindField(name string) (int, bool) {
	for i, df := range d.fields {
		if strings.EqualFold(df.field.Name, name) {
			return i, true
		}
	}
	return -1, false
}

func (d *Draft) input(i, j int) (*models.FieldInput, error) {
	if i < 0 || i >= len(d.fields) {
		return nil, fmt.Errorf("%w: field %d", ErrIndexOutOfRange, i)
	}
	f := &d.fields[i].field
	if j < 0 || j >= len(f.Inputs) {
		return nil, fmt.Errorf("%w: input %d of field %d", ErrIndexOutOfRange, j, i)
	}
	return &f.Inputs[j], nil
}

func (d *Draft) set(i, j int, kinds []models.InputKind, v models.Value) error {
	in, err := d.input(i, j)
	if err != nil {
		return err
	}
	ok := false
	for _, k := range kinds {
		if in.Kind == k {
			ok = true
		}
	}
	if !ok {
		return fmt.Errorf("%w: %s input", ErrKindMismatch, in.Kind)
	}
	in.Value = v
	d.fields[i].touched = true
	return nil
}

// SetText sets a TEXTAREA value.
func (d *Draft) SetText(i, j int, s string) error {
	return d.set(i, j, []models.InputKind{models.InputTextarea}, models.TextValue{Text: models.Ptr(s)})
}

// SetNumber sets a NUMBER or RANGE value. NaN and infinities are rejected.
func (d *Draft) SetNumber(i, j int, n float64) error {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return fmt.Errorf("%w: input %d of field %d", ErrNotFinite, j, i)
	}
	return d.set(i, j, []models.InputKind{models.InputNumber, models.InputRange}, models.NumberValue{Number: models.Ptr(n)})
}

// SetBool sets a BOOLEAN value.
func (d *Draft) SetBool(i, j int, b bool) error {
	return d.set(i, j, []models.InputKind{models.InputBoolean}, models.BoolValue{Bool: models.Ptr(b)})
}

// ClearValue unsets input j of field i.
func (d *Draft) ClearValue(i, j int) error {
	in, err := d.input(i, j)
	if err != nil {
		return err
	}
	in.Value = models.EmptyValue(in.Kind)
	d.fields[i].touched = true
	return nil
}

// SetFromString parses s according to the input kind and stores it.
// Booleans accept true/false, yes/no and y/n. An empty string clears.
func (d *Draft) SetFromString(i, j int, s string) error {
	in, err := d.input(i, j)
	if err != nil {
		return err
	}
	if s == "" && in.Kind != models.InputTextarea {
		return d.ClearValue(i, j)
	}
	switch in.Kind {
	case models.InputTextarea:
		return d.SetText(i, j, s)
	case models.InputNumber, models.InputRange:
		n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return errors.Wrap(errors.KindInvalid, err, "%s input %d of field %d", in.Kind, j, i)
		}
		return d.SetNumber(i, j, n)
	case models.InputBoolean:
		b, err := ParseBool(s)
		if err != nil {
			return err
		}
		return d.SetBool(i, j, b)
	}
	return fmt.Errorf("%w: %s input", ErrKindMismatch, in.Kind)
}

// ParseBool accepts the yes/no spellings used by the entry form.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "y", "1":
		return true, nil
	case "false", "no", "n", "0":
		return false, nil
	}
	return false, errors.New(errors.KindInvalid, "%q is not a yes/no value", s)
}

// Touch marks field i as edited without changing it.
func (d *Draft) Touch(i int) error {
	if i < 0 || i >= len(d.fields) {
		return fmt.Errorf("%w: field %d", ErrIndexOutOfRange, i)
	}
	d.fields[i].touched = true
	return nil
}

// TouchAll marks every field as edited.
func (d *Draft) TouchAll() {
	for i := range d.fields {
		d.fields[i].touched = true
	}
}

// CloneField inserts a copy of field i at i+1, values included. The copy
// has no ids and counts as edited.
func (d *Draft) CloneField(i int) (int, error) {
	if i < 0 || i >= len(d.fields) {
		return 0, fmt.Errorf("%w: field %d", ErrIndexOutOfRange, i)
	}
	clone := d.fields[i].field.Clone()
	clone.ID = ""
	clone.EntryID = ""
	for k := range clone.Inputs {
		clone.Inputs[k].ID = ""
		clone.Inputs[k].FieldID = ""
	}
	out := make([]draftField, 0, len(d.fields)+1)
	out = append(out, d.fields[:i+1]...)
	out = append(out, draftField{field: clone, touched: true})
	out = append(out, d.fields[i+1:]...)
	d.fields = out
	return i + 1, nil
}

func (df draftField) dirty() bool {
	if df.touched || df.initial == nil {
		return true
	}
	return !df.field.SameAs(*df.initial)
}

// Touched returns the indices of fields that differ from how the draft
// was built or were explicitly edited.
func (d *Draft) Touched() []int {
	out := []int{}
	for i, df := range d.fields {
		if df.dirty() {
			out = append(out, i)
		}
	}
	return out
}

func blank(in models.FieldInput) bool {
	if in.IsEmpty() {
		return true
	}
	tv, ok := in.Value.(models.TextValue)
	return ok && strings.TrimSpace(*tv.Text) == ""
}

// Submit returns the entry to persist: only edited fields, without inputs
// that hold no value, and without fields left with no inputs. An entry
// with nothing left fails with ErrEmptySubmission.
func (d *Draft) Submit() (models.Entry, error) {
	entry := models.Entry{
		SubjectID:  d.subjectID,
		Categories: d.categories.Clone(),
	}
	for _, df := range d.fields {
		if !df.dirty() {
			continue
		}
		f := df.field.Clone()
		kept := f.Inputs[:0]
		for _, in := range f.Inputs {
			if !blank(in) {
				kept = append(kept, in)
			}
		}
		if len(kept) == 0 {
			continue
		}
		f.Inputs = kept
		entry.Fields = append(entry.Fields, f)
	}
	if len(entry.Fields) == 0 {
		return models.Entry{}, ErrEmptySubmission
	}
	return entry, nil
}
