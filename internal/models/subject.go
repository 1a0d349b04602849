package models

import (
	"encoding/json"
	"time"
)

// Subject is a named tracking domain owned by a single user. Its Template
// entry defines the field/input schema every journal entry is built from.
type Subject struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	Template  *Entry    `json:"template,omitempty"`
}

// SubjectSummary is the listing shape of a subject.
type SubjectSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Entry is either the subject's template (Template=true) or a dated journal
// record. Instances are never restructured after they are created, so they
// may drift from a template that changed later.
type Entry struct {
	ID         string      `json:"id"`
	SubjectID  string      `json:"subject_id"`
	Template   bool        `json:"template"`
	Categories CategorySet `json:"categories,omitempty"`
	CreatedAt  time.Time   `json:"created_at"`
	Fields     []Field     `json:"fields"`
}

// Field groups one or more typed inputs under a single label.
type Field struct {
	ID       string       `json:"id,omitempty"`
	EntryID  string       `json:"entry_id,omitempty"`
	Name     string       `json:"name"`
	Category *string      `json:"category,omitempty"`
	Inputs   []FieldInput `json:"field_inputs"`
}

// FieldInput is one typed value slot within a field.
type FieldInput struct {
	ID      string
	FieldID string
	Kind    InputKind
	Helper  *string
	Value   Value
}

// UserSettings holds per-user profile values.
type UserSettings struct {
	OwnerID    string   `json:"owner_id"`
	Bodyweight *float64 `json:"bodyweight,omitempty"`
	Units      string   `json:"units"`
}

// NewInput returns an input of kind with an unset value.
func NewInput(kind InputKind, helper *string) FieldInput {
	return FieldInput{Kind: kind, Helper: clonePtr(helper), Value: EmptyValue(kind)}
}

// HelperText returns the helper label or "" when none is set.
func (in FieldInput) HelperText() string {
	if in.Helper == nil {
		return ""
	}
	return *in.Helper
}

// IsEmpty reports whether no value has been entered.
func (in FieldInput) IsEmpty() bool { return IsEmptyValue(in.Value) }

// Persisted reports whether the input has been stored before.
func (in FieldInput) Persisted() bool { return in.ID != "" }

func (in FieldInput) Clone() FieldInput {
	return FieldInput{
		ID:      in.ID,
		FieldID: in.FieldID,
		Kind:    in.Kind,
		Helper:  clonePtr(in.Helper),
		Value:   CloneValue(in.Value),
	}
}

// CategoryName returns the field category or "" when unassigned.
func (f Field) CategoryName() string {
	if f.Category == nil {
		return ""
	}
	return *f.Category
}

func (f Field) Persisted() bool { return f.ID != "" }

func (f Field) Clone() Field {
	out := Field{
		ID:       f.ID,
		EntryID:  f.EntryID,
		Name:     f.Name,
		Category: clonePtr(f.Category),
	}
	if f.Inputs != nil {
		out.Inputs = make([]FieldInput, len(f.Inputs))
		for i, in := range f.Inputs {
			out.Inputs[i] = in.Clone()
		}
	}
	return out
}

func (e Entry) Clone() Entry {
	out := e
	out.Categories = e.Categories.Clone()
	if e.Fields != nil {
		out.Fields = make([]Field, len(e.Fields))
		for i, f := range e.Fields {
			out.Fields[i] = f.Clone()
		}
	}
	return out
}

func (s Subject) Clone() Subject {
	out := s
	if s.Template != nil {
		t := s.Template.Clone()
		out.Template = &t
	}
	return out
}

type fieldInputJSON struct {
	ID           string   `json:"id,omitempty"`
	FieldID      string   `json:"field_id,omitempty"`
	InputType    string   `json:"input_type"`
	InputHelper  *string  `json:"input_helper"`
	ValueString  *string  `json:"value_string,omitempty"`
	ValueNumber  *float64 `json:"value_number,omitempty"`
	ValueBoolean *bool    `json:"value_boolean,omitempty"`
}

// MarshalJSON writes the input in the three-slot wire shape.
func (in FieldInput) MarshalJSON() ([]byte, error) {
	s, n, b := Slots(in.Value)
	return json.Marshal(fieldInputJSON{
		ID:           in.ID,
		FieldID:      in.FieldID,
		InputType:    string(in.Kind),
		InputHelper:  in.Helper,
		ValueString:  s,
		ValueNumber:  n,
		ValueBoolean: b,
	})
}

func (in *FieldInput) UnmarshalJSON(data []byte) error {
	var w fieldInputJSON
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	kind := ParseInputKind(w.InputType)
	*in = FieldInput{
		ID:      w.ID,
		FieldID: w.FieldID,
		Kind:    kind,
		Helper:  w.InputHelper,
		Value:   ValueFromSlots(kind, w.ValueString, w.ValueNumber, w.ValueBoolean),
	}
	return nil
}

// SameAs reports whether f and o hold the same name, category, ids and
// input values.
func (f Field) SameAs(o Field) bool {
	if f.ID != o.ID || f.EntryID != o.EntryID || f.Name != o.Name || !ptrEqual(f.Category, o.Category) {
		return false
	}
	if len(f.Inputs) != len(o.Inputs) {
		return false
	}
	for i := range f.Inputs {
		if !f.Inputs[i].SameAs(o.Inputs[i]) {
			return false
		}
	}
	return true
}

func (in FieldInput) SameAs(o FieldInput) bool {
	if in.ID != o.ID || in.FieldID != o.FieldID || in.Kind != o.Kind || !ptrEqual(in.Helper, o.Helper) {
		return false
	}
	as, an, ab := Slots(in.Value)
	bs, bn, bb := Slots(o.Value)
	return ptrEqual(as, bs) && ptrEqual(an, bn) && ptrEqual(ab, bb)
}

func ptrEqual[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
