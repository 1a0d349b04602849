package models

import "strings"

// InputKind is the type of a single field input. Values read from storage
// that are not one of the known kinds are kept verbatim.
type InputKind string

const (
	InputTextarea InputKind = "TEXTAREA"
	InputNumber   InputKind = "NUMBER"
	InputBoolean  InputKind = "BOOLEAN"
	InputRange    InputKind = "RANGE"
)

// InputKinds lists the kinds a template editor may assign, in display order.
var InputKinds = []InputKind{InputTextarea, InputNumber, InputBoolean, InputRange}

// ParseInputKind normalises s to a known kind when it matches one
// case-insensitively. Anything else is returned unchanged.
func ParseInputKind(s string) InputKind {
	upper := InputKind(strings.ToUpper(strings.TrimSpace(s)))
	for _, k := range InputKinds {
		if upper == k {
			return k
		}
	}
	return InputKind(s)
}

// Known reports whether k is one of the four supported kinds.
func (k InputKind) Known() bool {
	switch k {
	case InputTextarea, InputNumber, InputBoolean, InputRange:
		return true
	}
	return false
}

// RequiresHelper reports whether inputs of this kind need a unit or question label.
func (k InputKind) RequiresHelper() bool {
	switch k {
	case InputNumber, InputBoolean, InputRange:
		return true
	}
	return false
}

func (k InputKind) String() string { return string(k) }

// Value is the value slot of a field input. Each kind carries only the slot
// it uses; RawValue keeps all three for kinds this version does not know.
type Value interface {
	IsEmpty() bool
	clone() Value
}

type TextValue struct{ Text *string }

type NumberValue struct{ Number *float64 }

type BoolValue struct{ Bool *bool }

// RawValue holds the stored slots of an input whose kind is unrecognised.
type RawValue struct {
	String *string
	Number *float64
	Bool   *bool
}

func (v TextValue) IsEmpty() bool   { return v.Text == nil }
func (v NumberValue) IsEmpty() bool { return v.Number == nil }
func (v BoolValue) IsEmpty() bool   { return v.Bool == nil }
func (v RawValue) IsEmpty() bool    { return v.String == nil && v.Number == nil && v.Bool == nil }

func (v TextValue) clone() Value   { return TextValue{Text: clonePtr(v.Text)} }
func (v NumberValue) clone() Value { return NumberValue{Number: clonePtr(v.Number)} }
func (v BoolValue) clone() Value   { return BoolValue{Bool: clonePtr(v.Bool)} }
func (v RawValue) clone() Value {
	return RawValue{String: clonePtr(v.String), Number: clonePtr(v.Number), Bool: clonePtr(v.Bool)}
}

// EmptyValue returns the unset value slot for kind.
func EmptyValue(kind InputKind) Value {
	switch kind {
	case InputTextarea:
		return TextValue{}
	case InputNumber, InputRange:
		return NumberValue{}
	case InputBoolean:
		return BoolValue{}
	default:
		return RawValue{}
	}
}

// ValueFromSlots builds the value for kind from the three storage columns.
// Slots that do not belong to kind are ignored.
func ValueFromSlots(kind InputKind, s *string, n *float64, b *bool) Value {
	switch kind {
	case InputTextarea:
		return TextValue{Text: clonePtr(s)}
	case InputNumber, InputRange:
		return NumberValue{Number: clonePtr(n)}
	case InputBoolean:
		return BoolValue{Bool: clonePtr(b)}
	default:
		return RawValue{String: clonePtr(s), Number: clonePtr(n), Bool: clonePtr(b)}
	}
}

// Slots splits v back into the three storage columns.
func Slots(v Value) (s *string, n *float64, b *bool) {
	switch val := v.(type) {
	case TextValue:
		return clonePtr(val.Text), nil, nil
	case NumberValue:
		return nil, clonePtr(val.Number), nil
	case BoolValue:
		return nil, nil, clonePtr(val.Bool)
	case RawValue:
		return clonePtr(val.String), clonePtr(val.Number), clonePtr(val.Bool)
	}
	return nil, nil, nil
}

// CloneValue deep-copies v. A nil value stays nil.
func CloneValue(v Value) Value {
	if v == nil {
		return nil
	}
	return v.clone()
}

// IsEmptyValue treats a missing value the same as an unset slot.
func IsEmptyValue(v Value) bool {
	return v == nil || v.IsEmpty()
}

// Ptr returns a pointer to a copy of v.
func Ptr[T any](v T) *T { return &v }

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
