// Package forms builds huh forms over journal drafts.
package forms

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/pjournal/internal/category"
	"github.com/julianstephens/pjournal/internal/models"
	"github.com/julianstephens/pjournal/internal/reconcile"
)

// binding ties one form control to one draft input. text is used by
// TEXTAREA, NUMBER and RANGE controls; boolean by BOOLEAN.
type binding struct {
	field, input int
	kind         models.InputKind
	text         string
	boolean      bool
	initialText  string
	initialBool  bool
}

func (b *binding) changed() bool {
	if b.kind == models.InputBoolean {
		return b.boolean != b.initialBool
	}
	return b.text != b.initialText
}

// EntryForm holds the values edited by an entry form until Apply writes
// them into the draft.
type EntryForm struct {
	draft    *reconcile.Draft
	bindings []*binding
}

func textOf(in models.FieldInput) string {
	switch v := in.Value.(type) {
	case models.TextValue:
		if v.Text != nil {
			return *v.Text
		}
	case models.NumberValue:
		if v.Number != nil {
			return models.FormatNumber(*v.Number)
		}
	}
	return ""
}

func validNumber(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	n, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(n) || math.IsInf(n, 0) {
		return fmt.Errorf("enter a number")
	}
	return nil
}

// NewEntryForm returns a form with one group per field matched by sel.
// Inputs of unknown kinds are left out.
func NewEntryForm(d *reconcile.Draft, sel category.Selection) (*huh.Form, *EntryForm) {
	ef := &EntryForm{draft: d}
	var groups []*huh.Group
	for _, view := range d.Fields(sel) {
		var controls []huh.Field
		for j, in := range view.Field.Inputs {
			b := &binding{field: view.Index, input: j, kind: in.Kind}
			title := in.HelperText()
			switch in.Kind {
			case models.InputTextarea:
				b.text = textOf(in)
				b.initialText = b.text
				controls = append(controls, huh.NewText().Title(title).Value(&b.text).CharLimit(510))
			case models.InputNumber, models.InputRange:
				b.text = textOf(in)
				b.initialText = b.text
				controls = append(controls, huh.NewInput().Title(title).Value(&b.text).Validate(validNumber))
			case models.InputBoolean:
				if v, ok := in.Value.(models.BoolValue); ok && v.Bool != nil {
					b.boolean = *v.Bool
				}
				b.initialBool = b.boolean
				controls = append(controls, huh.NewConfirm().Title(title).Affirmative("Yes").Negative("No").Value(&b.boolean))
			default:
				continue
			}
			ef.bindings = append(ef.bindings, b)
		}
		if len(controls) == 0 {
			continue
		}
		groups = append(groups, huh.NewGroup(controls...).Title(view.Field.Name).Description(view.Field.CategoryName()))
	}
	if len(groups) == 0 {
		groups = append(groups, huh.NewGroup(huh.NewNote().Title("No fields match this category")))
	}
	return huh.NewForm(groups...).WithTheme(huh.ThemeDracula()), ef
}

// Apply writes every changed control back into the draft.
func (ef *EntryForm) Apply() error {
	for _, b := range ef.bindings {
		if !b.changed() {
			continue
		}
		var err error
		if b.kind == models.InputBoolean {
			err = ef.draft.SetBool(b.field, b.input, b.boolean)
		} else {
			err = ef.draft.SetFromString(b.field, b.input, b.text)
		}
		if err != nil {
			return err
		}
	}
	return nil
}
