package category

import (
	"strings"

	"github.com/julianstephens/pjournal/internal/constants"
	"github.com/julianstephens/pjournal/internal/models"
)

// Mode is how a Selection matches fields
type Mode int

const (
	ModeAll Mode = iota
	ModeTag
	ModeUnassigned
)

// Selection picks which fields are shown
type Selection struct {
	Mode Mode
	Tag  string
}

var (
	All        = Selection{Mode: ModeAll}
	Unassigned = Selection{Mode: ModeUnassigned}
)

// Tag selects fields whose category is exactly t
func Tag(t string) Selection { return Selection{Mode: ModeTag, Tag: t} }

// ParseSelection maps "" and "all" to All, "unassigned" to Unassigned and
// anything else to a tag.
func ParseSelection(s string) Selection {
	switch strings.TrimSpace(s) {
	case "", constants.CategoryAll:
		return All
	case constants.CategoryNone:
		return Unassigned
	default:
		return Tag(strings.TrimSpace(s))
	}
}

func (s Selection) String() string {
	switch s.Mode {
	case ModeTag:
		return s.Tag
	case ModeUnassigned:
		return constants.CategoryNone
	default:
		return constants.CategoryAll
	}
}

// Match reports whether field f is selected
func (s Selection) Match(f models.Field) bool {
	switch s.Mode {
	case ModeTag:
		return f.Category != nil && *f.Category == s.Tag
	case ModeUnassigned:
		return f.Category == nil
	default:
		return true
	}
}

// Of returns the categories declared on entry. A nil entry has none.
func Of(entry *models.Entry) models.CategorySet {
	if entry == nil {
		return nil
	}
	return entry.Categories.Clone()
}

// Filter returns the fields matched by sel. All returns fields unchanged.
func Filter(fields []models.Field, sel Selection) []models.Field {
	if sel.Mode == ModeAll {
		return fields
	}
	out := []models.Field{}
	for _, f := range fields {
		if sel.Match(f) {
			out = append(out, f)
		}
	}
	return out
}

// Indices returns the positions in fields matched by sel
func Indices(fields []models.Field, sel Selection) []int {
	out := []int{}
	for i, f := range fields {
		if sel.Match(f) {
			out = append(out, i)
		}
	}
	return out
}

// Options lists the selections a picker should offer: all, each declared
// tag once, then unassigned.
func Options(entry *models.Entry) []Selection {
	opts := []Selection{All}
	for _, t := range Of(entry).Unique() {
		opts = append(opts, Tag(t))
	}
	return append(opts, Unassigned)
}
