package validation

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/julianstephens/pjournal/internal/constants"
	"github.com/julianstephens/pjournal/internal/errors"
	"github.com/julianstephens/pjournal/internal/models"
)

// IssueType identifies the rule an Issue violates
type IssueType string

const (
	IssueTooSmall         IssueType = "too_small"
	IssueTooBig           IssueType = "too_big"
	IssueHelperRequired   IssueType = "helper_required"
	IssueUnknownInputType IssueType = "unknown_input_type"
	IssueUnknownCategory  IssueType = "unknown_category"
	IssueMissingTemplate  IssueType = "missing_template"
	IssueNoFields         IssueType = "no_fields"
	IssueNotFinite        IssueType = "not_finite"
)

// Issue is one path-scoped problem, e.g. template.fields[2].inputs[0].helper
type Issue = errors.Issue

// Result contains every issue found in a single pass
type Result struct {
	Issues []Issue
}

// Valid returns true if no issues were found
func (r *Result) Valid() bool {
	return len(r.Issues) == 0
}

// Err returns nil for a valid result, otherwise a validation error carrying the issues
func (r *Result) Err() error {
	if r.Valid() {
		return nil
	}
	return errors.Validation(r.Issues)
}

// At returns the issues reported for path
func (r *Result) At(path string) []Issue {
	var out []Issue
	for _, issue := range r.Issues {
		if issue.Path == path {
			out = append(out, issue)
		}
	}
	return out
}

// FormatReport returns a human-readable report of all issues
func (r *Result) FormatReport() string {
	if r.Valid() {
		return "No issues detected."
	}

	var b strings.Builder
	b.WriteString("Issues detected:\n")
	for _, issue := range r.Issues {
		fmt.Fprintf(&b, "- %s\n", issue.String())
	}
	return b.String()
}

func (r *Result) add(path string, typ IssueType, format string, args ...interface{}) {
	r.Issues = append(r.Issues, Issue{Path: path, Type: string(typ), Message: fmt.Sprintf(format, args...)})
}

// Options tunes the limits the validator applies
type Options struct {
	// LegacyFieldNames accepts field names up to 50 characters, as older
	// templates were saved with.
	LegacyFieldNames bool
}

// Validator checks subjects and entries before they are persisted
type Validator struct {
	opts Options
}

// New creates a new Validator
func New(opts Options) *Validator {
	return &Validator{opts: opts}
}

// ValidateSubject validates with the canonical limits
func ValidateSubject(subject models.Subject) Result {
	return New(Options{}).ValidateSubject(subject)
}

// ValidateEntry validates with the canonical limits
func ValidateEntry(entry models.Entry) Result {
	return New(Options{}).ValidateEntry(entry)
}

// ValidateSubject checks the subject name and its template. All issues are
// collected; nothing stops at the first failure.
func (v *Validator) ValidateSubject(subject models.Subject) Result {
	return v.ValidateSubjectChange(subject, nil)
}

// ValidateSubjectChange validates subject as an edit of baseline. A saved
// input whose kind is unrecognized passes as long as it still has the kind
// baseline stored for it.
func (v *Validator) ValidateSubjectChange(subject models.Subject, baseline *models.Subject) Result {
	var r Result

	name := strings.TrimSpace(subject.Name)
	switch n := utf8.RuneCountInString(subject.Name); {
	case name == "":
		r.add("name", IssueTooSmall, "Subject name is required")
	case n > constants.SubjectNameMax:
		r.add("name", IssueTooBig, "Subject name must be at most %d characters", constants.SubjectNameMax)
	}

	if subject.Template == nil {
		r.add("template", IssueMissingTemplate, "Template is required")
		return r
	}
	if len(subject.Template.Fields) == 0 {
		r.add("template.fields", IssueNoFields, "Template must have at least one field")
	}
	v.checkFields(&r, "template", *subject.Template, legacyKinds(baseline))
	return r
}

func legacyKinds(baseline *models.Subject) map[string]models.InputKind {
	if baseline == nil || baseline.Template == nil {
		return nil
	}
	kinds := map[string]models.InputKind{}
	for _, f := range baseline.Template.Fields {
		for _, in := range f.Inputs {
			if in.ID != "" && !in.Kind.Known() {
				kinds[in.ID] = in.Kind
			}
		}
	}
	return kinds
}

// ValidateEntry applies the field, input and value rules to an instance entry
func (v *Validator) ValidateEntry(entry models.Entry) Result {
	var r Result
	v.checkFields(&r, "", entry, nil)
	return r
}

func (v *Validator) checkFields(r *Result, prefix string, entry models.Entry, legacy map[string]models.InputKind) {
	maxName := constants.FieldNameMax
	if v.opts.LegacyFieldNames {
		maxName = constants.LegacyFieldNameMax
	}

	for i, field := range entry.Fields {
		fp := fmt.Sprintf("fields[%d]", i)
		if prefix != "" {
			fp = prefix + "." + fp
		}

		switch n := utf8.RuneCountInString(field.Name); {
		case strings.TrimSpace(field.Name) == "":
			r.add(fp+".name", IssueTooSmall, "Field name is required")
		case n > maxName:
			r.add(fp+".name", IssueTooBig, "Field name must be at most %d characters", maxName)
		}

		if field.Category != nil && *field.Category != "" && !entry.Categories.Contains(*field.Category) {
			r.add(fp+".category", IssueUnknownCategory, "Category %q is not defined on this entry", *field.Category)
		}

		for j, input := range field.Inputs {
			checkInput(r, fmt.Sprintf("%s.inputs[%d]", fp, j), input, legacy)
		}
	}
}

func checkInput(r *Result, path string, input models.FieldInput, legacy map[string]models.InputKind) {
	if !input.Kind.Known() {
		if k, ok := legacy[input.ID]; !ok || input.ID == "" || k != input.Kind {
			r.add(path+".kind", IssueUnknownInputType, "Unknown input type %q", string(input.Kind))
		}
		return
	}

	helper := input.HelperText()
	if input.Kind.RequiresHelper() && strings.TrimSpace(helper) == "" {
		r.add(path+".helper", IssueHelperRequired, "Label is required for `%s` input type", input.Kind)
	} else if utf8.RuneCountInString(helper) > constants.InputHelperMax {
		r.add(path+".helper", IssueTooBig, "Label must be at most %d characters", constants.InputHelperMax)
	}

	if nv, ok := input.Value.(models.NumberValue); ok && nv.Number != nil {
		if n := *nv.Number; math.IsNaN(n) || math.IsInf(n, 0) {
			r.add(path+".value", IssueNotFinite, "Number must be finite")
		}
	}

	if tv, ok := input.Value.(models.TextValue); ok && tv.Text != nil {
		if utf8.RuneCountInString(*tv.Text) > constants.ValueStringMax {
			r.add(path+".value", IssueTooBig, "Text must be at most %d characters", constants.ValueStringMax)
		}
	}
}
