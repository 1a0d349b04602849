package journal

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/julianstephens/pjournal/internal/errors"
	"github.com/julianstephens/pjournal/internal/models"
)

// TemplateDoc is the portable YAML form of a subject's template. Ids are
// never exported; importing always creates a new subject.
type TemplateDoc struct {
	Name       string     `yaml:"name"`
	Categories []string   `yaml:"categories,omitempty"`
	Fields     []FieldDoc `yaml:"fields"`
}

type FieldDoc struct {
	Name     string     `yaml:"name"`
	Category string     `yaml:"category,omitempty"`
	Inputs   []InputDoc `yaml:"inputs"`
}

type InputDoc struct {
	Kind   string   `yaml:"kind"`
	Helper string   `yaml:"helper,omitempty"`
	Number *float64 `yaml:"number,omitempty"`
}

// DocFromSubject converts a subject's template to its portable form.
func DocFromSubject(subject models.Subject) TemplateDoc {
	doc := TemplateDoc{Name: subject.Name}
	if subject.Template == nil {
		return doc
	}
	doc.Categories = append(doc.Categories, subject.Template.Categories...)
	for _, f := range subject.Template.Fields {
		fd := FieldDoc{Name: f.Name, Category: f.CategoryName()}
		for _, in := range f.Inputs {
			id := InputDoc{Kind: string(in.Kind), Helper: in.HelperText()}
			if nv, ok := in.Value.(models.NumberValue); ok && nv.Number != nil {
				id.Number = models.Ptr(*nv.Number)
			}
			fd.Inputs = append(fd.Inputs, id)
		}
		doc.Fields = append(doc.Fields, fd)
	}
	return doc
}

// Subject converts the document back to an unsaved subject.
func (d TemplateDoc) Subject() models.Subject {
	tmpl := &models.Entry{Template: true, Categories: models.CategorySet(append([]string(nil), d.Categories...))}
	for _, fd := range d.Fields {
		f := models.Field{Name: fd.Name}
		if fd.Category != "" {
			f.Category = models.Ptr(fd.Category)
		}
		for _, id := range fd.Inputs {
			var helper *string
			if id.Helper != "" {
				helper = models.Ptr(id.Helper)
			}
			in := models.NewInput(models.ParseInputKind(id.Kind), helper)
			if id.Number != nil {
				if _, ok := in.Value.(models.NumberValue); ok {
					in.Value = models.NumberValue{Number: models.Ptr(*id.Number)}
				}
			}
			f.Inputs = append(f.Inputs, in)
		}
		tmpl.Fields = append(tmpl.Fields, f)
	}
	return models.Subject{Name: d.Name, Template: tmpl}
}

// Export renders the subject named by ref as YAML.
func (s *Service) Export(ctx context.Context, ref string) ([]byte, error) {
	subject, err := s.Subject(ctx, ref)
	if err != nil {
		return nil, err
	}
	out, err := yaml.Marshal(DocFromSubject(subject))
	if err != nil {
		return nil, fmt.Errorf("encode template: %w", err)
	}
	return out, nil
}

// Import creates a subject from a YAML template. name, when set, replaces
// the name stored in the document.
func (s *Service) Import(ctx context.Context, data []byte, name string) (models.Subject, error) {
	var doc TemplateDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return models.Subject{}, errors.Wrap(errors.KindInvalid, err, "parse template")
	}
	if name != "" {
		doc.Name = name
	}
	ed := s.NewEditor()
	ed.Load(doc.Subject())
	return ed.Save(ctx, s)
}
