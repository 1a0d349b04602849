package cli

import (
	"fmt"
	"strings"

	"github.com/julianstephens/pjournal/internal/constants"
	"github.com/julianstephens/pjournal/internal/models"
)

// PrintTemplate lists a subject's template fields with their indices, which
// the template commands take as arguments.
func (c *Context) PrintTemplate(s models.Subject) {
	c.Printf("%s (ID: %s)\n", s.Name, s.ID)
	if s.Template == nil {
		c.Println("  (no template)")
		return
	}
	if len(s.Template.Categories) > 0 {
		c.Printf("  Categories: %s\n", strings.Join(s.Template.Categories, ", "))
	}
	for i, f := range s.Template.Fields {
		cat := ""
		if f.Category != nil {
			cat = fmt.Sprintf(" [%s]", *f.Category)
		}
		c.Printf("  %d. %s%s\n", i+1, f.Name, cat)
		for j, in := range f.Inputs {
			helper := in.HelperText()
			if helper == "" {
				helper = "-"
			}
			c.Printf("       %d.%d %-8s %s\n", i+1, j+1, in.Kind, helper)
		}
	}
}

// PrintEntry shows an entry the way the entry reader does.
func (c *Context) PrintEntry(e models.Entry) {
	c.Printf("%s  %s\n", e.CreatedAt.Local().Format(constants.DateFormat), e.ID)
	for _, f := range e.Fields {
		var values []string
		for _, in := range f.Inputs {
			if d := in.Display(); d != "" {
				values = append(values, d)
			}
		}
		c.Printf("  %s: %s\n", f.Name, strings.Join(values, ", "))
	}
}
