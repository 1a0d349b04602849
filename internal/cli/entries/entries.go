package entries

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/julianstephens/pjournal/internal/category"
	"github.com/julianstephens/pjournal/internal/chart"
	"github.com/julianstephens/pjournal/internal/cli"
	"github.com/julianstephens/pjournal/internal/reconcile"
	"github.com/julianstephens/pjournal/internal/tui/forms"
)

type EntryNewCmd struct {
	Subject     string   `arg:"" help:"Subject name or ID."`
	From        string   `help:"Start from the values of this entry ID."`
	Category    string   `help:"Only show fields in this category (interactive mode)."`
	Clone       []string `sep:"none" help:"Clone a field (position or name) before setting values. Repeatable."`
	Set         []string `sep:"none" help:"Set FIELD.INPUT=VALUE, where FIELD is a position or name and INPUT a 1-based position. Repeatable."`
	Interactive bool     `help:"Fill in the entry with a form." short:"i"`
}

func (c *EntryNewCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	subject, err := ctx.Journal.Subject(bg, c.Subject)
	if err != nil {
		return err
	}
	draft, err := ctx.Journal.NewDraft(bg, subject, c.From)
	if err != nil {
		return err
	}

	for _, ref := range c.Clone {
		i, err := resolveDraftField(draft, ref)
		if err != nil {
			return err
		}
		if _, err := draft.CloneField(i); err != nil {
			return err
		}
	}
	for _, assignment := range c.Set {
		if err := applySet(draft, assignment); err != nil {
			return err
		}
	}

	if c.Interactive {
		form, ef := forms.NewEntryForm(draft, category.ParseSelection(c.Category))
		if err := form.Run(); err != nil {
			return err
		}
		if err := ef.Apply(); err != nil {
			return err
		}
	}

	entry, err := ctx.Journal.SubmitEntry(bg, subject.ID, draft)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Saved entry for %s\n", subject.Name)
	ctx.PrintEntry(entry)
	return nil
}

// resolveDraftField turns a 1-based position or a field name into a draft index.
func resolveDraftField(d *reconcile.Draft, ref string) (int, error) {
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > d.Len() {
			return 0, fmt.Errorf("field %d does not exist (entry has %d)", n, d.Len())
		}
		return n - 1, nil
	}
	if i, ok := d.FindField(ref); ok {
		return i, nil
	}
	return 0, fmt.Errorf("no field named %q", ref)
}

// applySet parses FIELD.INPUT=VALUE. The last dot before '=' separates
// field from input so field names may contain dots.
func applySet(d *reconcile.Draft, assignment string) error {
	target, value, ok := strings.Cut(assignment, "=")
	if !ok {
		return fmt.Errorf("invalid --set %q: want FIELD.INPUT=VALUE", assignment)
	}
	dot := strings.LastIndex(target, ".")
	if dot <= 0 {
		return fmt.Errorf("invalid --set %q: want FIELD.INPUT=VALUE", assignment)
	}
	i, err := resolveDraftField(d, target[:dot])
	if err != nil {
		return err
	}
	j, err := strconv.Atoi(target[dot+1:])
	if err != nil {
		return fmt.Errorf("invalid input position in %q", assignment)
	}
	return d.SetFromString(i, j-1, value)
}

type EntryListCmd struct {
	Subject string `arg:"" help:"Subject name or ID."`
	Limit   int    `help:"Show at most this many entries (0 for all)." default:"0"`
}

func (c *EntryListCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	subject, err := ctx.Journal.Subject(bg, c.Subject)
	if err != nil {
		return err
	}
	entries, err := ctx.Journal.Entries(bg, subject.ID)
	if err != nil {
		return fmt.Errorf("failed to list entries: %w", err)
	}
	if len(entries) == 0 {
		ctx.Printf("No entries for %s yet.\n", subject.Name)
		return nil
	}
	if c.Limit > 0 && len(entries) > c.Limit {
		entries = entries[:c.Limit]
	}
	for _, e := range entries {
		ctx.PrintEntry(e)
		ctx.Println()
	}
	return nil
}

type EntryShowCmd struct {
	Subject string `arg:"" help:"Subject name or ID."`
	ID      string `arg:"" help:"Entry ID."`
}

func (c *EntryShowCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	subject, err := ctx.Journal.Subject(bg, c.Subject)
	if err != nil {
		return err
	}
	entry, err := ctx.Journal.Entry(bg, subject.ID, c.ID)
	if err != nil {
		return err
	}
	ctx.PrintEntry(entry)
	return nil
}

type ChartCmd struct {
	Subject string `arg:"" help:"Subject name or ID."`
	Field   string `arg:"" optional:"" help:"Field to chart. Omit to list chartable fields."`
	Width   int    `help:"Chart width in columns. Defaults to chart.width."`
	Height  int    `help:"Chart height in rows. Defaults to chart.height."`
}

func (c *ChartCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	subject, err := ctx.Journal.Subject(bg, c.Subject)
	if err != nil {
		return err
	}
	if c.Field == "" {
		names, err := ctx.Journal.ChartFields(bg, subject.ID)
		if err != nil {
			return err
		}
		if len(names) == 0 {
			ctx.Printf("No fields of %s have been logged yet.\n", subject.Name)
			return nil
		}
		ctx.Println("Chartable fields:")
		for _, n := range names {
			ctx.Printf("  %s\n", n)
		}
		return nil
	}

	points, err := ctx.Journal.Chart(bg, subject.ID, c.Field)
	if err != nil {
		return err
	}
	width, height := c.Width, c.Height
	if width <= 0 {
		width = ctx.Config.Chart.Width
	}
	if height <= 0 {
		height = ctx.Config.Chart.Height
	}
	ctx.Printf("%s / %s\n", subject.Name, c.Field)
	ctx.Println(chart.Render(points, width, height))
	return nil
}
