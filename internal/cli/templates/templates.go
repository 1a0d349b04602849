// Package templates holds the commands that edit a subject's template.
// Fields and inputs are addressed by 1-based position as printed by
// 'pjournal subject show'; a field may also be named.
package templates

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/julianstephens/pjournal/internal/cli"
	"github.com/julianstephens/pjournal/internal/constants"
	"github.com/julianstephens/pjournal/internal/editor"
	"github.com/julianstephens/pjournal/internal/models"
)

// resolveField turns a 1-based position or a field name into an index.
// Names match the first field with that name, ignoring case.
func resolveField(ed *editor.Editor, ref string) (int, error) {
	fields := ed.Fields()
	if n, err := strconv.Atoi(ref); err == nil {
		if n < 1 || n > len(fields) {
			return 0, fmt.Errorf("field %d does not exist (template has %d)", n, len(fields))
		}
		return n - 1, nil
	}
	for i, f := range fields {
		if strings.EqualFold(f.Name, ref) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("no field named %q", ref)
}

func edit(ctx *cli.Context, subject string, fn func(*editor.Editor) error) error {
	saved, err := ctx.Journal.EditTemplate(context.Background(), subject, fn)
	if err != nil {
		return err
	}
	ctx.PrintTemplate(saved)
	return nil
}

func parseKind(s string) (models.InputKind, error) {
	k := models.ParseInputKind(s)
	if !k.Known() {
		return "", fmt.Errorf("unknown input kind %q (want one of %v)", s, models.InputKinds)
	}
	return k, nil
}

type AddFieldCmd struct {
	Subject  string `arg:"" help:"Subject name or ID."`
	Kind     string `help:"Preset: journal or weight training." default:"journal"`
	Name     string `help:"Field name. Defaults to the preset's name."`
	Category string `help:"Category to assign; created when missing."`
}

func (c *AddFieldCmd) Run(ctx *cli.Context) error {
	kind, ok := constants.ParseTemplateKind(c.Kind)
	if !ok {
		return fmt.Errorf("unknown template kind %q", c.Kind)
	}
	return edit(ctx, c.Subject, func(ed *editor.Editor) error {
		i := ed.AddField(kind)
		if c.Name != "" {
			if err := ed.RenameField(i, c.Name); err != nil {
				return err
			}
		}
		if c.Category != "" {
			if err := ed.CreateCategory(c.Category); err != nil {
				return err
			}
			return ed.SetCategory(i, strings.TrimSpace(c.Category))
		}
		return nil
	})
}

type RemoveFieldCmd struct {
	Subject string `arg:"" help:"Subject name or ID."`
	Field   string `arg:"" help:"Field position or name."`
}

func (c *RemoveFieldCmd) Run(ctx *cli.Context) error {
	return edit(ctx, c.Subject, func(ed *editor.Editor) error {
		i, err := resolveField(ed, c.Field)
		if err != nil {
			return err
		}
		return ed.RemoveField(i)
	})
}

type CloneFieldCmd struct {
	Subject string `arg:"" help:"Subject name or ID."`
	Field   string `arg:"" help:"Field position or name."`
	Name    string `help:"Name for the copy."`
}

func (c *CloneFieldCmd) Run(ctx *cli.Context) error {
	return edit(ctx, c.Subject, func(ed *editor.Editor) error {
		i, err := resolveField(ed, c.Field)
		if err != nil {
			return err
		}
		j, err := ed.CloneField(i)
		if err != nil {
			return err
		}
		if c.Name != "" {
			return ed.RenameField(j, c.Name)
		}
		return nil
	})
}

type RenameFieldCmd struct {
	Subject string `arg:"" help:"Subject name or ID."`
	Field   string `arg:"" help:"Field position or name."`
	Name    string `arg:"" help:"New field name."`
}

func (c *RenameFieldCmd) Run(ctx *cli.Context) error {
	return edit(ctx, c.Subject, func(ed *editor.Editor) error {
		i, err := resolveField(ed, c.Field)
		if err != nil {
			return err
		}
		return ed.RenameField(i, c.Name)
	})
}

type MoveFieldCmd struct {
	Subject string `arg:"" help:"Subject name or ID."`
	Field   string `arg:"" help:"Field position or name."`
	To      int    `arg:"" help:"New 1-based position."`
}

func (c *MoveFieldCmd) Run(ctx *cli.Context) error {
	return edit(ctx, c.Subject, func(ed *editor.Editor) error {
		i, err := resolveField(ed, c.Field)
		if err != nil {
			return err
		}
		return ed.MoveField(i, c.To-1)
	})
}

type AddInputCmd struct {
	Subject string `arg:"" help:"Subject name or ID."`
	Field   string `arg:"" help:"Field position or name."`
	Kind    string `help:"Input kind: TEXTAREA, NUMBER, BOOLEAN or RANGE." default:"NUMBER"`
	Helper  string `help:"Unit or question label."`
}

func (c *AddInputCmd) Run(ctx *cli.Context) error {
	kind, err := parseKind(c.Kind)
	if err != nil {
		return err
	}
	return edit(ctx, c.Subject, func(ed *editor.Editor) error {
		i, err := resolveField(ed, c.Field)
		if err != nil {
			return err
		}
		j, err := ed.AddFieldInput(i)
		if err != nil {
			return err
		}
		if err := ed.SetInputKind(i, j, kind); err != nil {
			return err
		}
		return ed.SetInputHelper(i, j, c.Helper)
	})
}

type RemoveInputCmd struct {
	Subject string `arg:"" help:"Subject name or ID."`
	Field   string `arg:"" help:"Field position or name."`
	Input   int    `arg:"" help:"1-based input position."`
}

func (c *RemoveInputCmd) Run(ctx *cli.Context) error {
	return edit(ctx, c.Subject, func(ed *editor.Editor) error {
		i, err := resolveField(ed, c.Field)
		if err != nil {
			return err
		}
		return ed.RemoveFieldInput(i, c.Input-1)
	})
}

type SetInputCmd struct {
	Subject string  `arg:"" help:"Subject name or ID."`
	Field   string  `arg:"" help:"Field position or name."`
	Input   int     `arg:"" help:"1-based input position."`
	Kind    string  `help:"New input kind."`
	Helper  *string `help:"New unit or question label."`
}

func (c *SetInputCmd) Run(ctx *cli.Context) error {
	if c.Kind == "" && c.Helper == nil {
		return fmt.Errorf("nothing to change: pass --kind and/or --helper")
	}
	return edit(ctx, c.Subject, func(ed *editor.Editor) error {
		i, err := resolveField(ed, c.Field)
		if err != nil {
			return err
		}
		if c.Kind != "" {
			kind, err := parseKind(c.Kind)
			if err != nil {
				return err
			}
			if err := ed.SetInputKind(i, c.Input-1, kind); err != nil {
				return err
			}
		}
		if c.Helper != nil {
			return ed.SetInputHelper(i, c.Input-1, *c.Helper)
		}
		return nil
	})
}

type CategoryCmd struct {
	Subject string `arg:"" help:"Subject name or ID."`
	Name    string `arg:"" help:"Category to declare."`
}

func (c *CategoryCmd) Run(ctx *cli.Context) error {
	return edit(ctx, c.Subject, func(ed *editor.Editor) error {
		return ed.CreateCategory(c.Name)
	})
}

type SetCategoryCmd struct {
	Subject  string `arg:"" help:"Subject name or ID."`
	Field    string `arg:"" help:"Field position or name."`
	Category string `arg:"" optional:"" help:"Declared category. Omit to clear."`
}

func (c *SetCategoryCmd) Run(ctx *cli.Context) error {
	return edit(ctx, c.Subject, func(ed *editor.Editor) error {
		i, err := resolveField(ed, c.Field)
		if err != nil {
			return err
		}
		return ed.SetCategory(i, c.Category)
	})
}

type ExportCmd struct {
	Subject string `arg:"" help:"Subject name or ID."`
	Out     string `help:"Write to this file instead of stdout." type:"path"`
}

func (c *ExportCmd) Run(ctx *cli.Context) error {
	data, err := ctx.Journal.Export(context.Background(), c.Subject)
	if err != nil {
		return err
	}
	if c.Out == "" {
		ctx.Printf("%s", data)
		return nil
	}
	if err := os.WriteFile(c.Out, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", c.Out, err)
	}
	ctx.Printf("✓ Exported template to %s\n", c.Out)
	return nil
}

type ImportCmd struct {
	File string `arg:"" help:"YAML template file." type:"existingfile"`
	Name string `help:"Name for the new subject. Defaults to the name in the file."`
}

func (c *ImportCmd) Run(ctx *cli.Context) error {
	data, err := os.ReadFile(c.File)
	if err != nil {
		return err
	}
	subject, err := ctx.Journal.Import(context.Background(), data, c.Name)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Imported subject %s\n", subject.Name)
	ctx.PrintTemplate(subject)
	return nil
}
