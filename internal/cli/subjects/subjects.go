package subjects

import (
	"context"
	"fmt"

	"github.com/julianstephens/pjournal/internal/cli"
	"github.com/julianstephens/pjournal/internal/constants"
)

type SubjectAddCmd struct {
	Name     string `arg:"" help:"Subject name."`
	Template string `help:"Starting template: journal or weight training." default:"journal"`
}

func (c *SubjectAddCmd) Run(ctx *cli.Context) error {
	kind, ok := constants.ParseTemplateKind(c.Template)
	if !ok {
		return fmt.Errorf("unknown template kind %q", c.Template)
	}
	subject, err := ctx.Journal.AddSubject(context.Background(), c.Name, kind)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Created subject %s\n", subject.Name)
	ctx.PrintTemplate(subject)
	return nil
}

type SubjectListCmd struct {
	ShowIDs bool `help:"Show subject IDs." name:"show-ids"`
}

func (c *SubjectListCmd) Run(ctx *cli.Context) error {
	subjects, err := ctx.Journal.Subjects(context.Background())
	if err != nil {
		return fmt.Errorf("failed to list subjects: %w", err)
	}
	if len(subjects) == 0 {
		ctx.Println("No subjects found. Add one with 'pjournal subject add NAME'.")
		return nil
	}
	ctx.Println("Subjects:")
	for _, s := range subjects {
		if c.ShowIDs {
			ctx.Printf("  %s (ID: %s)\n", s.Name, s.ID)
		} else {
			ctx.Printf("  %s\n", s.Name)
		}
	}
	return nil
}

type SubjectShowCmd struct {
	Subject string `arg:"" help:"Subject name or ID."`
}

func (c *SubjectShowCmd) Run(ctx *cli.Context) error {
	subject, err := ctx.Journal.Subject(context.Background(), c.Subject)
	if err != nil {
		return err
	}
	ctx.PrintTemplate(subject)
	return nil
}

type SubjectRenameCmd struct {
	Subject string `arg:"" help:"Subject name or ID."`
	Name    string `arg:"" help:"New name."`
}

func (c *SubjectRenameCmd) Run(ctx *cli.Context) error {
	subject, err := ctx.Journal.RenameSubject(context.Background(), c.Subject, c.Name)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Renamed subject to %s\n", subject.Name)
	return nil
}

type SubjectDeleteCmd struct {
	Subject string `arg:"" help:"Subject name or ID."`
	Yes     bool   `help:"Skip confirmation." short:"y"`
}

func (c *SubjectDeleteCmd) Run(ctx *cli.Context) error {
	if !c.Yes {
		ok, err := ctx.Confirm(fmt.Sprintf("Delete %s and all of its entries?", c.Subject))
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}
	subject, err := ctx.Journal.DeleteSubject(context.Background(), c.Subject)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Deleted subject %s\n", subject.Name)
	return nil
}
