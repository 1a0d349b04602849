package settings

import (
	"context"
	"fmt"

	"github.com/julianstephens/pjournal/internal/cli"
	"github.com/julianstephens/pjournal/internal/journal"
	"github.com/julianstephens/pjournal/internal/models"
)

type SettingsCmd struct {
	List bool `help:"List current settings."`

	Bodyweight *float64 `help:"Bodyweight in your unit system."`
	Units      *string  `help:"Unit system: Metric or Imperial."`
}

func (c *SettingsCmd) Run(ctx *cli.Context) error {
	bg := context.Background()
	if c.List || (c.Bodyweight == nil && c.Units == nil) {
		settings, err := ctx.Journal.Settings(bg)
		if err != nil {
			return fmt.Errorf("failed to get settings: %w", err)
		}
		printSettings(ctx, settings)
		return nil
	}

	settings, err := ctx.Journal.UpdateSettings(bg, journal.SettingsUpdate{
		Bodyweight: c.Bodyweight,
		Units:      c.Units,
	})
	if err != nil {
		return err
	}
	ctx.Println("✓ Settings updated")
	printSettings(ctx, settings)
	return nil
}

func printSettings(ctx *cli.Context, s models.UserSettings) {
	bw := "not set"
	if s.Bodyweight != nil {
		bw = models.FormatNumber(*s.Bodyweight)
	}
	ctx.Println("Current Settings:")
	ctx.Printf("  Owner:      %s\n", s.OwnerID)
	ctx.Printf("  Units:      %s\n", s.Units)
	ctx.Printf("  Bodyweight: %s\n", bw)
}

type AccountDeleteCmd struct {
	Yes bool `help:"Confirm deletion of every subject, entry and setting for this owner."`
}

func (c *AccountDeleteCmd) Run(ctx *cli.Context) error {
	if !c.Yes {
		return fmt.Errorf("refusing to delete account data without --yes")
	}
	if err := ctx.Journal.DeleteAccount(context.Background()); err != nil {
		return err
	}
	ctx.Printf("✓ Deleted all journal data for %s\n", ctx.Journal.Owner())
	return nil
}
