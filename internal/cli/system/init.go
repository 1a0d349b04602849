package system

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/julianstephens/pjournal/internal/cli"
	"github.com/julianstephens/pjournal/internal/models"
	"github.com/julianstephens/pjournal/internal/storage"
	"github.com/julianstephens/pjournal/internal/storage/postgres"
	"github.com/julianstephens/pjournal/internal/storage/sqlite"
)

type InitCmd struct {
	Force  bool   `help:"Force reset by deleting existing database before initialization."`
	Source string `help:"Source database path or connection string to copy the owner's journal from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		if _, ok := ctx.Store.(*sqlite.Store); !ok {
			return fmt.Errorf("--force is only supported for SQLite databases")
		}
		dbPath := ctx.Store.GetConfigPath()
		if c.Source != "" {
			absDB, err := filepath.Abs(dbPath)
			if err == nil {
				dbPath = absDB
			}
			absSource, err := filepath.Abs(c.Source)
			if err == nil && absSource == dbPath {
				return fmt.Errorf("cannot use --force when source and destination are the same: %s", dbPath)
			}
		}
		if _, err := os.Stat(dbPath); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("failed to close existing database: %w", err)
			}
			if err := os.Remove(dbPath); err != nil {
				return fmt.Errorf("failed to delete existing database: %w", err)
			}
			ctx.Printf("Deleted existing database at: %s\n", dbPath)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("failed to access existing database: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	ctx.Printf("Initialized pjournal storage at: %s\n", ctx.Store.GetConfigPath())

	if c.Source != "" {
		ctx.Printf("Copying journal from: %s\n", c.Source)
		src, err := openSource(c.Source)
		if err != nil {
			return err
		}
		if err := src.Load(); err != nil {
			return fmt.Errorf("failed to load source database: %w", err)
		}
		defer src.Close()

		if err := CopyOwner(context.Background(), ctx, src, ctx.Store, ctx.Journal.Owner()); err != nil {
			return fmt.Errorf("copy failed: %w", err)
		}
		ctx.Println("Copy completed successfully!")
	}
	return nil
}

func openSource(source string) (storage.Provider, error) {
	if postgres.IsConnString(source) {
		if valid, err := postgres.ValidateConnString(source); !valid {
			return nil, fmt.Errorf("invalid source connection string: %w", err)
		}
		return postgres.New(source), nil
	}
	return sqlite.NewStore(source), nil
}

// CopyOwner copies ownerID's settings, subjects and entries from src to
// dst. Rows get new ids in dst and entries are written oldest first so
// they list in the same order.
func CopyOwner(ctx context.Context, out *cli.Context, src, dst storage.Provider, ownerID string) error {
	settings, err := src.GetSettings(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("failed to get settings from source: %w", err)
	}
	settings.OwnerID = ownerID
	if err := dst.SaveSettings(ctx, settings); err != nil {
		return fmt.Errorf("failed to save settings to destination: %w", err)
	}

	summaries, err := src.ListSubjects(ctx, ownerID)
	if err != nil {
		return fmt.Errorf("failed to list subjects from source: %w", err)
	}
	entryCount := 0
	for _, sum := range summaries {
		subject, err := src.GetSubjectWithTemplate(ctx, ownerID, sum.ID)
		if err != nil {
			return err
		}
		if subject.Template == nil {
			return fmt.Errorf("subject %s has no template", subject.Name)
		}
		created, err := dst.CreateSubject(ctx, ownerID, subject.Name, stripIDs(*subject.Template))
		if err != nil {
			return fmt.Errorf("failed to create subject %s: %w", subject.Name, err)
		}

		entries, err := src.ListEntryInstances(ctx, ownerID, subject.ID)
		if err != nil {
			return err
		}
		for i := len(entries) - 1; i >= 0; i-- {
			if _, err := dst.CreateEntryInstance(ctx, ownerID, created.ID, stripIDs(entries[i])); err != nil {
				return fmt.Errorf("failed to copy entry %s: %w", entries[i].ID, err)
			}
		}
		entryCount += len(entries)
	}
	out.Printf("  Copied %d subjects and %d entries\n", len(summaries), entryCount)
	return nil
}

func stripIDs(e models.Entry) models.Entry {
	e = e.Clone()
	e.ID = ""
	e.SubjectID = ""
	for i := range e.Fields {
		e.Fields[i].ID = ""
		e.Fields[i].EntryID = ""
		for j := range e.Fields[i].Inputs {
			e.Fields[i].Inputs[j].ID = ""
			e.Fields[i].Inputs[j].FieldID = ""
		}
	}
	return e
}
