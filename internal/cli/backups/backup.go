package backups

import (
	"fmt"

	"github.com/julianstephens/pjournal/internal/backup"
	"github.com/julianstephens/pjournal/internal/cli"
)

func manager(ctx *cli.Context) (*backup.Manager, error) {
	mgr := ctx.Backups()
	if mgr == nil {
		return nil, fmt.Errorf("backups are only supported for SQLite databases; use pg_dump for PostgreSQL")
	}
	return mgr, nil
}

type BackupCreateCmd struct{}

func (c *BackupCreateCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	snap, err := mgr.Create()
	if err != nil {
		return fmt.Errorf("backup failed: %w", err)
	}
	ctx.Printf("✓ Backup created: %s\n", snap.Name())
	return nil
}

type BackupListCmd struct{}

func (c *BackupListCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}
	snaps, err := mgr.List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}

	if len(snaps) == 0 {
		ctx.Println("No backups found.")
		ctx.Printf("Backups are stored in: %s\n", mgr.Dir())
		return nil
	}

	ctx.Printf("Available backups (%d total, keeping most recent %d):\n\n", len(snaps), ctx.Config.Backup.Retain)
	for _, s := range snaps {
		ctx.Printf("  %s  %s  (%.1f KB)\n", s.Timestamp.Format("2006-01-02 15:04:05"), s.Name(), float64(s.Size)/1024.0)
	}
	ctx.Printf("\nBackup directory: %s\n", mgr.Dir())
	return nil
}

type BackupRestoreCmd struct {
	BackupFile string `arg:"" optional:"" help:"Path or filename of the backup to restore. Defaults to the latest."`
	Yes        bool   `help:"Skip confirmation." short:"y"`
}

func (c *BackupRestoreCmd) Run(ctx *cli.Context) error {
	mgr, err := manager(ctx)
	if err != nil {
		return err
	}

	var path string
	if c.BackupFile == "" {
		latest, ok, err := mgr.Latest()
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("no backups found in %s", mgr.Dir())
		}
		path = latest.Path
	} else if path, err = mgr.Resolve(c.BackupFile); err != nil {
		return err
	}

	if !c.Yes {
		ctx.Println("⚠️  WARNING: This will replace your current database with the backup.")
		ctx.Println("⚠️  IMPORTANT: Stop any running pjournal processes (TUI, serve) first.")
		ctx.Println("A backup of your current database will be created before restoring.")
		ctx.Printf("\nRestore from: %s\n", path)
		ok, err := ctx.Confirm("Continue?")
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Restore cancelled.")
			return nil
		}
	}

	if err := ctx.Store.Close(); err != nil {
		ctx.Printf("Warning: failed to close database connection: %v\n", err)
	}

	prev, err := mgr.Restore(path)
	if err != nil {
		return fmt.Errorf("restore failed: %w", err)
	}
	ctx.Println("✓ Database restored successfully!")
	if prev.Path != "" {
		ctx.Printf("  Previous database saved as %s\n", prev.Name())
	}
	return nil
}
