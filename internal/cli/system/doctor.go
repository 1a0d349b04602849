package system

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/julianstephens/pjournal/internal/cli"
	"github.com/julianstephens/pjournal/internal/logger"
	"github.com/julianstephens/pjournal/internal/storage"
	"github.com/julianstephens/pjournal/internal/validation"
)

type DoctorCmd struct{}

type check struct {
	name string
	// needsDB checks are skipped when the database is unreachable.
	needsDB bool
	// warnOnly failures do not fail the command.
	warnOnly bool
	run      func(context.Context, *cli.Context) error
}

var checks = []check{
	{name: "Database reachable", run: checkDBReachable},
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Backups present", warnOnly: true, run: checkBackupsPresent},
	{name: "Template validation", needsDB: true, run: checkTemplates},
	{name: "Entry integrity", needsDB: true, run: checkEntries},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "Log file", warnOnly: true, run: checkLogFile},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	bg := context.Background()
	hasError := false
	dbReachable := true
	for _, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}
		err := c.run(bg, ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
		case c.warnOnly:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
			if c.name == "Database reachable" {
				dbReachable = false
			}
		}
	}

	ctx.Println()
	if hasError {
		return fmt.Errorf("one or more health checks failed")
	}
	ctx.Println("All checks passed.")
	return nil
}

func checkDBReachable(ctx context.Context, c *cli.Context) error {
	if err := c.Store.Load(); err != nil {
		return err
	}
	_, err := c.Store.ListSubjects(ctx, c.Journal.Owner())
	return err
}

func checkSchemaVersion(ctx context.Context, c *cli.Context) error {
	m, ok := c.Store.(storage.Migrator)
	if !ok {
		return nil
	}
	current, latest, err := m.SchemaVersion(ctx)
	if err != nil {
		return err
	}
	switch {
	case current > latest:
		return fmt.Errorf("database schema version %d is newer than this binary supports (%d)", current, latest)
	case current < latest:
		return fmt.Errorf("database schema version %d is behind %d, run 'pjournal migrate'", current, latest)
	}
	return nil
}

func checkBackupsPresent(_ context.Context, c *cli.Context) error {
	mgr := c.Backups()
	if mgr == nil {
		return nil
	}
	snaps, err := mgr.List()
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		return fmt.Errorf("no backups found in %s", mgr.Dir())
	}
	return nil
}

func checkTemplates(ctx context.Context, c *cli.Context) error {
	subjects, err := c.Journal.Subjects(ctx)
	if err != nil {
		return err
	}
	v := validation.New(validation.Options{LegacyFieldNames: c.Config != nil && c.Config.Editor.LegacyFieldNames})
	bad := 0
	for _, sum := range subjects {
		subject, err := c.Journal.GetSubjectWithTemplate(ctx, sum.ID)
		if err != nil {
			return err
		}
		if r := v.ValidateSubjectChange(subject, &subject); !r.Valid() {
			bad++
			c.Printf("   %s: %v\n", subject.Name, r.Err())
		}
	}
	if bad > 0 {
		return fmt.Errorf("%d subject template(s) fail validation", bad)
	}
	return nil
}

func checkEntries(ctx context.Context, c *cli.Context) error {
	subjects, err := c.Journal.Subjects(ctx)
	if err != nil {
		return err
	}
	now := time.Now()
	for _, sum := range subjects {
		entries, err := c.Journal.Entries(ctx, sum.ID)
		if err != nil {
			return err
		}
		for _, e := range entries {
			if e.Template {
				return fmt.Errorf("subject %s lists its template as an entry", sum.Name)
			}
			if len(e.Fields) == 0 {
				return fmt.Errorf("entry %s of %s has no fields", e.ID, sum.Name)
			}
			if e.CreatedAt.After(now.Add(24 * time.Hour)) {
				return fmt.Errorf("entry %s of %s is dated in the future (%s)", e.ID, sum.Name, e.CreatedAt.Format(time.RFC3339))
			}
		}
	}
	return nil
}

func checkClockTimezone(_ context.Context, _ *cli.Context) error {
	now := time.Now()
	if now.Year() < 2020 {
		return fmt.Errorf("system clock looks wrong: %s", now.Format(time.RFC3339))
	}
	if _, offset := now.Zone(); offset%(15*60) != 0 {
		return fmt.Errorf("unusual timezone offset %ds", offset)
	}
	return nil
}

func checkLogFile(_ context.Context, _ *cli.Context) error {
	p := logger.Path()
	if p == "" {
		return fmt.Errorf("logging is not initialized")
	}
	f, err := os.OpenFile(p, os.O_WRONLY|os.O_APPEND|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("log file %s is not writable: %w", p, err)
	}
	return f.Close()
}
