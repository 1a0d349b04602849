package backups

import (
	"context"
	"strings"
	"testing"

	"github.com/julianstephens/pjournal/internal/cli/clitest"
	"github.com/julianstephens/pjournal/internal/constants"
	"github.com/julianstephens/pjournal/internal/journal"
	"github.com/julianstephens/pjournal/internal/storage/sqlite"
)

func TestBackupListEmpty(t *testing.T) {
	h := clitest.New(t)
	if err := (&BackupListCmd{}).Run(h.Context); err != nil {
		t.Fatal(err)
	}
	if out := h.Output(); !strings.Contains(out, "No backups found.") {
		t.Errorf("output = %q", out)
	}
}

func TestBackupCreateAndList(t *testing.T) {
	h := clitest.New(t)
	if err := (&BackupCreateCmd{}).Run(h.Context); err != nil {
		t.Fatalf("create: %v", err)
	}
	out := h.Output()
	if !strings.Contains(out, "Backup created: "+constants.BackupFilePrefix) {
		t.Errorf("create output = %q", out)
	}

	if err := (&BackupListCmd{}).Run(h.Context); err != nil {
		t.Fatal(err)
	}
	if out := h.Output(); !strings.Contains(out, "Available backups (1 total") {
		t.Errorf("list output = %q", out)
	}
}

func TestBackupRestore(t *testing.T) {
	h := clitest.New(t)
	bg := context.Background()
	if _, err := h.Journal.AddSubject(bg, "Before", constants.TemplateJournal); err != nil {
		t.Fatal(err)
	}
	if err := (&BackupCreateCmd{}).Run(h.Context); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Journal.AddSubject(bg, "After", constants.TemplateJournal); err != nil {
		t.Fatal(err)
	}
	h.Output()

	if err := (&BackupRestoreCmd{Yes: true}).Run(h.Context); err != nil {
		t.Fatalf("restore: %v", err)
	}
	out := h.Output()
	if !strings.Contains(out, "restored successfully") || !strings.Contains(out, "Previous database saved as") {
		t.Errorf("restore output = %q", out)
	}

	store := sqlite.NewStore(h.Store.GetConfigPath())
	if err := store.Load(); err != nil {
		t.Fatal(err)
	}
	defer store.Close()
	subjects, err := journal.New(store, h.Config.Owner).Subjects(bg)
	if err != nil {
		t.Fatal(err)
	}
	if len(subjects) != 1 || subjects[0].Name != "Before" {
		t.Errorf("subjects after restore = %+v, want only Before", subjects)
	}
}

func TestBackupRestoreCancelled(t *testing.T) {
	h := clitest.New(t)
	if err := (&BackupCreateCmd{}).Run(h.Context); err != nil {
		t.Fatal(err)
	}
	h.Answer("no")
	if err := (&BackupRestoreCmd{}).Run(h.Context); err != nil {
		t.Fatal(err)
	}
	if out := h.Output(); !strings.Contains(out, "Restore cancelled.") {
		t.Errorf("output = %q", out)
	}
}

func TestBackupRestoreErrors(t *testing.T) {
	h := clitest.New(t)
	if err := (&BackupRestoreCmd{Yes: true}).Run(h.Context); err == nil {
		t.Error("expected error restoring with no backups")
	}
	if err := (&BackupRestoreCmd{BackupFile: "pjournal-missing.db", Yes: true}).Run(h.Context); err == nil {
		t.Error("expected error restoring a missing file")
	}
}

func TestAutomaticBackupBeforeDelete(t *testing.T) {
	h := clitest.New(t)
	h.Config.Backup.Auto = true
	bg := context.Background()
	if _, err := h.Journal.AddSubject(bg, "Doomed", constants.TemplateJournal); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Journal.DeleteSubject(bg, "Doomed"); err != nil {
		t.Fatal(err)
	}
	snaps, err := h.Backups().List()
	if err != nil {
		t.Fatal(err)
	}
	if len(snaps) != 1 {
		t.Errorf("snapshots = %d, want 1", len(snaps))
	}
}
