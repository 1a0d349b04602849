// Package clitest builds command contexts over a throwaway SQLite journal.
package clitest

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/julianstephens/pjournal/internal/cli"
	"github.com/julianstephens/pjournal/internal/config"
	"github.com/julianstephens/pjournal/internal/storage/sqlite"
)

// Harness is a command context whose output is captured.
type Harness struct {
	*cli.Context
	Buf *bytes.Buffer
}

// New initialises a SQLite store in a temp dir and binds a context to it.
// Automatic backups are off unless the caller turns them on.
func New(t *testing.T) *Harness {
	t.Helper()
	dir := t.TempDir()
	store := sqlite.NewStore(filepath.Join(dir, "pjournal.db"))
	if err := store.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	cfg := config.Default()
	cfg.Database = store.GetConfigPath()
	cfg.Backup.Auto = false

	ctx := cli.NewContext(store, cfg)
	ctx.ConfigPath = filepath.Join(dir, "config.yaml")
	buf := &bytes.Buffer{}
	ctx.Out = buf
	return &Harness{Context: ctx, Buf: buf}
}

// Answer feeds s to the next confirmation prompt.
func (h *Harness) Answer(s string) {
	h.In = strings.NewReader(s + "\n")
}

// Output returns and clears everything printed so far.
func (h *Harness) Output() string {
	s := h.Buf.String()
	h.Buf.Reset()
	return s
}
