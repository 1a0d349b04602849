package logger

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestInit(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "config")

	if err := Init(Config{Dir: configDir, Owner: "alice"}); err != nil {
		t.Fatalf("Failed to initialize logger: %v", err)
	}
	t.Cleanup(func() { Logger = nil })

	want := filepath.Join(configDir, "logs", "pjournal.log")
	if Path() != want {
		t.Errorf("Path() = %q, want %q", Path(), want)
	}

	Debug("debug message")
	Info("info message")
	Annotate("store", "sqlite")
	Warn("warning message", "subject", "Lifting")
	Error("error message")

	data, err := os.ReadFile(want)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	out := string(data)
	for _, s := range []string{"warning message", "owner=alice", "store=sqlite", "subject=Lifting", "error message"} {
		if !strings.Contains(out, s) {
			t.Errorf("log file missing %q: %q", s, out)
		}
	}
	if strings.Contains(out, "info message") {
		t.Errorf("info line written at default warn level: %q", out)
	}
}

func TestInitDebugMirrorsToStderr(t *testing.T) {
	var stderr bytes.Buffer
	if err := Init(Config{Debug: true, Dir: t.TempDir(), Stderr: &stderr}); err != nil {
		t.Fatalf("Failed to initialize logger in debug mode: %v", err)
	}
	t.Cleanup(func() { Logger = nil })

	Debug("opening store", "path", "journal.db")
	if !strings.Contains(stderr.String(), "opening store") {
		t.Errorf("debug line not mirrored: %q", stderr.String())
	}
	if child := With("entry", "e1"); child == nil {
		t.Error("With() returned nil after Init")
	}
}

func TestInitUnwritableDir(t *testing.T) {
	file := filepath.Join(t.TempDir(), "not-a-dir")
	if err := os.WriteFile(file, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := Init(Config{Dir: file}); err == nil {
		t.Error("expected error when the log directory cannot be created")
	}
}

func TestHelpersBeforeInit(t *testing.T) {
	Logger = nil
	Debug("ignored")
	Warn("ignored")
	Annotate("k", "v")
	if With("k", "v") != nil {
		t.Error("With() before Init should be nil")
	}
	if Path() != "" {
		t.Errorf("Path() before Init = %q", Path())
	}
}
