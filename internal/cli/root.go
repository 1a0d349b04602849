package cli

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/julianstephens/pjournal/internal/backup"
	"github.com/julianstephens/pjournal/internal/config"
	"github.com/julianstephens/pjournal/internal/journal"
	"github.com/julianstephens/pjournal/internal/logger"
	"github.com/julianstephens/pjournal/internal/storage"
	"github.com/julianstephens/pjournal/internal/storage/sqlite"
)

type Context struct {
	Store      storage.Provider
	Journal    *journal.Service
	Config     *config.Config
	ConfigPath string
	// Out receives command output; nil means stdout.
	Out io.Writer
	// In supplies confirmation answers; nil means stdin.
	In io.Reader
}

// NewContext binds store to the configured owner. Destructive journal
// operations snapshot SQLite databases first when automatic backups are on.
func NewContext(store storage.Provider, cfg *config.Config) *Context {
	c := &Context{Store: store, Config: cfg}
	opts := []journal.Option{journal.WithBeforeDestroy(c.beforeDestroy)}
	if cfg.Editor.LegacyFieldNames {
		opts = append(opts, journal.WithLegacyFieldNames())
	}
	if cfg.Editor.SeedNumbers {
		opts = append(opts, journal.WithSeedNumbers())
	}
	c.Journal = journal.New(store, cfg.Owner, opts...)
	return c
}

func (c *Context) Printf(format string, args ...interface{}) {
	fmt.Fprintf(c.out(), format, args...)
}

func (c *Context) Println(args ...interface{}) {
	fmt.Fprintln(c.out(), args...)
}

func (c *Context) out() io.Writer {
	if c.Out == nil {
		return os.Stdout
	}
	return c.Out
}

func (c *Context) in() io.Reader {
	if c.In == nil {
		return os.Stdin
	}
	return c.In
}

// Confirm asks a yes/no question on the context's input.
func (c *Context) Confirm(prompt string) (bool, error) {
	c.Printf("%s [y/N]: ", prompt)
	answer, err := bufio.NewReader(c.in()).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	answer = strings.ToLower(strings.TrimSpace(answer))
	return answer == "y" || answer == "yes", nil
}

// Backups returns the snapshot manager for SQLite stores and nil otherwise.
func (c *Context) Backups() *backup.Manager {
	if _, ok := c.Store.(*sqlite.Store); !ok {
		return nil
	}
	var opts []backup.Option
	if c.Config != nil && c.Config.Backup.Retain > 0 {
		opts = append(opts, backup.WithRetention(c.Config.Backup.Retain))
	}
	return backup.NewManager(c.Store.GetConfigPath(), opts...)
}

// PerformAutomaticBackup snapshots the database, logging failures instead
// of returning them.
func (c *Context) PerformAutomaticBackup() {
	mgr := c.Backups()
	if mgr == nil {
		return
	}
	snap, err := mgr.Create()
	if err != nil {
		logger.Warn("Automatic backup failed", "error", err)
		return
	}
	logger.Debug("Automatic backup created", "path", snap.Path)
}

func (c *Context) beforeDestroy(a journal.Action) error {
	if c.Config == nil || !c.Config.Backup.Auto {
		return nil
	}
	logger.Debug("Backing up before destructive change", "action", string(a))
	c.PerformAutomaticBackup()
	return nil
}
