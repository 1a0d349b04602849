package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/pjournal/internal/logger"
	"github.com/julianstephens/pjournal/internal/migration"
	"github.com/julianstephens/pjournal/internal/storage/sqlstore"
	"github.com/julianstephens/pjournal/migrations"
)

// Store is the SQLite backend. Data calls are served by the embedded
// sqlstore.Store once Init or Load has opened the database.
type Store struct {
	*sqlstore.Store
	path string
	db   *sql.DB
}

func NewStore(path string) *Store {
	return &Store{
		path: path,
	}
}

func (s *Store) open() error {
	db, err := sql.Open("sqlite", s.path+"?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	// One writer at a time; queries never hold a cursor across another call.
	db.SetMaxOpenConns(1)
	s.db = db
	s.Store = sqlstore.New(db, sqlstore.SQLite)
	return nil
}

func (s *Store) Init() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	if s.db == nil {
		if err := s.open(); err != nil {
			return err
		}
	}

	if _, err := s.Migrate(context.Background(), nil); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}
	return nil
}

func (s *Store) Load() error {
	if s.db != nil {
		return nil
	}

	if _, err := os.Stat(s.path); os.IsNotExist(err) {
		return fmt.Errorf("storage not initialized, run 'pjournal init' first")
	}

	if err := s.open(); err != nil {
		return err
	}

	return s.runner().ValidateVersion(context.Background())
}

func (s *Store) Close() error {
	if s.db != nil {
		err := s.db.Close()
		s.db = nil
		return err
	}
	return nil
}

func (s *Store) runner() *migration.Runner {
	subFS, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		// the embed pattern guarantees the directory
		panic(err)
	}
	return migration.NewRunner(s.db, subFS)
}

// Migrate applies pending schema migrations and reports how many ran.
func (s *Store) Migrate(ctx context.Context, logFn func(string)) (int, error) {
	if s.db == nil {
		if err := s.open(); err != nil {
			return 0, err
		}
	}
	if logFn == nil {
		logFn = func(msg string) { logger.Info(msg) }
	}
	return s.runner().ApplyMigrations(ctx, logFn)
}

// SchemaVersion returns the applied and latest available schema versions.
func (s *Store) SchemaVersion(ctx context.Context) (current, latest int, err error) {
	r := s.runner()
	if current, err = r.GetCurrentVersion(ctx); err != nil {
		return 0, 0, err
	}
	latest, err = r.GetLatestVersion()
	return current, latest, err
}

func (s *Store) GetConfigPath() string {
	return s.path
}

// GetDB returns the underlying database connection, or nil before Init/Load.
func (s *Store) GetDB() *sql.DB {
	return s.db
}
