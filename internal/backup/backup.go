// Package backup snapshots and restores the local SQLite journal.
package backup

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/pjournal/internal/constants"
	"github.com/julianstephens/pjournal/internal/logger"
)

// stampLayout is the timestamp embedded in every snapshot name.
const stampLayout = "20060102-150405"

// Snapshot describes one backup file.
type Snapshot struct {
	Path      string
	Timestamp time.Time
	Size      int64

	seq int
}

// Name returns the snapshot's file name.
func (s Snapshot) Name() string { return filepath.Base(s.Path) }

type Option func(*Manager)

// WithRetention overrides how many snapshots are kept after each backup.
func WithRetention(n int) Option {
	return func(m *Manager) { m.retain = n }
}

// WithClock overrides the time source used for snapshot names.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) { m.now = now }
}

// Manager creates, lists, prunes and restores snapshots of one database
// file. Snapshots live in a "backups" directory beside the database.
type Manager struct {
	dbPath    string
	backupDir string
	retain    int
	now       func() time.Time
}

func NewManager(dbPath string, opts ...Option) *Manager {
	m := &Manager{
		dbPath:    dbPath,
		backupDir: filepath.Join(filepath.Dir(dbPath), constants.BackupDirName),
		retain:    constants.MaxBackups,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) Dir() string { return m.backupDir }

// Create snapshots the database and prunes snapshots beyond the retention
// limit. Pruning failures are logged, not returned.
func (m *Manager) Create() (Snapshot, error) {
	snap, err := m.create()
	if err != nil {
		return Snapshot{}, err
	}
	if _, err := m.Prune(m.retain); err != nil {
		logger.Warn("Failed to prune old backups", "error", err)
	}
	return snap, nil
}

func (m *Manager) create() (Snapshot, error) {
	if err := os.MkdirAll(m.backupDir, 0700); err != nil {
		return Snapshot{}, fmt.Errorf("failed to create backup directory: %w", err)
	}
	if _, err := os.Stat(m.dbPath); os.IsNotExist(err) {
		return Snapshot{}, fmt.Errorf("database does not exist: %s", m.dbPath)
	}

	at := m.now()
	path, err := m.freeName(at)
	if err != nil {
		return Snapshot{}, err
	}
	if err := vacuumInto(m.dbPath, path); err != nil {
		return Snapshot{}, fmt.Errorf("failed to backup database: %w", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		return Snapshot{}, err
	}
	logger.Debug("Created backup", "path", path, "size", info.Size())
	return Snapshot{Path: path, Timestamp: at.Truncate(time.Second), Size: info.Size()}, nil
}

// freeName returns the first unused snapshot path for at, appending a
// counter when several snapshots land in the same second.
func (m *Manager) freeName(at time.Time) (string, error) {
	stamp := at.Format(stampLayout)
	for n := 0; n <= 100; n++ {
		name := constants.BackupFilePrefix + stamp
		if n > 0 {
			name += "-" + strconv.Itoa(n)
		}
		path := filepath.Join(m.backupDir, name+constants.BackupFileSuffix)
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return path, nil
		}
	}
	return "", fmt.Errorf("failed to generate unique backup filename")
}

// vacuumInto writes a consistent copy of src to dst, falling back to a
// plain file copy when VACUUM INTO is unavailable.
func vacuumInto(src, dst string) error {
	db, err := sql.Open("sqlite", src+"?mode=ro")
	if err != nil {
		return fmt.Errorf("failed to open source database: %w", err)
	}
	defer db.Close()

	if err := verify(db); err != nil {
		return fmt.Errorf("source database appears to be corrupted: %w", err)
	}
	if _, err := db.Exec("VACUUM INTO ?", dst); err != nil {
		logger.Debug("VACUUM INTO failed, copying file", "error", err)
		return copyFile(src, dst)
	}
	return nil
}

// parseName extracts the timestamp and same-second counter from a
// snapshot file name.
func parseName(name string) (time.Time, int, bool) {
	if !strings.HasPrefix(name, constants.BackupFilePrefix) || !strings.HasSuffix(name, constants.BackupFileSuffix) {
		return time.Time{}, 0, false
	}
	stamp := strings.TrimSuffix(strings.TrimPrefix(name, constants.BackupFilePrefix), constants.BackupFileSuffix)
	seq := 0
	if len(stamp) > len(stampLayout) {
		counter := stamp[len(stampLayout):]
		if counter[0] != '-' {
			return time.Time{}, 0, false
		}
		n, err := strconv.Atoi(counter[1:])
		if err != nil || n < 1 {
			return time.Time{}, 0, false
		}
		seq = n
		stamp = stamp[:len(stampLayout)]
	}
	t, err := time.ParseInLocation(stampLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, 0, false
	}
	return t, seq, true
}

// List returns all snapshots, newest first. Files that do not follow the
// snapshot naming scheme are ignored.
func (m *Manager) List() ([]Snapshot, error) {
	entries, err := os.ReadDir(m.backupDir)
	if os.IsNotExist(err) {
		return []Snapshot{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read backup directory: %w", err)
	}

	snaps := []Snapshot{}
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		at, seq, ok := parseName(entry.Name())
		if !ok {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		snaps = append(snaps, Snapshot{
			Path:      filepath.Join(m.backupDir, entry.Name()),
			Timestamp: at,
			Size:      info.Size(),
			seq:       seq,
		})
	}

	sort.SliceStable(snaps, func(i, j int) bool {
		if snaps[i].Timestamp.Equal(snaps[j].Timestamp) {
			return snaps[i].seq > snaps[j].seq
		}
		return snaps[i].Timestamp.After(snaps[j].Timestamp)
	})
	return snaps, nil
}

// Latest returns the newest snapshot, or false when there is none.
func (m *Manager) Latest() (Snapshot, bool, error) {
	snaps, err := m.List()
	if err != nil || len(snaps) == 0 {
		return Snapshot{}, false, err
	}
	return snaps[0], true, nil
}

// Prune deletes all but the newest keep snapshots and returns how many
// were removed.
func (m *Manager) Prune(keep int) (int, error) {
	snaps, err := m.List()
	if err != nil {
		return 0, err
	}
	if keep < 0 {
		keep = 0
	}
	removed := 0
	for i := keep; i < len(snaps); i++ {
		if err := os.Remove(snaps[i].Path); err != nil {
			return removed, fmt.Errorf("failed to remove old backup %s: %w", snaps[i].Name(), err)
		}
		removed++
	}
	return removed, nil
}

// Resolve finds a snapshot by path or by file name inside the backup dir.
func (m *Manager) Resolve(nameOrPath string) (string, error) {
	if _, err := os.Stat(nameOrPath); err == nil {
		return nameOrPath, nil
	}
	path := filepath.Join(m.backupDir, filepath.Base(nameOrPath))
	if _, err := os.Stat(path); err != nil {
		return "", fmt.Errorf("backup file does not exist: %s", nameOrPath)
	}
	return path, nil
}

// Restore replaces the database with the snapshot at path. The current
// database is snapshotted first and that snapshot is returned; it is
// not subject to pruning until the next Create.
func (m *Manager) Restore(path string) (Snapshot, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return Snapshot{}, fmt.Errorf("backup file does not exist: %s", path)
	}
	if err := verifyFile(path); err != nil {
		return Snapshot{}, fmt.Errorf("backup file is corrupted or invalid: %w", err)
	}

	var previous Snapshot
	if _, err := os.Stat(m.dbPath); err == nil {
		snap, err := m.create()
		if err != nil {
			return Snapshot{}, fmt.Errorf("failed to backup current database before restore: %w", err)
		}
		previous = snap
	}

	tmp := m.dbPath + ".restore.tmp"
	if err := copyFile(path, tmp); err != nil {
		return previous, fmt.Errorf("failed to copy backup file: %w", err)
	}
	if err := os.Rename(tmp, m.dbPath); err != nil {
		if rmErr := os.Remove(tmp); rmErr != nil {
			logger.Warn("Failed to remove temporary file", "path", tmp, "error", rmErr)
		}
		return previous, fmt.Errorf("failed to restore database: %w", err)
	}

	logger.Info("Restored database", "from", path, "previous", previous.Path)
	return previous, nil
}

func verify(db *sql.DB) error {
	var count int
	return db.QueryRow("SELECT COUNT(*) FROM sqlite_master").Scan(&count)
}

func verifyFile(path string) error {
	db, err := sql.Open("sqlite", path+"?mode=ro")
	if err != nil {
		return err
	}
	defer db.Close()
	return verify(db)
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return err
	}
	defer out.Close()

	if _, err := out.ReadFrom(in); err != nil {
		return err
	}
	return out.Sync()
}
