package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	_ "modernc.org/sqlite" // SQLite driver

	"github.com/custodia-labs/pelagia/internal/adapters/driven/storage/sqlite/migrations"
	"github.com/custodia-labs/pelagia/internal/core/ports/driven"
)

// DatabaseName is the file created inside the cache directory.
const DatabaseName = "diagrams.db"

// Store is a SQLite database holding rendered diagram images.
type Store struct {
	db   *sql.DB
	path string
}

// NewStore opens or creates the cache database in cacheDir.
func NewStore(cacheDir string) (*Store, error) {
	if cacheDir == "" {
		return nil, errors.New("cache directory is required")
	}

	if err := os.MkdirAll(cacheDir, 0700); err != nil {
		return nil, fmt.Errorf("creating cache directory: %w", err)
	}

	dbPath := filepath.Join(cacheDir, DatabaseName)

	// WAL lets "cache prune" read while a build writes.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Renders run in parallel; one connection keeps writers from contending.
	db.SetMaxOpenConns(1)

	s := &Store{
		db:   db,
		path: dbPath,
	}

	if err := s.migrate(migrations.FS); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// DiagramCache returns a DiagramCache backed by this store.
// Closing the cache closes the store.
func (s *Store) DiagramCache() driven.DiagramCache {
	return &diagramCache{store: s}
}

// migrate applies every "NNN_name.up.sql" file in fsys whose number is
// above the highest one recorded in schema_migrations.
func (s *Store) migrate(fsys fs.FS) error {
	const bootstrap = `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
	)`
	if _, err := s.db.Exec(bootstrap); err != nil {
		return fmt.Errorf("creating schema_migrations table: %w", err)
	}

	var applied int
	if err := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM schema_migrations").Scan(&applied); err != nil {
		return fmt.Errorf("reading schema version: %w", err)
	}

	pending, err := pendingMigrations(fsys, applied)
	if err != nil {
		return err
	}
	for _, m := range pending {
		body, err := fs.ReadFile(fsys, m.file)
		if err != nil {
			return fmt.Errorf("reading migration %s: %w", m.file, err)
		}
		if _, err := s.db.Exec(string(body)); err != nil {
			return fmt.Errorf("applying migration %s: %w", m.file, err)
		}
		if _, err := s.db.Exec("INSERT INTO schema_migrations (version) VALUES (?)", m.version); err != nil {
			return fmt.Errorf("recording migration %s: %w", m.file, err)
		}
	}
	return nil
}

type migration struct {
	version int
	file    string
}

// pendingMigrations returns the up migrations newer than applied, oldest
// first. Files without a numeric prefix are ignored.
func pendingMigrations(fsys fs.FS, applied int) ([]migration, error) {
	files, err := fs.Glob(fsys, "*.up.sql")
	if err != nil {
		return nil, fmt.Errorf("listing migrations: %w", err)
	}

	var out []migration
	for _, f := range files {
		var v int
		if _, err := fmt.Sscanf(f, "%d_", &v); err != nil || v <= applied {
			continue
		}
		out = append(out, migration{version: v, file: f})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].version < out[j].version })
	return out, nil
}

// ==================== Diagram Cache ====================

// diagramCache implements driven.DiagramCache.
type diagramCache struct {
	store *Store
}

var _ driven.DiagramCache = (*diagramCache)(nil)

// Get returns the cached image for key and marks it as used.
func (c *diagramCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var image []byte
	err := c.store.db.QueryRowContext(ctx,
		"SELECT image FROM diagram_artifacts WHERE cache_key = ?", key).Scan(&image)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("reading diagram %s: %w", key, err)
	}

	if _, err := c.store.db.ExecContext(ctx,
		"UPDATE diagram_artifacts SET last_used_at = ? WHERE cache_key = ?",
		time.Now().UTC(), key); err != nil {
		return nil, false, fmt.Errorf("touching diagram %s: %w", key, err)
	}
	return image, true, nil
}

// Put stores or replaces the image for key.
func (c *diagramCache) Put(ctx context.Context, key string, image []byte) error {
	now := time.Now().UTC()
	_, err := c.store.db.ExecContext(ctx, `
		INSERT INTO diagram_artifacts (cache_key, image, size, created_at, last_used_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(cache_key) DO UPDATE SET
			image = excluded.image,
			size = excluded.size,
			last_used_at = excluded.last_used_at
	`, key, image, len(image), now, now)
	if err != nil {
		return fmt.Errorf("saving diagram %s: %w", key, err)
	}
	return nil
}

// Close closes the underlying store.
func (c *diagramCache) Close() error {
	return c.store.Close()
}

// Prune deletes images not used since cutoff and returns how many were removed.
func (s *Store) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM diagram_artifacts WHERE last_used_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("pruning diagrams: %w", err)
	}
	return res.RowsAffected()
}
