package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hupe1980/pantrymesh/core"
	"github.com/hupe1980/pantrymesh/logging"

	_ "modernc.org/sqlite"
)

// SQLiteOptions configures a SQLiteStore.
type SQLiteOptions struct {
	Logger logging.Logger
}

// SQLiteStore implements Store on a SQLite database file.
type SQLiteStore struct {
	db     *sql.DB
	logger logging.Logger
}

// NewSQLiteStore opens (or creates) the database at path. The schema is
// created if it doesn't exist and parent directories are created if needed.
func NewSQLiteStore(path string, optFns ...func(o *SQLiteOptions)) (*SQLiteStore, error) {
	opts := SQLiteOptions{}
	for _, fn := range optFns {
		fn(&opts)
	}
	logger := logging.OrNoOp(opts.Logger)

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Info("store.sqlite.opened", "path", path)
	return s, nil
}

func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS facts (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			name_key TEXT NOT NULL UNIQUE,
			available INTEGER NOT NULL DEFAULT 1,
			updated_at DATETIME NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_facts_available ON facts(available, name_key);
	`
	_, err := s.db.Exec(schema)
	return err
}

// AvailableFacts returns the available facts sorted by name.
func (s *SQLiteStore) AvailableFacts(ctx context.Context) ([]core.Fact, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, name FROM facts WHERE available = 1 ORDER BY name_key`)
	if err != nil {
		return nil, fmt.Errorf("querying facts: %w", err)
	}
	defer rows.Close()

	var out []core.Fact
	for rows.Next() {
		var f core.Fact
		if err := rows.Scan(&f.ID, &f.Name); err != nil {
			return nil, fmt.Errorf("scanning fact: %w", err)
		}
		out = append(out, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating facts: %w", err)
	}
	return out, nil
}

// Put implements Store.
func (s *SQLiteStore) Put(ctx context.Context, name string) (core.Fact, error) {
	name, err := cleanName(name)
	if err != nil {
		return core.Fact{}, err
	}
	now := time.Now().UTC()
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO facts (id, name, name_key, available, updated_at) VALUES (?, ?, ?, 1, ?)
		ON CONFLICT(name_key) DO UPDATE SET available = 1, updated_at = excluded.updated_at`,
		uuid.NewString(), name, nameKey(name), now)
	if err != nil {
		return core.Fact{}, fmt.Errorf("saving fact: %w", err)
	}

	var f core.Fact
	err = s.db.QueryRowContext(ctx, `SELECT id, name FROM facts WHERE name_key = ?`, nameKey(name)).Scan(&f.ID, &f.Name)
	if err != nil {
		return core.Fact{}, fmt.Errorf("reading fact: %w", err)
	}
	return f, nil
}

// SetAvailable implements Store.
func (s *SQLiteStore) SetAvailable(ctx context.Context, id string, available bool) error {
	res, err := s.db.ExecContext(ctx, `UPDATE facts SET available = ?, updated_at = ? WHERE id = ?`, available, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("updating fact: %w", err)
	}
	return requireRow(res)
}

// Delete implements Store.
func (s *SQLiteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM facts WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting fact: %w", err)
	}
	return requireRow(res)
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking result: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// Open returns the Store for driver ("memory" or "sqlite").
func Open(driver, path string, logger logging.Logger) (Store, error) {
	switch driver {
	case "", "memory":
		return NewInMemoryStore(), nil
	case "sqlite":
		if path == "" {
			return nil, errors.New("sqlite store requires a path")
		}
		return NewSQLiteStore(path, func(o *SQLiteOptions) { o.Logger = logger })
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}
