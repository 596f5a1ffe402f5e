package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// =============================================================================
// State Store - Scoped Key/Value Persistence
// =============================================================================
//
// Store keeps string values under (scope, key). The target records whether a
// value should follow the user across machines or stay local. Values are
// opaque to the store; callers encode them (themes use JSON).

// Scope identifies where a value applies.
type Scope string

const (
	ScopeGlobal    Scope = "global"
	ScopeWorkspace Scope = "workspace"
)

// Target identifies whether a value syncs between machines.
type Target string

const (
	TargetUser    Target = "user"
	TargetMachine Target = "machine"
)

// ErrClosed is returned by operations on a closed store.
var ErrClosed = errors.New("storage: store closed")

// Store is a SQLite-backed key/value store.
type Store struct {
	mu     sync.RWMutex
	db     *sql.DB
	path   string
	closed bool
}

// OpenStore opens (creating if needed) the store at path. The special path
// ":memory:" opens a private in-memory database.
func OpenStore(path string) (*Store, error) {
	if path != ":memory:" {
		if err := EnsureDir(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A second connection to ":memory:" would see a different database.
	db.SetMaxOpenConns(1)

	if path != ":memory:" {
		if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to enable WAL: %w", err)
		}
	}

	schema := `
	CREATE TABLE IF NOT EXISTS state (
		scope TEXT NOT NULL,
		key TEXT NOT NULL,
		value TEXT NOT NULL,
		target TEXT NOT NULL,
		updated_at TIMESTAMP NOT NULL,
		PRIMARY KEY (scope, key)
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Store{db: db, path: path}, nil
}

// Path returns the database location.
func (s *Store) Path() string {
	return s.path
}

// Get returns the value stored under key. The boolean is false when no value
// exists.
func (s *Store) Get(ctx context.Context, key string, scope Scope) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return "", false, ErrClosed
	}

	var value string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM state WHERE scope = ? AND key = ?`, string(scope), key,
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s/%s: %w", scope, key, err)
	}
	return value, true, nil
}

// Store writes value under key, replacing any previous value.
func (s *Store) Store(ctx context.Context, key, value string, scope Scope, target Target) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO state (scope, key, value, target, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(scope, key) DO UPDATE SET
			value = excluded.value,
			target = excluded.target,
			updated_at = excluded.updated_at
	`, string(scope), key, value, string(target), time.Now().UTC())
	if err != nil {
		return fmt.Errorf("store %s/%s: %w", scope, key, err)
	}
	return nil
}

// Remove deletes key. Removing a missing key is not an error.
func (s *Store) Remove(ctx context.Context, key string, scope Scope) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM state WHERE scope = ? AND key = ?`, string(scope), key); err != nil {
		return fmt.Errorf("remove %s/%s: %w", scope, key, err)
	}
	return nil
}

// Close releases the database. Further calls return ErrClosed.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// RemoveStore deletes the database file and its WAL companions.
func RemoveStore(path string) error {
	var errs []error
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
