package broker

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - kv table with updated_at column
const currentSchemaVersion = 1

// SQLite is a durable single-file broker backend.
// Uses WAL mode for concurrent read access during writes.
type SQLite struct {
	handles

	db *sql.DB
}

// OpenSQLite creates or opens a SQLite-backed broker at the given path.
// Applies required pragmas and migrations automatically.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections
	// to avoid SQLITE_BUSY under concurrent instances.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// Read implements Broker.
func (s *SQLite) Read(ctx context.Context, path string) ([]byte, bool, error) {
	release := s.acquire()
	defer release()

	var value []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT value FROM kv WHERE path = ?", NormalizePath(path),
	).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("read %q: %w", path, err)
	}
	return value, true, nil
}

// Write implements Broker. Upserts via ON CONFLICT so rewrites are
// idempotent.
func (s *SQLite) Write(ctx context.Context, path string, value []byte) error {
	release := s.acquire()
	defer release()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO kv (path, value) VALUES (?, ?)
		ON CONFLICT(path) DO UPDATE SET
			value = excluded.value,
			updated_at = strftime('%Y-%m-%dT%H:%M:%fZ', 'now')
	`, NormalizePath(path), value)
	if err != nil {
		return fmt.Errorf("write %q: %w", path, err)
	}
	return nil
}

// Delete implements Broker.
func (s *SQLite) Delete(ctx context.Context, path string) error {
	release := s.acquire()
	defer release()

	if _, err := s.db.ExecContext(ctx,
		"DELETE FROM kv WHERE path = ?", NormalizePath(path),
	); err != nil {
		return fmt.Errorf("delete %q: %w", path, err)
	}
	return nil
}

// Close implements Broker.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("execute %q: %w", pragma, err)
		}
	}
	return nil
}

// applySchema creates tables if they don't exist and stamps the schema
// version. Idempotent.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("execute schema: %w", err)
	}
	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}
	return nil
}
