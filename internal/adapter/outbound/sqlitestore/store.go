// Package sqlitestore implements blockledger.Store on top of an embedded
// SQLite database, exactly as spec.md §4.3/§6 specify: a single
// auth_errors(host, block_until) table, opened with a 10-second busy
// timeout, safe for concurrent request handlers.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed blockledger.Store.
type Store struct {
	db *sql.DB
}

// Open creates (or reuses) the SQLite file at path and ensures the
// auth_errors table exists. A single connection is kept open: the block
// store has one writer by construction (the proxy process), so there is
// no benefit to a connection pool and every contending caller instead
// waits out the driver's busy timeout.
func Open(path string) (*Store, error) {
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(10000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open block store %q: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(`CREATE TABLE IF NOT EXISTS auth_errors (host TEXT, block_until INTEGER)`); err != nil {
		db.Close()
		return nil, fmt.Errorf("create auth_errors table: %w", err)
	}
	return &Store{db: db}, nil
}

// Get returns the latest block_until for host, tolerating duplicate rows
// by taking the maximum.
func (s *Store) Get(ctx context.Context, host string) (int64, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT MAX(block_until) FROM auth_errors WHERE host = ?`, host)
	var blockUntil sql.NullInt64
	if err := row.Scan(&blockUntil); err != nil {
		return 0, false, fmt.Errorf("get block record for %q: %w", host, err)
	}
	if !blockUntil.Valid {
		return 0, false, nil
	}
	return blockUntil.Int64, true, nil
}

// Put inserts a new row for host. Callers should Remove first to avoid
// row accumulation, per the remove-then-put discipline spec.md §5
// requires.
func (s *Store) Put(ctx context.Context, host string, blockUntil int64) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO auth_errors (host, block_until) VALUES (?, ?)`, host, blockUntil)
	if err != nil {
		return fmt.Errorf("put block record for %q: %w", host, err)
	}
	return nil
}

// Remove deletes all rows for host.
func (s *Store) Remove(ctx context.Context, host string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM auth_errors WHERE host = ?`, host)
	if err != nil {
		return fmt.Errorf("remove block records for %q: %w", host, err)
	}
	return nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
