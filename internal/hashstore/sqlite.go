// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package hashstore

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/paper-renamer/pkg/types"
)

// SQLiteStore keeps the set in a SQLite table, one row per hash.
type SQLiteStore struct {
	db   *sql.DB
	path string
}

// NewSQLiteStore opens or creates the database at path and ensures the schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating state directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	s := &SQLiteStore{db: db, path: path}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createSchema() error {
	_, err := s.db.Exec(`CREATE TABLE IF NOT EXISTS processed_hashes (
		hash TEXT PRIMARY KEY,
		recorded_at TEXT NOT NULL
	)`)
	return err
}

// Path returns the database file location.
func (s *SQLiteStore) Path() string {
	return s.path
}

// Load returns every recorded hash.
func (s *SQLiteStore) Load(ctx context.Context) (Set, error) {
	return queryHashes(ctx, s.db)
}

// Save makes the table equal to set inside one transaction. Rows already
// present keep their original recorded_at.
func (s *SQLiteStore) Save(ctx context.Context, set Set) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	existing, err := queryHashes(ctx, tx)
	if err != nil {
		return err
	}

	for h := range existing {
		if set.Has(h) {
			continue
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM processed_hashes WHERE hash = ?`, string(h)); err != nil {
			return fmt.Errorf("deleting hash %s: %w", h, err)
		}
	}

	now := time.Now().UTC().Format(time.RFC3339)
	for _, h := range set.Sorted() {
		if existing.Has(h) {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO processed_hashes (hash, recorded_at) VALUES (?, ?)`,
			string(h), now,
		); err != nil {
			return fmt.Errorf("inserting hash %s: %w", h, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing hashes: %w", err)
	}
	return nil
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func queryHashes(ctx context.Context, q queryer) (Set, error) {
	rows, err := q.QueryContext(ctx, `SELECT hash FROM processed_hashes`)
	if err != nil {
		return nil, fmt.Errorf("querying hashes: %w", err)
	}
	defer rows.Close()

	set := NewSet()
	for rows.Next() {
		var h string
		if err := rows.Scan(&h); err != nil {
			return nil, fmt.Errorf("scanning hash: %w", err)
		}
		set.Add(types.ContentHash(h))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hashes: %w", err)
	}
	return set, nil
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
