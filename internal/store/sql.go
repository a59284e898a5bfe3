package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/mattn/go-sqlite3"
)

// SQL stores values in a single kv_store table on Postgres or SQLite.
type SQL struct {
	db      *sql.DB
	queries sqlQueries
}

type sqlQueries struct {
	schema string
	get    string
	set    string
	delete string
	keys   string
}

var postgresQueries = sqlQueries{
	schema: `
	CREATE TABLE IF NOT EXISTS kv_store (
		key_name   TEXT PRIMARY KEY,
		value      BYTEA NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	get: `SELECT value FROM kv_store WHERE key_name = $1`,
	set: `
		INSERT INTO kv_store (key_name, value, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key_name) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`,
	delete: `DELETE FROM kv_store WHERE key_name = $1`,
	keys:   `SELECT key_name FROM kv_store ORDER BY key_name`,
}

var sqliteQueries = sqlQueries{
	schema: `
	CREATE TABLE IF NOT EXISTS kv_store (
		key_name   TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		updated_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
	)`,
	get: `SELECT value FROM kv_store WHERE key_name = ?`,
	set: `
		INSERT INTO kv_store (key_name, value, updated_at)
		VALUES (?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (key_name) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`,
	delete: `DELETE FROM kv_store WHERE key_name = ?`,
	keys:   `SELECT key_name FROM kv_store ORDER BY key_name`,
}

// NewPostgres connects through the pgx driver with sane pool defaults.
func NewPostgres(ctx context.Context, connString string) (*SQL, error) {
	db, err := sql.Open("pgx", connString)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	return newSQL(ctx, db, postgresQueries)
}

// NewSQLite opens a WAL-mode SQLite file, creating its directory if needed.
func NewSQLite(ctx context.Context, path string) (*SQL, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	return newSQL(ctx, db, sqliteQueries)
}

func newSQL(ctx context.Context, db *sql.DB, q sqlQueries) (*SQL, error) {
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	if _, err := db.ExecContext(ctx, q.schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &SQL{db: db, queries: q}, nil
}

// Get returns the value stored under key.
func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, s.queries.get, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return value, err
}

// Set upserts key.
func (s *SQL) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.db.ExecContext(ctx, s.queries.set, key, value)
	return err
}

// Delete removes key.
func (s *SQL) Delete(ctx context.Context, key string) error {
	_, err := s.db.ExecContext(ctx, s.queries.delete, key)
	return err
}

// Keys lists every stored key.
func (s *SQL) Keys(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, s.queries.keys)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, err
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

// Ping checks the connection.
func (s *SQL) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying connection.
func (s *SQL) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
