package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/mattn/go-sqlite3"
)

// SQL is a slot over a database/sql handle. The SQLite and MySQL backends
// differ only in their DDL and upsert statement.
type SQL struct {
	db     *sql.DB
	upsert string
	query  string
}

const sqliteSchema = `
	CREATE TABLE IF NOT EXISTS kv (
		key        TEXT PRIMARY KEY,
		value      BLOB NOT NULL,
		updated_at DATETIME NOT NULL
	)`

const mysqlSchema = `
	CREATE TABLE IF NOT EXISTS kv (
		` + "`key`" + `      VARCHAR(191) PRIMARY KEY,
		value      LONGBLOB NOT NULL,
		updated_at TIMESTAMP NOT NULL
	)`

// OpenSQLite opens (creating if needed) a SQLite database at path.
func OpenSQLite(ctx context.Context, path string) (*SQL, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite storage: database path is required")
	}
	if strings.HasPrefix(path, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, path[1:])
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	// A single connection serializes writers and avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	return newSQL(ctx, db, sqliteSchema,
		`INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		`SELECT value FROM kv WHERE key = ?`)
}

// OpenMySQL connects to MySQL using a go-sql-driver DSN.
func OpenMySQL(ctx context.Context, dsn string) (*SQL, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, errors.New("mysql storage: dsn is required")
	}
	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("mysql storage: %w", err)
	}

	return newSQL(ctx, db, mysqlSchema,
		"INSERT INTO kv (`key`, value, updated_at) VALUES (?, ?, ?)"+
			" ON DUPLICATE KEY UPDATE value = VALUES(value), updated_at = VALUES(updated_at)",
		"SELECT value FROM kv WHERE `key` = ?")
}

func newSQL(ctx context.Context, db *sql.DB, schema, upsert, query string) (*SQL, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create kv table: %w", err)
	}
	return &SQL{db: db, upsert: upsert, query: query}, nil
}

// Get implements Slot.
func (s *SQL) Get(ctx context.Context, key string) ([]byte, error) {
	if err := checkKey(key); err != nil {
		return nil, err
	}
	var value []byte
	err := s.db.QueryRowContext(ctx, s.query, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// Put implements Slot.
func (s *SQL) Put(ctx context.Context, key string, value []byte) error {
	if err := checkKey(key); err != nil {
		return err
	}
	now := time.Now().UTC().Truncate(time.Second)
	if _, err := s.db.ExecContext(ctx, s.upsert, key, value, now); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	return nil
}

// Close implements Slot.
func (s *SQL) Close() error { return s.db.Close() }
