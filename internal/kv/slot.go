// Package kv provides durable key-value slots used to persist the task
// collection. Every backend stores opaque byte values under string keys.
package kv

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned by Get when the key has never been written.
var ErrNotFound = errors.New("not found")

// Slot is a durable key-value store.
type Slot interface {
	// Get returns the value stored under key, or ErrNotFound.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the value stored under key.
	Put(ctx context.Context, key string, value []byte) error

	// Close releases the backend.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile     = "file"
	BackendMemory   = "memory"
	BackendSQLite   = "sqlite"
	BackendPostgres = "postgres"
	BackendMySQL    = "mysql"
)

// Open returns the slot for backend, configured by dsn.
func Open(ctx context.Context, backend, dsn string) (Slot, error) {
	switch strings.ToLower(strings.TrimSpace(backend)) {
	case "", BackendFile:
		return NewFile(dsn)
	case BackendMemory:
		return NewMemory(), nil
	case BackendSQLite, "sqlite3":
		return OpenSQLite(ctx, dsn)
	case BackendPostgres, "postgresql", "pg":
		return OpenPostgres(ctx, dsn)
	case BackendMySQL:
		return OpenMySQL(ctx, dsn)
	}
	return nil, fmt.Errorf("unknown storage backend: %s", backend)
}

func checkKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return errors.New("key is required")
	}
	return nil
}
