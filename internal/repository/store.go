package repository

import (
	"context"
	"errors"
	"fmt"
)

// KVStore is the durable key-value slot store backing the tracked-item
// list and the settings. Writes are last-write-wins and values are opaque
// bytes, JSON in practice.
type KVStore interface {
	// Get returns the value under key, or ErrNotFound on first run.
	Get(ctx context.Context, key string) ([]byte, error)

	// Set replaces the value under key.
	Set(ctx context.Context, key string, value []byte) error

	// Ping verifies the backend is reachable.
	Ping(ctx context.Context) error

	// Close releases the backend connection.
	Close() error
}

// ErrNotFound is returned by Get when nothing has been stored under a key.
var ErrNotFound = errors.New("key not found")

// StorageError wraps a backend read or write failure.
type StorageError struct {
	Op      string // get, set
	Backend string
	Key     string
	Err     error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s %s %q: %v", e.Backend, e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func storageErr(backend, op, key string, err error) error {
	return &StorageError{Op: op, Backend: backend, Key: key, Err: err}
}

// kvTable is the single table the SQL backends keep their slots in.
const kvTable = "starcg_kv"
