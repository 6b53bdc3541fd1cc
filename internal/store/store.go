// Package store holds the key-value blob stores the ledger is persisted to.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when no blob is stored under the given key.
var ErrNotFound = errors.New("key not found")

// ErrEmptyKey is returned when trying to read or write a blob with an empty key.
var ErrEmptyKey = errors.New("empty key")

// Supported drivers for Open.
const (
	DriverMemory = "memory"
	DriverFile   = "file"
	DriverSQLite = "sqlite"
)

// Store is a key-value blob store. Values are opaque to the store.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, blob []byte) error
	Close() error
}

// Open instantiates the store for the given driver. path is a directory for
// the file driver and a database file for the sqlite driver; it is ignored
// by the memory driver.
func Open(driver, path string) (Store, error) {
	switch strings.ToLower(strings.TrimSpace(driver)) {
	case DriverMemory:
		return NewMemory(), nil
	case DriverFile:
		s, err := NewFile(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case DriverSQLite:
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

func checkKey(key string) error {
	if key == "" {
		return ErrEmptyKey
	}
	return nil
}
