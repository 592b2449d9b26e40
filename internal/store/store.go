package store

import (
	"context"
	"errors"
	"fmt"
)

// KV is a flat string key/value store for per-user preferences. Implementations
// are safe for concurrent use by the background checker and a foreground
// command.
type KV interface {
	// Get returns ok=false when key is absent.
	Get(ctx context.Context, key string) (value string, ok bool, err error)
	Set(ctx context.Context, key, value string) error
	// Delete of an absent key is not an error.
	Delete(ctx context.Context, key string) error
	// All returns a copy of every entry.
	All(ctx context.Context) (map[string]string, error)
	Close() error
}

var ErrClosed = errors.New("store closed")

// Open picks a backend by name ("file", "sqlite", "memory").
func Open(backend, path string) (KV, error) {
	switch backend {
	case "", "file":
		return NewFS(path)
	case "sqlite":
		return NewSQLite(path)
	case "memory":
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown state backend %q", backend)
	}
}
