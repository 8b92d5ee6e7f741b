// Package core defines the blob abstraction persisting fitted preprocessor
// state, shared by every store driver.
package core

import (
	"context"
	"path"
	"strings"

	"github.com/xh3b4sd/tracer"
)

type Driver string

const (
	DriverFilesystem Driver = "fs"
	DriverMemory     Driver = "memory"
	DriverPostgres   Driver = "postgres"
	DriverS3         Driver = "s3"
	DriverSQLite     Driver = "sqlite"
)

// Store keeps opaque byte payloads under slash separated keys. Put overwrites
// existing payloads. Get and Delete return a notFoundError for unknown keys.
// List returns the keys having the given prefix in lexical order.
type Store interface {
	Delete(ctx context.Context, key string) error
	Driver() Driver
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, pre string) ([]string, error)
	Put(ctx context.Context, key string, byt []byte) error
}

// Key verifies that key is relative, non empty and free of path traversal,
// and returns its clean form.
func Key(key string) (string, error) {
	if strings.TrimSpace(key) == "" {
		return "", tracer.Maskf(invalidKeyError, "key must not be empty")
	}
	if strings.HasPrefix(key, "/") {
		return "", tracer.Maskf(invalidKeyError, "key %q must be relative", key)
	}
	for _, s := range strings.Split(key, "/") {
		if s == ".." {
			return "", tracer.Maskf(invalidKeyError, "key %q must not traverse", key)
		}
	}

	return path.Clean(key), nil
}
