// Package kv implements the key-value persistence used by the storefront.
//
// Two scopes exist, mirroring the browser storage model of the original
// application: a durable scope that survives restarts (SQLiteStore) and an
// ephemeral, session-lifetime scope (MemoryStore). Values are JSON documents.
package kv

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key has no value.
var ErrNotFound = errors.New("key not found")

// Store is the key-value contract both scopes implement. Implementations
// must be safe for concurrent use; read-modify-write sequences spanning
// several calls are not coordinated (last write wins).
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
}
