// Package metadata is a small key/value table for store-wide values: the
// settings blob, the last-modified marker and the last sync time.
package metadata

import (
	"context"
)

// Well-known keys.
const (
	KeySettings     = "settings"
	KeyLastModified = "last_modified"
	KeyLastSyncTime = "last_sync_time"
)

type Repository interface {
	// Get returns nil, nil when key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error

	GetInt(ctx context.Context, key string) (int64, error)
	SetInt(ctx context.Context, key string, value int64) error
}
