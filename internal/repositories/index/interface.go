// Package index persists the listing entries of the local store.
package index

import (
	"context"

	"github.com/dmitrijs2005/scrapsync/internal/models"
)

// Repository stores one IndexEntry per scrap. Entries are never removed;
// deletion is a tombstone flag.
type Repository interface {
	// Upsert inserts e or replaces the entry with the same id.
	Upsert(ctx context.Context, e models.IndexEntry) error

	// Get returns the entry of id, or common.ErrNotFound.
	Get(ctx context.Context, id string) (models.IndexEntry, error)

	// List returns all entries, tombstones included, newest created first.
	List(ctx context.Context) ([]models.IndexEntry, error)

	// SetStatus updates status and updated_at. It reports whether id existed.
	SetStatus(ctx context.Context, id string, status models.Status, updatedAt int64) (bool, error)

	// MarkDeleted tombstones id. It reports whether id existed.
	MarkDeleted(ctx context.Context, id string, updatedAt int64) (bool, error)
}
