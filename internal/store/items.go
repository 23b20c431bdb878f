package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/scrapsync/internal/common"
	"github.com/dmitrijs2005/scrapsync/internal/models"
	"github.com/dmitrijs2005/scrapsync/internal/repositories/metadata"
)

// GetIndex returns the full index, tombstones included, newest created
// first. An empty store yields an empty index with LastSyncTime 0.
func (s *Store) GetIndex(ctx context.Context) (models.Index, error) {
	idx := models.Index{Items: []models.IndexEntry{}}
	err := s.read(ctx, func(ctx context.Context, r repos) error {
		entries, err := r.index.List(ctx)
		if err != nil {
			return err
		}
		if entries != nil {
			idx.Items = entries
		}
		idx.LastSyncTime, err = r.metadata.GetInt(ctx, metadata.KeyLastSyncTime)
		return err
	})
	if err != nil {
		return models.Index{}, fmt.Errorf("get index: %w", err)
	}
	return idx, nil
}

// PutItem stores item and regenerates its index entry. An existing entry
// keeps its status, a new one starts in the inbox, and a tombstone is
// revived.
func (s *Store) PutItem(ctx context.Context, item models.Item) error {
	if item.ID == "" {
		return fmt.Errorf("%w: item has no id", common.ErrValidation)
	}
	body, err := json.Marshal(item)
	if err != nil {
		return fmt.Errorf("encode item %s: %w", item.ID, err)
	}

	return s.write(ctx, func(ctx context.Context, r repos) error {
		if err := r.items.Put(ctx, item.ID, body); err != nil {
			return err
		}
		status, err := existingStatus(ctx, r, item.ID)
		if err != nil {
			return err
		}
		if err := r.index.Upsert(ctx, models.BuildIndexEntry(item, status)); err != nil {
			return err
		}
		return r.metadata.SetInt(ctx, metadata.KeyLastModified, s.now())
	})
}

func existingStatus(ctx context.Context, r repos, id string) (models.Status, error) {
	e, err := r.index.Get(ctx, id)
	if errors.Is(err, common.ErrNotFound) {
		return models.StatusInbox, nil
	}
	if err != nil {
		return "", err
	}
	return e.Status, nil
}

// GetItem returns the decoded body of id: common.ErrNotFound when there is
// none, common.ErrCorruptItem when it does not decode.
func (s *Store) GetItem(ctx context.Context, id string) (*models.Item, error) {
	var body []byte
	err := s.read(ctx, func(ctx context.Context, r repos) error {
		var err error
		body, err = r.items.Get(ctx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return decodeItem(id, body)
}

func decodeItem(id string, body []byte) (*models.Item, error) {
	var item models.Item
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", common.ErrCorruptItem, id, err)
	}
	return &item, nil
}

// SetStatus changes the status of id. Unknown ids are ignored.
func (s *Store) SetStatus(ctx context.Context, id string, status models.Status) error {
	if !status.Valid() {
		return fmt.Errorf("%w: unknown status %q", common.ErrValidation, status)
	}
	return s.write(ctx, func(ctx context.Context, r repos) error {
		now := s.now()
		ok, err := r.index.SetStatus(ctx, id, status, now)
		if err != nil || !ok {
			return err
		}
		return r.metadata.SetInt(ctx, metadata.KeyLastModified, now)
	})
}

// SoftDelete tombstones id. The body is kept so a stale remote copy cannot
// resurrect it. Unknown ids are ignored.
func (s *Store) SoftDelete(ctx context.Context, id string) error {
	return s.write(ctx, func(ctx context.Context, r repos) error {
		now := s.now()
		ok, err := r.index.MarkDeleted(ctx, id, now)
		if err != nil || !ok {
			return err
		}
		return r.metadata.SetInt(ctx, metadata.KeyLastModified, now)
	})
}

// RawItems returns every stored body undecoded, ordered by id.
func (s *Store) RawItems(ctx context.Context) ([]RawItem, error) {
	var out []RawItem
	err := s.read(ctx, func(ctx context.Context, r repos) error {
		var err error
		out, err = r.items.List(ctx)
		return err
	})
	return out, err
}
