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

// MergeInput is the content of a snapshot being folded into the local store.
type MergeInput struct {
	Items []models.Item

	// Index holds the snapshot's entries; when HasIndex is false entries are
	// rebuilt from Items instead.
	Index    []models.IndexEntry
	HasIndex bool

	// Settings, when non-nil and valid, replace the local settings.
	Settings *models.Settings

	// LastModified becomes the local marker; <= 0 means now.
	LastModified int64
}

// MergeReport summarizes an ApplySnapshot call.
type MergeReport struct {
	Items   int
	Entries int

	// SettingsApplied is false when the input carried no settings or
	// settings this store cannot use; local settings are kept then.
	SettingsApplied bool
}

// ApplySnapshot merges in into the store in one transaction:
//   - every item body overwrites the local one (items without id are skipped);
//   - index entries are united by id, the incoming entry wins on collision
//     and local-only entries survive;
//   - settings replace the local ones unless they fail validation, in which
//     case the local settings are kept and the rest is still merged;
//   - last_sync_time becomes now and the marker becomes in.LastModified.
//
// EventDataUpdated is emitted once the transaction has committed.
func (s *Store) ApplySnapshot(ctx context.Context, in MergeInput) (MergeReport, error) {
	var rep MergeReport

	err := s.write(ctx, func(ctx context.Context, r repos) error {
		for _, item := range in.Items {
			if item.ID == "" {
				continue
			}
			body, err := json.Marshal(item)
			if err != nil {
				return fmt.Errorf("encode item %s: %w", item.ID, err)
			}
			if err := r.items.Put(ctx, item.ID, body); err != nil {
				return err
			}
			rep.Items++
		}

		if in.HasIndex {
			for _, e := range in.Index {
				if e.ID == "" {
					continue
				}
				if err := r.index.Upsert(ctx, normalizeEntry(e)); err != nil {
					return err
				}
				rep.Entries++
			}
		} else {
			for _, item := range in.Items {
				if item.ID == "" {
					continue
				}
				status, err := existingStatus(ctx, r, item.ID)
				if err != nil {
					return err
				}
				if err := r.index.Upsert(ctx, models.BuildIndexEntry(item, status)); err != nil {
					return err
				}
				rep.Entries++
			}
		}

		now := s.now()
		if err := r.metadata.SetInt(ctx, metadata.KeyLastSyncTime, now); err != nil {
			return err
		}

		if in.Settings != nil {
			body, err := encodeSettings(*in.Settings)
			switch {
			case errors.Is(err, common.ErrValidation):
				s.log.Warn(ctx, "snapshot settings ignored, keeping local settings", "error", err)
			case err != nil:
				return err
			default:
				if err := r.metadata.Set(ctx, metadata.KeySettings, body); err != nil {
					return err
				}
				rep.SettingsApplied = true
			}
		}

		ts := in.LastModified
		if ts <= 0 {
			ts = now
		}
		return r.metadata.SetInt(ctx, metadata.KeyLastModified, ts)
	})
	if err != nil {
		return MergeReport{}, fmt.Errorf("apply snapshot: %w", err)
	}

	s.log.Info(ctx, "snapshot applied", "items", rep.Items, "entries", rep.Entries, "last_modified", in.LastModified)
	s.emit(EventDataUpdated)
	return rep, nil
}

func normalizeEntry(e models.IndexEntry) models.IndexEntry {
	if !e.Status.Valid() {
		e.Status = models.StatusInbox
	}
	if e.Tags == nil {
		e.Tags = []string{}
	}
	return e
}
