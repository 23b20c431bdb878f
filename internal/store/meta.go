package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/scrapsync/internal/common"
	"github.com/dmitrijs2005/scrapsync/internal/models"
	"github.com/dmitrijs2005/scrapsync/internal/repositories/metadata"
)

// GetLastModified returns the last-modified marker, 0 when never set.
func (s *Store) GetLastModified(ctx context.Context) (int64, error) {
	var ts int64
	err := s.read(ctx, func(ctx context.Context, r repos) error {
		var err error
		ts, err = r.metadata.GetInt(ctx, metadata.KeyLastModified)
		return err
	})
	return ts, err
}

// BumpLastModified sets the marker to ts, or to now when ts <= 0.
func (s *Store) BumpLastModified(ctx context.Context, ts int64) error {
	return s.write(ctx, func(ctx context.Context, r repos) error {
		if ts <= 0 {
			ts = s.now()
		}
		return r.metadata.SetInt(ctx, metadata.KeyLastModified, ts)
	})
}

// EnsureLastModified returns the marker, initializing it first when it was
// never set: to the newest updated_at (created_at when that is missing) in
// the index, or to now for an empty index. The value is persisted so later
// calls return the same timestamp.
func (s *Store) EnsureLastModified(ctx context.Context) (int64, error) {
	var ts int64
	err := s.write(ctx, func(ctx context.Context, r repos) error {
		var err error
		ts, err = r.metadata.GetInt(ctx, metadata.KeyLastModified)
		if err != nil || ts != 0 {
			return err
		}
		entries, err := r.index.List(ctx)
		if err != nil {
			return err
		}
		for _, e := range entries {
			v := e.UpdatedAt
			if v == 0 {
				v = e.CreatedAt
			}
			ts = max(ts, v)
		}
		if ts == 0 {
			ts = s.now()
		}
		s.log.Info(ctx, "initialized last-modified marker", "ts", ts)
		return r.metadata.SetInt(ctx, metadata.KeyLastModified, ts)
	})
	return ts, err
}

// Settings returns the stored settings migrated to the current schema, or
// the defaults when nothing was saved yet.
func (s *Store) Settings(ctx context.Context) (models.Settings, error) {
	var raw []byte
	err := s.read(ctx, func(ctx context.Context, r repos) error {
		var err error
		raw, err = r.metadata.Get(ctx, metadata.KeySettings)
		return err
	})
	if err != nil {
		return models.Settings{}, fmt.Errorf("get settings: %w", err)
	}

	st, err := models.MigrateSettings(raw)
	if err != nil {
		s.log.Warn(ctx, "stored settings unreadable, using defaults", "error", err)
		return models.DefaultSettings(), nil
	}
	return st, nil
}

// SaveSettings replaces the settings wholesale and stamps the marker.
func (s *Store) SaveSettings(ctx context.Context, st models.Settings) error {
	body, err := encodeSettings(st)
	if err != nil {
		return err
	}
	return s.write(ctx, func(ctx context.Context, r repos) error {
		if err := r.metadata.Set(ctx, metadata.KeySettings, body); err != nil {
			return err
		}
		return r.metadata.SetInt(ctx, metadata.KeyLastModified, s.now())
	})
}

func encodeSettings(st models.Settings) ([]byte, error) {
	if err := st.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrValidation, err)
	}
	st.SchemaVersion = models.SettingsSchemaVersion
	if st.PromptTemplates == nil {
		st.PromptTemplates = []models.PromptTemplate{}
	}
	body, err := json.Marshal(st)
	if err != nil {
		return nil, fmt.Errorf("encode settings: %w", err)
	}
	return body, nil
}
