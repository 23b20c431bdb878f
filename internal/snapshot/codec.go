// Package snapshot turns the whole local state into one portable document
// and back. The same document shape is uploaded to remotes and written by
// export.
package snapshot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/dmitrijs2005/scrapsync/internal/common"
	"github.com/dmitrijs2005/scrapsync/internal/logging"
	"github.com/dmitrijs2005/scrapsync/internal/models"
	"github.com/dmitrijs2005/scrapsync/internal/store"
)

// Source is the part of the store Encode reads.
type Source interface {
	Settings(ctx context.Context) (models.Settings, error)
	GetIndex(ctx context.Context) (models.Index, error)
	RawItems(ctx context.Context) ([]store.RawItem, error)
	EnsureLastModified(ctx context.Context) (int64, error)
}

type Codec struct {
	src Source
	log logging.Logger
}

func NewCodec(src Source, log logging.Logger) *Codec {
	if log == nil {
		log = logging.Nop()
	}
	return &Codec{src: src, log: log}
}

// Encode assembles the current snapshot. Item bodies that do not decode are
// skipped with a warning. The timestamp is the store's last-modified marker,
// initialized once if it was never set, so encoding an unchanged store twice
// yields the same timestamp.
func (c *Codec) Encode(ctx context.Context) (*models.Document, error) {
	ts, err := c.src.EnsureLastModified(ctx)
	if err != nil {
		return nil, fmt.Errorf("last modified: %w", err)
	}
	settings, err := c.src.Settings(ctx)
	if err != nil {
		return nil, err
	}
	idx, err := c.src.GetIndex(ctx)
	if err != nil {
		return nil, err
	}
	raws, err := c.src.RawItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	articles := make([]models.Item, 0, len(raws))
	for _, raw := range raws {
		var item models.Item
		if err := json.Unmarshal(raw.Body, &item); err != nil {
			c.log.Warn(ctx, "skipping corrupt item", "id", raw.ID, "error", err)
			continue
		}
		articles = append(articles, item)
	}

	return &models.Document{
		Version:     models.DocumentVersion,
		Timestamp:   ts,
		Settings:    settings,
		Index:       idx,
		Articles:    articles,
		HasIndex:    true,
		HasSettings: true,
	}, nil
}

// Marshal renders doc as indented JSON.
func Marshal(doc *models.Document) ([]byte, error) {
	return json.MarshalIndent(doc, "", "  ")
}

// wireDocument keeps each section raw so absence can be told apart from an
// empty value.
type wireDocument struct {
	Version   int             `json:"version"`
	Timestamp json.Number     `json:"timestamp"`
	Settings  json.RawMessage `json:"settings"`
	Index     *struct {
		LastSyncTime int64             `json:"last_sync_time"`
		Items        []json.RawMessage `json:"items"`
	} `json:"index"`
	Articles json.RawMessage `json:"articles"`
}

// Decode parses a snapshot document. It fails with common.ErrFormat when the
// input is not JSON or has no articles array. A missing timestamp reads as 0
// and settings of any schema version are migrated.
func Decode(data []byte) (*models.Document, error) {
	var w wireDocument
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&w); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrFormat, err)
	}

	articles, err := decodeArticles(w.Articles)
	if err != nil {
		return nil, err
	}

	doc := &models.Document{Version: w.Version, Articles: articles}

	if w.Timestamp != "" {
		ts, err := w.Timestamp.Float64()
		if err != nil {
			return nil, fmt.Errorf("%w: timestamp: %v", common.ErrFormat, err)
		}
		doc.Timestamp = int64(ts)
	}

	if len(w.Settings) > 0 && string(w.Settings) != "null" {
		st, err := models.MigrateSettings(w.Settings)
		if err != nil {
			return nil, fmt.Errorf("%w: settings: %v", common.ErrFormat, err)
		}
		doc.Settings = st
		doc.HasSettings = true
	}

	if w.Index != nil && w.Index.Items != nil {
		doc.HasIndex = true
		doc.Index.LastSyncTime = w.Index.LastSyncTime
		doc.Index.Items = make([]models.IndexEntry, 0, len(w.Index.Items))
		for i, raw := range w.Index.Items {
			var e models.IndexEntry
			if err := json.Unmarshal(raw, &e); err != nil {
				return nil, fmt.Errorf("%w: index entry %d: %v", common.ErrFormat, i, err)
			}
			doc.Index.Items = append(doc.Index.Items, e)
		}
	}

	return doc, nil
}

func decodeArticles(raw json.RawMessage) ([]models.Item, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, fmt.Errorf("%w: missing articles array", common.ErrFormat)
	}
	var items []models.Item
	if err := json.Unmarshal(trimmed, &items); err != nil {
		return nil, fmt.Errorf("%w: articles: %v", common.ErrFormat, err)
	}
	if items == nil {
		items = []models.Item{}
	}
	return items, nil
}
