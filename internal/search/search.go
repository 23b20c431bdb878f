// Package search filters the index the way the list view needs: a cheap
// pass over index metadata, falling back to the item bodies only for entries
// the metadata does not match.
package search

import (
	"context"
	"errors"
	"strings"

	"github.com/dmitrijs2005/scrapsync/internal/common"
	"github.com/dmitrijs2005/scrapsync/internal/logging"
	"github.com/dmitrijs2005/scrapsync/internal/models"
)

// Source is the part of the store the engine reads.
type Source interface {
	GetIndex(ctx context.Context) (models.Index, error)
	GetItem(ctx context.Context, id string) (*models.Item, error)
}

type Engine struct {
	src Source
	log logging.Logger
}

func New(src Source, log logging.Logger) *Engine {
	if log == nil {
		log = logging.Nop()
	}
	return &Engine{src: src, log: log}
}

// Search returns the non-deleted entries matching query, in index order.
//
// A query starting with '#' matches tags only. Any other query matches
// preview, tags and source first, then the raw content, note, and enriched
// title and summary of the item body. Matching is case-insensitive.
func (e *Engine) Search(ctx context.Context, query string) ([]models.IndexEntry, error) {
	idx, err := e.src.GetIndex(ctx)
	if err != nil {
		return nil, err
	}

	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]models.IndexEntry, 0, len(idx.Items))

	if tag, ok := strings.CutPrefix(q, "#"); ok {
		for _, entry := range idx.Items {
			if entry.Deleted {
				continue
			}
			if tag == "" || anyContains(entry.Tags, tag) {
				out = append(out, entry)
			}
		}
		return out, nil
	}

	for _, entry := range idx.Items {
		if entry.Deleted {
			continue
		}
		if q == "" || matchesMetadata(entry, q) {
			out = append(out, entry)
			continue
		}
		ok, err := e.matchesBody(ctx, entry.ID, q)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, entry)
		}
	}
	return out, nil
}

func matchesMetadata(e models.IndexEntry, q string) bool {
	return contains(e.Preview, q) || anyContains(e.Tags, q) || contains(e.Source, q)
}

func (e *Engine) matchesBody(ctx context.Context, id, q string) (bool, error) {
	item, err := e.src.GetItem(ctx, id)
	switch {
	case errors.Is(err, common.ErrNotFound), errors.Is(err, common.ErrCorruptItem):
		e.log.Debug(ctx, "search skipped unreadable item", "id", id, "error", err)
		return false, nil
	case err != nil:
		return false, err
	}

	if contains(item.RawContent, q) || contains(item.Note, q) {
		return true, nil
	}
	if en := item.Enrichment; en != nil {
		return contains(en.Title, q) || contains(en.Summary, q), nil
	}
	return false, nil
}

func contains(s, lowerQuery string) bool {
	return strings.Contains(strings.ToLower(s), lowerQuery)
}

func anyContains(values []string, lowerQuery string) bool {
	for _, v := range values {
		if contains(v, lowerQuery) {
			return true
		}
	}
	return false
}
