package models

import (
	"sort"
	"strings"
)

// Status is the workflow state of a scrap.
type Status string

const (
	StatusInbox    Status = "inbox"
	StatusArchived Status = "archived"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	return s == StatusInbox || s == StatusArchived
}

// previewRunes is how much raw content the preview keeps when there is no title.
const previewRunes = 50

// IndexEntry is the lightweight listing record kept for every scrap.
type IndexEntry struct {
	ID        string   `json:"id"`
	UpdatedAt int64    `json:"updated_at"`
	CreatedAt int64    `json:"created_at"`
	Deleted   bool     `json:"is_deleted"`
	Status    Status   `json:"status"`
	Preview   string   `json:"preview_text"`
	Tags      []string `json:"tags"`
	Source    string   `json:"source,omitempty"`
	Link      string   `json:"link,omitempty"`
}

// Index is the full listing; Items are ordered newest created first.
type Index struct {
	LastSyncTime int64        `json:"last_sync_time"`
	Items        []IndexEntry `json:"items"`
}

// BuildIndexEntry derives the index entry of item. The entry is never
// tombstoned: writing an item revives it.
func BuildIndexEntry(item Item, status Status) IndexEntry {
	if !status.Valid() {
		status = StatusInbox
	}
	e := IndexEntry{
		ID:        item.ID,
		UpdatedAt: item.UpdatedAt,
		CreatedAt: item.CreatedAt,
		Status:    status,
		Preview:   Preview(item),
		Tags:      []string{},
	}
	if item.Enrichment != nil {
		e.Tags = append(e.Tags, item.Enrichment.Tags...)
		e.Source = item.Enrichment.Source
		e.Link = item.Enrichment.Link
	}
	return e
}

// Preview is the enrichment title when there is one, otherwise the first
// characters of the raw content on a single line followed by an ellipsis.
func Preview(item Item) string {
	if item.Enrichment != nil && item.Enrichment.Title != "" {
		return item.Enrichment.Title
	}
	r := []rune(item.RawContent)
	if len(r) > previewRunes {
		r = r[:previewRunes]
	}
	return strings.ReplaceAll(string(r), "\n", " ") + "..."
}

// SortEntries orders entries by created_at descending, ties by id.
func SortEntries(entries []IndexEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].CreatedAt != entries[j].CreatedAt {
			return entries[i].CreatedAt > entries[j].CreatedAt
		}
		return entries[i].ID < entries[j].ID
	})
}
