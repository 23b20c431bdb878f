package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/scrapsync/internal/models"
	"github.com/dmitrijs2005/scrapsync/internal/timex"
)

func TestApplySnapshot_UnionRemoteWins(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, WithClock(timex.Fixed(1_000)))

	require.NoError(t, s.PutItem(ctx, item("local", 50, "only here")))
	require.NoError(t, s.PutItem(ctx, item("shared", 60, "old text")))

	remoteShared := item("shared", 60, "new text")
	remoteNew := item("remote", 70, "from afar")
	st := models.DefaultSettings()
	st.SyncProvider = models.ProviderS3

	rep, err := s.ApplySnapshot(ctx, MergeInput{
		Items: []models.Item{remoteShared, remoteNew, {RawContent: "no id"}},
		Index: []models.IndexEntry{
			{ID: "shared", CreatedAt: 60, UpdatedAt: 90, Status: models.StatusArchived, Preview: "remote preview"},
			{ID: "remote", CreatedAt: 70, UpdatedAt: 70, Status: models.StatusInbox, Preview: "from afar..."},
		},
		HasIndex:     true,
		Settings:     &st,
		LastModified: 500,
	})
	require.NoError(t, err)
	assert.Equal(t, MergeReport{Items: 2, Entries: 2}, rep)

	idx, err := s.GetIndex(ctx)
	require.NoError(t, err)
	require.Len(t, idx.Items, 3)
	assert.Equal(t, []string{"remote", "shared", "local"},
		[]string{idx.Items[0].ID, idx.Items[1].ID, idx.Items[2].ID})
	assert.Equal(t, models.StatusArchived, idx.Items[1].Status)
	assert.Equal(t, "remote preview", idx.Items[1].Preview)
	assert.Equal(t, []string{}, idx.Items[0].Tags)
	assert.Equal(t, int64(1_000), idx.LastSyncTime)

	got, err := s.GetItem(ctx, "shared")
	require.NoError(t, err)
	assert.Equal(t, "new text", got.RawContent)

	ts, err := s.GetLastModified(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(500), ts)

	settings, err := s.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ProviderS3, settings.SyncProvider)
}

func TestApplySnapshot_RebuildsIndexWithoutOne(t *testing.T) {
	ctx := context.Background()
	s := newStore(t, WithClock(timex.Fixed(2_000)))

	require.NoError(t, s.PutItem(ctx, item("a", 10, "x")))
	require.NoError(t, s.SetStatus(ctx, "a", models.StatusArchived))

	enriched := item("b", 20, "y")
	enriched.Enrichment = &models.Enrichment{Title: "B", Tags: []string{"t"}}
	_, err := s.ApplySnapshot(ctx, MergeInput{
		Items: []models.Item{item("a", 10, "x2"), enriched},
	})
	require.NoError(t, err)

	idx, err := s.GetIndex(ctx)
	require.NoError(t, err)
	require.Len(t, idx.Items, 2)
	assert.Equal(t, "B", idx.Items[0].Preview)
	assert.Equal(t, models.StatusArchived, idx.Items[1].Status)

	// no LastModified in the input: marker is now
	ts, _ := s.GetLastModified(ctx)
	assert.Equal(t, int64(2_000), ts)

	// settings untouched
	settings, _ := s.Settings(ctx)
	assert.Equal(t, "", settings.SyncProvider)
}

func TestApplySnapshot_EmitsAfterCommit(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	var events []Event
	var seen int
	unsubscribe := s.Subscribe(func(e Event) {
		events = append(events, e)
		// the store is usable from inside the callback
		idx, err := s.GetIndex(ctx)
		require.NoError(t, err)
		seen = len(idx.Items)
	})

	_, err := s.ApplySnapshot(ctx, MergeInput{Items: []models.Item{item("a", 1, "x")}})
	require.NoError(t, err)
	assert.Equal(t, []Event{EventDataUpdated}, events)
	assert.Equal(t, 1, seen)

	unsubscribe()
	_, err = s.ApplySnapshot(ctx, MergeInput{})
	require.NoError(t, err)
	assert.Len(t, events, 1)
}

func TestApplySnapshot_UnknownProviderKeepsLocalSettings(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	local := models.DefaultSettings()
	local.SyncProvider = models.ProviderWebDAV
	local.URL = "https://dav.example.com"
	require.NoError(t, s.SaveSettings(ctx, local))

	foreign := models.DefaultSettings()
	foreign.SyncProvider = "supabase"
	rep, err := s.ApplySnapshot(ctx, MergeInput{
		Items:        []models.Item{item("a", 1, "x")},
		Settings:     &foreign,
		LastModified: 99,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Items)
	assert.False(t, rep.SettingsApplied)

	idx, err := s.GetIndex(ctx)
	require.NoError(t, err)
	require.Len(t, idx.Items, 1)
	assert.Equal(t, "a", idx.Items[0].ID)

	got, err := s.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ProviderWebDAV, got.SyncProvider)
	assert.Equal(t, "https://dav.example.com", got.URL)

	ts, _ := s.GetLastModified(ctx)
	assert.Equal(t, int64(99), ts)
}

func TestApplySnapshot_ReportsAppliedSettings(t *testing.T) {
	ctx := context.Background()
	s := newStore(t)

	incoming := models.DefaultSettings()
	incoming.SyncProvider = models.ProviderS3
	incoming.Bucket = "scraps"
	rep, err := s.ApplySnapshot(ctx, MergeInput{Settings: &incoming})
	require.NoError(t, err)
	assert.True(t, rep.SettingsApplied)

	got, err := s.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "scraps", got.Bucket)
}
