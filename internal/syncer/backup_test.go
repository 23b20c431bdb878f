package syncer

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/scrapsync/internal/common"
	"github.com/dmitrijs2005/scrapsync/internal/models"
	"github.com/dmitrijs2005/scrapsync/internal/store"
	"github.com/dmitrijs2005/scrapsync/internal/timex"
)

func TestExportImport(t *testing.T) {
	ctx := context.Background()

	src := newStore(t, timex.Fixed(4_000))
	item := models.Item{ID: "A", CreatedAt: 10, UpdatedAt: 10, RawContent: "exported", Note: "n",
		Enrichment: &models.Enrichment{Title: "T", Summary: "S", Tags: []string{"go"}}}
	require.NoError(t, src.PutItem(ctx, item))
	require.NoError(t, src.SetStatus(ctx, "A", models.StatusArchived))
	settings, err := src.Settings(ctx)
	require.NoError(t, err)
	settings.AISettings.Model = "gpt-test"
	require.NoError(t, src.SaveSettings(ctx, settings))

	data, err := New(src, nil, nil).Export(ctx)
	require.NoError(t, err)

	dst := newStore(t, timex.Fixed(9_000))
	var events []store.Event
	dst.Subscribe(func(e store.Event) { events = append(events, e) })

	rep, err := New(dst, nil, nil).Import(ctx, data)
	require.NoError(t, err)
	assert.Equal(t, ImportReport{Items: 1, Entries: 1, SettingsUpdated: true, Timestamp: 4_000}, rep)
	assert.Equal(t, "Imported 1 scraps. Settings updated.", rep.String())
	assert.Equal(t, []store.Event{store.EventDataUpdated}, events)

	got, err := dst.GetItem(ctx, "A")
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(item, *got))

	idx, err := dst.GetIndex(ctx)
	require.NoError(t, err)
	require.Len(t, idx.Items, 1)
	assert.Equal(t, models.StatusArchived, idx.Items[0].Status)
	assert.Equal(t, int64(9_000), idx.LastSyncTime)

	dstSettings, err := dst.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, "gpt-test", dstSettings.AISettings.Model)

	ts, err := dst.GetLastModified(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(4_000), ts)
}

func TestImport_InvalidDocument(t *testing.T) {
	ctx := context.Background()
	st := newStore(t, timex.Fixed(1))
	require.NoError(t, st.PutItem(ctx, models.Item{ID: "keep", CreatedAt: 1, RawContent: "x"}))

	_, err := New(st, nil, nil).Import(ctx, []byte(`{"version":1,"items":[]}`))
	require.ErrorIs(t, err, common.ErrFormat)

	idx, err := st.GetIndex(ctx)
	require.NoError(t, err)
	assert.Len(t, idx.Items, 1)
}

func TestImport_WithoutIndexOrSettings(t *testing.T) {
	ctx := context.Background()
	st := newStore(t, timex.Fixed(7))

	rep, err := New(st, nil, nil).Import(ctx, []byte(`{"articles":[
		{"id":"A","created_at":1,"updated_at":1,"raw_info":"first scrap","user_note":""},
		{"created_at":2,"raw_info":"no id"}
	]}`))
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Items)
	assert.False(t, rep.SettingsUpdated)
	assert.Equal(t, "Imported 1 scraps.", rep.String())

	idx, err := st.GetIndex(ctx)
	require.NoError(t, err)
	require.Len(t, idx.Items, 1)
	assert.Equal(t, "first scrap...", idx.Items[0].Preview)
	assert.Equal(t, models.StatusInbox, idx.Items[0].Status)

	ts, _ := st.GetLastModified(ctx)
	assert.Equal(t, int64(7), ts)
}

func TestImport_ForeignProviderKeepsLocalSettings(t *testing.T) {
	ctx := context.Background()
	st := newStore(t, timex.Fixed(5))

	rep, err := New(st, nil, nil).Import(ctx, []byte(`{
		"version": 1,
		"timestamp": 300,
		"settings": {"sync_provider": "supabase", "supabase_url": "https://x.supabase.co", "supabase_key": "k"},
		"articles": [{"id":"A","created_at":1,"updated_at":2,"raw_info":"from another app","user_note":""}]
	}`))
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Items)
	assert.False(t, rep.SettingsUpdated)
	assert.Equal(t, "Imported 1 scraps.", rep.String())

	got, err := st.GetItem(ctx, "A")
	require.NoError(t, err)
	assert.Equal(t, "from another app", got.RawContent)

	settings, err := st.Settings(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.ProviderWebDAV, settings.Provider())
	assert.Equal(t, models.DefaultTemplates(), settings.PromptTemplates)
}

func TestDescribe(t *testing.T) {
	tests := []struct {
		res  Result
		err  error
		want string
	}{
		{Result{Outcome: OutcomeInitialUpload}, nil, "First upload complete"},
		{Result{Outcome: OutcomeUploaded}, nil, "Upload complete"},
		{Result{Outcome: OutcomeDownloaded, Items: 3}, nil, "Download complete, 3 scraps updated"},
		{Result{Outcome: OutcomeUpToDate}, nil, "Already up to date"},
		{Result{Outcome: OutcomeRemoteEmpty}, nil, "The remote has no data yet"},
		{Result{}, common.ErrFormat, "Sync failed: remote data is not a valid snapshot (invalid snapshot format)"},
		{Result{}, common.NewTransportError("webdav", "get", 500, nil, nil), "Sync failed: webdav get failed: HTTP 500"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Describe(tt.res, tt.err))
	}
}
