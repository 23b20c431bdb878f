package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/scrapsync/internal/common"
	"github.com/dmitrijs2005/scrapsync/internal/models"
)

func TestAddListShow(t *testing.T) {
	d := newDevice(t)

	id := d.capture("remember", "the", "milk", "--note", "before friday")

	list := d.mustRun("list")
	assert.Contains(t, list, id)
	assert.Contains(t, list, "remember the milk...")

	show := d.mustRun("show", id)
	assert.Contains(t, show, "ID:       "+id)
	assert.Contains(t, show, "Note:     before friday")
	assert.Contains(t, show, "remember the milk")
}

func TestAdd_ReadsStdin(t *testing.T) {
	d := newDevice(t)
	d.stdin = "line one\nline two\n"

	id := d.capture()

	show := d.mustRun("show", id)
	assert.Contains(t, show, "line one\nline two")
}

func TestAdd_BlankIsRejected(t *testing.T) {
	d := newDevice(t)
	d.stdin = "   \n"

	_, err := d.run("add")
	require.ErrorIs(t, err, common.ErrValidation)
}

func TestShow_Unknown(t *testing.T) {
	d := newDevice(t)

	_, err := d.run("show", "nope")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestNote(t *testing.T) {
	d := newDevice(t)
	id := d.capture("text")

	assert.Equal(t, "Note saved\n", d.mustRun("note", id, "new", "note"))
	assert.Contains(t, d.mustRun("show", id), "Note:     new note")
}

func TestArchiveTagsAndViews(t *testing.T) {
	d := newDevice(t)
	first := d.capture("first scrap")
	second := d.capture("second scrap")

	d.mustRun("enrich", first, "--title", "Go notes", "--tags", "go,sync", "--source", "blog")
	assert.Contains(t, d.mustRun("archive", first), "Moved "+first+" to archived")

	inbox := d.mustRun("list")
	assert.NotContains(t, inbox, first)
	assert.Contains(t, inbox, second)

	archived := d.mustRun("list", "--archived")
	assert.Contains(t, archived, first)
	assert.Contains(t, archived, "Go notes")
	assert.Contains(t, archived, "#go #sync")
	assert.NotContains(t, archived, second)

	all := d.mustRun("list", "--all")
	assert.Contains(t, all, first)
	assert.Contains(t, all, second)
	assert.Contains(t, all, string(models.StatusArchived))

	assert.Equal(t, "#go #sync\n", d.mustRun("tags"))

	d.mustRun("unarchive", first)
	assert.Contains(t, d.mustRun("list"), first)
	assert.Equal(t, "No tags\n", d.mustRun("tags"))
}

func TestList_Search(t *testing.T) {
	d := newDevice(t)
	golang := d.capture("concurrency in go")
	other := d.capture("sourdough starter")
	d.mustRun("enrich", other, "--tags", "baking")

	out := d.mustRun("list", "sourdough")
	assert.Contains(t, out, other)
	assert.NotContains(t, out, golang)

	out = d.mustRun("list", "#bak")
	assert.Contains(t, out, other)
	assert.NotContains(t, out, golang)

	assert.Equal(t, "No scraps\n", d.mustRun("list", "#concurrency"))
}

func TestList_FlagsAreExclusive(t *testing.T) {
	d := newDevice(t)

	_, err := d.run("list", "--archived", "--all")
	require.Error(t, err)
}

func TestDelete(t *testing.T) {
	d := newDevice(t)
	id := d.capture("short lived")

	assert.Equal(t, "Deleted "+id+"\n", d.mustRun("delete", id))
	assert.Equal(t, "No scraps\n", d.mustRun("list", "--all"))
}

func TestArchive_Unknown(t *testing.T) {
	d := newDevice(t)

	_, err := d.run("archive", "nope")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestEnrich_WithoutAnalyzer(t *testing.T) {
	d := newDevice(t)
	id := d.capture("text")

	_, err := d.run("enrich", id)
	require.ErrorIs(t, err, common.ErrConfiguration)
}

func TestEnrich_WithAnalyzer(t *testing.T) {
	d := newDevice(t)
	id := d.capture("text")
	d.analyzer = &fakeAnalyzer{result: models.Enrichment{Title: "Analyzed", Summary: "short", Tags: []string{"ai"}}}

	out := d.mustRun("enrich", id, "--template", "default_eli5")
	assert.Contains(t, out, "Title:    Analyzed")
	assert.Contains(t, out, "Tags:     #ai")

	want, ok := models.DefaultSettings().Template("default_eli5")
	require.True(t, ok)
	assert.Equal(t, want.Content, d.analyzer.prompt)
}

func TestEnrich_ProviderErrorVerbatim(t *testing.T) {
	d := newDevice(t)
	id := d.capture("text")
	providerErr := errors.New("rate limited: try again in 20s")
	d.analyzer = &fakeAnalyzer{err: providerErr}

	_, err := d.run("enrich", id)
	require.ErrorIs(t, err, providerErr)
	assert.Equal(t, providerErr.Error(), err.Error())
}

func TestEnrich_UnknownTemplate(t *testing.T) {
	d := newDevice(t)
	id := d.capture("text")
	d.analyzer = &fakeAnalyzer{}

	_, err := d.run("enrich", id, "--template", "missing")
	require.ErrorIs(t, err, common.ErrValidation)
}
