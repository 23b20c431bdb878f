package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/scrapsync/internal/common"
	"github.com/dmitrijs2005/scrapsync/internal/syncer"
)

func TestSync_NotConfigured(t *testing.T) {
	d := newDevice(t)

	_, err := d.run("sync")
	require.ErrorIs(t, err, common.ErrConfiguration)
	assert.True(t, strings.HasPrefix(err.Error(), "Sync is not configured"), err.Error())
}

func TestSync_TwoDevices(t *testing.T) {
	dav, srv := newDAVServer(t)
	url := srv.URL + "/dav"

	a := newDevice(t)
	id := a.capture("shared thought")
	out := a.mustRun("remote", "webdav", "--url", url, "--user", "u", "--password", "p", "--test")
	assert.Contains(t, out, "Connection OK")
	assert.Contains(t, out, "Remote set to webdav")

	assert.Equal(t, "First upload complete\n", a.mustRun("sync"))
	assert.Equal(t, 1, dav.putCount())
	assert.Equal(t, "Already up to date\n", a.mustRun("sync"))

	b := newDevice(t)
	b.mustRun("remote", "webdav", "--url", url, "--user", "u", "--password", "p")
	assert.Equal(t, "Download complete, 1 scraps updated\n", b.mustRun("sync"))
	assert.Equal(t, 1, dav.putCount(), "a fresh device does not upload")
	assert.Contains(t, b.mustRun("list"), id)
	assert.Equal(t, "Already up to date\n", b.mustRun("sync"))

	b.mustRun("archive", id)
	assert.Equal(t, "Upload complete\n", b.mustRun("sync"))

	assert.Equal(t, "Download complete, 1 scraps updated\n", a.mustRun("sync"))
	assert.Contains(t, a.mustRun("list", "--archived"), id)
}

func TestSync_RejectedCredentials(t *testing.T) {
	_, srv := newDAVServer(t)

	d := newDevice(t)
	d.capture("text")
	d.mustRun("remote", "webdav", "--url", srv.URL, "--user", "u", "--password", "wrong")

	_, err := d.run("sync")
	require.ErrorIs(t, err, common.ErrUnauthorized)
	assert.Equal(t, "Sync failed: the remote rejected the credentials", err.Error())

	_, err = d.run("remote", "test")
	require.ErrorIs(t, err, common.ErrUnauthorized)
}

func TestRemote_FailedTestDoesNotSave(t *testing.T) {
	_, srv := newDAVServer(t)
	d := newDevice(t)

	_, err := d.run("remote", "webdav", "--url", srv.URL, "--user", "u", "--password", "wrong", "--test")
	require.Error(t, err)

	out := d.mustRun("remote")
	assert.Contains(t, out, "URL:         \n")
	assert.Contains(t, out, "Password:    (not set)")
}

func TestPushPull(t *testing.T) {
	dav, srv := newDAVServer(t)

	a := newDevice(t)
	a.mustRun("remote", "webdav", "--url", srv.URL, "--user", "u", "--password", "p")
	assert.Equal(t, "The remote has no data yet\n", a.mustRun("pull"))

	id := a.capture("pushed")
	assert.Equal(t, "Upload complete\n", a.mustRun("push"))
	assert.Equal(t, 1, dav.putCount())

	b := newDevice(t)
	b.mustRun("remote", "webdav", "--url", srv.URL, "--user", "u", "--password", "p")
	b.capture("local only")
	assert.Equal(t, "Download complete, 1 scraps updated\n", b.mustRun("pull"))

	list := b.mustRun("list")
	assert.Contains(t, list, id)
	assert.Contains(t, list, "local only")
}

func TestRemote_PromptsForSecret(t *testing.T) {
	orig := readPassword
	readPassword = func(int) ([]byte, error) { return []byte("prompted"), nil }
	t.Cleanup(func() { readPassword = orig })

	d := newDevice(t)
	d.mustRun("remote", "webdav", "--url", "https://dav.example.com", "--user", "me")

	out := d.mustRun("remote")
	assert.Contains(t, out, "Provider:    webdav")
	assert.Contains(t, out, "User:        me")
	assert.Contains(t, out, "Password:    ********")
	assert.NotContains(t, out, "prompted")

	d.mustRun("remote", "s3", "--bucket", "scraps", "--access-key", "AK", "--region", "eu-west-1")
	out = d.mustRun("remote")
	assert.Contains(t, out, "Provider:    s3")
	assert.Contains(t, out, "Bucket:      scraps")
	assert.Contains(t, out, "Secret key:  ********")
}

func TestExportImport(t *testing.T) {
	a := newDevice(t)
	id := a.capture("backed up")
	a.mustRun("enrich", id, "--tags", "keep")
	a.mustRun("templates", "save", "--id", "mine", "--name", "Mine", "--content", "Be brief.")

	file := filepath.Join(t.TempDir(), "backup", "scraps.json")
	assert.Equal(t, "Exported to "+file+"\n", a.mustRun("export", file))

	stdout := a.mustRun("export")
	assert.Contains(t, stdout, `"articles"`)
	assert.Contains(t, stdout, "backed up")

	b := newDevice(t)
	assert.Equal(t, "Imported 1 scraps. Settings updated.\n", b.mustRun("import", file))
	assert.Contains(t, b.mustRun("list", "#keep"), id)
	assert.Contains(t, b.mustRun("templates"), "mine")

	c := newDevice(t)
	data, err := os.ReadFile(file)
	require.NoError(t, err)
	c.stdin = string(data)
	assert.Equal(t, "Imported 1 scraps. Settings updated.\n", c.mustRun("import", "-"))
}

func TestImport_Invalid(t *testing.T) {
	d := newDevice(t)
	file := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(file, []byte(`{"version":1}`), 0o600))

	_, err := d.run("import", file)
	require.ErrorIs(t, err, common.ErrFormat)

	_, err = d.run("import", filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestStatusError(t *testing.T) {
	err := &statusError{msg: syncer.Describe(syncer.Result{}, common.ErrSyncInProgress), err: common.ErrSyncInProgress}

	assert.Equal(t, "Sync already in progress", err.Error())
	assert.ErrorIs(t, err, common.ErrSyncInProgress)
}
