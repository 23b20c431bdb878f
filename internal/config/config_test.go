package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envOf(m map[string]string) LookupEnv {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, "scraps.db", c.DBPath)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, "text", c.LogFormat)
	assert.Equal(t, 30*time.Second, c.RequestTimeout)
	assert.Equal(t, "inbox", c.WatchDir)
	assert.Equal(t, 500*time.Millisecond, c.WatchDebounce)
}

func TestLoad_DefaultsWithoutSources(t *testing.T) {
	cfg, err := Load(nil, envOf(map[string]string{EnvFile: writeFile(t, "empty.env", "")}))
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Equal(t, want, *cfg)
}

func TestLoad_JSONFile(t *testing.T) {
	path := writeFile(t, "scraps.json", `{
		"db_path": "/data/s.db",
		"log_level": "debug",
		"request_timeout": "5s",
		"watch_debounce": 1000000000
	}`)

	cfg, err := Load([]string{"list", "-c", path}, envOf(map[string]string{EnvFile: writeFile(t, "e.env", "")}))
	require.NoError(t, err)

	assert.Equal(t, "/data/s.db", cfg.DBPath)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.Equal(t, time.Second, cfg.WatchDebounce)
	assert.Equal(t, "text", cfg.LogFormat, "unset keys keep defaults")
}

func TestLoad_YAMLFile(t *testing.T) {
	path := writeFile(t, "scraps.yaml", "db_path: y.db\nlog_format: json\nwatch_dir: drop\nrequest_timeout: 2m\n")

	cfg, err := Load([]string{"--config=" + path}, envOf(map[string]string{EnvFile: writeFile(t, "e.env", "")}))
	require.NoError(t, err)

	assert.Equal(t, "y.db", cfg.DBPath)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, "drop", cfg.WatchDir)
	assert.Equal(t, 2*time.Minute, cfg.RequestTimeout)
}

func TestLoad_FileErrors(t *testing.T) {
	noEnv := envOf(map[string]string{EnvFile: writeFile(t, "e.env", "")})

	_, err := Load([]string{"-c", filepath.Join(t.TempDir(), "missing.json")}, noEnv)
	require.Error(t, err)

	bad := writeFile(t, "bad.json", "{not json")
	_, err = Load([]string{"-c", bad}, noEnv)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config file")
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeFile(t, "scraps.json", `{"db_path": "file.db", "log_level": "warn"}`)
	dotenv := writeFile(t, "scraps.env", "SCRAPS_DB=dotenv.db\nSCRAPS_LOG_LEVEL=error\nSCRAPS_WATCH_DEBOUNCE=2s\n")

	cfg, err := Load([]string{"-c", path}, envOf(map[string]string{
		EnvFile:   dotenv,
		EnvDBPath: "process.db",
	}))
	require.NoError(t, err)

	assert.Equal(t, "process.db", cfg.DBPath, "process env wins over .env")
	assert.Equal(t, "error", cfg.LogLevel, ".env wins over the config file")
	assert.Equal(t, 2*time.Second, cfg.WatchDebounce)
}

func TestLoad_EnvErrors(t *testing.T) {
	_, err := Load(nil, envOf(map[string]string{EnvFile: filepath.Join(t.TempDir(), "missing.env")}))
	require.Error(t, err, "an explicitly named env file must exist")

	_, err = Load(nil, envOf(map[string]string{
		EnvFile:           writeFile(t, "e.env", ""),
		EnvRequestTimeout: "soon",
	}))
	require.Error(t, err)
	assert.Contains(t, err.Error(), EnvRequestTimeout)
}
