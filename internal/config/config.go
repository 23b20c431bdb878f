// Package config holds the runtime configuration of the scraps CLI.
//
// Sources are layered, later ones winning: built-in defaults, a JSON or YAML
// config file (-c/--config), a .env file plus SCRAPS_* environment variables,
// and finally command-line flags, which the CLI registers with the loaded
// values as their defaults.
//
// Remote credentials and AI configuration are not runtime config: they are
// application settings stored in the database and carried in snapshots.
package config

import (
	"time"

	"github.com/dmitrijs2005/scrapsync/internal/flagx"
)

// Config holds runtime settings for the scraps CLI.
type Config struct {
	// DBPath is the SQLite database file.
	DBPath string

	LogFile   string
	LogLevel  string
	LogFormat string

	// RequestTimeout bounds every remote call.
	RequestTimeout time.Duration

	// WatchDir is the drop folder used by "scraps watch".
	WatchDir      string
	WatchDebounce time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.DBPath = "scraps.db"
	c.LogFile = ""
	c.LogLevel = "info"
	c.LogFormat = "text"
	c.RequestTimeout = 30 * time.Second
	c.WatchDir = "inbox"
	c.WatchDebounce = 500 * time.Millisecond
}

// LookupEnv matches os.LookupEnv.
type LookupEnv func(key string) (string, bool)

// Load builds a Config from defaults, the config file named in args (if
// any) and the environment. Flags are applied later by the command tree.
func Load(args []string, lookup LookupEnv) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path := flagx.ConfigFile(args); path != "" {
		if err := parseFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := parseEnv(cfg, lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}
