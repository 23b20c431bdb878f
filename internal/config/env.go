package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
)

// Environment variables.
const (
	EnvFile           = "SCRAPS_ENV_FILE"
	EnvDBPath         = "SCRAPS_DB"
	EnvLogFile        = "SCRAPS_LOG_FILE"
	EnvLogLevel       = "SCRAPS_LOG_LEVEL"
	EnvLogFormat      = "SCRAPS_LOG_FORMAT"
	EnvRequestTimeout = "SCRAPS_REQUEST_TIMEOUT"
	EnvWatchDir       = "SCRAPS_WATCH_DIR"
	EnvWatchDebounce  = "SCRAPS_WATCH_DEBOUNCE"
)

// defaultEnvFile is read when SCRAPS_ENV_FILE is unset. Its absence is not
// an error.
const defaultEnvFile = ".env"

// parseEnv overlays cfg with SCRAPS_* variables. Values from the process
// environment win over the same keys in the .env file.
func parseEnv(cfg *Config, lookup LookupEnv) error {
	path, explicit := lookup(EnvFile)
	if !explicit {
		path = defaultEnvFile
	}
	dotenv, err := godotenv.Read(path)
	if err != nil {
		if !explicit && errors.Is(err, fs.ErrNotExist) {
			dotenv = map[string]string{}
		} else {
			return fmt.Errorf("read env file %s: %w", path, err)
		}
	}

	get := func(key string) (string, bool) {
		if v, ok := lookup(key); ok && v != "" {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok && v != ""
	}

	for key, dst := range map[string]*string{
		EnvDBPath:    &cfg.DBPath,
		EnvLogFile:   &cfg.LogFile,
		EnvLogLevel:  &cfg.LogLevel,
		EnvLogFormat: &cfg.LogFormat,
		EnvWatchDir:  &cfg.WatchDir,
	} {
		if v, ok := get(key); ok {
			*dst = v
		}
	}

	for key, dst := range map[string]*time.Duration{
		EnvRequestTimeout: &cfg.RequestTimeout,
		EnvWatchDebounce:  &cfg.WatchDebounce,
	} {
		v, ok := get(key)
		if !ok {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", key, err)
		}
		*dst = d
	}
	return nil
}
