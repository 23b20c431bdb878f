package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/dmitrijs2005/scrapsync/internal/timex"
)

// fileConfig is the on-disk shape of the config file. Durations accept "30s"
// or integer nanoseconds.
type fileConfig struct {
	DBPath         string         `json:"db_path" yaml:"db_path"`
	LogFile        string         `json:"log_file" yaml:"log_file"`
	LogLevel       string         `json:"log_level" yaml:"log_level"`
	LogFormat      string         `json:"log_format" yaml:"log_format"`
	RequestTimeout timex.Duration `json:"request_timeout" yaml:"request_timeout"`
	WatchDir       string         `json:"watch_dir" yaml:"watch_dir"`
	WatchDebounce  timex.Duration `json:"watch_debounce" yaml:"watch_debounce"`
}

// parseFile overlays cfg with the non-empty values of the file at path. The
// format follows the extension: .yaml/.yml is YAML, anything else JSON.
func parseFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	var fc fileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &fc)
	default:
		err = json.Unmarshal(data, &fc)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	setString(&cfg.DBPath, fc.DBPath)
	setString(&cfg.LogFile, fc.LogFile)
	setString(&cfg.LogLevel, fc.LogLevel)
	setString(&cfg.LogFormat, fc.LogFormat)
	setString(&cfg.WatchDir, fc.WatchDir)
	if fc.RequestTimeout.Duration > 0 {
		cfg.RequestTimeout = fc.RequestTimeout.Duration
	}
	if fc.WatchDebounce.Duration > 0 {
		cfg.WatchDebounce = fc.WatchDebounce.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
