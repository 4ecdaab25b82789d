// Package config loads engine/bot configuration from a TOML file,
// following the FrankyGo convention of a flat settings file read once at
// startup. Absence of a config file is not an error — baked-in defaults
// apply (spec §10.b).
package config

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
)

// Config holds every value the CLI shells need before they build an
// Engine or adapter. Flags passed on the command line override these.
type Config struct {
	Hash struct {
		SizeMB int `toml:"size_mb"`
	} `toml:"hash"`

	Search struct {
		Threads         int `toml:"threads"`
		SafetyMarginMS int `toml:"safety_margin_ms"`
	} `toml:"search"`

	Params struct {
		BlobPath string `toml:"blob_path"`
	} `toml:"params"`

	Lichess struct {
		Token string `toml:"token"`
	} `toml:"lichess"`
}

// Default returns the baked-in configuration used when no file is
// present or a field is left unset.
func Default() Config {
	var c Config
	c.Hash.SizeMB = 64
	c.Search.Threads = 1
	c.Search.SafetyMarginMS = 50
	return c
}

// SafetyMargin is the configured reserve-time floor as a Duration (TOML
// has no native duration type, so the file stores milliseconds).
func (c Config) SafetyMargin() time.Duration {
	return time.Duration(c.Search.SafetyMarginMS) * time.Millisecond
}

// Load reads path, merging its values over Default(). A missing file is
// not an error — Default() is returned unchanged.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return c, nil
	}

	if _, err := toml.DecodeFile(path, &c); err != nil {
		return Config{}, errors.Wrapf(err, "decode config %s", path)
	}
	return c, nil
}
