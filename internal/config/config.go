// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for
// stagehand.
//
// Configuration is TOML with sensible defaults and environment variable
// overrides.
//
// Configuration file locations (in order of precedence):
//   - ~/.stagehand/config.toml
//   - Built-in defaults
package config

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/jeranaias/stagehand/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete stagehand configuration.
type Config struct {
	Version string `toml:"version"`

	// Presenter holds the presentation surface settings.
	Presenter PresenterConfig `toml:"presenter"`

	// Relay holds session relay settings, both for connecting to a relay
	// and for hosting one.
	Relay RelayConfig `toml:"relay"`
}

// PresenterConfig contains presentation surface configuration.
type PresenterConfig struct {
	// InkColor is the pen color as #rrggbb.
	InkColor string `toml:"ink_color"`
	// InkWidth is the pen base width in logical pixels.
	InkWidth float64 `toml:"ink_width"`
	// LaserColor is the laser pointer color as #rrggbb.
	LaserColor string `toml:"laser_color"`
	// HotReload re-parses the deck when its source file changes.
	HotReload bool `toml:"hot_reload"`
}

// RelayConfig contains session relay configuration.
type RelayConfig struct {
	// URL is the base URL of the relay to share sessions through,
	// e.g. http://relay.example.com:8765.
	URL string `toml:"url"`
	// Listen is the address `stagehand relay` binds to.
	Listen string `toml:"listen"`
	// DBPath is the relay's session database file (empty = default
	// ~/.stagehand/sessions.db).
	DBPath string `toml:"db_path"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config populated with built-in defaults.
func Default() *Config {
	return &Config{
		Version: "1",
		Presenter: PresenterConfig{
			InkColor:   "#ff5964",
			InkWidth:   6,
			LaserColor: "#ff3b30",
			HotReload:  true,
		},
		Relay: RelayConfig{
			URL:    "http://localhost:8765",
			Listen: ":8765",
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the stagehand configuration directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".stagehand"), nil
}

// ConfigPath returns the path to the TOML configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// DefaultDBPath returns the default relay session database path.
func DefaultDBPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "sessions.db"), nil
}

// EnsureConfigDir creates the configuration directory if needed.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	return nil
}

// =============================================================================
// LOADING
// =============================================================================

// Load reads the configuration file, falling back to defaults when no
// file exists, then applies environment overrides.
func Load() (*Config, error) {
	cfg := Default()

	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	if _, statErr := os.Stat(path); statErr == nil {
		if err := loadTOML(cfg, path); err != nil {
			return nil, err
		}
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFromPath reads the configuration from an explicit file.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()
	if err := loadTOML(cfg, path); err != nil {
		return nil, err
	}
	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

// Save writes the configuration to the default location atomically, so
// a crash mid-write never leaves a corrupt config behind.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return util.AtomicWriteFile(path, buf.Bytes(), 0o600)
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// ApplyEnvOverrides applies STAGEHAND_* environment variables on top of
// the loaded file.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("STAGEHAND_RELAY_URL"); v != "" {
		c.Relay.URL = v
	}
	if v := os.Getenv("STAGEHAND_RELAY_LISTEN"); v != "" {
		c.Relay.Listen = v
	}
	if v := os.Getenv("STAGEHAND_RELAY_DB"); v != "" {
		c.Relay.DBPath = v
	}
	if v := os.Getenv("STAGEHAND_INK_COLOR"); v != "" {
		c.Presenter.InkColor = v
	}
	if v := os.Getenv("STAGEHAND_INK_WIDTH"); v != "" {
		if w, err := strconv.ParseFloat(v, 64); err == nil {
			c.Presenter.InkWidth = w
		}
	}
	if v := os.Getenv("STAGEHAND_LASER_COLOR"); v != "" {
		c.Presenter.LaserColor = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for coherence, fixing what it can
// and rejecting what it cannot.
func (c *Config) Validate() error {
	var errs []string

	if !validHexColor(c.Presenter.InkColor) {
		errs = append(errs, fmt.Sprintf("presenter.ink_color: %q is not #rrggbb", c.Presenter.InkColor))
	}
	if !validHexColor(c.Presenter.LaserColor) {
		errs = append(errs, fmt.Sprintf("presenter.laser_color: %q is not #rrggbb", c.Presenter.LaserColor))
	}
	if c.Presenter.InkWidth <= 0 {
		c.Presenter.InkWidth = Default().Presenter.InkWidth
	}
	if c.Relay.URL != "" {
		if u, err := url.Parse(c.Relay.URL); err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			errs = append(errs, fmt.Sprintf("relay.url: %q is not an http(s) URL", c.Relay.URL))
		}
	}

	if len(errs) > 0 {
		return errors.New("invalid config: " + strings.Join(errs, "; "))
	}
	return nil
}

func validHexColor(s string) bool {
	if len(s) != 7 || s[0] != '#' {
		return false
	}
	for _, r := range s[1:] {
		switch {
		case r >= '0' && r <= '9', r >= 'a' && r <= 'f', r >= 'A' && r <= 'F':
		default:
			return false
		}
	}
	return true
}
