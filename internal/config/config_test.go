// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default() config is invalid: %v", err)
	}
	if cfg.Presenter.InkWidth <= 0 {
		t.Error("default ink width must be positive")
	}
}

func TestLoadFromPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
version = "1"

[presenter]
ink_color = "#00ff00"
ink_width = 8.0

[relay]
url = "http://relay.local:9000"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Presenter.InkColor != "#00ff00" {
		t.Errorf("ink_color = %q, want #00ff00", cfg.Presenter.InkColor)
	}
	if cfg.Presenter.InkWidth != 8 {
		t.Errorf("ink_width = %v, want 8", cfg.Presenter.InkWidth)
	}
	if cfg.Relay.URL != "http://relay.local:9000" {
		t.Errorf("relay.url = %q", cfg.Relay.URL)
	}
	// Unset fields keep their defaults.
	if cfg.Presenter.LaserColor != Default().Presenter.LaserColor {
		t.Errorf("laser_color = %q, want default", cfg.Presenter.LaserColor)
	}
}

func TestLoadFromPathRejectsBadColor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[presenter]\nink_color = \"red\"\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Fatal("expected validation error for non-hex ink color")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("STAGEHAND_RELAY_URL", "http://other:1234")
	t.Setenv("STAGEHAND_INK_WIDTH", "12")
	t.Setenv("STAGEHAND_INK_COLOR", "#123456")

	cfg := Default()
	cfg.ApplyEnvOverrides()

	if cfg.Relay.URL != "http://other:1234" {
		t.Errorf("relay.url = %q", cfg.Relay.URL)
	}
	if cfg.Presenter.InkWidth != 12 {
		t.Errorf("ink_width = %v, want 12", cfg.Presenter.InkWidth)
	}
	if cfg.Presenter.InkColor != "#123456" {
		t.Errorf("ink_color = %q", cfg.Presenter.InkColor)
	}
}

func TestEnvOverrideIgnoresBadWidth(t *testing.T) {
	t.Setenv("STAGEHAND_INK_WIDTH", "wide")
	cfg := Default()
	cfg.ApplyEnvOverrides()
	if cfg.Presenter.InkWidth != Default().Presenter.InkWidth {
		t.Errorf("ink_width = %v, want default", cfg.Presenter.InkWidth)
	}
}

func TestValidateFixesNonPositiveWidth(t *testing.T) {
	cfg := Default()
	cfg.Presenter.InkWidth = -1
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if cfg.Presenter.InkWidth != Default().Presenter.InkWidth {
		t.Errorf("ink_width = %v, want clamped to default", cfg.Presenter.InkWidth)
	}
}

func TestValidateRejectsBadRelayURL(t *testing.T) {
	cfg := Default()
	cfg.Relay.URL = "ftp://nope"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for non-http relay URL")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	cfg := Default()
	cfg.Presenter.InkColor = "#abcdef"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Presenter.InkColor != "#abcdef" {
		t.Errorf("ink_color = %q, want #abcdef", loaded.Presenter.InkColor)
	}
}
