// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Provider.MaxOutputTokens != 10000 {
		t.Errorf("default max output tokens = %d, want 10000", cfg.Provider.MaxOutputTokens)
	}
	if cfg.Storage.Backend != "file" {
		t.Errorf("default backend = %q, want file", cfg.Storage.Backend)
	}
}

func TestLoadFromPath_MissingFile(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("missing file should yield defaults, got %v", err)
	}
	if cfg.Provider.Model != Default().Provider.Model {
		t.Errorf("expected default model, got %q", cfg.Provider.Model)
	}
}

func TestLoadFromPath_PartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := "[provider]\nmodel = \"custom-model\"\n\n[playback]\nword_interval_ms = 25\n"
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Provider.Model != "custom-model" {
		t.Errorf("model = %q, want custom-model", cfg.Provider.Model)
	}
	if cfg.Playback.WordIntervalMs != 25 {
		t.Errorf("word interval = %d, want 25", cfg.Playback.WordIntervalMs)
	}
	// Unset values keep defaults.
	if cfg.Provider.MaxOutputTokens != 10000 {
		t.Errorf("max output tokens = %d, want default 10000", cfg.Provider.MaxOutputTokens)
	}
	if cfg.UI.Theme != "auto" {
		t.Errorf("theme = %q, want auto", cfg.UI.Theme)
	}
}

func TestLoadFromPath_EnvOverride(t *testing.T) {
	t.Setenv("CODEARC_MODEL", "env-model")
	t.Setenv("CODEARC_STORAGE_BACKEND", "sqlite")

	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "config.toml"))
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if cfg.Provider.Model != "env-model" {
		t.Errorf("env override should win, got %q", cfg.Provider.Model)
	}
	if cfg.Storage.Backend != "sqlite" {
		t.Errorf("env override should win, got %q", cfg.Storage.Backend)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"bad base url", func(c *Config) { c.Provider.BaseURL = "not a url" }, true},
		{"empty model", func(c *Config) { c.Provider.Model = "  " }, true},
		{"zero tokens", func(c *Config) { c.Provider.MaxOutputTokens = 0 }, true},
		{"unknown backend", func(c *Config) { c.Storage.Backend = "redis" }, true},
		{"sqlite backend", func(c *Config) { c.Storage.Backend = "sqlite" }, false},
		{"bad theme", func(c *Config) { c.UI.Theme = "solarized" }, true},
		{"duration below interval", func(c *Config) { c.Playback.MaxDurationMs = 10 }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "config.toml")

	cfg := Default()
	cfg.Provider.Model = "saved-model"
	cfg.Playback.WordIntervalMs = 30
	if err := SaveToPath(cfg, path); err != nil {
		t.Fatalf("SaveToPath: %v", err)
	}

	loaded, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath: %v", err)
	}
	if loaded.Provider.Model != "saved-model" {
		t.Errorf("model = %q, want saved-model", loaded.Provider.Model)
	}
	if loaded.Playback.WordIntervalMs != 30 {
		t.Errorf("word interval = %d, want 30", loaded.Playback.WordIntervalMs)
	}
}

func TestStateDir_Override(t *testing.T) {
	cfg := Default()
	cfg.Storage.Dir = "/tmp/custom-state"
	dir, err := cfg.StateDir()
	if err != nil {
		t.Fatalf("StateDir: %v", err)
	}
	if dir != "/tmp/custom-state" {
		t.Errorf("StateDir = %q, want override", dir)
	}
}

// Global(), SetGlobal() must be safe to call concurrently.
func TestConfig_ConcurrentGlobalAccess(t *testing.T) {
	ResetGlobalForTesting()
	SetGlobal(Default())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			SetGlobal(Default())
		}()
		go func() {
			defer wg.Done()
			if cfg := Global(); cfg == nil {
				t.Error("Global returned nil")
			}
		}()
	}
	wg.Wait()

	ResetGlobalForTesting()
}
