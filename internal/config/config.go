// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for codearc.
package config

import (
	"bytes"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"

	"github.com/zrxarchit/codearc-tui/internal/util"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete codearc configuration.
type Config struct {
	// Version of the config schema.
	Version string `toml:"version"`

	// Provider is the chat-completion provider configuration.
	Provider ProviderConfig `toml:"provider"`

	// Storage is the state persistence configuration.
	Storage StorageConfig `toml:"storage"`

	// Playback tunes the reply typewriter.
	Playback PlaybackConfig `toml:"playback"`

	// UI configuration.
	UI UIConfig `toml:"ui"`
}

// ProviderConfig contains chat-completion provider configuration.
type ProviderConfig struct {
	// BaseURL is the OpenAI-compatible endpoint. Empty uses the
	// provider's default endpoint.
	BaseURL string `toml:"base_url"`
	// Model is the model identifier sent with every request.
	Model string `toml:"model"`
	// MaxOutputTokens bounds a single reply.
	MaxOutputTokens int `toml:"max_output_tokens"`
}

// StorageConfig contains state persistence configuration.
type StorageConfig struct {
	// Backend selects the key-value store: "file" or "sqlite".
	Backend string `toml:"backend"`
	// Dir overrides the state directory (empty = ~/.codearc/state).
	Dir string `toml:"dir"`
}

// PlaybackConfig tunes the reply typewriter.
type PlaybackConfig struct {
	// WordIntervalMs is the base delay between revealed chunks.
	WordIntervalMs int `toml:"word_interval_ms"`
	// SentencePauseMs is the extra delay after sentence-ending
	// punctuation.
	SentencePauseMs int `toml:"sentence_pause_ms"`
	// MaxDurationMs caps the total playback time for one reply; chunk
	// sizes grow on long replies to stay under it.
	MaxDurationMs int `toml:"max_duration_ms"`
}

// UIConfig contains UI configuration.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto".
	Theme string `toml:"theme"`
}

// =============================================================================
// DEFAULTS
// =============================================================================

// Default returns a Config populated with built-in defaults.
func Default() *Config {
	return &Config{
		Version: "1",
		Provider: ProviderConfig{
			BaseURL:         "https://generativelanguage.googleapis.com/v1beta/openai",
			Model:           "gemini-2.0-flash",
			MaxOutputTokens: 10000,
		},
		Storage: StorageConfig{
			Backend: "file",
		},
		Playback: PlaybackConfig{
			WordIntervalMs:  50,
			SentencePauseMs: 150,
			MaxDurationMs:   20000,
		},
		UI: UIConfig{
			Theme: "auto",
		},
	}
}

// =============================================================================
// PATHS
// =============================================================================

// ConfigDir returns the codearc configuration directory.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to determine home directory: %w", err)
	}
	return filepath.Join(home, ".codearc"), nil
}

// ConfigPath returns the path of the TOML configuration file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureConfigDir creates the configuration directory if needed.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return nil
}

// =============================================================================
// LOAD
// =============================================================================

// Load reads the configuration file, fills defaults, applies environment
// overrides, and validates the result. A missing file yields defaults.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific TOML file. A missing
// file is not an error; defaults are used.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
		fillDefaults(cfg)
	}

	cfg.ApplyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// fillDefaults fills in any missing values with defaults.
func fillDefaults(cfg *Config) {
	defaults := Default()

	if cfg.Version == "" {
		cfg.Version = defaults.Version
	}
	if cfg.Provider.BaseURL == "" {
		cfg.Provider.BaseURL = defaults.Provider.BaseURL
	}
	if cfg.Provider.Model == "" {
		cfg.Provider.Model = defaults.Provider.Model
	}
	if cfg.Provider.MaxOutputTokens <= 0 {
		cfg.Provider.MaxOutputTokens = defaults.Provider.MaxOutputTokens
	}
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = defaults.Storage.Backend
	}
	if cfg.Playback.WordIntervalMs <= 0 {
		cfg.Playback.WordIntervalMs = defaults.Playback.WordIntervalMs
	}
	if cfg.Playback.SentencePauseMs <= 0 {
		cfg.Playback.SentencePauseMs = defaults.Playback.SentencePauseMs
	}
	if cfg.Playback.MaxDurationMs <= 0 {
		cfg.Playback.MaxDurationMs = defaults.Playback.MaxDurationMs
	}
	if cfg.UI.Theme == "" {
		cfg.UI.Theme = defaults.UI.Theme
	}
}

// ApplyEnvOverrides applies CODEARC_* environment variables over the
// loaded configuration.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("CODEARC_BASE_URL"); v != "" {
		c.Provider.BaseURL = v
	}
	if v := os.Getenv("CODEARC_MODEL"); v != "" {
		c.Provider.Model = v
	}
	if v := os.Getenv("CODEARC_MAX_OUTPUT_TOKENS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Provider.MaxOutputTokens = n
		}
	}
	if v := os.Getenv("CODEARC_STORAGE_BACKEND"); v != "" {
		c.Storage.Backend = v
	}
	if v := os.Getenv("CODEARC_STATE_DIR"); v != "" {
		c.Storage.Dir = v
	}
	if v := os.Getenv("CODEARC_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

// Validate checks the configuration for inconsistent values.
func (c *Config) Validate() error {
	if c.Provider.BaseURL != "" {
		u, err := url.Parse(c.Provider.BaseURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
			return fmt.Errorf("provider.base_url: %q is not a valid http(s) URL", c.Provider.BaseURL)
		}
	}
	if strings.TrimSpace(c.Provider.Model) == "" {
		return fmt.Errorf("provider.model must not be empty")
	}
	if c.Provider.MaxOutputTokens <= 0 {
		return fmt.Errorf("provider.max_output_tokens must be positive, got %d", c.Provider.MaxOutputTokens)
	}
	switch c.Storage.Backend {
	case "file", "sqlite":
	default:
		return fmt.Errorf("storage.backend: %q is not one of \"file\", \"sqlite\"", c.Storage.Backend)
	}
	if c.Playback.WordIntervalMs <= 0 {
		return fmt.Errorf("playback.word_interval_ms must be positive, got %d", c.Playback.WordIntervalMs)
	}
	if c.Playback.MaxDurationMs < c.Playback.WordIntervalMs {
		return fmt.Errorf("playback.max_duration_ms must be at least word_interval_ms")
	}
	switch c.UI.Theme {
	case "dark", "light", "auto":
	default:
		return fmt.Errorf("ui.theme: %q is not one of \"dark\", \"light\", \"auto\"", c.UI.Theme)
	}
	return nil
}

// =============================================================================
// SAVE
// =============================================================================

// Save writes the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveToPath(cfg, path)
}

// SaveToPath writes the configuration to the given TOML file atomically
// with owner-only permissions.
func SaveToPath(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString("# codearc configuration file\n")
	buf.WriteString("# Generated by codearc - edit with care\n\n")
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, buf.Bytes(), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// STATE DIRECTORY
// =============================================================================

// StateDir resolves the directory holding persisted chat state.
func (c *Config) StateDir() (string, error) {
	if c.Storage.Dir != "" {
		return c.Storage.Dir, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "state"), nil
}

// =============================================================================
// GLOBAL CONFIG INSTANCE
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance. Loads configuration
// on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
