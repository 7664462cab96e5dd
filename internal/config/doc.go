// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for codearc.
//
// TOML configuration with sensible defaults, environment variable
// overrides, and validation.
//
// # Key Types
//
//   - Config: Main configuration structure with all settings
//   - ProviderConfig: Chat-completion provider settings
//   - StorageConfig: State persistence settings
//   - PlaybackConfig: Reply typewriter tuning
//
// # Configuration Precedence
//
// Configuration is loaded from (in order of precedence):
//   - Environment variables (CODEARC_*)
//   - ~/.codearc/config.toml
//   - Built-in defaults
//
// # Usage
//
// Load configuration:
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
// Access settings:
//
//	model := cfg.Provider.Model
//	backend := cfg.Storage.Backend
package config
