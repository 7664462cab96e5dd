// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// helpers.go - Shared dependency wiring for CLI handlers.
package cli

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/zrxarchit/codearc-tui/internal/config"
	"github.com/zrxarchit/codearc-tui/internal/keystore"
	"github.com/zrxarchit/codearc-tui/internal/llm"
	"github.com/zrxarchit/codearc-tui/internal/storage"
	"github.com/zrxarchit/codearc-tui/internal/store"
)

// OpenKV opens the key-value backend named by the configuration.
// The caller owns the returned KV and must Close it.
func OpenKV(cfg *config.Config) (storage.KV, error) {
	dir, err := cfg.StateDir()
	if err != nil {
		return nil, fmt.Errorf("resolve state dir: %w", err)
	}

	switch cfg.Storage.Backend {
	case "sqlite":
		kv, err := storage.NewSQLiteKVWithPath(filepath.Join(dir, "codearc.db"))
		if err != nil {
			return nil, err
		}
		return kv, nil
	default:
		kv, err := storage.NewFileKVWithDir(dir)
		if err != nil {
			return nil, err
		}
		return kv, nil
	}
}

// OpenStore builds a fully wired Store from the configuration. When
// modelOverride is non-empty it replaces the configured model for this
// process only.
func OpenStore(cfg *config.Config, modelOverride string, verbose bool) (*store.Store, storage.KV, error) {
	kv, err := OpenKV(cfg)
	if err != nil {
		return nil, nil, err
	}

	modelName := cfg.Provider.Model
	if modelOverride != "" {
		modelName = modelOverride
	}

	logger := openLogger(cfg, verbose)

	st, err := store.New(store.Options{
		Client:          llm.NewOpenAIClient("", cfg.Provider.BaseURL, modelName),
		KV:              kv,
		Keys:            keystore.NewFileKeyStore(keystore.DefaultPath()),
		Logger:          logger,
		MaxOutputTokens: cfg.Provider.MaxOutputTokens,
	})
	if err != nil {
		kv.Close()
		return nil, nil, err
	}
	return st, kv, nil
}

// openLogger returns a logger writing to codearc.log under the state
// dir. Verbose mode logs to stderr instead; an unwritable log file
// degrades to a silent logger.
func openLogger(cfg *config.Config, verbose bool) *log.Logger {
	if verbose {
		return log.New(os.Stderr, "codearc: ", log.LstdFlags)
	}
	dir, err := cfg.StateDir()
	if err != nil {
		return log.New(io.Discard, "", 0)
	}
	f, err := os.OpenFile(filepath.Join(dir, "codearc.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return log.New(io.Discard, "", 0)
	}
	return log.New(f, "", log.LstdFlags)
}
