// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config_cmd.go - Configuration management for the codearc CLI.
//
// Command: config [subcommand]
//
// Subcommands:
//
//	show              Show the full configuration (default)
//	path              Print the config file location
//	get <key>         Read one value
//	set <key> <value> Write one value and save
//
// Keys use the section.field form matching the TOML layout, e.g.
// provider.model or playback.word_interval_ms.
package cli

import (
	"fmt"
	"strconv"

	"github.com/zrxarchit/codearc-tui/internal/config"
)

// HandleConfig handles the "config" command.
func HandleConfig(args Args) error {
	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "show":
		return configShow()
	case "path":
		path, err := config.ConfigPath()
		if err != nil {
			return err
		}
		fmt.Println(path)
		return nil
	case "get":
		return configGet(parser.Positional(1))
	case "set":
		return configSet(parser.Positional(1), parser.Positional(2))
	default:
		return &UsageError{Command: "config", Reason: fmt.Sprintf("unknown subcommand %q", parser.Subcommand())}
	}
}

func configShow() error {
	cfg := config.Global()

	printHeading("Provider")
	printKV("base_url", cfg.Provider.BaseURL)
	printKV("model", cfg.Provider.Model)
	printKV("max_output_tokens", strconv.Itoa(cfg.Provider.MaxOutputTokens))

	printHeading("Storage")
	printKV("backend", cfg.Storage.Backend)
	if cfg.Storage.Dir != "" {
		printKV("dir", cfg.Storage.Dir)
	}

	printHeading("Playback")
	printKV("word_interval_ms", strconv.Itoa(cfg.Playback.WordIntervalMs))
	printKV("sentence_pause_ms", strconv.Itoa(cfg.Playback.SentencePauseMs))
	printKV("max_duration_ms", strconv.Itoa(cfg.Playback.MaxDurationMs))

	printHeading("UI")
	printKV("theme", cfg.UI.Theme)
	return nil
}

func configGet(key string) error {
	if key == "" {
		return &UsageError{Command: "config get", Reason: "key required"}
	}
	cfg := config.Global()
	value, ok := lookupConfigKey(cfg, key)
	if !ok {
		return &NotFoundError{Resource: "config key", ID: key}
	}
	fmt.Println(value)
	return nil
}

func configSet(key, value string) error {
	if key == "" || value == "" {
		return &UsageError{Command: "config set", Reason: "usage: config set <key> <value>"}
	}

	// Mutate a fresh load, not the global, so a failed Validate leaves
	// the running config untouched.
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := assignConfigKey(cfg, key, value); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return err
	}
	fmt.Printf("%s = %s\n", key, value)
	return nil
}

// lookupConfigKey maps a section.field key onto its current value.
func lookupConfigKey(cfg *config.Config, key string) (string, bool) {
	switch key {
	case "provider.base_url":
		return cfg.Provider.BaseURL, true
	case "provider.model":
		return cfg.Provider.Model, true
	case "provider.max_output_tokens":
		return strconv.Itoa(cfg.Provider.MaxOutputTokens), true
	case "storage.backend":
		return cfg.Storage.Backend, true
	case "storage.dir":
		return cfg.Storage.Dir, true
	case "playback.word_interval_ms":
		return strconv.Itoa(cfg.Playback.WordIntervalMs), true
	case "playback.sentence_pause_ms":
		return strconv.Itoa(cfg.Playback.SentencePauseMs), true
	case "playback.max_duration_ms":
		return strconv.Itoa(cfg.Playback.MaxDurationMs), true
	case "ui.theme":
		return cfg.UI.Theme, true
	default:
		return "", false
	}
}

// assignConfigKey writes a section.field key, parsing numeric fields.
func assignConfigKey(cfg *config.Config, key, value string) error {
	atoi := func() (int, error) {
		n, err := strconv.Atoi(value)
		if err != nil {
			return 0, &UsageError{Command: "config set", Reason: fmt.Sprintf("%s must be an integer, got %q", key, value)}
		}
		return n, nil
	}

	switch key {
	case "provider.base_url":
		cfg.Provider.BaseURL = value
	case "provider.model":
		cfg.Provider.Model = value
	case "provider.max_output_tokens":
		n, err := atoi()
		if err != nil {
			return err
		}
		cfg.Provider.MaxOutputTokens = n
	case "storage.backend":
		cfg.Storage.Backend = value
	case "storage.dir":
		cfg.Storage.Dir = value
	case "playback.word_interval_ms":
		n, err := atoi()
		if err != nil {
			return err
		}
		cfg.Playback.WordIntervalMs = n
	case "playback.sentence_pause_ms":
		n, err := atoi()
		if err != nil {
			return err
		}
		cfg.Playback.SentencePauseMs = n
	case "playback.max_duration_ms":
		n, err := atoi()
		if err != nil {
			return err
		}
		cfg.Playback.MaxDurationMs = n
	case "ui.theme":
		cfg.UI.Theme = value
	default:
		return &NotFoundError{Resource: "config key", ID: key}
	}
	return nil
}
