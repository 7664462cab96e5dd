// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// setup.go - First-run wizard for the codearc CLI.
//
// Walks through the three things the chat needs: a validated API key,
// the user's name and how CodeArc should address them. Everything is
// optional except the key; re-running overwrites previous answers.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/peterh/liner"

	"github.com/zrxarchit/codearc-tui/internal/config"
	"github.com/zrxarchit/codearc-tui/internal/model"
	"github.com/zrxarchit/codearc-tui/internal/store"
)

// HandleSetup handles the "setup" command.
func HandleSetup(args Args) error {
	if !IsTTY() {
		return &UsageError{Command: "setup", Reason: "setup needs an interactive terminal"}
	}

	cfg := config.Global()
	if err := config.EnsureConfigDir(); err != nil {
		return err
	}

	// Write the config file on first run so users have something to
	// edit by hand.
	if path, err := config.ConfigPath(); err == nil {
		if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
			if err := config.Save(cfg); err != nil {
				return err
			}
		}
	}

	st, kv, err := OpenStore(cfg, args.Model, args.Verbose)
	if err != nil {
		return err
	}
	defer kv.Close()

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	printHeading("CodeArc setup")
	fmt.Println()

	if err := setupAPIKey(line, st); err != nil {
		return err
	}
	if err := setupProfile(line, st); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println("All set! Run codearc to start chatting.")
	return nil
}

// setupAPIKey prompts for and validates the API key. An empty answer
// keeps the existing key when one is already stored.
func setupAPIKey(line *liner.State, st *store.Store) error {
	prompt := "API key: "
	if st.HasAPIKey() {
		prompt = "API key (blank to keep current): "
	}

	for {
		key, err := line.PasswordPrompt(prompt)
		if err != nil {
			return abortErr(err)
		}
		key = strings.TrimSpace(key)

		if key == "" {
			if st.HasAPIKey() {
				fmt.Println("Keeping the current key.")
				return nil
			}
			fmt.Println("A key is required. Get one at https://aistudio.google.com/apikey")
			continue
		}

		fmt.Println("Validating...")
		if st.SetAPIKey(context.Background(), key) {
			fmt.Println("Key accepted.")
			return nil
		}
		msg := st.Error()
		if ColorEnabled() {
			msg = errorStyle.Render(msg)
		}
		fmt.Println(msg)
	}
}

// setupProfile prompts for name and gender; blank answers keep the
// stored values.
func setupProfile(line *liner.State, st *store.Store) error {
	profile := st.Profile()

	namePrompt := "Your name: "
	if profile.UserName != "" {
		namePrompt = fmt.Sprintf("Your name [%s]: ", profile.UserName)
	}
	name, err := line.Prompt(namePrompt)
	if err != nil {
		return abortErr(err)
	}
	if name = strings.TrimSpace(name); name != "" {
		st.SetUserName(name)
	}

	gender, err := line.Prompt(fmt.Sprintf("Gender (male/female) [%s]: ", profile.Gender))
	if err != nil {
		return abortErr(err)
	}
	if gender = strings.TrimSpace(gender); gender != "" {
		st.SetGender(model.ParseGender(gender))
	}
	return nil
}

func abortErr(err error) error {
	if errors.Is(err, liner.ErrPromptAborted) {
		return errors.New("setup aborted")
	}
	return err
}
