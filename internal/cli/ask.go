// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question handler for the codearc CLI.
//
// Sends a single question and prints the reply to stdout. The reply is
// rendered as markdown on TTYs and left plain when piped. Ask is
// stateless: it reads the saved profile for the persona but does not
// touch the saved chats.
//
// Examples:
//
//	codearc ask "What is the capital of France?"
//	codearc ask --model gemini-2.0-flash "Explain goroutines"
//	echo "review this" | codearc ask
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/glamour"

	"github.com/zrxarchit/codearc-tui/internal/config"
	"github.com/zrxarchit/codearc-tui/internal/keystore"
	"github.com/zrxarchit/codearc-tui/internal/llm"
	"github.com/zrxarchit/codearc-tui/internal/model"
	"github.com/zrxarchit/codearc-tui/internal/storage"
	"github.com/zrxarchit/codearc-tui/internal/ui/components"
)

// askTimeout bounds the single completion call.
const askTimeout = 2 * time.Minute

// HandleAsk handles the "ask" command.
func HandleAsk(args Args) error {
	cfg := config.Global()

	query := strings.TrimSpace(args.Query)
	if query == "" && !IsTTY() {
		// Piped invocation: the question arrives on stdin.
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		query = strings.TrimSpace(string(data))
	}
	if query == "" {
		return &UsageError{Command: "ask", Reason: "no question given (try: codearc ask \"What is recursion?\")"}
	}

	keys := keystore.NewFileKeyStore(keystore.DefaultPath())
	apiKey, err := keys.Retrieve()
	if err != nil {
		if errors.Is(err, keystore.ErrNoKey) {
			return fmt.Errorf("%w (run: codearc setup)", llm.ErrNoAPIKey)
		}
		return fmt.Errorf("load api key: %w", err)
	}

	modelName := cfg.Provider.Model
	if args.Model != "" {
		modelName = args.Model
	}
	client := llm.NewOpenAIClient(apiKey, cfg.Provider.BaseURL, modelName)

	// Persona follows the saved profile, same as the TUI.
	profile := loadProfile(cfg)
	system := llm.PersonaInstruction(profile.UserName, profile.Gender)

	ctx, cancel := context.WithTimeout(context.Background(), askTimeout)
	defer cancel()

	start := time.Now()
	reply, err := client.Complete(ctx, []llm.Turn{
		{Role: model.RoleUser, Content: query},
	}, system, cfg.Provider.MaxOutputTokens)
	if err != nil {
		return err
	}

	displayReply(reply)

	if !args.Quiet && IsStdoutTTY() {
		summary := fmt.Sprintf("%s · %.1fs", modelName, time.Since(start).Seconds())
		if ColorEnabled() {
			summary = mutedStyle.Render(summary)
		}
		fmt.Fprintln(os.Stderr, summary)
	}
	return nil
}

// loadProfile reads the persisted profile fields, tolerating a missing
// or unreadable backend (ask still works with the default persona).
func loadProfile(cfg *config.Config) model.Profile {
	profile := model.Profile{Gender: model.GenderMale}

	kv, err := OpenKV(cfg)
	if err != nil {
		return profile
	}
	defer kv.Close()

	if name, err := kv.Get(storage.KeyUserName); err == nil {
		profile.UserName = name
	}
	if gender, err := kv.Get(storage.KeyGender); err == nil {
		profile.Gender = model.ParseGender(gender)
	}
	return profile
}

// displayReply renders the reply as markdown on TTYs and prints it
// plain otherwise.
func displayReply(reply string) {
	if !IsStdoutTTY() {
		fmt.Println(reply)
		return
	}

	width := GetTerminalWidth()
	if width > 100 {
		width = 100
	}
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(width),
	)
	if err != nil {
		fmt.Println(components.RenderFences(reply, width))
		return
	}
	out, err := r.Render(reply)
	if err != nil {
		fmt.Println(components.RenderFences(reply, width))
		return
	}
	fmt.Print(out)
}
