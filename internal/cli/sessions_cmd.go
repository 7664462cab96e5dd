// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// sessions_cmd.go - Saved chat management for the codearc CLI.
//
// Command: sessions [subcommand]
// Aliases: session
//
// Subcommands:
//
//	list            List all saved chats (default)
//	show <n>        Print a chat transcript
//	export <n>      Export a chat to a file (--format txt|md|json)
//	delete <n>      Delete a chat (--confirm to skip the prompt)
//	clear           Delete all chats (--confirm to skip the prompt)
//	stats           Show session statistics
//
// Chats are addressed by their 1-based position in the list output.
package cli

import (
	"fmt"
	"strconv"

	"github.com/zrxarchit/codearc-tui/internal/config"
	"github.com/zrxarchit/codearc-tui/internal/export"
	"github.com/zrxarchit/codearc-tui/internal/model"
	"github.com/zrxarchit/codearc-tui/internal/storage"
	"github.com/zrxarchit/codearc-tui/internal/util"
)

// HandleSessions handles the "sessions" command.
func HandleSessions(args Args) error {
	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "list", "ls", "l":
		return sessionsList()
	case "show":
		return sessionsShow(parser)
	case "export":
		return sessionsExport(parser)
	case "delete", "rm":
		return sessionsDelete(parser, args)
	case "clear", "delete-all":
		return sessionsClear(parser, args)
	case "stats":
		return sessionsStats()
	default:
		return &UsageError{Command: "sessions", Reason: fmt.Sprintf("unknown subcommand %q", parser.Subcommand())}
	}
}

// loadSessions reads the saved chats straight from the KV backend.
func loadSessions() ([]*model.ChatSession, error) {
	kv, err := OpenKV(config.Global())
	if err != nil {
		return nil, err
	}
	defer kv.Close()

	return storage.NewSessionStore(kv).Load()
}

// sessionAt resolves a 1-based index from the parser's positionals.
func sessionAt(sessions []*model.ChatSession, raw string) (*model.ChatSession, error) {
	if raw == "" {
		return nil, &UsageError{Command: "sessions", Reason: "chat number required (see: codearc sessions list)"}
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 || n > len(sessions) {
		return nil, &NotFoundError{Resource: "chat", ID: raw}
	}
	return sessions[n-1], nil
}

func sessionsList() error {
	sessions, err := loadSessions()
	if err != nil {
		return err
	}
	if len(sessions) == 0 {
		fmt.Println("No saved chats.")
		return nil
	}

	printHeading("Saved chats")
	for i, s := range sessions {
		title := s.Title
		if title == "" {
			title = model.DefaultTitle
		}
		line := fmt.Sprintf("  %2d. %-20s %3d messages  %s",
			i+1, title, len(s.Messages), s.CreatedAt.Format("2006-01-02 15:04"))
		fmt.Println(line)
	}
	return nil
}

func sessionsShow(parser *ArgParser) error {
	sessions, err := loadSessions()
	if err != nil {
		return err
	}
	session, err := sessionAt(sessions, parser.Positional(1))
	if err != nil {
		return err
	}

	printHeading(session.Title)
	if len(session.Messages) == 0 {
		fmt.Println("  (empty chat)")
		return nil
	}
	for _, msg := range session.Messages {
		name := msg.Role.DisplayName()
		if ColorEnabled() {
			if msg.Role == model.RoleUser {
				name = userStyle.Render(name)
			} else {
				name = assistantStyle.Render(name)
			}
		}
		fmt.Printf("%s:\n%s\n\n", name, msg.Content)
	}
	return nil
}

func sessionsExport(parser *ArgParser) error {
	sessions, err := loadSessions()
	if err != nil {
		return err
	}
	session, err := sessionAt(sessions, parser.Positional(1))
	if err != nil {
		return err
	}

	var exporter export.Exporter
	switch format := parser.FlagOrDefault("format", "txt"); format {
	case "txt", "text":
		exporter = export.NewTextExporter()
	case "md", "markdown":
		exporter = export.NewMarkdownExporter()
	case "json":
		exporter = export.NewJSONExporter()
	default:
		return &UsageError{Command: "sessions export", Reason: fmt.Sprintf("unknown format %q (want txt, md or json)", format)}
	}

	opts := export.DefaultOptions()
	if dir := parser.Flag("output"); dir != "" {
		opts.OutputDir = dir
	}
	opts.OpenAfterExport = parser.BoolFlag("open")

	path, err := export.ExportToFile(session, exporter, opts)
	if err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", path)
	return nil
}

func sessionsDelete(parser *ArgParser, args Args) error {
	sessions, err := loadSessions()
	if err != nil {
		return err
	}
	session, err := sessionAt(sessions, parser.Positional(1))
	if err != nil {
		return err
	}

	if !parser.BoolFlag("confirm") {
		if !Confirm(fmt.Sprintf("Delete chat %q?", session.Title)) {
			fmt.Println("Aborted.")
			return nil
		}
	}

	st, kv, err := OpenStore(config.Global(), "", args.Verbose)
	if err != nil {
		return err
	}
	defer kv.Close()

	st.DeleteChat(session.ID)
	fmt.Printf("Deleted chat %q.\n", session.Title)
	return nil
}

func sessionsClear(parser *ArgParser, args Args) error {
	if !parser.BoolFlag("confirm") {
		if !Confirm("Delete ALL saved chats?") {
			fmt.Println("Aborted.")
			return nil
		}
	}

	st, kv, err := OpenStore(config.Global(), "", args.Verbose)
	if err != nil {
		return err
	}
	defer kv.Close()

	st.ClearChatHistory()
	fmt.Println("All chats deleted.")
	return nil
}

func sessionsStats() error {
	sessions, err := loadSessions()
	if err != nil {
		return err
	}

	var messages, userMessages, runes int
	for _, s := range sessions {
		messages += len(s.Messages)
		for _, msg := range s.Messages {
			if msg.Role == model.RoleUser {
				userMessages++
			}
			runes += len([]rune(msg.Content))
		}
	}

	printHeading("Session statistics")
	printKV("Chats", strconv.Itoa(len(sessions)))
	printKV("Messages", strconv.Itoa(messages))
	printKV("From you", strconv.Itoa(userMessages))
	printKV("From CodeArc", strconv.Itoa(messages-userMessages))
	if len(sessions) > 0 {
		printKV("Oldest chat", sessions[0].CreatedAt.Format("2006-01-02"))
		longest := sessions[0]
		for _, s := range sessions[1:] {
			if len(s.Messages) > len(longest.Messages) {
				longest = s
			}
		}
		printKV("Longest chat", util.TruncateRunes(longest.Title, 24))
	}
	return nil
}
