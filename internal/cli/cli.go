// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for codearc.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdSessions
	CmdConfig
	CmdSetup
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	Model   string

	// Command-specific
	Query      string
	Subcommand string

	// Raw args remaining after the command word and global flags.
	Raw []string
}

const usageText = `codearc - your Hinglish AI buddy in the terminal

CodeArc is a chat assistant that talks to you like a friend. Replies
stream in word by word, sessions persist across runs, and everything
lives under ~/.codearc.

Usage:
  codearc                      Start the chat TUI (default)
  codearc ask "question"       Ask a single question
  codearc sessions [subcmd]    Manage saved chats
  codearc export <n>           Alias for sessions export
  codearc config [subcmd]      Configuration
  codearc setup                First-run wizard
  codearc version              Version information

Session Commands:
  codearc sessions list              List all saved chats
  codearc sessions show <n>          Show chat transcript
  codearc sessions export <n>        Export a chat to a file
    --format txt|md|json             Export format (default: txt)
    --output DIR                     Output directory (default: .)
  codearc sessions delete <n>        Delete a chat
    --confirm                        Skip the confirmation prompt
  codearc sessions clear             Delete all chats
    --confirm                        Skip the confirmation prompt
  codearc sessions stats             Show session statistics

Config Commands:
  codearc config show                Show current configuration
  codearc config path                Print the config file location
  codearc config get <key>           Read one value
  codearc config set <key> <value>   Write one value

  Keys: provider.base_url, provider.model, provider.max_output_tokens,
        storage.backend, ui.theme

Global Flags:
  -q, --quiet     Minimal output
  --verbose       Debug output
  --model NAME    Override the configured model for this run

Examples:
  codearc                             Start the TUI
  codearc ask "What is recursion?"    One-shot question
  codearc ask --model gemini-2.0-flash "Explain goroutines"
  echo "review this" | codearc ask    Read the question from stdin
  codearc sessions export 1 --format md
  codearc config set ui.theme dark
  codearc setup                       Configure API key and profile

Version: %s
`

// PrintUsage prints the usage/help text.
func PrintUsage() {
	fmt.Printf(usageText, Version)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("codearc version %s\n", Version)
	fmt.Printf("  Git commit: %s\n", GitCommit)
	fmt.Printf("  Build date: %s\n", BuildDate)
	fmt.Printf("  Go version: %s\n", runtime.Version())
}

// Parse parses command-line arguments and returns the command and args.
func Parse() (Command, Args) {
	return ParseArgs(os.Args[1:])
}

// ParseArgs is the testable core of Parse.
func ParseArgs(argv []string) (Command, Args) {
	remaining, parsed := parseGlobalFlags(argv)

	if len(remaining) == 0 {
		return CmdTUI, parsed
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsed.Raw = remaining

	switch cmd {
	case "tui":
		return CmdTUI, parsed

	case "ask":
		parseAskArgs(&parsed, remaining)
		return CmdAsk, parsed

	case "session", "sessions":
		if len(remaining) > 0 {
			parsed.Subcommand = remaining[0]
		}
		return CmdSessions, parsed

	case "export":
		// Top-level alias for "sessions export".
		parsed.Subcommand = "export"
		parsed.Raw = append([]string{"export"}, remaining...)
		return CmdSessions, parsed

	case "config":
		if len(remaining) > 0 {
			parsed.Subcommand = remaining[0]
		}
		return CmdConfig, parsed

	case "setup":
		return CmdSetup, parsed

	case "version", "-v", "--version":
		return CmdVersion, parsed

	case "help", "-h", "--help":
		return CmdHelp, parsed

	default:
		// Unknown word: treat the whole invocation as an ask query.
		// "codearc what is a goroutine" should just work.
		parsed.Raw = append([]string{cmd}, remaining...)
		parseAskArgs(&parsed, parsed.Raw)
		return CmdAsk, parsed
	}
}

// parseGlobalFlags extracts global flags and returns the remaining args.
func parseGlobalFlags(argv []string) ([]string, Args) {
	var remaining []string
	var parsed Args

	i := 0
	for i < len(argv) {
		arg := argv[i]

		switch arg {
		case "-q", "--quiet":
			parsed.Quiet = true
		case "--verbose":
			parsed.Verbose = true
		case "--model":
			if i+1 < len(argv) {
				i++
				parsed.Model = argv[i]
			}
		default:
			if strings.HasPrefix(arg, "--model=") {
				parsed.Model = strings.TrimPrefix(arg, "--model=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}

	return remaining, parsed
}

// parseAskArgs collects the query words, honoring ask-local flags.
func parseAskArgs(args *Args, remaining []string) {
	var query []string

	for i := 0; i < len(remaining); i++ {
		arg := remaining[i]

		switch arg {
		case "-m", "--model":
			if i+1 < len(remaining) {
				i++
				args.Model = remaining[i]
			}
		default:
			if strings.HasPrefix(arg, "--model=") {
				args.Model = strings.TrimPrefix(arg, "--model=")
			} else if !strings.HasPrefix(arg, "-") {
				query = append(query, arg)
			}
		}
	}

	args.Query = strings.Join(query, " ")
}

// =============================================================================
// COMMAND DISPATCH
// =============================================================================

// HandleVersion handles the "version" command.
func HandleVersion() {
	PrintVersion()
}

// HandleHelp handles the "help" command.
func HandleHelp() {
	PrintUsage()
}
