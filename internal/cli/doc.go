// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli implements the codearc command line surface.
//
// The default invocation launches the full-screen TUI; everything else
// is a subcommand that operates on the same persisted state:
//
//	codearc                  Start the chat TUI
//	codearc ask "question"   One-shot question, answer to stdout
//	codearc sessions ...     List, show, export and delete chats
//	codearc config ...       Show and edit configuration
//	codearc setup            First-run wizard (API key, name)
//	codearc version          Version information
package cli
