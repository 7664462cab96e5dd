// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// terminal.go - TTY detection for the codearc CLI.
//
// Interactive terminals get colors, markdown rendering and prompts;
// piped output stays plain so it can be processed downstream.
package cli

import (
	"os"

	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const (
	// DefaultTerminalWidth is the fallback width when detection fails.
	DefaultTerminalWidth = 80

	// MinTerminalWidth is the minimum width used for wrapping.
	MinTerminalWidth = 40
)

// IsTTY returns true if stdin is a terminal. Interactive prompts are
// only possible when this holds.
func IsTTY() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// IsStdoutTTY returns true if stdout is a terminal.
func IsStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// GetTerminalWidth returns the current terminal width, clamped to a
// sane range.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return DefaultTerminalWidth
	}
	if width < MinTerminalWidth {
		return MinTerminalWidth
	}
	return width
}

// ColorEnabled reports whether colored output should be used. Respects
// NO_COLOR and non-TTY stdout.
func ColorEnabled() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if !IsStdoutTTY() {
		return false
	}
	return termenv.ColorProfile() != termenv.Ascii
}
