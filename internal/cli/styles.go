// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// styles.go - lipgloss styles for CLI output.
package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/zrxarchit/codearc-tui/internal/ui/styles"
)

var (
	headingStyle = lipgloss.NewStyle().
			Foreground(styles.Indigo).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(styles.TextSecondary)

	valueStyle = lipgloss.NewStyle().
			Foreground(styles.Emerald)

	mutedStyle = lipgloss.NewStyle().
			Foreground(styles.TextMuted)

	errorStyle = lipgloss.NewStyle().
			Foreground(styles.Rose)

	userStyle = lipgloss.NewStyle().
			Foreground(styles.Cyan).
			Bold(true)

	assistantStyle = lipgloss.NewStyle().
			Foreground(styles.Indigo).
			Bold(true)
)

// printHeading prints a section heading, styled on TTYs.
func printHeading(text string) {
	if ColorEnabled() {
		fmt.Println(headingStyle.Render(text))
	} else {
		fmt.Println(text)
	}
}

// printKV prints an aligned label/value pair.
func printKV(label, value string) {
	if ColorEnabled() {
		fmt.Printf("  %s %s\n", labelStyle.Render(fmt.Sprintf("%-18s", label)), valueStyle.Render(value))
	} else {
		fmt.Printf("  %-18s %s\n", label, value)
	}
}
