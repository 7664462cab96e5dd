// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// TypingCursor is appended to the visible text while a reply plays.
const TypingCursor = "▌"

// Theme holds all the styled components for the application.
type Theme struct {
	IsDark       bool
	ColorProfile termenv.Profile

	// Header
	Header      lipgloss.Style
	HeaderTitle lipgloss.Style
	Greeting    lipgloss.Style

	// Messages
	UserLabel       lipgloss.Style
	AssistantLabel  lipgloss.Style
	MessageBody     lipgloss.Style
	TypingIndicator lipgloss.Style

	// Sidebar
	Sidebar         lipgloss.Style
	SidebarItem     lipgloss.Style
	SidebarSelected lipgloss.Style

	// Input
	InputContainer lipgloss.Style
	InputPrompt    lipgloss.Style

	// Status
	StatusBar    lipgloss.Style
	OfflineBadge lipgloss.Style
	ErrorBox     lipgloss.Style
	Spinner      lipgloss.Style
	Hint         lipgloss.Style
}

// NewTheme creates a theme. When darkOverride is non-nil it wins over the
// detected terminal background, so the persisted dark-mode preference is
// honored.
func NewTheme(darkOverride *bool) *Theme {
	isDark := termenv.HasDarkBackground()
	if darkOverride != nil {
		isDark = *darkOverride
	}
	lipgloss.SetHasDarkBackground(isDark)

	t := &Theme{
		IsDark:       isDark,
		ColorProfile: termenv.ColorProfile(),
	}
	t.initStyles()
	return t
}

// initStyles initializes all the lip gloss styles.
func (t *Theme) initStyles() {
	t.Header = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo).
		Background(SurfaceDim).
		Padding(0, 2)

	t.HeaderTitle = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.Greeting = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo).
		Padding(1, 2)

	t.UserLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo)

	t.AssistantLabel = lipgloss.NewStyle().
		Bold(true).
		Foreground(Cyan)

	t.MessageBody = lipgloss.NewStyle().
		Foreground(TextPrimary)

	t.TypingIndicator = lipgloss.NewStyle().
		Foreground(Cyan)

	t.Sidebar = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderRight(true).
		BorderForeground(Overlay).
		Padding(0, 1)

	t.SidebarItem = lipgloss.NewStyle().
		Foreground(TextSecondary)

	t.SidebarSelected = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo)

	t.InputContainer = lipgloss.NewStyle().
		BorderStyle(lipgloss.NormalBorder()).
		BorderTop(true).
		BorderForeground(Overlay)

	t.InputPrompt = lipgloss.NewStyle().
		Bold(true).
		Foreground(Indigo)

	t.StatusBar = lipgloss.NewStyle().
		Foreground(TextMuted).
		Background(SurfaceDim).
		Padding(0, 1)

	t.OfflineBadge = lipgloss.NewStyle().
		Bold(true).
		Foreground(Rose)

	t.ErrorBox = lipgloss.NewStyle().
		Foreground(Rose).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(Rose).
		PaddingLeft(1)

	t.Spinner = lipgloss.NewStyle().
		Foreground(Cyan)

	t.Hint = lipgloss.NewStyle().
		Foreground(TextMuted)
}
