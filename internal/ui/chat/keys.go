// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"github.com/charmbracelet/bubbles/key"
)

// =============================================================================
// KEY MAP DEFINITION
// =============================================================================

// KeyMap defines all keyboard bindings for the chat interface.
type KeyMap struct {
	Submit     key.Binding
	StopTyping key.Binding
	NewChat    key.Binding
	NextChat   key.Binding
	DeleteChat key.Binding
	Export     key.Binding
	ToggleDark key.Binding
	ToggleSide key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the default key bindings for the chat interface.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("Enter", "send"),
		),
		StopTyping: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("Esc", "stop typing / dismiss error"),
		),
		NewChat: key.NewBinding(
			key.WithKeys("ctrl+n"),
			key.WithHelp("C-n", "new chat"),
		),
		NextChat: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("C-o", "next chat"),
		),
		DeleteChat: key.NewBinding(
			key.WithKeys("ctrl+x"),
			key.WithHelp("C-x", "delete chat"),
		),
		Export: key.NewBinding(
			key.WithKeys("ctrl+e"),
			key.WithHelp("C-e", "export transcript"),
		),
		ToggleDark: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("C-t", "toggle dark mode"),
		),
		ToggleSide: key.NewBinding(
			key.WithKeys("ctrl+b"),
			key.WithHelp("C-b", "toggle sidebar"),
		),
		PageUp: key.NewBinding(
			key.WithKeys("pgup", "ctrl+u"),
			key.WithHelp("PgUp/C-u", "page up"),
		),
		PageDown: key.NewBinding(
			key.WithKeys("pgdown", "ctrl+d"),
			key.WithHelp("PgDn/C-d", "page down"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "ctrl+q"),
			key.WithHelp("C-c/C-q", "quit"),
		),
	}
}

// ShortHelp returns the key bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.StopTyping, k.NewChat, k.Export, k.Quit}
}
