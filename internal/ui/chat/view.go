// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/lipgloss"

	"github.com/zrxarchit/codearc-tui/internal/model"
	"github.com/zrxarchit/codearc-tui/internal/ui/styles"
	"github.com/zrxarchit/codearc-tui/internal/util"
)

const sidebarWidth = 24

// =============================================================================
// LAYOUT
// =============================================================================

// layout sizes the viewport for the current terminal dimensions.
func (m *Model) layout() {
	if m.width == 0 {
		return
	}
	// Header, input, and status rows.
	contentHeight := m.height - 5
	if contentHeight < 3 {
		contentHeight = 3
	}
	if m.viewport.Width == 0 {
		m.viewport = viewport.New(m.contentWidth(), contentHeight)
	} else {
		m.viewport.Width = m.contentWidth()
		m.viewport.Height = contentHeight
	}
	m.input.Width = m.width - 6
}

// contentWidth is the message column width, accounting for the sidebar.
func (m *Model) contentWidth() int {
	w := m.width
	if m.showSidebar {
		w -= sidebarWidth
	}
	if w < 20 {
		w = 20
	}
	return w
}

// =============================================================================
// VIEW
// =============================================================================

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 {
		return "loading..."
	}

	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")

	body := m.viewport.View()
	if m.showSidebar {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(), body)
	}
	b.WriteString(body)
	b.WriteString("\n")

	b.WriteString(m.renderInput())
	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	return b.String()
}

func (m *Model) renderHeader() string {
	title := m.theme.HeaderTitle.Render("CodeArc 🚀")
	session := m.theme.Hint.Render(" · " + m.store.Current().Title)
	header := title + session
	if badge := m.monitor.StatusBadge(); badge != "" {
		header += "  " + m.theme.OfflineBadge.Render(badge)
	}
	return m.theme.Header.Width(m.width).Render(header)
}

func (m *Model) renderSidebar() string {
	chats := m.store.Sessions()
	current := m.store.CurrentID()

	var b strings.Builder
	b.WriteString(m.theme.Hint.Render("Chats"))
	b.WriteString("\n")
	for _, c := range chats {
		label := util.TruncateWidth(c.Title, sidebarWidth-4)
		if c.ID == current {
			b.WriteString(m.theme.SidebarSelected.Render("▸ " + label))
		} else {
			b.WriteString(m.theme.SidebarItem.Render("  " + label))
		}
		b.WriteString("\n")
	}
	return m.theme.Sidebar.
		Width(sidebarWidth - 2).
		Height(m.viewport.Height).
		Render(b.String())
}

func (m *Model) renderInput() string {
	prompt := m.theme.InputPrompt.Render("> ")
	return m.theme.InputContainer.Width(m.width).Render(prompt + m.input.View())
}

func (m *Model) renderStatus() string {
	if m.statusMsg != "" {
		return m.theme.StatusBar.Width(m.width).Render(m.statusMsg)
	}
	if m.state == StateSending {
		return m.theme.StatusBar.Width(m.width).Render(m.spinner.View() + " CodeArc is thinking...")
	}

	var hints []string
	for _, b := range m.keyMap.ShortHelp() {
		h := b.Help()
		hints = append(hints, fmt.Sprintf("%s %s", h.Key, h.Desc))
	}
	return m.theme.StatusBar.Width(m.width).Render(strings.Join(hints, " · "))
}

// =============================================================================
// MESSAGE RENDERING
// =============================================================================

// refreshViewport re-renders the conversation into the viewport and
// follows the bottom.
func (m *Model) refreshViewport() {
	m.pendingUser = ""
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

// refreshViewportWith renders with a user line that the store has not
// committed yet.
func (m *Model) refreshViewportWith(pending string) {
	m.pendingUser = pending
	m.viewport.SetContent(m.renderMessages())
	m.viewport.GotoBottom()
}

// renderMessages builds the conversation text for the current session.
func (m *Model) renderMessages() string {
	session := m.store.Current()

	if session.IsEmpty() && m.pendingUser == "" {
		return m.theme.Greeting.Render(m.greeting()) + "\n" +
			m.theme.Hint.Render("  Type a question below to get started.")
	}

	playingID := ""
	if m.typewriter.Playing() {
		playingID = m.typewriter.MessageID()
	}

	var b strings.Builder
	for _, msg := range session.Messages {
		b.WriteString(m.renderMessage(msg, msg.ID == playingID))
		b.WriteString("\n")
	}
	if m.pendingUser != "" {
		b.WriteString(m.theme.UserLabel.Render(model.RoleUser.DisplayName()))
		b.WriteString("\n")
		b.WriteString(m.theme.MessageBody.Render(m.pendingUser))
		b.WriteString("\n")
	}
	if errMsg := m.store.Error(); errMsg != "" {
		b.WriteString("\n")
		b.WriteString(m.theme.ErrorBox.Render(errMsg + "  (Esc to dismiss)"))
		b.WriteString("\n")
	}
	return b.String()
}

// renderMessage renders one message. A reply mid-reveal shows the
// partially visible text with a cursor; completed assistant replies get
// markdown rendering.
func (m *Model) renderMessage(msg model.Message, playing bool) string {
	var b strings.Builder

	if msg.Role == model.RoleUser {
		b.WriteString(m.theme.UserLabel.Render(msg.Role.DisplayName()))
		b.WriteString("\n")
		b.WriteString(m.theme.MessageBody.Render(msg.Content))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(m.theme.AssistantLabel.Render(msg.Role.DisplayName()))
	b.WriteString("\n")
	switch {
	case playing:
		b.WriteString(m.theme.MessageBody.Render(m.typewriter.Visible()))
		b.WriteString(m.theme.TypingIndicator.Render(styles.TypingCursor))
	default:
		b.WriteString(m.renderMarkdown(msg.Content))
	}
	b.WriteString("\n")
	return b.String()
}

// firstNameTitle returns the first name in title case, or "".
func firstNameTitle(fullName string) string {
	first := util.FirstName(fullName)
	if first == "" {
		return ""
	}
	runes := []rune(strings.ToLower(first))
	runes[0] = []rune(strings.ToUpper(string(runes[0])))[0]
	return string(runes)
}
