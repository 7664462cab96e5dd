// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/zrxarchit/codearc-tui/internal/playback"
	"github.com/zrxarchit/codearc-tui/internal/store"
	"github.com/zrxarchit/codearc-tui/internal/ui/styles"
)

// =============================================================================
// COMMAND CREATORS
// =============================================================================

// sendMessage runs the blocking send flow off the UI loop.
func sendMessage(st *store.Store, text string) tea.Cmd {
	return func() tea.Msg {
		reply, err := st.SendMessage(context.Background(), text)
		return SendResultMsg{Reply: reply, Err: err}
	}
}

// playbackTick schedules the next typewriter step.
func playbackTick(delay time.Duration) tea.Cmd {
	return tea.Tick(delay, func(t time.Time) tea.Msg {
		return PlaybackTickMsg{Time: t}
	})
}

// waitForConnectivity turns monitor transitions into messages.
func waitForConnectivity(ch chan bool) tea.Cmd {
	return func() tea.Msg {
		return ConnectivityMsg{Online: <-ch}
	}
}

// clearStatusAfter clears the transient status line.
func clearStatusAfter(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(time.Time) tea.Msg {
		return statusClearMsg{}
	})
}

// =============================================================================
// UPDATE
// =============================================================================

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.initRenderer(m.contentWidth())
		m.refreshViewport()
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case SendResultMsg:
		m.state = StateReady
		if msg.Err != nil {
			// The store already holds the user-visible error.
			m.refreshViewport()
			return m, nil
		}
		m.refreshViewport()
		return m, m.maybeStartPlayback()

	case PlaybackTickMsg:
		delay, playing := m.typewriter.Step()
		m.refreshViewport()
		if playing {
			return m, playbackTick(delay)
		}
		m.drainCompletion()
		m.refreshViewport()
		return m, nil

	case ConnectivityMsg:
		m.offline = !msg.Online
		return m, waitForConnectivity(m.connCh)

	case ExternalChangeMsg:
		m.store.Reload()
		m.refreshViewport()
		// The reload may have surfaced an unrevealed assistant reply.
		return m, m.maybeStartPlayback()

	case ExportedMsg:
		if msg.Err != nil {
			m.statusMsg = "Export failed: " + msg.Err.Error()
		} else {
			m.statusMsg = "Exported to " + msg.Path
		}
		return m, clearStatusAfter(4 * time.Second)

	case statusClearMsg:
		m.statusMsg = ""
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		if m.state == StateSending {
			return m, cmd
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleKey dispatches keyboard input.
func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Quit):
		m.cancelPlayback()
		return m, tea.Quit

	case key.Matches(msg, m.keyMap.StopTyping):
		if m.typewriter.Playing() {
			m.cancelPlayback()
			m.refreshViewport()
			return m, nil
		}
		if m.store.Error() != "" {
			m.store.ClearError()
			m.refreshViewport()
		}
		return m, nil

	case key.Matches(msg, m.keyMap.Submit):
		return m.submit()

	case key.Matches(msg, m.keyMap.NewChat):
		m.cancelPlayback()
		m.store.NewChat()
		m.refreshViewport()
		return m, m.maybeStartPlayback()

	case key.Matches(msg, m.keyMap.NextChat):
		m.cancelPlayback()
		m.switchToNext()
		m.refreshViewport()
		// The session we land on may hold a reply that arrived while
		// another session was focused; reveal it now.
		return m, m.maybeStartPlayback()

	case key.Matches(msg, m.keyMap.DeleteChat):
		m.cancelPlayback()
		m.store.DeleteChat(m.store.CurrentID())
		m.refreshViewport()
		return m, m.maybeStartPlayback()

	case key.Matches(msg, m.keyMap.Export):
		if m.store.Current().IsEmpty() {
			m.statusMsg = "Nothing to export yet"
			return m, clearStatusAfter(2 * time.Second)
		}
		return m, m.exportCurrent()

	case key.Matches(msg, m.keyMap.ToggleDark):
		dark := m.store.ToggleDarkMode()
		m.theme = styles.NewTheme(&dark)
		m.initRenderer(m.contentWidth())
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keyMap.ToggleSide):
		m.showSidebar = !m.showSidebar
		m.layout()
		m.refreshViewport()
		return m, nil

	case key.Matches(msg, m.keyMap.PageUp):
		m.viewport.HalfViewUp()
		return m, nil

	case key.Matches(msg, m.keyMap.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit validates and launches a send.
func (m *Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())
	if text == "" {
		return m, nil
	}
	if m.offline {
		m.statusMsg = "You're offline. Reconnect to continue."
		return m, clearStatusAfter(3 * time.Second)
	}
	if m.state == StateSending || m.store.Loading() {
		return m, nil
	}
	if !m.store.HasAPIKey() {
		m.statusMsg = "No API key configured. Run: codearc setup"
		return m, clearStatusAfter(4 * time.Second)
	}

	// Finish any reveal still going before the next exchange starts.
	m.cancelPlayback()

	m.input.Reset()
	m.state = StateSending
	m.refreshViewportWith(text)
	return m, tea.Batch(m.spinner.Tick, sendMessage(m.store, text))
}

// switchToNext cycles the current pointer through the session list.
func (m *Model) switchToNext() {
	chats := m.store.Sessions()
	if len(chats) < 2 {
		return
	}
	current := m.store.CurrentID()
	for i, c := range chats {
		if c.ID == current {
			next := chats[(i+1)%len(chats)]
			_ = m.store.SwitchChat(next.ID)
			return
		}
	}
}

// Typewriter returns the playback driver, for defensive cancellation by
// the app root on shutdown.
func (m *Model) Typewriter() *playback.Typewriter {
	return m.typewriter
}
