// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/glamour"

	"github.com/zrxarchit/codearc-tui/internal/config"
	"github.com/zrxarchit/codearc-tui/internal/export"
	"github.com/zrxarchit/codearc-tui/internal/model"
	"github.com/zrxarchit/codearc-tui/internal/offline"
	"github.com/zrxarchit/codearc-tui/internal/playback"
	"github.com/zrxarchit/codearc-tui/internal/store"
	"github.com/zrxarchit/codearc-tui/internal/ui/components"
	"github.com/zrxarchit/codearc-tui/internal/ui/styles"
)

// =============================================================================
// CHAT STATE
// =============================================================================

// State represents the current state of the chat view.
type State int

const (
	StateReady   State = iota // Ready for input
	StateSending              // Waiting for the completion call
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat view.
type Model struct {
	// State
	state State

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int

	// Collaborators
	store      *store.Store
	typewriter *playback.Typewriter
	monitor    *offline.Monitor
	cfg        *config.Config

	// Connectivity transitions feed this channel from the monitor
	// goroutine; a pending command turns them into ConnectivityMsg.
	connCh  chan bool
	offline bool

	// UI components
	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model
	keyMap   KeyMap

	// Markdown rendering for completed assistant messages.
	renderer *glamour.TermRenderer

	showSidebar bool
	statusMsg   string

	// pendingUser holds the just-submitted text until the store commit
	// comes back from the send goroutine.
	pendingUser string
}

// New creates the chat model. The store, typewriter, and monitor are
// owned by the caller; the model only drives them.
func New(st *store.Store, tw *playback.Typewriter, mon *offline.Monitor, cfg *config.Config) *Model {
	// A dark/light config theme wins; "auto" follows the persisted
	// toggle.
	dark := st.Profile().DarkMode
	switch cfg.UI.Theme {
	case "dark":
		dark = true
	case "light":
		dark = false
	}
	theme := styles.NewTheme(&dark)

	input := textinput.New()
	input.Placeholder = "Ask CodeArc anything..."
	input.Focus()
	input.CharLimit = 4000

	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = theme.Spinner

	m := &Model{
		theme:       theme,
		store:       st,
		typewriter:  tw,
		monitor:     mon,
		cfg:         cfg,
		connCh:      make(chan bool, 4),
		input:       input,
		spinner:     sp,
		keyMap:      DefaultKeyMap(),
		showSidebar: true,
	}
	m.initRenderer(80)
	return m
}

// ConnectivitySink returns the callback the offline monitor should fire
// on transitions.
func (m *Model) ConnectivitySink() func(online bool) {
	ch := m.connCh
	return func(online bool) {
		select {
		case ch <- online:
		default:
		}
	}
}

// initRenderer builds the glamour renderer at the given wrap width.
func (m *Model) initRenderer(width int) {
	style := glamour.WithStandardStyle("light")
	if m.theme.IsDark {
		style = glamour.WithStandardStyle("dark")
	}
	r, err := glamour.NewTermRenderer(style, glamour.WithWordWrap(width))
	if err == nil {
		m.renderer = r
	}
}

// renderMarkdown renders assistant markdown. Without a glamour
// renderer it still highlights fenced code blocks.
func (m *Model) renderMarkdown(content string) string {
	if m.renderer == nil {
		return components.RenderFences(content, m.contentWidth())
	}
	out, err := m.renderer.Render(content)
	if err != nil {
		return components.RenderFences(content, m.contentWidth())
	}
	return strings.TrimRight(out, "\n")
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		textinput.Blink,
		waitForConnectivity(m.connCh),
		// A reply persisted before a restart may still be unrevealed.
		m.maybeStartPlayback(),
	)
}

// cancelPlayback stops any in-flight reveal and performs the completion
// bookkeeping. Safe to call when idle.
func (m *Model) cancelPlayback() {
	m.typewriter.Cancel()
	m.drainCompletion()
}

// drainCompletion flushes finished reveals into the store.
func (m *Model) drainCompletion() {
	if c, ok := m.typewriter.TakeCompletion(); ok {
		m.store.MarkAnimated(c.SessionID, c.MessageID)
	}
}

// maybeStartPlayback begins revealing the newest unanimated assistant
// reply of the current session, if any.
func (m *Model) maybeStartPlayback() tea.Cmd {
	sessionID, msg, ok := m.store.NextPlayback()
	if !ok || m.typewriter.Playing() {
		return nil
	}
	m.typewriter.Start(sessionID, msg.ID, msg.Content)
	if !m.typewriter.Playing() {
		// Empty reply: completion is already pending.
		m.drainCompletion()
		return nil
	}
	return playbackTick(m.typewriter.Interval())
}

// greeting returns the first-screen salutation for an empty session.
func (m *Model) greeting() string {
	p := m.store.Profile()
	term := "Bhai"
	if p.Gender == model.GenderFemale {
		term = "Bahen"
	}
	first := firstNameTitle(p.UserName)
	if first == "" {
		return "Namaste " + term + "! 🙏"
	}
	return "Namaste " + first + " " + term + "! 🙏"
}

// exportCurrent writes the current session transcript next to the CWD.
func (m *Model) exportCurrent() tea.Cmd {
	session := m.store.Current()
	return func() tea.Msg {
		path, err := export.ExportToFile(session, export.NewTextExporter(), export.DefaultOptions())
		return ExportedMsg{Path: path, Err: err}
	}
}
