// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/zrxarchit/codearc-tui/internal/model"
)

// =============================================================================
// BUBBLE TEA MESSAGES
// =============================================================================

// SendResultMsg carries the outcome of an in-flight send.
type SendResultMsg struct {
	Reply model.Message
	Err   error
}

// PlaybackTickMsg drives the typewriter reveal.
type PlaybackTickMsg struct {
	Time time.Time
}

// ConnectivityMsg reports an online/offline transition.
type ConnectivityMsg struct {
	Online bool
}

// ExternalChangeMsg reports that another process rewrote the sessions
// blob on disk.
type ExternalChangeMsg struct{}

// ExportedMsg reports a finished transcript export.
type ExportedMsg struct {
	Path string
	Err  error
}

// statusClearMsg clears a temporary status line.
type statusClearMsg struct{}
