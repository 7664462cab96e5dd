// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"

	"github.com/zrxarchit/codearc-tui/internal/model"
)

// =============================================================================
// TEXT TRANSCRIPT EXPORTER
// =============================================================================

// TextExporter exports a session as a flat transcript: one
// "ROLE:\ncontent\n\n" block per message, joined by a "---" separator.
type TextExporter struct{}

// NewTextExporter creates a new flat-text exporter.
func NewTextExporter() *TextExporter {
	return &TextExporter{}
}

// Export converts a session to the transcript format.
func (e *TextExporter) Export(session *model.ChatSession) ([]byte, error) {
	if session == nil {
		return nil, fmt.Errorf("session is nil")
	}
	if len(session.Messages) == 0 {
		return nil, fmt.Errorf("session has no messages")
	}

	blocks := make([]string, 0, len(session.Messages))
	for _, msg := range session.Messages {
		role := strings.ToUpper(msg.Role.String())
		blocks = append(blocks, fmt.Sprintf("%s:\n%s\n\n", role, msg.Content))
	}
	return []byte(strings.Join(blocks, "---\n\n")), nil
}

// FileExtension returns the file extension for plain text.
func (e *TextExporter) FileExtension() string {
	return ".txt"
}

// MimeType returns the MIME type for plain text.
func (e *TextExporter) MimeType() string {
	return "text/plain"
}
