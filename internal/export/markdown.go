// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"
	"time"

	"github.com/zrxarchit/codearc-tui/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports sessions to Markdown format.
type MarkdownExporter struct{}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter() *MarkdownExporter {
	return &MarkdownExporter{}
}

// Export converts a session to Markdown.
func (e *MarkdownExporter) Export(session *model.ChatSession) ([]byte, error) {
	if session == nil {
		return nil, fmt.Errorf("session is nil")
	}
	if len(session.Messages) == 0 {
		return nil, fmt.Errorf("session has no messages")
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", escapeMarkdown(session.Title)))
	if !session.CreatedAt.IsZero() {
		sb.WriteString(fmt.Sprintf("_Started %s, %d messages._\n\n",
			session.CreatedAt.Format(time.RFC1123), len(session.Messages)))
	}
	sb.WriteString("---\n\n")

	for _, msg := range session.Messages {
		sb.WriteString(fmt.Sprintf("## %s\n\n", msg.Role.DisplayName()))
		sb.WriteString(msg.Content)
		sb.WriteString("\n\n")
	}

	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// MimeType returns the MIME type for Markdown.
func (e *MarkdownExporter) MimeType() string {
	return "text/markdown"
}

// escapeMarkdown escapes characters that would break a heading.
func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"#", "\\#",
		"*", "\\*",
		"_", "\\_",
		"[", "\\[",
		"]", "\\]",
	)
	return replacer.Replace(s)
}
