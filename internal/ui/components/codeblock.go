// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components holds shared rendering helpers used by both the
// TUI and the one-shot CLI surface.
package components

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	"github.com/alecthomas/chroma/v2/formatters"
	"github.com/alecthomas/chroma/v2/lexers"
	chromaStyles "github.com/alecthomas/chroma/v2/styles"
	"github.com/charmbracelet/lipgloss"

	"github.com/zrxarchit/codearc-tui/internal/ui/styles"
)

// =============================================================================
// CODE BLOCK RENDERER
// =============================================================================

// CodeBlock is a fenced code block lifted out of an assistant reply.
// It renders with chroma syntax highlighting inside a bordered box.
// This is the fallback path for replies when the full markdown
// renderer is unavailable.
type CodeBlock struct {
	Language string
	Code     string
	MaxWidth int
}

// NewCodeBlock creates a code block with the default width.
func NewCodeBlock(language, code string) CodeBlock {
	return CodeBlock{
		Language: language,
		Code:     code,
		MaxWidth: 80,
	}
}

// Render returns the highlighted, boxed code block.
func (c CodeBlock) Render() string {
	code := strings.TrimSpace(c.Code)

	language := c.Language
	if language == "" {
		language = detectLanguage(code)
	}

	var header string
	if c.Language != "" {
		header = lipgloss.NewStyle().
			Foreground(styles.TextMuted).
			Bold(true).
			Render(c.Language) + "\n"
	}

	maxWidth := c.MaxWidth - 4
	if maxWidth < 20 {
		maxWidth = 20
	}

	return lipgloss.NewStyle().
		BorderStyle(lipgloss.RoundedBorder()).
		BorderForeground(styles.Overlay).
		Padding(0, 1).
		MaxWidth(maxWidth).
		Render(header + Highlight(code, language))
}

// =============================================================================
// FENCED BLOCK PARSER
// =============================================================================

// RenderFences walks markdown-ish text and replaces every ``` fenced
// block with a highlighted CodeBlock, leaving the prose untouched.
func RenderFences(text string, maxWidth int) string {
	lines := strings.Split(text, "\n")
	var result []string
	var codeLines []string
	var language string
	inFence := false

	flush := func() {
		cb := NewCodeBlock(language, strings.Join(codeLines, "\n"))
		cb.MaxWidth = maxWidth
		result = append(result, cb.Render())
		codeLines = nil
		language = ""
	}

	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "```"):
			if inFence {
				flush()
				inFence = false
			} else {
				language = strings.TrimSpace(strings.TrimPrefix(line, "```"))
				inFence = true
			}
		case inFence:
			codeLines = append(codeLines, line)
		default:
			result = append(result, line)
		}
	}

	// Unterminated fence: render what we have.
	if inFence && len(codeLines) > 0 {
		flush()
	}

	return strings.Join(result, "\n")
}

// =============================================================================
// SYNTAX HIGHLIGHTING
// =============================================================================

// Highlight applies chroma terminal highlighting to code. Returns the
// input unchanged when tokenizing or formatting fails.
func Highlight(code, language string) string {
	lexer := lexers.Get(language)
	if lexer == nil {
		lexer = lexers.Analyse(code)
	}
	if lexer == nil {
		lexer = lexers.Fallback
	}
	lexer = chroma.Coalesce(lexer)

	style := chromaStyles.Get("monokai")
	if style == nil {
		style = chromaStyles.Fallback
	}

	formatter := formatters.Get("terminal256")
	if formatter == nil {
		formatter = formatters.Fallback
	}

	iterator, err := lexer.Tokenise(nil, code)
	if err != nil {
		return code
	}

	var buf strings.Builder
	if err := formatter.Format(&buf, style, iterator); err != nil {
		return code
	}
	return buf.String()
}

func detectLanguage(code string) string {
	lexer := lexers.Analyse(code)
	if lexer != nil {
		return lexer.Config().Name
	}
	return ""
}
