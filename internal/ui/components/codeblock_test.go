// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"
	"testing"
)

func TestRenderFences_ProseUntouched(t *testing.T) {
	in := "line one\nline two"
	if got := RenderFences(in, 80); got != in {
		t.Errorf("prose should pass through unchanged, got %q", got)
	}
}

func TestRenderFences_ReplacesFence(t *testing.T) {
	in := "before\n```go\nfmt.Println(\"hi\")\n```\nafter"
	got := RenderFences(in, 80)
	if strings.Contains(got, "```") {
		t.Error("fence markers should be consumed")
	}
	if !strings.Contains(got, "before") || !strings.Contains(got, "after") {
		t.Error("surrounding prose should survive")
	}
	if !strings.Contains(got, "Println") {
		t.Error("code content should survive")
	}
}

func TestRenderFences_UnterminatedFence(t *testing.T) {
	got := RenderFences("```python\nprint(1)", 80)
	if !strings.Contains(got, "print(1)") {
		t.Error("unterminated fence content should still render")
	}
}

func TestHighlight_UnknownLanguageFallsBack(t *testing.T) {
	code := "some plain text"
	if got := Highlight(code, "nonexistent-lang"); got == "" {
		t.Error("highlight should never return empty output")
	}
}
