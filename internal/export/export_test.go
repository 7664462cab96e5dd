// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/zrxarchit/codearc-tui/internal/model"
)

func sampleSession() *model.ChatSession {
	s := model.NewChatSession()
	s.Append(model.NewUserMessage("What is recursion?"))
	s.Append(model.NewAssistantMessage("Recursion is when a function calls itself."))
	s.CreatedAt = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return s
}

func TestTextExporter_Format(t *testing.T) {
	content, err := NewTextExporter().Export(sampleSession())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	want := "USER:\nWhat is recursion?\n\n---\n\nASSISTANT:\nRecursion is when a function calls itself.\n\n"
	if string(content) != want {
		t.Errorf("transcript = %q, want %q", content, want)
	}
}

func TestTextExporter_EmptySession(t *testing.T) {
	if _, err := NewTextExporter().Export(model.NewChatSession()); err == nil {
		t.Error("empty session should not export")
	}
}

func TestMarkdownExporter(t *testing.T) {
	content, err := NewMarkdownExporter().Export(sampleSession())
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "## You") || !strings.Contains(text, "## CodeArc") {
		t.Errorf("markdown should use display names, got:\n%s", text)
	}
	if !strings.Contains(text, "What is recursion?") {
		t.Error("markdown should contain the message content")
	}
}

func TestJSONExporter_RoundTrip(t *testing.T) {
	session := sampleSession()
	content, err := NewJSONExporter().Export(session)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}

	var decoded model.ChatSession
	if err := json.Unmarshal(content, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if decoded.ID != session.ID || len(decoded.Messages) != 2 {
		t.Errorf("decoded session does not match: %+v", decoded)
	}
}

func TestExportToFile_ProbesUntilFree(t *testing.T) {
	dir := t.TempDir()
	session := sampleSession()
	opts := &Options{OutputDir: dir}

	first, err := ExportToFile(session, NewTextExporter(), opts)
	if err != nil {
		t.Fatalf("first export: %v", err)
	}
	if filepath.Base(first) != session.Title+".txt" {
		t.Errorf("first filename = %q, want title-derived", filepath.Base(first))
	}

	second, err := ExportToFile(session, NewTextExporter(), opts)
	if err != nil {
		t.Fatalf("second export: %v", err)
	}
	if second == first {
		t.Fatal("second export must not overwrite the first")
	}
	if filepath.Base(second) != session.Title+" (1).txt" {
		t.Errorf("second filename = %q, want numeric suffix", filepath.Base(second))
	}

	third, err := ExportToFile(session, NewTextExporter(), opts)
	if err != nil {
		t.Fatalf("third export: %v", err)
	}
	if filepath.Base(third) != session.Title+" (2).txt" {
		t.Errorf("third filename = %q, want incremented suffix", filepath.Base(third))
	}

	// The first file kept its original content.
	data, err := os.ReadFile(first)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !strings.Contains(string(data), "USER:") {
		t.Error("original file content was disturbed")
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"What is recursi", "What is recursi"},
		{"a/b\\c:d", "a-b-c-d"},
		{"", "chat"},
		{"tab\there", "tab_here"},
	}
	for _, tt := range tests {
		if got := sanitizeFilename(tt.in); got != tt.want {
			t.Errorf("sanitizeFilename(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
