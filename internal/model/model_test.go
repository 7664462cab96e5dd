// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

func TestNewChatSession(t *testing.T) {
	s := NewChatSession()

	if !strings.HasPrefix(s.ID, "chat_") {
		t.Errorf("ID = %q, want chat_ prefix", s.ID)
	}
	if s.Title != DefaultTitle {
		t.Errorf("Title = %q, want %q", s.Title, DefaultTitle)
	}
	if !s.IsEmpty() {
		t.Error("new session should be empty")
	}
	if s.CreatedAt.IsZero() {
		t.Error("CreatedAt should be set")
	}
}

func TestChatSession_TitleSetOnce(t *testing.T) {
	s := NewChatSession()

	s.Append(NewUserMessage("What is recursion? Please explain slowly."))
	first := s.Title
	if first == DefaultTitle {
		t.Fatal("title should be derived from the first user message")
	}
	if !strings.HasPrefix("What is recursion? Please explain slowly.", strings.TrimSuffix(first, "...")) {
		t.Errorf("title %q is not a prefix of the first message", first)
	}

	s.Append(NewAssistantMessage("Recursion is..."))
	if s.Title != first {
		t.Errorf("title changed to %q after further messages", s.Title)
	}
}

func TestChatSession_TitleNotSetFromAssistant(t *testing.T) {
	s := NewChatSession()
	s.Append(NewAssistantMessage("unsolicited reply"))
	if s.Title != DefaultTitle {
		t.Errorf("Title = %q, want default when first message is not a user message", s.Title)
	}
}

func TestChatSession_RemoveAt(t *testing.T) {
	s := NewChatSession()
	s.Append(NewUserMessage("one"))
	s.Append(NewAssistantMessage("two"))
	s.Append(NewUserMessage("three"))

	if !s.RemoveAt(1) {
		t.Fatal("RemoveAt(1) should succeed")
	}
	if s.MessageCount() != 2 {
		t.Fatalf("count = %d, want 2", s.MessageCount())
	}
	if s.Messages[0].Content != "one" || s.Messages[1].Content != "three" {
		t.Errorf("unexpected order after removal: %q, %q", s.Messages[0].Content, s.Messages[1].Content)
	}

	if s.RemoveAt(5) {
		t.Error("out-of-range RemoveAt should report false")
	}
	if s.RemoveAt(-1) {
		t.Error("negative RemoveAt should report false")
	}
}

func TestChatSession_MarkAnimated(t *testing.T) {
	s := NewChatSession()
	s.Append(NewUserMessage("hi"))
	reply := NewAssistantMessage("hello there")
	s.Append(reply)

	if !s.MarkAnimated(reply.ID) {
		t.Fatal("first MarkAnimated should succeed")
	}
	if s.LastAnimatedID != reply.ID {
		t.Errorf("LastAnimatedID = %q, want %q", s.LastAnimatedID, reply.ID)
	}

	// Never resets to false, never marks twice
	if s.MarkAnimated(reply.ID) {
		t.Error("second MarkAnimated on the same message should be a no-op")
	}
	if s.MarkAnimated("msg_missing") {
		t.Error("MarkAnimated on an unknown id should report false")
	}
}

func TestMessage_AnimatedDefaults(t *testing.T) {
	u := NewUserMessage("hi")
	if !u.Animated {
		t.Error("user messages are always treated as animated")
	}
	a := NewAssistantMessage("reply")
	if a.Animated {
		t.Error("assistant messages start unanimated")
	}
}

func TestRole_Valid(t *testing.T) {
	if !RoleUser.Valid() || !RoleAssistant.Valid() {
		t.Error("known roles should be valid")
	}
	if Role("system").Valid() {
		t.Error("unknown role should be invalid")
	}
}

func TestParseGender(t *testing.T) {
	if ParseGender("female") != GenderFemale {
		t.Error("female should parse")
	}
	if ParseGender("") != GenderMale {
		t.Error("empty gender should default to male")
	}
	if ParseGender("other") != GenderMale {
		t.Error("unknown gender should default to male")
	}
}

func TestChatSession_Clone(t *testing.T) {
	s := NewChatSession()
	s.Append(NewUserMessage("hi"))
	c := s.Clone()

	c.Messages[0].Content = "mutated"
	if s.Messages[0].Content != "hi" {
		t.Error("clone shares message storage with the original")
	}
}
