// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/zrxarchit/codearc-tui/internal/util"
)

// DefaultTitle is the title of a session before its first user message.
const DefaultTitle = "New Chat"

// TitleMaxRunes bounds the auto-generated title taken from the first user
// message.
const TitleMaxRunes = 16

// =============================================================================
// CHAT SESSION TYPE
// =============================================================================

// ChatSession holds one independent conversation thread.
type ChatSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Messages  []Message `json:"messages"`
	CreatedAt time.Time `json:"created_at"`

	// LastAnimatedID records the id of the most recently animated
	// assistant message so playback never replays it, even across a
	// session switch or a reload.
	LastAnimatedID string `json:"last_animated_id,omitempty"`
}

// NewChatSession creates an empty session with the default title.
func NewChatSession() *ChatSession {
	return &ChatSession{
		ID:        generateSessionID(),
		Title:     DefaultTitle,
		Messages:  make([]Message, 0),
		CreatedAt: time.Now(),
	}
}

// =============================================================================
// MESSAGE MANAGEMENT
// =============================================================================

// Append adds a message to the end of the session. When the session goes
// from zero messages to one, the title is derived from the message once
// and never overwritten afterwards.
func (s *ChatSession) Append(msg Message) {
	if len(s.Messages) == 0 {
		s.setTitleFrom(msg)
	}
	s.Messages = append(s.Messages, msg)
}

// RemoveAt deletes the message at position index. Out-of-range indexes are
// a no-op; the caller sources indexes from the rendered list. No coherence
// fix-up happens: a lone assistant reply without its prompt is accepted
// state.
func (s *ChatSession) RemoveAt(index int) bool {
	if index < 0 || index >= len(s.Messages) {
		return false
	}
	s.Messages = append(s.Messages[:index], s.Messages[index+1:]...)
	return true
}

// Last returns the most recent message, or false if the session is empty.
func (s *ChatSession) Last() (Message, bool) {
	if len(s.Messages) == 0 {
		return Message{}, false
	}
	return s.Messages[len(s.Messages)-1], true
}

// MarkAnimated sets the Animated flag on the message with the given id and
// records it as the last animated message. Returns false if the id is not
// present or the message was already animated.
func (s *ChatSession) MarkAnimated(id string) bool {
	for i := range s.Messages {
		if s.Messages[i].ID == id {
			if s.Messages[i].Animated {
				return false
			}
			s.Messages[i].Animated = true
			s.LastAnimatedID = id
			return true
		}
	}
	return false
}

// IsEmpty returns true if the session has no messages.
func (s *ChatSession) IsEmpty() bool {
	return len(s.Messages) == 0
}

// MessageCount returns the number of messages.
func (s *ChatSession) MessageCount() int {
	return len(s.Messages)
}

// =============================================================================
// TITLE MANAGEMENT
// =============================================================================

// setTitleFrom derives the title from the first message if it is still the
// default.
func (s *ChatSession) setTitleFrom(msg Message) {
	if s.Title != "" && s.Title != DefaultTitle {
		return
	}
	if msg.Role != RoleUser || msg.Content == "" {
		return
	}
	// The title stays a strict prefix of the message, no ellipsis.
	runes := []rune(util.CollapseWhitespace(msg.Content))
	if len(runes) > TitleMaxRunes {
		runes = runes[:TitleMaxRunes]
	}
	s.Title = strings.TrimSpace(string(runes))
}

// Preview returns a short one-line preview of the first user message,
// or an empty string for an empty session.
func (s *ChatSession) Preview(maxRunes int) string {
	for _, msg := range s.Messages {
		if msg.Role == RoleUser && msg.Content != "" {
			return msg.Preview(maxRunes)
		}
	}
	return ""
}

// Clone creates a deep copy of the session. Messages are value types, so
// copying the slice copies them.
func (s *ChatSession) Clone() *ChatSession {
	clone := *s
	clone.Messages = make([]Message, len(s.Messages))
	copy(clone.Messages, s.Messages)
	return &clone
}

// generateSessionID creates a unique session ID.
func generateSessionID() string {
	return "chat_" + uuid.NewString()
}
