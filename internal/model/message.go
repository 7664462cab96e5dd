// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"github.com/google/uuid"

	"github.com/zrxarchit/codearc-tui/internal/util"
)

// =============================================================================
// ROLE TYPE
// =============================================================================

// Role represents the sender of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// String returns the string representation of the role.
func (r Role) String() string {
	return string(r)
}

// DisplayName returns a human-readable name for the role.
func (r Role) DisplayName() string {
	switch r {
	case RoleUser:
		return "You"
	case RoleAssistant:
		return "CodeArc"
	default:
		return string(r)
	}
}

// Valid reports whether the role is one of the two known roles.
func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAssistant
}

// =============================================================================
// MESSAGE TYPE
// =============================================================================

// Message represents a single message in a chat session.
type Message struct {
	// ID is unique within the session and stable for the message's
	// lifetime. Deleted ids are never reused.
	ID string `json:"id"`

	Role    Role   `json:"role"`
	Content string `json:"content"`

	// Animated is false for an assistant message until its typewriter
	// playback completes or is cancelled, then true forever. User
	// messages are born animated (they never play).
	Animated bool `json:"animated"`
}

// NewUserMessage creates a user message. User messages never play, so
// they start with Animated set.
func NewUserMessage(content string) Message {
	return Message{
		ID:       generateMessageID(),
		Role:     RoleUser,
		Content:  content,
		Animated: true,
	}
}

// NewAssistantMessage creates an assistant message awaiting playback.
func NewAssistantMessage(content string) Message {
	return Message{
		ID:      generateMessageID(),
		Role:    RoleAssistant,
		Content: content,
	}
}

// Preview returns a single-line truncated preview of the message content.
func (m Message) Preview(maxRunes int) string {
	return util.TruncateRunes(util.CollapseWhitespace(m.Content), maxRunes)
}

// IsEmpty returns true if the message has no content.
func (m Message) IsEmpty() bool {
	return m.Content == ""
}

// generateMessageID creates a unique message ID.
func generateMessageID() string {
	return "msg_" + uuid.NewString()
}
