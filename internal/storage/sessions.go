// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/zrxarchit/codearc-tui/internal/model"
)

// =============================================================================
// STORED SHAPES
// =============================================================================

// storedSession is the provisional, loosely-typed shape read back from
// storage. Older releases wrote messages without ids or animated flags, so
// every field a strict load would require is optional here and backfilled
// during mapping.
type storedSession struct {
	ID             string          `json:"id"`
	Title          string          `json:"title"`
	Messages       []storedMessage `json:"messages"`
	CreatedAt      time.Time       `json:"created_at"`
	LastAnimatedID string          `json:"last_animated_id,omitempty"`
}

type storedMessage struct {
	ID       string `json:"id"`
	Role     string `json:"role"`
	Content  string `json:"content"`
	Animated *bool  `json:"animated,omitempty"`
}

// =============================================================================
// SESSION STORE
// =============================================================================

// SessionStore persists the whole sessions collection as one JSON blob
// under KeyChats.
type SessionStore struct {
	kv KV
}

// NewSessionStore wraps a KV backend.
func NewSessionStore(kv KV) *SessionStore {
	return &SessionStore{kv: kv}
}

// Save serializes and stores the sessions collection.
func (s *SessionStore) Save(sessions []*model.ChatSession) error {
	data, err := json.Marshal(sessions)
	if err != nil {
		return fmt.Errorf("failed to marshal sessions: %w", err)
	}
	return s.kv.Set(KeyChats, string(data))
}

// Load reads the sessions collection back, repairing loosely-typed
// entries from older stored shapes. A missing blob returns an empty
// slice, not an error. Entries that cannot be coerced into a session at
// all are skipped rather than failing the whole load.
func (s *SessionStore) Load() ([]*model.ChatSession, error) {
	raw, err := s.kv.Get(KeyChats)
	if errors.Is(err, ErrNotFound) {
		return []*model.ChatSession{}, nil
	}
	if err != nil {
		return nil, err
	}

	// First pass: split into raw entries so one corrupt session doesn't
	// poison its siblings.
	var rawSessions []json.RawMessage
	if err := json.Unmarshal([]byte(raw), &rawSessions); err != nil {
		return nil, fmt.Errorf("failed to parse sessions blob: %w", err)
	}

	sessions := make([]*model.ChatSession, 0, len(rawSessions))
	for i, entry := range rawSessions {
		var stored storedSession
		if err := json.Unmarshal(entry, &stored); err != nil {
			continue
		}
		sessions = append(sessions, repairSession(stored, i))
	}

	return sessions, nil
}

// Clear removes the persisted sessions blob.
func (s *SessionStore) Clear() error {
	return s.kv.Remove(KeyChats)
}

// =============================================================================
// DEFENSIVE REPAIR
// =============================================================================

// repairSession maps a provisional stored session onto the strict model
// type, backfilling anything an older shape omitted. Backfilled ids are
// derived from positions so a reload of the same blob produces the same
// ids.
func repairSession(stored storedSession, index int) *model.ChatSession {
	sess := &model.ChatSession{
		ID:             stored.ID,
		Title:          stored.Title,
		CreatedAt:      stored.CreatedAt,
		LastAnimatedID: stored.LastAnimatedID,
		Messages:       make([]model.Message, 0, len(stored.Messages)),
	}
	if sess.ID == "" {
		sess.ID = fmt.Sprintf("chat_restored_%d", index)
	}
	if sess.Title == "" {
		sess.Title = model.DefaultTitle
	}
	if sess.CreatedAt.IsZero() {
		sess.CreatedAt = time.Now()
	}

	for i, m := range stored.Messages {
		sess.Messages = append(sess.Messages, repairMessage(m, sess.ID, i))
	}

	return sess
}

// repairMessage backfills message fields: a synthesized id when absent, an
// unknown role coerced to user, and animated defaulting to false so an
// assistant message missing the flag plays at most once more, never
// crashes.
func repairMessage(m storedMessage, sessionID string, index int) model.Message {
	msg := model.Message{
		ID:      m.ID,
		Role:    model.Role(m.Role),
		Content: m.Content,
	}
	if msg.ID == "" {
		msg.ID = fmt.Sprintf("msg_restored_%s_%d", sessionID, index)
	}
	if !msg.Role.Valid() {
		msg.Role = model.RoleUser
	}
	if m.Animated != nil {
		msg.Animated = *m.Animated
	}
	// User messages never play, regardless of what was stored.
	if msg.Role == model.RoleUser {
		msg.Animated = true
	}
	return msg
}
