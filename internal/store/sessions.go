// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"github.com/zrxarchit/codearc-tui/internal/model"
	"github.com/zrxarchit/codearc-tui/internal/storage"
)

// =============================================================================
// SESSION LIFECYCLE
// =============================================================================

// The collection invariant: there is always at least one session, and
// exactly one of them is current.

// NewChat creates an empty session, makes it current, and persists.
func (s *Store) NewChat() *model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := model.NewChatSession()
	s.chats = append(s.chats, chat)
	s.currentID = chat.ID
	s.persistSessionsLocked()
	return chat.Clone()
}

// SwitchChat moves the current pointer to an existing session. An unknown
// id is a logic error in the caller and leaves the state untouched.
func (s *Store) SwitchChat(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.findLocked(id) == nil {
		return ErrUnknownSession
	}
	s.currentID = id
	return nil
}

// DeleteChat removes a session. When the removed session was current, the
// first remaining session becomes current; when the collection would
// become empty, a fresh session is synthesized instead.
func (s *Store) DeleteChat(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.chats[:0]
	for _, c := range s.chats {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	s.chats = kept

	if len(s.chats) == 0 {
		fresh := model.NewChatSession()
		s.chats = []*model.ChatSession{fresh}
		s.currentID = fresh.ID
	} else if s.currentID == id {
		s.currentID = s.chats[0].ID
	}
	s.persistSessionsLocked()
}

// ClearChatHistory replaces all sessions with a single empty one, keeping
// the current id so suppression state and UI focus survive. Profile
// fields are untouched.
func (s *Store) ClearChatHistory() {
	s.mu.Lock()
	defer s.mu.Unlock()

	fresh := model.NewChatSession()
	if s.currentID != "" {
		fresh.ID = s.currentID
	}
	s.chats = []*model.ChatSession{fresh}
	s.currentID = fresh.ID
	s.persistSessionsLocked()
}

// ClearAllData erases every persisted key, deletes the stored API key,
// and resets the in-memory state to defaults with one fresh session.
func (s *Store) ClearAllData() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, key := range storage.AllKeys {
		if err := s.kv.Remove(key); err != nil {
			s.logger.Printf("store: removing %s: %v", key, err)
		}
	}
	if err := s.keys.Delete(); err != nil {
		s.logger.Printf("store: deleting api key: %v", err)
	}

	fresh := model.NewChatSession()
	s.profile = model.Profile{Gender: model.GenderMale}
	s.client.SetAPIKey("")
	s.chats = []*model.ChatSession{fresh}
	s.currentID = fresh.ID
	s.loading = false
	s.errMsg = ""
}

// =============================================================================
// MESSAGE OPERATIONS
// =============================================================================

// SetMessages replaces the full message sequence of one session and
// persists. Used by playback bookkeeping and tests.
func (s *Store) SetMessages(sessionID string, messages []model.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := s.findLocked(sessionID)
	if chat == nil {
		return ErrUnknownSession
	}
	chat.Messages = make([]model.Message, len(messages))
	copy(chat.Messages, messages)
	s.persistSessionsLocked()
	return nil
}

// DeleteMessage removes the message at position index from a session and
// persists. No coherence fix-up happens: a lone assistant reply whose
// prompt was removed is accepted state.
func (s *Store) DeleteMessage(sessionID string, index int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := s.findLocked(sessionID)
	if chat == nil {
		return ErrUnknownSession
	}
	if chat.RemoveAt(index) {
		s.persistSessionsLocked()
	}
	return nil
}

// MarkAnimated flips the Animated flag on one assistant message and
// records it as the session's last animated id, then persists. Marking an
// already-animated message or a gone session is a no-op, so the playback
// completion path is idempotent.
func (s *Store) MarkAnimated(sessionID, messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := s.findLocked(sessionID)
	if chat == nil {
		return
	}
	if chat.MarkAnimated(messageID) {
		s.persistSessionsLocked()
	}
}

// NextPlayback returns the message playback should reveal next: the most
// recent message of the current session when it is an assistant message
// with Animated still false and an id different from the session's last
// animated one.
func (s *Store) NextPlayback() (sessionID string, msg model.Message, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	chat := s.currentLocked()
	last, exists := chat.Last()
	if !exists || last.Role != model.RoleAssistant || last.Animated {
		return "", model.Message{}, false
	}
	if last.ID == chat.LastAnimatedID {
		return "", model.Message{}, false
	}
	return chat.ID, last, true
}
