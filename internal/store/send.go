// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"strings"

	"github.com/zrxarchit/codearc-tui/internal/llm"
	"github.com/zrxarchit/codearc-tui/internal/model"
)

// invalidKeyMessage is the user-visible text for a failed key validation.
const invalidKeyMessage = "Invalid API key. Please check your API key and try again."

// =============================================================================
// API KEY VALIDATION
// =============================================================================

// SetAPIKey validates the candidate key against the provider and, only on
// success, stores it. A rejected or unreachable key sets the error field
// and leaves the profile and the key store untouched.
//
// The network round-trip blocks; callers run this off the UI loop.
func (s *Store) SetAPIKey(ctx context.Context, key string) bool {
	key = strings.TrimSpace(key)

	s.mu.Lock()
	s.validating = true
	s.errMsg = ""
	s.mu.Unlock()

	err := s.client.Validate(ctx, key)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.validating = false
	if err != nil {
		s.logger.Printf("store: api key validation: %v", err)
		s.errMsg = invalidKeyMessage
		return false
	}

	if err := s.keys.Store(key); err != nil {
		// The key is trust-sensitive, so unlike chat history a failed
		// write is surfaced instead of silently degraded.
		s.logger.Printf("store: storing api key: %v", err)
		s.errMsg = "Could not save the API key: " + err.Error()
		return false
	}
	s.profile.APIKey = key
	s.client.SetAPIKey(key)
	return true
}

// =============================================================================
// SEND FLOW
// =============================================================================

// SendMessage turns a user-entered string into a persisted exchange with
// the chat-completion collaborator.
//
// The user message is appended and persisted before the network call, so
// a failure never loses typed input; the failure path records the
// collaborator's message in the error field with no rollback. The
// originating session is captured at call time: if it was deleted while
// the request was in flight, the reply is discarded rather than written
// into a resurrected session.
//
// The network round-trip blocks; callers run this off the UI loop. The
// loading flag is an advisory guard against concurrent sends.
func (s *Store) SendMessage(ctx context.Context, text string) (model.Message, error) {
	text = strings.TrimSpace(text)

	s.mu.Lock()
	if text == "" {
		s.mu.Unlock()
		return model.Message{}, nil
	}
	if !s.profile.HasAPIKey() {
		s.mu.Unlock()
		return model.Message{}, ErrNoAPIKey
	}
	if s.loading {
		s.mu.Unlock()
		return model.Message{}, ErrBusy
	}

	chat := s.currentLocked()
	originID := chat.ID

	userMsg := model.NewUserMessage(text)
	chat.Append(userMsg)
	s.persistSessionsLocked()

	s.loading = true
	s.errMsg = ""

	history := make([]llm.Turn, 0, len(chat.Messages))
	for _, m := range chat.Messages {
		history = append(history, llm.Turn{Role: m.Role, Content: m.Content})
	}
	persona := llm.PersonaInstruction(s.profile.UserName, s.profile.Gender)
	maxTokens := s.maxOutputTokens
	s.mu.Unlock()

	reply, err := s.client.Complete(ctx, history, persona, maxTokens)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = false

	if err != nil {
		s.errMsg = err.Error()
		return model.Message{}, err
	}

	target := s.findLocked(originID)
	if target == nil {
		// The issuing session is gone; drop the reply.
		s.logger.Printf("store: discarding reply for deleted session %s", originID)
		return model.Message{}, nil
	}

	assistantMsg := model.NewAssistantMessage(reply)
	target.Append(assistantMsg)
	s.persistSessionsLocked()
	return assistantMsg, nil
}
