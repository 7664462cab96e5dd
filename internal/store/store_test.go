// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zrxarchit/codearc-tui/internal/keystore"
	"github.com/zrxarchit/codearc-tui/internal/llm"
	"github.com/zrxarchit/codearc-tui/internal/model"
	"github.com/zrxarchit/codearc-tui/internal/storage"
)

// =============================================================================
// TEST DOUBLES
// =============================================================================

// stubClient is a substitutable chat-completion collaborator.
type stubClient struct {
	validateErr error
	reply       string
	completeErr error

	key            string
	lastSystem     string
	lastHistory    []llm.Turn
	completeCalls  int
	beforeComplete func()
}

func (c *stubClient) Validate(ctx context.Context, apiKey string) error { return c.validateErr }

func (c *stubClient) SetAPIKey(key string) { c.key = key }

func (c *stubClient) Complete(ctx context.Context, history []llm.Turn, system string, maxTokens int) (string, error) {
	c.completeCalls++
	c.lastSystem = system
	c.lastHistory = history
	if c.beforeComplete != nil {
		c.beforeComplete()
	}
	if c.completeErr != nil {
		return "", c.completeErr
	}
	return c.reply, nil
}

// testStore builds a store on real file-backed storage with a stubbed
// collaborator and a validated key already in place.
func testStore(t *testing.T, client *stubClient) *Store {
	t.Helper()
	dir := t.TempDir()
	kv, err := storage.NewFileKVWithDir(filepath.Join(dir, "state"))
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	keys := keystore.NewFileKeyStore(filepath.Join(dir, "api.key"))
	require.NoError(t, keys.Store("sk-test"))

	s, err := New(Options{Client: client, KV: kv, Keys: keys})
	require.NoError(t, err)
	return s
}

// reload constructs a second store over the same collaborators, as a
// process restart would.
func reload(t *testing.T, s *Store, client *stubClient) *Store {
	t.Helper()
	fresh, err := New(Options{Client: client, KV: s.kv, Keys: s.keys})
	require.NoError(t, err)
	return fresh
}

// =============================================================================
// SEND FLOW
// =============================================================================

func TestSendMessage_SuccessfulExchange(t *testing.T) {
	client := &stubClient{reply: "Recursion is when a function calls itself."}
	s := testStore(t, client)

	_, err := s.SendMessage(context.Background(), "What is recursion?")
	require.NoError(t, err)

	chat := s.Current()
	require.Len(t, chat.Messages, 2)
	assert.Equal(t, model.RoleUser, chat.Messages[0].Role)
	assert.Equal(t, model.RoleAssistant, chat.Messages[1].Role)
	assert.True(t, chat.Messages[0].Animated, "user messages are born animated")
	assert.False(t, chat.Messages[1].Animated, "assistant reply awaits playback")
	assert.True(t, strings.HasPrefix("What is recursion?", chat.Title),
		"title %q should be a prefix of the first user message", chat.Title)
	assert.False(t, s.Loading())
	assert.Empty(t, s.Error())

	// The whole history plus the persona instruction went out.
	require.Len(t, client.lastHistory, 1)
	assert.Equal(t, "What is recursion?", client.lastHistory[0].Content)
	assert.Contains(t, client.lastSystem, "CodeArc")

	// Playback picks up the fresh reply, and completion marks it.
	sessionID, msg, ok := s.NextPlayback()
	require.True(t, ok)
	s.MarkAnimated(sessionID, msg.ID)
	last, _ := s.Current().Last()
	assert.True(t, last.Animated)

	_, _, ok = s.NextPlayback()
	assert.False(t, ok, "an animated reply must never replay")
}

func TestSendMessage_PersonaUsesProfile(t *testing.T) {
	client := &stubClient{reply: "ok"}
	s := testStore(t, client)
	s.SetUserName("Priya Sharma")
	s.SetGender(model.GenderFemale)

	_, err := s.SendMessage(context.Background(), "hello")
	require.NoError(t, err)
	assert.Contains(t, client.lastSystem, "Priya bahen")
}

func TestSendMessage_FailureKeepsUserMessage(t *testing.T) {
	client := &stubClient{completeErr: errors.New("model overloaded")}
	s := testStore(t, client)

	_, err := s.SendMessage(context.Background(), "hello?")
	require.Error(t, err)

	chat := s.Current()
	require.Len(t, chat.Messages, 1, "the user message is never rolled back")
	assert.Equal(t, "hello?", chat.Messages[0].Content)
	assert.Equal(t, "model overloaded", s.Error())
	assert.False(t, s.Loading())

	// The persisted state matches: a reload still shows the message.
	fresh := reload(t, s, client)
	require.Len(t, fresh.Current().Messages, 1)
}

func TestSendMessage_Preconditions(t *testing.T) {
	client := &stubClient{reply: "ok"}
	s := testStore(t, client)

	_, err := s.SendMessage(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, s.Current().Messages, "blank input is ignored")

	s.ClearAllData() // drops the key
	_, err = s.SendMessage(context.Background(), "hi")
	assert.ErrorIs(t, err, ErrNoAPIKey)
}

func TestSendMessage_LoadingGuard(t *testing.T) {
	client := &stubClient{reply: "ok"}
	s := testStore(t, client)

	var nested error
	client.beforeComplete = func() {
		client.beforeComplete = nil
		_, nested = s.SendMessage(context.Background(), "second")
	}

	_, err := s.SendMessage(context.Background(), "first")
	require.NoError(t, err)
	assert.ErrorIs(t, nested, ErrBusy)
	require.Len(t, s.Current().Messages, 2, "only the first send went through")
}

func TestSendMessage_DiscardsReplyForDeletedSession(t *testing.T) {
	client := &stubClient{reply: "too late"}
	s := testStore(t, client)
	originID := s.CurrentID()

	client.beforeComplete = func() {
		s.DeleteChat(originID)
	}

	msg, err := s.SendMessage(context.Background(), "hello")
	require.NoError(t, err)
	assert.Empty(t, msg.ID, "reply for a deleted session is dropped")

	for _, chat := range s.Sessions() {
		for _, m := range chat.Messages {
			assert.NotEqual(t, "too late", m.Content,
				"the reply must not surface in a resurrected session")
		}
	}
}

// =============================================================================
// API KEY
// =============================================================================

func TestSetAPIKey_RejectedKeyIsNotStored(t *testing.T) {
	client := &stubClient{validateErr: errors.New("401 unauthorized")}
	dir := t.TempDir()
	kv, err := storage.NewFileKVWithDir(filepath.Join(dir, "state"))
	require.NoError(t, err)
	defer kv.Close()
	keys := keystore.NewFileKeyStore(filepath.Join(dir, "api.key"))

	s, err := New(Options{Client: client, KV: kv, Keys: keys})
	require.NoError(t, err)

	ok := s.SetAPIKey(context.Background(), "bad-key")
	assert.False(t, ok)
	assert.False(t, s.HasAPIKey())
	assert.False(t, keys.Exists(), "an unvalidated key must never be written")
	assert.Equal(t, invalidKeyMessage, s.Error())
	assert.False(t, s.Validating())
}

func TestSetAPIKey_ValidKeyPersists(t *testing.T) {
	client := &stubClient{}
	dir := t.TempDir()
	kv, err := storage.NewFileKVWithDir(filepath.Join(dir, "state"))
	require.NoError(t, err)
	defer kv.Close()
	keys := keystore.NewFileKeyStore(filepath.Join(dir, "api.key"))

	s, err := New(Options{Client: client, KV: kv, Keys: keys})
	require.NoError(t, err)

	require.True(t, s.SetAPIKey(context.Background(), " sk-good "))
	assert.True(t, s.HasAPIKey())
	assert.Equal(t, "sk-good", client.key, "client is armed with the trimmed key")

	fresh, err := New(Options{Client: client, KV: kv, Keys: keys})
	require.NoError(t, err)
	assert.True(t, fresh.HasAPIKey(), "the key survives a reload")
}

// =============================================================================
// SESSION LIFECYCLE
// =============================================================================

func TestSessionInvariants(t *testing.T) {
	client := &stubClient{}
	s := testStore(t, client)

	// Always at least one session, with a valid current pointer.
	require.NotEmpty(t, s.Sessions())
	assert.NotNil(t, s.Current())

	first := s.CurrentID()
	second := s.NewChat()
	assert.Equal(t, second.ID, s.CurrentID(), "new chat becomes current")
	require.Len(t, s.Sessions(), 2)

	require.NoError(t, s.SwitchChat(first))
	assert.Equal(t, first, s.CurrentID())
	assert.ErrorIs(t, s.SwitchChat("chat_nope"), ErrUnknownSession)
	assert.Equal(t, first, s.CurrentID(), "failed switch leaves the pointer")
}

func TestDeleteChat_CurrentFallsBack(t *testing.T) {
	client := &stubClient{}
	s := testStore(t, client)

	a := s.CurrentID()
	b := s.NewChat()
	require.NoError(t, s.SwitchChat(a))

	s.DeleteChat(a)
	require.Len(t, s.Sessions(), 1)
	assert.Equal(t, b.ID, s.CurrentID())
}

func TestDeleteChat_LastSessionSynthesizesFresh(t *testing.T) {
	client := &stubClient{reply: "ok"}
	s := testStore(t, client)
	_, err := s.SendMessage(context.Background(), "hello")
	require.NoError(t, err)

	old := s.CurrentID()
	s.DeleteChat(old)

	chats := s.Sessions()
	require.Len(t, chats, 1)
	assert.NotEqual(t, old, chats[0].ID)
	assert.Empty(t, chats[0].Messages)
	assert.Equal(t, model.DefaultTitle, chats[0].Title)
	assert.Equal(t, chats[0].ID, s.CurrentID())
}

func TestDeleteChat_NonCurrentKeepsPointer(t *testing.T) {
	client := &stubClient{}
	s := testStore(t, client)

	a := s.CurrentID()
	b := s.NewChat()
	s.DeleteChat(a)
	assert.Equal(t, b.ID, s.CurrentID())
}

func TestClearChatHistory_KeepsCurrentIDAndProfile(t *testing.T) {
	client := &stubClient{reply: "ok"}
	s := testStore(t, client)
	s.SetUserName("Archit")
	_, err := s.SendMessage(context.Background(), "hello")
	require.NoError(t, err)
	current := s.CurrentID()

	s.ClearChatHistory()

	chats := s.Sessions()
	require.Len(t, chats, 1)
	assert.Equal(t, current, chats[0].ID, "current id survives the wipe")
	assert.Empty(t, chats[0].Messages)
	assert.Equal(t, "Archit", s.Profile().UserName)
	assert.True(t, s.HasAPIKey())
}

func TestClearAllData_ResetsEverything(t *testing.T) {
	client := &stubClient{reply: "ok"}
	s := testStore(t, client)
	s.SetUserName("Archit")
	s.SetGender(model.GenderFemale)
	s.ToggleDarkMode()
	_, err := s.SendMessage(context.Background(), "hello")
	require.NoError(t, err)

	s.ClearAllData()

	p := s.Profile()
	assert.Empty(t, p.APIKey)
	assert.Empty(t, p.UserName)
	assert.Equal(t, model.GenderMale, p.Gender, "gender resets to the default")
	assert.False(t, p.DarkMode)
	assert.Empty(t, s.Error())
	require.Len(t, s.Sessions(), 1)
	assert.Empty(t, s.Sessions()[0].Messages)

	// Nothing survives a reload either.
	fresh := reload(t, s, client)
	assert.False(t, fresh.HasAPIKey())
	assert.Empty(t, fresh.Profile().UserName)
	require.Len(t, fresh.Sessions(), 1)
	assert.Empty(t, fresh.Sessions()[0].Messages)
}

// =============================================================================
// MESSAGE OPERATIONS
// =============================================================================

func TestDeleteMessage_NoCoherenceFixup(t *testing.T) {
	client := &stubClient{reply: "the answer"}
	s := testStore(t, client)
	_, err := s.SendMessage(context.Background(), "the question")
	require.NoError(t, err)

	require.NoError(t, s.DeleteMessage(s.CurrentID(), 0))

	chat := s.Current()
	require.Len(t, chat.Messages, 1)
	assert.Equal(t, model.RoleAssistant, chat.Messages[0].Role,
		"a lone assistant reply is accepted state")
}

func TestMarkAnimated_IdempotentAcrossReload(t *testing.T) {
	client := &stubClient{reply: "reply text"}
	s := testStore(t, client)
	_, err := s.SendMessage(context.Background(), "hi")
	require.NoError(t, err)

	sessionID, msg, ok := s.NextPlayback()
	require.True(t, ok)
	s.MarkAnimated(sessionID, msg.ID)
	s.MarkAnimated(sessionID, msg.ID) // second call is a no-op

	fresh := reload(t, s, client)
	last, _ := fresh.Current().Last()
	assert.True(t, last.Animated)
	assert.Equal(t, msg.ID, fresh.Current().LastAnimatedID,
		"replay suppression survives reload")
	_, _, ok = fresh.NextPlayback()
	assert.False(t, ok)
}

func TestSetMessages_ReplacesSequence(t *testing.T) {
	client := &stubClient{reply: "ok"}
	s := testStore(t, client)
	_, err := s.SendMessage(context.Background(), "hello")
	require.NoError(t, err)

	replacement := []model.Message{model.NewUserMessage("only this")}
	require.NoError(t, s.SetMessages(s.CurrentID(), replacement))
	require.Len(t, s.Current().Messages, 1)
	assert.Equal(t, "only this", s.Current().Messages[0].Content)

	assert.ErrorIs(t, s.SetMessages("chat_nope", nil), ErrUnknownSession)
}

// =============================================================================
// PERSISTENCE ROUND-TRIP
// =============================================================================

func TestReload_ReconstructsState(t *testing.T) {
	client := &stubClient{reply: "first reply"}
	s := testStore(t, client)
	s.SetUserName("Archit Jain")
	s.SetGender(model.GenderMale)
	_, err := s.SendMessage(context.Background(), "What is recursion?")
	require.NoError(t, err)
	s.NewChat()

	fresh := reload(t, s, client)

	assert.Equal(t, "Archit Jain", fresh.Profile().UserName)
	assert.True(t, fresh.HasAPIKey())

	chats := fresh.Sessions()
	require.Len(t, chats, 2)
	require.Len(t, chats[0].Messages, 2)
	assert.Equal(t, s.Sessions()[0].ID, chats[0].ID)
	assert.Equal(t, s.Sessions()[0].Title, chats[0].Title)
	assert.Equal(t, "first reply", chats[0].Messages[1].Content)
}

func TestReload_PicksUpExternalWrites(t *testing.T) {
	client := &stubClient{reply: "ok"}
	s := testStore(t, client)
	_, err := s.SendMessage(context.Background(), "hello there")
	require.NoError(t, err)

	// A second store over the same backend plays the other process.
	other := reload(t, s, client)
	other.NewChat()
	_, err = other.SendMessage(context.Background(), "from elsewhere")
	require.NoError(t, err)

	s.Reload()

	chats := s.Sessions()
	require.Len(t, chats, 2)
	assert.Equal(t, "from elsewhere", chats[1].Messages[0].Content)
	assert.Equal(t, chats[0].ID, s.CurrentID(), "surviving selection is kept")
}

func TestReload_CurrentDeletedElsewhere(t *testing.T) {
	client := &stubClient{reply: "ok"}
	s := testStore(t, client)
	first := s.Current()
	second := s.NewChat()
	require.NoError(t, s.SwitchChat(second.ID))

	other := reload(t, s, client)
	other.DeleteChat(second.ID)

	s.Reload()

	require.Len(t, s.Sessions(), 1)
	assert.Equal(t, first.ID, s.CurrentID(), "selection falls back to the first session")
}
