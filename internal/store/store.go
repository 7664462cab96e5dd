// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package store

import (
	"errors"
	"fmt"
	"io"
	"log"
	"strconv"
	"sync"

	"github.com/zrxarchit/codearc-tui/internal/keystore"
	"github.com/zrxarchit/codearc-tui/internal/llm"
	"github.com/zrxarchit/codearc-tui/internal/model"
	"github.com/zrxarchit/codearc-tui/internal/storage"
)

// ErrBusy is returned when a send is attempted while one is in flight.
var ErrBusy = errors.New("a message is already being sent")

// ErrNoAPIKey is returned when chat operations run without a stored key.
var ErrNoAPIKey = errors.New("api key not configured")

// ErrUnknownSession is returned when an operation names a session id that
// is not in the collection. Ids are sourced from the rendered session
// list, so hitting this is a logic error in the caller.
var ErrUnknownSession = errors.New("unknown session id")

// =============================================================================
// STORE
// =============================================================================

// Options configures a Store. Client and KV are required; Keys and Logger
// have working defaults.
type Options struct {
	Client llm.Client
	KV     storage.KV
	Keys   keystore.KeyStore
	Logger *log.Logger

	// MaxOutputTokens bounds each completion. Zero uses the client
	// default.
	MaxOutputTokens int
}

// Store is the single authoritative in-memory representation of the
// application state.
type Store struct {
	mu sync.Mutex

	client   llm.Client
	kv       storage.KV
	sessions *storage.SessionStore
	keys     keystore.KeyStore
	logger   *log.Logger

	maxOutputTokens int

	profile    model.Profile
	chats      []*model.ChatSession
	currentID  string
	loading    bool
	validating bool
	errMsg     string
}

// New constructs a Store, loading persisted state from the injected
// collaborators. The loaded collection always ends up with at least one
// session and a valid current pointer.
func New(opts Options) (*Store, error) {
	if opts.Client == nil {
		return nil, fmt.Errorf("store: nil llm client")
	}
	if opts.KV == nil {
		return nil, fmt.Errorf("store: nil storage")
	}
	if opts.Keys == nil {
		opts.Keys = keystore.NewFileKeyStore(keystore.DefaultPath())
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard, "", 0)
	}

	s := &Store{
		client:          opts.Client,
		kv:              opts.KV,
		sessions:        storage.NewSessionStore(opts.KV),
		keys:            opts.Keys,
		logger:          opts.Logger,
		maxOutputTokens: opts.MaxOutputTokens,
	}
	s.loadInitialState()
	return s, nil
}

// loadInitialState reconstructs profile and sessions from storage.
// Malformed persisted data is repaired at the storage boundary, never
// fatal here.
func (s *Store) loadInitialState() {
	if key, err := s.keys.Retrieve(); err == nil {
		s.profile.APIKey = key
		s.client.SetAPIKey(key)
	}
	if name, err := s.kv.Get(storage.KeyUserName); err == nil {
		s.profile.UserName = name
	}
	gender, _ := s.kv.Get(storage.KeyGender)
	s.profile.Gender = model.ParseGender(gender)
	if dark, err := s.kv.Get(storage.KeyDarkMode); err == nil {
		s.profile.DarkMode, _ = strconv.ParseBool(dark)
	}

	chats, err := s.sessions.Load()
	if err != nil {
		s.logger.Printf("store: loading sessions: %v", err)
	}
	s.chats = chats
	if len(s.chats) == 0 {
		s.chats = []*model.ChatSession{model.NewChatSession()}
	}
	s.currentID = s.chats[0].ID
}

// Reload re-reads the persisted sessions, keeping the current selection
// when it survives the reload. Used when another process writes the
// sessions blob; two concurrent writers stay last-write-wins.
func (s *Store) Reload() {
	s.mu.Lock()
	defer s.mu.Unlock()

	chats, err := s.sessions.Load()
	if err != nil {
		s.logger.Printf("store: reloading sessions: %v", err)
		return
	}
	if len(chats) == 0 {
		chats = []*model.ChatSession{model.NewChatSession()}
	}
	s.chats = chats
	if s.findLocked(s.currentID) == nil {
		s.currentID = s.chats[0].ID
	}
}

// =============================================================================
// STATE ACCESSORS
// =============================================================================

// Profile returns a copy of the user profile.
func (s *Store) Profile() model.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Sessions returns the session collection in insertion order. The
// returned sessions are copies; mutations go through Store methods.
func (s *Store) Sessions() []*model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*model.ChatSession, len(s.chats))
	for i, c := range s.chats {
		out[i] = c.Clone()
	}
	return out
}

// Current returns a copy of the current session.
func (s *Store) Current() *model.ChatSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentLocked().Clone()
}

// CurrentID returns the current session id.
func (s *Store) CurrentID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.currentID
}

// Loading reports whether a send is in flight.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Validating reports whether an API-key validation is in flight.
func (s *Store) Validating() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.validating
}

// Error returns the current user-visible error message, or "".
func (s *Store) Error() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// ClearError dismisses the current error. Transient UI state only, never
// persisted.
func (s *Store) ClearError() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errMsg = ""
}

// HasAPIKey reports whether a validated key is stored.
func (s *Store) HasAPIKey() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile.HasAPIKey()
}

// currentLocked resolves the current session pointer. The invariant that
// currentID always references a member of the collection is maintained by
// every mutator, so a miss repairs to the first session.
func (s *Store) currentLocked() *model.ChatSession {
	for _, c := range s.chats {
		if c.ID == s.currentID {
			return c
		}
	}
	s.currentID = s.chats[0].ID
	return s.chats[0]
}

// findLocked returns the session with the given id, or nil.
func (s *Store) findLocked(id string) *model.ChatSession {
	for _, c := range s.chats {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// =============================================================================
// PROFILE MUTATORS
// =============================================================================

// SetUserName updates and persists the user's name.
func (s *Store) SetUserName(name string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.UserName = name
	s.setKV(storage.KeyUserName, name)
}

// SetGender updates and persists the user's gender.
func (s *Store) SetGender(gender model.Gender) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.Gender = gender
	s.setKV(storage.KeyGender, string(gender))
}

// ToggleDarkMode flips and persists the dark-mode preference, returning
// the new value.
func (s *Store) ToggleDarkMode() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profile.DarkMode = !s.profile.DarkMode
	s.setKV(storage.KeyDarkMode, strconv.FormatBool(s.profile.DarkMode))
	return s.profile.DarkMode
}

// =============================================================================
// PERSISTENCE HELPERS
// =============================================================================

// Persistence is best-effort: failures are logged and swallowed so the
// in-memory state keeps serving the UI. Data loss is possible on reload
// and accepted.

func (s *Store) setKV(key, value string) {
	if err := s.kv.Set(key, value); err != nil {
		s.logger.Printf("store: persisting %s: %v", key, err)
	}
}

func (s *Store) persistSessionsLocked() {
	if err := s.sessions.Save(s.chats); err != nil {
		s.logger.Printf("store: persisting sessions: %v", err)
	}
}
