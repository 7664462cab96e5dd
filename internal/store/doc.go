// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package store holds the authoritative application state.
//
// The Store is the aggregate root: it owns the session list, the current
// session pointer, the user profile, and the transient loading/error
// fields. Every mutation is mirrored to persistent storage as a side
// effect; persistence failures are logged and swallowed so the UI stays
// responsive with in-memory state as the fallback source of truth.
//
// The two external collaborators (chat-completion client, key-value
// storage) are injected at construction so tests substitute doubles.
//
// # Usage
//
//	st, err := store.New(store.Options{Client: client, KV: kv, Keys: keys})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	reply, err := st.SendMessage(ctx, "What is recursion?")
package store
