// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model contains the data structures for chat sessions, messages,
// and the user profile.
//
// Messages are immutable once created except for the Animated flag (set
// exactly once when typewriter playback finishes) and deletion. Sessions
// own an ordered message sequence whose insertion order is conversation
// order.
package model
