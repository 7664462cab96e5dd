// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides the local persistence layer for the codearc TUI.
//
// Everything is keyed: the profile fields each get their own key, and the
// whole sessions collection is one JSON blob under KeyChats. Two backends
// implement the KV contract: a JSON-file store with atomic writes (the
// default) and a SQLite key/value table.
//
// Writes are best-effort from the caller's perspective: the store layer
// above logs and swallows persistence failures so the UI stays responsive,
// and in-memory state remains the source of truth for the rest of the run.
package storage
