// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the interactive chat view for the TUI.
//
// The Model wires the four collaborators together: the state store, the
// typewriter playback, the connectivity monitor, and the transcript
// exporter. All mutations flow through the store; the view renders
// whatever the store holds plus the playback's partially revealed reply.
package chat
