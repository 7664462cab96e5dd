// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package export writes chat session transcripts to files.
//
// Three formats are supported: a flat text transcript, Markdown, and
// JSON. Filenames derive from the session title; an existing file of the
// same name gets a numeric suffix instead of being overwritten.
package export
