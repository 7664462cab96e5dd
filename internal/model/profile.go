// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// =============================================================================
// GENDER TYPE
// =============================================================================

// Gender selects the address term the assistant persona uses.
type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// ParseGender maps a stored string onto a Gender, defaulting to male for
// anything unrecognized (matches the shape older persisted profiles used).
func ParseGender(s string) Gender {
	if s == string(GenderFemale) {
		return GenderFemale
	}
	return GenderMale
}

// =============================================================================
// PROFILE TYPE
// =============================================================================

// Profile holds the user-level fields persisted alongside the sessions.
// APIKey gates whether the chat surface is reachable at all; it is only
// ever stored after passing validation against the LLM service.
type Profile struct {
	APIKey   string
	UserName string
	Gender   Gender
	DarkMode bool
}

// HasAPIKey reports whether a validated key is present.
func (p Profile) HasAPIKey() bool {
	return p.APIKey != ""
}
