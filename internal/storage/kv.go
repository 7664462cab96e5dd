// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

// =============================================================================
// STORAGE KEYS
// =============================================================================

// Keys used in the persistent store. The names match the shapes older
// releases wrote, so upgraded installs load their existing data.
const (
	KeyAPIKey   = "codearc_apiKey"
	KeyUserName = "codearc_userName"
	KeyGender   = "codearc_userGender"
	KeyDarkMode = "codearc_darkMode"
	KeyChats    = "codearc_chats"
)

// AllKeys lists every key the client owns, in the order ClearAll removes
// them.
var AllKeys = []string{KeyAPIKey, KeyUserName, KeyGender, KeyDarkMode, KeyChats}

// =============================================================================
// KV CONTRACT
// =============================================================================

// KV is the key-value contract the rest of the client persists through.
type KV interface {
	// Get returns the stored value for key, or ErrNotFound.
	Get(key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(key, value string) error

	// Remove deletes key. Removing an absent key is not an error.
	Remove(key string) error

	// Close releases backend resources.
	Close() error
}

// =============================================================================
// ERRORS
// =============================================================================

// ErrNotFound is returned when a key has no stored value.
// Use errors.Is(err, ErrNotFound) to check for it.
var ErrNotFound = &StorageError{Message: "key not found"}

// StorageError represents a storage-related error.
type StorageError struct {
	Message string
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return e.Message
}

// Is implements errors.Is support for comparing storage errors.
func (e *StorageError) Is(target error) bool {
	t, ok := target.(*StorageError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}
