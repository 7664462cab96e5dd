// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package keystore stores the provider API key at rest.
//
// The key lives outside the regular state store so that exporting or
// inspecting chat data never drags the credential along. Storage is a
// single file with owner-only permissions, written atomically.
package keystore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zrxarchit/codearc-tui/internal/util"
)

// ErrNoKey is returned when no API key has been stored yet.
var ErrNoKey = errors.New("no api key stored")

// KeyStore is the credential storage contract.
type KeyStore interface {
	// Store persists the API key.
	Store(key string) error
	// Retrieve returns the stored API key, or ErrNoKey.
	Retrieve() (string, error)
	// Delete removes the stored key. Deleting an absent key is not an
	// error.
	Delete() error
	// Exists reports whether a key is stored.
	Exists() bool
}

// =============================================================================
// FILE-BASED KEYSTORE
// =============================================================================

// FileKeyStore keeps the API key in a 0600 file under a 0700 directory.
type FileKeyStore struct {
	path string
}

// NewFileKeyStore creates a key store backed by the given file path.
func NewFileKeyStore(path string) *FileKeyStore {
	return &FileKeyStore{path: path}
}

// DefaultPath returns the standard key location under the user's home.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".codearc", "api.key")
	}
	return filepath.Join(home, ".codearc", "api.key")
}

// Store writes the key atomically with owner-only permissions.
func (f *FileKeyStore) Store(key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return fmt.Errorf("refusing to store empty api key")
	}
	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}
	if err := util.AtomicWriteFile(f.path, []byte(key), 0600); err != nil {
		return fmt.Errorf("failed to write key file: %w", err)
	}
	return nil
}

// Retrieve reads the stored key.
func (f *FileKeyStore) Retrieve() (string, error) {
	data, err := os.ReadFile(f.path)
	if os.IsNotExist(err) {
		return "", ErrNoKey
	}
	if err != nil {
		return "", fmt.Errorf("failed to read key file: %w", err)
	}
	key := strings.TrimSpace(string(data))
	if key == "" {
		return "", ErrNoKey
	}
	return key, nil
}

// Delete removes the key file.
func (f *FileKeyStore) Delete() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete key file: %w", err)
	}
	return nil
}

// Exists checks whether a key file is present.
func (f *FileKeyStore) Exists() bool {
	info, err := os.Stat(f.path)
	return err == nil && info.Size() > 0
}
