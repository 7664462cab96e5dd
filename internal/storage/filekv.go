// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"os"
	"path/filepath"

	"github.com/zrxarchit/codearc-tui/internal/util"
)

// =============================================================================
// FILE-BACKED KV
// =============================================================================

// FileKV stores each key as one file under a base directory.
// Values are written atomically with fsync, so a crash mid-write leaves
// either the old complete value or the new one, never a torn file.
type FileKV struct {
	// BaseDir is the directory holding one file per key.
	// Default: ~/.codearc/state/
	BaseDir string
}

// NewFileKV creates a file-backed store under the user's home directory.
func NewFileKV() (*FileKV, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}
	return NewFileKVWithDir(filepath.Join(homeDir, ".codearc", "state"))
}

// NewFileKVWithDir creates a file-backed store with a custom directory.
func NewFileKVWithDir(baseDir string) (*FileKV, error) {
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, err
	}
	return &FileKV{BaseDir: baseDir}, nil
}

// Get returns the stored value for key, or ErrNotFound.
func (s *FileKV) Get(key string) (string, error) {
	data, err := os.ReadFile(s.Path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNotFound
		}
		return "", err
	}
	return string(data), nil
}

// Set stores value under key. The 0600 mode keeps the API key readable by
// the owner only; all keys get the same treatment for simplicity.
func (s *FileKV) Set(key, value string) error {
	return util.AtomicWriteFile(s.Path(key), []byte(value), 0600)
}

// Remove deletes key. Removing an absent key is not an error.
func (s *FileKV) Remove(key string) error {
	if err := os.Remove(s.Path(key)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Close is a no-op for the file backend.
func (s *FileKV) Close() error {
	return nil
}

// Path returns the backing file for a key. Exposed so the storage watcher
// can observe external writes to the sessions blob.
func (s *FileKV) Path(key string) string {
	return filepath.Join(s.BaseDir, key+".json")
}
