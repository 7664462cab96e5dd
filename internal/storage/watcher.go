// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// =============================================================================
// CHATS WATCHER
// =============================================================================

// ChatsWatcher observes the sessions blob of a file-backed store for
// writes made by another process. Two concurrent writers are still
// last-write-wins (a documented limitation of the local client), but the
// watcher makes the race observable: the UI reloads instead of silently
// rendering stale sessions.
//
// Our own atomic writes also trigger events; the caller debounces by
// comparing the reloaded blob against in-memory state.
type ChatsWatcher struct {
	watcher  *fsnotify.Watcher
	path     string
	debounce time.Duration
	onChange func()

	mu     sync.Mutex
	timer  *time.Timer
	cancel context.CancelFunc
}

// NewChatsWatcher watches the KeyChats file of a FileKV store. onChange
// fires from a background goroutine after writes settle.
func NewChatsWatcher(kv *FileKV, onChange func()) (*ChatsWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &ChatsWatcher{
		watcher:  watcher,
		path:     kv.Path(KeyChats),
		debounce: 200 * time.Millisecond,
		onChange: onChange,
	}, nil
}

// Watch starts watching. Watching the directory rather than the file
// itself survives the rename step of atomic writes.
func (w *ChatsWatcher) Watch() error {
	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	go w.processEvents(ctx)
	return nil
}

// processEvents forwards settled change events for the chats file.
func (w *ChatsWatcher) processEvents(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if event.Name != w.path {
				continue
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) && !event.Op.Has(fsnotify.Rename) {
				continue
			}
			w.scheduleFire()
		case _, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			// Watch errors are non-fatal; the next poll of the file
			// still sees current data.
		}
	}
}

// scheduleFire coalesces bursts of events from a single logical write.
// Each event pushes the pending notification back by the debounce
// window, so onChange fires exactly once per burst, after the last
// write settles. Deferring rather than suppressing means the final
// write of a burst is never dropped.
func (w *ChatsWatcher) scheduleFire() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.timer != nil {
		w.timer.Reset(w.debounce)
		return
	}
	w.timer = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		w.timer = nil
		w.mu.Unlock()
		w.onChange()
	})
}

// Close stops watching and releases resources.
func (w *ChatsWatcher) Close() error {
	if w.cancel != nil {
		w.cancel()
	}
	w.mu.Lock()
	if w.timer != nil {
		w.timer.Stop()
		w.timer = nil
	}
	w.mu.Unlock()
	return w.watcher.Close()
}
