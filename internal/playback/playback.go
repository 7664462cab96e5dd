// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package playback implements the typewriter reveal for assistant replies.
//
// A Typewriter is a small state machine driven by the UI's tick loop: the
// UI calls Step on each tick, renders Visible, and schedules the next
// tick after the returned delay. Chunk sizes grow with content length so
// a long reply never animates for more than the configured cap.
//
// Thread-safety: all operations are protected by a mutex since ticks and
// user-driven cancellation both arrive through the Bubble Tea loop, but
// store callbacks may inspect state from other goroutines.
package playback

import (
	"strings"
	"sync"
	"time"
	"unicode"
)

// =============================================================================
// STATES
// =============================================================================

// State is the typewriter lifecycle state.
type State int

const (
	// StateIdle means no reveal is in progress.
	StateIdle State = iota
	// StatePlaying means a reveal is in progress.
	StatePlaying
)

func (s State) String() string {
	if s == StatePlaying {
		return "playing"
	}
	return "idle"
}

// =============================================================================
// OPTIONS
// =============================================================================

// Options tunes the reveal pacing.
type Options struct {
	// WordInterval is the base delay between revealed chunks.
	WordInterval time.Duration
	// SentencePause is the extra delay after sentence-ending punctuation.
	SentencePause time.Duration
	// MaxDuration caps the total reveal time for one reply.
	MaxDuration time.Duration
}

// DefaultOptions mirror the stock pacing of one word every 50ms.
func DefaultOptions() Options {
	return Options{
		WordInterval:  50 * time.Millisecond,
		SentencePause: 150 * time.Millisecond,
		MaxDuration:   20 * time.Second,
	}
}

func (o *Options) normalize() {
	d := DefaultOptions()
	if o.WordInterval <= 0 {
		o.WordInterval = d.WordInterval
	}
	if o.SentencePause < 0 {
		o.SentencePause = d.SentencePause
	}
	if o.MaxDuration < o.WordInterval {
		o.MaxDuration = d.MaxDuration
	}
}

// =============================================================================
// TYPEWRITER
// =============================================================================

// Completion identifies a reply whose reveal has finished, whether it ran
// to the end or was cancelled.
type Completion struct {
	SessionID string
	MessageID string
}

// Typewriter reveals one assistant reply word by word.
type Typewriter struct {
	mu   sync.Mutex
	opts Options

	state     State
	sessionID string
	messageID string
	words     []string
	pos       int
	chunkSize int

	// completed holds the finished reveal until TakeCompletion drains it.
	completed *Completion
}

// NewTypewriter creates an idle typewriter.
func NewTypewriter(opts Options) *Typewriter {
	opts.normalize()
	return &Typewriter{opts: opts}
}

// Start begins revealing content for the given message. Any reveal still
// in progress is cancelled first, with the same completion bookkeeping as
// an explicit Cancel.
func (t *Typewriter) Start(sessionID, messageID, content string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == StatePlaying {
		t.finishLocked()
	}

	words := splitWords(content)
	if len(words) == 0 {
		t.completed = &Completion{SessionID: sessionID, MessageID: messageID}
		return
	}

	t.state = StatePlaying
	t.sessionID = sessionID
	t.messageID = messageID
	t.words = words
	t.pos = 0
	t.chunkSize = chunkSizeFor(len(words), t.opts)
}

// Step reveals the next chunk. It returns the delay before the next tick
// and whether the reveal is still in progress. Calling Step while idle is
// a no-op.
func (t *Typewriter) Step() (time.Duration, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StatePlaying {
		return 0, false
	}

	end := t.pos + t.chunkSize
	if end > len(t.words) {
		end = len(t.words)
	}
	revealed := t.words[t.pos:end]
	t.pos = end

	if t.pos >= len(t.words) {
		t.finishLocked()
		return 0, false
	}

	delay := t.opts.WordInterval
	if endsSentence(revealed[len(revealed)-1]) {
		delay += t.opts.SentencePause
	}
	return delay, true
}

// Cancel reveals the full remaining text immediately. The completion
// bookkeeping is identical to a natural finish. Cancelling an idle
// typewriter is a no-op; the first cancel wins.
func (t *Typewriter) Cancel() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != StatePlaying {
		return false
	}
	t.pos = len(t.words)
	t.finishLocked()
	return true
}

// finishLocked transitions to idle and records the completion.
func (t *Typewriter) finishLocked() {
	t.state = StateIdle
	t.completed = &Completion{SessionID: t.sessionID, MessageID: t.messageID}
}

// Visible returns the currently revealed prefix of the content.
func (t *Typewriter) Visible() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return strings.Join(t.words[:t.pos], "")
}

// Playing reports whether a reveal is in progress.
func (t *Typewriter) Playing() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state == StatePlaying
}

// MessageID returns the message being revealed, or "" when idle and
// nothing has finished.
func (t *Typewriter) MessageID() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.messageID
}

// TakeCompletion drains the pending completion, if any. Each finished
// reveal is observed exactly once.
func (t *Typewriter) TakeCompletion() (Completion, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.completed == nil {
		return Completion{}, false
	}
	c := *t.completed
	t.completed = nil
	return c, true
}

// Interval returns the base tick delay, for scheduling the first tick.
func (t *Typewriter) Interval() time.Duration {
	return t.opts.WordInterval
}

// =============================================================================
// SEGMENTATION
// =============================================================================

// splitWords cuts content into word segments, each keeping its trailing
// whitespace so joining the segments reproduces the input exactly.
func splitWords(content string) []string {
	var words []string
	var cur strings.Builder
	inSpace := false

	for _, r := range content {
		isSpace := unicode.IsSpace(r)
		if inSpace && !isSpace && cur.Len() > 0 {
			words = append(words, cur.String())
			cur.Reset()
		}
		cur.WriteRune(r)
		inSpace = isSpace
	}
	if cur.Len() > 0 {
		words = append(words, cur.String())
	}
	return words
}

// chunkSizeFor grows the chunk so total reveal time stays under the cap.
func chunkSizeFor(wordCount int, opts Options) int {
	maxSteps := int(opts.MaxDuration / opts.WordInterval)
	if maxSteps < 1 {
		maxSteps = 1
	}
	chunk := (wordCount + maxSteps - 1) / maxSteps
	if chunk < 1 {
		chunk = 1
	}
	return chunk
}

// endsSentence reports whether the segment's last character closes a
// sentence.
func endsSentence(word string) bool {
	trimmed := strings.TrimRightFunc(word, unicode.IsSpace)
	if trimmed == "" {
		return false
	}
	switch trimmed[len(trimmed)-1] {
	case '.', '!', '?', ':':
		return true
	}
	return false
}
