// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package playback

import (
	"strings"
	"testing"
	"time"
)

func testOptions() Options {
	return Options{
		WordInterval:  50 * time.Millisecond,
		SentencePause: 150 * time.Millisecond,
		MaxDuration:   20 * time.Second,
	}
}

func TestTypewriter_RevealsWordByWord(t *testing.T) {
	tw := NewTypewriter(testOptions())
	tw.Start("chat_1", "msg_1", "hello brave new world")

	if !tw.Playing() {
		t.Fatal("should be playing after Start")
	}

	seen := []string{}
	for i := 0; i < 10; i++ {
		_, playing := tw.Step()
		seen = append(seen, tw.Visible())
		if !playing {
			break
		}
	}

	want := []string{"hello ", "hello brave ", "hello brave new ", "hello brave new world"}
	if len(seen) != len(want) {
		t.Fatalf("steps = %d, want %d (%q)", len(seen), len(want), seen)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Errorf("step %d visible = %q, want %q", i, seen[i], want[i])
		}
	}
	if tw.Playing() {
		t.Error("should be idle after last word")
	}

	c, ok := tw.TakeCompletion()
	if !ok || c.MessageID != "msg_1" || c.SessionID != "chat_1" {
		t.Errorf("completion = %+v ok=%v, want msg_1/chat_1", c, ok)
	}
	if _, ok := tw.TakeCompletion(); ok {
		t.Error("completion should be drained exactly once")
	}
}

func TestTypewriter_PreservesWhitespace(t *testing.T) {
	content := "line one\n\n  indented\tend"
	tw := NewTypewriter(testOptions())
	tw.Start("chat_1", "msg_1", content)

	for {
		if _, playing := tw.Step(); !playing {
			break
		}
	}
	if got := tw.Visible(); got != content {
		t.Errorf("full reveal = %q, want original content %q", got, content)
	}
}

func TestTypewriter_SentencePause(t *testing.T) {
	tw := NewTypewriter(testOptions())
	tw.Start("chat_1", "msg_1", "Done. next words here")

	delay, playing := tw.Step()
	if !playing {
		t.Fatal("should still be playing")
	}
	if delay != 200*time.Millisecond {
		t.Errorf("delay after sentence end = %v, want interval+pause (200ms)", delay)
	}

	delay, _ = tw.Step()
	if delay != 50*time.Millisecond {
		t.Errorf("mid-sentence delay = %v, want 50ms", delay)
	}
}

func TestTypewriter_LongContentBoundedSteps(t *testing.T) {
	// 4000 words at 50ms each would take 200s unchunked; the cap forces
	// larger chunks so the step count stays under MaxDuration/interval.
	content := strings.TrimSpace(strings.Repeat("word ", 4000))
	opts := testOptions()
	tw := NewTypewriter(opts)
	tw.Start("chat_1", "msg_1", content)

	steps := 0
	for {
		_, playing := tw.Step()
		steps++
		if !playing {
			break
		}
	}
	maxSteps := int(opts.MaxDuration / opts.WordInterval)
	if steps > maxSteps {
		t.Errorf("steps = %d, want <= %d", steps, maxSteps)
	}
	if tw.Visible() != content {
		t.Error("full content should be revealed at the end")
	}
}

func TestTypewriter_Cancel(t *testing.T) {
	tw := NewTypewriter(testOptions())
	tw.Start("chat_1", "msg_1", "one two three four")
	tw.Step()

	if !tw.Cancel() {
		t.Fatal("first cancel should report it stopped a reveal")
	}
	if tw.Visible() != "one two three four" {
		t.Errorf("cancel should reveal remainder, got %q", tw.Visible())
	}
	if tw.Playing() {
		t.Error("should be idle after cancel")
	}

	// Same completion bookkeeping as a natural finish.
	c, ok := tw.TakeCompletion()
	if !ok || c.MessageID != "msg_1" {
		t.Errorf("cancel should record completion, got %+v ok=%v", c, ok)
	}

	// Double-cancel is a no-op and must not fabricate a completion.
	if tw.Cancel() {
		t.Error("second cancel should be a no-op")
	}
	if _, ok := tw.TakeCompletion(); ok {
		t.Error("second cancel must not produce a completion")
	}

	// A tick that fires after cancellation must not advance anything.
	if _, playing := tw.Step(); playing {
		t.Error("step after cancel should be a no-op")
	}
}

func TestTypewriter_StartWhilePlaying(t *testing.T) {
	tw := NewTypewriter(testOptions())
	tw.Start("chat_1", "msg_1", "first reply text")
	tw.Step()

	tw.Start("chat_1", "msg_2", "second reply")

	// The interrupted reveal completes like a cancel would.
	c, ok := tw.TakeCompletion()
	if !ok || c.MessageID != "msg_1" {
		t.Errorf("interrupted reveal should complete, got %+v ok=%v", c, ok)
	}

	tw.Step()
	if got := tw.Visible(); got != "second " {
		t.Errorf("visible = %q, want start of second reply", got)
	}
}

func TestTypewriter_EmptyContent(t *testing.T) {
	tw := NewTypewriter(testOptions())
	tw.Start("chat_1", "msg_1", "")

	if tw.Playing() {
		t.Error("empty content should finish immediately")
	}
	if c, ok := tw.TakeCompletion(); !ok || c.MessageID != "msg_1" {
		t.Errorf("empty content should still complete, got %+v ok=%v", c, ok)
	}
}
