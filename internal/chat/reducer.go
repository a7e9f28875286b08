// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import "strings"

// =============================================================================
// REDUCER OPERATIONS
// =============================================================================

// The operations below are pure: each computes the next record strictly
// from the receiver and its arguments, performs no I/O, and returns a
// record with a freshly allocated message slice. The receiver is never
// mutated. All operations are total; an argument that fails a
// precondition yields the record unchanged rather than a panic, with the
// callers expected to validate via CanEdit / CanRegenerate / blank checks
// before invoking.

// AppendUser returns the conversation with one user message appended.
func (c Conversation) AppendUser(text string) Conversation {
	next := c.Clone()
	next.Messages = append(next.Messages, Message{Role: RoleUser, Content: text})
	return next
}

// AppendAssistant returns the conversation with one assistant message
// appended. An empty text is a no-op: a stream that completed without
// producing content must leave no empty assistant turn behind.
func (c Conversation) AppendAssistant(text string) Conversation {
	if text == "" {
		return c
	}
	next := c.Clone()
	next.Messages = append(next.Messages, Message{Role: RoleAssistant, Content: text})
	return next
}

// CommitEdit replaces the user message at index with text and discards
// every message after it. The truncation is deliberate: assistant replies
// derived from the old version of the message are superseded by the edit.
func (c Conversation) CommitEdit(index int, text string) Conversation {
	if !c.CanEdit(index) {
		return c
	}
	next := c
	next.Messages = make([]Message, index+1)
	copy(next.Messages, c.Messages[:index+1])
	next.Messages[index] = Message{Role: RoleUser, Content: text}
	return next
}

// Regenerate discards the assistant message at index and everything after
// it, keeping only the strict prefix. The caller then re-requests a
// completion for that prefix.
func (c Conversation) Regenerate(index int) Conversation {
	if !c.CanRegenerate(index) {
		return c
	}
	next := c
	next.Messages = make([]Message, index)
	copy(next.Messages, c.Messages[:index])
	return next
}

// Rename returns the conversation with the trimmed title. A title that is
// blank after trimming leaves the record unchanged.
func (c Conversation) Rename(title string) Conversation {
	title = strings.TrimSpace(title)
	if title == "" {
		return c
	}
	next := c.Clone()
	next.Title = title
	return next
}

// =============================================================================
// PRECONDITION HELPERS
// =============================================================================

// CanEdit reports whether index points at a user message.
func (c Conversation) CanEdit(index int) bool {
	return index >= 0 && index < len(c.Messages) && c.Messages[index].Role == RoleUser
}

// CanRegenerate reports whether index points at an assistant message.
func (c Conversation) CanRegenerate(index int) bool {
	return index >= 0 && index < len(c.Messages) && c.Messages[index].Role == RoleAssistant
}

// EditSeed returns the content to preload into the input field when the
// user begins editing the message at index, and whether editing that
// index is allowed. It does not alter the record; the edit takes effect
// only on CommitEdit.
func (c Conversation) EditSeed(index int) (string, bool) {
	if !c.CanEdit(index) {
		return "", false
	}
	return c.Messages[index].Content, true
}
