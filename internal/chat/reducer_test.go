// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func conv(messages ...Message) Conversation {
	return Conversation{
		ID:       "c1",
		Title:    "Test",
		Model:    "gpt",
		Messages: messages,
	}
}

func user(text string) Message      { return Message{Role: RoleUser, Content: text} }
func assistant(text string) Message { return Message{Role: RoleAssistant, Content: text} }

// =============================================================================
// APPEND TESTS
// =============================================================================

func TestAppendUser(t *testing.T) {
	orig := conv(user("a"), assistant("b"))
	next := orig.AppendUser("c")

	require.Len(t, next.Messages, 3)
	require.Equal(t, user("c"), next.Messages[2])
	// The original record must be untouched.
	require.Len(t, orig.Messages, 2)
}

func TestAppendAssistant(t *testing.T) {
	orig := conv(user("a"))
	next := orig.AppendAssistant("reply")

	require.Len(t, next.Messages, 2)
	require.Equal(t, assistant("reply"), next.Messages[1])
	require.Len(t, orig.Messages, 1)
}

func TestAppendAssistant_EmptyIsNoOp(t *testing.T) {
	orig := conv(user("a"))
	next := orig.AppendAssistant("")

	require.Len(t, next.Messages, 1, "empty completion must not add a message")
}

// =============================================================================
// EDIT TESTS
// =============================================================================

func TestCommitEdit_TruncatesAfterIndex(t *testing.T) {
	orig := conv(user("q1"), assistant("a1"), user("q2"), assistant("a2"))
	next := orig.CommitEdit(2, "q2 revised")

	require.Len(t, next.Messages, 3)
	require.Equal(t, user("q1"), next.Messages[0])
	require.Equal(t, assistant("a1"), next.Messages[1])
	require.Equal(t, user("q2 revised"), next.Messages[2])
	// Destructive truncation is visible only on the new record.
	require.Len(t, orig.Messages, 4)
}

func TestCommitEdit_FirstMessage(t *testing.T) {
	orig := conv(user("q1"), assistant("a1"))
	next := orig.CommitEdit(0, "rewritten")

	require.Len(t, next.Messages, 1)
	require.Equal(t, user("rewritten"), next.Messages[0])
}

func TestCommitEdit_AssistantIndexUnchanged(t *testing.T) {
	orig := conv(user("q1"), assistant("a1"))
	next := orig.CommitEdit(1, "nope")

	require.Equal(t, orig.Messages, next.Messages)
}

func TestCommitEdit_OutOfRangeUnchanged(t *testing.T) {
	orig := conv(user("q1"))
	require.Equal(t, orig.Messages, orig.CommitEdit(5, "x").Messages)
	require.Equal(t, orig.Messages, orig.CommitEdit(-1, "x").Messages)
}

func TestEditSeed(t *testing.T) {
	c := conv(user("hello"), assistant("hi"))

	seed, ok := c.EditSeed(0)
	require.True(t, ok)
	require.Equal(t, "hello", seed)

	_, ok = c.EditSeed(1)
	require.False(t, ok, "assistant messages are not editable")
}

// =============================================================================
// REGENERATE TESTS
// =============================================================================

func TestRegenerate_KeepsStrictPrefix(t *testing.T) {
	orig := conv(user("q1"), assistant("a1"), user("q2"), assistant("a2"))
	next := orig.Regenerate(3)

	require.Len(t, next.Messages, 3)
	require.Equal(t, user("q2"), next.Messages[2])
	require.Len(t, orig.Messages, 4)
}

func TestRegenerate_FirstReply(t *testing.T) {
	orig := conv(user("q1"), assistant("a1"))
	next := orig.Regenerate(1)

	require.Len(t, next.Messages, 1)
	require.Equal(t, user("q1"), next.Messages[0])
}

func TestRegenerate_UserIndexUnchanged(t *testing.T) {
	orig := conv(user("q1"), assistant("a1"))
	require.Equal(t, orig.Messages, orig.Regenerate(0).Messages)
}

// =============================================================================
// RENAME TESTS
// =============================================================================

func TestRename(t *testing.T) {
	orig := conv(user("a"))
	next := orig.Rename("  Budget planning  ")

	require.Equal(t, "Budget planning", next.Title)
	require.Equal(t, "Test", orig.Title)
	require.Equal(t, orig.Messages, next.Messages)
}

func TestRename_BlankUnchanged(t *testing.T) {
	orig := conv(user("a"))
	require.Equal(t, "Test", orig.Rename("   ").Title)
}

// =============================================================================
// CONVERSION TESTS
// =============================================================================

func TestAPIMessages(t *testing.T) {
	c := conv(user("q"), assistant("a"))
	wire := c.APIMessages()

	require.Len(t, wire, 2)
	require.Equal(t, "user", wire[0].Role)
	require.Equal(t, "q", wire[0].Content)
	require.Equal(t, "assistant", wire[1].Role)
}

func TestClone_Independent(t *testing.T) {
	orig := conv(user("a"))
	clone := orig.Clone()
	clone.Messages[0].Content = "mutated"

	require.Equal(t, "a", orig.Messages[0].Content)
}
