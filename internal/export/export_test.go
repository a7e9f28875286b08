// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/parley-tui/internal/chat"
)

func sampleConv() chat.Conversation {
	return chat.Conversation{
		ID:         "c1",
		Title:      "Trip planning",
		Model:      "m1",
		ModelTitle: "General Chat",
		Date:       time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC),
		Messages: []chat.Message{
			{Role: chat.RoleUser, Content: "Where should I go in May?"},
			{Role: chat.RoleAssistant, Content: "Consider Lisbon or Kyoto."},
		},
	}
}

func TestMarkdown(t *testing.T) {
	out, err := Markdown(sampleConv(), nil)
	require.NoError(t, err)

	text := string(out)
	require.Contains(t, text, "# Trip planning")
	require.Contains(t, text, "### [User]")
	require.Contains(t, text, "### [Assistant]")
	require.Contains(t, text, "Consider Lisbon or Kyoto.")
	require.Contains(t, text, "model: General Chat")
}

func TestMarkdown_NoMetadata(t *testing.T) {
	out, err := Markdown(sampleConv(), &Options{IncludeMetadata: false})
	require.NoError(t, err)
	require.False(t, strings.HasPrefix(string(out), "---"))
}

func TestMarkdown_EmptyConversation(t *testing.T) {
	conv := sampleConv()
	conv.Messages = nil
	_, err := Markdown(conv, nil)
	require.Error(t, err)
}

func TestToFile(t *testing.T) {
	dir := t.TempDir()
	path, err := ToFile(sampleConv(), &Options{OutputDir: dir, IncludeMetadata: true})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(path, dir))
	require.True(t, strings.HasSuffix(path, ".md"))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(content), "Trip planning")
}

func TestSanitizeFilename(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Trip planning", "Trip_planning"},
		{`a/b\c:d`, "a-b-c-d"},
		{"", "conversation"},
		{"tabs\tand\nnewlines", "tabs_and_newlines"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, sanitizeFilename(tt.in))
	}
}
