// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/jeranaias/parley-tui/internal/api"
	"github.com/jeranaias/parley-tui/internal/chat"
	"github.com/jeranaias/parley-tui/internal/session"
	"github.com/jeranaias/parley-tui/internal/ui/styles"
)

func transcript(messages ...chat.Message) chat.Conversation {
	return chat.Conversation{ID: "c1", Title: "t", Messages: messages}
}

func testConvModel() convModel {
	ctrl := session.New(api.NewClient(""), nil)
	return newConvModel(styles.NewTheme("dark"), ctrl, nil, "", DefaultKeyMap())
}

func TestStreamDone_IgnoresOtherConversation(t *testing.T) {
	m := testConvModel()
	m.setConversation(chat.Conversation{ID: "b", Title: "B"})
	m.state = convStreaming

	// A stream started in another conversation resolves while this one
	// is on screen, mid-stream. The result must not land here.
	other := chat.Conversation{ID: "a", Title: "A", Messages: []chat.Message{
		{Role: chat.RoleUser, Content: "q"},
		{Role: chat.RoleAssistant, Content: "r"},
	}}
	next, _ := m.update(StreamDoneMsg{Conversation: other})
	require.Equal(t, "b", next.conversation.ID)
	require.Equal(t, convStreaming, next.state)

	// The matching completion still lands and re-enables input.
	own := chat.Conversation{ID: "b", Title: "B", Messages: []chat.Message{
		{Role: chat.RoleUser, Content: "q"},
		{Role: chat.RoleAssistant, Content: "r"},
	}}
	next, _ = next.update(StreamDoneMsg{Conversation: own})
	require.Equal(t, "b", next.conversation.ID)
	require.Equal(t, convReady, next.state)
	require.Len(t, next.conversation.Messages, 2)
}

func TestLastUserIndex(t *testing.T) {
	conv := transcript(
		chat.Message{Role: chat.RoleUser, Content: "q1"},
		chat.Message{Role: chat.RoleAssistant, Content: "a1"},
		chat.Message{Role: chat.RoleUser, Content: "q2"},
	)
	require.Equal(t, 2, lastUserIndex(conv))
	require.Equal(t, 1, lastAssistantIndex(conv))
}

func TestLastIndex_Empty(t *testing.T) {
	conv := transcript()
	require.Equal(t, -1, lastUserIndex(conv))
	require.Equal(t, -1, lastAssistantIndex(conv))
}

func TestStreamErrorText(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{session.ErrStreamInFlight, "A reply is already streaming"},
		{session.ErrBlankInput, "Message is empty"},
		{api.ErrAuthFailed, "Session expired, sign in again"},
		{api.ErrRateLimited, "Rate limited, wait a moment and retry"},
		{&api.APIError{Status: 500, Message: "backend down"}, "backend down"},
		{errors.New("dial tcp: refused"), "dial tcp: refused"},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, streamErrorText(tt.err))
	}
}

func TestAuthErrorText(t *testing.T) {
	require.Equal(t, "Invalid email or password", authErrorText(api.ErrAuthFailed))
	require.Equal(t, "That email is already registered", authErrorText(api.ErrEmailTaken))
}
