// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"time"

	"github.com/google/uuid"

	"github.com/jeranaias/parley-tui/internal/api"
)

// DefaultTitle is the placeholder title given to a conversation before
// the user renames it.
const DefaultTitle = "New chat"

// =============================================================================
// ROLES
// =============================================================================

// Role identifies the author of a message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// =============================================================================
// CONVERSATION TYPE
// =============================================================================

// Message is one turn in a conversation.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Conversation is the persisted record for one chat. The model title and
// about text are snapshotted at creation time so the conversation still
// renders if the catalogue entry later changes or disappears.
type Conversation struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Model      string    `json:"model"`
	ModelTitle string    `json:"modelTitle"`
	About      string    `json:"about"`
	Date       time.Time `json:"date"`
	Messages   []Message `json:"messages"`
}

// NewConversation creates an empty conversation bound to a catalogue
// model, with a generated ID and the placeholder title.
func NewConversation(model api.Model) Conversation {
	return Conversation{
		ID:         uuid.NewString(),
		Title:      DefaultTitle,
		Model:      model.ID,
		ModelTitle: model.Title,
		About:      model.About,
		Date:       time.Now().UTC(),
		Messages:   []Message{},
	}
}

// IsEmpty reports whether the conversation has no messages.
func (c Conversation) IsEmpty() bool {
	return len(c.Messages) == 0
}

// LastMessage returns the most recent message and true, or a zero Message
// and false when the conversation is empty.
func (c Conversation) LastMessage() (Message, bool) {
	if len(c.Messages) == 0 {
		return Message{}, false
	}
	return c.Messages[len(c.Messages)-1], true
}

// APIMessages converts the history to the wire format the completion
// endpoint expects. The whole history is sent on every request.
func (c Conversation) APIMessages() []api.Message {
	messages := make([]api.Message, len(c.Messages))
	for i, m := range c.Messages {
		messages[i] = api.Message{Role: string(m.Role), Content: m.Content}
	}
	return messages
}

// Clone returns a deep copy of the conversation. The reducer operations
// already return fresh slices; Clone exists for callers that want to
// mutate a scratch copy directly.
func (c Conversation) Clone() Conversation {
	clone := c
	clone.Messages = make([]Message, len(c.Messages))
	copy(clone.Messages, c.Messages)
	return clone
}
