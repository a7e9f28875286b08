// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"sort"

	"github.com/jeranaias/parley-tui/internal/chat"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrConversationNotFound is returned when a conversation ID is not in
// the history slot. Use errors.Is(err, ErrConversationNotFound).
var ErrConversationNotFound = &StoreError{Message: "conversation not found"}

// StoreError represents a store-related error. It can be compared using
// errors.Is.
type StoreError struct {
	Message string
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	return e.Message
}

// Is implements errors.Is support.
func (e *StoreError) Is(target error) bool {
	t, ok := target.(*StoreError)
	if !ok {
		return false
	}
	return e.Message == t.Message
}

// =============================================================================
// HISTORY SLOT
// =============================================================================

// LoadHistory reads the full conversation history. A missing slot yields
// an empty, non-nil list.
func (s *Store) LoadHistory() ([]chat.Conversation, error) {
	history := []chat.Conversation{}
	if _, err := s.readSlot(historyFile, &history); err != nil {
		return nil, err
	}
	return history, nil
}

// SaveHistory replaces the whole history slot.
func (s *Store) SaveHistory(history []chat.Conversation) error {
	if history == nil {
		history = []chat.Conversation{}
	}
	return s.writeSlot(historyFile, history)
}

// GetConversation returns the conversation with the given ID, or
// ErrConversationNotFound.
func (s *Store) GetConversation(id string) (chat.Conversation, error) {
	history, err := s.LoadHistory()
	if err != nil {
		return chat.Conversation{}, err
	}
	for _, c := range history {
		if c.ID == id {
			return c, nil
		}
	}
	return chat.Conversation{}, ErrConversationNotFound
}

// UpsertConversation replaces the stored record with the same ID, or
// appends it when absent, then writes the whole slot back.
func (s *Store) UpsertConversation(conv chat.Conversation) error {
	history, err := s.LoadHistory()
	if err != nil {
		return err
	}

	replaced := false
	for i, c := range history {
		if c.ID == conv.ID {
			history[i] = conv
			replaced = true
			break
		}
	}
	if !replaced {
		history = append(history, conv)
	}

	return s.SaveHistory(history)
}

// DeleteConversation removes the record with the given ID and writes the
// slot back. Deleting an absent ID returns ErrConversationNotFound.
func (s *Store) DeleteConversation(id string) error {
	history, err := s.LoadHistory()
	if err != nil {
		return err
	}

	for i, c := range history {
		if c.ID == id {
			history = append(history[:i], history[i+1:]...)
			return s.SaveHistory(history)
		}
	}
	return ErrConversationNotFound
}

// ListConversations returns the history sorted by date, most recent
// first, the order the chat list renders in.
func (s *Store) ListConversations() ([]chat.Conversation, error) {
	history, err := s.LoadHistory()
	if err != nil {
		return nil, err
	}
	sort.SliceStable(history, func(i, j int) bool {
		return history[i].Date.After(history[j].Date)
	})
	return history, nil
}
