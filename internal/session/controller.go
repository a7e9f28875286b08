// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"sync"

	"github.com/jeranaias/parley-tui/internal/api"
	"github.com/jeranaias/parley-tui/internal/chat"
	"github.com/jeranaias/parley-tui/internal/storage"
	"github.com/jeranaias/parley-tui/internal/util"
)

// Error variables for request preconditions.
var (
	// ErrStreamInFlight indicates a completion is already streaming for
	// the conversation. The send affordance should be disabled while a
	// stream is active; this error is the backstop when it is not.
	ErrStreamInFlight = errors.New("a reply is already streaming")

	// ErrBlankInput indicates the message or title was empty after
	// trimming.
	ErrBlankInput = errors.New("input is blank")

	// ErrInvalidTarget indicates the message index does not support the
	// requested operation (editing a reply, regenerating a question).
	ErrInvalidTarget = errors.New("operation not valid for this message")
)

// =============================================================================
// CONTROLLER
// =============================================================================

// Controller sequences reducer operations with store writes and the
// completion stream.
//
// The protocol per send (and identically per edit-commit and regenerate,
// differing only in the reducer operation) is: compute the pre-stream
// message list, persist it so the user's text is durable even if the
// network step fails, stream exactly one completion for it, and on
// success append the reply and persist again. Text accumulated from a
// failed stream is never persisted.
type Controller struct {
	client *api.Client
	store  *storage.Store

	mu        sync.Mutex
	streaming map[string]bool
	transient map[string]string
}

// New creates a controller over the given API client and store.
func New(client *api.Client, store *storage.Store) *Controller {
	return &Controller{
		client:    client,
		store:     store,
		streaming: make(map[string]bool),
		transient: make(map[string]string),
	}
}

// Streaming reports whether a completion is in flight for the
// conversation. The view uses this to disable the send affordance.
func (s *Controller) Streaming(conversationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.streaming[conversationID]
}

// Transient returns the partial reply text for an in-flight stream. It is
// display state only and is cleared, not persisted, when the stream
// resolves.
func (s *Controller) Transient(conversationID string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.transient[conversationID]
}

// =============================================================================
// OPERATIONS
// =============================================================================

// Send appends a user message and streams the reply. The returned record
// is the latest persisted state: with the reply appended on success, or
// the pre-stream record when the stream failed or produced no text.
func (s *Controller) Send(ctx context.Context, conv chat.Conversation, text string, onText api.OnTextFunc) (chat.Conversation, error) {
	if util.IsBlank(text) {
		return conv, ErrBlankInput
	}
	return s.run(ctx, conv.AppendUser(text), onText)
}

// CommitEdit replaces the user message at index, discards the superseded
// turns, and streams a fresh reply for the truncated history.
func (s *Controller) CommitEdit(ctx context.Context, conv chat.Conversation, index int, text string, onText api.OnTextFunc) (chat.Conversation, error) {
	if util.IsBlank(text) {
		return conv, ErrBlankInput
	}
	if !conv.CanEdit(index) {
		return conv, ErrInvalidTarget
	}
	return s.run(ctx, conv.CommitEdit(index, text), onText)
}

// Regenerate discards the assistant message at index and everything after
// it, then streams a new reply for the remaining prefix.
func (s *Controller) Regenerate(ctx context.Context, conv chat.Conversation, index int, onText api.OnTextFunc) (chat.Conversation, error) {
	if !conv.CanRegenerate(index) {
		return conv, ErrInvalidTarget
	}
	return s.run(ctx, conv.Regenerate(index), onText)
}

// Rename persists the conversation under a new trimmed title. No stream
// is involved.
func (s *Controller) Rename(conv chat.Conversation, title string) (chat.Conversation, error) {
	if util.IsBlank(title) {
		return conv, ErrBlankInput
	}
	next := conv.Rename(title)
	if err := s.store.UpsertConversation(next); err != nil {
		return conv, err
	}
	return next, nil
}

// =============================================================================
// STREAM PROTOCOL
// =============================================================================

// run persists the pre-stream record, streams one completion for it, and
// commits the reply. conv must already carry the pre-stream message list.
func (s *Controller) run(ctx context.Context, conv chat.Conversation, onText api.OnTextFunc) (chat.Conversation, error) {
	if err := s.acquire(conv.ID); err != nil {
		return conv, err
	}
	defer s.release(conv.ID)

	// The user's text must be durable before the network is touched.
	if err := s.store.UpsertConversation(conv); err != nil {
		return conv, err
	}

	text, err := s.client.Complete(ctx, conv.Model, conv.APIMessages(), func(partial string) {
		s.setTransient(conv.ID, partial)
		if onText != nil {
			onText(partial)
		}
	})
	if err != nil {
		// The pre-stream record stays as the durable state; partial
		// text was already discarded by the client.
		return conv, err
	}

	// An empty completion persists nothing.
	if text == "" {
		return conv, nil
	}

	// There is no cancellation primitive: the user may have deleted the
	// conversation while the stream ran. A reply for a conversation that
	// no longer exists is discarded, not resurrected.
	if _, err := s.store.GetConversation(conv.ID); err != nil {
		if errors.Is(err, storage.ErrConversationNotFound) {
			return conv, nil
		}
		return conv, err
	}

	final := conv.AppendAssistant(text)
	if err := s.store.UpsertConversation(final); err != nil {
		return conv, err
	}
	return final, nil
}

// acquire marks the conversation as streaming, rejecting a second stream.
func (s *Controller) acquire(conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.streaming[conversationID] {
		return ErrStreamInFlight
	}
	s.streaming[conversationID] = true
	return nil
}

// release clears the streaming flag and the transient display text.
func (s *Controller) release(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.streaming, conversationID)
	delete(s.transient, conversationID)
}

func (s *Controller) setTransient(conversationID, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.transient[conversationID] = text
}
