// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/parley-tui/internal/api"
	"github.com/jeranaias/parley-tui/internal/catalog"
	"github.com/jeranaias/parley-tui/internal/chat"
	"github.com/jeranaias/parley-tui/internal/session"
	"github.com/jeranaias/parley-tui/internal/storage"
)

// =============================================================================
// NAVIGATION MESSAGES
// =============================================================================

// Screen identifies a top-level view.
type Screen int

const (
	ScreenLogin Screen = iota
	ScreenRegister
	ScreenExplore
	ScreenHistory
	ScreenChat
	ScreenProfile
)

// OpenConversationMsg opens a conversation in the chat screen.
type OpenConversationMsg struct {
	Conversation chat.Conversation
}

// =============================================================================
// AUTH MESSAGES
// =============================================================================

// AuthSuccessMsg is sent after a successful login, register, or token check.
type AuthSuccessMsg struct {
	User api.User
}

// AuthFailedMsg is sent when a stored token is no longer valid.
type AuthFailedMsg struct {
	Err error
}

// LoggedOutMsg is sent after the stored credentials were cleared.
type LoggedOutMsg struct{}

// UserUpdatedMsg is sent after a profile update round-trips.
type UserUpdatedMsg struct {
	User api.User
	Err  error
}

// =============================================================================
// CATALOG MESSAGES
// =============================================================================

// CatalogLoadedMsg carries the refreshed model catalogue.
type CatalogLoadedMsg struct {
	Models []api.Model
	Cached bool
	Err    error
}

// =============================================================================
// STREAMING MESSAGES
// =============================================================================

// StreamTickMsg drives the streaming redraw loop.
type StreamTickMsg struct {
	Time time.Time
}

func streamTickCmd() tea.Cmd {
	return tea.Tick(time.Second/30, func(t time.Time) tea.Msg {
		return StreamTickMsg{Time: t}
	})
}

// StreamDoneMsg is sent when a send, edit, or regenerate stream finishes.
type StreamDoneMsg struct {
	Conversation chat.Conversation
	Err          error
}

// ConversationSavedMsg is sent after a persist-only operation like rename.
type ConversationSavedMsg struct {
	Conversation chat.Conversation
	Err          error
}

// ConversationDeletedMsg is sent after a delete.
type ConversationDeletedMsg struct {
	ID  string
	Err error
}

// =============================================================================
// ASYNC COMMANDS
// =============================================================================

// sendCmd streams a user message through the session controller. Partial
// text is read back from Controller.Transient on each stream tick, so no
// onText callback is wired here.
func sendCmd(ctrl *session.Controller, conv chat.Conversation, text string) tea.Cmd {
	return func() tea.Msg {
		updated, err := ctrl.Send(context.Background(), conv, text, nil)
		return StreamDoneMsg{Conversation: updated, Err: err}
	}
}

// commitEditCmd rewrites a user message and streams a fresh reply.
func commitEditCmd(ctrl *session.Controller, conv chat.Conversation, index int, text string) tea.Cmd {
	return func() tea.Msg {
		updated, err := ctrl.CommitEdit(context.Background(), conv, index, text, nil)
		return StreamDoneMsg{Conversation: updated, Err: err}
	}
}

// regenerateCmd discards an assistant reply and streams a replacement.
func regenerateCmd(ctrl *session.Controller, conv chat.Conversation, index int) tea.Cmd {
	return func() tea.Msg {
		updated, err := ctrl.Regenerate(context.Background(), conv, index, nil)
		return StreamDoneMsg{Conversation: updated, Err: err}
	}
}

// renameCmd renames a conversation without streaming.
func renameCmd(ctrl *session.Controller, conv chat.Conversation, title string) tea.Cmd {
	return func() tea.Msg {
		updated, err := ctrl.Rename(conv, title)
		return ConversationSavedMsg{Conversation: updated, Err: err}
	}
}

// loadCatalogCmd refreshes the model catalogue, falling back to the cached
// copy when the network is down.
func loadCatalogCmd(client *api.Client, store *storage.Store) tea.Cmd {
	return func() tea.Msg {
		models, err := catalog.Refresh(context.Background(), client, store)
		if err != nil {
			cached, cacheErr := catalog.LoadCached(store)
			if cacheErr == nil && len(cached) > 0 {
				return CatalogLoadedMsg{Models: cached, Cached: true, Err: err}
			}
			return CatalogLoadedMsg{Err: err}
		}
		return CatalogLoadedMsg{Models: models}
	}
}
