// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ui is the Bubble Tea front end for parley. The App model routes
// between the auth, explore, history, conversation, and profile screens
// and owns the shared toast stack.
package ui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/parley-tui/internal/api"
	"github.com/jeranaias/parley-tui/internal/config"
	"github.com/jeranaias/parley-tui/internal/session"
	"github.com/jeranaias/parley-tui/internal/storage"
	"github.com/jeranaias/parley-tui/internal/ui/components"
	"github.com/jeranaias/parley-tui/internal/ui/styles"
)

// =============================================================================
// APP MODEL
// =============================================================================

// App is the root Bubble Tea model.
type App struct {
	theme   *styles.Theme
	keys    KeyMap
	cfg     *config.Config
	client  *api.Client
	store   *storage.Store
	session *session.Controller
	toasts  *components.ToastManager

	screen Screen
	user   *api.User

	auth    authModel
	explore exploreModel
	history historyModel
	chat    convModel
	profile profileModel

	// hasCachedUser gates the startup flow: with a cached token the app
	// opens on history and validates in the background, otherwise it opens
	// on the login form.
	hasCachedUser bool

	activeToasts []components.Toast

	width  int
	height int
}

// NewApp wires the root model. A cached user, if any, was loaded by the
// caller and its token already set on the client.
func NewApp(cfg *config.Config, client *api.Client, store *storage.Store, cachedUser *api.User) App {
	theme := styles.NewTheme(cfg.UI.Theme)
	ctrl := session.New(client, store)

	var markdown MarkdownView
	if cfg.UI.Markdown {
		markdown = components.NewMarkdownRenderer(80, theme.IsDark)
	}

	keys := DefaultKeyMap()
	app := App{
		theme:         theme,
		keys:          keys,
		cfg:           cfg,
		client:        client,
		store:         store,
		session:       ctrl,
		toasts:        components.NewToastManager(),
		auth:          newAuthModel(theme, client, store),
		explore:       newExploreModel(theme, store, keys),
		history:       newHistoryModel(theme, store, ctrl, keys),
		chat:          newConvModel(theme, ctrl, markdown, cfg.UI.CodeStyle, keys),
		profile:       newProfileModel(theme, client, store),
		user:          cachedUser,
		hasCachedUser: cachedUser != nil,
		screen:        ScreenLogin,
	}
	if app.hasCachedUser {
		app.screen = ScreenHistory
		app.history.reload()
		app.profile.setUser(*cachedUser)
	}
	return app
}

// Init starts background work: catalogue refresh always, token validation
// when a cached session exists.
func (a App) Init() tea.Cmd {
	cmds := []tea.Cmd{loadCatalogCmd(a.client, a.store)}
	if a.hasCachedUser {
		cmds = append(cmds, validateSessionCmd(a.client, a.store))
	}
	return tea.Batch(cmds...)
}

// Update routes messages to the active screen.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		return a.handleResize(msg)

	case tea.KeyMsg:
		if handled, model, cmd := a.handleGlobalKey(msg); handled {
			return model, cmd
		}

	case OpenConversationMsg:
		a.chat.setConversation(msg.Conversation)
		a.chat.setSize(a.width, a.height)
		a.screen = ScreenChat
		if a.chat.state == convStreaming {
			// Re-opened mid-stream: restart the redraw loop.
			return a, tea.Batch(streamTickCmd(), a.chat.spinner.Tick)
		}
		return a, nil

	case AuthSuccessMsg:
		user := msg.User
		a.user = &user
		a.profile.setUser(user)
		if a.screen == ScreenLogin || a.screen == ScreenRegister {
			a.screen = ScreenHistory
			a.history.reload()
		}
		return a, loadCatalogCmd(a.client, a.store)

	case AuthFailedMsg:
		// Only an invalid token forces re-auth; a network failure keeps
		// the cached session usable offline.
		if a.client.Token() == "" {
			a.user = nil
			a.screen = ScreenLogin
			a.auth.setMode(false)
			a.toasts.AddError("Session expired, sign in again")
		} else {
			a.toasts.AddStatus("Offline: " + msg.Err.Error())
		}
		return a, components.ToastTickCmd()

	case LoggedOutMsg:
		a.user = nil
		a.screen = ScreenLogin
		a.auth.setMode(false)
		return a, nil

	case CatalogLoadedMsg:
		var cmd tea.Cmd
		a.explore, cmd = a.explore.update(msg)
		if msg.Err != nil {
			a.toasts.AddError("Model catalogue: " + msg.Err.Error())
			return a, tea.Batch(cmd, components.ToastTickCmd())
		}
		return a, cmd

	case StreamDoneMsg:
		var cmd tea.Cmd
		a.chat, cmd = a.chat.update(msg)
		if msg.Err != nil {
			a.toasts.AddError(streamErrorText(msg.Err))
			return a, tea.Batch(cmd, components.ToastTickCmd())
		}
		return a, cmd

	case ConversationDeletedMsg:
		// Deleting the open conversation navigates away from it.
		if a.screen == ScreenChat && a.chat.conversation.ID == msg.ID {
			a.screen = ScreenHistory
			a.history.reload()
		}
		return a, nil

	case StreamTickMsg:
		// Stream ticks always reach the chat model, even when the user
		// navigated away mid-stream, so the loop survives the round trip.
		var cmd tea.Cmd
		a.chat, cmd = a.chat.update(msg)
		return a, cmd

	case components.ToastTickMsg:
		a.activeToasts = a.toasts.Tick()
		if len(a.activeToasts) > 0 {
			return a, components.ToastTickCmd()
		}
		return a, nil
	}

	return a.routeToScreen(msg)
}

// handleGlobalKey handles bindings that work on every screen. It reports
// whether the key was consumed.
func (a App) handleGlobalKey(msg tea.KeyMsg) (bool, tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.Quit) {
		return true, a, tea.Quit
	}

	// The rest of the global bindings need a signed-in user.
	if a.user == nil {
		return false, a, nil
	}

	switch {
	case key.Matches(msg, a.keys.Explore, a.keys.NewChat):
		if a.screen != ScreenExplore {
			a.screen = ScreenExplore
			return true, a, nil
		}
	case key.Matches(msg, a.keys.History):
		if a.screen != ScreenHistory {
			a.screen = ScreenHistory
			a.history.reload()
			return true, a, nil
		}
	case key.Matches(msg, a.keys.Profile):
		if a.screen != ScreenProfile {
			a.screen = ScreenProfile
			return true, a, nil
		}
	case key.Matches(msg, a.keys.Logout):
		if a.screen == ScreenProfile {
			return true, a, logoutCmd(a.client, a.store)
		}
	case key.Matches(msg, a.keys.Back):
		// Back navigation, unless the screen is mid-interaction and needs
		// the key itself.
		switch a.screen {
		case ScreenChat:
			if !a.chat.renaming && !a.chat.edit.active {
				a.screen = ScreenHistory
				a.history.reload()
				return true, a, nil
			}
		case ScreenProfile, ScreenExplore:
			if a.screen == ScreenExplore && a.explore.searchMode {
				break
			}
			a.screen = ScreenHistory
			a.history.reload()
			return true, a, nil
		}
	}

	return false, a, nil
}

func (a App) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	a.width = msg.Width
	a.height = msg.Height

	a.auth.width, a.auth.height = msg.Width, msg.Height
	a.explore.width, a.explore.height = msg.Width, msg.Height
	a.history.width, a.history.height = msg.Width, msg.Height
	a.profile.width, a.profile.height = msg.Width, msg.Height
	a.chat.setSize(msg.Width, msg.Height)

	return a, nil
}

// routeToScreen forwards a message to the active screen's update.
func (a App) routeToScreen(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch a.screen {
	case ScreenLogin, ScreenRegister:
		a.auth, cmd = a.auth.update(msg)
	case ScreenExplore:
		a.explore, cmd = a.explore.update(msg)
	case ScreenHistory:
		a.history, cmd = a.history.update(msg)
	case ScreenChat:
		a.chat, cmd = a.chat.update(msg)
	case ScreenProfile:
		a.profile, cmd = a.profile.update(msg)
	}
	return a, cmd
}

// View renders the active screen with the toast stack on top.
func (a App) View() string {
	var view string
	switch a.screen {
	case ScreenLogin, ScreenRegister:
		view = a.auth.view()
	case ScreenExplore:
		view = a.explore.view()
	case ScreenHistory:
		view = a.history.view()
	case ScreenChat:
		view = a.chat.view()
	case ScreenProfile:
		view = a.profile.view()
	}

	if len(a.activeToasts) > 0 {
		return view + "\n" + components.RenderToastStack(a.activeToasts, a.width, 0)
	}
	return view
}
