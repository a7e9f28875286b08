// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley-tui/internal/api"
	"github.com/jeranaias/parley-tui/internal/storage"
	"github.com/jeranaias/parley-tui/internal/ui/styles"
)

// =============================================================================
// AUTH COMMANDS
// =============================================================================

// authResultMsg carries the outcome of a login or register attempt.
type authResultMsg struct {
	user *api.User
	err  error
}

// loginCmd authenticates and persists the session on success.
func loginCmd(client *api.Client, store *storage.Store, email, password string) tea.Cmd {
	return func() tea.Msg {
		user, err := client.Login(context.Background(), email, password)
		if err != nil {
			return authResultMsg{err: err}
		}
		client.SetToken(user.Token)
		if err := store.SaveUser(*user); err != nil {
			return authResultMsg{err: err}
		}
		return authResultMsg{user: user}
	}
}

// registerCmd creates an account and persists the session on success.
func registerCmd(client *api.Client, store *storage.Store, name, email, password string) tea.Cmd {
	return func() tea.Msg {
		user, err := client.Register(context.Background(), name, email, password)
		if err != nil {
			return authResultMsg{err: err}
		}
		client.SetToken(user.Token)
		if err := store.SaveUser(*user); err != nil {
			return authResultMsg{err: err}
		}
		return authResultMsg{user: user}
	}
}

// validateSessionCmd checks a cached token against the backend. An auth
// failure clears the stored session so the next start goes to login.
func validateSessionCmd(client *api.Client, store *storage.Store) tea.Cmd {
	return func() tea.Msg {
		user, err := client.CurrentUser(context.Background())
		if err != nil {
			if errors.Is(err, api.ErrAuthFailed) {
				client.SetToken("")
				_ = store.ClearUser()
			}
			return AuthFailedMsg{Err: err}
		}
		if err := store.SaveUser(*user); err != nil {
			return AuthFailedMsg{Err: err}
		}
		return AuthSuccessMsg{User: *user}
	}
}

// logoutCmd clears the stored session.
func logoutCmd(client *api.Client, store *storage.Store) tea.Cmd {
	return func() tea.Msg {
		client.SetToken("")
		_ = store.ClearUser()
		return LoggedOutMsg{}
	}
}

// =============================================================================
// AUTH FORM
// =============================================================================

// authModel renders the login and register forms. One model serves both;
// registering shows an extra name field.
type authModel struct {
	theme  *styles.Theme
	client *api.Client
	store  *storage.Store

	registering bool
	fields      []textinput.Model
	focus       int
	busy        bool
	errText     string

	width  int
	height int
}

const (
	fieldName = iota
	fieldEmail
	fieldPassword
)

func newAuthModel(theme *styles.Theme, client *api.Client, store *storage.Store) authModel {
	name := textinput.New()
	name.Placeholder = "Name"
	name.CharLimit = 64

	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 128

	password := textinput.New()
	password.Placeholder = "Password"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	m := authModel{
		theme:  theme,
		client: client,
		store:  store,
		fields: []textinput.Model{name, email, password},
		focus:  fieldEmail,
	}
	m.fields[fieldEmail].Focus()
	return m
}

// setMode switches between login and register, resetting transient state.
func (m *authModel) setMode(registering bool) {
	m.registering = registering
	m.errText = ""
	m.busy = false
	first := fieldEmail
	if registering {
		first = fieldName
	}
	m.setFocus(first)
}

func (m *authModel) setFocus(index int) {
	m.focus = index
	for i := range m.fields {
		if i == index {
			m.fields[i].Focus()
		} else {
			m.fields[i].Blur()
		}
	}
}

func (m *authModel) visibleFields() []int {
	if m.registering {
		return []int{fieldName, fieldEmail, fieldPassword}
	}
	return []int{fieldEmail, fieldPassword}
}

func (m *authModel) cycleFocus(delta int) {
	visible := m.visibleFields()
	pos := 0
	for i, f := range visible {
		if f == m.focus {
			pos = i
			break
		}
	}
	pos = (pos + delta + len(visible)) % len(visible)
	m.setFocus(visible[pos])
}

func (m authModel) update(msg tea.Msg) (authModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			m.cycleFocus(1)
			return m, textinput.Blink
		case "shift+tab", "up":
			m.cycleFocus(-1)
			return m, textinput.Blink
		case "enter":
			return m.submit()
		case "ctrl+s":
			// Switch between login and register.
			m.setMode(!m.registering)
			return m, textinput.Blink
		}

	case authResultMsg:
		m.busy = false
		if msg.err != nil {
			m.errText = authErrorText(msg.err)
			return m, nil
		}
		return m, func() tea.Msg { return AuthSuccessMsg{User: *msg.user} }
	}

	var cmd tea.Cmd
	m.fields[m.focus], cmd = m.fields[m.focus].Update(msg)
	return m, cmd
}

func (m authModel) submit() (authModel, tea.Cmd) {
	email := strings.TrimSpace(m.fields[fieldEmail].Value())
	password := m.fields[fieldPassword].Value()
	if email == "" || password == "" {
		m.errText = "Email and password are required"
		return m, nil
	}

	m.busy = true
	m.errText = ""
	if m.registering {
		name := strings.TrimSpace(m.fields[fieldName].Value())
		if name == "" {
			m.busy = false
			m.errText = "Name is required"
			return m, nil
		}
		return m, registerCmd(m.client, m.store, name, email, password)
	}
	return m, loginCmd(m.client, m.store, email, password)
}

// authErrorText maps API errors to the short line under the form.
func authErrorText(err error) string {
	switch {
	case errors.Is(err, api.ErrAuthFailed):
		return "Invalid email or password"
	case errors.Is(err, api.ErrEmailTaken):
		return "That email is already registered"
	case errors.Is(err, api.ErrInvalidInput):
		return "Check the form fields and try again"
	case errors.Is(err, api.ErrRateLimited):
		return "Too many attempts, wait a moment"
	default:
		return err.Error()
	}
}

func (m authModel) view() string {
	t := m.theme

	title := "Sign in to parley"
	action := "Enter to sign in"
	toggle := "Ctrl+S to create an account"
	if m.registering {
		title = "Create a parley account"
		action = "Enter to register"
		toggle = "Ctrl+S to sign in instead"
	}

	labels := map[int]string{
		fieldName:     "Name",
		fieldEmail:    "Email",
		fieldPassword: "Password",
	}

	var rows []string
	rows = append(rows, t.HeaderTitle.Render(title), "")
	for _, f := range m.visibleFields() {
		style := t.FormFieldBlur
		if f == m.focus {
			style = t.FormFieldFocus
		}
		row := lipgloss.JoinHorizontal(lipgloss.Center,
			t.FormLabel.Render(labels[f]),
			style.Width(36).Render(m.fields[f].View()),
		)
		rows = append(rows, row)
	}

	if m.busy {
		rows = append(rows, "", t.ThinkingText.Render("Contacting server..."))
	} else if m.errText != "" {
		rows = append(rows, "", t.FormError.Render(m.errText))
	}
	rows = append(rows, "", t.FormHint.Render(action+"  |  "+toggle))

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, form)
	}
	return form
}
