// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley-tui/internal/api"
	"github.com/jeranaias/parley-tui/internal/storage"
	"github.com/jeranaias/parley-tui/internal/ui/styles"
)

// =============================================================================
// PROFILE SCREEN
// =============================================================================

// profileModel shows the signed-in account and lets the user change their
// name, email, or password. Blank fields are left unchanged.
type profileModel struct {
	theme  *styles.Theme
	client *api.Client
	store  *storage.Store

	user    api.User
	fields  []textinput.Model
	focus   int
	busy    bool
	errText string
	okText  string

	width  int
	height int
}

const (
	profileName = iota
	profileEmail
	profilePassword
)

func newProfileModel(theme *styles.Theme, client *api.Client, store *storage.Store) profileModel {
	name := textinput.New()
	name.Placeholder = "Name"
	name.CharLimit = 64

	email := textinput.New()
	email.Placeholder = "Email"
	email.CharLimit = 128

	password := textinput.New()
	password.Placeholder = "New password (optional)"
	password.CharLimit = 128
	password.EchoMode = textinput.EchoPassword
	password.EchoCharacter = '*'

	m := profileModel{
		theme:  theme,
		client: client,
		store:  store,
		fields: []textinput.Model{name, email, password},
	}
	m.fields[profileName].Focus()
	return m
}

// setUser seeds the form from the signed-in account.
func (m *profileModel) setUser(user api.User) {
	m.user = user
	m.fields[profileName].SetValue(user.Name)
	m.fields[profileEmail].SetValue(user.Email)
	m.fields[profilePassword].Reset()
	m.errText = ""
	m.okText = ""
	m.busy = false
	m.setFocus(profileName)
}

func (m *profileModel) setFocus(index int) {
	m.focus = index
	for i := range m.fields {
		if i == index {
			m.fields[i].Focus()
		} else {
			m.fields[i].Blur()
		}
	}
}

func (m profileModel) update(msg tea.Msg) (profileModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.busy {
			return m, nil
		}
		switch msg.String() {
		case "tab", "down":
			m.setFocus((m.focus + 1) % len(m.fields))
			return m, textinput.Blink
		case "shift+tab", "up":
			m.setFocus((m.focus + len(m.fields) - 1) % len(m.fields))
			return m, textinput.Blink
		case "enter":
			return m.submit()
		}

	case UserUpdatedMsg:
		m.busy = false
		if msg.Err != nil {
			m.errText = authErrorText(msg.Err)
			return m, nil
		}
		m.setUser(msg.User)
		m.okText = "Profile updated"
		return m, nil
	}

	var cmd tea.Cmd
	m.fields[m.focus], cmd = m.fields[m.focus].Update(msg)
	return m, cmd
}

func (m profileModel) submit() (profileModel, tea.Cmd) {
	update := api.UpdateUserRequest{}
	changed := false

	if name := strings.TrimSpace(m.fields[profileName].Value()); name != "" && name != m.user.Name {
		update.Name = name
		changed = true
	}
	if email := strings.TrimSpace(m.fields[profileEmail].Value()); email != "" && email != m.user.Email {
		update.Email = email
		changed = true
	}
	if password := m.fields[profilePassword].Value(); password != "" {
		update.Password = password
		changed = true
	}

	if !changed {
		m.okText = "Nothing to update"
		return m, nil
	}

	m.busy = true
	m.errText = ""
	m.okText = ""
	return m, updateUserCmd(m.client, m.store, update)
}

// updateUserCmd round-trips a profile update and persists the refreshed
// account record.
func updateUserCmd(client *api.Client, store *storage.Store, update api.UpdateUserRequest) tea.Cmd {
	return func() tea.Msg {
		user, err := client.UpdateUser(context.Background(), update)
		if err != nil {
			return UserUpdatedMsg{Err: err}
		}
		if user.Token != "" {
			client.SetToken(user.Token)
		}
		if err := store.SaveUser(*user); err != nil {
			return UserUpdatedMsg{Err: err}
		}
		return UserUpdatedMsg{User: *user}
	}
}

func (m profileModel) view() string {
	t := m.theme

	labels := []string{"Name", "Email", "Password"}
	var rows []string
	rows = append(rows,
		t.HeaderTitle.Render("Profile"),
		t.ListMeta.Render("Signed in as "+m.user.Email),
		"",
	)
	for i, field := range m.fields {
		style := t.FormFieldBlur
		if i == m.focus {
			style = t.FormFieldFocus
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Center,
			t.FormLabel.Render(labels[i]),
			style.Width(36).Render(field.View()),
		))
	}

	switch {
	case m.busy:
		rows = append(rows, "", t.ThinkingText.Render("Saving..."))
	case m.errText != "":
		rows = append(rows, "", t.FormError.Render(m.errText))
	case m.okText != "":
		rows = append(rows, "", styles.RenderSuccess(m.okText))
	}
	rows = append(rows, "", t.FormHint.Render("Enter to save  |  Ctrl+L to log out  |  Esc to go back"))

	form := lipgloss.JoinVertical(lipgloss.Left, rows...)
	if m.width > 0 && m.height > 0 {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, form)
	}
	return form
}
