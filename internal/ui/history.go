// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley-tui/internal/chat"
	"github.com/jeranaias/parley-tui/internal/export"
	"github.com/jeranaias/parley-tui/internal/session"
	"github.com/jeranaias/parley-tui/internal/storage"
	"github.com/jeranaias/parley-tui/internal/ui/components"
	"github.com/jeranaias/parley-tui/internal/ui/styles"
	"github.com/jeranaias/parley-tui/internal/util"
)

// =============================================================================
// HISTORY SCREEN
// =============================================================================

// historyModel lists saved conversations, most recent first, with delete
// and rename affordances.
type historyModel struct {
	theme   *styles.Theme
	store   *storage.Store
	session *session.Controller
	keys    KeyMap

	conversations []chat.Conversation
	cursor        int
	errText       string
	okText        string

	confirm *components.ConfirmDialog

	renaming    bool
	renameInput textinput.Model

	width  int
	height int
}

func newHistoryModel(theme *styles.Theme, store *storage.Store, ctrl *session.Controller, keys KeyMap) historyModel {
	rename := textinput.New()
	rename.Prompt = "Title: "
	rename.CharLimit = 80

	return historyModel{
		theme:       theme,
		store:       store,
		session:     ctrl,
		keys:        keys,
		renameInput: rename,
	}
}

// reload re-reads the conversation list from the store.
func (m *historyModel) reload() {
	conversations, err := m.store.ListConversations()
	if err != nil {
		m.errText = err.Error()
		return
	}
	m.errText = ""
	m.okText = ""
	m.conversations = conversations
	if m.cursor >= len(m.conversations) {
		m.cursor = 0
	}
}

func (m *historyModel) selected() (chat.Conversation, bool) {
	if m.cursor < 0 || m.cursor >= len(m.conversations) {
		return chat.Conversation{}, false
	}
	return m.conversations[m.cursor], true
}

func (m historyModel) update(msg tea.Msg) (historyModel, tea.Cmd) {
	// The confirm dialog captures all input while open.
	if m.confirm != nil {
		switch msg := msg.(type) {
		case components.ConfirmResultMsg:
			m.confirm = nil
			if !msg.Confirmed {
				return m, nil
			}
			conv, ok := m.selected()
			if !ok {
				return m, nil
			}
			if err := m.store.DeleteConversation(conv.ID); err != nil {
				m.errText = err.Error()
				return m, nil
			}
			m.reload()
			return m, func() tea.Msg { return ConversationDeletedMsg{ID: conv.ID} }
		default:
			var cmd tea.Cmd
			m.confirm, cmd = m.confirm.Update(msg)
			return m, cmd
		}
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.renaming {
			switch {
			case key.Matches(msg, m.keys.Back):
				m.renaming = false
				m.renameInput.Blur()
				return m, nil
			case key.Matches(msg, m.keys.Select):
				conv, ok := m.selected()
				if !ok {
					m.renaming = false
					return m, nil
				}
				title := m.renameInput.Value()
				m.renaming = false
				m.renameInput.Blur()
				if util.IsBlank(title) {
					return m, nil
				}
				return m, renameCmd(m.session, conv, title)
			default:
				var cmd tea.Cmd
				m.renameInput, cmd = m.renameInput.Update(msg)
				return m, cmd
			}
		}

		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.conversations)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Select):
			if conv, ok := m.selected(); ok {
				return m, func() tea.Msg { return OpenConversationMsg{Conversation: conv} }
			}
		case key.Matches(msg, m.keys.Delete):
			if conv, ok := m.selected(); ok {
				m.confirm = components.NewConfirmDialog(m.theme,
					"Delete conversation",
					fmt.Sprintf("Delete %q? This cannot be undone.", conv.Title),
					true)
			}
		case key.Matches(msg, m.keys.Rename):
			if conv, ok := m.selected(); ok {
				m.renaming = true
				m.renameInput.SetValue(conv.Title)
				m.renameInput.Focus()
				m.renameInput.CursorEnd()
				return m, textinput.Blink
			}
		case key.Matches(msg, m.keys.Export):
			if conv, ok := m.selected(); ok {
				path, err := export.ToFile(conv, nil)
				if err != nil {
					m.errText = err.Error()
					return m, nil
				}
				m.errText = ""
				m.okText = "Exported to " + path
			}
		}

	case ConversationSavedMsg:
		if msg.Err != nil {
			m.errText = msg.Err.Error()
			return m, nil
		}
		m.reload()
	}

	return m, nil
}

func (m historyModel) view() string {
	t := m.theme

	header := t.Header.Width(m.width).Render("Conversations")

	var body string
	switch {
	case m.errText != "":
		body = styles.RenderError(m.errText)
	case len(m.conversations) == 0:
		body = t.ListMeta.Render("No conversations yet. Press C-e to explore models.")
	default:
		body = m.renderList()
	}

	rows := []string{header, body}
	if m.okText != "" {
		rows = append(rows, styles.RenderSuccess(m.okText))
	}
	if m.renaming {
		rows = append(rows, t.InputContainer.Render(m.renameInput.View()))
	}
	rows = append(rows, m.statusBar())
	view := lipgloss.JoinVertical(lipgloss.Left, rows...)

	if m.confirm != nil {
		return m.confirm.View(m.width, m.height)
	}
	return view
}

func (m historyModel) renderList() string {
	t := m.theme
	var rows []string
	for i, conv := range m.conversations {
		title := conv.Title
		if title == "" {
			title = chat.DefaultTitle
		}
		line := t.ListTitle.Render(util.PadRight(util.TruncateWidth(title, 40), 40)) +
			"  " + t.ListMeta.Render(conv.ModelTitle) +
			"  " + t.ListMeta.Render(conv.Date.Local().Format("Jan 2 15:04"))
		if m.session.Streaming(conv.ID) {
			line += "  " + t.Spinner.Render("streaming")
		}
		if i == m.cursor {
			rows = append(rows, t.ListItemSelected.Render("> "+line))
		} else {
			rows = append(rows, t.ListItem.Render("  "+line))
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m historyModel) statusBar() string {
	open := m.keys.Select
	open.SetHelp("Enter", "open")
	bar := renderShortcuts(m.theme, open, m.keys.Delete, m.keys.Rename, m.keys.Export, m.keys.Explore)
	return m.theme.StatusBar.Width(m.width).Render(bar)
}
