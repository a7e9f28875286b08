// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley-tui/internal/api"
	"github.com/jeranaias/parley-tui/internal/catalog"
	"github.com/jeranaias/parley-tui/internal/chat"
	"github.com/jeranaias/parley-tui/internal/storage"
	"github.com/jeranaias/parley-tui/internal/ui/styles"
	"github.com/jeranaias/parley-tui/internal/util"
)

// =============================================================================
// EXPLORE SCREEN
// =============================================================================

// exploreModel is the model catalogue browser. Models are grouped into
// category sections and filtered live as the user types a search query.
type exploreModel struct {
	theme *styles.Theme
	store *storage.Store
	keys  KeyMap

	models   []api.Model
	sections []catalog.Section
	loading  bool
	cached   bool
	errText  string

	search     textinput.Model
	searchMode bool

	// cursor is the index into the flattened model rows across sections.
	cursor int

	width  int
	height int
}

func newExploreModel(theme *styles.Theme, store *storage.Store, keys KeyMap) exploreModel {
	search := textinput.New()
	search.Prompt = "Search: "
	search.Placeholder = "Filter models..."
	search.CharLimit = 64

	return exploreModel{
		theme:   theme,
		store:   store,
		keys:    keys,
		loading: true,
		search:  search,
	}
}

// setModels installs a fresh catalogue and re-applies the current filter.
func (m *exploreModel) setModels(models []api.Model, cached bool) {
	m.models = models
	m.cached = cached
	m.loading = false
	m.errText = ""
	m.applyFilter()
}

func (m *exploreModel) applyFilter() {
	m.sections = catalog.Group(catalog.Search(m.models, m.search.Value()))
	if m.cursor >= m.rowCount() {
		m.cursor = 0
	}
}

func (m *exploreModel) rowCount() int {
	n := 0
	for _, s := range m.sections {
		n += len(s.Models)
	}
	return n
}

// selected returns the model under the cursor.
func (m *exploreModel) selected() (api.Model, bool) {
	i := m.cursor
	for _, s := range m.sections {
		if i < len(s.Models) {
			return s.Models[i], true
		}
		i -= len(s.Models)
	}
	return api.Model{}, false
}

func (m exploreModel) update(msg tea.Msg) (exploreModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.searchMode {
			// Esc, Enter, or an arrow down hands focus back to the list;
			// everything else types into the query.
			if key.Matches(msg, m.keys.Back, m.keys.Select) || msg.String() == "down" {
				m.searchMode = false
				m.search.Blur()
				return m, nil
			}
			var cmd tea.Cmd
			m.search, cmd = m.search.Update(msg)
			m.applyFilter()
			return m, cmd
		}

		switch {
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case key.Matches(msg, m.keys.Down):
			if m.cursor < m.rowCount()-1 {
				m.cursor++
			}
			return m, nil
		case key.Matches(msg, m.keys.Search):
			m.searchMode = true
			m.search.Focus()
			return m, textinput.Blink
		case key.Matches(msg, m.keys.Select):
			model, ok := m.selected()
			if !ok {
				return m, nil
			}
			conv := chat.NewConversation(model)
			if err := m.store.UpsertConversation(conv); err != nil {
				m.errText = err.Error()
				return m, nil
			}
			return m, func() tea.Msg { return OpenConversationMsg{Conversation: conv} }
		}

	case CatalogLoadedMsg:
		if msg.Err != nil && len(msg.Models) == 0 {
			m.loading = false
			m.errText = msg.Err.Error()
			return m, nil
		}
		m.setModels(msg.Models, msg.Cached)
		return m, nil
	}

	return m, nil
}

func (m exploreModel) view() string {
	t := m.theme

	header := t.Header.Width(m.width).Render("Explore models")
	var body string

	switch {
	case m.loading:
		body = t.ThinkingText.Render("Loading models...")
	case m.errText != "":
		body = styles.RenderError(m.errText)
	case m.rowCount() == 0:
		body = t.ListMeta.Render("No models match the search")
	default:
		body = m.renderSections()
	}

	var rows []string
	rows = append(rows, header)
	if m.searchMode || m.search.Value() != "" {
		rows = append(rows, t.InputContainer.Render(m.search.View()))
	}
	if m.cached {
		rows = append(rows, t.ListMeta.Render("(offline, showing cached catalogue)"))
	}
	rows = append(rows, body)
	rows = append(rows, m.statusBar())

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m exploreModel) renderSections() string {
	t := m.theme
	var rows []string
	row := 0
	for _, section := range m.sections {
		heading := fmt.Sprintf("%s %s", section.Category.Icon(), section.Category.Title())
		count := t.SectionCount.Render(fmt.Sprintf(" (%d)", len(section.Models)))
		rows = append(rows, t.SectionHeader.Render(heading)+count)

		for _, model := range section.Models {
			line := t.ListTitle.Render(model.Title)
			if model.About != "" {
				about := util.TruncateRunes(util.CollapseNewlines(model.About), 60)
				line += "  " + t.ListMeta.Render(about)
			}
			if row == m.cursor {
				rows = append(rows, t.ListItemSelected.Render("> "+line))
			} else {
				rows = append(rows, t.ListItem.Render("  "+line))
			}
			row++
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m exploreModel) statusBar() string {
	start := m.keys.Select
	start.SetHelp("Enter", "start chat")
	bar := renderShortcuts(m.theme, start, m.keys.Search, m.keys.History, m.keys.Profile)
	return m.theme.StatusBar.Width(m.width).Render(bar)
}
