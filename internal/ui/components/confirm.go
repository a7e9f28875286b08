// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley-tui/internal/ui/styles"
)

// =============================================================================
// CONFIRM DIALOG
// =============================================================================

// ConfirmDialog is a modal yes/no prompt, used before destructive actions
// like deleting a conversation. The cancel button is focused by default.
type ConfirmDialog struct {
	Title    string
	Message  string
	Danger   bool
	selected int // 0 = cancel, 1 = confirm
	theme    *styles.Theme
}

// ConfirmResultMsg is emitted when the dialog is resolved.
type ConfirmResultMsg struct {
	Confirmed bool
}

// NewConfirmDialog creates a dialog. When danger is true the confirm
// button renders in the destructive style.
func NewConfirmDialog(theme *styles.Theme, title, message string, danger bool) *ConfirmDialog {
	return &ConfirmDialog{
		Title:   title,
		Message: message,
		Danger:  danger,
		theme:   theme,
	}
}

// Update handles key input. It returns a ConfirmResultMsg command once the
// user picks a button or presses escape.
func (d *ConfirmDialog) Update(msg tea.Msg) (*ConfirmDialog, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return d, nil
	}

	switch keyMsg.String() {
	case "left", "h", "tab":
		d.selected = 0
	case "right", "l", "shift+tab":
		d.selected = 1
	case "y":
		return d, confirmResult(true)
	case "n", "esc":
		return d, confirmResult(false)
	case "enter":
		return d, confirmResult(d.selected == 1)
	}
	return d, nil
}

func confirmResult(confirmed bool) tea.Cmd {
	return func() tea.Msg {
		return ConfirmResultMsg{Confirmed: confirmed}
	}
}

// View renders the dialog box centered within the given dimensions.
func (d *ConfirmDialog) View(width, height int) string {
	t := d.theme

	cancel := t.DialogButton.Render("Cancel")
	if d.selected == 0 {
		cancel = t.DialogButtonActive.Render("Cancel")
	}

	confirmStyle := t.DialogButton
	if d.selected == 1 {
		confirmStyle = t.DialogButtonActive
		if d.Danger {
			confirmStyle = t.DialogDanger
		}
	}
	confirm := confirmStyle.Render("Confirm")

	buttons := lipgloss.JoinHorizontal(lipgloss.Center, cancel, "  ", confirm)
	body := lipgloss.JoinVertical(lipgloss.Center,
		t.DialogTitle.Render(d.Title),
		"",
		d.Message,
		"",
		buttons,
	)
	box := t.DialogBox.Render(body)

	if width > 0 && height > 0 {
		return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, box)
	}
	return box
}
