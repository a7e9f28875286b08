// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"github.com/charmbracelet/glamour"
)

// =============================================================================
// MARKDOWN RENDERER
// =============================================================================

// MarkdownRenderer renders assistant replies as terminal markdown. The
// glamour renderer is cached per width because rebuilding it on every
// frame is expensive, and streaming redraws frames constantly.
type MarkdownRenderer struct {
	renderer *glamour.TermRenderer
	width    int
	dark     bool
}

// NewMarkdownRenderer creates a renderer for the given wrap width.
func NewMarkdownRenderer(width int, dark bool) *MarkdownRenderer {
	return &MarkdownRenderer{width: width, dark: dark}
}

// SetWidth updates the wrap width, invalidating the cached renderer.
func (m *MarkdownRenderer) SetWidth(width int) {
	if width != m.width {
		m.width = width
		m.renderer = nil
	}
}

// Render renders markdown to styled terminal text. On any renderer error
// the raw text is returned so a bad reply never blanks the view.
func (m *MarkdownRenderer) Render(text string) string {
	if m.renderer == nil {
		style := glamour.WithStandardStyle("light")
		if m.dark {
			style = glamour.WithStandardStyle("dark")
		}
		r, err := glamour.NewTermRenderer(
			style,
			glamour.WithWordWrap(m.width),
			glamour.WithEmoji(),
		)
		if err != nil {
			return text
		}
		m.renderer = r
	}

	out, err := m.renderer.Render(text)
	if err != nil {
		return text
	}
	return out
}
