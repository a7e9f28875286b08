// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ui

import (
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/parley-tui/internal/api"
	"github.com/jeranaias/parley-tui/internal/chat"
	"github.com/jeranaias/parley-tui/internal/session"
	"github.com/jeranaias/parley-tui/internal/ui/components"
	"github.com/jeranaias/parley-tui/internal/ui/styles"
	"github.com/jeranaias/parley-tui/internal/util"
)

// =============================================================================
// CONVERSATION SCREEN
// =============================================================================

// convState is the conversation screen's interaction state.
type convState int

const (
	convReady convState = iota
	convStreaming
)

// editState tracks an in-progress message edit.
type editState struct {
	active bool
	index  int
}

// convModel is the Bubble Tea model for a single conversation. Streaming
// runs in a background command; the 30fps tick polls the controller's
// transient text so partial replies render as they arrive.
type convModel struct {
	theme     *styles.Theme
	session   *session.Controller
	markdown  MarkdownView
	codeStyle string
	keys      KeyMap

	conversation chat.Conversation
	state        convState
	edit         editState

	viewport viewport.Model
	input    textinput.Model
	spinner  spinner.Model

	renaming    bool
	renameInput textinput.Model

	// lastTransient is the streamed text rendered on the previous tick,
	// kept to skip redundant viewport rebuilds.
	lastTransient string

	errText string

	width  int
	height int
}

// MarkdownView narrows the markdown renderer used by the chat transcript.
type MarkdownView interface {
	SetWidth(width int)
	Render(text string) string
}

func newConvModel(theme *styles.Theme, ctrl *session.Controller, markdown MarkdownView, codeStyle string, keys KeyMap) convModel {
	input := textinput.New()
	input.Prompt = "> "
	input.Placeholder = "Type a message..."
	input.CharLimit = 4096
	input.Focus()

	rename := textinput.New()
	rename.Prompt = "Title: "
	rename.CharLimit = 80

	vp := viewport.New(80, 20)

	sp := spinner.New()
	sp.Spinner = spinner.Spinner{
		Frames: []string{"|", "/", "-", "\\"},
		FPS:    time.Second / 30,
	}

	return convModel{
		theme:       theme,
		session:     ctrl,
		markdown:    markdown,
		codeStyle:   codeStyle,
		keys:        keys,
		viewport:    vp,
		input:       input,
		spinner:     sp,
		renameInput: rename,
	}
}

// setConversation installs a conversation and resets transient view state.
// A conversation whose stream is still in flight opens with input
// disabled, not merely rejected on submit.
func (m *convModel) setConversation(conv chat.Conversation) {
	m.conversation = conv
	m.state = convReady
	if m.session.Streaming(conv.ID) {
		m.state = convStreaming
	}
	m.edit = editState{}
	m.errText = ""
	m.lastTransient = ""
	m.input.Reset()
	m.input.Focus()
	m.refreshViewport()
	m.viewport.GotoBottom()
}

func (m *convModel) setSize(width, height int) {
	m.width = width
	m.height = height

	const reservedHeight = 7 // header + info line + input area + status bar
	vpHeight := height - reservedHeight
	if vpHeight < 1 {
		vpHeight = 1
	}
	m.viewport.Width = width
	m.viewport.Height = vpHeight

	inputWidth := width - 8
	if inputWidth < 10 {
		inputWidth = 10
	}
	m.input.Width = inputWidth

	if m.markdown != nil {
		mdWidth := width - 10
		if mdWidth < 20 {
			mdWidth = 20
		}
		m.markdown.SetWidth(mdWidth)
	}

	m.refreshViewport()
}

func (m convModel) update(msg tea.Msg) (convModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case StreamTickMsg:
		if m.state != convStreaming {
			return m, nil
		}
		if partial := m.session.Transient(m.conversation.ID); partial != m.lastTransient {
			m.lastTransient = partial
			m.refreshViewport()
			m.viewport.GotoBottom()
		}
		return m, streamTickCmd()

	case StreamDoneMsg:
		return m.handleStreamDone(msg)

	case ConversationSavedMsg:
		if msg.Err != nil {
			m.errText = streamErrorText(msg.Err)
			return m, nil
		}
		m.conversation = msg.Conversation
		m.refreshViewport()
		return m, nil

	case spinner.TickMsg:
		if m.state == convStreaming {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil
	}

	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

func (m convModel) handleKey(msg tea.KeyMsg) (convModel, tea.Cmd) {
	if m.renaming {
		switch {
		case key.Matches(msg, m.keys.Back):
			m.renaming = false
			m.renameInput.Blur()
			m.input.Focus()
			return m, textinput.Blink
		case key.Matches(msg, m.keys.Select):
			title := m.renameInput.Value()
			m.renaming = false
			m.renameInput.Blur()
			m.input.Focus()
			if util.IsBlank(title) {
				return m, textinput.Blink
			}
			return m, renameCmd(m.session, m.conversation, title)
		default:
			var cmd tea.Cmd
			m.renameInput, cmd = m.renameInput.Update(msg)
			return m, cmd
		}
	}

	// Scrolling works in every state, streaming included.
	switch {
	case key.Matches(msg, m.keys.PageUp):
		m.viewport.HalfViewUp()
		return m, nil
	case key.Matches(msg, m.keys.PageDown):
		m.viewport.HalfViewDown()
		return m, nil
	case key.Matches(msg, m.keys.ScrollUp):
		m.viewport.LineUp(1)
		return m, nil
	case key.Matches(msg, m.keys.ScrollDown):
		m.viewport.LineDown(1)
		return m, nil
	}

	if m.state == convStreaming {
		// Input is disabled while a reply streams.
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Select):
		return m.submit()

	case key.Matches(msg, m.keys.Rename):
		m.renaming = true
		m.renameInput.SetValue(m.conversation.Title)
		m.renameInput.Focus()
		m.renameInput.CursorEnd()
		m.input.Blur()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Edit):
		// Edit the most recent user message.
		index := lastUserIndex(m.conversation)
		if seed, ok := m.conversation.EditSeed(index); ok {
			m.edit = editState{active: true, index: index}
			m.input.SetValue(seed)
			m.input.CursorEnd()
			m.errText = ""
		}
		return m, nil

	case key.Matches(msg, m.keys.Regenerate):
		// Regenerate the most recent assistant reply.
		index := lastAssistantIndex(m.conversation)
		if !m.conversation.CanRegenerate(index) {
			return m, nil
		}
		m.state = convStreaming
		m.errText = ""
		m.lastTransient = ""
		return m, tea.Batch(
			regenerateCmd(m.session, m.conversation, index),
			streamTickCmd(),
			m.spinner.Tick,
		)

	case key.Matches(msg, m.keys.Back):
		if m.edit.active {
			m.edit = editState{}
			m.input.Reset()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m convModel) submit() (convModel, tea.Cmd) {
	text := m.input.Value()
	if util.IsBlank(text) {
		return m, nil
	}

	var cmd tea.Cmd
	if m.edit.active {
		cmd = commitEditCmd(m.session, m.conversation, m.edit.index, text)
		m.edit = editState{}
	} else {
		cmd = sendCmd(m.session, m.conversation, text)
	}

	m.state = convStreaming
	m.errText = ""
	m.lastTransient = ""
	m.input.Reset()
	m.refreshViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(cmd, streamTickCmd(), m.spinner.Tick)
}

func (m convModel) handleStreamDone(msg StreamDoneMsg) (convModel, tea.Cmd) {
	// Streams outlive navigation, so a completion can arrive for a
	// conversation other than the one on screen. That result must not
	// replace the open transcript or re-enable input while this
	// conversation's own stream is still in flight.
	if msg.Conversation.ID != m.conversation.ID {
		return m, nil
	}

	m.state = convReady
	m.lastTransient = ""
	m.conversation = msg.Conversation
	if msg.Err != nil {
		m.errText = streamErrorText(msg.Err)
	}
	m.refreshViewport()
	m.viewport.GotoBottom()
	m.input.Focus()
	return m, textinput.Blink
}

// lastUserIndex returns the index of the most recent user message, or -1.
func lastUserIndex(conv chat.Conversation) int {
	for i := len(conv.Messages) - 1; i >= 0; i-- {
		if conv.Messages[i].Role == chat.RoleUser {
			return i
		}
	}
	return -1
}

// lastAssistantIndex returns the index of the most recent assistant
// message, or -1.
func lastAssistantIndex(conv chat.Conversation) int {
	for i := len(conv.Messages) - 1; i >= 0; i-- {
		if conv.Messages[i].Role == chat.RoleAssistant {
			return i
		}
	}
	return -1
}

// streamErrorText maps controller and API errors to a short display line.
func streamErrorText(err error) string {
	switch {
	case errors.Is(err, session.ErrStreamInFlight):
		return "A reply is already streaming"
	case errors.Is(err, session.ErrBlankInput):
		return "Message is empty"
	case errors.Is(err, api.ErrAuthFailed):
		return "Session expired, sign in again"
	case errors.Is(err, api.ErrRateLimited):
		return "Rate limited, wait a moment and retry"
	default:
		var apiErr *api.APIError
		if errors.As(err, &apiErr) {
			return apiErr.Message
		}
		return err.Error()
	}
}

// =============================================================================
// RENDERING
// =============================================================================

func (m *convModel) refreshViewport() {
	m.viewport.SetContent(m.renderTranscript())
}

func (m *convModel) renderTranscript() string {
	t := m.theme

	bubbleWidth := m.width - 10
	if bubbleWidth < 20 {
		bubbleWidth = 20
	}

	var rows []string
	for _, msg := range m.conversation.Messages {
		switch msg.Role {
		case chat.RoleUser:
			rows = append(rows, t.UserBubble.MaxWidth(bubbleWidth).Render(msg.Content))
		case chat.RoleAssistant:
			var body string
			if m.markdown != nil {
				body = m.markdown.Render(msg.Content)
			} else {
				// Markdown off: still highlight fenced code blocks.
				body = components.ParseCodeBlocks(msg.Content, bubbleWidth, m.codeStyle)
			}
			rows = append(rows, t.AssistantBubble.MaxWidth(bubbleWidth).Render(body))
		}
		rows = append(rows, "")
	}

	// Partial reply for the in-flight stream. Raw text, not markdown; a
	// half-received fence renders worse than plain text.
	if m.state == convStreaming {
		if m.lastTransient != "" {
			rows = append(rows, t.StreamingBubble.MaxWidth(bubbleWidth).Render(m.lastTransient), "")
		} else {
			rows = append(rows, t.ThinkingText.Render(m.spinner.View()+" Thinking..."), "")
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m convModel) view() string {
	t := m.theme

	title := m.conversation.Title
	if title == "" {
		title = chat.DefaultTitle
	}
	header := t.Header.Width(m.width).Render(title + "  " +
		t.HeaderSubtitle.Render(m.conversation.ModelTitle))

	// Info line: model about text and creation date.
	info := m.conversation.Date.Local().Format("Jan 2, 2006 15:04")
	if m.conversation.About != "" {
		about := util.TruncateWidth(util.CollapseNewlines(m.conversation.About), m.width-22)
		info = about + "  " + info
	}
	infoLine := t.ListMeta.Render(info)

	var inputArea string
	switch {
	case m.renaming:
		inputArea = t.InputContainer.Width(m.width).Render(m.renameInput.View())
	case m.state == convStreaming:
		inputArea = t.InputContainer.Width(m.width).Render(
			t.InputDisabled.Render(m.spinner.View() + " Waiting for reply..."))
	default:
		prompt := m.input.View()
		if m.edit.active {
			prompt = t.FormHint.Render("[editing] ") + prompt
		}
		inputArea = t.InputContainer.Width(m.width).Render(prompt)
	}

	rows := []string{header, infoLine, m.viewport.View()}
	if m.errText != "" {
		rows = append(rows, styles.RenderError(m.errText))
	}
	rows = append(rows, inputArea, m.statusBar())
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func (m convModel) statusBar() string {
	send := m.keys.Select
	send.SetHelp("Enter", "send")
	bar := renderShortcuts(m.theme, send, m.keys.Edit, m.keys.Regenerate, m.keys.Rename, m.keys.Back)
	return m.theme.StatusBar.Width(m.width).Render(bar)
}
