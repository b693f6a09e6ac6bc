package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yildizm/vidsynth/internal/common"
	"github.com/yildizm/vidsynth/internal/emoji"
)

const (
	defaultWidth  = 80
	defaultHeight = 24

	// header, blank line, status line, input box (3) and help line
	chromeHeight = 7
)

// ChatOptions configures the chat view
type ChatOptions struct {
	Theme        Theme
	NoColor      bool
	QueryTimeout time.Duration
}

// ChatModel is an interactive question/answer view over one video
type ChatModel struct {
	ctx     context.Context
	asker   Asker
	styles  *Styles
	timeout time.Duration

	width  int
	height int

	input    []rune
	pending  string
	thinking bool
	errText  string
	scroll   int
	quitting bool
}

// NewChatModel creates a chat view for asker
func NewChatModel(ctx context.Context, asker Asker, opts ChatOptions) *ChatModel {
	styles := NewStyles(opts.Theme)
	if opts.NoColor || IsColorDisabled() {
		styles = PlainStyles()
	}
	return &ChatModel{
		ctx:     ctx,
		asker:   asker,
		styles:  styles,
		timeout: opts.QueryTimeout,
		width:   defaultWidth,
		height:  defaultHeight,
	}
}

// Init initializes the chat model
func (m *ChatModel) Init() tea.Cmd {
	return nil
}

// Update handles messages
func (m *ChatModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case answerMsg:
		m.thinking = false
		m.pending = ""
		m.scroll = 0

	case askErrorMsg:
		// History is left as it was; the error is only shown
		m.thinking = false
		m.pending = ""
		m.errText = common.UserMessage(msg.err)
		if m.input == nil {
			m.input = []rune(msg.question)
		}
	}

	return m, nil
}

func (m *ChatModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.quitting = true
		return m, tea.Quit
	case tea.KeyEnter:
		return m.submit()
	case tea.KeyBackspace:
		if len(m.input) > 0 {
			m.input = m.input[:len(m.input)-1]
		}
	case tea.KeyCtrlU:
		m.input = nil
	case tea.KeyUp:
		m.scroll++
	case tea.KeyDown:
		if m.scroll > 0 {
			m.scroll--
		}
	case tea.KeyPgUp:
		m.scroll += m.viewportHeight()
	case tea.KeyPgDown:
		m.scroll = max(0, m.scroll-m.viewportHeight())
	case tea.KeySpace:
		m.input = append(m.input, ' ')
	case tea.KeyRunes:
		m.input = append(m.input, msg.Runes...)
	}
	return m, nil
}

func (m *ChatModel) submit() (tea.Model, tea.Cmd) {
	question := strings.TrimSpace(string(m.input))
	if question == "" || m.thinking {
		return m, nil
	}

	switch strings.ToLower(question) {
	case "exit", "quit":
		m.quitting = true
		return m, tea.Quit
	}

	m.input = nil
	m.errText = ""
	m.pending = question
	m.thinking = true
	m.scroll = 0
	return m, askCommand(m.ctx, m.asker, question, m.timeout)
}

// Thinking reports whether a question is being answered
func (m *ChatModel) Thinking() bool {
	return m.thinking
}

// Input returns the current contents of the input line
func (m *ChatModel) Input() string {
	return string(m.input)
}

// View renders the chat model
func (m *ChatModel) View() string {
	if m.quitting {
		return "Goodbye! " + emoji.GetEmoji("door") + "\n"
	}

	header := m.styles.Title.Render(emoji.GetEmoji("chat") + " vidsynth chat")
	if id := m.asker.VideoID(); id != "" {
		header += m.styles.Muted.Render("  " + emoji.GetEmoji("video") + " " + id)
	}

	lines := m.conversationLines()
	height := m.viewportHeight()
	end := len(lines) - min(m.scroll, max(0, len(lines)-height))
	start := max(0, end-height)
	conversation := strings.Join(lines[start:end], "\n")

	status := ""
	switch {
	case m.thinking:
		status = m.styles.Thinking.Render(emoji.GetEmoji("thinking") + " Thinking...")
	case m.errText != "":
		status = m.styles.Error.Render(emoji.GetEmoji("error") + " " + m.errText)
	}

	input := m.styles.Box.Width(max(10, m.width-4)).Render(
		m.styles.Prompt.Render("> ") + string(m.input))

	help := m.styles.Muted.Render("Enter to ask • ↑/↓ to scroll • Esc or 'exit' to quit")

	return lipgloss.JoinVertical(lipgloss.Left,
		header,
		conversation,
		"",
		status,
		input,
		help,
	)
}

func (m *ChatModel) viewportHeight() int {
	return max(1, m.height-chromeHeight)
}

// conversationLines renders the history plus the question in flight
func (m *ChatModel) conversationLines() []string {
	turns := m.asker.History()
	if m.pending != "" {
		turns = append(turns, common.NewTurn(common.RoleUser, m.pending))
	}

	if len(turns) == 0 {
		return []string{m.styles.Muted.Render(emoji.GetEmoji("hint") + " Ask anything about the video.")}
	}

	width := max(10, m.width-2)
	var lines []string
	for _, turn := range turns {
		var label string
		if turn.Role == common.RoleAssistant {
			label = m.styles.Assistant.Render(emoji.GetEmoji("answer") + " Assistant")
		} else {
			label = m.styles.User.Render(emoji.GetEmoji("user") + " You")
		}
		lines = append(lines, label)
		lines = append(lines, strings.Split(wrap(turn.Content, width), "\n")...)
		lines = append(lines, "")
	}
	return lines[:len(lines)-1]
}

// wrap breaks text into lines of at most width runes on word boundaries
func wrap(text string, width int) string {
	var b strings.Builder
	for i, paragraph := range strings.Split(text, "\n") {
		if i > 0 {
			b.WriteByte('\n')
		}
		lineLen := 0
		for _, word := range strings.Fields(paragraph) {
			n := len([]rune(word))
			if lineLen > 0 && lineLen+1+n > width {
				b.WriteByte('\n')
				lineLen = 0
			} else if lineLen > 0 {
				b.WriteByte(' ')
				lineLen++
			}
			b.WriteString(word)
			lineLen += n
		}
	}
	return b.String()
}

// RunChat runs the chat TUI until the user quits
func RunChat(ctx context.Context, asker Asker, opts ChatOptions) error {
	model := NewChatModel(ctx, asker, opts)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("chat UI: %w", err)
	}
	return nil
}
