package ui

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yildizm/vidsynth/internal/common"
	"github.com/yildizm/vidsynth/internal/emoji"
	"github.com/yildizm/vidsynth/internal/rag"
)

type fakeAsker struct {
	mu      sync.Mutex
	history []common.ConversationTurn
	reply   string
	err     error
}

func (f *fakeAsker) Ask(_ context.Context, question string) (*rag.Answer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.history = append(f.history,
		common.NewTurn(common.RoleUser, question),
		common.NewTurn(common.RoleAssistant, f.reply))
	return &rag.Answer{Question: question, Text: f.reply}, nil
}

func (f *fakeAsker) History() []common.ConversationTurn {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]common.ConversationTurn(nil), f.history...)
}

func (f *fakeAsker) VideoID() string { return "abcdefghijk" }

func newTestModel(asker Asker) *ChatModel {
	emoji.SetEmojiDisabled(true)
	m := NewChatModel(context.Background(), asker, ChatOptions{Theme: DefaultTheme, NoColor: true})
	m.Update(tea.WindowSizeMsg{Width: 80, Height: 30})
	return m
}

func typeText(m *ChatModel, text string) {
	m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(text)})
}

func TestChatModelAsk(t *testing.T) {
	asker := &fakeAsker{reply: "Nuclear fusion powers the sun."}
	m := newTestModel(asker)

	typeText(m, "What powers")
	m.Update(tea.KeyMsg{Type: tea.KeySpace})
	typeText(m, "the sun?")
	if got := m.Input(); got != "What powers the sun?" {
		t.Fatalf("Input() = %q", got)
	}

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("expected a command after submitting a question")
	}
	if !m.Thinking() {
		t.Error("model should be thinking while the answer is pending")
	}
	if m.Input() != "" {
		t.Errorf("input should be cleared, got %q", m.Input())
	}
	if view := m.View(); !strings.Contains(view, "Thinking...") || !strings.Contains(view, "What powers the sun?") {
		t.Errorf("pending view missing thinking state or question:\n%s", view)
	}

	msg := cmd()
	if _, ok := msg.(answerMsg); !ok {
		t.Fatalf("command returned %T, want answerMsg", msg)
	}
	m.Update(msg)

	if m.Thinking() {
		t.Error("model should stop thinking after the answer arrives")
	}
	view := m.View()
	if !strings.Contains(view, "Nuclear fusion powers the sun.") {
		t.Errorf("answer not rendered:\n%s", view)
	}
	if strings.Count(view, "What powers the sun?") != 1 {
		t.Errorf("question should be rendered once:\n%s", view)
	}
}

func TestChatModelErrorLeavesHistory(t *testing.T) {
	asker := &fakeAsker{err: common.NewGenerationError("answer", errors.New("model offline"))}
	m := newTestModel(asker)

	typeText(m, "hello")
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m.Update(cmd())

	if m.Thinking() {
		t.Error("model should stop thinking after an error")
	}
	if len(asker.History()) != 0 {
		t.Errorf("history changed after a failed question: %v", asker.History())
	}
	view := m.View()
	if !strings.Contains(view, "model offline") {
		t.Errorf("error not shown inline:\n%s", view)
	}
	if m.Input() != "hello" {
		t.Errorf("failed question should be restored to the input, got %q", m.Input())
	}
}

func TestChatModelIgnoresBlankAndBusySubmit(t *testing.T) {
	m := newTestModel(&fakeAsker{reply: "ok"})

	typeText(m, "   ")
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("blank question should not be submitted")
	}

	m.input = []rune("first")
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd == nil {
		t.Fatal("expected first question to be submitted")
	}
	typeText(m, "second")
	if _, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter}); cmd != nil {
		t.Error("question submitted while another is pending")
	}
}

func TestChatModelEditing(t *testing.T) {
	m := newTestModel(&fakeAsker{})

	typeText(m, "abc")
	m.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	if m.Input() != "ab" {
		t.Errorf("after backspace Input() = %q", m.Input())
	}
	m.Update(tea.KeyMsg{Type: tea.KeyCtrlU})
	if m.Input() != "" {
		t.Errorf("after ctrl+u Input() = %q", m.Input())
	}
}

func TestChatModelQuit(t *testing.T) {
	tests := []struct {
		name string
		keys []tea.KeyMsg
	}{
		{"ctrl+c", []tea.KeyMsg{{Type: tea.KeyCtrlC}}},
		{"esc", []tea.KeyMsg{{Type: tea.KeyEsc}}},
		{"exit", []tea.KeyMsg{{Type: tea.KeyRunes, Runes: []rune("exit")}, {Type: tea.KeyEnter}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestModel(&fakeAsker{})
			var cmd tea.Cmd
			for _, key := range tt.keys {
				_, cmd = m.Update(key)
			}
			if cmd == nil {
				t.Fatal("expected quit command")
			}
			if _, ok := cmd().(tea.QuitMsg); !ok {
				t.Error("expected tea.QuitMsg")
			}
			if !strings.Contains(m.View(), "Goodbye") {
				t.Error("quit view should say goodbye")
			}
		})
	}
}

func TestChatModelScrolling(t *testing.T) {
	asker := &fakeAsker{}
	for i := 0; i < 30; i++ {
		asker.history = append(asker.history,
			common.NewTurn(common.RoleUser, "question "+strings.Repeat("x", i)),
			common.NewTurn(common.RoleAssistant, "answer"))
	}
	m := newTestModel(asker)

	bottom := m.View()
	if !strings.Contains(bottom, "question "+strings.Repeat("x", 29)) {
		t.Errorf("latest turn should be visible:\n%s", bottom)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyPgUp})
	if m.View() == bottom {
		t.Error("page up should scroll the conversation")
	}
	m.Update(tea.KeyMsg{Type: tea.KeyPgDown})
	if m.View() != bottom {
		t.Error("page down should return to the latest turns")
	}
}

func TestWrap(t *testing.T) {
	got := wrap("the quick brown fox jumps", 10)
	want := "the quick\nbrown fox\njumps"
	if got != want {
		t.Errorf("wrap() = %q, want %q", got, want)
	}
}

func TestThemeByName(t *testing.T) {
	for _, name := range GetAvailableThemes() {
		if _, ok := ThemeByName(name); !ok {
			t.Errorf("ThemeByName(%q) not found", name)
		}
	}
	if _, ok := ThemeByName("neon"); ok {
		t.Error("unknown theme should not be found")
	}
}
