package ui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yildizm/vidsynth/internal/common"
	"github.com/yildizm/vidsynth/internal/rag"
)

// Asker is the conversation the chat view drives, usually a *rag.Session
type Asker interface {
	Ask(ctx context.Context, question string) (*rag.Answer, error)
	History() []common.ConversationTurn
	VideoID() string
}

type answerMsg struct {
	answer *rag.Answer
}

type askErrorMsg struct {
	question string
	err      error
}

// askCommand runs one question off the UI goroutine. A zero timeout means
// the question is bounded only by ctx.
func askCommand(ctx context.Context, asker Asker, question string, timeout time.Duration) tea.Cmd {
	return func() tea.Msg {
		if timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, timeout)
			defer cancel()
		}

		answer, err := asker.Ask(ctx, question)
		if err != nil {
			return askErrorMsg{question: question, err: err}
		}
		return answerMsg{answer: answer}
	}
}
