package formatter

import (
	"fmt"

	"github.com/yildizm/vidsynth/internal/notes"
	"github.com/yildizm/vidsynth/internal/rag"
)

// Formatter renders notes and answers for output
type Formatter interface {
	FormatNotes(result *notes.Result) ([]byte, error)
	FormatAnswer(answer *rag.Answer, showContext bool) ([]byte, error)
}

// New returns the formatter for an output format name
func New(format string, color, emoji bool) (Formatter, error) {
	switch format {
	case "", "text":
		return NewTerminal(color, emoji), nil
	case "json":
		return NewJSON(), nil
	case "markdown", "md":
		return NewMarkdown(), nil
	default:
		return nil, fmt.Errorf("unsupported output format: %s (use text, json or markdown)", format)
	}
}
