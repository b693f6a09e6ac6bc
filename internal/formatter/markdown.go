package formatter

import (
	"fmt"
	"strings"
	"time"

	"github.com/yildizm/vidsynth/internal/notes"
	"github.com/yildizm/vidsynth/internal/rag"
)

// markdownFormatter formats output as Markdown
type markdownFormatter struct{}

// NewMarkdown creates a new Markdown formatter
func NewMarkdown() Formatter {
	return &markdownFormatter{}
}

func (f *markdownFormatter) FormatNotes(result *notes.Result) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# Video Notes\n\n")
	if result.VideoID != "" {
		fmt.Fprintf(&b, "Video: `%s`\n\n", result.VideoID)
	}
	generated := result.GeneratedAt
	if generated.IsZero() {
		generated = time.Now()
	}
	fmt.Fprintf(&b, "Generated: %s\n\n", generated.Format("2006-01-02 15:04:05"))

	b.WriteString("## Important Topics\n\n")
	if len(result.Topics) > 0 {
		for i, topic := range result.Topics {
			fmt.Fprintf(&b, "%d. %s\n", i+1, topic)
		}
		b.WriteString("\n")
	} else {
		b.WriteString(result.TopicsText + "\n\n")
	}

	b.WriteString("## Notes\n\n")
	b.WriteString(result.Notes + "\n")

	return []byte(b.String()), nil
}

func (f *markdownFormatter) FormatAnswer(answer *rag.Answer, showContext bool) ([]byte, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "**Q:** %s\n\n", answer.Question)
	fmt.Fprintf(&b, "**A:** %s\n", answer.Text)

	if showContext && len(answer.Sources) > 0 {
		b.WriteString("\n### Retrieved Context\n\n")
		b.WriteString("| Segment | Score | Excerpt |\n")
		b.WriteString("|---------|-------|---------|\n")
		for _, source := range answer.Sources {
			excerpt := strings.ReplaceAll(Excerpt(source.Segment.Text, 120), "|", "\\|")
			fmt.Fprintf(&b, "| %d | %.3f | %s |\n", source.Segment.Index, source.Score, excerpt)
		}
	}

	return []byte(b.String()), nil
}
