package formatter

import (
	"fmt"
	"strings"

	"github.com/yildizm/go-termfmt"

	"github.com/yildizm/vidsynth/internal/notes"
	"github.com/yildizm/vidsynth/internal/rag"
)

// terminalFormatter formats output as plain text for terminal display using go-termfmt
type terminalFormatter struct {
	opts *termfmt.TerminalOptions
}

// NewTerminal creates a new terminal formatter
func NewTerminal(color, emoji bool) Formatter {
	opts := termfmt.DefaultOptions()
	opts.Color = color
	opts.Emoji = emoji
	return &terminalFormatter{opts: opts}
}

func (f *terminalFormatter) FormatNotes(result *notes.Result) ([]byte, error) {
	var b strings.Builder

	title := "Video Notes"
	if result.VideoID != "" {
		title += " · " + result.VideoID
	}
	writeBox(&b, title)

	f.writeTopics(&b, result)

	symbol := termfmt.GetEmoji("summary", f.opts)
	if symbol == "" {
		symbol = "📝"
	}
	fmt.Fprintf(&b, "%s Notes\n", symbol)
	b.WriteString(strings.Repeat("─", 50) + "\n")
	b.WriteString(result.Notes + "\n")

	return []byte(b.String()), nil
}

// writeTopics writes the numbered topics as a tree, or the raw reply when it
// could not be parsed into items
func (f *terminalFormatter) writeTopics(b *strings.Builder, result *notes.Result) {
	symbol := termfmt.GetEmoji("insights", f.opts)
	fmt.Fprintf(b, "%s Important Topics\n", symbol)

	if len(result.Topics) == 0 {
		b.WriteString(result.TopicsText + "\n\n")
		return
	}

	items := make([]termfmt.TreeItem, 0, len(result.Topics))
	for i, topic := range result.Topics {
		items = append(items, termfmt.TreeItem{
			Label: fmt.Sprintf("%d", i+1),
			Value: topic,
			Last:  i == len(result.Topics)-1,
		})
	}
	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n\n")
}

func (f *terminalFormatter) FormatAnswer(answer *rag.Answer, showContext bool) ([]byte, error) {
	var b strings.Builder

	b.WriteString(answer.Text + "\n")

	if showContext && len(answer.Sources) > 0 {
		b.WriteString("\n")
		f.writeSources(&b, answer)
	}

	return []byte(b.String()), nil
}

// writeSources lists the retrieved segments with their similarity
func (f *terminalFormatter) writeSources(b *strings.Builder, answer *rag.Answer) {
	symbol := termfmt.GetEmoji("statistics", f.opts)
	fmt.Fprintf(b, "%s Retrieved Context\n", symbol)

	items := make([]termfmt.TreeItem, 0, len(answer.Sources))
	for i, source := range answer.Sources {
		score := float64(source.Score)
		if score < 0 {
			score = 0
		}
		items = append(items, termfmt.TreeItem{
			Label: fmt.Sprintf("Segment %d", source.Segment.Index),
			Value: fmt.Sprintf("%.3f %s", source.Score, termfmt.CreateConfidenceBar(score, f.opts)),
			Children: []termfmt.TreeItem{
				{Label: "Text", Value: Excerpt(source.Segment.Text, 160), Last: true},
			},
			Last: i == len(answer.Sources)-1,
		})
	}
	b.WriteString(termfmt.TreeViewWithOptions(items, f.opts) + "\n")
}

// writeBox writes a header framed with box drawing characters
func writeBox(b *strings.Builder, header string) {
	width := len([]rune(header))
	b.WriteString("╔" + strings.Repeat("═", width+2) + "╗\n")
	b.WriteString("║ " + header + " ║\n")
	b.WriteString("╚" + strings.Repeat("═", width+2) + "╝\n\n")
}
