package formatter

import (
	"encoding/json"
	"time"

	"github.com/yildizm/vidsynth/internal/notes"
	"github.com/yildizm/vidsynth/internal/rag"
)

// jsonFormatter formats output as JSON
type jsonFormatter struct{}

// NewJSON creates a new JSON formatter
func NewJSON() Formatter {
	return &jsonFormatter{}
}

// NotesOutput is the JSON shape of a notes result
type NotesOutput struct {
	VideoID     string    `json:"video_id,omitempty"`
	Topics      []string  `json:"topics"`
	TopicsText  string    `json:"topics_text"`
	Notes       string    `json:"notes"`
	GeneratedAt time.Time `json:"generated_at"`
	DurationMS  int64     `json:"duration_ms"`
}

// AnswerOutput is the JSON shape of an answer
type AnswerOutput struct {
	Question string          `json:"question"`
	Answer   string          `json:"answer"`
	Fallback bool            `json:"fallback"`
	Context  []SegmentOutput `json:"context,omitempty"`
}

// SegmentOutput is a retrieved segment
type SegmentOutput struct {
	Index int     `json:"index"`
	Start int     `json:"start"`
	End   int     `json:"end"`
	Score float32 `json:"score"`
	Text  string  `json:"text"`
}

func (f *jsonFormatter) FormatNotes(result *notes.Result) ([]byte, error) {
	return json.MarshalIndent(NewNotesOutput(result), "", "  ")
}

func (f *jsonFormatter) FormatAnswer(answer *rag.Answer, showContext bool) ([]byte, error) {
	return json.MarshalIndent(NewAnswerOutput(answer, showContext), "", "  ")
}

// NewNotesOutput converts a notes result to its JSON shape
func NewNotesOutput(result *notes.Result) *NotesOutput {
	topics := result.Topics
	if topics == nil {
		topics = []string{}
	}
	return &NotesOutput{
		VideoID:     result.VideoID,
		Topics:      topics,
		TopicsText:  result.TopicsText,
		Notes:       result.Notes,
		GeneratedAt: result.GeneratedAt,
		DurationMS:  result.Duration.Milliseconds(),
	}
}

// NewAnswerOutput converts an answer to its JSON shape, with the retrieved
// segments when showContext is set
func NewAnswerOutput(answer *rag.Answer, showContext bool) *AnswerOutput {
	output := &AnswerOutput{
		Question: answer.Question,
		Answer:   answer.Text,
		Fallback: answer.Fallback,
	}
	if showContext {
		output.Context = segmentOutputs(answer)
	}
	return output
}

func segmentOutputs(answer *rag.Answer) []SegmentOutput {
	segments := make([]SegmentOutput, len(answer.Sources))
	for i, source := range answer.Sources {
		segments[i] = SegmentOutput{
			Index: source.Segment.Index,
			Start: source.Segment.Start,
			End:   source.Segment.End,
			Score: source.Score,
			Text:  source.Segment.Text,
		}
	}
	return segments
}
