// Package notes produces the stateless study aids for a transcript: its most
// important topics and structured notes.
package notes

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"time"

	"github.com/yildizm/go-promptfmt"
	"golang.org/x/sync/errgroup"

	"github.com/yildizm/vidsynth/internal/ai"
	"github.com/yildizm/vidsynth/internal/common"
	"github.com/yildizm/vidsynth/internal/logger"
)

// TopicCount is the number of topics requested from the model
const TopicCount = 5

const topicsInstructions = `You are an assistant that extracts the 5 most important topics discussed in a video transcript or summary.

Rules:
- Summarize into exactly 5 major points.
- Each point should represent a key topic or concept, not small details.
- Keep wording concise and focused on the technical content.
- Do not phrase them as questions or opinions.
- Output should be a numbered list.
- Show only points that are discussed in the transcript.`

const notesInstructions = `You are an AI note-taker. Your task is to read a video transcript and produce well-structured, concise notes.

Requirements:
- Present the output as bulleted points, grouped into clear sections.
- Highlight key takeaways, important facts, and examples.
- Use short, clear sentences (no long paragraphs).
- If the transcript includes multiple themes, organize them under subheadings.
- Do not add information that is not present in the transcript.`

var numberedLine = regexp.MustCompile(`^\s*\d+\s*[.)]\s*(.+)$`)

// Result bundles the topics and notes of one transcript
type Result struct {
	VideoID     string        `json:"video_id,omitempty"`
	Topics      []string      `json:"topics"`
	TopicsText  string        `json:"topics_text"`
	Notes       string        `json:"notes"`
	GeneratedAt time.Time     `json:"generated_at"`
	Duration    time.Duration `json:"duration"`
}

// Generator asks a language model for topics and notes
type Generator struct {
	provider    ai.LLMProvider
	model       string
	temperature float64
	logger      *logger.Logger
}

// NewGenerator creates a generator backed by the given model
func NewGenerator(provider ai.LLMProvider, model string, temperature float64, log *logger.Logger) *Generator {
	return &Generator{
		provider:    provider,
		model:       model,
		temperature: temperature,
		logger:      log.WithComponent("notes"),
	}
}

// Topics returns the model's numbered list of the transcript's most important
// topics, raw and parsed into items
func (g *Generator) Topics(ctx context.Context, transcript string) (string, []string, error) {
	prompt := promptfmt.New().
		System(topicsInstructions).
		User("Here is the transcript:\n%s", transcript).
		Build()

	response, err := g.complete(ctx, "topics", prompt)
	if err != nil {
		return "", nil, err
	}
	return response.GetText(), ParseTopics(response), nil
}

// Notes returns bulleted notes grouped under subheadings
func (g *Generator) Notes(ctx context.Context, transcript string) (string, error) {
	prompt := promptfmt.New().
		System(notesInstructions).
		User("Here is the transcript:\n%s", transcript).
		Build()

	response, err := g.complete(ctx, "notes", prompt)
	if err != nil {
		return "", err
	}
	return response.GetText(), nil
}

// Generate produces topics and notes concurrently
func (g *Generator) Generate(ctx context.Context, transcript string) (*Result, error) {
	start := time.Now()
	result := &Result{}

	eg, egctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		text, topics, err := g.Topics(egctx, transcript)
		if err != nil {
			return err
		}
		result.TopicsText = text
		result.Topics = topics
		return nil
	})
	eg.Go(func() error {
		notes, err := g.Notes(egctx, transcript)
		if err != nil {
			return err
		}
		result.Notes = notes
		return nil
	})
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	result.GeneratedAt = time.Now()
	result.Duration = time.Since(start)
	g.logger.InfoWithFields("notes generated", []logger.Field{
		logger.Count(len(result.Topics)),
		logger.Duration(result.Duration),
	})
	return result, nil
}

func (g *Generator) complete(ctx context.Context, operation string, prompt *promptfmt.Prompt) (*promptfmt.Response, error) {
	if g.provider == nil {
		return nil, common.NewGenerationError(operation, errors.New("no language model configured"))
	}

	resp, err := g.provider.Complete(ctx, &ai.CompletionRequest{
		Prompt:       prompt.String(),
		SystemPrompt: prompt.SystemPrompt,
		Temperature:  g.temperature,
		Model:        g.model,
	})
	if err != nil {
		g.logger.WarnWithFields("generation failed", []logger.Field{logger.F("operation", operation), logger.Error(err)})
		return nil, common.NewGenerationError(operation, err)
	}

	response := promptfmt.NewResponse(strings.TrimSpace(resp.Content))
	if response.GetText() == "" {
		return nil, common.NewGenerationError(operation, errors.New("model returned an empty reply"))
	}
	return response, nil
}

// ParseTopics extracts the items of a numbered list, dropping markdown emphasis.
// A reply without a numbered list yields an empty slice.
func ParseTopics(response *promptfmt.Response) []string {
	topics := []string{}
	for _, line := range response.GetLines() {
		match := numberedLine.FindStringSubmatch(line)
		if match == nil {
			continue
		}
		topic := strings.TrimSpace(strings.ReplaceAll(match[1], "**", ""))
		if topic != "" {
			topics = append(topics, topic)
		}
	}
	return topics
}
