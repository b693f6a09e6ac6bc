package rag

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/yildizm/go-promptfmt"

	"github.com/yildizm/vidsynth/internal/ai"
	"github.com/yildizm/vidsynth/internal/common"
	"github.com/yildizm/vidsynth/internal/logger"
	"github.com/yildizm/vidsynth/internal/vectorstore"
)

// FallbackMessage is the reply given when the retrieved context cannot answer a question
const FallbackMessage = "I couldn't find that information in the database. Could you please rephrase or ask something else?"

// fallbackMarkers identify a model reply that already declined to answer,
// with either apostrophe
var fallbackMarkers = []string{
	"I couldn't find that information in the database",
	"I couldn’t find that information in the database",
}

const answerInstructions = `You are a kind, polite, and precise assistant.
- Begin with a warm and respectful greeting (avoid repeating greetings every turn).
- Understand the user's intent even with typos or grammatical mistakes.
- Answer ONLY using the retrieved context.
- If the answer is not in the context, reply exactly: "` + FallbackMessage + `"
- Keep answers clear, concise, and friendly.`

// ComposerOptions configures answer generation
type ComposerOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int

	// StrictGrounding replaces answers whose content words are mostly absent
	// from the retrieved context with FallbackMessage
	StrictGrounding bool
	MinOverlap      float64

	Logger *logger.Logger
}

// Composer turns a question and retrieved segments into a grounded answer
type Composer struct {
	provider ai.LLMProvider
	options  ComposerOptions
}

// NewComposer creates a composer backed by the given model
func NewComposer(provider ai.LLMProvider, options ComposerOptions) *Composer {
	if options.MinOverlap <= 0 {
		options.MinOverlap = DefaultMinOverlap
	}
	return &Composer{provider: provider, options: options}
}

// Answer asks the model to answer the question using only the retrieved
// segments. Without segments the fallback message is returned and the model
// is not called.
func (c *Composer) Answer(ctx context.Context, question string, results []vectorstore.SearchResult) (string, error) {
	if len(results) == 0 {
		return FallbackMessage, nil
	}
	if c.provider == nil {
		return "", common.NewGenerationError("answer", errors.New("no language model configured"))
	}

	contextText := JoinContext(results)
	prompt := buildAnswerPrompt(contextText, question)

	req := &ai.CompletionRequest{
		Prompt:       prompt.String(),
		SystemPrompt: prompt.SystemPrompt,
		Temperature:  c.options.Temperature,
		MaxTokens:    c.options.MaxTokens,
		Model:        c.options.Model,
	}

	start := time.Now()
	resp, err := c.provider.Complete(ctx, req)
	if err != nil {
		c.options.Logger.WarnWithFields("answer generation failed", []logger.Field{logger.Error(err)})
		return "", common.NewGenerationError("answer", err)
	}

	response := promptfmt.NewResponse(strings.TrimSpace(resp.Content))
	answer := response.GetText()
	if answer == "" {
		return "", common.NewGenerationError("answer", errors.New("model returned an empty reply"))
	}

	c.options.Logger.DebugWithFields("answer generated", []logger.Field{
		logger.F("provider", c.provider.Name()),
		logger.Count(len(results)),
		logger.Duration(time.Since(start)),
	})

	if IsFallback(response) {
		return FallbackMessage, nil
	}

	if c.options.StrictGrounding {
		if overlap := Overlap(answer, contextText); overlap < c.options.MinOverlap {
			c.options.Logger.InfoWithFields("answer rejected as ungrounded", []logger.Field{logger.F("overlap", overlap)})
			return FallbackMessage, nil
		}
	}

	return answer, nil
}

// JoinContext concatenates segment texts in ranked order
func JoinContext(results []vectorstore.SearchResult) string {
	texts := make([]string, len(results))
	for i, result := range results {
		texts[i] = result.Segment.Text
	}
	return strings.Join(texts, "\n")
}

// IsFallback reports whether a reply contains the fallback sentence
func IsFallback(response *promptfmt.Response) bool {
	return response.ContainsAny(fallbackMarkers)
}

func buildAnswerPrompt(contextText, question string) *promptfmt.Prompt {
	return promptfmt.New().
		System(answerInstructions).
		User("Context:\n%s\n\nUser Question: %s\n\nAnswer:", contextText, question).
		Build()
}
