package transcript

import (
	"context"
	"errors"
	"strings"

	"github.com/yildizm/go-promptfmt"

	"github.com/yildizm/vidsynth/internal/ai"
	"github.com/yildizm/vidsynth/internal/common"
)

const translatorInstructions = `You are an expert translator with deep cultural and linguistic knowledge.
Rules:
1. Translate the transcript into English while preserving its full meaning and context.
2. Keep the original tone, nuances and the speaker's voice.
3. Do not summarize, omit or add content.
4. Return only the translated text.`

// Translator converts a transcript into English
type Translator interface {
	Translate(ctx context.Context, text, sourceLanguage string) (string, error)
}

// LLMTranslator translates with a language model
type LLMTranslator struct {
	provider    ai.LLMProvider
	model       string
	temperature float64
}

// NewLLMTranslator creates a translator using the given model
func NewLLMTranslator(provider ai.LLMProvider, model string, temperature float64) *LLMTranslator {
	return &LLMTranslator{provider: provider, model: model, temperature: temperature}
}

// Translate implements Translator. Failures are reported as GenerationError.
func (t *LLMTranslator) Translate(ctx context.Context, text, sourceLanguage string) (string, error) {
	if t.provider == nil {
		return "", common.NewGenerationError("translate", errors.New("no language model configured"))
	}

	prompt := promptfmt.New().
		System(translatorInstructions).
		User("Translate the following %s transcript into English:\n\n%s", sourceLanguage, text).
		Build()

	resp, err := t.provider.Complete(ctx, &ai.CompletionRequest{
		Prompt:       prompt.String(),
		SystemPrompt: prompt.SystemPrompt,
		Temperature:  t.temperature,
		Model:        t.model,
	})
	if err != nil {
		return "", common.NewGenerationError("translate", err)
	}

	translated := promptfmt.NewResponse(strings.TrimSpace(resp.Content)).GetText()
	if translated == "" {
		return "", common.NewGenerationError("translate", errors.New("model returned an empty translation"))
	}
	return translated, nil
}
