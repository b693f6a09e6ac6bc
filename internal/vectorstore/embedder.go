package vectorstore

import (
	"context"
	"fmt"

	"github.com/yildizm/vidsynth/internal/ai"
)

// ProviderEmbedder adapts an ai.EmbeddingProvider (Ollama, OpenAI) to Embedder
type ProviderEmbedder struct {
	provider ai.EmbeddingProvider
	model    string
}

// NewProviderEmbedder wraps provider; an empty model uses the provider default
func NewProviderEmbedder(provider ai.EmbeddingProvider, model string) *ProviderEmbedder {
	return &ProviderEmbedder{provider: provider, model: model}
}

// Embed returns the provider's embedding of text
func (e *ProviderEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.provider.Embed(ctx, &ai.EmbeddingRequest{Input: text, Model: e.model})
	if err != nil {
		return nil, fmt.Errorf("%s embeddings: %w", e.provider.Name(), err)
	}
	return resp.Embedding, nil
}

// Name returns the wrapped provider name
func (e *ProviderEmbedder) Name() string {
	return e.provider.Name()
}
