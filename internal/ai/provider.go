package ai

import (
	"context"
)

// LLMProvider defines the interface for chat/completion model providers
type LLMProvider interface {
	// Name returns the provider name (e.g., "ollama", "openai", "anthropic")
	Name() string

	// Complete performs a single, stateless text completion
	Complete(ctx context.Context, req *CompletionRequest) (*CompletionResponse, error)

	// MaxTokens returns the maximum context window size
	MaxTokens() int

	// ValidateConfig validates the provider configuration
	ValidateConfig() error

	// Close cleans up provider resources
	Close() error
}

// EmbeddingProvider maps text to embedding vectors
type EmbeddingProvider interface {
	// Name returns the provider name
	Name() string

	// Embed returns the embedding of a single input text
	Embed(ctx context.Context, req *EmbeddingRequest) (*EmbeddingResponse, error)
}

// HealthChecker provides health checking capabilities
type HealthChecker interface {
	// HealthCheck verifies provider connectivity and status
	HealthCheck(ctx context.Context) error

	// IsHealthy returns the result of the last health check
	IsHealthy() bool
}
