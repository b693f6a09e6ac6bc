package ai

import (
	"time"
)

// CompletionRequest represents a request for text completion
type CompletionRequest struct {
	// Prompt is the user message
	Prompt string `json:"prompt"`

	// SystemPrompt provides system-level instructions
	SystemPrompt string `json:"system_prompt,omitempty"`

	// MaxTokens limits the response length
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness
	Temperature float64 `json:"temperature,omitempty"`

	// Model overrides the provider default
	Model string `json:"model,omitempty"`

	// RequestID is echoed back in the response
	RequestID string `json:"request_id,omitempty"`
}

// CompletionResponse represents the response from a completion request
type CompletionResponse struct {
	Content      string      `json:"content"`
	FinishReason string      `json:"finish_reason"`
	Usage        *TokenUsage `json:"usage"`
	Model        string      `json:"model"`
	RequestID    string      `json:"request_id,omitempty"`
	CreatedAt    time.Time   `json:"created_at"`
}

// EmbeddingRequest asks for the embedding of one text
type EmbeddingRequest struct {
	Input string `json:"input"`
	Model string `json:"model,omitempty"`
}

// EmbeddingResponse carries an embedding vector
type EmbeddingResponse struct {
	Embedding []float32   `json:"embedding"`
	Model     string      `json:"model"`
	Usage     *TokenUsage `json:"usage,omitempty"`
}

// TokenUsage tracks token consumption
type TokenUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// ProviderConfig is the provider-agnostic configuration passed to factories
type ProviderConfig struct {
	// Name is the provider identifier
	Name string `json:"name"`

	// Type is the provider type (ollama, openai, anthropic)
	Type string `json:"type"`

	// APIKey for authentication
	APIKey string `json:"api_key,omitempty"`

	// BaseURL for the API endpoint
	BaseURL string `json:"base_url,omitempty"`

	// DefaultModel is the chat model to use
	DefaultModel string `json:"default_model,omitempty"`

	// EmbeddingModel is the model used for embeddings
	EmbeddingModel string `json:"embedding_model,omitempty"`

	// MaxTokens is the maximum context window
	MaxTokens int `json:"max_tokens,omitempty"`

	// DefaultTemperature for requests
	DefaultTemperature float64 `json:"default_temperature,omitempty"`

	// Timeout for requests
	Timeout time.Duration `json:"timeout,omitempty"`

	// RetryConfig for handling transient failures
	RetryConfig *RetryConfig `json:"retry_config,omitempty"`

	// Custom headers for requests
	Headers map[string]string `json:"headers,omitempty"`
}

// RetryConfig defines retry behavior
type RetryConfig struct {
	// MaxRetries is the number of attempts after the first one
	MaxRetries int `json:"max_retries"`

	// InitialDelay is the delay before the first retry
	InitialDelay time.Duration `json:"initial_delay"`

	// MaxDelay caps the delay between retries
	MaxDelay time.Duration `json:"max_delay"`

	// BackoffMultiplier for exponential backoff
	BackoffMultiplier float64 `json:"backoff_multiplier"`
}

// DefaultRetryConfig returns the retry policy used when none is configured
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:        2,
		InitialDelay:      time.Second,
		MaxDelay:          10 * time.Second,
		BackoffMultiplier: 2,
	}
}

// Model represents a model offered by a provider
type Model struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Provider  string    `json:"provider"`
	MaxTokens int       `json:"max_tokens"`
	CreatedAt time.Time `json:"created_at,omitempty"`
	OwnedBy   string    `json:"owned_by,omitempty"`
}
