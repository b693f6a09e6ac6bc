package ollama

import (
	"net/url"
	"time"

	"github.com/yildizm/vidsynth/internal/ai"
)

const providerName = "ollama"

// Config holds Ollama-specific configuration
type Config struct {
	// BaseURL is the Ollama API endpoint
	BaseURL string `json:"base_url"`

	// DefaultModel is the chat model
	DefaultModel string `json:"default_model"`

	// EmbeddingModel is the model used for /api/embeddings
	EmbeddingModel string `json:"embedding_model"`

	// Timeout for HTTP requests
	Timeout time.Duration `json:"timeout"`

	// MaxTokens is the maximum context window size
	MaxTokens int `json:"max_tokens"`

	// DefaultTemperature for requests
	DefaultTemperature float64 `json:"default_temperature"`

	// Retry governs retries of transient failures
	Retry *ai.RetryConfig `json:"retry"`
}

// DefaultConfig returns a default Ollama configuration
func DefaultConfig() *Config {
	return &Config{
		BaseURL:            "http://localhost:11434",
		DefaultModel:       "llama3.2",
		EmbeddingModel:     "nomic-embed-text",
		Timeout:            120 * time.Second,
		MaxTokens:          8192,
		DefaultTemperature: 0.2,
		Retry:              ai.DefaultRetryConfig(),
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return ai.NewConfigurationError(providerName, "base_url", "base URL is required")
	}

	if _, err := url.Parse(c.BaseURL); err != nil {
		return ai.NewConfigurationError(providerName, "base_url", "invalid base URL: "+err.Error())
	}

	if c.DefaultModel == "" {
		return ai.NewConfigurationError(providerName, "default_model", "default model is required")
	}

	if c.Timeout <= 0 {
		return ai.NewConfigurationError(providerName, "timeout", "timeout must be positive")
	}

	if c.MaxTokens <= 0 {
		return ai.NewConfigurationError(providerName, "max_tokens", "max tokens must be positive")
	}

	if c.DefaultTemperature < 0 || c.DefaultTemperature > 1 {
		return ai.NewConfigurationError(providerName, "default_temperature", "temperature must be between 0 and 1")
	}

	return nil
}

// ToProviderConfig converts Ollama config to generic provider config
func (c *Config) ToProviderConfig() *ai.ProviderConfig {
	return &ai.ProviderConfig{
		Name:               providerName,
		Type:               providerName,
		BaseURL:            c.BaseURL,
		DefaultModel:       c.DefaultModel,
		EmbeddingModel:     c.EmbeddingModel,
		MaxTokens:          c.MaxTokens,
		DefaultTemperature: c.DefaultTemperature,
		Timeout:            c.Timeout,
		RetryConfig:        c.Retry,
	}
}

// FromProviderConfig creates Ollama config from generic provider config,
// keeping defaults for unset fields
func FromProviderConfig(pc *ai.ProviderConfig) *Config {
	config := DefaultConfig()
	if pc == nil {
		return config
	}

	if pc.BaseURL != "" {
		config.BaseURL = pc.BaseURL
	}
	if pc.DefaultModel != "" {
		config.DefaultModel = pc.DefaultModel
	}
	if pc.EmbeddingModel != "" {
		config.EmbeddingModel = pc.EmbeddingModel
	}
	if pc.MaxTokens > 0 {
		config.MaxTokens = pc.MaxTokens
	}
	if pc.DefaultTemperature > 0 && pc.DefaultTemperature <= 1 {
		config.DefaultTemperature = pc.DefaultTemperature
	}
	if pc.Timeout > 0 {
		config.Timeout = pc.Timeout
	}
	if pc.RetryConfig != nil {
		config.Retry = pc.RetryConfig
	}

	return config
}
