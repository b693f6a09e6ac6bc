package openai

import (
	"fmt"
	"net/url"
	"time"

	"github.com/yildizm/vidsynth/internal/ai"
)

const (
	providerName = "openai"

	DefaultBaseURL        = "https://api.openai.com"
	DefaultModel          = "gpt-4o-mini"
	DefaultEmbeddingModel = "text-embedding-3-small"
	DefaultMaxTokens      = 16384
	DefaultTemperature    = 0.2
	DefaultTimeout        = 60 * time.Second
)

type Config struct {
	APIKey             string          `json:"api_key"`
	BaseURL            string          `json:"base_url"`
	DefaultModel       string          `json:"default_model"`
	EmbeddingModel     string          `json:"embedding_model"`
	MaxTokens          int             `json:"max_tokens"`
	DefaultTemperature float64         `json:"default_temperature"`
	Timeout            time.Duration   `json:"timeout"`
	OrganizationID     string          `json:"organization_id,omitempty"`
	Retry              *ai.RetryConfig `json:"retry,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:            DefaultBaseURL,
		DefaultModel:       DefaultModel,
		EmbeddingModel:     DefaultEmbeddingModel,
		MaxTokens:          DefaultMaxTokens,
		DefaultTemperature: DefaultTemperature,
		Timeout:            DefaultTimeout,
		Retry:              ai.DefaultRetryConfig(),
	}
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ai.NewConfigurationError(providerName, "api_key", "API key is required")
	}

	if c.BaseURL == "" {
		return ai.NewConfigurationError(providerName, "base_url", "base URL is required")
	}

	if _, err := url.Parse(c.BaseURL); err != nil {
		return ai.NewConfigurationError(providerName, "base_url", fmt.Sprintf("invalid base URL: %v", err))
	}

	if c.DefaultModel == "" {
		return ai.NewConfigurationError(providerName, "default_model", "default model is required")
	}

	if c.MaxTokens <= 0 {
		return ai.NewConfigurationError(providerName, "max_tokens", "max tokens must be positive")
	}

	if c.DefaultTemperature < 0 || c.DefaultTemperature > 2 {
		return ai.NewConfigurationError(providerName, "default_temperature", "temperature must be between 0 and 2")
	}

	if c.Timeout <= 0 {
		return ai.NewConfigurationError(providerName, "timeout", "timeout must be positive")
	}

	return nil
}

func (c *Config) ToProviderConfig() *ai.ProviderConfig {
	headers := map[string]string{}
	if c.OrganizationID != "" {
		headers["OpenAI-Organization"] = c.OrganizationID
	}

	return &ai.ProviderConfig{
		Name:               providerName,
		Type:               providerName,
		APIKey:             c.APIKey,
		BaseURL:            c.BaseURL,
		DefaultModel:       c.DefaultModel,
		EmbeddingModel:     c.EmbeddingModel,
		MaxTokens:          c.MaxTokens,
		DefaultTemperature: c.DefaultTemperature,
		Timeout:            c.Timeout,
		RetryConfig:        c.Retry,
		Headers:            headers,
	}
}

func FromProviderConfig(config *ai.ProviderConfig) *Config {
	if config == nil {
		return DefaultConfig()
	}

	c := &Config{
		APIKey:             config.APIKey,
		BaseURL:            config.BaseURL,
		DefaultModel:       config.DefaultModel,
		EmbeddingModel:     config.EmbeddingModel,
		MaxTokens:          config.MaxTokens,
		DefaultTemperature: config.DefaultTemperature,
		Timeout:            config.Timeout,
		OrganizationID:     config.Headers["OpenAI-Organization"],
		Retry:              config.RetryConfig,
	}

	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.DefaultModel == "" {
		c.DefaultModel = DefaultModel
	}
	if c.EmbeddingModel == "" {
		c.EmbeddingModel = DefaultEmbeddingModel
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.DefaultTemperature == 0 {
		c.DefaultTemperature = DefaultTemperature
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Retry == nil {
		c.Retry = ai.DefaultRetryConfig()
	}

	return c
}
