package anthropic

import (
	"fmt"
	"net/url"
	"time"

	"github.com/yildizm/vidsynth/internal/ai"
)

const (
	providerName = "anthropic"

	DefaultBaseURL     = "https://api.anthropic.com"
	DefaultModel       = "claude-3-5-haiku-latest"
	DefaultMaxTokens   = 200000
	DefaultMaxOutput   = 1024
	DefaultTemperature = 0.2
	DefaultTimeout     = 120 * time.Second
	APIVersion         = "2023-06-01"
)

// Config holds Anthropic Messages API settings
type Config struct {
	APIKey             string          `json:"api_key"`
	BaseURL            string          `json:"base_url"`
	DefaultModel       string          `json:"default_model"`
	MaxTokens          int             `json:"max_tokens"`
	MaxOutputTokens    int             `json:"max_output_tokens"`
	DefaultTemperature float64         `json:"default_temperature"`
	Timeout            time.Duration   `json:"timeout"`
	Retry              *ai.RetryConfig `json:"retry,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		BaseURL:            DefaultBaseURL,
		DefaultModel:       DefaultModel,
		MaxTokens:          DefaultMaxTokens,
		MaxOutputTokens:    DefaultMaxOutput,
		DefaultTemperature: DefaultTemperature,
		Timeout:            DefaultTimeout,
		Retry:              ai.DefaultRetryConfig(),
	}
}

func (c *Config) Validate() error {
	if c.APIKey == "" {
		return ai.NewConfigurationError(providerName, "api_key", "API key is required")
	}
	if _, err := url.Parse(c.BaseURL); err != nil || c.BaseURL == "" {
		return ai.NewConfigurationError(providerName, "base_url", fmt.Sprintf("invalid base URL %q", c.BaseURL))
	}
	if c.DefaultModel == "" {
		return ai.NewConfigurationError(providerName, "default_model", "default model is required")
	}
	if c.MaxOutputTokens <= 0 {
		return ai.NewConfigurationError(providerName, "max_output_tokens", "max output tokens must be positive")
	}
	if c.DefaultTemperature < 0 || c.DefaultTemperature > 1 {
		return ai.NewConfigurationError(providerName, "default_temperature", "temperature must be between 0 and 1")
	}
	if c.Timeout <= 0 {
		return ai.NewConfigurationError(providerName, "timeout", "timeout must be positive")
	}
	return nil
}

func (c *Config) ToProviderConfig() *ai.ProviderConfig {
	return &ai.ProviderConfig{
		Name:               providerName,
		Type:               providerName,
		APIKey:             c.APIKey,
		BaseURL:            c.BaseURL,
		DefaultModel:       c.DefaultModel,
		MaxTokens:          c.MaxTokens,
		DefaultTemperature: c.DefaultTemperature,
		Timeout:            c.Timeout,
		RetryConfig:        c.Retry,
	}
}

func FromProviderConfig(pc *ai.ProviderConfig) *Config {
	c := DefaultConfig()
	if pc == nil {
		return c
	}

	c.APIKey = pc.APIKey
	if pc.BaseURL != "" {
		c.BaseURL = pc.BaseURL
	}
	if pc.DefaultModel != "" {
		c.DefaultModel = pc.DefaultModel
	}
	if pc.MaxTokens > 0 {
		c.MaxTokens = pc.MaxTokens
	}
	if pc.DefaultTemperature > 0 {
		c.DefaultTemperature = pc.DefaultTemperature
	}
	if pc.Timeout > 0 {
		c.Timeout = pc.Timeout
	}
	if pc.RetryConfig != nil {
		c.Retry = pc.RetryConfig
	}
	return c
}
