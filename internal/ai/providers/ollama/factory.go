package ollama

import (
	"github.com/yildizm/vidsynth/internal/ai"
)

// Factory creates Ollama providers for the registry
type Factory struct{}

// NewFactory creates a new Ollama provider factory
func NewFactory() *Factory {
	return &Factory{}
}

// Create creates a completion provider
func (f *Factory) Create(config *ai.ProviderConfig) (ai.LLMProvider, error) {
	return New(FromProviderConfig(config))
}

// CreateEmbedder creates an embedding provider
func (f *Factory) CreateEmbedder(config *ai.ProviderConfig) (ai.EmbeddingProvider, error) {
	return New(FromProviderConfig(config))
}

// Type returns the provider type this factory creates
func (f *Factory) Type() string {
	return providerName
}

// ValidateConfig validates configuration for this provider type
func (f *Factory) ValidateConfig(config *ai.ProviderConfig) error {
	if config == nil {
		return ai.NewConfigurationError(providerName, "config", "configuration is required")
	}

	if config.Type != "" && config.Type != providerName {
		return ai.NewConfigurationError(providerName, "type", "invalid provider type: expected 'ollama'")
	}

	return FromProviderConfig(config).Validate()
}

// DefaultConfig returns a default configuration
func (f *Factory) DefaultConfig() *ai.ProviderConfig {
	return DefaultConfig().ToProviderConfig()
}

// Register adds the Ollama factory to a registry
func Register(r *ai.Registry) error {
	return r.Register(NewFactory())
}
