package openai

import (
	"github.com/yildizm/vidsynth/internal/ai"
)

type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(config *ai.ProviderConfig) (ai.LLMProvider, error) {
	return New(FromProviderConfig(config))
}

func (f *Factory) CreateEmbedder(config *ai.ProviderConfig) (ai.EmbeddingProvider, error) {
	return New(FromProviderConfig(config))
}

func (f *Factory) Type() string {
	return providerName
}

func (f *Factory) ValidateConfig(config *ai.ProviderConfig) error {
	if config == nil {
		return ai.NewConfigurationError(providerName, "config", "configuration is required")
	}

	if config.Type != "" && config.Type != providerName {
		return ai.NewConfigurationError(providerName, "type", "invalid provider type: expected 'openai'")
	}

	return FromProviderConfig(config).Validate()
}

func (f *Factory) DefaultConfig() *ai.ProviderConfig {
	return DefaultConfig().ToProviderConfig()
}

// Register adds the OpenAI factory to a registry
func Register(r *ai.Registry) error {
	return r.Register(NewFactory())
}
