package anthropic

import (
	"github.com/yildizm/vidsynth/internal/ai"
)

// Factory creates Anthropic providers. Anthropic has no embeddings API, so
// the factory does not implement ai.EmbeddingFactory.
type Factory struct{}

func NewFactory() *Factory {
	return &Factory{}
}

func (f *Factory) Create(config *ai.ProviderConfig) (ai.LLMProvider, error) {
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
		return ai.NewConfigurationError(providerName, "type", "invalid provider type: expected 'anthropic'")
	}
	return FromProviderConfig(config).Validate()
}

func (f *Factory) DefaultConfig() *ai.ProviderConfig {
	return DefaultConfig().ToProviderConfig()
}

// Register adds the Anthropic factory to a registry
func Register(r *ai.Registry) error {
	return r.Register(NewFactory())
}
