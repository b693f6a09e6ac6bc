package ai

import (
	"sort"
	"sync"
)

// ProviderFactory creates provider instances
type ProviderFactory interface {
	// Type returns the provider type this factory creates
	Type() string

	// Create creates a new completion provider with the given config
	Create(config *ProviderConfig) (LLMProvider, error)

	// ValidateConfig validates configuration for this provider type
	ValidateConfig(config *ProviderConfig) error

	// DefaultConfig returns a default configuration
	DefaultConfig() *ProviderConfig
}

// EmbeddingFactory is implemented by factories whose provider can embed text
type EmbeddingFactory interface {
	CreateEmbedder(config *ProviderConfig) (EmbeddingProvider, error)
}

// Registry maps provider types to their factories
type Registry struct {
	mu        sync.RWMutex
	factories map[string]ProviderFactory
}

// NewRegistry creates an empty provider registry
func NewRegistry() *Registry {
	return &Registry{
		factories: make(map[string]ProviderFactory),
	}
}

// Register adds a factory under its type name
func (r *Registry) Register(factory ProviderFactory) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := factory.Type()
	if _, exists := r.factories[name]; exists {
		return NewProviderError(ErrTypeRegistration, "provider already registered", name)
	}

	r.factories[name] = factory
	return nil
}

// Unregister removes a factory
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.factories, name)
}

// Factory returns the factory registered under name
func (r *Registry) Factory(name string) (ProviderFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.factories[name]
	if !exists {
		return nil, NewProviderError(ErrTypeNotFound, "provider not registered", name)
	}
	return factory, nil
}

// Create validates config and builds a completion provider. A nil config
// uses the factory default.
func (r *Registry) Create(name string, config *ProviderConfig) (LLMProvider, error) {
	factory, err := r.Factory(name)
	if err != nil {
		return nil, err
	}

	if config == nil {
		config = factory.DefaultConfig()
	}
	if err := factory.ValidateConfig(config); err != nil {
		return nil, err
	}

	return factory.Create(config)
}

// CreateEmbedder builds an embedding provider. Providers without an
// embeddings API report ErrTypeUnsupported.
func (r *Registry) CreateEmbedder(name string, config *ProviderConfig) (EmbeddingProvider, error) {
	factory, err := r.Factory(name)
	if err != nil {
		return nil, err
	}

	embedFactory, ok := factory.(EmbeddingFactory)
	if !ok {
		return nil, NewProviderError(ErrTypeUnsupported, "provider does not offer embeddings", name)
	}

	if config == nil {
		config = factory.DefaultConfig()
	}
	if err := factory.ValidateConfig(config); err != nil {
		return nil, err
	}

	return embedFactory.CreateEmbedder(config)
}

// List returns all registered provider names in sorted order
func (r *Registry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.factories))
	for name := range r.factories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsRegistered checks if a provider is registered
func (r *Registry) IsRegistered(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, exists := r.factories[name]
	return exists
}
