package cli

import (
	"fmt"
	"strings"

	"github.com/yildizm/vidsynth/internal/ai"
	"github.com/yildizm/vidsynth/internal/ai/providers/anthropic"
	"github.com/yildizm/vidsynth/internal/ai/providers/ollama"
	"github.com/yildizm/vidsynth/internal/ai/providers/openai"
	"github.com/yildizm/vidsynth/internal/config"
	"github.com/yildizm/vidsynth/internal/logger"
	"github.com/yildizm/vidsynth/internal/notes"
	"github.com/yildizm/vidsynth/internal/pipeline"
	"github.com/yildizm/vidsynth/internal/rag"
	"github.com/yildizm/vidsynth/internal/transcript"
	"github.com/yildizm/vidsynth/internal/vectorstore"
)

// app bundles the collaborators every command builds from the configuration
type app struct {
	cfg       *config.Config
	log       *logger.Logger
	llm       ai.LLMProvider
	pipeline  *pipeline.Pipeline
	retriever *rag.Retriever
	composer  *rag.Composer
	closers   []func() error
}

// newApp wires providers, the transcript source and the pipeline
func newApp(cfg *config.Config) (*app, error) {
	log := GetLogger("vidsynth")

	registry, err := newRegistry()
	if err != nil {
		return nil, err
	}

	llm, err := createLLM(registry, &cfg.AI)
	if err != nil {
		return nil, err
	}

	embedder, err := createEmbedder(registry, &cfg.Embedding, &cfg.AI)
	if err != nil {
		_ = llm.Close()
		return nil, err
	}

	a := &app{cfg: cfg, log: log, llm: llm}
	a.closers = append(a.closers, llm.Close)

	transcripts, err := createTranscriptProvider(&cfg.Transcript, log.WithComponent("transcript"))
	if err != nil {
		a.Close()
		return nil, err
	}
	if closer, ok := transcripts.(interface{ Close() error }); ok {
		a.closers = append(a.closers, closer.Close)
	}

	buildOptions := []vectorstore.BuildOption{vectorstore.WithConcurrency(cfg.Embedding.Concurrency)}
	if cfg.Embedding.Normalize {
		buildOptions = append(buildOptions, vectorstore.WithNormalization())
	}

	a.pipeline = &pipeline.Pipeline{
		Transcripts:  transcripts,
		Translator:   transcript.NewLLMTranslator(llm, cfg.AI.Model, cfg.AI.Temperature),
		Embedder:     embedder,
		Chunking:     cfg.Chunking,
		BuildOptions: buildOptions,
		Generator:    notes.NewGenerator(llm, cfg.AI.Model, cfg.AI.Temperature, log.WithComponent("notes")),
		Logger:       log.WithComponent("pipeline"),
		BuildTimeout: cfg.Timeouts.Build,
	}
	a.retriever = rag.NewRetriever(cfg.Retrieval.TopK, log.WithComponent("retriever"))
	a.composer = rag.NewComposer(llm, rag.ComposerOptions{
		Model:           cfg.AI.Model,
		Temperature:     cfg.AI.Temperature,
		MaxTokens:       cfg.AI.MaxTokens,
		StrictGrounding: cfg.Retrieval.StrictGrounding,
		MinOverlap:      cfg.Retrieval.MinOverlap,
		Logger:          log.WithComponent("composer"),
	})

	return a, nil
}

// newSession creates a session sharing the app's retriever and composer
func (a *app) newSession() *rag.Session {
	return rag.NewSession(a.retriever, a.composer, a.log)
}

// Close releases providers and the transcript cache
func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.log.Warn("cleanup failed: %v", err)
		}
	}
	a.closers = nil
}

// newRegistry registers every built-in provider
func newRegistry() (*ai.Registry, error) {
	registry := ai.NewRegistry()
	for _, register := range []func(*ai.Registry) error{ollama.Register, openai.Register, anthropic.Register} {
		if err := register(registry); err != nil {
			return nil, fmt.Errorf("failed to register provider: %w", err)
		}
	}
	return registry, nil
}

// createLLM creates the chat model provider
func createLLM(registry *ai.Registry, aiConfig *config.AIConfig) (ai.LLMProvider, error) {
	provider := strings.ToLower(aiConfig.Provider)
	pc := &ai.ProviderConfig{
		Name:               provider,
		Type:               provider,
		APIKey:             aiConfig.APIKey,
		BaseURL:            endpointFor(provider, aiConfig.Endpoint),
		DefaultModel:       aiConfig.Model,
		DefaultTemperature: aiConfig.Temperature,
		Timeout:            aiConfig.Timeout,
		RetryConfig:        retryConfig(aiConfig.MaxRetries),
	}

	llm, err := registry.Create(provider, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s provider: %w", provider, err)
	}
	return llm, nil
}

// createEmbedder creates the segment embedder. The tfidf provider runs
// locally; the others call the provider's embeddings API.
func createEmbedder(registry *ai.Registry, embConfig *config.EmbeddingConfig, aiConfig *config.AIConfig) (vectorstore.Embedder, error) {
	provider := strings.ToLower(embConfig.Provider)
	if provider == "tfidf" {
		return vectorstore.NewTFIDFVectorizer(embConfig.Dimensions), nil
	}

	apiKey := embConfig.APIKey
	if apiKey == "" && provider == strings.ToLower(aiConfig.Provider) {
		apiKey = aiConfig.APIKey
	}

	pc := &ai.ProviderConfig{
		Name:           provider,
		Type:           provider,
		APIKey:         apiKey,
		BaseURL:        endpointFor(provider, embConfig.Endpoint),
		EmbeddingModel: embConfig.Model,
		Timeout:        aiConfig.Timeout,
		RetryConfig:    retryConfig(aiConfig.MaxRetries),
	}

	embedder, err := registry.CreateEmbedder(provider, pc)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s embedder: %w", provider, err)
	}
	return vectorstore.NewProviderEmbedder(embedder, embConfig.Model), nil
}

// createTranscriptProvider reads caption files, behind the sqlite cache
// when one is configured
func createTranscriptProvider(tc *config.TranscriptConfig, log *logger.Logger) (transcript.Provider, error) {
	files := transcript.NewFileProvider(tc.Dir)
	if tc.CachePath == "" {
		return files, nil
	}

	cached, err := transcript.NewCachedProvider(files, tc.CachePath, log)
	if err != nil {
		return nil, fmt.Errorf("failed to open transcript cache: %w", err)
	}
	return cached, nil
}

// endpointFor drops the Ollama default endpoint for hosted providers so
// they fall back to their own API URL
func endpointFor(provider, endpoint string) string {
	if provider != "ollama" && endpoint == config.DefaultOllamaEndpoint {
		return ""
	}
	return endpoint
}

func retryConfig(maxRetries int) *ai.RetryConfig {
	rc := ai.DefaultRetryConfig()
	rc.MaxRetries = maxRetries
	return rc
}
