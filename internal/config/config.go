package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/yildizm/vidsynth/internal/chunker"
	"github.com/yildizm/vidsynth/internal/common"
)

// Config holds the complete application configuration
type Config struct {
	Version    string           `yaml:"version" json:"version"`
	AI         AIConfig         `yaml:"ai" json:"ai"`
	Embedding  EmbeddingConfig  `yaml:"embedding" json:"embedding"`
	Chunking   chunker.Options  `yaml:"chunking" json:"chunking"`
	Retrieval  RetrievalConfig  `yaml:"retrieval" json:"retrieval"`
	Transcript TranscriptConfig `yaml:"transcript" json:"transcript"`
	Server     ServerConfig     `yaml:"server" json:"server"`
	Output     OutputConfig     `yaml:"output" json:"output"`
	Timeouts   TimeoutConfig    `yaml:"timeouts" json:"timeouts"`
}

// AIConfig configures the chat model used for answers, notes and translation
type AIConfig struct {
	Provider    string        `yaml:"provider" json:"provider"`       // ollama|openai|anthropic
	Model       string        `yaml:"model" json:"model"`             // model name/identifier
	Endpoint    string        `yaml:"endpoint" json:"endpoint"`       // API endpoint URL
	APIKey      string        `yaml:"api_key" json:"-"`               // API key, ${VAR} references are expanded
	Temperature float64       `yaml:"temperature" json:"temperature"` // sampling temperature
	MaxTokens   int           `yaml:"max_tokens" json:"max_tokens"`   // response length limit
	Timeout     time.Duration `yaml:"timeout" json:"timeout"`         // request timeout
	MaxRetries  int           `yaml:"max_retries" json:"max_retries"` // retry count for transient failures
}

// EmbeddingConfig configures how segments and questions are embedded
type EmbeddingConfig struct {
	Provider    string `yaml:"provider" json:"provider"` // ollama|openai|tfidf
	Model       string `yaml:"model" json:"model"`
	Endpoint    string `yaml:"endpoint" json:"endpoint"`
	APIKey      string `yaml:"api_key" json:"-"`
	Dimensions  int    `yaml:"dimensions" json:"dimensions"`   // tfidf vocabulary size
	Concurrency int    `yaml:"concurrency" json:"concurrency"` // parallel embedding requests
	Normalize   bool   `yaml:"normalize" json:"normalize"`     // unit-normalize stored vectors
}

// RetrievalConfig configures segment retrieval and answer grounding
type RetrievalConfig struct {
	TopK            int     `yaml:"top_k" json:"top_k"`
	StrictGrounding bool    `yaml:"strict_grounding" json:"strict_grounding"`
	MinOverlap      float64 `yaml:"min_overlap" json:"min_overlap"`
}

// TranscriptConfig configures where captions come from
type TranscriptConfig struct {
	Dir       string `yaml:"dir" json:"dir"`               // directory of <id>.<lang>.srt|vtt|txt files
	Language  string `yaml:"language" json:"language"`     // default caption language
	CachePath string `yaml:"cache_path" json:"cache_path"` // sqlite transcript cache, empty disables it
}

// ServerConfig configures the HTTP API
type ServerConfig struct {
	Addr         string        `yaml:"addr" json:"addr"`
	ReadTimeout  time.Duration `yaml:"read_timeout" json:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout" json:"write_timeout"`
}

// OutputConfig configures output formatting and display
type OutputConfig struct {
	Format      string `yaml:"format" json:"format"`             // text|json|markdown
	ColorMode   string `yaml:"color_mode" json:"color_mode"`     // auto|always|never
	Verbose     bool   `yaml:"verbose" json:"verbose"`           // default verbosity
	ShowContext bool   `yaml:"show_context" json:"show_context"` // print retrieved segments with answers
}

// TimeoutConfig bounds the long running stages. Zero disables a limit.
type TimeoutConfig struct {
	Build time.Duration `yaml:"build" json:"build"` // transcript loading and indexing
	Query time.Duration `yaml:"query" json:"query"` // one question, retrieval plus answer
}

// DefaultOllamaEndpoint is the default endpoint of the chat and embedding models
const DefaultOllamaEndpoint = "http://localhost:11434"

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Version: "1.0",
		AI: AIConfig{
			Provider:    "ollama",
			Model:       "llama3.2",
			Endpoint:    DefaultOllamaEndpoint,
			Temperature: 0.2,
			MaxTokens:   1024,
			Timeout:     120 * time.Second,
			MaxRetries:  2,
		},
		Embedding: EmbeddingConfig{
			Provider:    "ollama",
			Model:       "nomic-embed-text",
			Endpoint:    DefaultOllamaEndpoint,
			Dimensions:  512,
			Concurrency: 4,
		},
		Chunking: chunker.DefaultOptions(),
		Retrieval: RetrievalConfig{
			TopK:       4,
			MinOverlap: 0.5,
		},
		Transcript: TranscriptConfig{
			Dir:       "./transcripts",
			Language:  "en",
			CachePath: "~/.cache/vidsynth/transcripts.db",
		},
		Server: ServerConfig{
			Addr:         ":8080",
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 5 * time.Minute,
		},
		Output: OutputConfig{
			Format:    "text",
			ColorMode: "auto",
		},
		Timeouts: TimeoutConfig{
			Build: 10 * time.Minute,
			Query: 2 * time.Minute,
		},
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	validators := []func() error{
		c.validateAIConfig,
		c.validateEmbeddingConfig,
		c.validateChunkingConfig,
		c.validateRetrievalConfig,
		c.validateOutputConfig,
		c.validateTimeoutConfig,
	}
	for _, validate := range validators {
		if err := validate(); err != nil {
			return err
		}
	}
	return nil
}

func (c *Config) validateAIConfig() error {
	if c.AI.Provider != "" && !oneOf(c.AI.Provider, "ollama", "openai", "anthropic") {
		return common.NewConfigError("ai.provider", fmt.Sprintf("%q must be one of: ollama, openai, anthropic", c.AI.Provider))
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return common.NewConfigError("ai.temperature", "must be between 0 and 2")
	}
	if c.AI.MaxRetries < 0 {
		return common.NewConfigError("ai.max_retries", "must be non-negative")
	}
	if c.AI.Timeout < 0 {
		return common.NewConfigError("ai.timeout", "must be non-negative")
	}
	return nil
}

func (c *Config) validateEmbeddingConfig() error {
	if c.Embedding.Provider != "" && !oneOf(c.Embedding.Provider, "ollama", "openai", "tfidf") {
		return common.NewConfigError("embedding.provider", fmt.Sprintf("%q must be one of: ollama, openai, tfidf", c.Embedding.Provider))
	}
	if c.Embedding.Concurrency < 0 {
		return common.NewConfigError("embedding.concurrency", "must be non-negative")
	}
	if c.Embedding.Dimensions < 0 {
		return common.NewConfigError("embedding.dimensions", "must be non-negative")
	}
	return nil
}

func (c *Config) validateChunkingConfig() error {
	if err := c.Chunking.Validate(); err != nil {
		var cfgErr *common.ConfigError
		if errors.As(err, &cfgErr) {
			return common.NewConfigError("chunking."+cfgErr.Field, cfgErr.Message)
		}
		return err
	}
	return nil
}

func (c *Config) validateRetrievalConfig() error {
	if c.Retrieval.TopK < 1 {
		return common.NewConfigError("retrieval.top_k", "must be at least 1")
	}
	if c.Retrieval.MinOverlap < 0 || c.Retrieval.MinOverlap > 1 {
		return common.NewConfigError("retrieval.min_overlap", "must be between 0 and 1")
	}
	return nil
}

func (c *Config) validateOutputConfig() error {
	if c.Output.Format != "" && !oneOf(c.Output.Format, "text", "json", "markdown") {
		return common.NewConfigError("output.format", fmt.Sprintf("%q must be one of: text, json, markdown", c.Output.Format))
	}
	if c.Output.ColorMode != "" && !oneOf(c.Output.ColorMode, "auto", "always", "never") {
		return common.NewConfigError("output.color_mode", fmt.Sprintf("%q must be one of: auto, always, never", c.Output.ColorMode))
	}
	return nil
}

func (c *Config) validateTimeoutConfig() error {
	if c.Timeouts.Build < 0 {
		return common.NewConfigError("timeouts.build", "must be non-negative")
	}
	if c.Timeouts.Query < 0 {
		return common.NewConfigError("timeouts.query", "must be non-negative")
	}
	return nil
}

func oneOf(value string, allowed ...string) bool {
	for _, a := range allowed {
		if value == a {
			return true
		}
	}
	return false
}
