package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yildizm/vidsynth/internal/chunker"
	"github.com/yildizm/vidsynth/internal/common"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Version != "1.0" {
		t.Errorf("Expected version 1.0, got %s", cfg.Version)
	}
	if cfg.AI.Provider != "ollama" {
		t.Errorf("Expected AI provider ollama, got %s", cfg.AI.Provider)
	}
	if cfg.AI.Temperature != 0.2 {
		t.Errorf("Expected temperature 0.2, got %v", cfg.AI.Temperature)
	}
	if cfg.Chunking != chunker.DefaultOptions() {
		t.Errorf("Expected default chunking, got %+v", cfg.Chunking)
	}
	if cfg.Retrieval.TopK != 4 || cfg.Retrieval.StrictGrounding || cfg.Retrieval.MinOverlap != 0.5 {
		t.Errorf("Unexpected retrieval defaults: %+v", cfg.Retrieval)
	}
	if cfg.Transcript.Language != "en" {
		t.Errorf("Expected language en, got %s", cfg.Transcript.Language)
	}
	if cfg.Server.Addr != ":8080" {
		t.Errorf("Expected addr :8080, got %s", cfg.Server.Addr)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Default config should be valid: %v", err)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		field  string
	}{
		{"valid config", func(*Config) {}, ""},
		{"invalid AI provider", func(c *Config) { c.AI.Provider = "invalid" }, "ai.provider"},
		{"negative temperature", func(c *Config) { c.AI.Temperature = -1 }, "ai.temperature"},
		{"negative retries", func(c *Config) { c.AI.MaxRetries = -1 }, "ai.max_retries"},
		{"invalid embedding provider", func(c *Config) { c.Embedding.Provider = "anthropic" }, "embedding.provider"},
		{"tfidf embedding", func(c *Config) { c.Embedding.Provider = "tfidf" }, ""},
		{"zero max size", func(c *Config) { c.Chunking.MaxSize = 0 }, "chunking.max_size"},
		{"overlap equals max size", func(c *Config) { c.Chunking = chunker.Options{MaxSize: 100, Overlap: 100} }, "chunking.overlap"},
		{"negative overlap", func(c *Config) { c.Chunking.Overlap = -1 }, "chunking.overlap"},
		{"zero top k", func(c *Config) { c.Retrieval.TopK = 0 }, "retrieval.top_k"},
		{"overlap above one", func(c *Config) { c.Retrieval.MinOverlap = 1.5 }, "retrieval.min_overlap"},
		{"invalid output format", func(c *Config) { c.Output.Format = "csv" }, "output.format"},
		{"invalid color mode", func(c *Config) { c.Output.ColorMode = "sometimes" }, "output.color_mode"},
		{"negative build timeout", func(c *Config) { c.Timeouts.Build = -time.Second }, "timeouts.build"},
		{"negative query timeout", func(c *Config) { c.Timeouts.Query = -time.Second }, "timeouts.query"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.modify(cfg)
			err := cfg.Validate()

			if tt.field == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}

			var cfgErr *common.ConfigError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("Expected ConfigError, got %v", err)
			}
			if cfgErr.Field != tt.field {
				t.Errorf("Expected field %s, got %s", tt.field, cfgErr.Field)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}

	tests := []struct {
		input    string
		expected string
	}{
		{"~/test", filepath.Join(home, "test")},
		{"~/.config/vidsynth", filepath.Join(home, ".config/vidsynth")},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"~", "~"},
	}

	for _, tt := range tests {
		if got := ExpandPath(tt.input); got != tt.expected {
			t.Errorf("ExpandPath(%s) = %s, expected %s", tt.input, got, tt.expected)
		}
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := GetConfigPaths()
	if len(paths) != len(ConfigPaths) {
		t.Fatalf("Expected %d paths, got %d", len(ConfigPaths), len(paths))
	}
	for _, path := range paths {
		if strings.HasPrefix(path, "~/") {
			t.Errorf("Path should be expanded: %s", path)
		}
	}
}

func TestSampleConfigsLoad(t *testing.T) {
	for name, content := range map[string]string{
		"full":    SampleConfig(),
		"minimal": MinimalSampleConfig(),
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
				t.Fatalf("Failed to write sample: %v", err)
			}
			cfg, err := newTestLoader(nil, nil).LoadConfig(path)
			if err != nil {
				t.Fatalf("Sample config should load: %v", err)
			}
			if cfg.AI.Model != "llama3.2" {
				t.Errorf("Expected model llama3.2, got %s", cfg.AI.Model)
			}
		})
	}
}
