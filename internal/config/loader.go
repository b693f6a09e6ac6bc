package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPaths defines the config file search paths in priority order
var ConfigPaths = []string{
	"./.vidsynth.yaml",               // Project-specific config (highest priority)
	"~/.config/vidsynth/config.yaml", // User config
	"/etc/vidsynth/config.yaml",      // System config (lowest priority)
}

// EnvPrefix prefixes every environment override
const EnvPrefix = "VIDSYNTH_"

// Loader handles configuration loading with priority merging
type Loader struct {
	configPaths []string
	lookupEnv   func(string) (string, bool)
	warn        func(format string, args ...interface{})
}

// NewLoader creates a new config loader
func NewLoader() *Loader {
	return &Loader{
		configPaths: ConfigPaths,
		lookupEnv:   os.LookupEnv,
		warn: func(format string, args ...interface{}) {
			fmt.Fprintf(os.Stderr, "Warning: "+format+"\n", args...)
		},
	}
}

// LoadConfig loads configuration from multiple sources with priority order:
// 1. Command line flags (handled by caller)
// 2. VIDSYNTH_* environment variables
// 3. ./.vidsynth.yaml
// 4. ~/.config/vidsynth/config.yaml
// 5. /etc/vidsynth/config.yaml
// 6. Built-in defaults
func (l *Loader) LoadConfig(customPath string) (*Config, error) {
	config := DefaultConfig()

	if customPath != "" {
		if err := validateConfigPath(customPath); err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		if err := l.loadFromFile(config, customPath); err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", customPath, err)
		}
	} else {
		// Lowest priority first so later files win
		for i := len(l.configPaths) - 1; i >= 0; i-- {
			expandedPath := ExpandPath(l.configPaths[i])
			if !fileExists(expandedPath) {
				continue
			}
			if err := l.loadFromFile(config, expandedPath); err != nil {
				l.warn("failed to load config from %s: %v", expandedPath, err)
			}
		}
	}

	if err := l.applyEnvOverrides(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	config.AI.APIKey = expandEnvReference(config.AI.APIKey)
	config.Embedding.APIKey = expandEnvReference(config.Embedding.APIKey)
	config.Transcript.CachePath = ExpandPath(config.Transcript.CachePath)
	config.Transcript.Dir = ExpandPath(config.Transcript.Dir)

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// loadFromFile decodes a YAML file on top of the existing config. Keys
// missing from the file keep their current values.
func (l *Loader) loadFromFile(config *Config, path string) error {
	// #nosec G304 - path is validated by validateConfigPath() or comes from ConfigPaths
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read file: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	// Decode into a copy so a malformed file leaves config untouched
	merged := *config
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&merged); err != nil {
		return fmt.Errorf("failed to parse YAML: %w", err)
	}
	*config = merged

	return nil
}

// applyEnvOverrides applies environment variable overrides to the config
func (l *Loader) applyEnvOverrides(config *Config) error {
	envMappings := map[string]func(string) error{
		// AI Config
		"AI_PROVIDER":    func(v string) error { config.AI.Provider = v; return nil },
		"AI_MODEL":       func(v string) error { config.AI.Model = v; return nil },
		"AI_ENDPOINT":    func(v string) error { config.AI.Endpoint = v; return nil },
		"AI_API_KEY":     func(v string) error { config.AI.APIKey = v; return nil },
		"AI_TEMPERATURE": func(v string) error { return parseFloat(v, &config.AI.Temperature) },
		"AI_MAX_TOKENS":  func(v string) error { return parseInt(v, &config.AI.MaxTokens) },
		"AI_TIMEOUT":     func(v string) error { return parseDuration(v, &config.AI.Timeout) },
		"AI_MAX_RETRIES": func(v string) error { return parseInt(v, &config.AI.MaxRetries) },

		// Embedding Config
		"EMBEDDING_PROVIDER":    func(v string) error { config.Embedding.Provider = v; return nil },
		"EMBEDDING_MODEL":       func(v string) error { config.Embedding.Model = v; return nil },
		"EMBEDDING_ENDPOINT":    func(v string) error { config.Embedding.Endpoint = v; return nil },
		"EMBEDDING_API_KEY":     func(v string) error { config.Embedding.APIKey = v; return nil },
		"EMBEDDING_DIMENSIONS":  func(v string) error { return parseInt(v, &config.Embedding.Dimensions) },
		"EMBEDDING_CONCURRENCY": func(v string) error { return parseInt(v, &config.Embedding.Concurrency) },
		"EMBEDDING_NORMALIZE":   func(v string) error { return parseBool(v, &config.Embedding.Normalize) },

		// Chunking and retrieval
		"CHUNKING_MAX_SIZE":          func(v string) error { return parseInt(v, &config.Chunking.MaxSize) },
		"CHUNKING_OVERLAP":           func(v string) error { return parseInt(v, &config.Chunking.Overlap) },
		"RETRIEVAL_TOP_K":            func(v string) error { return parseInt(v, &config.Retrieval.TopK) },
		"RETRIEVAL_STRICT_GROUNDING": func(v string) error { return parseBool(v, &config.Retrieval.StrictGrounding) },
		"RETRIEVAL_MIN_OVERLAP":      func(v string) error { return parseFloat(v, &config.Retrieval.MinOverlap) },

		// Transcript Config
		"TRANSCRIPT_DIR":        func(v string) error { config.Transcript.Dir = v; return nil },
		"TRANSCRIPT_LANGUAGE":   func(v string) error { config.Transcript.Language = v; return nil },
		"TRANSCRIPT_CACHE_PATH": func(v string) error { config.Transcript.CachePath = v; return nil },

		// Server Config
		"SERVER_ADDR": func(v string) error { config.Server.Addr = v; return nil },

		// Output Config
		"OUTPUT_FORMAT":       func(v string) error { config.Output.Format = v; return nil },
		"OUTPUT_COLOR_MODE":   func(v string) error { config.Output.ColorMode = v; return nil },
		"OUTPUT_VERBOSE":      func(v string) error { return parseBool(v, &config.Output.Verbose) },
		"OUTPUT_SHOW_CONTEXT": func(v string) error { return parseBool(v, &config.Output.ShowContext) },

		// Timeouts
		"TIMEOUTS_BUILD": func(v string) error { return parseDuration(v, &config.Timeouts.Build) },
		"TIMEOUTS_QUERY": func(v string) error { return parseDuration(v, &config.Timeouts.Query) },
	}

	for suffix, setter := range envMappings {
		envVar := EnvPrefix + suffix
		if value, ok := l.lookupEnv(envVar); ok && value != "" {
			if err := setter(value); err != nil {
				return fmt.Errorf("invalid value for %s: %w", envVar, err)
			}
		}
	}

	// Conventional provider key variables fill in a missing key
	if config.AI.APIKey == "" {
		config.AI.APIKey = l.providerKey(config.AI.Provider)
	}
	if config.Embedding.APIKey == "" {
		config.Embedding.APIKey = l.providerKey(config.Embedding.Provider)
	}

	return nil
}

func (l *Loader) providerKey(provider string) string {
	var envVar string
	switch provider {
	case "openai":
		envVar = "OPENAI_API_KEY"
	case "anthropic":
		envVar = "ANTHROPIC_API_KEY"
	default:
		return ""
	}
	value, _ := l.lookupEnv(envVar)
	return value
}

// GetConfigPaths returns the list of configuration file paths that will be searched
func GetConfigPaths() []string {
	paths := make([]string, 0, len(ConfigPaths))
	for _, path := range ConfigPaths {
		paths = append(paths, ExpandPath(path))
	}
	return paths
}

// FindConfigFile finds the first existing config file in the search paths
func FindConfigFile() (string, bool) {
	for _, path := range ConfigPaths {
		expandedPath := ExpandPath(path)
		if fileExists(expandedPath) {
			return expandedPath, true
		}
	}
	return "", false
}

// validateConfigPath validates that a config path is safe to read
func validateConfigPath(path string) error {
	cleanPath := filepath.Clean(path)

	if strings.Contains(cleanPath, "..") {
		return fmt.Errorf("path traversal not allowed")
	}

	ext := strings.ToLower(filepath.Ext(cleanPath))
	if ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("config file must have .yaml or .yml extension")
	}

	absPath, err := filepath.Abs(cleanPath)
	if err != nil {
		return fmt.Errorf("failed to resolve absolute path: %w", err)
	}

	if strings.HasPrefix(absPath, "/proc/") || strings.HasPrefix(absPath, "/sys/") {
		return fmt.Errorf("access to system files not allowed")
	}

	return nil
}

// ExpandPath expands a leading ~ to the home directory
func ExpandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}

// expandEnvReference resolves a "${VAR}" value, leaving literal keys untouched
func expandEnvReference(value string) string {
	if strings.HasPrefix(value, "${") && strings.HasSuffix(value, "}") {
		return os.Getenv(value[2 : len(value)-1])
	}
	return value
}

// fileExists checks if a file exists
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// Type conversion helpers

func parseInt(s string, dst *int) error {
	val, err := strconv.Atoi(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseFloat(s string, dst *float64) error {
	val, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseBool(s string, dst *bool) error {
	val, err := strconv.ParseBool(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}

func parseDuration(s string, dst *time.Duration) error {
	val, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*dst = val
	return nil
}
