package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/yildizm/vidsynth/internal/ai"
)

// Provider talks to a local Ollama server for completions and embeddings
type Provider struct {
	config   *Config
	client   *http.Client
	baseURL  *url.URL
	healthy  bool
	healthMu sync.RWMutex
}

// New creates a new Ollama provider instance
func New(config *Config) (*Provider, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, ai.NewConfigurationError(providerName, "base_url", "invalid base URL: "+err.Error())
	}

	return &Provider{
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		baseURL: baseURL,
	}, nil
}

// Name returns the provider name
func (p *Provider) Name() string {
	return providerName
}

// Complete performs a non-streaming generation
func (p *Provider) Complete(ctx context.Context, req *ai.CompletionRequest) (*ai.CompletionResponse, error) {
	if req == nil {
		return nil, ai.NewValidationError("request", "completion request is required")
	}

	startTime := time.Now()

	model := req.Model
	if model == "" {
		model = p.config.DefaultModel
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = p.config.DefaultTemperature
	}

	options := &Options{Temperature: temperature}
	if req.MaxTokens > 0 {
		options.NumPredict = req.MaxTokens
	}

	genReq := &GenerateRequest{
		Model:   model,
		Prompt:  req.Prompt,
		System:  req.SystemPrompt,
		Stream:  false,
		Options: options,
	}

	var resp GenerateResponse
	if err := p.post(ctx, "/api/generate", genReq, &resp); err != nil {
		return nil, err
	}

	finish := resp.DoneReason
	if finish == "" {
		finish = "stop"
	}

	return &ai.CompletionResponse{
		Content:      resp.Response,
		FinishReason: finish,
		Usage: &ai.TokenUsage{
			PromptTokens:     resp.PromptEvalCount,
			CompletionTokens: resp.EvalCount,
			TotalTokens:      resp.PromptEvalCount + resp.EvalCount,
		},
		Model:     resp.Model,
		RequestID: req.RequestID,
		CreatedAt: startTime,
	}, nil
}

// Embed returns the embedding of a single text
func (p *Provider) Embed(ctx context.Context, req *ai.EmbeddingRequest) (*ai.EmbeddingResponse, error) {
	if req == nil {
		return nil, ai.NewValidationError("request", "embedding request is required")
	}

	model := req.Model
	if model == "" {
		model = p.config.EmbeddingModel
	}
	if model == "" {
		return nil, ai.NewConfigurationError(providerName, "embedding_model", "embedding model is required")
	}

	var resp EmbeddingsResponse
	if err := p.post(ctx, "/api/embeddings", &EmbeddingsRequest{Model: model, Prompt: req.Input}, &resp); err != nil {
		return nil, err
	}
	if len(resp.Embedding) == 0 {
		return nil, ai.NewProviderError(ai.ErrTypeProvider, "empty embedding returned", providerName)
	}

	embedding := make([]float32, len(resp.Embedding))
	for i, v := range resp.Embedding {
		embedding[i] = float32(v)
	}

	return &ai.EmbeddingResponse{Embedding: embedding, Model: model}, nil
}

// MaxTokens returns the maximum context window size
func (p *Provider) MaxTokens() int {
	return p.config.MaxTokens
}

// ValidateConfig validates the provider configuration
func (p *Provider) ValidateConfig() error {
	return p.config.Validate()
}

// Close cleans up provider resources
func (p *Provider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

// HealthCheck verifies the server answers /api/tags
func (p *Provider) HealthCheck(ctx context.Context) error {
	_, err := p.ListModels(ctx)
	p.setHealthy(err == nil)
	return err
}

// IsHealthy returns the result of the last health check
func (p *Provider) IsHealthy() bool {
	p.healthMu.RLock()
	defer p.healthMu.RUnlock()
	return p.healthy
}

func (p *Provider) setHealthy(healthy bool) {
	p.healthMu.Lock()
	defer p.healthMu.Unlock()
	p.healthy = healthy
}

// ListModels returns locally available models
func (p *Provider) ListModels(ctx context.Context) ([]Model, error) {
	endpoint := p.baseURL.JoinPath("/api/tags")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), http.NoBody)
	if err != nil {
		return nil, ai.NewProviderErrorWithCause(ai.ErrTypeInternal, "failed to create request", providerName, err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, ai.NewProviderErrorWithCause(ai.ErrTypeNetwork, "request failed", providerName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, p.errorFromResponse(resp)
	}

	var tags TagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, ai.NewProviderErrorWithCause(ai.ErrTypeInternal, "failed to decode response", providerName, err)
	}

	return tags.Models, nil
}

// IsModelAvailable checks if a model has been pulled locally
func (p *Provider) IsModelAvailable(ctx context.Context, modelName string) (bool, error) {
	models, err := p.ListModels(ctx)
	if err != nil {
		return false, err
	}

	for _, model := range models {
		if model.Name == modelName || strings.HasPrefix(model.Name, modelName+":") {
			return true, nil
		}
	}

	return false, nil
}

// post sends a JSON request and decodes the JSON reply, retrying transient
// failures
func (p *Provider) post(ctx context.Context, path string, in, out interface{}) error {
	endpoint := p.baseURL.JoinPath(path)

	body, err := json.Marshal(in)
	if err != nil {
		return ai.NewProviderErrorWithCause(ai.ErrTypeInternal, "failed to marshal request", providerName, err)
	}

	return ai.Retry(ctx, p.config.Retry, func() error {
		httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint.String(), bytes.NewReader(body))
		if err != nil {
			return ai.NewProviderErrorWithCause(ai.ErrTypeInternal, "failed to create request", providerName, err)
		}
		httpReq.Header.Set("Content-Type", "application/json")

		resp, err := p.client.Do(httpReq)
		if err != nil {
			return ai.NewProviderErrorWithCause(ai.ErrTypeNetwork, "request failed", providerName, err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return p.errorFromResponse(resp)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return ai.NewProviderErrorWithCause(ai.ErrTypeInternal, "failed to decode response", providerName, err)
		}
		return nil
	})
}

func (p *Provider) errorFromResponse(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	var errorResp ErrorResponse
	message := ""
	if json.Unmarshal(body, &errorResp) == nil && errorResp.Error != "" {
		message = errorResp.Error
	} else if len(body) > 0 {
		message = fmt.Sprintf("request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	return ai.ErrorFromStatus(providerName, resp.StatusCode, message)
}
