package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"

	"github.com/yildizm/vidsynth/internal/ai"
)

type Provider struct {
	config  *Config
	client  *http.Client
	baseURL *url.URL
	healthy bool
	mu      sync.RWMutex
}

func New(config *Config) (*Provider, error) {
	if config == nil {
		config = DefaultConfig()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	baseURL, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, ai.NewConfigurationError(providerName, "base_url", fmt.Sprintf("invalid base URL: %v", err))
	}

	return &Provider{
		config:  config,
		client:  &http.Client{Timeout: config.Timeout},
		baseURL: baseURL,
		healthy: true,
	}, nil
}

func (p *Provider) Name() string {
	return providerName
}

func (p *Provider) Complete(ctx context.Context, req *ai.CompletionRequest) (*ai.CompletionResponse, error) {
	if req == nil {
		return nil, ai.NewValidationError("request", "completion request is required")
	}

	model := req.Model
	if model == "" {
		model = p.config.DefaultModel
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = p.config.DefaultTemperature
	}

	chatReq := newChatRequest(model, req.MaxTokens, temperature, req.SystemPrompt, req.Prompt, req.RequestID)

	var chatResp ChatCompletionResponse
	if err := p.post(ctx, "/v1/chat/completions", chatReq, &chatResp); err != nil {
		return nil, err
	}

	if len(chatResp.Choices) == 0 {
		return nil, ai.NewProviderError(ai.ErrTypeProvider, "response contained no choices", providerName)
	}

	return chatResp.ToAIResponse(req.RequestID), nil
}

func (p *Provider) Embed(ctx context.Context, req *ai.EmbeddingRequest) (*ai.EmbeddingResponse, error) {
	if req == nil {
		return nil, ai.NewValidationError("request", "embedding request is required")
	}

	model := req.Model
	if model == "" {
		model = p.config.EmbeddingModel
	}

	var embResp EmbeddingResponse
	if err := p.post(ctx, "/v1/embeddings", &EmbeddingRequest{Model: model, Input: req.Input}, &embResp); err != nil {
		return nil, err
	}

	if len(embResp.Data) == 0 || len(embResp.Data[0].Embedding) == 0 {
		return nil, ai.NewProviderError(ai.ErrTypeProvider, "empty embedding returned", providerName)
	}

	return &ai.EmbeddingResponse{
		Embedding: embResp.Data[0].Embedding,
		Model:     embResp.Model,
		Usage: &ai.TokenUsage{
			PromptTokens: embResp.Usage.PromptTokens,
			TotalTokens:  embResp.Usage.TotalTokens,
		},
	}, nil
}

func (p *Provider) MaxTokens() int {
	return p.config.MaxTokens
}

func (p *Provider) ValidateConfig() error {
	return p.config.Validate()
}

func (p *Provider) Close() error {
	p.client.CloseIdleConnections()
	return nil
}

func (p *Provider) HealthCheck(ctx context.Context) error {
	endpoint := p.baseURL.JoinPath("/v1/models")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), http.NoBody)
	if err != nil {
		p.setHealthy(false)
		return ai.NewProviderErrorWithCause(ai.ErrTypeInternal, "failed to create health check request", providerName, err)
	}
	p.setHeaders(req)

	resp, err := p.client.Do(req)
	if err != nil {
		p.setHealthy(false)
		return ai.NewProviderErrorWithCause(ai.ErrTypeNetwork, "health check request failed", providerName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		p.setHealthy(false)
		return p.handleErrorResponse(resp)
	}

	p.setHealthy(true)
	return nil
}

func (p *Provider) IsHealthy() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.healthy
}

func (p *Provider) setHealthy(healthy bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.healthy = healthy
}

func (p *Provider) setHeaders(req *http.Request) {
	req.Header.Set("Authorization", "Bearer "+p.config.APIKey)
	req.Header.Set("Content-Type", "application/json")

	if p.config.OrganizationID != "" {
		req.Header.Set("OpenAI-Organization", p.config.OrganizationID)
	}
}

// post retries network failures, 429s and 5xx responses with backoff
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
		p.setHeaders(httpReq)

		resp, err := p.client.Do(httpReq)
		if err != nil {
			return ai.NewProviderErrorWithCause(ai.ErrTypeNetwork, "request failed", providerName, err)
		}
		defer func() { _ = resp.Body.Close() }()

		if resp.StatusCode != http.StatusOK {
			return p.handleErrorResponse(resp)
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return ai.NewProviderErrorWithCause(ai.ErrTypeInternal, "failed to decode response", providerName, err)
		}
		return nil
	})
}

func (p *Provider) handleErrorResponse(resp *http.Response) error {
	body, _ := io.ReadAll(resp.Body)

	message := ""
	var errorResp ErrorResponse
	if json.Unmarshal(body, &errorResp) == nil {
		message = errorResp.Error.Message
	}

	pe := ai.ErrorFromStatus(providerName, resp.StatusCode, message)
	if errorResp.Error.Code == "insufficient_quota" {
		pe.Type = ai.ErrTypeQuota
		pe.Retryable = false
	}
	if retryAfter := resp.Header.Get("Retry-After"); retryAfter != "" {
		if seconds, err := strconv.Atoi(retryAfter); err == nil {
			pe.RetryAfter = seconds
		}
	}
	return pe
}
