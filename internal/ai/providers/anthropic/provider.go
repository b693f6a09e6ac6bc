package anthropic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/yildizm/vidsynth/internal/ai"
)

// Message is a single turn in a Messages API request
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type request struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	System      string    `json:"system,omitempty"`
	Temperature float64   `json:"temperature"`
	Messages    []Message `json:"messages"`
}

type response struct {
	ID      string `json:"id"`
	Model   string `json:"model"`
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
	StopReason string `json:"stop_reason"`
	Usage      struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Provider calls the Anthropic Messages API
type Provider struct {
	config   *Config
	client   *http.Client
	endpoint string
}

func New(config *Config) (*Provider, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	base, err := url.Parse(config.BaseURL)
	if err != nil {
		return nil, ai.NewConfigurationError(providerName, "base_url", err.Error())
	}

	return &Provider{
		config:   config,
		client:   &http.Client{Timeout: config.Timeout},
		endpoint: base.JoinPath("/v1/messages").String(),
	}, nil
}

func (p *Provider) Name() string {
	return providerName
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

// Complete sends one user message and returns the concatenated text blocks
func (p *Provider) Complete(ctx context.Context, req *ai.CompletionRequest) (*ai.CompletionResponse, error) {
	if req == nil {
		return nil, ai.NewValidationError("request", "completion request is required")
	}

	startTime := time.Now()

	model := req.Model
	if model == "" {
		model = p.config.DefaultModel
	}
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = p.config.MaxOutputTokens
	}
	temperature := req.Temperature
	if temperature == 0 {
		temperature = p.config.DefaultTemperature
	}

	body, err := json.Marshal(request{
		Model:       model,
		MaxTokens:   maxTokens,
		System:      req.SystemPrompt,
		Temperature: temperature,
		Messages:    []Message{{Role: "user", Content: req.Prompt}},
	})
	if err != nil {
		return nil, ai.NewProviderErrorWithCause(ai.ErrTypeInternal, "marshal request", providerName, err)
	}

	var apiResp response
	err = ai.Retry(ctx, p.config.Retry, func() error {
		return p.send(ctx, body, &apiResp)
	})
	if err != nil {
		return nil, err
	}

	var text strings.Builder
	for _, block := range apiResp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return nil, ai.NewProviderError(ai.ErrTypeProvider, "empty response content", providerName)
	}

	return &ai.CompletionResponse{
		Content:      text.String(),
		FinishReason: apiResp.StopReason,
		Model:        apiResp.Model,
		RequestID:    req.RequestID,
		CreatedAt:    startTime,
		Usage: &ai.TokenUsage{
			PromptTokens:     apiResp.Usage.InputTokens,
			CompletionTokens: apiResp.Usage.OutputTokens,
			TotalTokens:      apiResp.Usage.InputTokens + apiResp.Usage.OutputTokens,
		},
	}, nil
}

func (p *Provider) send(ctx context.Context, body []byte, out *response) error {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, p.endpoint, bytes.NewReader(body))
	if err != nil {
		return ai.NewProviderErrorWithCause(ai.ErrTypeInternal, "create request", providerName, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", p.config.APIKey)
	httpReq.Header.Set("anthropic-version", APIVersion)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		return ai.NewProviderErrorWithCause(ai.ErrTypeNetwork, "api call", providerName, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return ai.NewProviderErrorWithCause(ai.ErrTypeNetwork, "read response", providerName, err)
	}

	if resp.StatusCode != http.StatusOK {
		message := string(respBody)
		var errResp errorResponse
		if json.Unmarshal(respBody, &errResp) == nil && errResp.Error.Message != "" {
			message = fmt.Sprintf("%s: %s", errResp.Error.Type, errResp.Error.Message)
		}
		pe := ai.ErrorFromStatus(providerName, resp.StatusCode, message)
		if seconds, err := strconv.Atoi(resp.Header.Get("retry-after")); err == nil {
			pe.RetryAfter = seconds
		}
		return pe
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return ai.NewProviderErrorWithCause(ai.ErrTypeInternal, "unmarshal response", providerName, err)
	}
	return nil
}
