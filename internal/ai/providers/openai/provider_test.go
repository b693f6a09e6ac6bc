package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/yildizm/vidsynth/internal/ai"
)

const testAPIKey = "test-api-key"

func newTestProvider(t *testing.T, handler http.HandlerFunc) *Provider {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	config := DefaultConfig()
	config.APIKey = testAPIKey
	config.BaseURL = server.URL
	config.Retry = &ai.RetryConfig{MaxRetries: 2, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond}

	provider, err := New(config)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return provider
}

func TestProvider_New(t *testing.T) {
	tests := []struct {
		name    string
		config  *Config
		wantErr bool
	}{
		{
			name:    "nil config uses defaults",
			config:  nil,
			wantErr: true, // no API key
		},
		{
			name: "valid config",
			config: &Config{
				APIKey:             testAPIKey,
				BaseURL:            DefaultBaseURL,
				DefaultModel:       DefaultModel,
				MaxTokens:          DefaultMaxTokens,
				DefaultTemperature: DefaultTemperature,
				Timeout:            DefaultTimeout,
			},
			wantErr: false,
		},
		{
			name: "invalid base URL",
			config: &Config{
				APIKey:  testAPIKey,
				BaseURL: "http://[::1]:namedport",
			},
			wantErr: true,
		},
		{
			name:    "missing API key",
			config:  &Config{BaseURL: DefaultBaseURL},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.config)
			if (err != nil) != tt.wantErr {
				t.Errorf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestProvider_Complete(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer "+testAPIKey {
			t.Errorf("Authorization = %q", got)
		}

		var req ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode request: %v", err)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Content != "What produces energy?" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}
		if req.Temperature != DefaultTemperature {
			t.Errorf("Temperature = %v, want %v", req.Temperature, DefaultTemperature)
		}

		_ = json.NewEncoder(w).Encode(ChatCompletionResponse{
			Model:   req.Model,
			Created: time.Now().Unix(),
			Choices: []ChatCompletionChoice{{Message: ChatMessage{Role: "assistant", Content: "Fusion."}, FinishReason: "stop"}},
			Usage:   Usage{PromptTokens: 20, CompletionTokens: 3, TotalTokens: 23},
		})
	})

	resp, err := provider.Complete(context.Background(), &ai.CompletionRequest{
		SystemPrompt: "answer from context",
		Prompt:       "What produces energy?",
	})
	if err != nil {
		t.Fatalf("Complete() error = %v", err)
	}
	if resp.Content != "Fusion." || resp.FinishReason != "stop" || resp.Usage.TotalTokens != 23 {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestProvider_CompleteNoChoices(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(ChatCompletionResponse{})
	})

	if _, err := provider.Complete(context.Background(), &ai.CompletionRequest{Prompt: "hi"}); err == nil {
		t.Error("expected error for empty choices")
	}
}

func TestProvider_Embed(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/embeddings" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req EmbeddingRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		if req.Model != DefaultEmbeddingModel || req.Input != "stars" {
			t.Errorf("unexpected request: %+v", req)
		}
		_ = json.NewEncoder(w).Encode(EmbeddingResponse{
			Model: req.Model,
			Data:  []EmbeddingData{{Embedding: []float32{0.1, 0.2}}},
		})
	})

	resp, err := provider.Embed(context.Background(), &ai.EmbeddingRequest{Input: "stars"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(resp.Embedding) != 2 || resp.Embedding[1] != 0.2 {
		t.Errorf("Embedding = %v", resp.Embedding)
	}
}

func TestProvider_RetryOnRateLimit(t *testing.T) {
	var calls int32
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			_ = json.NewEncoder(w).Encode(ErrorResponse{Error: ErrorDetail{Message: "slow down"}})
			return
		}
		_ = json.NewEncoder(w).Encode(EmbeddingResponse{Data: []EmbeddingData{{Embedding: []float32{1}}}})
	})

	if _, err := provider.Embed(context.Background(), &ai.EmbeddingRequest{Input: "x"}); err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if got := atomic.LoadInt32(&calls); got != 2 {
		t.Errorf("calls = %d, want 2", got)
	}
}

func TestProvider_ErrorMapping(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		detail   ErrorDetail
		wantType ai.ErrorType
	}{
		{"unauthorized", http.StatusUnauthorized, ErrorDetail{Message: "bad key"}, ai.ErrTypeAuthentication},
		{"quota", http.StatusTooManyRequests, ErrorDetail{Message: "no credit", Code: "insufficient_quota"}, ai.ErrTypeQuota},
		{"bad request", http.StatusBadRequest, ErrorDetail{Message: "bad"}, ai.ErrTypeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls int32
			provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
				atomic.AddInt32(&calls, 1)
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(ErrorResponse{Error: tt.detail})
			})

			_, err := provider.Complete(context.Background(), &ai.CompletionRequest{Prompt: "hi"})
			if !errors.Is(err, &ai.ProviderError{Type: tt.wantType}) {
				t.Errorf("error = %v, want type %s", err, tt.wantType)
			}
			if got := atomic.LoadInt32(&calls); got != 1 {
				t.Errorf("non-retryable error was attempted %d times", got)
			}
		})
	}
}

func TestProvider_HealthCheck(t *testing.T) {
	provider := newTestProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})

	err := provider.HealthCheck(context.Background())
	if !ai.IsAuthenticationError(err) {
		t.Errorf("HealthCheck() error = %v, want authentication error", err)
	}
	if provider.IsHealthy() {
		t.Error("provider should be unhealthy")
	}
}

func TestFactory(t *testing.T) {
	r := ai.NewRegistry()
	if err := Register(r); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	if _, err := r.Create("openai", nil); !ai.IsConfigurationError(err) {
		t.Errorf("Create() without key error = %v, want configuration error", err)
	}

	p, err := r.Create("openai", &ai.ProviderConfig{APIKey: testAPIKey})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if p.Name() != "openai" {
		t.Errorf("Name() = %s", p.Name())
	}
}
