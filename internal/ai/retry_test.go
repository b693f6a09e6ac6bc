package ai

import (
	"context"
	"errors"
	"testing"
	"time"
)

func fastRetry(maxRetries int) *RetryConfig {
	return &RetryConfig{
		MaxRetries:        maxRetries,
		InitialDelay:      time.Millisecond,
		MaxDelay:          5 * time.Millisecond,
		BackoffMultiplier: 2,
	}
}

func TestRetry(t *testing.T) {
	tests := []struct {
		name       string
		maxRetries int
		failures   int
		errType    ErrorType
		wantCalls  int
		wantErr    bool
	}{
		{"success first try", 2, 0, ErrTypeNetwork, 1, false},
		{"recovers after transient failures", 2, 2, ErrTypeNetwork, 3, false},
		{"gives up after budget", 2, 5, ErrTypeNetwork, 3, true},
		{"no retry on permanent error", 3, 5, ErrTypeAuthentication, 1, true},
		{"zero retries", 0, 1, ErrTypeRateLimit, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			calls := 0
			err := Retry(context.Background(), fastRetry(tt.maxRetries), func() error {
				calls++
				if calls <= tt.failures {
					return NewProviderError(tt.errType, "boom", "test")
				}
				return nil
			})

			if (err != nil) != tt.wantErr {
				t.Errorf("Retry() error = %v, wantErr %v", err, tt.wantErr)
			}
			if calls != tt.wantCalls {
				t.Errorf("calls = %d, want %d", calls, tt.wantCalls)
			}
		})
	}
}

func TestRetryStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	cfg := &RetryConfig{MaxRetries: 5, InitialDelay: time.Hour}
	err := Retry(ctx, cfg, func() error {
		calls++
		return NewProviderError(ErrTypeNetwork, "down", "test")
	})

	if err == nil {
		t.Fatal("expected the last error to be returned")
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetryPlainErrorNotRetried(t *testing.T) {
	calls := 0
	sentinel := errors.New("plain")
	err := Retry(context.Background(), fastRetry(3), func() error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) || calls != 1 {
		t.Errorf("Retry() = %v after %d calls, want sentinel after 1", err, calls)
	}
}
