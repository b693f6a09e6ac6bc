package ai

import (
	"context"
	"errors"
	"time"
)

// Retry runs fn until it succeeds, returns a non-retryable error, or the
// retry budget is spent. Delays grow exponentially and honour a provider's
// RetryAfter hint.
func Retry(ctx context.Context, cfg *RetryConfig, fn func() error) error {
	if cfg == nil {
		cfg = DefaultRetryConfig()
	}

	delay := cfg.InitialDelay
	var err error
	for attempt := 0; ; attempt++ {
		err = fn()
		if err == nil || !IsRetryableError(err) || attempt >= cfg.MaxRetries {
			return err
		}

		wait := delay
		var pe *ProviderError
		if errors.As(err, &pe) && pe.RetryAfter > 0 {
			wait = time.Duration(pe.RetryAfter) * time.Second
		}
		if cfg.MaxDelay > 0 && wait > cfg.MaxDelay {
			wait = cfg.MaxDelay
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}

		if cfg.BackoffMultiplier > 1 {
			delay = time.Duration(float64(delay) * cfg.BackoffMultiplier)
		}
	}
}
