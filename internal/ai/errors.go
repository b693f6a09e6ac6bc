package ai

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ErrorType represents the type of provider error
type ErrorType string

const (
	ErrTypeProvider         ErrorType = "provider"
	ErrTypeConfiguration    ErrorType = "configuration"
	ErrTypeAuthentication   ErrorType = "authentication"
	ErrTypeRateLimit        ErrorType = "rate_limit"
	ErrTypeQuota            ErrorType = "quota"
	ErrTypeNetwork          ErrorType = "network"
	ErrTypeTimeout          ErrorType = "timeout"
	ErrTypeValidation       ErrorType = "validation"
	ErrTypeRegistration     ErrorType = "registration"
	ErrTypeNotFound         ErrorType = "not_found"
	ErrTypeModelUnavailable ErrorType = "model_unavailable"
	ErrTypeUnsupported      ErrorType = "unsupported"
	ErrTypeInternal         ErrorType = "internal"
)

// ProviderError represents errors reported by or about a model provider
type ProviderError struct {
	// Type categorizes the error
	Type ErrorType `json:"type"`

	// Message provides human-readable error description
	Message string `json:"message"`

	// Provider indicates which provider caused the error
	Provider string `json:"provider,omitempty"`

	// StatusCode for HTTP-related errors
	StatusCode int `json:"status_code,omitempty"`

	// Underlying error that caused this error
	Cause error `json:"-"`

	// Retryable indicates if the operation can be retried
	Retryable bool `json:"retryable"`

	// RetryAfter suggests when to retry, in seconds
	RetryAfter int `json:"retry_after,omitempty"`
}

// Error implements the error interface
func (e *ProviderError) Error() string {
	var parts []string

	if e.Provider != "" {
		parts = append(parts, fmt.Sprintf("provider=%s", e.Provider))
	}

	parts = append(parts, fmt.Sprintf("type=%s", e.Type))

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("status=%d", e.StatusCode))
	}

	parts = append(parts, e.Message)

	if e.Cause != nil {
		parts = append(parts, fmt.Sprintf("cause=%s", e.Cause.Error()))
	}

	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error
func (e *ProviderError) Unwrap() error {
	return e.Cause
}

// Is matches another *ProviderError of the same type
func (e *ProviderError) Is(target error) bool {
	if pe, ok := target.(*ProviderError); ok {
		return e.Type == pe.Type
	}
	return false
}

// ConfigurationError represents invalid provider settings
type ConfigurationError struct {
	Provider string `json:"provider"`
	Field    string `json:"field"`
	Message  string `json:"message"`
}

// Error implements the error interface
func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error for provider '%s', field '%s': %s",
		e.Provider, e.Field, e.Message)
}

// ValidationError represents invalid request input
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

// NewProviderError creates a new provider error
func NewProviderError(errType ErrorType, message, provider string) *ProviderError {
	return &ProviderError{
		Type:      errType,
		Message:   message,
		Provider:  provider,
		Retryable: isRetryableType(errType),
	}
}

// NewProviderErrorWithCause creates a provider error with an underlying cause
func NewProviderErrorWithCause(errType ErrorType, message, provider string, cause error) *ProviderError {
	pe := NewProviderError(errType, message, provider)
	pe.Cause = cause
	return pe
}

// NewConfigurationError creates a configuration error
func NewConfigurationError(provider, field, message string) *ConfigurationError {
	return &ConfigurationError{
		Provider: provider,
		Field:    field,
		Message:  message,
	}
}

// NewValidationError creates a validation error
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

// ErrorFromStatus maps a non-2xx HTTP response onto a ProviderError
func ErrorFromStatus(provider string, status int, message string) *ProviderError {
	if message == "" {
		message = fmt.Sprintf("request failed with status %d", status)
	}

	var errType ErrorType
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		errType = ErrTypeAuthentication
	case status == http.StatusTooManyRequests:
		errType = ErrTypeRateLimit
	case status == http.StatusPaymentRequired:
		errType = ErrTypeQuota
	case status == http.StatusNotFound:
		errType = ErrTypeModelUnavailable
	case status == http.StatusBadRequest || status == http.StatusUnprocessableEntity:
		errType = ErrTypeValidation
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		errType = ErrTypeTimeout
	default:
		errType = ErrTypeProvider
	}

	pe := NewProviderError(errType, message, provider)
	pe.StatusCode = status
	// Overloaded or failing upstreams usually recover.
	if status >= 500 {
		pe.Retryable = true
	}
	return pe
}

func isRetryableType(errType ErrorType) bool {
	switch errType {
	case ErrTypeRateLimit, ErrTypeTimeout, ErrTypeNetwork:
		return true
	default:
		return false
	}
}

// IsRetryableError checks if an error is worth retrying
func IsRetryableError(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe.Retryable
	}
	return false
}

// IsRateLimitError checks if an error is a rate limit error
func IsRateLimitError(err error) bool {
	return hasType(err, ErrTypeRateLimit)
}

// IsAuthenticationError checks if an error is an authentication error
func IsAuthenticationError(err error) bool {
	return hasType(err, ErrTypeAuthentication)
}

// IsConfigurationError checks if an error is a configuration error
func IsConfigurationError(err error) bool {
	var ce *ConfigurationError
	if errors.As(err, &ce) {
		return true
	}
	return hasType(err, ErrTypeConfiguration)
}

// IsValidationError checks if an error is a validation error
func IsValidationError(err error) bool {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return true
	}
	return hasType(err, ErrTypeValidation)
}

func hasType(err error, errType ErrorType) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Type == errType
}
