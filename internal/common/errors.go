package common

import (
	"errors"
	"fmt"
	"strings"
)

// ErrSessionNotReady is returned when a question arrives before a video has
// been indexed for the session
var ErrSessionNotReady = errors.New("session has no video index yet, process a video first")

// Embedding stages
const (
	StageBuild = "build"
	StageQuery = "query"
)

// ConfigError reports invalid chunking or retrieval parameters
type ConfigError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid configuration for '%s': %s", e.Field, e.Message)
}

// NotFoundError reports a video reference that could not be resolved
type NotFoundError struct {
	Reference string `json:"reference"`
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("invalid video reference %q: no video id found", e.Reference)
}

// TranscriptUnavailableError reports missing captions for a video/language pair
type TranscriptUnavailableError struct {
	VideoID  string `json:"video_id"`
	Language string `json:"language"`
	Cause    error  `json:"-"`
}

// Error implements the error interface
func (e *TranscriptUnavailableError) Error() string {
	msg := fmt.Sprintf("no transcript available for video %s in language %q", e.VideoID, e.Language)
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error
func (e *TranscriptUnavailableError) Unwrap() error {
	return e.Cause
}

// EmbeddingError reports an embedding failure while building or querying an index
type EmbeddingError struct {
	Stage   string `json:"stage"`
	Segment int    `json:"segment"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *EmbeddingError) Error() string {
	parts := []string{"embedding failed", "stage=" + e.Stage}
	if e.Stage == StageBuild && e.Segment >= 0 {
		parts = append(parts, fmt.Sprintf("segment=%d", e.Segment))
	}
	if e.Cause != nil {
		parts = append(parts, e.Cause.Error())
	}
	return strings.Join(parts, ": ")
}

// Unwrap returns the underlying error
func (e *EmbeddingError) Unwrap() error {
	return e.Cause
}

// GenerationError reports a language model failure
type GenerationError struct {
	Operation string `json:"operation"`
	Cause     error  `json:"-"`
}

// Error implements the error interface
func (e *GenerationError) Error() string {
	if e.Cause == nil {
		return fmt.Sprintf("generation failed during %s", e.Operation)
	}
	return fmt.Sprintf("generation failed during %s: %v", e.Operation, e.Cause)
}

// Unwrap returns the underlying error
func (e *GenerationError) Unwrap() error {
	return e.Cause
}

// Error constructors

// NewConfigError creates a configuration error
func NewConfigError(field, message string) *ConfigError {
	return &ConfigError{Field: field, Message: message}
}

// NewNotFoundError creates a not found error for a video reference
func NewNotFoundError(reference string) *NotFoundError {
	return &NotFoundError{Reference: reference}
}

// NewTranscriptUnavailableError creates a transcript unavailable error
func NewTranscriptUnavailableError(videoID, language string, cause error) *TranscriptUnavailableError {
	return &TranscriptUnavailableError{VideoID: videoID, Language: language, Cause: cause}
}

// NewBuildEmbeddingError creates an embedding error for a segment during index build
func NewBuildEmbeddingError(segment int, cause error) *EmbeddingError {
	return &EmbeddingError{Stage: StageBuild, Segment: segment, Cause: cause}
}

// NewQueryEmbeddingError creates an embedding error for a query
func NewQueryEmbeddingError(cause error) *EmbeddingError {
	return &EmbeddingError{Stage: StageQuery, Segment: -1, Cause: cause}
}

// NewGenerationError creates a generation error
func NewGenerationError(operation string, cause error) *GenerationError {
	return &GenerationError{Operation: operation, Cause: cause}
}

// IsConfigError checks if an error is a configuration error
func IsConfigError(err error) bool {
	var target *ConfigError
	return errors.As(err, &target)
}

// IsNotFoundError checks if an error is a not found error
func IsNotFoundError(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsTranscriptUnavailableError checks if an error is a transcript unavailable error
func IsTranscriptUnavailableError(err error) bool {
	var target *TranscriptUnavailableError
	return errors.As(err, &target)
}

// IsEmbeddingError checks if an error is an embedding error
func IsEmbeddingError(err error) bool {
	var target *EmbeddingError
	return errors.As(err, &target)
}

// IsGenerationError checks if an error is a generation error
func IsGenerationError(err error) bool {
	var target *GenerationError
	return errors.As(err, &target)
}

// UserMessage turns a pipeline error into a short message suitable for display
func UserMessage(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrSessionNotReady):
		return "Process a video before asking questions."
	case IsNotFoundError(err):
		return "Invalid YouTube URL. Please enter a valid video link."
	case IsTranscriptUnavailableError(err):
		return "Error fetching transcript: " + err.Error()
	case IsConfigError(err):
		return "Configuration problem: " + err.Error()
	case IsEmbeddingError(err):
		return "Could not index or search the transcript: " + err.Error()
	case IsGenerationError(err):
		return "The language model failed to respond: " + err.Error()
	default:
		return err.Error()
	}
}
