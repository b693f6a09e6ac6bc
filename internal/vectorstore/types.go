package vectorstore

import (
	"sync"

	"github.com/yildizm/vidsynth/internal/common"
	"github.com/yildizm/vidsynth/internal/logger"
)

// DefaultConcurrency is the number of segments embedded in parallel
const DefaultConcurrency = 4

// BuildOptions configures index construction
type BuildOptions struct {
	Concurrency      int
	NormalizeVectors bool
	Logger           *logger.Logger
}

// BuildOption is a function type for configuring Build
type BuildOption func(*BuildOptions)

// WithConcurrency sets how many segments are embedded at once
func WithConcurrency(n int) BuildOption {
	return func(opts *BuildOptions) {
		opts.Concurrency = n
	}
}

// WithNormalization stores unit-length vectors
func WithNormalization() BuildOption {
	return func(opts *BuildOptions) {
		opts.NormalizeVectors = true
	}
}

// WithLogger attaches a logger for build diagnostics
func WithLogger(l *logger.Logger) BuildOption {
	return func(opts *BuildOptions) {
		opts.Logger = l
	}
}

// entry pairs a segment with its embedding
type entry struct {
	segment common.Segment
	vector  []float32
}

// Index is an immutable collection of embedded segments searchable by
// cosine similarity. It keeps the embedder it was built with so that
// queries land in the same embedding space.
type Index struct {
	entries    []entry
	dimension  int
	embedder   Embedder
	normalized bool
}

// TFIDFVectorizer is a local embedder based on TF-IDF term weights
type TFIDFVectorizer struct {
	mu            sync.RWMutex
	dimensions    int
	vocabulary    map[string]int
	idf           []float32
	documentCount int
	fitted        bool
	minWordLength int
	maxWordLength int
	stopWords     map[string]bool
}
