package vectorstore

import (
	"context"

	"github.com/yildizm/vidsynth/internal/common"
)

// Embedder maps text to a fixed-length vector. Implementations must be
// stable: the same text yields the same vector for the lifetime of an index.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Fitter is implemented by embedders that learn from the corpus they will
// index. Fit returns a new embedder ready to embed both the corpus and
// later queries; the receiver is left untouched.
type Fitter interface {
	Fit(corpus []string) (Embedder, error)
}

// Dimensioner is implemented by embedders with a known output size
type Dimensioner interface {
	Dimension() int
}

// SearchResult is a segment ranked by similarity to a query
type SearchResult struct {
	Segment common.Segment `json:"segment"`
	Score   float32        `json:"score"`
}
