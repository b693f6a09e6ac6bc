package vectorstore

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/yildizm/vidsynth/internal/common"
	"github.com/yildizm/vidsynth/internal/logger"
)

// cancelCheckInterval is how many entries are scored between context checks
const cancelCheckInterval = 128

// Build embeds every segment and returns a ready index. Embedding runs in
// parallel but the index is only returned once every segment succeeded;
// any failure yields a nil index and an *common.EmbeddingError.
func Build(ctx context.Context, segments []common.Segment, embedder Embedder, opts ...BuildOption) (*Index, error) {
	options := BuildOptions{Concurrency: DefaultConcurrency}
	for _, opt := range opts {
		opt(&options)
	}
	if options.Concurrency < 1 {
		options.Concurrency = DefaultConcurrency
	}

	if embedder == nil {
		return nil, common.NewConfigError("embedder", "must not be nil")
	}

	start := time.Now()

	if fitter, ok := embedder.(Fitter); ok && len(segments) > 0 {
		corpus := make([]string, len(segments))
		for i, seg := range segments {
			corpus[i] = seg.Text
		}
		fitted, err := fitter.Fit(corpus)
		if err != nil {
			return nil, common.NewBuildEmbeddingError(-1, fmt.Errorf("fit embedder: %w", err))
		}
		embedder = fitted
	}

	vectors := make([][]float32, len(segments))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(options.Concurrency)
	for i, seg := range segments {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return common.NewBuildEmbeddingError(i, err)
			}
			vector, err := embedder.Embed(gctx, seg.Text)
			if err != nil {
				return common.NewBuildEmbeddingError(i, err)
			}
			if len(vector) == 0 {
				return common.NewBuildEmbeddingError(i, errors.New("embedder returned an empty vector"))
			}
			vectors[i] = vector
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		options.Logger.WarnWithFields("index build failed", []logger.Field{logger.Count(len(segments)), logger.Error(err)})
		return nil, err
	}

	idx := &Index{
		entries:    make([]entry, len(segments)),
		embedder:   embedder,
		normalized: options.NormalizeVectors,
	}
	for i, seg := range segments {
		vector := vectors[i]
		if i == 0 {
			idx.dimension = len(vector)
		} else if len(vector) != idx.dimension {
			return nil, common.NewBuildEmbeddingError(i,
				fmt.Errorf("vector dimension %d does not match %d", len(vector), idx.dimension))
		}
		if options.NormalizeVectors {
			vector = NormalizeVector(vector)
		}
		idx.entries[i] = entry{segment: seg, vector: vector}
	}

	options.Logger.InfoWithFields("index built", []logger.Field{
		logger.Count(len(segments)),
		logger.F("dimension", idx.dimension),
		logger.Duration(time.Since(start)),
	})

	return idx, nil
}

// Search embeds the query with the index's embedder and returns the k most
// similar segments. Fewer than k entries yields all of them.
func (idx *Index) Search(ctx context.Context, query string, k int) ([]SearchResult, error) {
	if err := validateK(k); err != nil {
		return nil, err
	}
	if len(idx.entries) == 0 {
		return []SearchResult{}, nil
	}

	vector, err := idx.embedder.Embed(ctx, query)
	if err != nil {
		return nil, common.NewQueryEmbeddingError(err)
	}

	return idx.SearchVector(ctx, vector, k)
}

// SearchVector ranks entries against an already embedded query. Results are
// ordered by descending cosine similarity; equal scores keep segment order.
func (idx *Index) SearchVector(ctx context.Context, vector []float32, k int) ([]SearchResult, error) {
	if err := validateK(k); err != nil {
		return nil, err
	}
	if len(idx.entries) == 0 {
		return []SearchResult{}, nil
	}
	if len(vector) != idx.dimension {
		return nil, common.NewQueryEmbeddingError(
			fmt.Errorf("query dimension %d does not match index dimension %d", len(vector), idx.dimension))
	}

	if idx.normalized {
		vector = NormalizeVector(vector)
	}

	results := make([]SearchResult, len(idx.entries))
	for i, e := range idx.entries {
		if i%cancelCheckInterval == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		results[i] = SearchResult{
			Segment: e.segment,
			Score:   CosineSimilarity(vector, e.vector),
		}
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if k > len(results) {
		k = len(results)
	}
	return results[:k], nil
}

// Size returns the number of indexed segments
func (idx *Index) Size() int {
	if idx == nil {
		return 0
	}
	return len(idx.entries)
}

// Dimension returns the vector dimensionality, zero for an empty index
func (idx *Index) Dimension() int {
	return idx.dimension
}

// Segments returns the indexed segments in chunk order
func (idx *Index) Segments() []common.Segment {
	segments := make([]common.Segment, len(idx.entries))
	for i, e := range idx.entries {
		segments[i] = e.segment
	}
	return segments
}

// Embedder returns the embedder queries are embedded with
func (idx *Index) Embedder() Embedder {
	return idx.embedder
}

func validateK(k int) error {
	if k < 1 {
		return common.NewConfigError("k", fmt.Sprintf("must be at least 1, got %d", k))
	}
	return nil
}
