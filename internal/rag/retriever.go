package rag

import (
	"context"
	"time"

	"github.com/yildizm/vidsynth/internal/common"
	"github.com/yildizm/vidsynth/internal/logger"
	"github.com/yildizm/vidsynth/internal/vectorstore"
)

// DefaultTopK is the number of segments retrieved per question
const DefaultTopK = 4

// Retriever selects the transcript segments most relevant to a question
type Retriever struct {
	topK   int
	logger *logger.Logger
}

// NewRetriever creates a retriever. A topK below 1 falls back to DefaultTopK.
func NewRetriever(topK int, log *logger.Logger) *Retriever {
	if topK < 1 {
		topK = DefaultTopK
	}
	return &Retriever{topK: topK, logger: log}
}

// TopK returns the default number of results
func (r *Retriever) TopK() int {
	if r == nil || r.topK < 1 {
		return DefaultTopK
	}
	return r.topK
}

// Retrieve returns up to k segments ranked by similarity to the question.
// k <= 0 uses the retriever default. Embedding errors are returned unchanged.
func (r *Retriever) Retrieve(ctx context.Context, idx *vectorstore.Index, question string, k int) ([]vectorstore.SearchResult, error) {
	if idx == nil {
		return nil, common.ErrSessionNotReady
	}
	if k <= 0 {
		k = r.TopK()
	}

	start := time.Now()
	results, err := idx.Search(ctx, question, k)
	if err != nil {
		return nil, err
	}

	var log *logger.Logger
	if r != nil {
		log = r.logger
	}
	log.DebugWithFields("retrieved segments", []logger.Field{
		logger.Count(len(results)),
		logger.F("k", k),
		logger.Duration(time.Since(start)),
	})
	return results, nil
}
