// Package query embeds search queries and post-processes nearest-neighbor
// matches into API results.
package query

import (
	"context"
	"fmt"
	"math"
	"time"

	api "github.com/traingrc/textweaver/internal/api/search"
	"github.com/traingrc/textweaver/internal/db"
	"github.com/traingrc/textweaver/internal/llm"
	"github.com/traingrc/textweaver/internal/models"
)

// DefaultTopK is the result count used when the request does not specify one.
const DefaultTopK = 5

// Engine runs the search path: instruction-prefixed query embedding, a
// namespace-scoped top-k lookup, and metric-aware score normalization.
type Engine struct {
	Embedder    llm.Embedder
	Index       db.Index
	Instruction string
	Metric      db.Metric
	Timeout     time.Duration
}

// NewEngine wires the engine. The instruction string must be the one used at
// ingestion time or the embedding spaces will not be comparable.
func NewEngine(embedder llm.Embedder, index db.Index, instruction string, metric db.Metric) *Engine {
	return &Engine{
		Embedder:    embedder,
		Index:       index,
		Instruction: instruction,
		Metric:      metric,
		Timeout:     30 * time.Second,
	}
}

// Search returns the topK nearest chunks in the given namespace ("" for the
// shared corpus). Collaborator failures come back wrapped; callers surface
// them as structured error responses rather than crashing the request.
func (e *Engine) Search(ctx context.Context, query string, topK int, namespace string) ([]api.SearchResult, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}
	if e.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.Timeout)
		defer cancel()
	}

	vector, err := e.Embedder.Encode(ctx, llm.Prefixed(e.Instruction, query))
	if err != nil {
		return nil, fmt.Errorf("could not embed query: %w", err)
	}

	matches, err := e.Index.Query(ctx, namespace, vector, topK)
	if err != nil {
		return nil, fmt.Errorf("could not search index: %w", err)
	}

	results := make([]api.SearchResult, 0, len(matches))
	for _, match := range matches {
		results = append(results, e.toResult(match))
	}
	return results, nil
}

// toResult converts raw distance into a similarity score and drops metadata
// fields holding the storage-side "unknown" sentinel.
func (e *Engine) toResult(match models.Match) api.SearchResult {
	return api.SearchResult{
		Title:           presentOrEmpty(match.Metadata, models.MetaTitle),
		Filename:        presentOrEmpty(match.Metadata, models.MetaFilename),
		URL:             presentOrEmpty(match.Metadata, models.MetaURL),
		PublicationDate: presentOrEmpty(match.Metadata, models.MetaPublicationDate),
		Tags:            presentOrEmpty(match.Metadata, models.MetaTags),
		Author:          presentOrEmpty(match.Metadata, models.MetaAuthor),
		EmbeddingText:   presentOrEmpty(match.Metadata, models.MetaText),
		SimilarityScore: round2(Score(e.Metric, match.Distance)),
	}
}

// Score converts a raw metric distance into the exposed similarity value:
// cosine distance becomes 1 - distance, inner product is exposed as its
// absolute value, and euclidean distance passes through (lower = closer).
func Score(metric db.Metric, distance float64) float64 {
	switch metric {
	case db.MetricCosine:
		return 1 - distance
	case db.MetricInnerProduct:
		return math.Abs(distance)
	default:
		return distance
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func presentOrEmpty(metadata map[string]string, key string) string {
	v := metadata[key]
	if v == models.MetaUnknown {
		return ""
	}
	return v
}
