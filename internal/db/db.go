// Package db implements the vector index behind ingestion and search.
package db

import (
	"context"
	"fmt"

	"github.com/traingrc/textweaver/internal/models"
)

// Metric selects the distance function used for nearest-neighbor ranking.
// The raw distance semantics follow the pgvector operators: euclidean is L2
// distance, cosine is cosine distance (1 - similarity), inner_product is the
// negated inner product. Both index backends produce identical values.
type Metric string

const (
	MetricEuclidean    Metric = "euclidean"
	MetricCosine       Metric = "cosine"
	MetricInnerProduct Metric = "inner_product"
)

// ParseMetric converts a config value into a Metric, defaulting to euclidean
// for an empty string.
func ParseMetric(s string) (Metric, error) {
	switch Metric(s) {
	case MetricEuclidean, MetricCosine, MetricInnerProduct:
		return Metric(s), nil
	case "":
		return MetricEuclidean, nil
	}
	return "", fmt.Errorf("invalid search metric: %q", s)
}

// Index is the vector store consumed by the ingestion pipeline and the query
// engine. The empty namespace is the shared corpus; a record upserted under
// namespace N is visible only to queries scoped to N.
type Index interface {
	// Upsert writes the batch atomically: either every record persists or
	// none does. Callers must not assume partial persistence on error.
	Upsert(ctx context.Context, namespace string, records []models.Record) error
	// Query returns the topK nearest matches with raw metric distances.
	Query(ctx context.Context, namespace string, vector []float32, topK int) ([]models.Match, error)
	Close() error
}

// TokenStore resolves bearer tokens for the authorizer. Both index backends
// carry the access_tokens table alongside the records table.
type TokenStore interface {
	GetAccessToken(ctx context.Context, token string) (models.AccessToken, error)
}
