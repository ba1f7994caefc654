package vectorstore

import (
	"context"
	"errors"

	"github.com/TranKhoaa/AITChatbot/internal/models"
)

// Metric selects the distance function used for ranking.
type Metric string

const (
	// MetricCosine ranks by ascending cosine distance.
	MetricCosine Metric = "cosine"
	// MetricL2 ranks by ascending Euclidean distance.
	MetricL2 Metric = "l2"
)

// ErrBadLimit is returned when a search is issued with a non-positive limit.
var ErrBadLimit = errors.New("search limit must be positive")

// Options controls a similarity search.
type Options struct {
	// Limit caps the result count. Required.
	Limit int

	// Metric selects the ranking distance; defaults to cosine.
	Metric Metric

	// SimilarityThreshold (cosine only, 0-1, higher = stricter) excludes
	// chunks whose cosine distance exceeds 1 - threshold.
	SimilarityThreshold *float64

	// MaxDistance (L2 only) excludes chunks beyond the given distance.
	MaxDistance *float64

	// FileIDs restricts the candidate set to the given owning files.
	// Soft-deleted files must be excluded upstream; retrieval itself is
	// file-agnostic about deletion.
	FileIDs []string
}

// ScoredChunk pairs a chunk with a "higher is better" similarity score:
// 1 - distance for cosine, negated distance for L2.
type ScoredChunk struct {
	Chunk models.Chunk
	Score float64
}

// Store serves nearest-neighbor queries over persisted chunks, ordered
// best-first with ties broken by insertion order.
type Store interface {
	Search(ctx context.Context, vector []float32, opts Options) ([]models.Chunk, error)
	SearchWithScores(ctx context.Context, vector []float32, opts Options) ([]ScoredChunk, error)
}

func (o *Options) metric() Metric {
	if o.Metric == "" {
		return MetricCosine
	}
	return o.Metric
}
