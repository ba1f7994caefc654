package embedding

import (
	"context"
)

// Embedder maps text to a fixed-dimension dense vector. Implementations must
// be safe for concurrent use: one shared instance is created at startup and
// injected into every ingestion worker and the query path.
type Embedder interface {
	// Embed returns the embedding for a stored chunk of text.
	Embed(ctx context.Context, text string) ([]float32, error)
	// EmbedQuery returns the embedding for an incoming query, using the same
	// model so queries and chunks are comparable.
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	// Dimension is the length of every vector this embedder produces.
	Dimension() int
}
