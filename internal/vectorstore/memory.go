package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"

	"github.com/TranKhoaa/AITChatbot/internal/models"
)

// MemoryStore is an in-memory Store with the same ranking, threshold and
// tie-break semantics as PGStore. It backs tests and small offline runs.
type MemoryStore struct {
	mu     sync.RWMutex
	chunks []models.Chunk
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Add appends chunks; insertion order is the tie-break order for searches.
func (s *MemoryStore) Add(chunks ...models.Chunk) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.chunks = append(s.chunks, chunks...)
}

// DeleteByFileID removes all chunks belonging to a file.
func (s *MemoryStore) DeleteByFileID(fileID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.chunks[:0]
	for _, c := range s.chunks {
		if c.FileID != fileID {
			kept = append(kept, c)
		}
	}
	s.chunks = kept
}

// Len returns the number of stored chunks.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.chunks)
}

// Search returns the chunks nearest to the query vector, best-first.
func (s *MemoryStore) Search(ctx context.Context, vector []float32, opts Options) ([]models.Chunk, error) {
	scored, err := s.SearchWithScores(ctx, vector, opts)
	if err != nil {
		return nil, err
	}
	chunks := make([]models.Chunk, len(scored))
	for i, sc := range scored {
		chunks[i] = sc.Chunk
	}
	return chunks, nil
}

// SearchWithScores ranks all stored chunks, applies the threshold and limit,
// and returns (chunk, score) pairs with "higher is better" scores.
func (s *MemoryStore) SearchWithScores(_ context.Context, vector []float32, opts Options) ([]ScoredChunk, error) {
	if opts.Limit <= 0 {
		return nil, ErrBadLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	metric := opts.metric()
	allowed := map[string]bool{}
	for _, id := range opts.FileIDs {
		allowed[id] = true
	}

	type ranked struct {
		chunk    models.Chunk
		distance float64
		order    int
	}

	var candidates []ranked
	for i, chunk := range s.chunks {
		if len(opts.FileIDs) > 0 && !allowed[chunk.FileID] {
			continue
		}

		var distance float64
		if metric == MetricL2 {
			distance = l2Distance(vector, chunk.Vector.Slice())
			if opts.MaxDistance != nil && distance > *opts.MaxDistance {
				continue
			}
		} else {
			distance = cosineDistance(vector, chunk.Vector.Slice())
			if opts.SimilarityThreshold != nil && distance > 1-*opts.SimilarityThreshold {
				continue
			}
		}
		candidates = append(candidates, ranked{chunk: chunk, distance: distance, order: i})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].distance != candidates[j].distance {
			return candidates[i].distance < candidates[j].distance
		}
		return candidates[i].order < candidates[j].order
	})

	if len(candidates) > opts.Limit {
		candidates = candidates[:opts.Limit]
	}

	results := make([]ScoredChunk, len(candidates))
	for i, c := range candidates {
		score := 1 - c.distance
		if metric == MetricL2 {
			score = -c.distance
		}
		results[i] = ScoredChunk{Chunk: c.chunk, Score: score}
	}
	return results, nil
}

// cosineDistance is 1 - cosine similarity. Mismatched or zero vectors rank
// last.
func cosineDistance(a, b []float32) float64 {
	if len(a) != len(b) {
		return 2
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 2
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}

func l2Distance(a, b []float32) float64 {
	if len(a) != len(b) {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}
