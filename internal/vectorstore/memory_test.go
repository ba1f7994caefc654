package vectorstore

import (
	"context"
	"math"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TranKhoaa/AITChatbot/internal/models"
)

func chunk(id, fileID string, vec ...float32) models.Chunk {
	return models.Chunk{
		ID:      id,
		Content: "chunk " + id,
		Vector:  pgvector.NewVector(vec),
		FileID:  fileID,
	}
}

func floatPtr(v float64) *float64 { return &v }

func newPopulatedStore() *MemoryStore {
	s := NewMemoryStore()
	s.Add(
		chunk("c1", "f1", 1, 0, 0), // identical direction to the query below
		chunk("c2", "f1", 1, 1, 0), // 45 degrees off
		chunk("c3", "f2", 0, 1, 0), // orthogonal
		chunk("c4", "f2", -1, 0, 0), // opposite
	)
	return s
}

func TestSearchRanksByCosineDistance(t *testing.T) {
	s := newPopulatedStore()

	chunks, err := s.Search(context.Background(), []float32{1, 0, 0}, Options{Limit: 4})
	require.NoError(t, err)
	require.Len(t, chunks, 4)
	assert.Equal(t, []string{"c1", "c2", "c3", "c4"}, ids(chunks))
}

func TestSearchLimitCapsResults(t *testing.T) {
	s := newPopulatedStore()

	chunks, err := s.Search(context.Background(), []float32{1, 0, 0}, Options{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, ids(chunks))
}

func TestSearchBadLimit(t *testing.T) {
	s := newPopulatedStore()

	_, err := s.Search(context.Background(), []float32{1, 0, 0}, Options{Limit: 0})
	assert.ErrorIs(t, err, ErrBadLimit)
	_, err = s.SearchWithScores(context.Background(), []float32{1, 0, 0}, Options{Limit: -1})
	assert.ErrorIs(t, err, ErrBadLimit)
}

func TestSearchSimilarityThresholdFilters(t *testing.T) {
	s := newPopulatedStore()

	// threshold 0.5 keeps cosine distance <= 0.5: c1 (0) and c2 (~0.29)
	chunks, err := s.Search(context.Background(), []float32{1, 0, 0}, Options{
		Limit:               10,
		SimilarityThreshold: floatPtr(0.5),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c1", "c2"}, ids(chunks))
}

func TestSearchThresholdMonotonicity(t *testing.T) {
	s := newPopulatedStore()
	query := []float32{1, 0, 0}

	var prev int = math.MaxInt
	for _, threshold := range []float64{0.0, 0.3, 0.6, 0.9, 1.0} {
		chunks, err := s.Search(context.Background(), query, Options{
			Limit:               10,
			SimilarityThreshold: floatPtr(threshold),
		})
		require.NoError(t, err)
		assert.LessOrEqual(t, len(chunks), prev, "threshold %v widened the result set", threshold)
		prev = len(chunks)
	}
}

func TestSearchWithScoresCosine(t *testing.T) {
	s := newPopulatedStore()

	scored, err := s.SearchWithScores(context.Background(), []float32{1, 0, 0}, Options{Limit: 4})
	require.NoError(t, err)
	require.Len(t, scored, 4)

	// Scores are 1 - cosine distance, descending.
	assert.InDelta(t, 1.0, scored[0].Score, 1e-9)
	for i := 1; i < len(scored); i++ {
		assert.GreaterOrEqual(t, scored[i-1].Score, scored[i].Score)
	}
	assert.InDelta(t, -1.0, scored[3].Score, 1e-9) // opposite vector
}

func TestSearchL2Metric(t *testing.T) {
	s := NewMemoryStore()
	s.Add(
		chunk("near", "f1", 0, 0, 0),
		chunk("mid", "f1", 3, 0, 0),
		chunk("far", "f1", 10, 0, 0),
	)

	scored, err := s.SearchWithScores(context.Background(), []float32{0, 0, 0}, Options{
		Limit:  3,
		Metric: MetricL2,
	})
	require.NoError(t, err)
	require.Len(t, scored, 3)
	assert.Equal(t, "near", scored[0].Chunk.ID)
	assert.Equal(t, "far", scored[2].Chunk.ID)

	// L2 scores are negated distances.
	assert.InDelta(t, 0.0, scored[0].Score, 1e-9)
	assert.InDelta(t, -3.0, scored[1].Score, 1e-9)
	assert.InDelta(t, -10.0, scored[2].Score, 1e-9)
}

func TestSearchL2MaxDistance(t *testing.T) {
	s := NewMemoryStore()
	s.Add(
		chunk("near", "f1", 0, 0, 0),
		chunk("mid", "f1", 3, 0, 0),
		chunk("far", "f1", 10, 0, 0),
	)

	chunks, err := s.Search(context.Background(), []float32{0, 0, 0}, Options{
		Limit:       10,
		Metric:      MetricL2,
		MaxDistance: floatPtr(5),
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"near", "mid"}, ids(chunks))
}

func TestSearchFileIDsFilter(t *testing.T) {
	s := newPopulatedStore()

	chunks, err := s.Search(context.Background(), []float32{1, 0, 0}, Options{
		Limit:   10,
		FileIDs: []string{"f2"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"c3", "c4"}, ids(chunks))

	// Unknown file id means an empty candidate set, not an error.
	chunks, err = s.Search(context.Background(), []float32{1, 0, 0}, Options{
		Limit:   10,
		FileIDs: []string{"nope"},
	})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSearchTieBreakIsInsertionOrder(t *testing.T) {
	s := NewMemoryStore()
	// Same direction, same cosine distance to the query.
	s.Add(
		chunk("first", "f1", 2, 0, 0),
		chunk("second", "f1", 4, 0, 0),
		chunk("third", "f1", 1, 0, 0),
	)

	chunks, err := s.Search(context.Background(), []float32{1, 0, 0}, Options{Limit: 3})
	require.NoError(t, err)
	assert.Equal(t, []string{"first", "second", "third"}, ids(chunks))
}

func TestSearchZeroQueryVectorRanksNothingHigh(t *testing.T) {
	s := newPopulatedStore()

	// A zero query has no direction; all cosine distances saturate and a
	// strict threshold excludes everything.
	chunks, err := s.Search(context.Background(), []float32{0, 0, 0}, Options{
		Limit:               10,
		SimilarityThreshold: floatPtr(0.1),
	})
	require.NoError(t, err)
	assert.Empty(t, chunks)
}

func TestSearchDimensionMismatchRanksLast(t *testing.T) {
	s := NewMemoryStore()
	s.Add(
		chunk("good", "f1", 1, 0, 0),
		chunk("short", "f1", 1, 0),
	)

	chunks, err := s.Search(context.Background(), []float32{1, 0, 0}, Options{Limit: 2})
	require.NoError(t, err)
	require.Len(t, chunks, 2)
	assert.Equal(t, "good", chunks[0].ID)
}

func TestDeleteByFileID(t *testing.T) {
	s := newPopulatedStore()
	require.Equal(t, 4, s.Len())

	s.DeleteByFileID("f1")
	assert.Equal(t, 2, s.Len())

	chunks, err := s.Search(context.Background(), []float32{1, 0, 0}, Options{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, []string{"c3", "c4"}, ids(chunks))
}

func ids(chunks []models.Chunk) []string {
	out := make([]string, len(chunks))
	for i, c := range chunks {
		out[i] = c.ID
	}
	return out
}
