package vectorstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/pgvector/pgvector-go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/TranKhoaa/AITChatbot/internal/models"
)

// PGStore answers similarity queries against the chunks table using the
// pgvector distance operators and its ANN indexes.
type PGStore struct {
	db *gorm.DB
}

// NewPGStore creates the store and applies the session-level index knobs:
// ef_search for the HNSW index and probes for the IVFFlat alternative. Both
// are set once up front, not per query.
func NewPGStore(db *gorm.DB, efSearch, probes int) (*PGStore, error) {
	if efSearch > 0 {
		if err := db.Exec(fmt.Sprintf("SET hnsw.ef_search = %d", efSearch)).Error; err != nil {
			return nil, fmt.Errorf("failed to set hnsw.ef_search: %w", err)
		}
	}
	if probes > 0 {
		if err := db.Exec(fmt.Sprintf("SET ivfflat.probes = %d", probes)).Error; err != nil {
			return nil, fmt.Errorf("failed to set ivfflat.probes: %w", err)
		}
	}
	logrus.Infof("Vector store tuned: hnsw.ef_search=%d ivfflat.probes=%d", efSearch, probes)
	return &PGStore{db: db}, nil
}

func operatorFor(m Metric) string {
	if m == MetricL2 {
		return "<->"
	}
	return "<=>"
}

// Search returns the chunks nearest to the query vector, best-first.
func (s *PGStore) Search(ctx context.Context, vector []float32, opts Options) ([]models.Chunk, error) {
	if opts.Limit <= 0 {
		return nil, ErrBadLimit
	}

	v := pgvector.NewVector(vector)
	op := operatorFor(opts.metric())

	q := s.db.WithContext(ctx).Model(&models.Chunk{})
	if len(opts.FileIDs) > 0 {
		q = q.Where("file_id IN ?", opts.FileIDs)
	}
	if opts.metric() == MetricCosine && opts.SimilarityThreshold != nil {
		// cosine_distance = 1 - cosine_similarity
		q = q.Where("vector <=> ? <= ?", v, 1-*opts.SimilarityThreshold)
	}
	if opts.metric() == MetricL2 && opts.MaxDistance != nil {
		q = q.Where("vector <-> ? <= ?", v, *opts.MaxDistance)
	}

	var chunks []models.Chunk
	err := q.Clauses(clause.OrderBy{Expression: clause.Expr{
		SQL:  "vector " + op + " ?, created_at, id",
		Vars: []interface{}{v},
	}}).Limit(opts.Limit).Find(&chunks).Error
	if err != nil {
		return nil, fmt.Errorf("vector search failed: %w", err)
	}
	return chunks, nil
}

type scoredRow struct {
	models.Chunk `gorm:"embedded"`
	Score        float64 `gorm:"column:score"`
}

// SearchWithScores is the scored variant: cosine score is 1 - distance, L2
// score is the negated distance, so higher is better in both modes.
func (s *PGStore) SearchWithScores(ctx context.Context, vector []float32, opts Options) ([]ScoredChunk, error) {
	if opts.Limit <= 0 {
		return nil, ErrBadLimit
	}

	v := pgvector.NewVector(vector)
	metric := opts.metric()
	op := operatorFor(metric)

	scoreExpr := "1 - (vector <=> ?)"
	if metric == MetricL2 {
		scoreExpr = "-(vector <-> ?)"
	}

	var sb strings.Builder
	args := []interface{}{v}
	sb.WriteString("SELECT chunks.*, " + scoreExpr + " AS score FROM chunks")

	var conds []string
	if len(opts.FileIDs) > 0 {
		conds = append(conds, "file_id IN ?")
		args = append(args, opts.FileIDs)
	}
	if metric == MetricCosine && opts.SimilarityThreshold != nil {
		conds = append(conds, "vector <=> ? <= ?")
		args = append(args, v, 1-*opts.SimilarityThreshold)
	}
	if metric == MetricL2 && opts.MaxDistance != nil {
		conds = append(conds, "vector <-> ? <= ?")
		args = append(args, v, *opts.MaxDistance)
	}
	if len(conds) > 0 {
		sb.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}

	sb.WriteString(" ORDER BY vector " + op + " ?, created_at, id LIMIT ?")
	args = append(args, v, opts.Limit)

	var rows []scoredRow
	if err := s.db.WithContext(ctx).Raw(sb.String(), args...).Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("scored vector search failed: %w", err)
	}

	results := make([]ScoredChunk, len(rows))
	for i, row := range rows {
		results[i] = ScoredChunk{Chunk: row.Chunk, Score: row.Score}
	}
	return results, nil
}
