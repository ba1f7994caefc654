package models

import (
	"time"

	"github.com/pgvector/pgvector-go"
)

// EmbeddingDim is the dimensionality of the stored embedding vectors. It has
// to match the embedding model's output size and the vector column below;
// changing it requires a re-embed of every chunk.
const EmbeddingDim = 768

// Chunk is a bounded span of extracted text (or one serialized spreadsheet
// row) with its embedding vector. A File exclusively owns its chunks; they
// are replaced wholesale on retrain.
type Chunk struct {
	// Primary key
	ID string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`

	Content string          `json:"content" gorm:"type:text;not null"`
	Vector  pgvector.Vector `json:"-" gorm:"type:vector(768);not null"`

	FileID string `json:"file_id" gorm:"type:uuid;not null;index"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName specifies the table name for the Chunk model
func (Chunk) TableName() string {
	return "chunks"
}
