package repository

import (
	"gorm.io/gorm"

	"github.com/TranKhoaa/AITChatbot/internal/models"
)

type ChunkRepository struct {
	db *gorm.DB
}

func NewChunkRepository(db *gorm.DB) *ChunkRepository {
	return &ChunkRepository{db: db}
}

// CreateInBatches inserts chunks in batches to keep statement size bounded.
func (r *ChunkRepository) CreateInBatches(chunks []models.Chunk) error {
	return r.db.CreateInBatches(chunks, 100).Error
}

// CountByFileID returns the number of chunks stored for a file.
func (r *ChunkRepository) CountByFileID(fileID string) (int64, error) {
	var count int64
	err := r.db.Model(&models.Chunk{}).Where("file_id = ?", fileID).Count(&count).Error
	return count, err
}

// DeleteByFileID removes all chunks belonging to a file.
func (r *ChunkRepository) DeleteByFileID(fileID string) error {
	return r.db.Delete(&models.Chunk{}, "file_id = ?", fileID).Error
}
