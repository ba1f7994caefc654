package repository

import (
	"gorm.io/gorm"

	"github.com/TranKhoaa/AITChatbot/internal/models"
	"github.com/TranKhoaa/AITChatbot/internal/services/ingest"
)

// IngestStore adapts gorm to the ingestion pipeline's persistence surface.
// Lookups run outside any transaction; the per-file File+Chunks writes go
// through one transaction obtained from Begin.
type IngestStore struct {
	files *FileRepository
	db    *gorm.DB
}

func NewIngestStore(db *gorm.DB) *IngestStore {
	return &IngestStore{files: NewFileRepository(db), db: db}
}

func (s *IngestStore) FindByHash(hash string) (*models.File, error) {
	return s.files.GetByHash(hash)
}

func (s *IngestStore) FindByID(id string) (*models.File, error) {
	return s.files.GetByID(id)
}

func (s *IngestStore) NameTaken(name string) (bool, error) {
	return s.files.NameTaken(name)
}

func (s *IngestStore) LinkExists(link string) (bool, error) {
	return s.files.LinkExists(link)
}

func (s *IngestStore) Restore(file *models.File, uploadedBy string) error {
	return s.files.Restore(file, uploadedBy)
}

func (s *IngestStore) Begin() (ingest.Tx, error) {
	tx := s.db.Begin()
	if tx.Error != nil {
		return nil, tx.Error
	}
	return &ingestTx{tx: tx, chunks: NewChunkRepository(tx)}, nil
}

type ingestTx struct {
	tx     *gorm.DB
	chunks *ChunkRepository
}

func (t *ingestTx) CreateFile(file *models.File) error {
	return t.tx.Create(file).Error
}

func (t *ingestTx) SaveFile(file *models.File) error {
	return t.tx.Save(file).Error
}

func (t *ingestTx) CreateChunks(chunks []models.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	return t.chunks.CreateInBatches(chunks)
}

func (t *ingestTx) DeleteChunks(fileID string) error {
	return t.chunks.DeleteByFileID(fileID)
}

func (t *ingestTx) Commit() error {
	return t.tx.Commit().Error
}

func (t *ingestTx) Rollback() error {
	return t.tx.Rollback().Error
}
