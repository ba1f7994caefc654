package ingest

import (
	"github.com/TranKhoaa/AITChatbot/internal/models"
)

// Store is the persistence surface the pipeline needs. The production
// implementation wraps gorm (internal/database/repository); tests substitute
// an in-memory fake.
type Store interface {
	// FindByHash looks a file up by content hash among deleted and
	// non-deleted rows. Returns (nil, nil) when absent.
	FindByHash(hash string) (*models.File, error)
	// FindByID looks a file up by id. Returns (nil, nil) when absent.
	FindByID(id string) (*models.File, error)
	// NameTaken reports whether a non-deleted file uses the display name.
	NameTaken(name string) (bool, error)
	// LinkExists reports whether any row claims the storage path.
	LinkExists(link string) (bool, error)
	// Restore un-deletes a file and reassigns ownership.
	Restore(file *models.File, uploadedBy string) error
	// Begin opens the per-file transaction.
	Begin() (Tx, error)
}

// Tx is one file's persistence transaction: the File row and its Chunk rows
// commit or roll back as a single unit.
type Tx interface {
	// CreateFile inserts the metadata row and fills in its generated id.
	// A unique-constraint violation on the hash surfaces as
	// gorm.ErrDuplicatedKey so the caller can resolve the dedup race.
	CreateFile(file *models.File) error
	// SaveFile persists in-place metadata updates (retrain).
	SaveFile(file *models.File) error
	// CreateChunks inserts chunk rows preserving slice order.
	CreateChunks(chunks []models.Chunk) error
	// DeleteChunks removes all chunks of a file (retrain replace).
	DeleteChunks(fileID string) error
	Commit() error
	Rollback() error
}
