package repository

import (
	"errors"

	"gorm.io/gorm"

	"github.com/TranKhoaa/AITChatbot/internal/models"
)

type FileRepository struct {
	db *gorm.DB
}

func NewFileRepository(db *gorm.DB) *FileRepository {
	return &FileRepository{db: db}
}

// GetByID retrieves a file by ID, deleted or not. Returns (nil, nil) when no
// row matches.
func (r *FileRepository) GetByID(id string) (*models.File, error) {
	var file models.File
	err := r.db.First(&file, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// GetByHash retrieves a file by content hash, including soft-deleted rows.
// The caller decides between "exists" and "restored" based on the Deleted
// flag. Returns (nil, nil) when no row matches.
func (r *FileRepository) GetByHash(hash string) (*models.File, error) {
	var file models.File
	err := r.db.First(&file, "hash = ?", hash).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &file, nil
}

// NameTaken reports whether a non-deleted file already uses the display name.
func (r *FileRepository) NameTaken(name string) (bool, error) {
	var count int64
	err := r.db.Model(&models.File{}).
		Where("name = ? AND deleted = false", name).
		Count(&count).Error
	return count > 0, err
}

// LinkExists reports whether any file row already claims the storage path.
func (r *FileRepository) LinkExists(link string) (bool, error) {
	var count int64
	err := r.db.Model(&models.File{}).Where("link = ?", link).Count(&count).Error
	return count > 0, err
}

// Restore un-deletes a soft-deleted file and reassigns ownership. The stored
// chunks are retained, so no re-extraction happens.
func (r *FileRepository) Restore(file *models.File, uploadedBy string) error {
	return r.db.Model(file).Updates(map[string]interface{}{
		"deleted":     false,
		"uploaded_by": uploadedBy,
	}).Error
}

// SoftDelete marks a file as deleted without touching its bytes or chunks.
func (r *FileRepository) SoftDelete(id string) error {
	result := r.db.Model(&models.File{}).Where("id = ?", id).Update("deleted", true)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListActive retrieves all non-deleted files ordered by display name.
func (r *FileRepository) ListActive() ([]*models.File, error) {
	var files []*models.File
	err := r.db.Where("deleted = false").Order("name ASC").Find(&files).Error
	return files, err
}
