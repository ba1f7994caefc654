package models

import (
	"time"
)

// File is the content-addressed metadata record for an uploaded document.
// The raw bytes live on disk at Link; the searchable content lives in the
// owned Chunk rows.
type File struct {
	// Primary key
	ID string `json:"id" gorm:"primaryKey;type:uuid;default:gen_random_uuid()"`

	// Display name shown in listings. Duplicates by name are allowed,
	// duplicates by hash are not.
	Name string `json:"name" gorm:"type:varchar(255);not null;index"`

	// Storage path of the persisted bytes on the server.
	Link string `json:"link" gorm:"type:varchar(500);not null"`

	// File extension including the leading dot, e.g. ".pdf".
	Type      string `json:"type" gorm:"type:varchar(16);not null"`
	MediaType string `json:"media_type" gorm:"type:varchar(100)"`

	// SHA-256 digest of the raw bytes, the dedup key.
	Hash string `json:"hash" gorm:"type:varchar(64);not null;uniqueIndex"`

	UploadedBy string `json:"uploaded_by" gorm:"type:uuid;not null;index"`

	// Soft-delete flag. A deleted file keeps its row, bytes and chunks but
	// is excluded from listings and retrieval.
	Deleted bool `json:"deleted" gorm:"not null;default:false"`

	// Timestamps
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relationships
	Chunks []Chunk `json:"-" gorm:"foreignKey:FileID;references:ID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name for the File model
func (File) TableName() string {
	return "files"
}

// FileResponse represents the response for file listing operations
type FileResponse struct {
	ID         string `json:"id" example:"550e8400-e29b-41d4-a716-446655440000"`
	Name       string `json:"name" example:"report.pdf"`
	Type       string `json:"type" example:".pdf"`
	MediaType  string `json:"media_type" example:"application/pdf"`
	UploadedBy string `json:"uploaded_by" example:"550e8400-e29b-41d4-a716-446655440001"`
	ChunkCount int64  `json:"chunk_count" example:"12"`
	CreatedAt  string `json:"created_at" example:"2025-01-21T10:00:00Z"`
	UpdatedAt  string `json:"updated_at" example:"2025-01-21T10:00:00Z"`
}

// ToResponse converts a File model to a FileResponse
func (f *File) ToResponse() FileResponse {
	return FileResponse{
		ID:         f.ID,
		Name:       f.Name,
		Type:       f.Type,
		MediaType:  f.MediaType,
		UploadedBy: f.UploadedBy,
		CreatedAt:  f.CreatedAt.Format(time.RFC3339),
		UpdatedAt:  f.UpdatedAt.Format(time.RFC3339),
	}
}
