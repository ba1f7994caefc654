package services

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"gorm.io/gorm"

	"github.com/TranKhoaa/AITChatbot/internal/models"
	"github.com/TranKhoaa/AITChatbot/internal/services/extract"
	"github.com/TranKhoaa/AITChatbot/internal/services/ingest"
)

var (
	// ErrFileNotFound is returned for downloads of unknown or deleted files.
	ErrFileNotFound = errors.New("file not found")
	// ErrFileTooLarge is returned when an upload exceeds the size limit.
	ErrFileTooLarge = errors.New("file too large")
)

// FileStore is the slice of the file repository the service reads and
// soft-deletes through.
type FileStore interface {
	ListActive() ([]*models.File, error)
	GetByID(id string) (*models.File, error)
	SoftDelete(id string) error
}

// ChunkCounter reports how many chunks are stored for a file.
type ChunkCounter interface {
	CountByFileID(fileID string) (int64, error)
}

// FileService stages uploads for the ingestion pipeline and serves the
// listing, download and soft-delete collaborators. Chunk rows are only
// counted, never read or written here.
type FileService struct {
	fileRepo    FileStore
	chunkRepo   ChunkCounter
	maxFileSize int64
}

func NewFileService(fileRepo FileStore, chunkRepo ChunkCounter, maxFileSize int64) *FileService {
	return &FileService{fileRepo: fileRepo, chunkRepo: chunkRepo, maxFileSize: maxFileSize}
}

// StageFile reads an uploaded file into a StagedFile: sanitized display
// name, declared extension, media type and content hash. Unsupported
// extensions are rejected here, before any file row is created.
func (s *FileService) StageFile(fileHeader *multipart.FileHeader, adminID string) (ingest.StagedFile, error) {
	name := sanitizeFilename(fileHeader.Filename)
	extension := strings.ToLower(filepath.Ext(name))

	if !extract.Supported(extension) {
		return ingest.StagedFile{}, fmt.Errorf("%w: %s", extract.ErrUnsupportedFormat, extension)
	}
	if s.maxFileSize > 0 && fileHeader.Size > s.maxFileSize {
		return ingest.StagedFile{}, fmt.Errorf("%w: %s (%d bytes)", ErrFileTooLarge, name, fileHeader.Size)
	}

	file, err := fileHeader.Open()
	if err != nil {
		return ingest.StagedFile{}, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return ingest.StagedFile{}, fmt.Errorf("failed to read uploaded file: %w", err)
	}

	mediaType := fileHeader.Header.Get("Content-Type")
	if mediaType == "" {
		mediaType = mime.TypeByExtension(extension)
	}
	if mediaType == "" {
		mediaType = "application/octet-stream"
	}

	digest := sha256.Sum256(data)

	return ingest.StagedFile{
		Name:       name,
		Extension:  extension,
		MediaType:  mediaType,
		Data:       data,
		Hash:       hex.EncodeToString(digest[:]),
		UploadedBy: adminID,
	}, nil
}

// ListFiles returns all non-deleted files ordered by name, each with the
// number of chunks currently indexed for it.
func (s *FileService) ListFiles() ([]models.FileResponse, error) {
	files, err := s.fileRepo.ListActive()
	if err != nil {
		return nil, err
	}

	responses := make([]models.FileResponse, len(files))
	for i, f := range files {
		count, err := s.chunkRepo.CountByFileID(f.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to count chunks for %s: %w", f.ID, err)
		}
		resp := f.ToResponse()
		resp.ChunkCount = count
		responses[i] = resp
	}
	return responses, nil
}

// DownloadFile opens the stored bytes of a non-deleted file.
func (s *FileService) DownloadFile(fileID string) (*models.File, *os.File, error) {
	file, err := s.fileRepo.GetByID(fileID)
	if err != nil {
		return nil, nil, err
	}
	if file == nil || file.Deleted {
		return nil, nil, ErrFileNotFound
	}

	f, err := os.Open(file.Link)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrFileNotFound, fileID)
	}
	return file, f, nil
}

// SoftDeleteFile hides a file from listings and retrieval without erasing
// its row, bytes or chunks.
func (s *FileService) SoftDeleteFile(fileID string) error {
	err := s.fileRepo.SoftDelete(fileID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrFileNotFound
	}
	return err
}

// sanitizeFilename strips any path components and traversal attempts from a
// client-supplied filename, keeping only the base name.
func sanitizeFilename(filename string) string {
	cleaned := strings.ReplaceAll(filename, "..", "")
	cleaned = strings.TrimLeft(filepath.ToSlash(cleaned), "/")
	return filepath.Base(filepath.FromSlash(cleaned))
}
