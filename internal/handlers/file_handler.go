package handlers

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/TranKhoaa/AITChatbot/internal/services"
	"github.com/TranKhoaa/AITChatbot/internal/services/extract"
	"github.com/TranKhoaa/AITChatbot/internal/services/ingest"
)

type FileHandler struct {
	fileService *services.FileService
	coordinator *ingest.Coordinator
	sseHub      *services.SSEHub
}

func NewFileHandler(fileService *services.FileService, coordinator *ingest.Coordinator, sseHub *services.SSEHub) *FileHandler {
	return &FileHandler{
		fileService: fileService,
		coordinator: coordinator,
		sseHub:      sseHub,
	}
}

// Upload accepts a multipart batch of files and schedules them for
// ingestion. Returns 202 with the batch id; per-file outcomes arrive on
// the events stream.
func (h *FileHandler) Upload(c *gin.Context) {
	adminID := c.MustGet("admin_id").(string)

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form", "details": err.Error()})
		return
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files provided"})
		return
	}

	staged, ok := h.stageAll(c, fileHeaders, adminID)
	if !ok {
		return
	}

	batchID := uuid.New().String()
	if err := h.coordinator.SubmitBatch(c.Request.Context(), batchID, adminID, staged); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule batch", "details": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"batch_id": batchID,
		"count":    len(staged),
	})
}

// Retrain replaces the content of existing files with newly uploaded
// bytes. file_ids must line up one-to-one with the uploaded files.
func (h *FileHandler) Retrain(c *gin.Context) {
	adminID := c.MustGet("admin_id").(string)

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid multipart form", "details": err.Error()})
		return
	}

	fileHeaders := form.File["files"]
	if len(fileHeaders) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No files provided"})
		return
	}
	targetIDs := form.Value["file_ids"]

	staged, ok := h.stageAll(c, fileHeaders, adminID)
	if !ok {
		return
	}

	if err := ingest.AttachRetrainTargets(staged, targetIDs); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	batchID := uuid.New().String()
	if err := h.coordinator.SubmitBatch(c.Request.Context(), batchID, adminID, staged); err != nil {
		var batchErr *ingest.BatchValidationError
		if errors.As(err, &batchErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to schedule batch", "details": err.Error()})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"batch_id": batchID,
		"count":    len(staged),
	})
}

// List returns all active files with their chunk counts
func (h *FileHandler) List(c *gin.Context) {
	files, err := h.fileService.ListFiles()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list files", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, files)
}

// Download streams a stored file back to the client
func (h *FileHandler) Download(c *gin.Context) {
	fileID := c.Param("id")

	file, reader, err := h.fileService.DownloadFile(fileID)
	if err != nil {
		if errors.Is(err, services.ErrFileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to open file", "details": err.Error()})
		return
	}
	defer reader.Close()

	info, err := reader.Stat()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to stat file", "details": err.Error()})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filepath.Base(file.Name)))
	c.DataFromReader(http.StatusOK, info.Size(), file.MediaType, reader, nil)
}

// Delete soft-deletes a file; its bytes and chunks are kept so an
// identical re-upload can restore it
func (h *FileHandler) Delete(c *gin.Context) {
	fileID := c.Param("id")

	if err := h.fileService.SoftDeleteFile(fileID); err != nil {
		if errors.Is(err, services.ErrFileNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete file", "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "File deleted"})
}

// Events streams per-file ingestion completions to the uploading admin
// via Server-Sent Events
func (h *FileHandler) Events(c *gin.Context) {
	adminID := c.MustGet("admin_id").(string)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no") // Disable buffering for nginx

	clientChan := h.sseHub.RegisterClient(adminID)
	defer h.sseHub.UnregisterClient(adminID, clientChan)

	c.SSEvent("connected", gin.H{"admin_id": adminID})
	c.Writer.Flush()

	// Periodic comments keep idle connections open through proxies.
	heartbeat := time.NewTicker(30 * time.Second)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request.Context().Done():
			logrus.Infof("SSE client disconnected: %s", adminID)
			return
		case <-heartbeat.C:
			h.sseHub.SendHeartbeat(adminID)
		case message, ok := <-clientChan:
			if !ok {
				return
			}
			if _, err := c.Writer.Write(message); err != nil {
				logrus.Errorf("Failed to write SSE message: %v", err)
				return
			}
			c.Writer.Flush()
		}
	}
}

// stageAll validates and stages every uploaded file; a single invalid
// file rejects the whole batch before any work is scheduled.
func (h *FileHandler) stageAll(c *gin.Context, fileHeaders []*multipart.FileHeader, adminID string) ([]ingest.StagedFile, bool) {
	staged := make([]ingest.StagedFile, 0, len(fileHeaders))
	for _, fh := range fileHeaders {
		sf, err := h.fileService.StageFile(fh, adminID)
		if err != nil {
			switch {
			case errors.Is(err, extract.ErrUnsupportedFormat):
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Unsupported file format: %s", fh.Filename)})
			case errors.Is(err, services.ErrFileTooLarge):
				c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": fmt.Sprintf("File too large: %s", fh.Filename)})
			default:
				c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("Failed to read file %s", fh.Filename), "details": err.Error()})
			}
			return nil, false
		}
		staged = append(staged, sf)
	}
	return staged, true
}
