package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/pgvector/pgvector-go"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/TranKhoaa/AITChatbot/internal/models"
	"github.com/TranKhoaa/AITChatbot/internal/services/chunker"
	"github.com/TranKhoaa/AITChatbot/internal/services/embedding"
	"github.com/TranKhoaa/AITChatbot/internal/services/extract"
)

// Pipeline turns one staged file into a committed File+Chunks row set, or
// fails cleanly with no residue: on any error past the metadata insert it
// removes the just-written bytes and rolls the transaction back.
type Pipeline struct {
	store    Store
	splitter *chunker.Splitter
	embedder embedding.Embedder
	resolver *pathResolver
}

func NewPipeline(store Store, splitter *chunker.Splitter, embedder embedding.Embedder, uploadDir string, pathAttempts int) *Pipeline {
	return &Pipeline{
		store:    store,
		splitter: splitter,
		embedder: embedder,
		resolver: newPathResolver(store, uploadDir, pathAttempts),
	}
}

// ProcessFile runs the full per-file ingestion: dedup by hash, collision-free
// path resolution, metadata insert, byte persist, extract/chunk/embed with
// count parity, and a single commit for File plus Chunks.
func (p *Pipeline) ProcessFile(ctx context.Context, staged StagedFile) Result {
	// Dedup by content hash, including soft-deleted rows.
	if result, handled := p.resolveDuplicate(staged); handled {
		return result
	}

	link, err := p.resolver.Resolve(staged.Name)
	if err != nil {
		return p.failed(staged, fmt.Errorf("failed to resolve storage path: %w", err))
	}

	tx, err := p.store.Begin()
	if err != nil {
		return p.failed(staged, err)
	}

	file := &models.File{
		Name:       staged.Name,
		Link:       link,
		Type:       staged.Extension,
		MediaType:  staged.MediaType,
		Hash:       staged.Hash,
		UploadedBy: staged.UploadedBy,
	}
	if err := tx.CreateFile(file); err != nil {
		tx.Rollback()
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost the race against a concurrent upload of the same bytes;
			// the committed row is authoritative.
			if result, handled := p.resolveDuplicate(staged); handled {
				return result
			}
		}
		return p.failed(staged, fmt.Errorf("failed to insert file metadata: %w", err))
	}

	if err := writeBytes(link, staged.Data); err != nil {
		tx.Rollback()
		return p.failed(staged, err)
	}

	texts, vectors, err := p.extractAndEmbed(ctx, staged)
	if err != nil {
		p.cleanup(link, tx)
		return p.failed(staged, err)
	}

	if err := tx.CreateChunks(buildChunks(file.ID, texts, vectors)); err != nil {
		p.cleanup(link, tx)
		return p.failed(staged, fmt.Errorf("failed to insert chunks: %w", err))
	}

	if err := tx.Commit(); err != nil {
		os.Remove(link)
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			if result, handled := p.resolveDuplicate(staged); handled {
				return result
			}
		}
		return p.failed(staged, fmt.Errorf("failed to commit: %w", err))
	}

	logrus.Infof("Ingested %s: file %s with %d chunks", staged.Name, file.ID, len(texts))
	return Result{Filename: staged.Name, Status: StatusSuccess, FileID: file.ID, ChunkCount: len(texts)}
}

// ProcessRetrain replaces an existing file's content: all its chunks are
// deleted, the bytes are rewritten, the metadata is updated in place, and
// the new content runs through the same extract/chunk/embed stages, all in
// one transaction so the old chunks survive a failed retrain.
func (p *Pipeline) ProcessRetrain(ctx context.Context, staged StagedFile) Result {
	file, err := p.store.FindByID(staged.RetrainTargetID)
	if err != nil {
		return p.failed(staged, err)
	}
	if file == nil {
		return p.failed(staged, fmt.Errorf("%w: %s", ErrRetrainTargetNotFound, staged.RetrainTargetID))
	}

	// Identical bytes stored under a different file are a dedup hit, not a
	// retrain.
	existing, err := p.store.FindByHash(staged.Hash)
	if err != nil {
		return p.failed(staged, err)
	}
	if existing != nil && existing.ID != file.ID {
		return Result{Filename: staged.Name, Status: StatusExists, FileID: existing.ID}
	}

	oldLink := file.Link
	newLink := oldLink
	if staged.Name != file.Name {
		if newLink, err = p.resolver.Resolve(staged.Name); err != nil {
			return p.failed(staged, fmt.Errorf("failed to resolve storage path: %w", err))
		}
	}

	tx, err := p.store.Begin()
	if err != nil {
		return p.failed(staged, err)
	}

	if err := tx.DeleteChunks(file.ID); err != nil {
		tx.Rollback()
		return p.failed(staged, fmt.Errorf("failed to delete old chunks: %w", err))
	}

	file.Name = staged.Name
	file.Link = newLink
	file.Type = staged.Extension
	file.MediaType = staged.MediaType
	file.Hash = staged.Hash
	file.UploadedBy = staged.UploadedBy
	file.Deleted = false
	if err := tx.SaveFile(file); err != nil {
		tx.Rollback()
		return p.failed(staged, fmt.Errorf("failed to update file metadata: %w", err))
	}

	if err := writeBytes(newLink, staged.Data); err != nil {
		tx.Rollback()
		return p.failed(staged, err)
	}

	texts, vectors, err := p.extractAndEmbed(ctx, staged)
	if err != nil {
		p.cleanupRetrain(oldLink, newLink, tx)
		return p.failed(staged, err)
	}

	if err := tx.CreateChunks(buildChunks(file.ID, texts, vectors)); err != nil {
		p.cleanupRetrain(oldLink, newLink, tx)
		return p.failed(staged, fmt.Errorf("failed to insert chunks: %w", err))
	}

	if err := tx.Commit(); err != nil {
		p.cleanupRetrain(oldLink, newLink, nil)
		return p.failed(staged, fmt.Errorf("failed to commit: %w", err))
	}

	if oldLink != newLink {
		if err := os.Remove(oldLink); err != nil && !os.IsNotExist(err) {
			logrus.Warnf("Failed to remove old bytes %s: %v", oldLink, err)
		}
	}

	logrus.Infof("Retrained %s: file %s with %d chunks", staged.Name, file.ID, len(texts))
	return Result{Filename: staged.Name, Status: StatusRetrained, FileID: file.ID, ChunkCount: len(texts)}
}

// resolveDuplicate maps an existing row with the same hash to its status:
// exists when live, restored (ownership reassigned, chunks kept) when
// soft-deleted. The second return is false when no row matches.
func (p *Pipeline) resolveDuplicate(staged StagedFile) (Result, bool) {
	existing, err := p.store.FindByHash(staged.Hash)
	if err != nil {
		return p.failed(staged, err), true
	}
	if existing == nil {
		return Result{}, false
	}
	if existing.Deleted {
		if err := p.store.Restore(existing, staged.UploadedBy); err != nil {
			return p.failed(staged, fmt.Errorf("failed to restore file: %w", err)), true
		}
		logrus.Infof("Restored %s as file %s", staged.Name, existing.ID)
		return Result{Filename: staged.Name, Status: StatusRestored, FileID: existing.ID}, true
	}
	return Result{Filename: staged.Name, Status: StatusExists, FileID: existing.ID}, true
}

// extractAndEmbed runs extraction, chunking and embedding in order,
// enforcing the one-vector-per-chunk invariant.
func (p *Pipeline) extractAndEmbed(ctx context.Context, staged StagedFile) ([]string, [][]float32, error) {
	src, err := extract.Extract(staged.Data, staged.Extension, staged.Name)
	if err != nil {
		return nil, nil, err
	}

	texts := p.splitter.SplitSource(src)
	if len(texts) == 0 {
		return nil, nil, fmt.Errorf("%w: %s", ErrNoContent, staged.Name)
	}

	vectors := make([][]float32, 0, len(texts))
	for _, text := range texts {
		vector, err := p.embedder.Embed(ctx, text)
		if err != nil {
			return nil, nil, &EmbeddingError{Err: err}
		}
		vectors = append(vectors, vector)
	}

	if len(vectors) != len(texts) {
		return nil, nil, fmt.Errorf("%w: %d chunks, %d vectors", ErrChunkCountMismatch, len(texts), len(vectors))
	}
	return texts, vectors, nil
}

func (p *Pipeline) cleanup(link string, tx Tx) {
	if err := os.Remove(link); err != nil && !os.IsNotExist(err) {
		logrus.Warnf("Failed to remove partial upload %s: %v", link, err)
	}
	tx.Rollback()
}

// cleanupRetrain removes the newly written bytes unless they replaced the
// old bytes in place, in which case the stale content is left behind; the
// rolled-back row still points at the path and a later retrain overwrites it.
func (p *Pipeline) cleanupRetrain(oldLink, newLink string, tx Tx) {
	if newLink != oldLink {
		if err := os.Remove(newLink); err != nil && !os.IsNotExist(err) {
			logrus.Warnf("Failed to remove partial upload %s: %v", newLink, err)
		}
	}
	if tx != nil {
		tx.Rollback()
	}
}

func (p *Pipeline) failed(staged StagedFile, err error) Result {
	logrus.Errorf("Failed to process %s: %v", staged.Name, err)
	return Result{Filename: staged.Name, Status: StatusFailed, Error: err.Error()}
}

func writeBytes(link string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(link), 0755); err != nil {
		return &StorageWriteError{Path: link, Err: err}
	}
	if err := os.WriteFile(link, data, 0644); err != nil {
		return &StorageWriteError{Path: link, Err: err}
	}
	return nil
}

func buildChunks(fileID string, texts []string, vectors [][]float32) []models.Chunk {
	chunks := make([]models.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = models.Chunk{
			Content: text,
			Vector:  pgvector.NewVector(vectors[i]),
			FileID:  fileID,
		}
	}
	return chunks
}
