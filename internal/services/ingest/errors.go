package ingest

import (
	"errors"
	"fmt"
)

var (
	// ErrNoContent is returned when extraction produced no chunkable text,
	// a terminal condition for that file.
	ErrNoContent = errors.New("no content extracted")

	// ErrChunkCountMismatch is returned when the number of embeddings does
	// not equal the number of chunks. Nothing is committed for the file.
	ErrChunkCountMismatch = errors.New("chunk/embedding count mismatch")

	// ErrRetrainTargetNotFound is returned when a retrain correlation names
	// a file that does not exist.
	ErrRetrainTargetNotFound = errors.New("retrain target not found")

	// ErrPathExhausted is returned when no collision-free storage path was
	// found within the bounded attempt count and the fallback also collided.
	ErrPathExhausted = errors.New("could not resolve a unique storage path")
)

// EmbeddingError wraps an embedding backend failure; it aborts the file's
// ingestion before any vectors are committed.
type EmbeddingError struct {
	Err error
}

func (e *EmbeddingError) Error() string {
	return fmt.Sprintf("embedding failed: %v", e.Err)
}

func (e *EmbeddingError) Unwrap() error {
	return e.Err
}

// StorageWriteError wraps a failure to persist raw bytes to disk.
type StorageWriteError struct {
	Path string
	Err  error
}

func (e *StorageWriteError) Error() string {
	return fmt.Sprintf("failed to write %s: %v", e.Path, e.Err)
}

func (e *StorageWriteError) Unwrap() error {
	return e.Err
}

// BatchValidationError indicates a malformed batch request. It is surfaced
// before any file is dispatched.
type BatchValidationError struct {
	Reason string
}

func (e *BatchValidationError) Error() string {
	return "invalid batch: " + e.Reason
}
