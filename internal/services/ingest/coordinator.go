package ingest

import (
	"context"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/sirupsen/logrus"
)

// Coordinator accepts batches of staged files, validates them up front, and
// dispatches each file to the ingestion pipeline over a bounded worker pool.
// Per-file completion events come out of Events in no particular order;
// files in a batch are fully independent.
type Coordinator struct {
	pipeline *Pipeline
	store    Store
	pool     *ants.Pool
	events   chan Completion

	closeOnce sync.Once
	wg        sync.WaitGroup
}

// NewCoordinator creates a coordinator with the given worker pool size.
func NewCoordinator(pipeline *Pipeline, store Store, workers int) (*Coordinator, error) {
	if workers < 1 {
		workers = 1
	}
	pool, err := ants.NewPool(workers)
	if err != nil {
		return nil, fmt.Errorf("failed to create worker pool: %w", err)
	}
	return &Coordinator{
		pipeline: pipeline,
		store:    store,
		pool:     pool,
		events:   make(chan Completion, 64),
	}, nil
}

// Events returns the completion stream consumed by the notification layer.
func (c *Coordinator) Events() <-chan Completion {
	return c.events
}

// SubmitBatch validates the whole batch and, if it is well formed, queues
// every file for processing. A validation failure rejects the batch before
// any file is dispatched. Once accepted, files run to completion even if the
// caller goes away.
func (c *Coordinator) SubmitBatch(ctx context.Context, batchID, adminID string, files []StagedFile) error {
	if len(files) == 0 {
		return &BatchValidationError{Reason: "no files in batch"}
	}

	// Fail-fast validation of retrain correlations: every named target must
	// exist and belong to the submitting admin.
	for i, staged := range files {
		if staged.RetrainTargetID == "" {
			continue
		}
		target, err := c.store.FindByID(staged.RetrainTargetID)
		if err != nil {
			return fmt.Errorf("failed to validate batch: %w", err)
		}
		if target == nil {
			return &BatchValidationError{
				Reason: fmt.Sprintf("file %d: retrain target %s not found", i, staged.RetrainTargetID),
			}
		}
		if target.UploadedBy != adminID {
			return &BatchValidationError{
				Reason: fmt.Sprintf("file %d: retrain target %s not owned by uploader", i, staged.RetrainTargetID),
			}
		}
	}

	logrus.Infof("Batch %s accepted: %d files", batchID, len(files))

	for _, staged := range files {
		staged := staged
		c.wg.Add(1)
		err := c.pool.Submit(func() {
			defer c.wg.Done()

			var result Result
			if staged.RetrainTargetID != "" {
				result = c.pipeline.ProcessRetrain(context.Background(), staged)
			} else {
				result = c.pipeline.ProcessFile(context.Background(), staged)
			}

			c.events <- Completion{BatchID: batchID, AdminID: adminID, Result: result}
		})
		if err != nil {
			c.wg.Done()
			c.events <- Completion{
				BatchID: batchID,
				AdminID: adminID,
				Result: Result{
					Filename: staged.Name,
					Status:   StatusFailed,
					Error:    fmt.Sprintf("failed to queue file: %v", err),
				},
			}
		}
	}

	return nil
}

// AttachRetrainTargets correlates an optional retrain-target array with the
// staged files by index. An empty id means a new file. A wrong array length
// is a malformed request, rejected before any processing.
func AttachRetrainTargets(files []StagedFile, targetIDs []string) error {
	if targetIDs == nil {
		return nil
	}
	if len(targetIDs) != len(files) {
		return &BatchValidationError{
			Reason: fmt.Sprintf("retrain correlation has %d entries for %d files", len(targetIDs), len(files)),
		}
	}
	for i, id := range targetIDs {
		files[i].RetrainTargetID = id
	}
	return nil
}

// Release drains in-flight work and closes the completion stream. The
// coordinator must not be used afterwards.
func (c *Coordinator) Release() {
	c.closeOnce.Do(func() {
		c.wg.Wait()
		c.pool.Release()
		close(c.events)
	})
}
