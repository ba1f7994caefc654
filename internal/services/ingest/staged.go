package ingest

// StagedFile is one uploaded file ready for ingestion: raw bytes plus the
// metadata computed at staging time.
type StagedFile struct {
	// Name is the sanitized display name, e.g. "report.pdf".
	Name string
	// Extension includes the leading dot, lower-cased.
	Extension string
	// MediaType is the MIME type declared or guessed at upload time.
	MediaType string
	// Data is the raw file content.
	Data []byte
	// Hash is the hex SHA-256 of Data, the dedup key.
	Hash string
	// UploadedBy is the owning admin id.
	UploadedBy string
	// RetrainTargetID, when non-empty, means this upload replaces the
	// content of an existing file instead of creating a new one.
	RetrainTargetID string
}

// Status is the per-file ingestion outcome.
type Status string

const (
	// StatusSuccess means a new File and its Chunks were committed.
	StatusSuccess Status = "success"
	// StatusExists means identical bytes were already ingested; no-op.
	StatusExists Status = "exists"
	// StatusRestored means a soft-deleted file with identical bytes was
	// un-deleted; its stored chunks were kept without re-extraction.
	StatusRestored Status = "restored"
	// StatusRetrained means an existing file's content and chunks were
	// replaced wholesale.
	StatusRetrained Status = "retrained"
	// StatusFailed means the file's pipeline failed and left no residue.
	StatusFailed Status = "failed"
)

// Result is the completion report for one file.
type Result struct {
	Filename string `json:"filename"`
	Status   Status `json:"status"`
	FileID   string `json:"file_id,omitempty"`
	// ChunkCount is the number of chunks committed in this pass; zero for
	// exists/restored/failed.
	ChunkCount int    `json:"chunk_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// Completion is a Result tagged with its batch correlation id and owner, as
// emitted to the notification layer.
type Completion struct {
	BatchID string `json:"batch_id"`
	AdminID string `json:"admin_id"`
	Result
}
