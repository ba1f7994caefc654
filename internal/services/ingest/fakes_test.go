package ingest

import (
	"context"
	"fmt"
	"hash/fnv"
	"sync"

	"gorm.io/gorm"

	"github.com/TranKhoaa/AITChatbot/internal/models"
)

// fakeStore is an in-memory Store with buffered transactions, so rollback
// semantics can be asserted without a database.
type fakeStore struct {
	mu     sync.Mutex
	files  map[string]*models.File
	chunks map[string][]models.Chunk
	nextID int

	// failCreateWith, when non-nil, makes the next CreateFile fail once.
	failCreateWith error
	// raceWinner, when non-nil, is inserted right before the next CreateFile
	// runs, simulating a concurrent upload winning the hash race.
	raceWinner *models.File
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		files:  make(map[string]*models.File),
		chunks: make(map[string][]models.Chunk),
	}
}

// seed inserts a file directly, bypassing transactions.
func (s *fakeStore) seed(file *models.File, chunks ...models.Chunk) *models.File {
	s.mu.Lock()
	defer s.mu.Unlock()
	if file.ID == "" {
		s.nextID++
		file.ID = fmt.Sprintf("file-%d", s.nextID)
	}
	cp := *file
	s.files[cp.ID] = &cp
	s.chunks[cp.ID] = append([]models.Chunk(nil), chunks...)
	return &cp
}

func (s *fakeStore) chunkCount(fileID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.chunks[fileID])
}

func (s *fakeStore) fileCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.files)
}

func (s *fakeStore) get(id string) *models.File {
	s.mu.Lock()
	defer s.mu.Unlock()
	if f, ok := s.files[id]; ok {
		cp := *f
		return &cp
	}
	return nil
}

func (s *fakeStore) FindByHash(hash string) (*models.File, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.files {
		if f.Hash == hash {
			cp := *f
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *fakeStore) FindByID(id string) (*models.File, error) {
	return s.get(id), nil
}

func (s *fakeStore) NameTaken(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.files {
		if f.Name == name && !f.Deleted {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) LinkExists(link string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, f := range s.files {
		if f.Link == link {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeStore) Restore(file *models.File, uploadedBy string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.files[file.ID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	stored.Deleted = false
	stored.UploadedBy = uploadedBy
	file.Deleted = false
	file.UploadedBy = uploadedBy
	return nil
}

func (s *fakeStore) Begin() (Tx, error) {
	return &fakeTx{store: s}, nil
}

// fakeTx buffers all mutations and applies them on Commit.
type fakeTx struct {
	store *fakeStore

	created      *models.File
	saved        *models.File
	newChunks    []models.Chunk
	deleteChunks []string

	committed  bool
	rolledBack bool
}

func (t *fakeTx) CreateFile(file *models.File) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.store.failCreateWith != nil {
		err := t.store.failCreateWith
		t.store.failCreateWith = nil
		return err
	}
	if t.store.raceWinner != nil {
		winner := t.store.raceWinner
		t.store.raceWinner = nil
		if winner.ID == "" {
			t.store.nextID++
			winner.ID = fmt.Sprintf("file-%d", t.store.nextID)
		}
		cp := *winner
		t.store.files[cp.ID] = &cp
	}
	for _, f := range t.store.files {
		if f.Hash == file.Hash {
			return gorm.ErrDuplicatedKey
		}
	}
	t.store.nextID++
	file.ID = fmt.Sprintf("file-%d", t.store.nextID)
	cp := *file
	t.created = &cp
	return nil
}

func (t *fakeTx) SaveFile(file *models.File) error {
	cp := *file
	t.saved = &cp
	return nil
}

func (t *fakeTx) CreateChunks(chunks []models.Chunk) error {
	t.newChunks = append(t.newChunks, chunks...)
	return nil
}

func (t *fakeTx) DeleteChunks(fileID string) error {
	t.deleteChunks = append(t.deleteChunks, fileID)
	return nil
}

func (t *fakeTx) Commit() error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()
	if t.created != nil {
		// Re-check the hash constraint at commit time, like the database does.
		for _, f := range t.store.files {
			if f.Hash == t.created.Hash {
				return gorm.ErrDuplicatedKey
			}
		}
		cp := *t.created
		t.store.files[cp.ID] = &cp
	}
	if t.saved != nil {
		cp := *t.saved
		t.store.files[cp.ID] = &cp
	}
	for _, fileID := range t.deleteChunks {
		delete(t.store.chunks, fileID)
	}
	for _, chunk := range t.newChunks {
		t.store.chunks[chunk.FileID] = append(t.store.chunks[chunk.FileID], chunk)
	}
	t.committed = true
	return nil
}

func (t *fakeTx) Rollback() error {
	t.rolledBack = true
	return nil
}

// stubEmbedder produces deterministic vectors from an FNV hash of the text.
type stubEmbedder struct {
	dim  int
	fail error
}

func newStubEmbedder(dim int) *stubEmbedder {
	return &stubEmbedder{dim: dim}
}

func (e *stubEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if e.fail != nil {
		return nil, e.fail
	}
	h := fnv.New32a()
	h.Write([]byte(text))
	seed := h.Sum32()
	vec := make([]float32, e.dim)
	for i := range vec {
		seed = seed*1664525 + 1013904223
		vec[i] = float32(seed%1000)/1000.0 - 0.5
	}
	return vec, nil
}

func (e *stubEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.Embed(ctx, text)
}

func (e *stubEmbedder) Dimension() int {
	return e.dim
}
