package services

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/TranKhoaa/AITChatbot/internal/models"
	"github.com/TranKhoaa/AITChatbot/internal/vectorstore"
)

// fixedEmbedder returns a canned vector per text, defaulting to the zero
// direction for unknown inputs.
type fixedEmbedder struct {
	vectors map[string][]float32
	fallback []float32
}

func (e *fixedEmbedder) Embed(_ context.Context, text string) ([]float32, error) {
	if v, ok := e.vectors[text]; ok {
		return v, nil
	}
	return e.fallback, nil
}

func (e *fixedEmbedder) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	return e.Embed(ctx, text)
}

func (e *fixedEmbedder) Dimension() int { return len(e.fallback) }

func TestChatServiceAnswerUsesRetrievedContext(t *testing.T) {
	var gotPrompt string
	llmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		gotPrompt = req.Prompt
		json.NewEncoder(w).Encode(generateResponse{Response: "the answer\n"})
	}))
	defer llmServer.Close()

	store := vectorstore.NewMemoryStore()
	store.Add(
		models.Chunk{ID: "c1", Content: "payroll runs on the 25th", Vector: pgvector.NewVector([]float32{1, 0}), FileID: "f1"},
		models.Chunk{ID: "c2", Content: "the cafeteria is on floor 2", Vector: pgvector.NewVector([]float32{0, 1}), FileID: "f2"},
	)

	embedder := &fixedEmbedder{
		vectors:  map[string][]float32{"when is payroll?": {1, 0}},
		fallback: []float32{0, 0},
	}
	chat := NewChatService(embedder, store, NewOllamaService(llmServer.URL, "qwen2:0.5b"), 3, 0.3)

	answer, err := chat.Answer(context.Background(), "when is payroll?")
	require.NoError(t, err)
	assert.Equal(t, "the answer", answer.Answer)

	require.Len(t, answer.Chunks, 1)
	assert.Equal(t, "c1", answer.Chunks[0].ID)
	assert.Contains(t, gotPrompt, "payroll runs on the 25th")
	assert.Contains(t, gotPrompt, "when is payroll?")
	assert.NotContains(t, gotPrompt, "cafeteria")
}

func TestChatServiceAnswerWithoutContext(t *testing.T) {
	llmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(generateResponse{Response: "general answer"})
	}))
	defer llmServer.Close()

	store := vectorstore.NewMemoryStore()
	embedder := &fixedEmbedder{fallback: []float32{1, 0}}
	chat := NewChatService(embedder, store, NewOllamaService(llmServer.URL, "qwen2:0.5b"), 3, 0.3)

	// No stored chunks at all still yields an answer.
	answer, err := chat.Answer(context.Background(), "anything?")
	require.NoError(t, err)
	assert.Equal(t, "general answer", answer.Answer)
	assert.Empty(t, answer.Chunks)
}

func TestChatServiceGenerationFailure(t *testing.T) {
	llmServer := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer llmServer.Close()

	store := vectorstore.NewMemoryStore()
	embedder := &fixedEmbedder{fallback: []float32{1, 0}}
	chat := NewChatService(embedder, store, NewOllamaService(llmServer.URL, "qwen2:0.5b"), 3, 0.3)

	_, err := chat.Answer(context.Background(), "anything?")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "generation failed")
}
