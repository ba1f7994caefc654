package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/TranKhoaa/AITChatbot/internal/models"
	"github.com/TranKhoaa/AITChatbot/internal/services/embedding"
	"github.com/TranKhoaa/AITChatbot/internal/vectorstore"
)

// ChatService answers a natural-language question by embedding it, pulling
// the most relevant chunks from the vector store, and handing the assembled
// context to the generation backend.
type ChatService struct {
	embedder  embedding.Embedder
	store     vectorstore.Store
	llm       *OllamaService
	topK      int
	threshold float64
}

func NewChatService(embedder embedding.Embedder, store vectorstore.Store, llm *OllamaService, topK int, threshold float64) *ChatService {
	if topK <= 0 {
		topK = 3
	}
	return &ChatService{
		embedder:  embedder,
		store:     store,
		llm:       llm,
		topK:      topK,
		threshold: threshold,
	}
}

// ChatAnswer carries the generated answer together with its sources.
type ChatAnswer struct {
	Answer string         `json:"answer"`
	Chunks []models.Chunk `json:"-"`
}

// Answer runs the retrieval-augmented query path. Questions with no chunk
// above the threshold still get an answer, just without document context.
func (s *ChatService) Answer(ctx context.Context, question string) (*ChatAnswer, error) {
	vector, err := s.embedder.EmbedQuery(ctx, question)
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}

	threshold := s.threshold
	chunks, err := s.store.Search(ctx, vector, vectorstore.Options{
		Limit:               s.topK,
		Metric:              vectorstore.MetricCosine,
		SimilarityThreshold: &threshold,
	})
	if err != nil {
		return nil, fmt.Errorf("retrieval failed: %w", err)
	}
	logrus.Infof("Retrieved %d context chunks for question", len(chunks))

	contents := make([]string, len(chunks))
	for i, chunk := range chunks {
		contents[i] = chunk.Content
	}

	answer, err := s.llm.Generate(ctx, buildPrompt(question, contents))
	if err != nil {
		return nil, fmt.Errorf("generation failed: %w", err)
	}

	return &ChatAnswer{Answer: answer, Chunks: chunks}, nil
}

// buildPrompt assembles the retrieved chunks and the question into a single
// grounded prompt.
func buildPrompt(question string, contexts []string) string {
	return fmt.Sprintf(`You are a helpful and intelligent assistant designed to provide concise and accurate answers based on the given context.
When a user asks a question, analyze the provided context carefully to find relevant information.
If the context contains sufficient details, answer the question precisely using that information.
If the context lacks enough information to answer fully, clearly state that the information is insufficient and offer a general answer or explanation if possible.

**Context**:
%s

**Question**:
%s

**Answer**:
`, strings.Join(contexts, "\n\n"), question)
}
