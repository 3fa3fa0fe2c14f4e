package usecase

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/vmelnikov/insurance-assistant/internal/core/domain"
	"github.com/vmelnikov/insurance-assistant/internal/core/ports"
	"github.com/vmelnikov/insurance-assistant/internal/infrastructure/resilience"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testExecutor() *resilience.Executor {
	return resilience.NewExecutor(resilience.Config{
		RetryMaxAttempts:    1,
		RetryInitialBackoff: 1,
		RetryMaxBackoff:     1,
		BreakerEnabled:      false,
	})
}

type fakeEmbedder struct {
	vector  []float32
	failure error
	modelID string
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	if f.failure != nil {
		return nil, f.failure
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vector
	}
	return out, nil
}

func (f *fakeEmbedder) EmbedQuery(context.Context, string) ([]float32, error) {
	if f.failure != nil {
		return nil, f.failure
	}
	return f.vector, nil
}

func (f *fakeEmbedder) ModelID() string {
	if f.modelID == "" {
		return "fake/embedder"
	}
	return f.modelID
}

type fakeSearcher struct {
	results []domain.RetrievedChunk
}

func (f *fakeSearcher) Search(_ []float32, limit int) []domain.RetrievedChunk {
	if limit <= 0 {
		return nil
	}
	if len(f.results) > limit {
		return f.results[:limit]
	}
	return f.results
}

func (f *fakeSearcher) Len() int { return len(f.results) }

type fakeIndexProvider struct {
	searcher ports.VectorSearcher
}

func (f *fakeIndexProvider) Current() ports.VectorSearcher { return f.searcher }

type fakeBackend struct {
	answer  string
	failure error

	mu      sync.Mutex
	calls   int
	prompts []string
}

func (f *fakeBackend) Generate(_ context.Context, prompt string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	f.prompts = append(f.prompts, prompt)
	if f.failure != nil {
		return "", f.failure
	}
	return f.answer, nil
}

func (f *fakeBackend) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func (f *fakeBackend) lastPrompt() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.prompts) == 0 {
		return ""
	}
	return f.prompts[len(f.prompts)-1]
}

type fakeSessionStore struct {
	mu       sync.Mutex
	id       string
	history  []domain.Message
	appended []domain.Message
}

func (f *fakeSessionStore) GetOrCreate(_ context.Context, sessionID string) (string, []domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.id == "" {
		f.id = "session-1"
	}
	if sessionID != "" && sessionID != f.id {
		return "", nil, errors.New("unexpected session id")
	}
	history := append([]domain.Message(nil), f.history...)
	return f.id, history, nil
}

func (f *fakeSessionStore) AppendTurn(_ context.Context, _ string, userMsg, assistantMsg domain.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.history = append(f.history, userMsg, assistantMsg)
	f.appended = append(f.appended, userMsg, assistantMsg)
	return nil
}

type fakeSource struct {
	docs    []domain.PolicyDocument
	failure error
}

func (f *fakeSource) Load(context.Context) ([]domain.PolicyDocument, error) {
	if f.failure != nil {
		return nil, f.failure
	}
	return f.docs, nil
}

type fakeChunker struct {
	size int
}

func (f *fakeChunker) Split(text string) []string {
	if text == "" {
		return nil
	}
	size := f.size
	if size <= 0 {
		size = 40
	}
	runes := []rune(text)
	var out []string
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		out = append(out, string(runes[start:end]))
	}
	return out
}

type fakeIndexWriter struct {
	modelID string
	vectors [][]float32
	chunks  []domain.Chunk
	failure error
}

func (f *fakeIndexWriter) Write(_ context.Context, modelID string, vectors [][]float32, chunks []domain.Chunk) error {
	if f.failure != nil {
		return f.failure
	}
	f.modelID = modelID
	f.vectors = vectors
	f.chunks = chunks
	return nil
}

func retrieved(policyID, policyType string, clause domain.ClauseType, score float64) domain.RetrievedChunk {
	return domain.RetrievedChunk{
		Chunk: domain.Chunk{
			ChunkID:    policyID + "_chunk_0",
			Text:       "Sample clause text for " + policyID,
			PolicyID:   policyID,
			PolicyType: policyType,
			Region:     "US",
			ClauseType: clause,
		},
		Score: score,
	}
}
