package ports

import (
	"context"

	"github.com/vmelnikov/insurance-assistant/internal/core/domain"
)

// Embedder builds vectors for chunk batches and query text. ModelID versions
// the embedding space; index artifacts reject a mismatched model at load time.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	ModelID() string
}

// AnswerBackend produces raw answer text from an assembled prompt.
// Implementations are selected once at construction; the generation engine
// treats the backend as unreliable and gates everything it returns.
type AnswerBackend interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Chunker splits document text into overlapping pieces in document order.
type Chunker interface {
	Split(text string) []string
}

// DocumentSource loads raw policy documents for ingestion.
type DocumentSource interface {
	Load(ctx context.Context) ([]domain.PolicyDocument, error)
}

// VectorSearcher is a read-only view of one published index generation.
// Results come back best-first; equal scores keep corpus insertion order.
type VectorSearcher interface {
	Search(queryVector []float32, limit int) []domain.RetrievedChunk
	Len() int
}

// IndexProvider yields the currently published index. Current returns nil
// while no index generation has been loaded; callers degrade, never fail.
type IndexProvider interface {
	Current() VectorSearcher
}

// IndexWriter persists a freshly built index and its parallel metadata as
// two co-located artifacts keyed by the embedding model id.
type IndexWriter interface {
	Write(ctx context.Context, modelID string, vectors [][]float32, chunks []domain.Chunk) error
}

// SessionStore keeps per-session conversation history. An absent or unknown
// session id is never an error: a fresh session is created instead. A
// request's user and assistant messages land as one atomic turn so concurrent
// requests on the same session cannot interleave inside the history.
type SessionStore interface {
	GetOrCreate(ctx context.Context, sessionID string) (string, []domain.Message, error)
	AppendTurn(ctx context.Context, sessionID string, userMsg, assistantMsg domain.Message) error
}

// EventBus carries index lifecycle events between the indexer and the API.
type EventBus interface {
	PublishIndexRebuilt(ctx context.Context) error
	SubscribeIndexRebuilt(ctx context.Context, handler func(context.Context) error) error
	Close()
}
