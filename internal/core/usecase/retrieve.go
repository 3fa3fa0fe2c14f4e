package usecase

import (
	"context"
	"log/slog"

	"github.com/vmelnikov/insurance-assistant/internal/core/domain"
	"github.com/vmelnikov/insurance-assistant/internal/core/ports"
)

// Retriever embeds a query and runs nearest-neighbor search against the
// currently published index. It never fails a request: a missing index or a
// broken embedder degrades to an empty result and the pipeline continues
// without grounding.
type Retriever struct {
	embedder  ports.Embedder
	index     ports.IndexProvider
	topK      int
	overfetch int
	log       *slog.Logger
}

func NewRetriever(embedder ports.Embedder, index ports.IndexProvider, topK, overfetch int, log *slog.Logger) *Retriever {
	if topK <= 0 {
		topK = 5
	}
	if overfetch <= 1 {
		overfetch = 4
	}
	return &Retriever{
		embedder:  embedder,
		index:     index,
		topK:      topK,
		overfetch: overfetch,
		log:       log,
	}
}

// Available reports whether an index generation is currently published.
func (r *Retriever) Available() bool {
	return r.index.Current() != nil
}

// Retrieve returns the top-k chunks for the query, best-first. When a
// metadata filter is supplied the search over-fetches before filtering so
// that nearby vectors from filtered-out categories do not starve the result.
func (r *Retriever) Retrieve(ctx context.Context, query string, filter domain.SearchFilter) []domain.RetrievedChunk {
	searcher := r.index.Current()
	if searcher == nil {
		r.log.Warn("retriever_unavailable", "reason", "no index published")
		return nil
	}

	vector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		r.log.Warn("query_embedding_failed", "error", err)
		return nil
	}

	limit := r.topK
	if !filter.IsZero() {
		limit *= r.overfetch
	}

	results := searcher.Search(vector, limit)
	if filter.IsZero() {
		return results
	}

	filtered := results[:0]
	for _, rc := range results {
		if filter.Matches(rc.Chunk) {
			filtered = append(filtered, rc)
		}
	}
	if len(filtered) > r.topK {
		filtered = filtered[:r.topK]
	}
	return filtered
}
