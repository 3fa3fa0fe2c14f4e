package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vmelnikov/insurance-assistant/internal/core/domain"
	"github.com/vmelnikov/insurance-assistant/internal/core/ports"
)

// IngestService builds the vector index from the raw policy corpus: load,
// chunk, tag, embed, persist. It implements ports.CorpusIndexer.
type IngestService struct {
	source   ports.DocumentSource
	chunker  ports.Chunker
	embedder ports.Embedder
	writer   ports.IndexWriter
	log      *slog.Logger
}

func NewIngestService(
	source ports.DocumentSource,
	chunker ports.Chunker,
	embedder ports.Embedder,
	writer ports.IndexWriter,
	log *slog.Logger,
) *IngestService {
	return &IngestService{
		source:   source,
		chunker:  chunker,
		embedder: embedder,
		writer:   writer,
		log:      log,
	}
}

// BuildIndex runs one full rebuild and reports how many chunks were indexed.
// Unreadable documents were already skipped by the source; an empty corpus
// after chunking is a hard failure.
func (s *IngestService) BuildIndex(ctx context.Context) (int, error) {
	docs, err := s.source.Load(ctx)
	if err != nil {
		return 0, fmt.Errorf("load policy documents: %w", err)
	}

	var (
		chunks []domain.Chunk
		texts  []string
	)
	for _, doc := range docs {
		pieces := s.chunker.Split(doc.Text)
		if len(pieces) == 0 {
			s.log.Warn("document_produced_no_chunks", "policy_id", doc.PolicyID)
			continue
		}
		for i, piece := range pieces {
			chunks = append(chunks, domain.Chunk{
				ChunkID:    fmt.Sprintf("%s_chunk_%d", doc.PolicyID, i),
				Text:       piece,
				PolicyID:   doc.PolicyID,
				PolicyType: doc.PolicyType,
				Region:     doc.Region,
				ClauseType: classifyClause(piece),
				ChunkIndex: i,
			})
			texts = append(texts, piece)
		}
		s.log.Info("document_chunked", "policy_id", doc.PolicyID, "chunks", len(pieces))
	}

	if len(chunks) == 0 {
		return 0, fmt.Errorf("no chunks produced from %d documents: %w", len(docs), domain.ErrEmptyCorpus)
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embed %d chunks: %w", len(chunks), err)
	}
	if len(vectors) != len(chunks) {
		return 0, fmt.Errorf("embedding count mismatch: %d vectors for %d chunks", len(vectors), len(chunks))
	}

	if err := s.writer.Write(ctx, s.embedder.ModelID(), vectors, chunks); err != nil {
		return 0, fmt.Errorf("persist index: %w", err)
	}

	s.log.Info("index_built",
		"documents", len(docs),
		"chunks", len(chunks),
		"model_id", s.embedder.ModelID(),
	)
	return len(chunks), nil
}

// classifyClause tags a chunk by the dominant clause language it contains.
// Exclusion wording is checked first: "not covered" must not read as coverage.
func classifyClause(text string) domain.ClauseType {
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "exclusion") ||
		strings.Contains(lower, "not cover") ||
		strings.Contains(lower, "does not include") ||
		strings.Contains(lower, "exception"):
		return domain.ClauseExclusion
	case strings.Contains(lower, "limit") ||
		strings.Contains(lower, "maximum") ||
		strings.Contains(lower, "up to") ||
		strings.Contains(lower, "deductible"):
		return domain.ClauseLimit
	case strings.Contains(lower, "cover") ||
		strings.Contains(lower, "includes") ||
		strings.Contains(lower, "benefit"):
		return domain.ClauseCoverage
	default:
		return domain.ClauseGeneral
	}
}
