package ports

import (
	"context"

	"github.com/vmelnikov/insurance-assistant/internal/core/domain"
)

// ChatRequest is the core-facing shape of one text or transcript query.
type ChatRequest struct {
	Message    string
	SessionID  string
	PolicyType string
	Region     string
}

// ChatService is the inbound contract for the full query pipeline:
// retrieve, generate, suggest, then append the turn to session memory.
type ChatService interface {
	HandleQuery(ctx context.Context, req ChatRequest) (*domain.ChatResult, error)
}

// CorpusIndexer is the inbound contract for the one-shot index build.
type CorpusIndexer interface {
	BuildIndex(ctx context.Context) (int, error)
}
