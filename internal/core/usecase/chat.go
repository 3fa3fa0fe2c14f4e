package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/vmelnikov/insurance-assistant/internal/core/domain"
	"github.com/vmelnikov/insurance-assistant/internal/core/ports"
)

// ChatPipeline is the full per-request flow: retrieve, generate, suggest,
// then append the turn to session memory. It implements ports.ChatService.
// Steps after generation never fail the request; the user always gets the
// generated answer even if suggestions or the memory append misbehave.
type ChatPipeline struct {
	retriever *Retriever
	engine    *Engine
	suggester *Suggester
	sessions  ports.SessionStore
	log       *slog.Logger
}

func NewChatPipeline(
	retriever *Retriever,
	engine *Engine,
	suggester *Suggester,
	sessions ports.SessionStore,
	log *slog.Logger,
) *ChatPipeline {
	return &ChatPipeline{
		retriever: retriever,
		engine:    engine,
		suggester: suggester,
		sessions:  sessions,
		log:       log,
	}
}

func (p *ChatPipeline) HandleQuery(ctx context.Context, req ports.ChatRequest) (*domain.ChatResult, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("message is required: %w", domain.ErrInvalidInput)
	}

	sessionID, history, err := p.sessions.GetOrCreate(ctx, req.SessionID)
	if err != nil {
		return nil, fmt.Errorf("resolve session: %w", err)
	}

	class := domain.ClassifyQuery(message)
	filter := domain.SearchFilter{
		PolicyType: req.PolicyType,
		Region:     req.Region,
	}

	chunks := p.retriever.Retrieve(ctx, message, filter)
	gen, fallbackReason := p.engine.Generate(ctx, message, class, chunks, history)

	suggestions := p.suggester.Suggest(message, chunks)

	now := time.Now().UTC()
	userMsg := domain.Message{
		Role:      domain.RoleUser,
		Text:      message,
		Timestamp: now,
	}
	assistantMsg := domain.Message{
		Role:      domain.RoleAssistant,
		Text:      gen.Answer,
		Timestamp: now,
	}
	if err := p.sessions.AppendTurn(ctx, sessionID, userMsg, assistantMsg); err != nil {
		p.log.Warn("session_append_failed", "session_id", sessionID, "error", err)
	}

	p.log.Info("query_handled",
		"session_id", sessionID,
		"topic", class.Topic,
		"mode", gen.Mode,
		"used_fallback", gen.UsedFallback,
		"retrieved", len(chunks),
		"suggestions", len(suggestions),
	)

	return &domain.ChatResult{
		Answer:         gen.Answer,
		Mode:           gen.Mode,
		UsedFallback:   gen.UsedFallback,
		Suggestions:    suggestions,
		Sources:        chunks,
		SessionID:      sessionID,
		FallbackReason: fallbackReason,
	}, nil
}
