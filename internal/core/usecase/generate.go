package usecase

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/vmelnikov/insurance-assistant/internal/core/domain"
	"github.com/vmelnikov/insurance-assistant/internal/core/ports"
	"github.com/vmelnikov/insurance-assistant/internal/infrastructure/resilience"
)

// Fallback reasons, reported to the caller for logging and metrics.
const (
	FallbackNoBackend        = "no_backend"
	FallbackNoContext        = "no_context"
	FallbackGenerationError  = "generation_error"
	FallbackValidationFailed = "validation_failed"
)

// Engine is the generation state machine: grounded versus general prompting
// on one axis, model backend versus deterministic fallback on the other.
// Whatever the backend does, the engine's output is never empty and never a
// known non-answer.
type Engine struct {
	backend  ports.AnswerBackend
	exec     *resilience.Executor
	classify resilience.ErrorClassifier

	timeout      time.Duration
	minGrounded  int
	historyTurns int
	log          *slog.Logger
}

type EngineConfig struct {
	Timeout      time.Duration
	MinGrounded  int
	HistoryTurns int
}

// NewEngine builds the engine. A nil backend selects the rule-only mode
// where every answer comes from the deterministic fallback.
func NewEngine(
	backend ports.AnswerBackend,
	exec *resilience.Executor,
	classify resilience.ErrorClassifier,
	cfg EngineConfig,
	log *slog.Logger,
) *Engine {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MinGrounded <= 0 {
		cfg.MinGrounded = 80
	}
	if cfg.HistoryTurns <= 0 {
		cfg.HistoryTurns = 3
	}
	return &Engine{
		backend:      backend,
		exec:         exec,
		classify:     classify,
		timeout:      cfg.Timeout,
		minGrounded:  cfg.MinGrounded,
		historyTurns: cfg.HistoryTurns,
		log:          log,
	}
}

// Generate produces the answer for one query. The returned reason is empty
// when the backend answer passed the gate, otherwise it names why the
// fallback was substituted.
func (e *Engine) Generate(
	ctx context.Context,
	query string,
	class domain.QueryClass,
	chunks []domain.RetrievedChunk,
	history []domain.Message,
) (domain.GenerationResult, string) {
	mode := domain.ModeGeneral
	if len(chunks) > 0 {
		mode = domain.ModeGrounded
	}

	// A concrete insurance question with nothing retrieved goes straight to
	// the fallback: an ungrounded model answer about policy specifics is
	// exactly the hallucination the gate exists to prevent.
	if len(chunks) == 0 && class.SpecificInsurance() {
		return e.fallback(query, chunks, mode, FallbackNoContext)
	}

	if e.backend == nil {
		return e.fallback(query, chunks, mode, FallbackNoBackend)
	}

	prompt := buildPrompt(query, chunks, history, e.historyTurns)

	var raw string
	err := e.exec.Execute(ctx, "llm.generate", func(ctx context.Context) error {
		callCtx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		answer, genErr := e.backend.Generate(callCtx, prompt)
		if genErr != nil {
			return genErr
		}
		raw = answer
		return nil
	}, e.classify)
	if err != nil {
		e.log.Warn("backend_generation_failed", "mode", mode, "error", err)
		return e.fallback(query, chunks, mode, FallbackGenerationError)
	}

	if reason, ok := validateAnswer(raw, class, e.minGrounded); !ok {
		e.log.Warn("backend_answer_rejected",
			"mode", mode,
			"reason", reason,
			"answer_chars", len(strings.TrimSpace(raw)),
		)
		return e.fallback(query, chunks, mode, FallbackValidationFailed)
	}

	return domain.GenerationResult{
		Answer: strings.TrimSpace(raw),
		Mode:   mode,
	}, ""
}

func (e *Engine) fallback(query string, chunks []domain.RetrievedChunk, mode domain.GenerationMode, reason string) (domain.GenerationResult, string) {
	return domain.GenerationResult{
		Answer:       fallbackWithContext(query, chunks),
		Mode:         mode,
		UsedFallback: true,
	}, reason
}
