package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/vmelnikov/insurance-assistant/internal/config"
	"github.com/vmelnikov/insurance-assistant/internal/core/domain"
	"github.com/vmelnikov/insurance-assistant/internal/core/ports"
	"github.com/vmelnikov/insurance-assistant/internal/core/usecase"
	"github.com/vmelnikov/insurance-assistant/internal/infrastructure/catalog"
	"github.com/vmelnikov/insurance-assistant/internal/infrastructure/chunking"
	"github.com/vmelnikov/insurance-assistant/internal/infrastructure/documents"
	"github.com/vmelnikov/insurance-assistant/internal/infrastructure/llm/ollama"
	"github.com/vmelnikov/insurance-assistant/internal/infrastructure/llm/openai"
	natsbus "github.com/vmelnikov/insurance-assistant/internal/infrastructure/queue/nats"
	"github.com/vmelnikov/insurance-assistant/internal/infrastructure/resilience"
	"github.com/vmelnikov/insurance-assistant/internal/infrastructure/session"
	"github.com/vmelnikov/insurance-assistant/internal/infrastructure/vectorindex"
	"github.com/vmelnikov/insurance-assistant/internal/observability/metrics"
)

const indexArtifactName = "policy_index"

// App wires the API process: chat pipeline, published index, sessions and
// the event bus subscription for hot index swaps.
type App struct {
	Config   config.Config
	Log      *slog.Logger
	Chat     ports.ChatService
	Index    ports.IndexProvider
	Sessions *session.Store
	Bus      ports.EventBus
	Metrics  *metrics.HTTPServerMetrics

	embedder ports.Embedder
	holder   *vectorindex.Holder
	store    *vectorindex.ArtifactStore
	closeFn  func()
}

func NewAPI(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	executor := resilience.NewExecutor(resilience.DefaultConfig())

	ollamaClient := ollama.New(
		cfg.OllamaURL,
		cfg.OllamaGenModel,
		cfg.OllamaEmbedModel,
		time.Duration(cfg.OllamaTimeoutSeconds)*time.Second,
		cfg.OllamaMaxTokens,
	)
	embedder := ollama.NewEmbedder(ollamaClient)

	backend, classifier, err := buildBackend(cfg, ollamaClient)
	if err != nil {
		return nil, fmt.Errorf("select llm backend: %w", err)
	}

	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, fmt.Errorf("load policy catalog: %w", err)
	}

	m := metrics.NewHTTPServerMetrics("api")
	holder := vectorindex.NewHolder()
	store := vectorindex.NewArtifactStore(cfg.IndexDir, indexArtifactName)

	app := &App{
		Config:   cfg,
		Log:      log,
		Index:    holder,
		Metrics:  m,
		embedder: embedder,
		holder:   holder,
		store:    store,
	}

	// A missing index is a degraded start, not a failed one: the pipeline
	// answers from the fallback until the indexer publishes a rebuild.
	// A model mismatch is a config error and fails fast.
	if err := app.ReloadIndex(ctx); err != nil {
		if domain.IsKind(err, domain.ErrModelMismatch) {
			return nil, err
		}
		log.Warn("index_not_loaded_at_startup", "error", err)
	}

	sessions := session.NewStore(
		cfg.SessionMaxMessages,
		time.Duration(cfg.SessionTTLMinutes)*time.Minute,
	)
	app.Sessions = sessions

	bus, err := natsbus.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natsbus.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("connect event bus: %w", err)
	}
	app.Bus = bus
	app.closeFn = bus.Close

	retriever := usecase.NewRetriever(embedder, holder, cfg.RAGTopK, cfg.RAGOverfetchFactor, log)
	engine := usecase.NewEngine(backend, executor, classifier, usecase.EngineConfig{
		Timeout:      time.Duration(cfg.GenTimeoutSeconds) * time.Second,
		MinGrounded:  cfg.MinGroundedAnswer,
		HistoryTurns: cfg.HistoryTurnsInPrompt,
	}, log)
	suggester := usecase.NewSuggester(cat.All(), cfg.SuggestionLimit)
	app.Chat = usecase.NewChatPipeline(retriever, engine, suggester, sessions, log)

	return app, nil
}

// ReloadIndex loads the persisted artifacts and atomically publishes the new
// generation; in-flight searches keep using the previous one.
func (a *App) ReloadIndex(ctx context.Context) error {
	ix, err := a.store.Load(ctx, a.embedder.ModelID())
	if err != nil {
		return err
	}
	a.holder.Publish(ix)
	a.Metrics.SetIndexSize(ix.Len())
	a.Log.Info("index_published", "chunks", ix.Len(), "model_id", ix.ModelID())
	return nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

// IndexerApp wires the one-shot index build process.
type IndexerApp struct {
	Config  config.Config
	Log     *slog.Logger
	Ingest  ports.CorpusIndexer
	Bus     ports.EventBus
	Metrics *metrics.IndexerMetrics

	closeFn func()
}

func NewIndexer(_ context.Context, cfg config.Config, log *slog.Logger) (*IndexerApp, error) {
	executor := resilience.NewExecutor(resilience.DefaultConfig())

	ollamaClient := ollama.New(
		cfg.OllamaURL,
		cfg.OllamaGenModel,
		cfg.OllamaEmbedModel,
		time.Duration(cfg.OllamaTimeoutSeconds)*time.Second,
		cfg.OllamaMaxTokens,
	)
	embedder := ollama.NewEmbedder(ollamaClient)

	indexerMetrics := metrics.NewIndexerMetrics("indexer")
	source := documents.NewDirectorySource(cfg.DocumentsDir, documents.WithSkipObserver(func() {
		indexerMetrics.SkipDocument("indexer")
	}))
	splitter := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	store := vectorindex.NewArtifactStore(cfg.IndexDir, indexArtifactName)

	bus, err := natsbus.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natsbus.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		return nil, fmt.Errorf("connect event bus: %w", err)
	}

	return &IndexerApp{
		Config:  cfg,
		Log:     log,
		Ingest:  usecase.NewIngestService(source, splitter, embedder, store, log),
		Bus:     bus,
		Metrics: indexerMetrics,
		closeFn: bus.Close,
	}, nil
}

func (a *IndexerApp) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}

func buildBackend(cfg config.Config, ollamaClient *ollama.Client) (ports.AnswerBackend, resilience.ErrorClassifier, error) {
	switch cfg.LLMProvider {
	case "rule", "":
		return nil, nil, nil
	case "ollama":
		return ollama.NewGenerator(ollamaClient), ollama.ClassifyError, nil
	case "openai":
		gen, err := openai.NewGenerator(cfg.OpenAIAPIKey, cfg.OpenAIModelID, cfg.OpenAIMaxTokens)
		if err != nil {
			return nil, nil, err
		}
		return gen, openai.ClassifyError, nil
	default:
		return nil, nil, fmt.Errorf("unknown llm provider %q", cfg.LLMProvider)
	}
}
