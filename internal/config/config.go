package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type Config struct {
	APIPort  string
	LogLevel string

	DocumentsDir string
	IndexDir     string
	CatalogPath  string

	NATSURL     string
	NATSSubject string

	LLMProvider string

	OllamaURL            string
	OllamaGenModel       string
	OllamaEmbedModel     string
	OllamaTimeoutSeconds int
	OllamaMaxTokens      int

	OpenAIAPIKey    string
	OpenAIModelID   string
	OpenAIMaxTokens int

	ChunkSize    int
	ChunkOverlap int

	RAGTopK              int
	RAGOverfetchFactor   int
	GenTimeoutSeconds    int
	MinGroundedAnswer    int
	SuggestionLimit      int
	HistoryTurnsInPrompt int

	SessionMaxMessages  int
	SessionTTLMinutes   int
	SessionSweepSeconds int

	APIRateLimitRPS   int
	APIRateLimitBurst int
	APIMaxInFlight    int

	IndexerMetricsPort string
}

// Load reads configuration from the environment, with a .env file as an
// optional local override source. Every knob has a working default so the
// service starts with no environment at all.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		DocumentsDir: mustEnv("DOCUMENTS_DIR", "./data/policies"),
		IndexDir:     mustEnv("INDEX_DIR", "./data/index"),
		CatalogPath:  mustEnv("CATALOG_PATH", "./configs/policies.yaml"),

		NATSURL:     mustEnv("NATS_URL", "nats://localhost:4222"),
		NATSSubject: mustEnv("NATS_SUBJECT", "index.rebuilt"),

		LLMProvider: mustEnv("LLM_PROVIDER", "rule"),

		OllamaURL:            mustEnv("OLLAMA_URL", "http://localhost:11434"),
		OllamaGenModel:       mustEnv("OLLAMA_GEN_MODEL", "llama3.1:8b"),
		OllamaEmbedModel:     mustEnv("OLLAMA_EMBED_MODEL", "nomic-embed-text"),
		OllamaTimeoutSeconds: mustEnvInt("OLLAMA_TIMEOUT_SECONDS", 60),
		OllamaMaxTokens:      mustEnvInt("OLLAMA_MAX_TOKENS", 512),

		OpenAIAPIKey:    mustEnv("OPENAI_API_KEY", ""),
		OpenAIModelID:   mustEnv("OPENAI_MODEL_ID", "gpt-4o-mini"),
		OpenAIMaxTokens: mustEnvInt("OPENAI_MAX_TOKENS", 1024),

		ChunkSize:    mustEnvInt("CHUNK_SIZE", 500),
		ChunkOverlap: mustEnvInt("CHUNK_OVERLAP", 50),

		RAGTopK:              mustEnvInt("RAG_TOP_K", 5),
		RAGOverfetchFactor:   mustEnvInt("RAG_OVERFETCH_FACTOR", 4),
		GenTimeoutSeconds:    mustEnvInt("GEN_TIMEOUT_SECONDS", 30),
		MinGroundedAnswer:    mustEnvInt("MIN_GROUNDED_ANSWER_CHARS", 80),
		SuggestionLimit:      mustEnvInt("SUGGESTION_LIMIT", 3),
		HistoryTurnsInPrompt: mustEnvInt("HISTORY_TURNS_IN_PROMPT", 3),

		SessionMaxMessages:  mustEnvInt("SESSION_MAX_MESSAGES", 20),
		SessionTTLMinutes:   mustEnvInt("SESSION_TTL_MINUTES", 30),
		SessionSweepSeconds: mustEnvInt("SESSION_SWEEP_SECONDS", 60),

		APIRateLimitRPS:   mustEnvInt("API_RATE_LIMIT_RPS", 10),
		APIRateLimitBurst: mustEnvInt("API_RATE_LIMIT_BURST", 20),
		APIMaxInFlight:    mustEnvInt("API_MAX_IN_FLIGHT", 64),

		IndexerMetricsPort: mustEnv("INDEXER_METRICS_PORT", "9090"),
	}
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}
