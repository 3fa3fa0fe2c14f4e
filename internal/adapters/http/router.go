package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/vmelnikov/insurance-assistant/internal/core/domain"
	"github.com/vmelnikov/insurance-assistant/internal/core/ports"
	"github.com/vmelnikov/insurance-assistant/internal/observability/metrics"
)

const serviceName = "api"

type Router struct {
	chat    ports.ChatService
	index   ports.IndexProvider
	metrics *metrics.HTTPServerMetrics

	rateLimitRPS   int
	rateLimitBurst int
	maxInFlight    int
}

func NewRouter(
	chat ports.ChatService,
	index ports.IndexProvider,
	m *metrics.HTTPServerMetrics,
	rateLimitRPS, rateLimitBurst, maxInFlight int,
) *Router {
	return &Router{
		chat:           chat,
		index:          index,
		metrics:        m,
		rateLimitRPS:   rateLimitRPS,
		rateLimitBurst: rateLimitBurst,
		maxInFlight:    maxInFlight,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.Handle("/metrics", rt.metrics.Handler())
	mux.HandleFunc("/v1/chat/text", rt.chatText)
	mux.HandleFunc("/v1/chat/transcript", rt.chatTranscript)

	var handler http.Handler = mux
	handler = backpressureMiddleware(handler, rt.maxInFlight, 50*time.Millisecond)
	handler = rateLimitMiddleware(handler, rt.rateLimitRPS, rt.rateLimitBurst)
	handler = rt.metrics.Middleware(serviceName, handler)
	handler = accessLogMiddleware(handler)
	handler = requestIDMiddleware(handler)
	return handler
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	indexState := "unavailable"
	chunks := 0
	if searcher := rt.index.Current(); searcher != nil {
		indexState = "ready"
		chunks = searcher.Len()
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"status":       "ok",
		"index":        indexState,
		"index_chunks": chunks,
	})
}

type chatTextRequest struct {
	Message    string `json:"message"`
	SessionID  string `json:"session_id"`
	PolicyType string `json:"policy_type"`
	Region     string `json:"region"`
}

type chatTranscriptRequest struct {
	Transcript string `json:"transcript"`
	SessionID  string `json:"session_id"`
	PolicyType string `json:"policy_type"`
	Region     string `json:"region"`
}

type sourceChunkDTO struct {
	PolicyID    string  `json:"policy_id"`
	PolicyType  string  `json:"policy_type"`
	ClauseType  string  `json:"clause_type"`
	TextSnippet string  `json:"text_snippet"`
	Score       float64 `json:"score"`
}

type chatResponse struct {
	Answer            string                    `json:"answer"`
	Mode              string                    `json:"mode"`
	UsedFallback      bool                      `json:"used_fallback"`
	PolicySuggestions []domain.PolicySuggestion `json:"policy_suggestions"`
	Sources           []sourceChunkDTO          `json:"sources"`
	SessionID         string                    `json:"session_id"`
}

func (rt *Router) chatText(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req chatTextRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	rt.serveChat(w, r, "/v1/chat/text", ports.ChatRequest{
		Message:    req.Message,
		SessionID:  req.SessionID,
		PolicyType: req.PolicyType,
		Region:     req.Region,
	})
}

// chatTranscript serves voice clients: speech-to-text happens upstream and
// only the transcript reaches the core, which treats it exactly like typed
// text.
func (rt *Router) chatTranscript(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
		return
	}

	var req chatTranscriptRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	rt.serveChat(w, r, "/v1/chat/transcript", ports.ChatRequest{
		Message:    req.Transcript,
		SessionID:  req.SessionID,
		PolicyType: req.PolicyType,
		Region:     req.Region,
	})
}

func (rt *Router) serveChat(w http.ResponseWriter, r *http.Request, endpoint string, req ports.ChatRequest) {
	start := time.Now()

	result, err := rt.chat.HandleQuery(r.Context(), req)
	if err != nil {
		writeJSON(w, mapErrorToHTTPStatus(err), map[string]string{"error": safeErrorMessage(err)})
		return
	}

	rt.metrics.RecordChatObservation(serviceName, endpoint, string(result.Mode), len(result.Sources), len(result.Suggestions), time.Since(start))
	if result.UsedFallback {
		rt.metrics.RecordFallback(serviceName, result.FallbackReason)
	}

	writeJSON(w, http.StatusOK, toChatResponse(result))
}

func toChatResponse(result *domain.ChatResult) chatResponse {
	sources := make([]sourceChunkDTO, 0, len(result.Sources))
	for _, rc := range result.Sources {
		sources = append(sources, sourceChunkDTO{
			PolicyID:    rc.Chunk.PolicyID,
			PolicyType:  rc.Chunk.PolicyType,
			ClauseType:  string(rc.Chunk.ClauseType),
			TextSnippet: snippet(rc.Chunk.Text, 200),
			Score:       rc.Score,
		})
	}

	suggestions := result.Suggestions
	if suggestions == nil {
		suggestions = []domain.PolicySuggestion{}
	}

	return chatResponse{
		Answer:            result.Answer,
		Mode:              string(result.Mode),
		UsedFallback:      result.UsedFallback,
		PolicySuggestions: suggestions,
		Sources:           sources,
		SessionID:         result.SessionID,
	}
}

func snippet(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return strings.TrimSpace(string(runes[:limit])) + "..."
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}
