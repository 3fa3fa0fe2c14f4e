package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/vmelnikov/insurance-assistant/internal/core/domain"
)

func TestEmbedderBatchKeepsOrder(t *testing.T) {
	var gotInput []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/embed" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var req struct {
			Input []string `json:"input"`
		}
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotInput = req.Input

		vectors := make([][]float32, len(req.Input))
		for i := range vectors {
			vectors[i] = []float32{float32(i), 1}
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"embeddings": vectors})
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "gen", "embed-model", time.Second, 256))
	vectors, err := embedder.Embed(context.Background(), []string{"first", "second", "third"})
	if err != nil {
		t.Fatalf("Embed() error = %v", err)
	}
	if len(vectors) != 3 {
		t.Fatalf("expected 3 vectors, got %d", len(vectors))
	}
	if vectors[2][0] != 2 {
		t.Fatalf("vector order not preserved")
	}
	if len(gotInput) != 3 || gotInput[0] != "first" {
		t.Fatalf("batch input not forwarded in order: %v", gotInput)
	}
}

func TestEmbedderRejectsCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"embeddings": [][]float32{{1}}})
	}))
	defer server.Close()

	embedder := NewEmbedder(New(server.URL, "gen", "embed-model", time.Second, 256))
	if _, err := embedder.Embed(context.Background(), []string{"a", "b"}); err == nil {
		t.Fatalf("expected error for vector count mismatch")
	}
}

func TestGeneratorSendsDeterministicOptions(t *testing.T) {
	var gotOptions map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]any
		_ = json.NewDecoder(r.Body).Decode(&req)
		gotOptions, _ = req["options"].(map[string]any)
		_ = json.NewEncoder(w).Encode(map[string]any{"response": "  answer text  "})
	}))
	defer server.Close()

	generator := NewGenerator(New(server.URL, "gen-model", "embed", time.Second, 512))
	answer, err := generator.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if answer != "answer text" {
		t.Fatalf("expected trimmed answer, got %q", answer)
	}
	if gotOptions["temperature"] != 0.0 {
		t.Fatalf("expected temperature 0, got %v", gotOptions["temperature"])
	}
	if gotOptions["num_predict"] != float64(512) {
		t.Fatalf("expected num_predict 512, got %v", gotOptions["num_predict"])
	}
}

func TestGeneratorReturnsTypedStatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "model overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	generator := NewGenerator(New(server.URL, "gen-model", "embed", time.Second, 512))
	_, err := generator.Generate(context.Background(), "prompt")
	if err == nil {
		t.Fatalf("expected error for 503")
	}
	class := ClassifyError(err)
	if !class.Retryable {
		t.Fatalf("expected 503 to classify as retryable: %v", err)
	}
	if !domain.IsKind(err, domain.ErrTemporary) {
		t.Fatalf("expected transient generate failure to carry the temporary kind: %v", err)
	}
}
