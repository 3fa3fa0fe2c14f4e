package usecase

import (
	"context"
	"errors"
	"testing"

	"github.com/vmelnikov/insurance-assistant/internal/core/domain"
)

func TestRetrieveReturnsEmptyWhenIndexUnavailable(t *testing.T) {
	r := NewRetriever(&fakeEmbedder{vector: []float32{1}}, &fakeIndexProvider{}, 5, 4, discardLogger())

	if r.Available() {
		t.Fatal("retriever should report unavailable with no published index")
	}
	if got := r.Retrieve(context.Background(), "health coverage", domain.SearchFilter{}); got != nil {
		t.Fatalf("expected nil results, got %d", len(got))
	}
}

func TestRetrieveReturnsEmptyOnEmbeddingFailure(t *testing.T) {
	provider := &fakeIndexProvider{searcher: &fakeSearcher{results: []domain.RetrievedChunk{
		retrieved("health_policy_1", "health", domain.ClauseCoverage, 0.9),
	}}}
	r := NewRetriever(&fakeEmbedder{failure: errors.New("embedder down")}, provider, 5, 4, discardLogger())

	if got := r.Retrieve(context.Background(), "health coverage", domain.SearchFilter{}); got != nil {
		t.Fatalf("expected nil results on embed failure, got %d", len(got))
	}
}

func TestRetrieveFilterCorrectness(t *testing.T) {
	provider := &fakeIndexProvider{searcher: &fakeSearcher{results: []domain.RetrievedChunk{
		retrieved("car_policy_1", "car", domain.ClauseCoverage, 0.95),
		retrieved("health_policy_1", "health", domain.ClauseCoverage, 0.90),
		retrieved("car_policy_2", "car", domain.ClauseLimit, 0.85),
		retrieved("health_policy_2", "health", domain.ClauseExclusion, 0.80),
		retrieved("bike_policy_1", "bike", domain.ClauseCoverage, 0.75),
	}}}
	r := NewRetriever(&fakeEmbedder{vector: []float32{1}}, provider, 2, 4, discardLogger())

	got := r.Retrieve(context.Background(), "coverage", domain.SearchFilter{PolicyType: "health"})
	if len(got) != 2 {
		t.Fatalf("got %d results, want 2", len(got))
	}
	for _, rc := range got {
		if rc.Chunk.PolicyType != "health" {
			t.Fatalf("filter leaked policy type %q", rc.Chunk.PolicyType)
		}
	}
	if got[0].Score < got[1].Score {
		t.Fatal("results not sorted best-first")
	}
}

func TestRetrieveOverfetchesOnlyWhenFiltered(t *testing.T) {
	many := make([]domain.RetrievedChunk, 0, 20)
	for i := 0; i < 20; i++ {
		many = append(many, retrieved("health_policy_1", "health", domain.ClauseGeneral, float64(20-i)/20))
	}
	provider := &fakeIndexProvider{searcher: &fakeSearcher{results: many}}
	r := NewRetriever(&fakeEmbedder{vector: []float32{1}}, provider, 3, 4, discardLogger())

	unfiltered := r.Retrieve(context.Background(), "coverage", domain.SearchFilter{})
	if len(unfiltered) != 3 {
		t.Fatalf("unfiltered search returned %d, want top-k 3", len(unfiltered))
	}

	filtered := r.Retrieve(context.Background(), "coverage", domain.SearchFilter{PolicyType: "health"})
	if len(filtered) != 3 {
		t.Fatalf("filtered search returned %d, want truncation to top-k 3", len(filtered))
	}
}
