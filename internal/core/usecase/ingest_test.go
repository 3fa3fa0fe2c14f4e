package usecase

import (
	"context"
	"strings"
	"testing"

	"github.com/vmelnikov/insurance-assistant/internal/core/domain"
)

func TestBuildIndexChunksAndPersists(t *testing.T) {
	source := &fakeSource{docs: []domain.PolicyDocument{
		{
			PolicyID:   "health_policy_1",
			PolicyType: "health",
			Region:     "US",
			Title:      "Comprehensive Health Insurance Plan",
			Text:       strings.Repeat("Covers hospitalization and surgery. ", 5),
		},
		{
			PolicyID:   "car_policy_1",
			PolicyType: "car",
			Region:     "US",
			Title:      "Full Coverage Auto Insurance",
			Text:       "This policy does not cover racing events. Exclusions apply.",
		},
	}}
	writer := &fakeIndexWriter{}
	svc := NewIngestService(source, &fakeChunker{size: 60}, &fakeEmbedder{vector: []float32{0.1, 0.2}}, writer, discardLogger())

	count, err := svc.BuildIndex(context.Background())
	if err != nil {
		t.Fatalf("BuildIndex: %v", err)
	}
	if count == 0 || count != len(writer.chunks) {
		t.Fatalf("reported %d chunks, writer got %d", count, len(writer.chunks))
	}
	if len(writer.vectors) != len(writer.chunks) {
		t.Fatalf("vectors and chunks out of lock-step: %d vs %d", len(writer.vectors), len(writer.chunks))
	}
	if writer.modelID != "fake/embedder" {
		t.Fatalf("model id = %q", writer.modelID)
	}

	first := writer.chunks[0]
	if first.ChunkID != "health_policy_1_chunk_0" || first.ChunkIndex != 0 {
		t.Fatalf("unexpected first chunk identity: %+v", first)
	}
	if first.PolicyType != "health" || first.Region != "US" {
		t.Fatalf("chunk did not inherit document metadata: %+v", first)
	}

	// Per-document chunk indexes restart at zero.
	sawCarZero := false
	for _, c := range writer.chunks {
		if c.PolicyID == "car_policy_1" && c.ChunkIndex == 0 {
			sawCarZero = true
		}
	}
	if !sawCarZero {
		t.Fatal("second document's chunk_index does not restart at zero")
	}
}

func TestBuildIndexClauseTagging(t *testing.T) {
	cases := []struct {
		text string
		want domain.ClauseType
	}{
		{"This policy does not cover pre-existing conditions.", domain.ClauseExclusion},
		{"The maximum annual payout is limited to 50000 EUR.", domain.ClauseLimit},
		{"Hospitalization and surgery are covered in full.", domain.ClauseCoverage},
		{"Please read this document carefully before signing.", domain.ClauseGeneral},
	}
	for _, tc := range cases {
		if got := classifyClause(tc.text); got != tc.want {
			t.Fatalf("classifyClause(%q) = %q, want %q", tc.text, got, tc.want)
		}
	}
}

func TestBuildIndexEmptyCorpusFails(t *testing.T) {
	source := &fakeSource{docs: []domain.PolicyDocument{
		{PolicyID: "blank", PolicyType: "health", Text: ""},
	}}
	svc := NewIngestService(source, &fakeChunker{}, &fakeEmbedder{vector: []float32{1}}, &fakeIndexWriter{}, discardLogger())

	_, err := svc.BuildIndex(context.Background())
	if err == nil || !domain.IsKind(err, domain.ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
}
