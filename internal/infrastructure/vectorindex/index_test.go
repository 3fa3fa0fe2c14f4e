package vectorindex

import (
	"context"
	"testing"

	"github.com/vmelnikov/insurance-assistant/internal/core/domain"
)

func testChunks(n int) []domain.Chunk {
	out := make([]domain.Chunk, n)
	for i := range out {
		out[i] = domain.Chunk{
			ChunkID:    string(rune('a' + i)),
			Text:       "chunk",
			PolicyID:   "health_policy_1",
			PolicyType: "health",
			Region:     "US",
			ClauseType: domain.ClauseGeneral,
			ChunkIndex: i,
		}
	}
	return out
}

func TestNewRejectsLockStepViolation(t *testing.T) {
	_, err := New("model-a", [][]float32{{1, 0}}, testChunks(2))
	if err == nil {
		t.Fatalf("expected error for vectors/chunks length mismatch")
	}
}

func TestNewRejectsEmptyCorpus(t *testing.T) {
	_, err := New("model-a", nil, nil)
	if !domain.IsKind(err, domain.ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
}

func TestSearchReturnsBestFirst(t *testing.T) {
	vectors := [][]float32{
		{0, 1},   // orthogonal to query
		{1, 0},   // exact match
		{1, 0.2}, // close
	}
	ix, err := New("model-a", vectors, testChunks(3))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got := ix.Search([]float32{1, 0}, 3)
	if len(got) != 3 {
		t.Fatalf("expected 3 results, got %d", len(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Score > got[i-1].Score {
			t.Fatalf("results not sorted best-first at %d: %f > %f", i, got[i].Score, got[i-1].Score)
		}
	}
	if got[0].Chunk.ChunkIndex != 1 {
		t.Fatalf("expected exact-match chunk first, got ordinal %d", got[0].Chunk.ChunkIndex)
	}
}

func TestSearchTieBreakKeepsInsertionOrder(t *testing.T) {
	// All vectors identical: every score ties, so corpus order must hold.
	vectors := [][]float32{{1, 0}, {1, 0}, {1, 0}, {1, 0}}
	ix, err := New("model-a", vectors, testChunks(4))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	got := ix.Search([]float32{1, 0}, 4)
	for i, rc := range got {
		if rc.Chunk.ChunkIndex != i {
			t.Fatalf("tie-break broke insertion order: position %d has ordinal %d", i, rc.Chunk.ChunkIndex)
		}
	}
}

func TestSearchTruncatesToLimit(t *testing.T) {
	vectors := [][]float32{{1, 0}, {0, 1}, {1, 1}}
	ix, err := New("model-a", vectors, testChunks(3))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if got := ix.Search([]float32{1, 0}, 2); len(got) != 2 {
		t.Fatalf("expected 2 results, got %d", len(got))
	}
	if got := ix.Search([]float32{1, 0}, 0); got != nil {
		t.Fatalf("expected nil for limit=0")
	}
}

func TestArtifactRoundTripPreservesLockStep(t *testing.T) {
	dir := t.TempDir()
	store := NewArtifactStore(dir, "policy_index")
	vectors := [][]float32{{1, 0}, {0, 1}}
	chunks := testChunks(2)

	if err := store.Write(context.Background(), "model-a", vectors, chunks); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	ix, err := store.Load(context.Background(), "model-a")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if ix.Len() != len(chunks) {
		t.Fatalf("expected %d chunks after reload, got %d", len(chunks), ix.Len())
	}
	for i := 0; i < ix.Len(); i++ {
		if ix.Chunk(i).ChunkID != chunks[i].ChunkID {
			t.Fatalf("ordinal %d maps to %q, want %q", i, ix.Chunk(i).ChunkID, chunks[i].ChunkID)
		}
	}
}

func TestLoadFailsFastOnModelMismatch(t *testing.T) {
	dir := t.TempDir()
	store := NewArtifactStore(dir, "policy_index")
	if err := store.Write(context.Background(), "model-a", [][]float32{{1, 0}}, testChunks(1)); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	_, err := store.Load(context.Background(), "model-b")
	if !domain.IsKind(err, domain.ErrModelMismatch) {
		t.Fatalf("expected ErrModelMismatch, got %v", err)
	}
}

func TestLoadMissingArtifactsIsUnavailable(t *testing.T) {
	store := NewArtifactStore(t.TempDir(), "policy_index")
	_, err := store.Load(context.Background(), "model-a")
	if !domain.IsKind(err, domain.ErrIndexUnavailable) {
		t.Fatalf("expected ErrIndexUnavailable, got %v", err)
	}
}

func TestWriteRejectsEmptyCorpus(t *testing.T) {
	store := NewArtifactStore(t.TempDir(), "policy_index")
	err := store.Write(context.Background(), "model-a", nil, nil)
	if !domain.IsKind(err, domain.ErrEmptyCorpus) {
		t.Fatalf("expected ErrEmptyCorpus, got %v", err)
	}
}

func TestHolderPublishSwapsGenerations(t *testing.T) {
	holder := NewHolder()
	if holder.Current() != nil {
		t.Fatalf("expected nil before first publish")
	}

	first, err := New("model-a", [][]float32{{1, 0}}, testChunks(1))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	holder.Publish(first)
	if got := holder.Current(); got == nil || got.Len() != 1 {
		t.Fatalf("expected first generation visible")
	}

	second, err := New("model-a", [][]float32{{1, 0}, {0, 1}}, testChunks(2))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	holder.Publish(second)
	if got := holder.Current(); got == nil || got.Len() != 2 {
		t.Fatalf("expected second generation after swap")
	}
}
