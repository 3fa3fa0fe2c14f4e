package chunking

import (
	"strings"
	"testing"
)

func TestSplitShortTextSingleChunk(t *testing.T) {
	s := NewSplitter(500, 50)
	out := s.Split("short policy text")
	if len(out) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(out))
	}
	if out[0] != "short policy text" {
		t.Fatalf("unexpected chunk: %q", out[0])
	}
}

func TestSplitOverlapBetweenConsecutiveChunks(t *testing.T) {
	s := NewSplitter(100, 20)
	text := strings.Repeat("abcdefghij", 30)
	out := s.Split(text)
	if len(out) < 3 {
		t.Fatalf("expected several chunks, got %d", len(out))
	}
	for i := 1; i < len(out); i++ {
		tail := out[i-1][len(out[i-1])-20:]
		if !strings.HasPrefix(out[i], tail) {
			t.Fatalf("chunk %d does not overlap previous chunk", i)
		}
	}
}

func TestSplitFinalChunkMayBeShorter(t *testing.T) {
	s := NewSplitter(100, 0)
	text := strings.Repeat("x", 250)
	out := s.Split(text)
	if len(out) != 3 {
		t.Fatalf("expected 3 chunks, got %d", len(out))
	}
	if len(out[2]) != 50 {
		t.Fatalf("expected final chunk of 50, got %d", len(out[2]))
	}
}

func TestSplitEmptyTextYieldsNothing(t *testing.T) {
	s := NewSplitter(500, 50)
	if out := s.Split(""); out != nil {
		t.Fatalf("expected nil for empty text, got %v", out)
	}
	if out := s.Split("   \n\t "); out != nil {
		t.Fatalf("expected nil for whitespace text, got %v", out)
	}
}

func TestNewSplitterClampsDegenerateOverlap(t *testing.T) {
	s := NewSplitter(100, 100)
	if s.Overlap >= s.ChunkSize {
		t.Fatalf("overlap %d not clamped below chunk size %d", s.Overlap, s.ChunkSize)
	}
	text := strings.Repeat("y", 500)
	out := s.Split(text)
	if len(out) == 0 {
		t.Fatalf("expected chunks for degenerate overlap config")
	}
}
