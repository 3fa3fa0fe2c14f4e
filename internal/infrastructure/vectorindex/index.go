package vectorindex

import (
	"fmt"
	"math"
	"sort"

	"github.com/vmelnikov/insurance-assistant/internal/core/domain"
)

// FlatIndex is an immutable in-process vector index: an exact-search flat
// list of unit-normalized vectors with a parallel chunk metadata slice.
// Ordinal position is the sole join key between the two slices; they are
// validated to stay in lock-step at construction and at artifact load.
type FlatIndex struct {
	modelID string
	dim     int
	vectors [][]float32
	chunks  []domain.Chunk
}

// New builds an index from vectors and their parallel chunk metadata.
// Vectors are normalized on ingestion so Search can use a plain dot product
// as cosine similarity.
func New(modelID string, vectors [][]float32, chunks []domain.Chunk) (*FlatIndex, error) {
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("vectors/chunks length mismatch: %d != %d", len(vectors), len(chunks))
	}
	if len(vectors) == 0 {
		return nil, domain.ErrEmptyCorpus
	}

	dim := len(vectors[0])
	normalized := make([][]float32, len(vectors))
	for i, vec := range vectors {
		if len(vec) != dim {
			return nil, fmt.Errorf("vector %d dimension %d, want %d", i, len(vec), dim)
		}
		normalized[i] = normalize(vec)
	}

	return &FlatIndex{
		modelID: modelID,
		dim:     dim,
		vectors: normalized,
		chunks:  chunks,
	}, nil
}

func (ix *FlatIndex) Len() int        { return len(ix.chunks) }
func (ix *FlatIndex) ModelID() string { return ix.modelID }
func (ix *FlatIndex) Dim() int        { return ix.dim }

// Chunk returns the metadata at ordinal i.
func (ix *FlatIndex) Chunk(i int) domain.Chunk { return ix.chunks[i] }

// Search returns up to limit chunks, best-first by cosine similarity.
// Equal scores keep corpus insertion order (stable sort over ordinals),
// so results are deterministic.
func (ix *FlatIndex) Search(queryVector []float32, limit int) []domain.RetrievedChunk {
	if limit <= 0 || len(queryVector) != ix.dim {
		return nil
	}

	query := normalize(queryVector)
	scored := make([]domain.RetrievedChunk, len(ix.chunks))
	for i, vec := range ix.vectors {
		scored[i] = domain.RetrievedChunk{
			Chunk: ix.chunks[i],
			Score: dot(query, vec),
		}
	}

	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})

	if limit > len(scored) {
		limit = len(scored)
	}
	return scored[:limit]
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func normalize(vec []float32) []float32 {
	var sum float64
	for _, v := range vec {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(vec))
	if norm == 0 {
		return out
	}
	for i, v := range vec {
		out[i] = float32(float64(v) / norm)
	}
	return out
}
