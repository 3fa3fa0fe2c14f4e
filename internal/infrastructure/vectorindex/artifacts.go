package vectorindex

import (
	"context"
	"encoding/gob"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmelnikov/insurance-assistant/internal/core/domain"
)

// ArtifactStore persists an index as two co-located files: a binary vector
// artifact and a JSON metadata artifact. Both carry the embedding model id;
// Load fails fast when either disagrees with the configured model, because a
// silently mismatched embedding space degrades ranking without any error.
type ArtifactStore struct {
	dir  string
	name string
}

func NewArtifactStore(dir, name string) *ArtifactStore {
	if name == "" {
		name = "policy_index"
	}
	return &ArtifactStore{dir: dir, name: name}
}

func (s *ArtifactStore) vectorPath() string {
	return filepath.Join(s.dir, s.name+".vec")
}

func (s *ArtifactStore) metadataPath() string {
	return filepath.Join(s.dir, s.name+".meta.json")
}

type vectorArtifact struct {
	ModelID string
	Dim     int
	Vectors [][]float32
}

type metadataArtifact struct {
	ModelID string         `json:"model_id"`
	Chunks  []domain.Chunk `json:"chunks"`
}

// Write persists vectors and chunk metadata in lock-step order. Both files
// are written to temp paths first and renamed, so a concurrent Load sees
// either the previous generation or the new one, never a torn pair.
func (s *ArtifactStore) Write(ctx context.Context, modelID string, vectors [][]float32, chunks []domain.Chunk) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(vectors) != len(chunks) {
		return fmt.Errorf("write artifacts: vectors/chunks length mismatch: %d != %d", len(vectors), len(chunks))
	}
	if len(vectors) == 0 {
		return domain.WrapError(domain.ErrEmptyCorpus, "write artifacts", errors.New("no chunks to persist"))
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}

	vec := vectorArtifact{ModelID: modelID, Dim: len(vectors[0]), Vectors: vectors}
	if err := writeAtomic(s.vectorPath(), func(f *os.File) error {
		return gob.NewEncoder(f).Encode(vec)
	}); err != nil {
		return fmt.Errorf("write vector artifact: %w", err)
	}

	meta := metadataArtifact{ModelID: modelID, Chunks: chunks}
	if err := writeAtomic(s.metadataPath(), func(f *os.File) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(meta)
	}); err != nil {
		return fmt.Errorf("write metadata artifact: %w", err)
	}
	return nil
}

// Load reconstructs the index from both artifacts. Missing or unreadable
// artifacts map to ErrIndexUnavailable so callers can degrade; a model id
// that differs from expectedModelID is rejected with ErrModelMismatch.
func (s *ArtifactStore) Load(ctx context.Context, expectedModelID string) (*FlatIndex, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	vecFile, err := os.Open(s.vectorPath())
	if err != nil {
		return nil, wrapUnavailable("open vector artifact", err)
	}
	defer vecFile.Close()

	var vec vectorArtifact
	if err := gob.NewDecoder(vecFile).Decode(&vec); err != nil {
		return nil, wrapUnavailable("decode vector artifact", err)
	}

	metaFile, err := os.Open(s.metadataPath())
	if err != nil {
		return nil, wrapUnavailable("open metadata artifact", err)
	}
	defer metaFile.Close()

	var meta metadataArtifact
	if err := json.NewDecoder(metaFile).Decode(&meta); err != nil {
		return nil, wrapUnavailable("decode metadata artifact", err)
	}

	if vec.ModelID != meta.ModelID {
		return nil, domain.WrapError(domain.ErrModelMismatch, "load artifacts",
			fmt.Errorf("vector artifact model %q != metadata model %q", vec.ModelID, meta.ModelID))
	}
	if expectedModelID != "" && vec.ModelID != expectedModelID {
		return nil, domain.WrapError(domain.ErrModelMismatch, "load artifacts",
			fmt.Errorf("artifact model %q != configured model %q", vec.ModelID, expectedModelID))
	}
	if len(vec.Vectors) != len(meta.Chunks) {
		return nil, wrapUnavailable("validate artifacts",
			fmt.Errorf("vector count %d != metadata count %d", len(vec.Vectors), len(meta.Chunks)))
	}

	return New(vec.ModelID, vec.Vectors, meta.Chunks)
}

func wrapUnavailable(operation string, err error) error {
	return domain.WrapError(domain.ErrIndexUnavailable, operation, err)
}

func writeAtomic(path string, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}
