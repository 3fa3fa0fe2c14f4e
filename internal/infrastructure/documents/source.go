package documents

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/vmelnikov/insurance-assistant/internal/core/domain"
)

// DirectorySource loads policy documents from a flat directory. JSON files
// carry their own metadata (the canonical policy format); PDF and plain-text
// files get metadata inferred from the filename. An unreadable or empty
// document is skipped with a warning so one bad file cannot abort ingestion.
type DirectorySource struct {
	dir    string
	onSkip func()
}

type Option func(*DirectorySource)

// WithSkipObserver registers a callback invoked once per skipped document.
func WithSkipObserver(fn func()) Option {
	return func(s *DirectorySource) { s.onSkip = fn }
}

func NewDirectorySource(dir string, opts ...Option) *DirectorySource {
	s := &DirectorySource{dir: dir}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *DirectorySource) skipped() {
	if s.onSkip != nil {
		s.onSkip()
	}
}

func (s *DirectorySource) Load(ctx context.Context) ([]domain.PolicyDocument, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read document dir %s: %w", s.dir, err)
	}

	// os.ReadDir sorts by filename, which fixes document order (and with it
	// chunk ordinals) across rebuilds.
	out := make([]domain.PolicyDocument, 0, len(entries))
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}

		path := filepath.Join(s.dir, entry.Name())
		doc, err := loadOne(path)
		if err != nil {
			slog.Warn("skip_unreadable_document", "path", path, "error", err)
			s.skipped()
			continue
		}
		if strings.TrimSpace(doc.Text) == "" {
			slog.Warn("skip_empty_document", "path", path)
			s.skipped()
			continue
		}
		out = append(out, doc)
	}
	return out, nil
}

func loadOne(path string) (domain.PolicyDocument, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return loadJSON(path)
	case ".pdf":
		return loadPDF(path)
	case ".txt", ".md":
		return loadText(path)
	default:
		return domain.PolicyDocument{}, fmt.Errorf("unsupported document type %s", filepath.Ext(path))
	}
}

func loadJSON(path string) (domain.PolicyDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.PolicyDocument{}, err
	}

	var doc domain.PolicyDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return domain.PolicyDocument{}, fmt.Errorf("parse policy json: %w", err)
	}
	applyDefaults(&doc, path)
	return doc, nil
}

func loadPDF(path string) (domain.PolicyDocument, error) {
	file, reader, err := pdf.Open(path)
	if err != nil {
		return domain.PolicyDocument{}, fmt.Errorf("open pdf: %w", err)
	}
	defer file.Close()

	plain, err := reader.GetPlainText()
	if err != nil {
		return domain.PolicyDocument{}, fmt.Errorf("extract pdf text: %w", err)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(plain); err != nil {
		return domain.PolicyDocument{}, fmt.Errorf("read pdf text: %w", err)
	}

	doc := domain.PolicyDocument{Text: buf.String()}
	applyDefaults(&doc, path)
	return doc, nil
}

func loadText(path string) (domain.PolicyDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.PolicyDocument{}, err
	}
	doc := domain.PolicyDocument{Text: string(data)}
	applyDefaults(&doc, path)
	return doc, nil
}

func applyDefaults(doc *domain.PolicyDocument, path string) {
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	if doc.PolicyID == "" {
		doc.PolicyID = stem
	}
	if doc.PolicyType == "" {
		doc.PolicyType = inferPolicyType(stem)
	}
	if doc.Region == "" {
		doc.Region = "global"
	}
	if doc.Title == "" {
		doc.Title = strings.ReplaceAll(stem, "_", " ")
	}
}

func inferPolicyType(stem string) string {
	lower := strings.ToLower(stem)
	switch {
	case strings.Contains(lower, "health"):
		return "health"
	case strings.Contains(lower, "car") || strings.Contains(lower, "auto"):
		return "car"
	case strings.Contains(lower, "bike") || strings.Contains(lower, "motorcycle"):
		return "bike"
	default:
		return "unknown"
	}
}
