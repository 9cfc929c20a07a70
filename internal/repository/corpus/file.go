// Package corpus loads the per-language reference corpora used for question matching.
package corpus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/parquet-go/parquet-go"

	"github.com/gaiapet/clinicbot/internal/domain"
)

// FileSource reads corpora from parquet or JSON files, one file per language.
type FileSource struct {
	paths map[string]string
}

// NewFileSource creates a file-backed source. paths maps language code to file path.
func NewFileSource(paths map[string]string) *FileSource {
	cp := make(map[string]string, len(paths))
	for lang, p := range paths {
		cp[lang] = p
	}
	return &FileSource{paths: cp}
}

// Load reads and decodes the corpus file registered for the language.
func (s *FileSource) Load(_ context.Context, language string) (*domain.Corpus, error) {
	path, ok := s.paths[language]
	if !ok || path == "" {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedLanguage, language)
	}

	path = filepath.Clean(path)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: no embedding data for language %q", domain.ErrCorpusUnavailable, language)
		}
		return nil, fmt.Errorf("%w: stat %s: %w", domain.ErrCorpusUnavailable, path, err)
	}

	var (
		entries []domain.ReferenceEntry
		err     error
	)
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".parquet":
		entries, err = readParquet(path)
	case ".json":
		entries, err = readJSON(path)
	default:
		err = fmt.Errorf("unsupported corpus format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrCorpusUnavailable, path, err)
	}

	return domain.NewCorpus(language, entries), nil
}


func readParquet(path string) ([]domain.ReferenceEntry, error) {
	rows, err := parquet.ReadFile[parquetRow](path)
	if err != nil {
		return nil, fmt.Errorf("read parquet: %w", err)
	}
	entries := make([]domain.ReferenceEntry, len(rows))
	for i, r := range rows {
		entries[i] = domain.ReferenceEntry{
			QuestionID: r.QuestionID,
			Text:       r.Question,
			Embedding:  r.Embedding,
		}
	}
	return entries, nil
}

func readJSON(path string) ([]domain.ReferenceEntry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read json: %w", err)
	}
	var rows []jsonRow
	if err := json.Unmarshal(data, &rows); err != nil {
		return nil, fmt.Errorf("decode json: %w", err)
	}
	entries := make([]domain.ReferenceEntry, len(rows))
	for i, r := range rows {
		entries[i] = domain.ReferenceEntry{
			QuestionID: string(r.QuestionID),
			Text:       r.Question,
			Embedding:  r.Embedding,
		}
	}
	return entries, nil
}
