// Package translation loads the QA translation document that holds the canonical
// per-language answers.
package translation

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/valyala/fastjson"
	"go.uber.org/zap"

	"github.com/gaiapet/clinicbot/internal/domain"
)

const fieldQuestionID = "id_question"

// Store reads the translation document from disk. Unless reload is set the parsed
// document is kept after the first successful read.
type Store struct {
	path   string
	reload bool
	logger *zap.Logger

	mu  sync.Mutex
	set *domain.TranslationSet
}

// NewStore creates a file-backed translation store.
func NewStore(path string, reloadPerRequest bool, logger *zap.Logger) *Store {
	return &Store{path: filepath.Clean(path), reload: reloadPerRequest, logger: logger}
}

// Load returns the translation set.
func (s *Store) Load(_ context.Context) (*domain.TranslationSet, error) {
	if s.reload {
		return s.read()
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.set != nil {
		return s.set, nil
	}
	set, err := s.read()
	if err != nil {
		return nil, err
	}
	s.set = set
	return set, nil
}

// Check verifies the document is readable.
func (s *Store) Check(ctx context.Context) error {
	_, err := s.Load(ctx)
	return err
}

func (s *Store) read() (*domain.TranslationSet, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: missing QA file %s", domain.ErrTranslationsUnavailable, s.path)
		}
		return nil, fmt.Errorf("%w: read %s: %w", domain.ErrTranslationsUnavailable, s.path, err)
	}

	records, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", domain.ErrTranslationsUnavailable, s.path, err)
	}

	s.logger.Debug("Translations loaded", zap.String("path", s.path), zap.Int("records", len(records)))
	return domain.NewTranslationSet(records), nil
}

// Parse decodes a QA translation document: an array of objects carrying
// id_question (string or number) plus one sub-object per language code.
func Parse(data []byte) ([]domain.QATranslationRecord, error) {
	var p fastjson.Parser
	root, err := p.ParseBytes(data)
	if err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}
	items, err := root.Array()
	if err != nil {
		return nil, fmt.Errorf("document root: %w", err)
	}

	records := make([]domain.QATranslationRecord, 0, len(items))
	for i, item := range items {
		obj, err := item.Object()
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}

		rec := domain.QATranslationRecord{
			QuestionID: scalarString(obj.Get(fieldQuestionID)),
			Localized:  make(map[string]domain.LocalizedAnswer),
		}
		obj.Visit(func(key []byte, v *fastjson.Value) {
			lang := string(key)
			if lang == fieldQuestionID || v.Type() != fastjson.TypeObject {
				return
			}
			sub, _ := v.Object()
			if sub.Len() == 0 {
				return
			}
			answer := sub.Get("answer")
			rec.Localized[lang] = domain.LocalizedAnswer{
				Question:  scalarString(sub.Get("question")),
				Answer:    scalarString(answer),
				HasAnswer: answer != nil,
			}
		})
		records = append(records, rec)
	}
	return records, nil
}

// scalarString renders a JSON value in string form: strings unquoted, null and
// absent values empty, everything else as raw JSON text.
func scalarString(v *fastjson.Value) string {
	if v == nil {
		return ""
	}
	switch v.Type() {
	case fastjson.TypeString:
		return string(v.GetStringBytes())
	case fastjson.TypeNull:
		return ""
	default:
		return string(v.MarshalTo(nil))
	}
}
