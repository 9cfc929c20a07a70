package ask

import (
	"context"

	"github.com/gaiapet/clinicbot/internal/domain"
)

// --- Mocks ---

type mockCorpusLoader struct {
	corpora map[string]*domain.Corpus
	err     error
	calls   int
}

func (m *mockCorpusLoader) Load(_ context.Context, language string) (*domain.Corpus, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	c, ok := m.corpora[language]
	if !ok {
		return nil, domain.ErrUnsupportedLanguage
	}
	return c, nil
}

type mockEmbedder struct {
	vectors map[string][]float32
	err     error
	calls   int
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.calls++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vectors[text], TotalTokens: 3}, nil
}

type mockTranslations struct {
	set *domain.TranslationSet
	err error
}

func (m *mockTranslations) Load(_ context.Context) (*domain.TranslationSet, error) {
	return m.set, m.err
}

type fallbackCall struct {
	question string
	lang     string
}

type mockResponder struct {
	answer string
	err    error
	calls  []fallbackCall
}

func (m *mockResponder) Respond(_ context.Context, question, lang string) (string, error) {
	m.calls = append(m.calls, fallbackCall{question: question, lang: lang})
	return m.answer, m.err
}

// --- Fixtures ---

type fixture struct {
	corpus       *mockCorpusLoader
	embed        *mockEmbedder
	translations *mockTranslations
	fallback     *mockResponder
	svc          *Service
}

func newFixture() *fixture {
	f := &fixture{
		corpus: &mockCorpusLoader{corpora: map[string]*domain.Corpus{
			"en": domain.NewCorpus("en", []domain.ReferenceEntry{
				{QuestionID: "Q1", Text: "Opening hours?", Embedding: []float32{1, 0}},
				{QuestionID: "Q2", Text: "Do you vaccinate cats?", Embedding: []float32{3, 4}},
			}),
			"ja": domain.NewCorpus("ja", []domain.ReferenceEntry{
				{QuestionID: "Q1", Text: "営業時間は？", Embedding: []float32{1, 0}},
			}),
		}},
		embed: &mockEmbedder{vectors: map[string][]float32{
			"When do you open?":    {1, 0},
			"Can I bring a snake?": {0, -1},
			"営業時間を教えて":             {1, 0},
		}},
		translations: &mockTranslations{set: domain.NewTranslationSet([]domain.QATranslationRecord{
			{QuestionID: "Q1", Localized: map[string]domain.LocalizedAnswer{
				"en": {Question: "Opening hours?", Answer: "We open at 8am.", HasAnswer: true},
				"vi": {Question: "Giờ mở cửa?", Answer: "Chúng tôi mở cửa lúc 8 giờ.", HasAnswer: true},
			}},
			{QuestionID: "Q2", Localized: map[string]domain.LocalizedAnswer{
				"en": {Question: "Do you vaccinate cats?", Answer: "Yes.", HasAnswer: true},
			}},
		})},
		fallback: &mockResponder{answer: "generated"},
	}
	f.svc = New(f.corpus, f.embed, f.translations, f.fallback, Config{
		PrimaryLanguage: "vi",
		Languages:       []string{"en", "JA"},
		Threshold:       DefaultThreshold,
	})
	return f
}
