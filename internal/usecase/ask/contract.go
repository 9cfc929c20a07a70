package ask

import (
	"context"

	"github.com/gaiapet/clinicbot/internal/domain"
)

// CorpusLoader returns the reference corpus for a language.
type CorpusLoader interface {
	Load(ctx context.Context, language string) (*domain.Corpus, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// TranslationLoader returns the QA translation document.
type TranslationLoader interface {
	Load(ctx context.Context) (*domain.TranslationSet, error)
}

// Responder generates an answer when retrieval is bypassed or misses.
type Responder interface {
	Respond(ctx context.Context, question, lang string) (string, error)
}
