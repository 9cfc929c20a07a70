package clinicbot

import "github.com/gaiapet/clinicbot/internal/domain"

// Sentinel errors re-exported from the domain layer.
// Use errors.Is() to check.
var (
	ErrMissingQuestion         = domain.ErrMissingQuestion
	ErrUnsupportedLanguage     = domain.ErrUnsupportedLanguage
	ErrCorpusUnavailable       = domain.ErrCorpusUnavailable
	ErrTranslationsUnavailable = domain.ErrTranslationsUnavailable
	ErrEmbeddingService        = domain.ErrEmbeddingService
	ErrGenerationService       = domain.ErrGenerationService
	ErrFineTunedGeneration     = domain.ErrFineTunedGeneration
)
