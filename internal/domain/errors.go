package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrMissingQuestion signals an empty or whitespace-only question.
	ErrMissingQuestion = errors.New("missing question")
	// ErrUnsupportedLanguage signals a language code with no registered corpus source.
	ErrUnsupportedLanguage = errors.New("unsupported language")
	// ErrCorpusUnavailable signals a corpus that is missing or cannot be decoded.
	ErrCorpusUnavailable = errors.New("corpus unavailable")
	// ErrTranslationsUnavailable signals a missing or malformed QA translation document.
	ErrTranslationsUnavailable = errors.New("translations unavailable")
	// ErrEmbeddingService signals an embedding provider failure.
	ErrEmbeddingService = errors.New("embedding service error")
	// ErrGenerationService signals a chat completion provider failure.
	ErrGenerationService = errors.New("generation service error")
	// ErrFineTunedGeneration signals a failure of the primary-language persona model.
	// It wraps ErrGenerationService.
	ErrFineTunedGeneration = fmt.Errorf("fine-tuned model: %w", ErrGenerationService)
	// ErrVectorDimMismatch signals a vector dimension mismatch.
	ErrVectorDimMismatch = errors.New("vector dimension mismatch")
	// ErrZeroVector signals a vector with zero magnitude.
	ErrZeroVector = errors.New("zero vector")
)
