// Package ask orchestrates question answering: retrieval for corpus languages,
// generation for the primary language and for low-confidence matches.
package ask

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/unicode/norm"

	"github.com/gaiapet/clinicbot/internal/domain"
	"github.com/gaiapet/clinicbot/internal/logger"
	"github.com/gaiapet/clinicbot/internal/metrics"
	"github.com/gaiapet/clinicbot/internal/usecase/matching"
)

// DefaultThreshold is the minimum similarity for a canonical answer.
const DefaultThreshold = 0.8

// Config controls routing.
type Config struct {
	PrimaryLanguage string
	// Languages lists the retrieval languages. Other codes are rejected with
	// domain.ErrUnsupportedLanguage before any corpus or metric is touched.
	Languages []string
	Threshold float64
}

// Service answers questions.
type Service struct {
	corpus       CorpusLoader
	embed        Embedder
	translations TranslationLoader
	fallback     Responder
	retrieval    map[string]struct{}
	cfg          Config
}

// New creates an ask service.
func New(
	corpus CorpusLoader, embed Embedder, translations TranslationLoader, fallback Responder, cfg Config,
) *Service {
	retrieval := make(map[string]struct{}, len(cfg.Languages))
	for _, code := range cfg.Languages {
		retrieval[domain.NormalizeLanguage(code)] = struct{}{}
	}
	return &Service{
		corpus:       corpus,
		embed:        embed,
		translations: translations,
		fallback:     fallback,
		retrieval:    retrieval,
		cfg:          cfg,
	}
}

// Ask answers question in lang.
func (s *Service) Ask(ctx context.Context, question, lang string) (domain.Answer, error) {
	question = strings.TrimSpace(norm.NFC.String(question))
	if question == "" {
		return domain.Answer{}, domain.ErrMissingQuestion
	}
	lang = domain.NormalizeLanguage(lang)
	if lang == "" {
		lang = domain.DefaultLanguage
	}
	ctx = logger.WithFields(ctx, zap.String("language", lang))

	if lang == s.cfg.PrimaryLanguage {
		return s.generate(ctx, question, lang, metrics.RoutePrimary)
	}
	if _, ok := s.retrieval[lang]; !ok {
		return domain.Answer{}, fmt.Errorf("language %q: %w", lang, domain.ErrUnsupportedLanguage)
	}

	corpus, err := s.corpus.Load(ctx, lang)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("load corpus: %w", err)
	}

	emb, err := s.embed.Embed(ctx, question)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("embed question: %w", err)
	}
	domain.UsageFromContext(ctx).AddEmbeddingTokens(emb.TotalTokens)

	match := matching.Select(ctx, emb.Embedding, corpus)

	logger.FromContext(ctx).Debug("Best reference match",
		zap.Bool("found", match.Found),
		zap.String("id_question", match.QuestionID),
		zap.Float64("score", match.Score),
		zap.Int("corpus_size", corpus.Len()),
	)

	if !match.Found || match.Score < s.cfg.Threshold {
		return s.generate(ctx, question, lang, metrics.RouteFallback)
	}

	set, err := s.translations.Load(ctx)
	if err != nil {
		return domain.Answer{}, fmt.Errorf("load translations: %w", err)
	}
	res := set.Resolve(match.QuestionID, lang)
	if res.Status != domain.AnswerFound {
		logger.FromContext(ctx).Warn("Matched question has no translated answer",
			zap.String("id_question", match.QuestionID),
			zap.Stringer("status", res.Status),
		)
	}

	metrics.AnswersTotal.WithLabelValues(lang, metrics.RouteMatched).Inc()
	return domain.Answer{
		Matched:    true,
		QuestionID: match.QuestionID,
		Score:      roundScore(match.Score),
		Text:       res.Answer,
	}, nil
}

// Welcome returns the greeting for lang, English for unknown codes.
func (s *Service) Welcome(lang string) string {
	return domain.WelcomeMessage(lang)
}

func (s *Service) generate(ctx context.Context, question, lang, route string) (domain.Answer, error) {
	text, err := s.fallback.Respond(ctx, question, lang)
	if err != nil {
		if route == metrics.RoutePrimary && errors.Is(err, domain.ErrGenerationService) {
			return domain.Answer{}, fmt.Errorf("persona answer: %w: %w", domain.ErrFineTunedGeneration, err)
		}
		return domain.Answer{}, fmt.Errorf("fallback answer: %w", err)
	}
	metrics.AnswersTotal.WithLabelValues(lang, route).Inc()
	return domain.Answer{Text: text}, nil
}

func roundScore(v float64) float64 {
	return math.Round(v*1e4) / 1e4
}
