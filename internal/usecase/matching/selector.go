// Package matching finds the reference question closest to a query embedding.
package matching

import (
	"context"
	"errors"

	"go.uber.org/zap"

	"github.com/gaiapet/clinicbot/internal/domain"
	"github.com/gaiapet/clinicbot/internal/domain/similarity"
	"github.com/gaiapet/clinicbot/internal/logger"
	"github.com/gaiapet/clinicbot/internal/metrics"
)

// Skip reasons used as the "reason" metric label.
const (
	reasonMissingEmbedding  = "missing_embedding"
	reasonDimensionMismatch = "dimension_mismatch"
	reasonZeroVector        = "zero_vector"
	reasonInvalidScore      = "invalid_score"
)

// Select returns the entry with the highest cosine similarity to query.
// Entries without an embedding or that cannot be scored are skipped.
// A later entry replaces the best only with a strictly greater score.
func Select(ctx context.Context, query []float32, corpus *domain.Corpus) domain.MatchResult {
	if len(query) == 0 || corpus.Len() == 0 {
		return domain.MatchResult{}
	}

	log := logger.FromContext(ctx)
	lang := corpus.Language

	var best domain.MatchResult
	for i := range corpus.Entries {
		entry := &corpus.Entries[i]
		if !entry.HasEmbedding() {
			metrics.MatchSkippedEntriesTotal.WithLabelValues(lang, reasonMissingEmbedding).Inc()
			continue
		}

		score, err := similarity.Cosine(query, entry.Embedding)
		if err != nil {
			metrics.MatchSkippedEntriesTotal.WithLabelValues(lang, skipReason(err)).Inc()
			log.Warn("Skipping reference entry",
				zap.String("language", lang),
				zap.String("id_question", entry.QuestionID),
				zap.Int("index", i),
				zap.Error(err),
			)
			continue
		}

		if !best.Found || score > best.Score {
			best = domain.MatchResult{QuestionID: entry.QuestionID, Score: score, Found: true}
		}
	}

	if best.Found {
		metrics.MatchScore.WithLabelValues(lang).Observe(best.Score)
	}
	return best
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrVectorDimMismatch):
		return reasonDimensionMismatch
	case errors.Is(err, domain.ErrZeroVector):
		return reasonZeroVector
	default:
		return reasonInvalidScore
	}
}
