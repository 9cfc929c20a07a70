package fallback

import (
	"context"

	"github.com/gaiapet/clinicbot/internal/domain"
)

// Generator produces chat completions.
type Generator interface {
	Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error)
}
