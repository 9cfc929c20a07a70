// Package fallback answers questions with a generative model when retrieval
// is bypassed or finds no confident match.
package fallback

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/gaiapet/clinicbot/internal/domain"
	"github.com/gaiapet/clinicbot/internal/logger"
)

// languagePlaceholder is replaced by the language code in the general prompt.
const languagePlaceholder = "%s"

// Config selects models and system prompts.
type Config struct {
	PrimaryLanguage string
	PrimaryModel    string
	PrimaryPrompt   string
	GeneralModel    string
	GeneralPrompt   string
}

// Responder generates answers through a chat completion provider.
type Responder struct {
	gen Generator
	cfg Config
}

// New creates a Responder.
func New(gen Generator, cfg Config) *Responder {
	return &Responder{gen: gen, cfg: cfg}
}

// Respond answers question in lang. The primary language goes to the fine-tuned
// persona model, every other language to the general model.
func (r *Responder) Respond(ctx context.Context, question, lang string) (string, error) {
	req := r.request(question, lang)

	res, err := r.gen.Complete(ctx, req)
	if err != nil {
		return "", fmt.Errorf("generate answer: %w", err)
	}
	domain.UsageFromContext(ctx).AddCompletionTokens(res.TotalTokens)

	logger.FromContext(ctx).Debug("Generated fallback answer",
		zap.String("language", lang),
		zap.String("model", req.Model),
		zap.Int("completion_tokens", res.CompletionTokens),
	)

	return strings.TrimSpace(res.Text), nil
}

func (r *Responder) request(question, lang string) domain.CompletionRequest {
	model, prompt := r.cfg.GeneralModel, strings.ReplaceAll(r.cfg.GeneralPrompt, languagePlaceholder, lang)
	if lang == r.cfg.PrimaryLanguage {
		model, prompt = r.cfg.PrimaryModel, r.cfg.PrimaryPrompt
	}
	return domain.CompletionRequest{
		Model: model,
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: prompt},
			{Role: domain.RoleUser, Content: question},
		},
	}
}
