package clinicbot

import (
	"context"
	"fmt"

	"github.com/gaiapet/clinicbot/internal/domain"
)

// Embedder converts text to a vector embedding.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// EmbeddingResult carries the embedding vector and token counts.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Generator produces a chat answer from a system prompt and a user question.
type Generator interface {
	Generate(ctx context.Context, model, systemPrompt, question string) (GenerationResult, error)
}

// GenerationResult carries the generated text and token usage.
type GenerationResult struct {
	Text        string
	TotalTokens int
}

// embedderAdapter wraps public Embedder to satisfy the ask use case.
type embedderAdapter struct {
	inner Embedder
}

func (a *embedderAdapter) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	r, err := a.inner.Embed(ctx, text)
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("%w: %w", domain.ErrEmbeddingService, err)
	}
	return domain.EmbeddingResult{
		Embedding:    r.Embedding,
		PromptTokens: r.PromptTokens,
		TotalTokens:  r.TotalTokens,
	}, nil
}

// generatorAdapter wraps public Generator to satisfy the fallback responder.
type generatorAdapter struct {
	inner Generator
}

func (a *generatorAdapter) Complete(
	ctx context.Context, req domain.CompletionRequest,
) (domain.CompletionResult, error) {
	var system, user string
	for _, m := range req.Messages {
		switch m.Role {
		case domain.RoleSystem:
			system = m.Content
		case domain.RoleUser:
			user = m.Content
		}
	}
	r, err := a.inner.Generate(ctx, req.Model, system, user)
	if err != nil {
		return domain.CompletionResult{}, fmt.Errorf("%w: %w", domain.ErrGenerationService, err)
	}
	return domain.CompletionResult{
		Text:        r.Text,
		Model:       req.Model,
		TotalTokens: r.TotalTokens,
	}, nil
}
