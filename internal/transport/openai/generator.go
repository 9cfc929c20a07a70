package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/gaiapet/clinicbot/internal/domain"
	"github.com/gaiapet/clinicbot/internal/metrics"
)

// Generator is a chat completion provider using the OpenAI-compatible API.
// The model is chosen per request; Config.Model and Config.Dimensions are ignored.
type Generator struct {
	client  *openai.Client
	timeout time.Duration
	breaker *Breaker
	logger  *zap.Logger
}

// NewGenerator creates an OpenAI-compatible chat completion provider.
func NewGenerator(cfg *Config) *Generator {
	return &Generator{
		client:  newClient(cfg.APIKey, cfg.BaseURL),
		timeout: cfg.Timeout,
		breaker: cfg.Breaker,
		logger:  cfg.Logger,
	}
}

// Complete runs one chat completion. No retry, no streaming; failures are
// wrapped with domain.ErrGenerationService.
func (g *Generator) Complete(ctx context.Context, req domain.CompletionRequest) (domain.CompletionResult, error) {
	messages := make([]openai.ChatCompletionMessage, len(req.Messages))
	for i, m := range req.Messages {
		messages[i] = openai.ChatCompletionMessage{Role: string(m.Role), Content: m.Content}
	}

	if g.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.timeout)
		defer cancel()
	}

	start := time.Now()

	var resp openai.ChatCompletionResponse
	err := g.breaker.Execute(func() error {
		var callErr error
		resp, callErr = g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    req.Model,
			Messages: messages,
		})
		return callErr
	})

	duration := time.Since(start)

	if err != nil {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.KindGeneration, req.Model, "error").Inc()
		metrics.UpstreamErrorsTotal.WithLabelValues(metrics.KindGeneration, req.Model, errorType(err)).Inc()
		g.logger.Warn("Completion request failed",
			zap.String("model", req.Model),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return domain.CompletionResult{}, parseAPIError("completion", err, domain.ErrGenerationService)
	}

	if len(resp.Choices) == 0 {
		metrics.UpstreamRequestsTotal.WithLabelValues(metrics.KindGeneration, req.Model, "error").Inc()
		metrics.UpstreamErrorsTotal.WithLabelValues(metrics.KindGeneration, req.Model, "empty_response").Inc()
		return domain.CompletionResult{}, fmt.Errorf("no completion choices returned: %w", domain.ErrGenerationService)
	}

	metrics.UpstreamRequestsTotal.WithLabelValues(metrics.KindGeneration, req.Model, "success").Inc()
	metrics.UpstreamRequestDuration.WithLabelValues(metrics.KindGeneration, req.Model).Observe(duration.Seconds())
	metrics.UpstreamTokensTotal.WithLabelValues(metrics.KindGeneration, req.Model, "prompt").Add(float64(resp.Usage.PromptTokens))
	metrics.UpstreamTokensTotal.WithLabelValues(metrics.KindGeneration, req.Model, "completion").Add(float64(resp.Usage.CompletionTokens))

	g.logger.Debug("Completion request completed",
		zap.String("model", req.Model),
		zap.String("served_by", resp.Model),
		zap.Duration("duration", duration),
		zap.Int("total_tokens", resp.Usage.TotalTokens),
	)

	return domain.CompletionResult{
		Text:             resp.Choices[0].Message.Content,
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		TotalTokens:      resp.Usage.TotalTokens,
	}, nil
}
