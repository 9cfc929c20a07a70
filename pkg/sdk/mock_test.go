package clinicbot

import (
	"context"
	"time"

	"github.com/gaiapet/clinicbot/internal/domain"
	healthuc "github.com/gaiapet/clinicbot/internal/usecase/health"
)

// --- askUseCase mock ---

type mockAskUC struct {
	askFn func(ctx context.Context, question, lang string) (domain.Answer, error)
}

func (m *mockAskUC) Ask(ctx context.Context, question, lang string) (domain.Answer, error) {
	return m.askFn(ctx, question, lang)
}

func (m *mockAskUC) Welcome(lang string) string { return domain.WelcomeMessage(lang) }

// --- healthUseCase mock ---

type mockHealthUC struct {
	report healthuc.Report
}

func (m *mockHealthUC) Check(_ context.Context) healthuc.Report { return m.report }

// --- public interface mocks ---

type mockEmbedder struct {
	vectors map[string][]float32
	err     error
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	if m.err != nil {
		return EmbeddingResult{}, m.err
	}
	return EmbeddingResult{Embedding: m.vectors[text], PromptTokens: 2, TotalTokens: 2}, nil
}

type generateCall struct {
	model, system, question string
}

type mockGenerator struct {
	text  string
	err   error
	calls []generateCall
}

func (m *mockGenerator) Generate(_ context.Context, model, system, question string) (GenerationResult, error) {
	m.calls = append(m.calls, generateCall{model: model, system: system, question: question})
	if m.err != nil {
		return GenerationResult{}, m.err
	}
	return GenerationResult{Text: m.text, TotalTokens: 9}, nil
}

// --- helpers ---

func testClient(ask askUseCase, health healthUseCase) *Client {
	return &Client{askSvc: ask, healthSvc: health}
}

func timeNow() time.Time { return time.Now() }
