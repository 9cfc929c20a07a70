package openai

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/gaiapet/clinicbot/internal/domain"
)

func TestGenerator_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}

		var body struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if body.Model != "gpt-4o" {
			t.Errorf("model = %q, want gpt-4o", body.Model)
		}
		if len(body.Messages) != 2 || body.Messages[0].Role != "system" || body.Messages[1].Role != "user" {
			t.Errorf("unexpected messages: %+v", body.Messages)
		}
		if body.Messages[1].Content != "Is chocolate toxic for dogs?" {
			t.Errorf("user content = %q", body.Messages[1].Content)
		}

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "chatcmpl-1",
			"object": "chat.completion",
			"model": "gpt-4o-2024-08-06",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": "  Yes, keep it away.  "}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 20, "completion_tokens": 5, "total_tokens": 25}
		}`))
	}))
	defer server.Close()

	gen := NewGenerator(&Config{APIKey: "test-key", BaseURL: server.URL, Logger: zap.NewNop()})

	res, err := gen.Complete(context.Background(), domain.CompletionRequest{
		Model: "gpt-4o",
		Messages: []domain.Message{
			{Role: domain.RoleSystem, Content: "You are a vet assistant."},
			{Role: domain.RoleUser, Content: "Is chocolate toxic for dogs?"},
		},
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if res.Text != "  Yes, keep it away.  " {
		t.Errorf("text = %q", res.Text)
	}
	if res.Model != "gpt-4o-2024-08-06" {
		t.Errorf("model = %q", res.Model)
	}
	if res.PromptTokens != 20 || res.CompletionTokens != 5 || res.TotalTokens != 25 {
		t.Errorf("usage = %+v", res)
	}
}

func TestGenerator_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"id":"x","object":"chat.completion","model":"m","choices":[]}`))
	}))
	defer server.Close()

	gen := NewGenerator(&Config{APIKey: "test-key", BaseURL: server.URL, Logger: zap.NewNop()})
	_, err := gen.Complete(context.Background(), domain.CompletionRequest{Model: "m"})
	if !errors.Is(err, domain.ErrGenerationService) {
		t.Fatalf("expected ErrGenerationService, got %v", err)
	}
}

func TestGenerator_APIError(t *testing.T) {
	server := rateLimitServer(nil)
	defer server.Close()

	gen := NewGenerator(&Config{APIKey: "test-key", BaseURL: server.URL, Logger: zap.NewNop()})
	_, err := gen.Complete(context.Background(), domain.CompletionRequest{
		Model:    "m",
		Messages: []domain.Message{{Role: domain.RoleUser, Content: "hi"}},
	})
	if !errors.Is(err, domain.ErrGenerationService) {
		t.Fatalf("expected ErrGenerationService, got %v", err)
	}
}
