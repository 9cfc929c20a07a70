package openai

import (
	"errors"
	"testing"
	"time"
)

func TestBreaker_NilPassesThrough(t *testing.T) {
	var b *Breaker
	if b != NewBreaker("off", BreakerConfig{}) {
		t.Fatal("zero MaxFailures should disable the breaker")
	}

	want := errors.New("boom")
	for range 5 {
		if err := b.Execute(func() error { return want }); !errors.Is(err, want) {
			t.Fatalf("expected passthrough error, got %v", err)
		}
	}
	if b.State() != "disabled" {
		t.Errorf("state = %q", b.State())
	}
}

func TestBreaker_OpensAndRejects(t *testing.T) {
	b := NewBreaker("test", BreakerConfig{MaxFailures: 1, OpenTimeout: time.Minute})

	calls := 0
	fail := func() error {
		calls++
		return errors.New("upstream down")
	}

	if err := b.Execute(fail); errors.Is(err, ErrBreakerOpen) {
		t.Fatal("first failure should reach upstream")
	}
	if err := b.Execute(fail); !errors.Is(err, ErrBreakerOpen) {
		t.Fatalf("expected ErrBreakerOpen, got %v", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
	if b.State() != "open" {
		t.Errorf("state = %q, want open", b.State())
	}
}
