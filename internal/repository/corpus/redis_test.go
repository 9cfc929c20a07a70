package corpus

import (
	"context"
	"errors"
	"testing"

	"github.com/gaiapet/clinicbot/internal/domain"
)

func TestRedisSource_SeedThenLoadKeepsOrder(t *testing.T) {
	store := newMemHashStore()
	src := NewRedisSource(store, "clinicbot:", []string{"en"})

	entries := sampleEntries()
	// Twelve entries so lexical key order (0, 1, 10, 11, 2, ...) differs from seq order.
	for i := 0; i < 9; i++ {
		entries = append(entries, domain.ReferenceEntry{QuestionID: "X", Embedding: []float32{float32(i), 1, 0}})
	}

	n, err := Seed(context.Background(), store, src, domain.NewCorpus("en", entries))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	if n != len(entries) {
		t.Fatalf("seeded %d entries, want %d", n, len(entries))
	}

	c, err := src.Load(context.Background(), "en")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Len() != len(entries) {
		t.Fatalf("loaded %d entries, want %d", c.Len(), len(entries))
	}
	for i, e := range c.Entries {
		if e.QuestionID != entries[i].QuestionID || e.Text != entries[i].Text {
			t.Fatalf("entry %d = %+v, want %+v", i, e, entries[i])
		}
		if len(e.Embedding) != len(entries[i].Embedding) {
			t.Fatalf("entry %d embedding length %d, want %d", i, len(e.Embedding), len(entries[i].Embedding))
		}
	}
	if c.Entries[2].HasEmbedding() {
		t.Error("entry without vector should stay without vector")
	}
}

func TestSeed_ReplacesPreviousCorpus(t *testing.T) {
	store := newMemHashStore()
	src := NewRedisSource(store, "clinicbot:", []string{"en"})

	if _, err := Seed(context.Background(), store, src, domain.NewCorpus("en", sampleEntries())); err != nil {
		t.Fatal(err)
	}
	smaller := []domain.ReferenceEntry{{QuestionID: "only", Embedding: []float32{1}}}
	if _, err := Seed(context.Background(), store, src, domain.NewCorpus("en", smaller)); err != nil {
		t.Fatal(err)
	}

	c, err := src.Load(context.Background(), "en")
	if err != nil {
		t.Fatal(err)
	}
	if c.Len() != 1 || c.Entries[0].QuestionID != "only" {
		t.Fatalf("expected previous corpus to be replaced, got %+v", c.Entries)
	}
}

func TestSeed_WriteError(t *testing.T) {
	store := newMemHashStore()
	store.setErr = errors.New("READONLY")
	src := NewRedisSource(store, "clinicbot:", []string{"en"})

	if _, err := Seed(context.Background(), store, src, domain.NewCorpus("en", sampleEntries())); err == nil {
		t.Fatal("expected error")
	}
}

func TestRedisSource_UnsupportedLanguage(t *testing.T) {
	src := NewRedisSource(newMemHashStore(), "clinicbot:", []string{"en"})
	_, err := src.Load(context.Background(), "ja")
	if !errors.Is(err, domain.ErrUnsupportedLanguage) {
		t.Fatalf("expected ErrUnsupportedLanguage, got %v", err)
	}
}

func TestRedisSource_EmptyIsUnavailable(t *testing.T) {
	src := NewRedisSource(newMemHashStore(), "clinicbot:", []string{"en"})
	_, err := src.Load(context.Background(), "en")
	if !errors.Is(err, domain.ErrCorpusUnavailable) {
		t.Fatalf("expected ErrCorpusUnavailable, got %v", err)
	}
}

func TestRedisSource_StoreErrors(t *testing.T) {
	t.Run("scan", func(t *testing.T) {
		store := newMemHashStore()
		store.scanErr = errors.New("conn refused")
		_, err := NewRedisSource(store, "p:", []string{"en"}).Load(context.Background(), "en")
		if !errors.Is(err, domain.ErrCorpusUnavailable) {
			t.Fatalf("expected ErrCorpusUnavailable, got %v", err)
		}
	})

	t.Run("hgetall", func(t *testing.T) {
		store := newMemHashStore()
		store.hashes["p:corpus:en:0"] = map[string]string{"id_question": "Q1", "seq": "0"}
		store.getErr = errors.New("timeout")
		_, err := NewRedisSource(store, "p:", []string{"en"}).Load(context.Background(), "en")
		if !errors.Is(err, domain.ErrCorpusUnavailable) {
			t.Fatalf("expected ErrCorpusUnavailable, got %v", err)
		}
	})

	t.Run("corrupt vector", func(t *testing.T) {
		store := newMemHashStore()
		store.hashes["p:corpus:en:0"] = map[string]string{"id_question": "Q1", "seq": "0", "embedding": "abc"}
		_, err := NewRedisSource(store, "p:", []string{"en"}).Load(context.Background(), "en")
		if !errors.Is(err, domain.ErrCorpusUnavailable) {
			t.Fatalf("expected ErrCorpusUnavailable, got %v", err)
		}
	})
}

func TestVectorBytesRoundTrip(t *testing.T) {
	in := []float32{0.25, -1.5, 3.75, 0}
	out, err := bytesToVector(vectorToBytes(in))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := range in {
		if in[i] != out[i] {
			t.Fatalf("index %d: got %v, want %v", i, out[i], in[i])
		}
	}
}
