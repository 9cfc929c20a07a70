package health

import (
	"context"
	"errors"
	"testing"
)

// --- Mocks ---

type mockDBPinger struct {
	err error
}

func (m *mockDBPinger) Ping(_ context.Context) error { return m.err }

type mockEmbeddingChecker struct {
	err error
}

func (m *mockEmbeddingChecker) HealthCheck(_ context.Context) error { return m.err }

type mockCorpusChecker struct {
	failing map[string]bool
}

func (m *mockCorpusChecker) Check(_ context.Context, language string) error {
	if m.failing[language] {
		return errors.New("corpus unavailable")
	}
	return nil
}

type mockTranslationChecker struct {
	err error
}

func (m *mockTranslationChecker) Check(_ context.Context) error { return m.err }

func allDeps() Deps {
	return Deps{
		DB:           &mockDBPinger{},
		Embedding:    &mockEmbeddingChecker{},
		Corpus:       &mockCorpusChecker{},
		Languages:    []string{"en", "ja"},
		Translations: &mockTranslationChecker{},
	}
}

// --- Tests ---

func TestCheck_AllHealthy(t *testing.T) {
	r := New(allDeps()).Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	for _, name := range []string{"database", "embedding", "corpus:en", "corpus:ja", "translations"} {
		if r.Checks[name] != CheckOK {
			t.Errorf("expected %s %q, got %q", name, CheckOK, r.Checks[name])
		}
	}
}

func TestCheck_DBError(t *testing.T) {
	deps := allDeps()
	deps.DB = &mockDBPinger{err: errors.New("conn refused")}
	r := New(deps).Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["database"] != CheckError {
		t.Errorf("expected database %q, got %q", CheckError, r.Checks["database"])
	}
	if r.Checks["embedding"] != CheckOK {
		t.Errorf("expected embedding %q, got %q", CheckOK, r.Checks["embedding"])
	}
}

func TestCheck_EmbeddingError(t *testing.T) {
	deps := allDeps()
	deps.Embedding = &mockEmbeddingChecker{err: errors.New("timeout")}
	r := New(deps).Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["embedding"] != CheckError {
		t.Errorf("expected embedding %q, got %q", CheckError, r.Checks["embedding"])
	}
}

func TestCheck_CorpusPerLanguage(t *testing.T) {
	deps := allDeps()
	deps.Corpus = &mockCorpusChecker{failing: map[string]bool{"ja": true}}
	r := New(deps).Check(context.Background())

	if r.Status != Degraded {
		t.Errorf("expected %q, got %q", Degraded, r.Status)
	}
	if r.Checks["corpus:en"] != CheckOK {
		t.Errorf("expected corpus:en %q, got %q", CheckOK, r.Checks["corpus:en"])
	}
	if r.Checks["corpus:ja"] != CheckError {
		t.Errorf("expected corpus:ja %q, got %q", CheckError, r.Checks["corpus:ja"])
	}
}

func TestCheck_NoDatabase(t *testing.T) {
	deps := allDeps()
	deps.DB = nil
	r := New(deps).Check(context.Background())

	if r.Status != Healthy {
		t.Errorf("expected %q, got %q", Healthy, r.Status)
	}
	if _, ok := r.Checks["database"]; ok {
		t.Error("database check should be absent when db is nil")
	}
}

func TestCheck_AllFailing(t *testing.T) {
	r := New(Deps{
		Embedding:    &mockEmbeddingChecker{err: errors.New("down")},
		Translations: &mockTranslationChecker{err: errors.New("missing")},
	}).Check(context.Background())

	if r.Status != Unhealthy {
		t.Errorf("expected %q, got %q", Unhealthy, r.Status)
	}
}

func TestCheck_Empty(t *testing.T) {
	r := New(Deps{}).Check(context.Background())
	if r.Status != Healthy || len(r.Checks) != 0 {
		t.Errorf("unexpected report %+v", r)
	}
}
