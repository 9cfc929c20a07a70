package health

import "context"

// DBPinger checks database availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// CorpusChecker checks that a language corpus can be served.
type CorpusChecker interface {
	Check(ctx context.Context, language string) error
}

// TranslationChecker checks that the QA translation document is readable.
type TranslationChecker interface {
	Check(ctx context.Context) error
}
