package health

import "context"

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all components are operational.
	Healthy Status = "ok"
	// Degraded indicates partial failure.
	Degraded Status = "degraded"
	// Unhealthy indicates total failure.
	Unhealthy Status = "error"
)

// CheckResult represents an individual component health check outcome.
type CheckResult string

const (
	// CheckOK indicates a passing health check.
	CheckOK CheckResult = "ok"
	// CheckError indicates a failing health check.
	CheckError CheckResult = "error"
)

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Deps lists the checked components. Nil components are skipped.
type Deps struct {
	DB           DBPinger
	Embedding    EmbeddingChecker
	Corpus       CorpusChecker
	Languages    []string
	Translations TranslationChecker
}

// Service coordinates health checks.
type Service struct {
	deps Deps
}

// New creates a Service.
func New(deps Deps) *Service {
	return &Service{deps: deps}
}

// Check runs health checks against all components.
// Corpus checks are keyed "corpus:<language>".
func (s *Service) Check(ctx context.Context) Report {
	checks := make(map[string]CheckResult)

	if s.deps.DB != nil {
		checks["database"] = result(s.deps.DB.Ping(ctx))
	}
	if s.deps.Embedding != nil {
		checks["embedding"] = result(s.deps.Embedding.HealthCheck(ctx))
	}
	if s.deps.Corpus != nil {
		for _, lang := range s.deps.Languages {
			checks["corpus:"+lang] = result(s.deps.Corpus.Check(ctx, lang))
		}
	}
	if s.deps.Translations != nil {
		checks["translations"] = result(s.deps.Translations.Check(ctx))
	}

	failed := 0
	for _, v := range checks {
		if v == CheckError {
			failed++
		}
	}

	status := Healthy
	switch {
	case failed > 0 && failed == len(checks):
		status = Unhealthy
	case failed > 0:
		status = Degraded
	}

	return Report{Status: status, Checks: checks}
}

func result(err error) CheckResult {
	if err != nil {
		return CheckError
	}
	return CheckOK
}
