package clinicbot

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcome labels for the answers counter.
const (
	outcomeMatched   = "matched"
	outcomeGenerated = "generated"
	outcomeError     = "error"
)

type sdkMetrics struct {
	answers  *prometheus.CounterVec
	latency  *prometheus.HistogramVec
	preloads *prometheus.CounterVec
}

func newSDKMetrics(reg prometheus.Registerer) (*sdkMetrics, error) {
	m := &sdkMetrics{
		answers: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicbot",
			Subsystem: "sdk",
			Name:      "answers_total",
			Help:      "Questions answered through the SDK by language and outcome.",
		}, []string{"language", "outcome"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "clinicbot",
			Subsystem: "sdk",
			Name:      "ask_duration_seconds",
			Help:      "End-to-end Ask latency in seconds.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}, []string{"language"}),
		preloads: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "clinicbot",
			Subsystem: "sdk",
			Name:      "preloads_total",
			Help:      "Corpus preload runs by status.",
		}, []string{"status"}),
	}
	if err := registerOrReuse(reg, &m.answers); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.latency); err != nil {
		return nil, err
	}
	if err := registerOrReuse(reg, &m.preloads); err != nil {
		return nil, err
	}
	return m, nil
}

// registerOrReuse registers c, or points it at the collector already registered under the same name.
func registerOrReuse[T prometheus.Collector](reg prometheus.Registerer, c *T) error {
	if err := reg.Register(*c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			existing, ok := are.ExistingCollector.(T)
			if !ok {
				return fmt.Errorf("clinicbot: metric already registered with incompatible type: %T", are.ExistingCollector)
			}
			*c = existing
			return nil
		}
		return fmt.Errorf("clinicbot: register metric: %w", err)
	}
	return nil
}

// observer logs and counts client calls. A nil observer is a no-op.
type observer struct {
	logger  *slog.Logger
	metrics *sdkMetrics
}

func newObserver(logger *slog.Logger, reg prometheus.Registerer) (*observer, error) {
	var m *sdkMetrics
	if reg != nil {
		var err error
		m, err = newSDKMetrics(reg)
		if err != nil {
			return nil, err
		}
	}
	return &observer{logger: logger, metrics: m}, nil
}

func outcomeOf(ans Answer, err error) string {
	switch {
	case err != nil:
		return outcomeError
	case ans.Matched:
		return outcomeMatched
	default:
		return outcomeGenerated
	}
}

func (o *observer) observeAsk(lang string, start time.Time, ans Answer, err error) {
	if o == nil {
		return
	}
	dur := time.Since(start)
	outcome := outcomeOf(ans, err)

	if o.metrics != nil {
		o.metrics.answers.WithLabelValues(lang, outcome).Inc()
		o.metrics.latency.WithLabelValues(lang).Observe(dur.Seconds())
	}
	if o.logger == nil {
		return
	}
	if err != nil {
		o.logger.Warn("ask failed", "language", lang, "duration", dur, "error", err)
		return
	}
	o.logger.Debug("ask answered",
		"language", lang,
		"outcome", outcome,
		"id_question", ans.QuestionID,
		"score", ans.Score,
		"duration", dur,
	)
}

func (o *observer) observePreload(languages []string, start time.Time, err error) {
	if o == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	if o.metrics != nil {
		o.metrics.preloads.WithLabelValues(status).Inc()
	}
	if o.logger == nil {
		return
	}
	if err != nil {
		o.logger.Warn("corpus preload failed", "languages", languages, "duration", time.Since(start), "error", err)
		return
	}
	o.logger.Info("corpora preloaded", "languages", languages, "duration", time.Since(start))
}
