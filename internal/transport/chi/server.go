// Package chi exposes the chatbot over HTTP with the chi router.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/gaiapet/clinicbot/internal/domain"
	"github.com/gaiapet/clinicbot/internal/logger"
	"github.com/gaiapet/clinicbot/internal/metrics"
	healthuc "github.com/gaiapet/clinicbot/internal/usecase/health"
)

const maxBodyBytes = 1 << 20

// Asker answers questions and greets users.
type Asker interface {
	Ask(ctx context.Context, question, lang string) (domain.Answer, error)
	Welcome(lang string) string
}

// HealthChecker reports component health.
type HealthChecker interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, lang string) bool

// Server serves the chatbot HTTP API.
type Server struct {
	ask           Asker
	health        HealthChecker
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
// Errors are logged through the request-scoped logger.
func NewServer(ask Asker, health HealthChecker) *Server {
	s := &Server{
		ask:    ask,
		health: health,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrMissingQuestion, http.StatusBadRequest, fixed("Missing question")),
		sentinelHandler(domain.ErrUnsupportedLanguage, http.StatusInternalServerError,
			perLanguage("No embedding data for language '%s'.")),
		sentinelHandler(domain.ErrCorpusUnavailable, http.StatusInternalServerError,
			perLanguage("Failed to load embedding data for language '%s'.")),
		sentinelHandler(domain.ErrTranslationsUnavailable, http.StatusInternalServerError,
			perLanguage("Missing QA JSON file for language '%s'")),
		sentinelHandler(domain.ErrEmbeddingService, http.StatusInternalServerError, fixed("OpenAI error (embedding)")),
		sentinelHandler(domain.ErrFineTunedGeneration, http.StatusInternalServerError, fixed("OpenAI error (fine-tuned)")),
		sentinelHandler(domain.ErrGenerationService, http.StatusInternalServerError, fixed("OpenAI error")),
	}
	return s
}

// Register mounts the API routes on r.
func (s *Server) Register(r chi.Router) {
	r.Post("/init", s.Init)
	r.Post("/ask", s.Ask)
	r.Get("/health", s.HealthCheck)
	r.Get(metrics.ScrapePath, s.Metrics)
}

type initRequest struct {
	FlagLanguage string `json:"flag_language"`
}

type initResponse struct {
	Response string `json:"response"`
}

type askRequest struct {
	Question     *string `json:"question"`
	FlagLanguage *string `json:"flag_language"`
}

type askResponse struct {
	Matched    bool     `json:"matched"`
	IDQuestion *string  `json:"id_question,omitempty"`
	Score      *float64 `json:"score,omitempty"`
	Answer     string   `json:"answer"`
}

type errorResponse struct {
	Error string `json:"error"`
}

type healthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

// Init handles POST /init. A missing or malformed body selects English.
func (s *Server) Init(w http.ResponseWriter, r *http.Request) {
	var req initRequest
	_ = json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)

	writeJSON(w, http.StatusOK, initResponse{Response: s.ask.Welcome(req.FlagLanguage)})
}

// Ask handles POST /ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	question := ""
	if req.Question != nil {
		question = *req.Question
	}
	lang := domain.DefaultLanguage
	if req.FlagLanguage != nil {
		lang = *req.FlagLanguage
	}

	ctx, usage := domain.NewContextWithUsage(r.Context())
	answer, err := s.ask.Ask(ctx, question, lang)
	setUsageHeaders(w, usage)
	if err != nil {
		s.handleDomainError(w, r, err, domain.NormalizeLanguage(lang))
		return
	}

	resp := askResponse{Matched: answer.Matched, Answer: answer.Text}
	if answer.Matched {
		resp.IDQuestion = &answer.QuestionID
		resp.Score = &answer.Score
	}
	writeJSON(w, http.StatusOK, resp)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, healthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func setUsageHeaders(w http.ResponseWriter, usage *domain.Usage) {
	if usage == nil {
		return
	}
	if usage.Embedded {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.EmbeddingTokens))
	}
	if usage.Generated {
		w.Header().Set("X-Completion-Tokens", strconv.Itoa(usage.CompletionTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func fixed(msg string) func(string) string {
	return func(string) string { return msg }
}

func perLanguage(format string) func(string) string {
	return func(lang string) string { return fmt.Sprintf(format, lang) }
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, message func(lang string) string) errorHandler {
	return func(w http.ResponseWriter, err error, lang string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, message(lang))
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, r *http.Request, err error, lang string) {
	log := logger.FromContext(r.Context())
	if errors.Is(err, domain.ErrMissingQuestion) {
		log.Debug("rejected request", zap.Error(err))
	} else {
		log.Error("ask failed", zap.String("language", lang), zap.Error(err))
	}
	for _, h := range s.errorHandlers {
		if h(w, err, lang) {
			return
		}
	}
	writeError(w, http.StatusInternalServerError, "internal error")
}
