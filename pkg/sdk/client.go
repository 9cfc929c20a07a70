package clinicbot

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/gaiapet/clinicbot/internal/config"
	"github.com/gaiapet/clinicbot/internal/db"
	dbRedis "github.com/gaiapet/clinicbot/internal/db/redis"
	"github.com/gaiapet/clinicbot/internal/domain"
	"github.com/gaiapet/clinicbot/internal/repository/corpus"
	"github.com/gaiapet/clinicbot/internal/repository/translation"
	openaiTransport "github.com/gaiapet/clinicbot/internal/transport/openai"
	askuc "github.com/gaiapet/clinicbot/internal/usecase/ask"
	fallbackuc "github.com/gaiapet/clinicbot/internal/usecase/fallback"
	healthuc "github.com/gaiapet/clinicbot/internal/usecase/health"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultUpstreamTimeout  = 30 * time.Second
)

// Внутренние интерфейсы для подмены в тестах.
type askUseCase interface {
	Ask(ctx context.Context, question, lang string) (domain.Answer, error)
	Welcome(lang string) string
}

type preloader interface {
	Preload(ctx context.Context, languages []string) error
}

// Answer is the response to a question.
// QuestionID and Score are set only when Matched is true.
type Answer struct {
	Matched    bool
	QuestionID string
	Score      float64
	Text       string
}

// Client is the clinicbot SDK entry point.
type Client struct {
	store     db.Store
	askSvc    askUseCase
	healthSvc healthUseCase
	corpus    preloader
	primary   string
	languages []string
	obs       *observer
}

// New creates a Client. With WithRedis the provided context bounds the initial
// readiness check.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{
		embeddingModel:   config.DefaultEmbeddingModel,
		primaryLanguage:  domain.LanguageVietnamese,
		primaryModel:     config.DefaultPrimaryModel,
		primaryPrompt:    config.DefaultPrimaryPrompt,
		fallbackModel:    config.DefaultFallbackModel,
		fallbackPrompt:   config.DefaultFallbackPrompt,
		threshold:        askuc.DefaultThreshold,
		translationsPath: "data/qa_translations.json",
	}
	for _, o := range opts {
		o.apply(cfg)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var store db.Store
	if cfg.redisAddr != "" {
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    []string{cfg.redisAddr},
			Password: cfg.redisPassword,
		})
		if err != nil {
			return nil, fmt.Errorf("clinicbot: create redis store: %w", err)
		}
		if err := s.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
			s.Close()
			return nil, fmt.Errorf("clinicbot: database not ready: %w", err)
		}
		store = s
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		if store != nil {
			store.Close()
		}
		return nil, err
	}
	return wireClient(store, cfg, obs), nil
}

func (c *clientConfig) validate() error {
	if c.redisAddr == "" && len(c.corpusFiles) == 0 {
		return errors.New("clinicbot: corpus source required (use WithCorpusFiles or WithRedis)")
	}
	if c.redisAddr != "" && len(c.languages) == 0 {
		return errors.New("clinicbot: WithLanguages is required with WithRedis")
	}
	if c.apiKey == "" && (c.embedder == nil || c.generator == nil) {
		return errors.New("clinicbot: OpenAI API key required unless both WithEmbedder and WithGenerator are set")
	}
	if c.threshold < -1 || c.threshold > 1 {
		return fmt.Errorf("clinicbot: threshold must be between -1 and 1, got %v", c.threshold)
	}
	return nil
}

// retrievalLanguages lists corpus languages, excluding the primary one.
func (c *clientConfig) retrievalLanguages() []string {
	codes := c.languages
	if len(codes) == 0 {
		for code := range c.corpusFiles {
			codes = append(codes, code)
		}
		sort.Strings(codes)
	}
	out := make([]string, 0, len(codes))
	for _, code := range codes {
		if code = domain.NormalizeLanguage(code); code != "" && code != c.primaryLanguage {
			out = append(out, code)
		}
	}
	return out
}

func wireClient(store db.Store, cfg *clientConfig, obs *observer) *Client {
	nop := zap.NewNop()
	languages := cfg.retrievalLanguages()

	var source corpus.Source
	sourceName := "file"
	if store != nil {
		source = corpus.NewRedisSource(store, cfg.redisKeyPrefix, languages)
		sourceName = "redis"
	} else {
		paths := make(map[string]string, len(cfg.corpusFiles))
		for code, p := range cfg.corpusFiles {
			paths[domain.NormalizeLanguage(code)] = p
		}
		source = corpus.NewFileSource(paths)
	}
	corpusCache := corpus.NewCache(source, sourceName, cfg.reloadPerRequest, nop)
	translations := translation.NewStore(cfg.translationsPath, cfg.reloadPerRequest, nop)

	// Embedder and generator: OpenAI unless replaced
	var (
		embedder  askuc.Embedder
		checker   healthuc.EmbeddingChecker
		generator fallbackuc.Generator
	)
	upstream := &openaiTransport.Config{
		APIKey:  cfg.apiKey,
		BaseURL: cfg.baseURL,
		Model:   cfg.embeddingModel,
		Timeout: defaultUpstreamTimeout,
		Logger:  nop,
	}
	if cfg.embedder != nil {
		embedder = &embedderAdapter{inner: cfg.embedder}
	} else {
		e := openaiTransport.NewEmbedder(upstream)
		embedder, checker = e, e
	}
	if cfg.generator != nil {
		generator = &generatorAdapter{inner: cfg.generator}
	} else {
		generator = openaiTransport.NewGenerator(upstream)
	}

	responder := fallbackuc.New(generator, fallbackuc.Config{
		PrimaryLanguage: cfg.primaryLanguage,
		PrimaryModel:    cfg.primaryModel,
		PrimaryPrompt:   cfg.primaryPrompt,
		GeneralModel:    cfg.fallbackModel,
		GeneralPrompt:   cfg.fallbackPrompt,
	})
	askSvc := askuc.New(corpusCache, embedder, translations, responder, askuc.Config{
		PrimaryLanguage: cfg.primaryLanguage,
		Languages:       languages,
		Threshold:       cfg.threshold,
	})

	// Pass nil interfaces (not typed nil pointers) for absent components.
	deps := healthuc.Deps{
		Embedding:    checker,
		Corpus:       corpusCache,
		Languages:    languages,
		Translations: translations,
	}
	if store != nil {
		deps.DB = store
	}

	return &Client{
		store:     store,
		askSvc:    askSvc,
		healthSvc: healthuc.New(deps),
		corpus:    corpusCache,
		primary:   cfg.primaryLanguage,
		languages: languages,
		obs:       obs,
	}
}

// Close releases all resources.
func (c *Client) Close() {
	if c.store != nil {
		c.store.Close()
	}
}

// Preload reads every retrieval corpus up front. Failed languages are retried
// on their first question.
func (c *Client) Preload(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observePreload(c.languages, start, err) }()

	if err = c.corpus.Preload(ctx, c.languages); err != nil {
		return fmt.Errorf("preload: %w", err)
	}
	return nil
}

// Ask answers a question in the given language ("" means English).
func (c *Client) Ask(ctx context.Context, question, lang string) (ans Answer, err error) {
	start := time.Now()
	defer func() { c.obs.observeAsk(c.languageLabel(lang), start, ans, err) }()

	a, err := c.askSvc.Ask(ctx, question, lang)
	if err != nil {
		return Answer{}, fmt.Errorf("ask: %w", err)
	}
	return Answer{
		Matched:    a.Matched,
		QuestionID: a.QuestionID,
		Score:      a.Score,
		Text:       a.Text,
	}, nil
}

// Welcome returns the greeting for a language, English for unknown codes.
func (c *Client) Welcome(lang string) string {
	return c.askSvc.Welcome(lang)
}

// languageLabel maps lang to a configured code, or "unknown", so metric labels stay bounded.
func (c *Client) languageLabel(lang string) string {
	code := domain.NormalizeLanguage(lang)
	if code == "" {
		code = domain.DefaultLanguage
	}
	if code == c.primary || slices.Contains(c.languages, code) {
		return code
	}
	return "unknown"
}
