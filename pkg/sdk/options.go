package clinicbot

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

type clientConfig struct {
	corpusFiles map[string]string
	languages   []string

	redisAddr      string
	redisPassword  string
	redisKeyPrefix string

	apiKey  string
	baseURL string

	embedder  Embedder
	generator Generator

	embeddingModel  string
	primaryLanguage string
	primaryModel    string
	primaryPrompt   string
	fallbackModel   string
	fallbackPrompt  string
	threshold       float64

	translationsPath string
	reloadPerRequest bool

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithCorpusFiles serves corpora from parquet or json files keyed by language.
// The keys become the retrieval languages.
func WithCorpusFiles(paths map[string]string) Option {
	return optionFunc(func(c *clientConfig) {
		c.corpusFiles = paths
	})
}

// WithRedis serves corpora from a Redis/Valkey instance filled by corpus-seed.
// Use WithLanguages to list the retrieval languages.
func WithRedis(addr, password, keyPrefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.redisAddr = addr
		c.redisPassword = password
		c.redisKeyPrefix = keyPrefix
	})
}

// WithLanguages sets the retrieval languages. Required with WithRedis.
func WithLanguages(codes ...string) Option {
	return optionFunc(func(c *clientConfig) {
		c.languages = codes
	})
}

// WithOpenAI configures the OpenAI-compatible API used for embeddings and
// completions. An empty baseURL targets api.openai.com.
func WithOpenAI(apiKey, baseURL string) Option {
	return optionFunc(func(c *clientConfig) {
		c.apiKey = apiKey
		c.baseURL = baseURL
	})
}

// WithEmbedder replaces the OpenAI embedding client.
func WithEmbedder(e Embedder) Option {
	return optionFunc(func(c *clientConfig) {
		c.embedder = e
	})
}

// WithGenerator replaces the OpenAI chat completion client.
func WithGenerator(g Generator) Option {
	return optionFunc(func(c *clientConfig) {
		c.generator = g
	})
}

// WithEmbeddingModel sets the embedding model. Default: text-embedding-3-small.
// The corpus must have been embedded with the same model.
func WithEmbeddingModel(model string) Option {
	return optionFunc(func(c *clientConfig) {
		c.embeddingModel = model
	})
}

// WithPrimaryLanguage sets the language answered by the persona model without
// retrieval. Default: "vi".
func WithPrimaryLanguage(code string) Option {
	return optionFunc(func(c *clientConfig) {
		c.primaryLanguage = code
	})
}

// WithPrimaryModel sets the persona model and its system prompt.
func WithPrimaryModel(model, prompt string) Option {
	return optionFunc(func(c *clientConfig) {
		c.primaryModel = model
		c.primaryPrompt = prompt
	})
}

// WithFallbackModel sets the general model and its system prompt.
// "%s" in the prompt is replaced by the language code.
func WithFallbackModel(model, prompt string) Option {
	return optionFunc(func(c *clientConfig) {
		c.fallbackModel = model
		c.fallbackPrompt = prompt
	})
}

// WithThreshold sets the minimum similarity for a canonical answer. Default: 0.8.
func WithThreshold(t float64) Option {
	return optionFunc(func(c *clientConfig) {
		c.threshold = t
	})
}

// WithTranslations sets the path of the QA translation document.
func WithTranslations(path string) Option {
	return optionFunc(func(c *clientConfig) {
		c.translationsPath = path
	})
}

// WithReloadPerRequest re-reads corpora and translations on every question.
func WithReloadPerRequest() Option {
	return optionFunc(func(c *clientConfig) {
		c.reloadPerRequest = true
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
