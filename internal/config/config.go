package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Corpus drivers.
const (
	CorpusDriverFile  = "file"
	CorpusDriverRedis = "redis"
)

// Generation defaults.
const (
	DefaultPrimaryModel  = "ft:gpt-3.5-turbo-0125:personal::CV70liZF"
	DefaultPrimaryPrompt = "Bạn là trợ lý tư vấn chăm sóc thú cưng của GAIA PET." +
		" Diễn đạt câu trả lời đảm bảo tính lịch sử và thu hút khách hàng."
	DefaultFallbackModel  = "gpt-4o"
	DefaultFallbackPrompt = "You are a customer care and consultation expert in the veterinary field." +
		" Please answer the following question in language %s in a clear and in-context manner" +
		" related to GAIA pet clinic and care."
	DefaultEmbeddingModel = "text-embedding-3-small"
)

// Config holds the clinicbot configuration.
type Config struct {
	HTTP       HTTPConfig       `yaml:"http"`
	Logging    LoggingConfig    `yaml:"logging"`
	OpenAI     OpenAIConfig     `yaml:"openai"`
	Embedding  EmbeddingConfig  `yaml:"embedding"`
	Generation GenerationConfig `yaml:"generation"`
	Matching   MatchingConfig   `yaml:"matching"`
	Languages  []LanguageConfig `yaml:"languages"`
	Corpus     CorpusConfig     `yaml:"corpus"`
	Data       DataConfig       `yaml:"data"`
	Database   DatabaseConfig   `yaml:"database"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int `yaml:"port"`
	ReadTimeoutSec  int `yaml:"read_timeout_sec"`
	WriteTimeoutSec int `yaml:"write_timeout_sec"`
	ShutdownSec     int `yaml:"shutdown_timeout_sec"`
}

// OpenAIConfig holds upstream API settings shared by embedding and generation.
type OpenAIConfig struct {
	APIKey     string        `yaml:"api_key"`
	BaseURL    string        `yaml:"base_url"`
	TimeoutSec int           `yaml:"timeout_sec"`
	Breaker    BreakerConfig `yaml:"breaker"`
}

// BreakerConfig holds circuit breaker settings. MaxFailures 0 disables it.
type BreakerConfig struct {
	MaxFailures    uint32 `yaml:"max_failures"`
	OpenTimeoutSec int    `yaml:"open_timeout_sec"`
}

// EmbeddingConfig holds embedding model settings.
type EmbeddingConfig struct {
	Model      string `yaml:"model"`
	Dimensions int    `yaml:"dimensions"` // 0 = model default
}

// GenerationConfig holds chat model settings.
type GenerationConfig struct {
	PrimaryModel   string `yaml:"primary_model"`
	PrimaryPrompt  string `yaml:"primary_prompt"`
	FallbackModel  string `yaml:"fallback_model"`
	FallbackPrompt string `yaml:"fallback_prompt"` // %s is replaced by the language code
}

// MatchingConfig holds retrieval settings.
type MatchingConfig struct {
	Threshold *float64 `yaml:"threshold"`
}

// LanguageConfig registers a language. Corpus is a file path for the file driver.
type LanguageConfig struct {
	Code    string `yaml:"code"`
	Primary bool   `yaml:"primary"`
	Corpus  string `yaml:"corpus"`
}

// CorpusConfig holds reference corpus settings.
type CorpusConfig struct {
	Driver           string `yaml:"driver"` // file, redis (default: file)
	ReloadPerRequest bool   `yaml:"reload_per_request"`
	Preload          *bool  `yaml:"preload"`
	LoadTimeoutSec   int    `yaml:"load_timeout_sec"`
}

// DataConfig holds paths of read-only data files.
type DataConfig struct {
	TranslationsPath string `yaml:"translations_path"`
}

// DatabaseConfig holds redis connection settings for the redis corpus driver.
type DatabaseConfig struct {
	Addrs            []string `yaml:"addrs"`
	Password         string   `yaml:"password"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
	KeyPrefix        string   `yaml:"key_prefix"`
}

// Load reads configuration from a YAML file by environment name (local, dev, prod).
func Load(env string) (Config, error) {
	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse decodes, defaults and validates a YAML document.
func Parse(data []byte) (Config, error) {
	// Substitute env variables of the form ${VAR}
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	if c.HTTP.Port == 0 {
		c.HTTP.Port = 5000
	}
	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.OpenAI.TimeoutSec <= 0 {
		c.OpenAI.TimeoutSec = 30
	}
	if c.OpenAI.Breaker.OpenTimeoutSec <= 0 {
		c.OpenAI.Breaker.OpenTimeoutSec = 30
	}
	if c.Embedding.Model == "" {
		c.Embedding.Model = DefaultEmbeddingModel
	}
	if c.Generation.PrimaryModel == "" {
		c.Generation.PrimaryModel = DefaultPrimaryModel
	}
	if c.Generation.PrimaryPrompt == "" {
		c.Generation.PrimaryPrompt = DefaultPrimaryPrompt
	}
	if c.Generation.FallbackModel == "" {
		c.Generation.FallbackModel = DefaultFallbackModel
	}
	if c.Generation.FallbackPrompt == "" {
		c.Generation.FallbackPrompt = DefaultFallbackPrompt
	}
	if c.Matching.Threshold == nil {
		t := 0.8
		c.Matching.Threshold = &t
	}
	if len(c.Languages) == 0 {
		c.Languages = []LanguageConfig{
			{Code: "vi", Primary: true},
			{Code: "en", Corpus: "data/en.parquet"},
			{Code: "ja", Corpus: "data/ja.parquet"},
		}
	}
	for i := range c.Languages {
		c.Languages[i].Code = strings.ToLower(strings.TrimSpace(c.Languages[i].Code))
	}
	if c.Corpus.Driver == "" {
		c.Corpus.Driver = CorpusDriverFile
	}
	if c.Corpus.Preload == nil {
		p := true
		c.Corpus.Preload = &p
	}
	if c.Corpus.LoadTimeoutSec <= 0 {
		c.Corpus.LoadTimeoutSec = 30
	}
	if c.Data.TranslationsPath == "" {
		c.Data.TranslationsPath = "data/qa_translations.json"
	}
	if c.Database.ReadinessTimeout <= 0 {
		c.Database.ReadinessTimeout = 10
	}
	if c.Database.KeyPrefix == "" {
		c.Database.KeyPrefix = "clinicbot:"
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if c.OpenAI.APIKey == "" {
		return errors.New("openai.api_key is required")
	}
	if c.Matching.Threshold != nil && (*c.Matching.Threshold < -1 || *c.Matching.Threshold > 1) {
		return fmt.Errorf("matching.threshold must be between -1 and 1, got %v", *c.Matching.Threshold)
	}
	if err := c.validateLanguages(); err != nil {
		return err
	}
	switch c.Corpus.Driver {
	case CorpusDriverFile:
	case CorpusDriverRedis:
		if len(c.Database.Addrs) == 0 {
			return errors.New("database.addrs is required for the redis corpus driver")
		}
	default:
		return fmt.Errorf("corpus.driver must be %q or %q, got %q", CorpusDriverFile, CorpusDriverRedis, c.Corpus.Driver)
	}
	return nil
}

func (c *Config) validateLanguages() error {
	seen := make(map[string]bool, len(c.Languages))
	primaries := 0
	for i, l := range c.Languages {
		if l.Code == "" {
			return fmt.Errorf("languages[%d].code is required", i)
		}
		if seen[l.Code] {
			return fmt.Errorf("languages: duplicate code %q", l.Code)
		}
		seen[l.Code] = true
		if l.Primary {
			primaries++
			continue
		}
		if c.Corpus.Driver == CorpusDriverFile && l.Corpus == "" {
			return fmt.Errorf("languages[%d] (%s): corpus path is required for the file driver", i, l.Code)
		}
	}
	if primaries != 1 {
		return fmt.Errorf("exactly one primary language is required, got %d", primaries)
	}
	return nil
}

// PrimaryLanguage returns the code of the primary language.
func (c *Config) PrimaryLanguage() string {
	for _, l := range c.Languages {
		if l.Primary {
			return l.Code
		}
	}
	return ""
}

// RetrievalLanguages returns the codes answered from a reference corpus, in config order.
func (c *Config) RetrievalLanguages() []string {
	var codes []string
	for _, l := range c.Languages {
		if !l.Primary {
			codes = append(codes, l.Code)
		}
	}
	return codes
}

// CorpusPaths maps retrieval languages to their corpus files.
func (c *Config) CorpusPaths() map[string]string {
	paths := make(map[string]string)
	for _, l := range c.Languages {
		if !l.Primary && l.Corpus != "" {
			paths[l.Code] = l.Corpus
		}
	}
	return paths
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
