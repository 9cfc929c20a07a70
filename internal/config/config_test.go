package config

import (
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:   HTTPConfig{Port: 8080},
		OpenAI: OpenAIConfig{APIKey: "sk-test"},
	}
	cfg.ApplyDefaults()
	return cfg
}

func TestValidate_Defaults(t *testing.T) {
	cfg := validConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	for _, port := range []int{-1, 70000} {
		cfg := validConfig()
		cfg.HTTP.Port = port
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected error for port %d", port)
		}
	}
}

func TestValidate_MissingAPIKey(t *testing.T) {
	cfg := validConfig()
	cfg.OpenAI.APIKey = ""
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for missing api key")
	}
}

func TestValidate_ThresholdRange(t *testing.T) {
	for _, v := range []float64{-1.5, 1.01} {
		cfg := validConfig()
		cfg.Matching.Threshold = &v
		if err := cfg.Validate(); err == nil {
			t.Errorf("expected error for threshold %v", v)
		}
	}
	for _, v := range []float64{-1, 0, 1} {
		cfg := validConfig()
		cfg.Matching.Threshold = &v
		if err := cfg.Validate(); err != nil {
			t.Errorf("threshold %v: unexpected error %v", v, err)
		}
	}
}

func TestValidate_Languages(t *testing.T) {
	tests := []struct {
		name    string
		langs   []LanguageConfig
		wantErr string
	}{
		{
			name:    "no primary",
			langs:   []LanguageConfig{{Code: "en", Corpus: "en.json"}},
			wantErr: "exactly one primary language",
		},
		{
			name:    "two primaries",
			langs:   []LanguageConfig{{Code: "vi", Primary: true}, {Code: "en", Primary: true}},
			wantErr: "exactly one primary language",
		},
		{
			name:    "duplicate code",
			langs:   []LanguageConfig{{Code: "vi", Primary: true}, {Code: "en", Corpus: "a"}, {Code: "en", Corpus: "b"}},
			wantErr: "duplicate code",
		},
		{
			name:    "missing corpus",
			langs:   []LanguageConfig{{Code: "vi", Primary: true}, {Code: "en"}},
			wantErr: "corpus path is required",
		},
		{
			name:    "empty code",
			langs:   []LanguageConfig{{Code: "vi", Primary: true}, {Corpus: "x"}},
			wantErr: "code is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			cfg.Languages = tt.langs
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidate_RedisDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Corpus.Driver = CorpusDriverRedis
	cfg.Languages = []LanguageConfig{{Code: "vi", Primary: true}, {Code: "en"}}

	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for redis driver without addrs")
	}

	cfg.Database.Addrs = []string{"localhost:6379"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("redis driver needs no corpus paths: %v", err)
	}
}

func TestValidate_UnknownDriver(t *testing.T) {
	cfg := validConfig()
	cfg.Corpus.Driver = "pickle"
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestApplyDefaults(t *testing.T) {
	cfg := Config{}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 5000 {
		t.Errorf("expected Port=5000, got %d", cfg.HTTP.Port)
	}
	if cfg.HTTP.ReadTimeoutSec != 10 {
		t.Errorf("expected ReadTimeoutSec=10, got %d", cfg.HTTP.ReadTimeoutSec)
	}
	if cfg.OpenAI.TimeoutSec != 30 {
		t.Errorf("expected TimeoutSec=30, got %d", cfg.OpenAI.TimeoutSec)
	}
	if *cfg.Matching.Threshold != 0.8 {
		t.Errorf("expected Threshold=0.8, got %v", *cfg.Matching.Threshold)
	}
	if cfg.Embedding.Model != DefaultEmbeddingModel {
		t.Errorf("expected embedding model %q, got %q", DefaultEmbeddingModel, cfg.Embedding.Model)
	}
	if cfg.Generation.PrimaryModel != DefaultPrimaryModel || cfg.Generation.FallbackModel != DefaultFallbackModel {
		t.Errorf("unexpected models: %+v", cfg.Generation)
	}
	if cfg.Corpus.Driver != CorpusDriverFile || !*cfg.Corpus.Preload {
		t.Errorf("unexpected corpus defaults: %+v", cfg.Corpus)
	}
	if cfg.PrimaryLanguage() != "vi" {
		t.Errorf("expected primary vi, got %q", cfg.PrimaryLanguage())
	}
	if got := strings.Join(cfg.RetrievalLanguages(), ","); got != "en,ja" {
		t.Errorf("expected retrieval en,ja, got %q", got)
	}
	if cfg.Database.KeyPrefix != "clinicbot:" {
		t.Errorf("expected KeyPrefix=clinicbot:, got %q", cfg.Database.KeyPrefix)
	}
}

func TestApplyDefaults_NoOverride(t *testing.T) {
	zero := 0.0
	noPreload := false
	cfg := Config{
		HTTP:     HTTPConfig{Port: 9000, ReadTimeoutSec: 5},
		Matching: MatchingConfig{Threshold: &zero},
		Corpus:   CorpusConfig{Driver: CorpusDriverRedis, Preload: &noPreload},
		Languages: []LanguageConfig{
			{Code: " VI ", Primary: true},
			{Code: "En"},
		},
	}
	cfg.ApplyDefaults()

	if cfg.HTTP.Port != 9000 || cfg.HTTP.ReadTimeoutSec != 5 {
		t.Errorf("http overridden: %+v", cfg.HTTP)
	}
	if *cfg.Matching.Threshold != 0 {
		t.Errorf("explicit zero threshold overridden: %v", *cfg.Matching.Threshold)
	}
	if *cfg.Corpus.Preload {
		t.Error("explicit preload=false overridden")
	}
	if cfg.Languages[0].Code != "vi" || cfg.Languages[1].Code != "en" {
		t.Errorf("codes not normalized: %+v", cfg.Languages)
	}
	if len(cfg.CorpusPaths()) != 0 {
		t.Errorf("expected no corpus paths, got %v", cfg.CorpusPaths())
	}
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("CLINICBOT_TEST_KEY", "sk-from-env")
	t.Setenv("PORT", "")

	cfg, err := Parse([]byte(`
http:
  port: ${PORT:-5050}
openai:
  api_key: ${CLINICBOT_TEST_KEY}
matching:
  threshold: 0.75
generation:
  fallback_prompt: "Reply in %s."
languages:
  - code: vi
    primary: true
  - code: en
    corpus: data/en.json
`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if cfg.HTTP.Port != 5050 {
		t.Errorf("expected port 5050, got %d", cfg.HTTP.Port)
	}
	if cfg.OpenAI.APIKey != "sk-from-env" {
		t.Errorf("expected api key from env, got %q", cfg.OpenAI.APIKey)
	}
	if *cfg.Matching.Threshold != 0.75 {
		t.Errorf("expected threshold 0.75, got %v", *cfg.Matching.Threshold)
	}
	if cfg.Generation.FallbackPrompt != "Reply in %s." {
		t.Errorf("unexpected prompt %q", cfg.Generation.FallbackPrompt)
	}
	if cfg.CorpusPaths()["en"] != "data/en.json" {
		t.Errorf("unexpected corpus paths %v", cfg.CorpusPaths())
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected yaml error")
	}
	if _, err := Parse([]byte("http:\n  port: 80\n")); err == nil {
		t.Fatal("expected validation error for missing api key")
	}
}
