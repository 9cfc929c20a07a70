package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/gaiapet/clinicbot/internal/config"
	dbRedis "github.com/gaiapet/clinicbot/internal/db/redis"
	logpkg "github.com/gaiapet/clinicbot/internal/logger"
	"github.com/gaiapet/clinicbot/internal/metrics"
	"github.com/gaiapet/clinicbot/internal/repository/corpus"
	"github.com/gaiapet/clinicbot/internal/repository/translation"
	chiTransport "github.com/gaiapet/clinicbot/internal/transport/chi"
	openaiTransport "github.com/gaiapet/clinicbot/internal/transport/openai"
	askuc "github.com/gaiapet/clinicbot/internal/usecase/ask"
	fallbackuc "github.com/gaiapet/clinicbot/internal/usecase/fallback"
	healthuc "github.com/gaiapet/clinicbot/internal/usecase/health"
	"github.com/gaiapet/clinicbot/internal/version"
)

func main() {
	// .env is optional; real environment variables win.
	_ = godotenv.Load()

	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting clinicbot API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("corpus_driver", cfg.Corpus.Driver),
		zap.String("primary_language", cfg.PrimaryLanguage()),
		zap.Strings("retrieval_languages", cfg.RetrievalLanguages()),
		zap.Float64("threshold", *cfg.Matching.Threshold),
	)

	// Register domain metrics explicitly (no init())
	metrics.Register()

	ctx := context.Background()
	languages := cfg.RetrievalLanguages()

	// Corpus source — composition root
	var (
		source   corpus.Source
		dbPinger healthuc.DBPinger
	)
	switch cfg.Corpus.Driver {
	case config.CorpusDriverRedis:
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer store.Close()

		if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		logger.Info("Connected to database", zap.Strings("addrs", cfg.Database.Addrs))

		source = corpus.NewRedisSource(store, cfg.Database.KeyPrefix, languages)
		dbPinger = store
	default:
		source = corpus.NewFileSource(cfg.CorpusPaths())
	}

	corpusCache := corpus.NewCache(source, cfg.Corpus.Driver, cfg.Corpus.ReloadPerRequest, logger).
		WithLoadTimeout(time.Duration(cfg.Corpus.LoadTimeoutSec) * time.Second)
	if *cfg.Corpus.Preload && !cfg.Corpus.ReloadPerRequest {
		if err := corpusCache.Preload(ctx, languages); err != nil {
			logger.Warn("Some corpora failed to preload, they will be retried on demand", zap.Error(err))
		}
	}

	translations := translation.NewStore(cfg.Data.TranslationsPath, cfg.Corpus.ReloadPerRequest, logger)
	if err := translations.Check(ctx); err != nil {
		logger.Warn("QA translations not readable yet", zap.Error(err))
	}

	// Upstream clients
	breakerCfg := openaiTransport.BreakerConfig{
		MaxFailures: cfg.OpenAI.Breaker.MaxFailures,
		OpenTimeout: time.Duration(cfg.OpenAI.Breaker.OpenTimeoutSec) * time.Second,
	}
	timeout := time.Duration(cfg.OpenAI.TimeoutSec) * time.Second

	embedder := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Timeout:    timeout,
		Breaker:    openaiTransport.NewBreaker(metrics.KindEmbedding, breakerCfg),
		Logger:     logger,
	})
	generator := openaiTransport.NewGenerator(&openaiTransport.Config{
		APIKey:  cfg.OpenAI.APIKey,
		BaseURL: cfg.OpenAI.BaseURL,
		Timeout: timeout,
		Breaker: openaiTransport.NewBreaker(metrics.KindGeneration, breakerCfg),
		Logger:  logger,
	})
	logger.Info("Upstream clients created",
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.String("primary_model", cfg.Generation.PrimaryModel),
		zap.String("fallback_model", cfg.Generation.FallbackModel),
	)

	// Use case services
	responder := fallbackuc.New(generator, fallbackuc.Config{
		PrimaryLanguage: cfg.PrimaryLanguage(),
		PrimaryModel:    cfg.Generation.PrimaryModel,
		PrimaryPrompt:   cfg.Generation.PrimaryPrompt,
		GeneralModel:    cfg.Generation.FallbackModel,
		GeneralPrompt:   cfg.Generation.FallbackPrompt,
	})
	askSvc := askuc.New(corpusCache, embedder, translations, responder, askuc.Config{
		PrimaryLanguage: cfg.PrimaryLanguage(),
		Languages:       languages,
		Threshold:       *cfg.Matching.Threshold,
	})
	healthSvc := healthuc.New(healthuc.Deps{
		DB:           dbPinger,
		Embedding:    embedder,
		Corpus:       corpusCache,
		Languages:    languages,
		Translations: translations,
	})

	server := chiTransport.NewServer(askSvc, healthSvc)
	handler := chiTransport.NewRouter(server, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}
