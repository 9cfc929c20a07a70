// corpus-seed imports reference corpora from parquet/json files into redis,
// where the redis corpus driver serves them.
//
// Usage:
//
//	corpus-seed -env prod
//	corpus-seed -lang ja -file data/ja.parquet
//
// Connection settings, key prefix and per-language files come from config/<env>.yaml.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/gaiapet/clinicbot/internal/config"
	dbRedis "github.com/gaiapet/clinicbot/internal/db/redis"
	logpkg "github.com/gaiapet/clinicbot/internal/logger"
	"github.com/gaiapet/clinicbot/internal/repository/corpus"
	"github.com/gaiapet/clinicbot/internal/version"
)

type options struct {
	env    string
	langs  string
	file   string
	dryRun bool
}

func main() {
	opts := parseFlags()

	ctx, cancel := signal.NotifyContext(
		context.Background(), syscall.SIGTERM, syscall.SIGINT,
	)
	defer cancel()

	if err := run(ctx, opts); err != nil {
		cancel()
		fmt.Fprintln(os.Stderr, "corpus-seed:", err)
		os.Exit(1)
	}
}

func parseFlags() options {
	opts := options{}
	flag.StringVar(&opts.env, "env", "", "config environment (default: $ENV or local)")
	flag.StringVar(&opts.langs, "lang", "", "comma-separated languages to seed (default: all retrieval languages)")
	flag.StringVar(&opts.file, "file", "", "corpus file overriding the configured path (single -lang only)")
	flag.BoolVar(&opts.dryRun, "dry-run", false, "read and validate files without writing")
	flag.Parse()
	return opts
}

func run(ctx context.Context, opts options) error {
	_ = godotenv.Load()

	env := opts.env
	if env == "" {
		env = config.GetEnv()
	}
	cfg, err := config.Load(env)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	langs, paths, err := selectSources(cfg, opts)
	if err != nil {
		return err
	}
	logger.Info("Seeding corpora",
		zap.String("build", version.String()),
		zap.Strings("languages", langs),
		zap.Bool("dry_run", opts.dryRun),
	)
	files := corpus.NewFileSource(paths)

	if len(cfg.Database.Addrs) == 0 {
		return fmt.Errorf("database.addrs is required")
	}
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		return fmt.Errorf("create store: %w", err)
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		return fmt.Errorf("database not ready: %w", err)
	}
	target := corpus.NewRedisSource(store, cfg.Database.KeyPrefix, langs)

	for _, lang := range langs {
		c, err := files.Load(ctx, lang)
		if err != nil {
			return fmt.Errorf("read %s: %w", lang, err)
		}

		missing := 0
		for _, e := range c.Entries {
			if !e.HasEmbedding() {
				missing++
			}
		}
		log := logger.With(
			zap.String("language", lang),
			zap.String("file", paths[lang]),
			zap.Int("entries", c.Len()),
			zap.Int("missing_embeddings", missing),
		)

		if opts.dryRun {
			log.Info("Dry run, corpus not written")
			continue
		}

		start := time.Now()
		n, err := corpus.Seed(ctx, store, target, c)
		if err != nil {
			return fmt.Errorf("seed %s (wrote %d): %w", lang, n, err)
		}
		log.Info("Corpus seeded", zap.Int("written", n), zap.Duration("duration", time.Since(start)))
	}
	return nil
}

// selectSources resolves the languages to seed and their files.
func selectSources(cfg config.Config, opts options) ([]string, map[string]string, error) {
	paths := cfg.CorpusPaths()
	langs := cfg.RetrievalLanguages()
	if opts.langs != "" {
		langs = nil
		for _, l := range strings.Split(opts.langs, ",") {
			if l = strings.ToLower(strings.TrimSpace(l)); l != "" {
				langs = append(langs, l)
			}
		}
	}
	if opts.file != "" {
		if len(langs) != 1 {
			return nil, nil, fmt.Errorf("-file requires exactly one -lang, got %d", len(langs))
		}
		paths[langs[0]] = opts.file
	}
	if len(langs) == 0 {
		return nil, nil, fmt.Errorf("no languages to seed")
	}
	for _, l := range langs {
		if paths[l] == "" {
			return nil, nil, fmt.Errorf("no corpus file configured for language %q", l)
		}
	}
	return langs, paths, nil
}
