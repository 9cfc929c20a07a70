package corpus

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/gaiapet/clinicbot/internal/domain"
	"github.com/gaiapet/clinicbot/internal/metrics"
)

const (
	defaultLoadTimeout = 30 * time.Second
	preloadParallelism = 4
)

// Source loads the corpus of one language.
type Source interface {
	Load(ctx context.Context, language string) (*domain.Corpus, error)
}

// Cache is an immutable per-language corpus cache in front of a Source.
// Concurrent first loads of one language share a single read. Failed loads are
// not cached. With reload set, every call goes to the source.
type Cache struct {
	source      Source
	sourceName  string
	reload      bool
	loadTimeout time.Duration
	logger      *zap.Logger

	mu      sync.RWMutex
	corpora map[string]*domain.Corpus
	group   singleflight.Group
}

// NewCache creates a corpus cache. sourceName labels metrics ("file", "redis").
func NewCache(source Source, sourceName string, reloadPerRequest bool, logger *zap.Logger) *Cache {
	return &Cache{
		source:      source,
		sourceName:  sourceName,
		reload:      reloadPerRequest,
		loadTimeout: defaultLoadTimeout,
		logger:      logger,
		corpora:     make(map[string]*domain.Corpus),
	}
}

// WithLoadTimeout overrides the deadline of a single source read.
func (c *Cache) WithLoadTimeout(d time.Duration) *Cache {
	if d > 0 {
		c.loadTimeout = d
	}
	return c
}

// Load returns the corpus for a language, reading it from the source on first use.
func (c *Cache) Load(ctx context.Context, language string) (*domain.Corpus, error) {
	if c.reload {
		return c.read(ctx, language)
	}

	c.mu.RLock()
	cached, ok := c.corpora[language]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	ch := c.group.DoChan(language, func() (any, error) {
		// Shared by every waiter, so it must outlive the caller that started it.
		loaded, err := c.read(context.WithoutCancel(ctx), language)
		if err != nil {
			return nil, err
		}
		c.mu.Lock()
		c.corpora[language] = loaded
		c.mu.Unlock()
		return loaded, nil
	})

	select {
	case <-ctx.Done():
		return nil, fmt.Errorf("load corpus %s: %w", language, ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*domain.Corpus), nil
	}
}

// Preload loads every language concurrently. Failures are logged and joined;
// languages that failed are retried lazily on first request.
func (c *Cache) Preload(ctx context.Context, languages []string) error {
	var (
		mu   sync.Mutex
		errs []error
	)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(preloadParallelism)
	for _, lang := range languages {
		g.Go(func() error {
			loaded, err := c.Load(gctx, lang)
			if err != nil {
				c.logger.Warn("Corpus preload failed", zap.String("language", lang), zap.Error(err))
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
				return nil
			}
			c.logger.Info("Corpus preloaded",
				zap.String("language", lang),
				zap.Int("entries", loaded.Len()),
			)
			return nil
		})
	}
	_ = g.Wait()

	return errors.Join(errs...)
}

// Loaded reports whether a language is held in memory.
func (c *Cache) Loaded(language string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.corpora[language]
	return ok
}

// Check verifies that a language can be served, reading it if not cached yet.
func (c *Cache) Check(ctx context.Context, language string) error {
	if !c.reload && c.Loaded(language) {
		return nil
	}
	_, err := c.Load(ctx, language)
	return err
}

func (c *Cache) read(ctx context.Context, language string) (*domain.Corpus, error) {
	ctx, cancel := context.WithTimeout(ctx, c.loadTimeout)
	defer cancel()

	start := time.Now()
	loaded, err := c.source.Load(ctx, language)
	if err != nil {
		metrics.CorpusLoadsTotal.WithLabelValues(languageLabel(language, err), c.sourceName, "error").Inc()
		return nil, fmt.Errorf("load corpus %s: %w", language, err)
	}

	metrics.CorpusLoadsTotal.WithLabelValues(language, c.sourceName, "success").Inc()
	metrics.CorpusEntries.WithLabelValues(language).Set(float64(loaded.Len()))
	c.logger.Debug("Corpus loaded",
		zap.String("language", language),
		zap.String("source", c.sourceName),
		zap.Int("entries", loaded.Len()),
		zap.Duration("duration", time.Since(start)),
	)
	return loaded, nil
}

// languageLabel keeps the language label bounded: codes the source does not
// know share the "unknown" series.
func languageLabel(language string, err error) string {
	if errors.Is(err, domain.ErrUnsupportedLanguage) {
		return "unknown"
	}
	return language
}
