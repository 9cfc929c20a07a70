// Package redis implements db.Store on top of rueidis. It speaks only plain hash,
// scan and ping commands, so it serves both Redis and Valkey deployments.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/rueidis"

	"github.com/gaiapet/clinicbot/internal/db"
)

var _ db.Store = (*Store)(nil)

const (
	defaultClientName = "clinicbot"
	defaultBatchSize  = 256
	defaultScanCount  = 500
	readyPollInterval = 100 * time.Millisecond
)

// Config holds connection parameters for a Redis store.
type Config struct {
	Addrs      []string
	Username   string
	Password   string
	DB         int
	ClientName string // CLIENT SETNAME, default "clinicbot"
	BatchSize  int    // commands per DoMulti pipeline, default 256
	ScanCount  int    // SCAN COUNT hint, default 500
}

// Store implements db.Store via rueidis.
type Store struct {
	client    rueidis.Client
	batchSize int
	scanCount int64
}

// NewStore connects to Redis. Client-side caching is off: corpus hashes are
// read in bulk at load time and kept in process by the corpus cache.
func NewStore(cfg Config) (*Store, error) {
	if len(cfg.Addrs) == 0 {
		return nil, errors.New("addrs is required")
	}
	name := cfg.ClientName
	if name == "" {
		name = defaultClientName
	}

	client, err := rueidis.NewClient(rueidis.ClientOption{
		InitAddress:  cfg.Addrs,
		Username:     cfg.Username,
		Password:     cfg.Password,
		SelectDB:     cfg.DB,
		ClientName:   name,
		DisableCache: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}
	return newStore(client, cfg.BatchSize, cfg.ScanCount), nil
}

func newStore(client rueidis.Client, batchSize, scanCount int) *Store {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if scanCount <= 0 {
		scanCount = defaultScanCount
	}
	return &Store{client: client, batchSize: batchSize, scanCount: int64(scanCount)}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.client.Do(ctx, s.client.B().Ping().Build()).Error(); err != nil {
		return &db.Error{Op: db.OpPing, Err: err}
	}
	return nil
}

// Close shuts down the client.
func (s *Store) Close() {
	s.client.Close()
}

// WaitForReady polls Ping until the store answers. On timeout the last ping
// failure is reported alongside the context error.
func (s *Store) WaitForReady(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	ticker := time.NewTicker(readyPollInterval)
	defer ticker.Stop()

	var last error
	for {
		if last = s.Ping(ctx); last == nil {
			return nil
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("timeout waiting for database: %w", errors.Join(ctx.Err(), last))
		case <-ticker.C:
		}
	}
}
