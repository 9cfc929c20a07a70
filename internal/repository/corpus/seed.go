package corpus

import (
	"context"
	"fmt"

	"github.com/gaiapet/clinicbot/internal/db"
	"github.com/gaiapet/clinicbot/internal/domain"
)

// seedBatchSize bounds the number of HSET commands per pipeline.
const seedBatchSize = 200

// seedStore is the consumer interface for seeding (ISP).
type seedStore interface {
	db.HashReader
	db.HashWriter
}

// Seed replaces the stored corpus of a language with c, preserving entry order.
// Returns the number of entries written.
func Seed(ctx context.Context, store seedStore, src *RedisSource, c *domain.Corpus) (int, error) {
	existing, err := store.Scan(ctx, src.pattern(c.Language))
	if err != nil {
		return 0, fmt.Errorf("scan existing: %w", err)
	}
	if err := store.DelMulti(ctx, existing); err != nil {
		return 0, fmt.Errorf("delete existing: %w", err)
	}

	items := make([]db.HashSetItem, 0, seedBatchSize)
	written := 0
	flush := func() error {
		if err := store.HSetMulti(ctx, items); err != nil {
			return fmt.Errorf("write batch at %d: %w", written, err)
		}
		written += len(items)
		items = items[:0]
		return nil
	}

	for seq, e := range c.Entries {
		items = append(items, db.HashSetItem{
			Key:    src.Key(c.Language, seq),
			Fields: entryToHash(e, seq),
		})
		if len(items) == seedBatchSize {
			if err := flush(); err != nil {
				return written, err
			}
		}
	}
	if err := flush(); err != nil {
		return written, err
	}
	return written, nil
}
