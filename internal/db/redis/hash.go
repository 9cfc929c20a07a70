package redis

import (
	"context"
	"fmt"

	"github.com/redis/rueidis"

	"github.com/gaiapet/clinicbot/internal/db"
)

// HSetMulti writes the hashes in pipelines of at most BatchSize commands.
// It stops at the first failed write; earlier batches stay written.
func (s *Store) HSetMulti(ctx context.Context, items []db.HashSetItem) error {
	for start := 0; start < len(items); start += s.batchSize {
		batch := items[start:min(start+s.batchSize, len(items))]

		cmds := make(rueidis.Commands, len(batch))
		for i, item := range batch {
			cmd := s.client.B().Hset().Key(item.Key).FieldValue()
			for k, v := range item.Fields {
				cmd = cmd.FieldValue(k, v)
			}
			cmds[i] = cmd.Build()
		}

		for i, res := range s.client.DoMulti(ctx, cmds...) {
			if err := res.Error(); err != nil {
				return &db.Error{Op: db.OpHSet, Err: fmt.Errorf("key %s: %w", batch[i].Key, err)}
			}
		}
	}
	return nil
}

// HGetAllMulti fetches the hashes in pipelines of at most BatchSize commands.
// Results keep the order of keys; a missing key yields an empty map.
func (s *Store) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if len(keys) == 0 {
		return nil, nil
	}

	out := make([]map[string]string, 0, len(keys))
	for start := 0; start < len(keys); start += s.batchSize {
		batch := keys[start:min(start+s.batchSize, len(keys))]

		cmds := make(rueidis.Commands, len(batch))
		for i, key := range batch {
			cmds[i] = s.client.B().Hgetall().Key(key).Build()
		}

		for i, res := range s.client.DoMulti(ctx, cmds...) {
			m, err := res.AsStrMap()
			if err != nil {
				return nil, &db.Error{Op: db.OpHGetAll, Err: fmt.Errorf("key %s: %w", batch[i], err)}
			}
			out = append(out, m)
		}
	}
	return out, nil
}

// DelMulti deletes keys in a single DEL command.
func (s *Store) DelMulti(ctx context.Context, keys []string) error {
	if len(keys) == 0 {
		return nil
	}
	if err := s.client.Do(ctx, s.client.B().Del().Key(keys...).Build()).Error(); err != nil {
		return &db.Error{Op: db.OpDel, Err: err}
	}
	return nil
}

// Scan returns every key matching pattern. SCAN may report a key more than
// once while the keyspace is rehashed, so the result is de-duplicated.
func (s *Store) Scan(ctx context.Context, pattern string) ([]string, error) {
	var (
		keys   []string
		cursor uint64
		seen   = make(map[string]struct{})
	)
	for {
		cmd := s.client.B().Scan().Cursor(cursor).Match(pattern).Count(s.scanCount).Build()
		res, err := s.client.Do(ctx, cmd).AsScanEntry()
		if err != nil {
			return nil, &db.Error{Op: db.OpScan, Err: err}
		}
		for _, k := range res.Elements {
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			keys = append(keys, k)
		}
		if cursor = res.Cursor; cursor == 0 {
			return keys, nil
		}
	}
}
