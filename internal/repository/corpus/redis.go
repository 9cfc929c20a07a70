package corpus

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"github.com/gaiapet/clinicbot/internal/db"
	"github.com/gaiapet/clinicbot/internal/domain"
)

// RedisSource reads corpora stored as one hash per reference entry.
// Key layout: <prefix>corpus:<lang>:<seq>, so duplicate question ids keep their own rows.
type RedisSource struct {
	store     db.HashReader
	prefix    string
	languages map[string]struct{}
}

// NewRedisSource creates a Redis-backed source serving the given languages.
func NewRedisSource(store db.HashReader, prefix string, languages []string) *RedisSource {
	set := make(map[string]struct{}, len(languages))
	for _, l := range languages {
		set[l] = struct{}{}
	}
	return &RedisSource{store: store, prefix: prefix, languages: set}
}

// Load fetches every entry of the language and orders them by their stored sequence.
func (s *RedisSource) Load(ctx context.Context, language string) (*domain.Corpus, error) {
	if _, ok := s.languages[language]; !ok {
		return nil, fmt.Errorf("%w: %q", domain.ErrUnsupportedLanguage, language)
	}

	keys, err := s.store.Scan(ctx, s.pattern(language))
	if err != nil {
		return nil, fmt.Errorf("%w: scan %s: %w", domain.ErrCorpusUnavailable, language, err)
	}
	if len(keys) == 0 {
		return nil, fmt.Errorf("%w: no embedding data for language %q", domain.ErrCorpusUnavailable, language)
	}

	hashes, err := s.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("%w: fetch %s: %w", domain.ErrCorpusUnavailable, language, err)
	}

	type seqEntry struct {
		seq   int
		entry domain.ReferenceEntry
	}
	rows := make([]seqEntry, 0, len(hashes))
	for i, h := range hashes {
		if len(h) == 0 {
			continue // deleted between SCAN and HGETALL
		}
		e, seq, err := entryFromHash(h)
		if err != nil {
			return nil, fmt.Errorf("%w: key %s: %w", domain.ErrCorpusUnavailable, keys[i], err)
		}
		rows = append(rows, seqEntry{seq: seq, entry: e})
	}

	sort.SliceStable(rows, func(i, j int) bool { return rows[i].seq < rows[j].seq })

	entries := make([]domain.ReferenceEntry, len(rows))
	for i, r := range rows {
		entries[i] = r.entry
	}
	return domain.NewCorpus(language, entries), nil
}

// Key returns the hash key of the entry at position seq.
func (s *RedisSource) Key(language string, seq int) string {
	return s.prefix + "corpus:" + language + ":" + strconv.Itoa(seq)
}

func (s *RedisSource) pattern(language string) string {
	return s.prefix + "corpus:" + language + ":*"
}
