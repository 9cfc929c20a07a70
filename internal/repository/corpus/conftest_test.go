package corpus

import (
	"context"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/gaiapet/clinicbot/internal/db"
	"github.com/gaiapet/clinicbot/internal/domain"
)

// memHashStore is an in-memory implementation of the hash consumer interfaces.
type memHashStore struct {
	mu      sync.Mutex
	hashes  map[string]map[string]string
	scanErr error
	getErr  error
	setErr  error
}

func newMemHashStore() *memHashStore {
	return &memHashStore{hashes: make(map[string]map[string]string)}
}

func (m *memHashStore) Scan(_ context.Context, pattern string) ([]string, error) {
	if m.scanErr != nil {
		return nil, m.scanErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	prefix := strings.TrimSuffix(pattern, "*")
	var keys []string
	for k := range m.hashes {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	// Scrambled order: loaders must not rely on SCAN order.
	sort.Sort(sort.Reverse(sort.StringSlice(keys)))
	return keys, nil
}

func (m *memHashStore) HGetAllMulti(_ context.Context, keys []string) ([]map[string]string, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]map[string]string, len(keys))
	for i, k := range keys {
		h := m.hashes[k]
		cp := make(map[string]string, len(h))
		for f, v := range h {
			cp[f] = v
		}
		out[i] = cp
	}
	return out, nil
}

func (m *memHashStore) HSetMulti(_ context.Context, items []db.HashSetItem) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, it := range items {
		h, ok := m.hashes[it.Key]
		if !ok {
			h = make(map[string]string)
			m.hashes[it.Key] = h
		}
		for f, v := range it.Fields {
			h[f] = v
		}
	}
	return nil
}

func (m *memHashStore) DelMulti(_ context.Context, keys []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.hashes, k)
	}
	return nil
}

// countingSource is a Source stub that counts reads.
type countingSource struct {
	calls   atomic.Int32
	corpus  *domain.Corpus
	err     error
	release chan struct{} // when set, Load blocks until closed
}

func (s *countingSource) Load(_ context.Context, language string) (*domain.Corpus, error) {
	s.calls.Add(1)
	if s.release != nil {
		<-s.release
	}
	if s.err != nil {
		return nil, s.err
	}
	return domain.NewCorpus(language, s.corpus.Entries), nil
}

func sampleEntries() []domain.ReferenceEntry {
	return []domain.ReferenceEntry{
		{QuestionID: "Q1", Text: "What are your opening hours?", Embedding: []float32{1, 0, 0}},
		{QuestionID: "Q2", Text: "Do you vaccinate cats?", Embedding: []float32{0, 1, 0}},
		{QuestionID: "Q3", Text: "Entry without vector"},
	}
}

func tempPath(t *testing.T, name string) string {
	t.Helper()
	return filepath.Join(t.TempDir(), name)
}
