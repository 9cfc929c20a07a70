package domain

// ReferenceEntry is one precomputed reference question with its embedding.
// An empty Embedding means the vector is missing.
type ReferenceEntry struct {
	QuestionID string
	Text       string
	Embedding  []float32
}

// HasEmbedding reports whether the entry carries a usable vector.
func (e ReferenceEntry) HasEmbedding() bool {
	return len(e.Embedding) > 0
}

// Corpus is the ordered set of reference entries for one language.
// It is never mutated after loading; iteration order is storage order.
type Corpus struct {
	Language string
	Entries  []ReferenceEntry
}

// NewCorpus creates a corpus for a language.
func NewCorpus(language string, entries []ReferenceEntry) *Corpus {
	return &Corpus{Language: language, Entries: entries}
}

// Len returns the number of entries.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Entries)
}

// MatchResult is the outcome of a best-match scan.
// Found=false means no usable entry: QuestionID is empty and Score is 0.
type MatchResult struct {
	QuestionID string
	Score      float64
	Found      bool
}

// Answer is the orchestrated response to a question.
type Answer struct {
	Matched    bool
	QuestionID string
	Score      float64
	Text       string
}
