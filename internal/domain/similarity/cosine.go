// Package similarity implements vector comparison used by question matching.
package similarity

import (
	"fmt"
	"math"

	"github.com/gaiapet/clinicbot/internal/domain"
)

// Cosine returns the cosine similarity of a and b, i.e. 1 minus the cosine distance.
// The result lies in [-1, 1]. Vectors of different length or zero magnitude are
// rejected rather than scored.
func Cosine(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("%w: %d != %d", domain.ErrVectorDimMismatch, len(a), len(b))
	}

	var dot, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		normA += x * x
		normB += y * y
	}

	if normA == 0 || normB == 0 {
		return 0, domain.ErrZeroVector
	}

	score := dot / (math.Sqrt(normA) * math.Sqrt(normB))
	if math.IsNaN(score) || math.IsInf(score, 0) {
		return 0, fmt.Errorf("non-finite similarity %v", score)
	}

	// Rounding can push identical vectors slightly past 1.
	return math.Max(-1, math.Min(1, score)), nil
}
