// Package match ranks a query embedding against the enrolled population.
//
// Ranking is exact (no index structure): the population sizes this engine
// targets are a few hundred to low thousands of identities, so a single
// O(n*D) pass is cheaper and simpler than maintaining an ANN index.
package match

import (
	"errors"
	"sort"

	"github.com/litianc/voiceprint/embedding"
)

// ErrInvalidTopK is returned when top-k is not positive.
var ErrInvalidTopK = errors.New("top_k must be positive")

// Entry is one member of the population to rank against. Vector must be
// unit-norm; the store guarantees that for representative embeddings.
type Entry struct {
	SpeakerID string
	Vector    []float32
}

// Match is one ranked result.
type Match struct {
	SpeakerID  string
	Similarity float32
	IsMatch    bool
}

// Rank scores query against every population entry and returns at most
// topK results, sorted descending by similarity. Ties keep the population's
// insertion order (stable sort) so identical inputs always yield identical
// output. An empty population returns an empty slice, not an error.
//
// Similarity is rescaled cosine in [0, 1]; IsMatch reports similarity >=
// threshold.
func Rank(query []float32, population []Entry, topK int, threshold float32) ([]Match, error) {
	if topK <= 0 {
		return nil, ErrInvalidTopK
	}
	if len(population) == 0 {
		return []Match{}, nil
	}

	q, ok := embedding.NormalizeL2Copy(query)
	if !ok {
		return nil, embedding.ErrZeroNorm
	}

	matches := make([]Match, 0, len(population))
	for _, e := range population {
		if len(e.Vector) != len(q) {
			return nil, &embedding.ErrDimensionMismatch{Expected: len(q), Actual: len(e.Vector)}
		}
		sim := embedding.CosineNormalized(q, e.Vector)
		matches = append(matches, Match{
			SpeakerID:  e.SpeakerID,
			Similarity: sim,
			IsMatch:    sim >= threshold,
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Similarity > matches[j].Similarity
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}
