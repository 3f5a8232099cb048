package embedding

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// ErrEmptyInput is returned by Mean when no embeddings are supplied.
// Callers must filter out failed extractions before aggregating.
var ErrEmptyInput = errors.New("no embeddings to aggregate")

// ErrZeroNorm is returned when a vector cannot be L2-normalized.
var ErrZeroNorm = errors.New("vector has zero L2 norm")

// ErrDimensionMismatch indicates that two vectors (or the members of an
// aggregation) do not share the same dimensionality.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

// Dot calculates the dot product of two vectors.
// Assumes vectors are the same length (caller's responsibility).
func Dot(a, b []float32) float32 {
	var sum float32
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Norm returns the Euclidean (L2) norm of v.
func Norm(v []float32) float32 {
	return float32(math.Sqrt(float64(Dot(v, v))))
}

// NormalizeL2InPlace L2-normalizes v in place.
// Returns false if v has zero L2 norm.
func NormalizeL2InPlace(v []float32) bool {
	if len(v) == 0 {
		return false
	}
	norm2 := Dot(v, v)
	if norm2 == 0 {
		return false
	}
	inv := 1 / float32(math.Sqrt(float64(norm2)))
	for i := range v {
		v[i] *= inv
	}
	return true
}

// NormalizeL2Copy returns a normalized copy of src.
// Returns false if src has zero L2 norm.
func NormalizeL2Copy(src []float32) ([]float32, bool) {
	dst := slices.Clone(src)
	if !NormalizeL2InPlace(dst) {
		return nil, false
	}
	return dst, true
}

// Cosine returns the rescaled cosine similarity of a and b in [0, 1].
//
// Both inputs are normalized on copies, so callers may pass raw vectors.
// The raw cosine in [-1, 1] is mapped via (cos+1)/2; 1 means identical
// direction, 0.5 orthogonal, 0 opposite. Symmetric in its arguments.
func Cosine(a, b []float32) (float32, error) {
	if len(a) != len(b) {
		return 0, &ErrDimensionMismatch{Expected: len(a), Actual: len(b)}
	}
	na, ok := NormalizeL2Copy(a)
	if !ok {
		return 0, ErrZeroNorm
	}
	nb, ok := NormalizeL2Copy(b)
	if !ok {
		return 0, ErrZeroNorm
	}
	cos := Dot(na, nb)
	// Guard against float drift outside [-1, 1].
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return (cos + 1) / 2, nil
}

// CosineNormalized returns the rescaled cosine similarity of two vectors
// that are already unit-norm. It skips the normalization copies and is the
// hot path for ranking a query against a stored population.
func CosineNormalized(a, b []float32) float32 {
	cos := Dot(a, b)
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	return (cos + 1) / 2
}

// Mean aggregates per-sample embeddings into one representative embedding:
// the element-wise arithmetic mean, L2-normalized. The result depends only
// on the multiset of inputs, not their order.
//
// Returns ErrEmptyInput for an empty slice and ErrDimensionMismatch when
// the inputs disagree on dimensionality.
func Mean(embeddings [][]float32) ([]float32, error) {
	if len(embeddings) == 0 {
		return nil, ErrEmptyInput
	}
	dim := len(embeddings[0])
	if dim == 0 {
		return nil, &ErrDimensionMismatch{Expected: 1, Actual: 0}
	}

	// Accumulate in float64 so the mean stays stable for large sample sets.
	acc := make([]float64, dim)
	for _, e := range embeddings {
		if len(e) != dim {
			return nil, &ErrDimensionMismatch{Expected: dim, Actual: len(e)}
		}
		for i, v := range e {
			acc[i] += float64(v)
		}
	}

	n := float64(len(embeddings))
	out := make([]float32, dim)
	for i, v := range acc {
		out[i] = float32(v / n)
	}
	if !NormalizeL2InPlace(out) {
		return nil, ErrZeroNorm
	}
	return out, nil
}
