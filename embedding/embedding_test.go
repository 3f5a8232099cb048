package embedding

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDot(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Simple", []float32{1, 2, 3}, []float32{4, 5, 6}, 32},
		{"Zero", []float32{0, 0, 0}, []float32{0, 0, 0}, 0},
		{"Mixed", []float32{1, -1, 2}, []float32{1, 1, -2}, -4},
		{"Empty", []float32{}, []float32{}, 0},
		{"Single", []float32{2}, []float32{3}, 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.expected, Dot(tt.a, tt.b), 1e-5)
		})
	}
}

func TestNormalizeL2(t *testing.T) {
	t.Run("InPlace", func(t *testing.T) {
		v := []float32{3, 4}
		ok := NormalizeL2InPlace(v)
		assert.True(t, ok)
		assert.InDelta(t, float32(0.6), v[0], 1e-5)
		assert.InDelta(t, float32(0.8), v[1], 1e-5)

		assert.False(t, NormalizeL2InPlace([]float32{0, 0}))
		assert.False(t, NormalizeL2InPlace([]float32{}))
	})

	t.Run("Copy", func(t *testing.T) {
		v := []float32{1, 0}
		dst, ok := NormalizeL2Copy(v)
		assert.True(t, ok)
		assert.Equal(t, float32(1), dst[0])
		assert.NotSame(t, &v[0], &dst[0])

		dst, ok = NormalizeL2Copy([]float32{0, 0})
		assert.False(t, ok)
		assert.Nil(t, dst)
	})
}

func TestCosine(t *testing.T) {
	tests := []struct {
		name     string
		a, b     []float32
		expected float32
	}{
		{"Identical", []float32{1, 0, 0}, []float32{1, 0, 0}, 1},
		{"Opposite", []float32{1, 0}, []float32{-1, 0}, 0},
		{"Orthogonal", []float32{1, 0}, []float32{0, 1}, 0.5},
		{"ScaleInvariant", []float32{2, 0}, []float32{5, 0}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Cosine(tt.a, tt.b)
			require.NoError(t, err)
			assert.InDelta(t, tt.expected, got, 1e-5)
		})
	}

	t.Run("Symmetric", func(t *testing.T) {
		rng := rand.New(rand.NewSource(7))
		for n := 0; n < 50; n++ {
			a := randomVector(rng, 16)
			b := randomVector(rng, 16)
			ab, err := Cosine(a, b)
			require.NoError(t, err)
			ba, err := Cosine(b, a)
			require.NoError(t, err)
			assert.InDelta(t, ab, ba, 1e-6)
			assert.GreaterOrEqual(t, ab, float32(0))
			assert.LessOrEqual(t, ab, float32(1))
		}
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		_, err := Cosine([]float32{1, 2}, []float32{1, 2, 3})
		var dm *ErrDimensionMismatch
		require.ErrorAs(t, err, &dm)
		assert.Equal(t, 2, dm.Expected)
		assert.Equal(t, 3, dm.Actual)
	})

	t.Run("ZeroNorm", func(t *testing.T) {
		_, err := Cosine([]float32{0, 0}, []float32{1, 0})
		assert.ErrorIs(t, err, ErrZeroNorm)
	})
}

func TestMean(t *testing.T) {
	t.Run("Empty", func(t *testing.T) {
		_, err := Mean(nil)
		assert.ErrorIs(t, err, ErrEmptyInput)
	})

	t.Run("SingleInput", func(t *testing.T) {
		got, err := Mean([][]float32{{3, 4}})
		require.NoError(t, err)
		assert.InDelta(t, float32(0.6), got[0], 1e-5)
		assert.InDelta(t, float32(0.8), got[1], 1e-5)
	})

	t.Run("DimensionMismatch", func(t *testing.T) {
		_, err := Mean([][]float32{{1, 0}, {1, 0, 0}})
		var dm *ErrDimensionMismatch
		assert.ErrorAs(t, err, &dm)
	})

	t.Run("UnitNorm", func(t *testing.T) {
		rng := rand.New(rand.NewSource(42))
		for n := 0; n < 20; n++ {
			n := 1 + rng.Intn(8)
			embs := make([][]float32, n)
			for i := range embs {
				embs[i] = randomVector(rng, 32)
			}
			got, err := Mean(embs)
			require.NoError(t, err)
			assert.InDelta(t, 1.0, float64(Norm(got)), 1e-5)
		}
	})

	t.Run("PermutationInvariant", func(t *testing.T) {
		rng := rand.New(rand.NewSource(99))
		embs := make([][]float32, 5)
		for i := range embs {
			embs[i] = randomVector(rng, 24)
		}
		want, err := Mean(embs)
		require.NoError(t, err)

		for n := 0; n < 10; n++ {
			shuffled := make([][]float32, len(embs))
			copy(shuffled, embs)
			rng.Shuffle(len(shuffled), func(i, j int) {
				shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
			})
			got, err := Mean(shuffled)
			require.NoError(t, err)
			for i := range want {
				assert.InDelta(t, want[i], got[i], 1e-5)
			}
		}
	})

	t.Run("KnownMean", func(t *testing.T) {
		got, err := Mean([][]float32{{1, 0}, {0, 1}})
		require.NoError(t, err)
		// Mean is (0.5, 0.5), normalized to (1/sqrt2, 1/sqrt2).
		inv := float32(1 / math.Sqrt2)
		assert.InDelta(t, inv, got[0], 1e-5)
		assert.InDelta(t, inv, got[1], 1e-5)
	})
}

func randomVector(rng *rand.Rand, dim int) []float32 {
	v := make([]float32, dim)
	for i := range v {
		v[i] = float32(rng.NormFloat64())
	}
	return v
}
