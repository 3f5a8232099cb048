package testutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func norm2(v []float32) float64 {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	return sum
}

func TestUnitVector(t *testing.T) {
	rng := NewRNG(1)
	v := rng.UnitVector(64)
	require.Len(t, v, 64)
	assert.InDelta(t, 1.0, norm2(v), 1e-5)
}

func TestReproducibility(t *testing.T) {
	a := NewRNG(42).UnitVector(16)
	b := NewRNG(42).UnitVector(16)
	assert.Equal(t, a, b)

	rng := NewRNG(42)
	first := rng.UnitVector(16)
	rng.Reset()
	assert.Equal(t, first, rng.UnitVector(16))
}

func TestClusteredVectors(t *testing.T) {
	rng := NewRNG(7)
	vecs := rng.ClusteredVectors(32, 5, 0.05)
	require.Len(t, vecs, 5)

	for _, v := range vecs {
		assert.InDelta(t, 1.0, norm2(v), 1e-5)
	}

	// Members of one cluster stay closely aligned.
	for i := 1; i < len(vecs); i++ {
		var dot float64
		for j := range vecs[0] {
			dot += float64(vecs[0][j]) * float64(vecs[i][j])
		}
		assert.Greater(t, dot, 0.9)
	}
	assert.NotEqual(t, vecs[0], vecs[1])
}

func TestSine(t *testing.T) {
	s := Sine(440, 0.5, 0.8, 16000)
	require.Len(t, s, 8000)
	for _, v := range s {
		assert.LessOrEqual(t, v, float32(0.8))
		assert.GreaterOrEqual(t, v, float32(-0.8))
	}
}
