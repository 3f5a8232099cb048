package backend

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnavailable(t *testing.T) {
	ctx := context.Background()

	_, err := Unavailable{}.ExtractEmbedding(ctx, []float32{1}, 16000)
	assert.ErrorIs(t, err, ErrUnavailable)

	_, err = Unavailable{Reason: "model file missing"}.ExtractEmbedding(ctx, []float32{1}, 16000)
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Contains(t, err.Error(), "model file missing")
}

func TestDeterministic(t *testing.T) {
	ctx := context.Background()
	b := Deterministic{Dimension: 32}

	samples := []float32{0.1, -0.2, 0.3, 0.15, -0.05}
	first, err := b.ExtractEmbedding(ctx, samples, 16000)
	require.NoError(t, err)
	require.Len(t, first, 32)

	// Same content, same embedding.
	second, err := b.ExtractEmbedding(ctx, samples, 16000)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	// Different content, different embedding.
	other, err := b.ExtractEmbedding(ctx, []float32{0.9, 0.8, 0.7, 0.6, 0.5}, 16000)
	require.NoError(t, err)
	assert.NotEqual(t, first, other)

	// Unit norm.
	var norm float64
	for _, v := range first {
		norm += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, norm, 1e-5)

	t.Run("EmptyInput", func(t *testing.T) {
		_, err := b.ExtractEmbedding(ctx, nil, 16000)
		assert.ErrorIs(t, err, ErrExtraction)
	})

	t.Run("CanceledContext", func(t *testing.T) {
		canceled, cancel := context.WithCancel(ctx)
		cancel()
		_, err := b.ExtractEmbedding(canceled, samples, 16000)
		assert.ErrorIs(t, err, context.Canceled)
	})

	t.Run("DefaultDimension", func(t *testing.T) {
		vec, err := Deterministic{}.ExtractEmbedding(ctx, samples, 16000)
		require.NoError(t, err)
		assert.Len(t, vec, DefaultDimension)
	})
}
