package backend

import (
	"context"
	"hash/fnv"
	"math"
	"math/rand"
)

// DefaultDimension matches the speaker-verification models this engine
// was built against.
const DefaultDimension = 192

// Deterministic is a content-addressed stand-in backend for tests and
// demo deployments. The same audio always yields the same unit-norm
// embedding, so enrollment and recognition behave consistently, but the
// vectors carry no acoustic meaning. Never use it where real identity
// decisions are made; that is what Unavailable is for.
type Deterministic struct {
	// Dimension of produced embeddings. Zero means DefaultDimension.
	Dimension int
}

func (d Deterministic) ExtractEmbedding(ctx context.Context, samples []float32, sampleRate int) ([]float32, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, ErrExtraction
	}

	dim := d.Dimension
	if dim <= 0 {
		dim = DefaultDimension
	}

	// Hash coarsely quantized samples so float jitter from resampling
	// does not change the identity.
	h := fnv.New64a()
	var b [2]byte
	for _, s := range samples {
		q := int16(s * 1000)
		b[0] = byte(q)
		b[1] = byte(q >> 8)
		h.Write(b[:])
	}

	rng := rand.New(rand.NewSource(int64(h.Sum64())))
	vec := make([]float32, dim)
	var norm float64
	for i := range vec {
		v := rng.NormFloat64()
		vec[i] = float32(v)
		norm += v * v
	}
	if norm == 0 {
		norm = 1
	}
	inv := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= inv
	}
	return vec, nil
}
