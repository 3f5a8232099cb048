// Package testutil provides seeded random generators for tests.
//
// It is intended for use in tests and benchmarks only. The RNG is
// thread-safe and reproducible from its seed, so tests that fabricate
// embeddings or audio get the same data on every run.
package testutil

import (
	"math"
	"math/rand"
	"sync"
)

// RNG encapsulates a seeded random number generator. It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Float32 returns a pseudo-random number in [0.0, 1.0).
func (r *RNG) Float32() float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Float32()
}

// UnitVector generates a random unit-norm vector of the given dimension.
func (r *RNG) UnitVector(dim int) []float32 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.unitVectorLocked(dim)
}

func (r *RNG) unitVectorLocked(dim int) []float32 {
	vec := make([]float32, dim)
	var norm float64
	for i := range vec {
		v := r.rand.NormFloat64()
		vec[i] = float32(v)
		norm += v * v
	}
	if norm == 0 {
		vec[0] = 1
		return vec
	}
	inv := float32(1 / math.Sqrt(norm))
	for i := range vec {
		vec[i] *= inv
	}
	return vec
}

// ClusteredVectors generates perVoice noisy variants around a fresh
// random center, normalized to unit length. The variants model repeat
// utterances of one voice: high mutual similarity, distinct values.
func (r *RNG) ClusteredVectors(dim, perVoice int, noise float32) [][]float32 {
	r.mu.Lock()
	defer r.mu.Unlock()

	center := r.unitVectorLocked(dim)
	out := make([][]float32, perVoice)
	for i := range out {
		vec := make([]float32, dim)
		var norm float64
		for j := range vec {
			v := float64(center[j]) + float64(noise)*r.rand.NormFloat64()
			vec[j] = float32(v)
			norm += v * v
		}
		if norm > 0 {
			inv := float32(1 / math.Sqrt(norm))
			for j := range vec {
				vec[j] *= inv
			}
		}
		out[i] = vec
	}
	return out
}

// Sine generates a mono sine tone as float32 samples in [-amp, amp].
func Sine(freq, seconds, amp float64, rate int) []float32 {
	n := int(seconds * float64(rate))
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return samples
}
