// Package backend defines the boundary to the embedding-extraction model.
//
// The engine never talks to a neural network directly; it consumes a
// Backend. Deployments wrap their inference runtime (ONNX, a sidecar
// service, a GPU worker pool) in this interface. When no model can be
// loaded the explicit Unavailable backend makes every call fail fast
// instead of silently serving fabricated embeddings; the Deterministic
// backend exists for tests and demos that opt in to fabricated output.
package backend

import (
	"context"
	"errors"
)

// ErrExtraction marks a per-sample extraction failure. Batch enrollment
// recovers from it by skipping the sample.
var ErrExtraction = errors.New("embedding extraction failed")

// ErrUnavailable is returned by the Unavailable backend and by live
// backends whose model backend is down.
var ErrUnavailable = errors.New("embedding backend unavailable")

// Backend produces fixed-length speaker embeddings from audio.
type Backend interface {
	// ExtractEmbedding converts mono audio samples at the given rate into
	// an embedding vector. Failures wrap ErrExtraction (recoverable per
	// sample) or ErrUnavailable (the backend as a whole is down).
	ExtractEmbedding(ctx context.Context, samples []float32, sampleRate int) ([]float32, error)
}

// Func adapts a plain function to the Backend interface.
type Func func(ctx context.Context, samples []float32, sampleRate int) ([]float32, error)

func (f Func) ExtractEmbedding(ctx context.Context, samples []float32, sampleRate int) ([]float32, error) {
	return f(ctx, samples, sampleRate)
}

// Unavailable is the Backend used when no model could be loaded. Every
// call fails with ErrUnavailable and the recorded reason.
type Unavailable struct {
	// Reason says why the backend is down, e.g. the model load error.
	Reason string
}

func (u Unavailable) ExtractEmbedding(context.Context, []float32, int) ([]float32, error) {
	if u.Reason == "" {
		return nil, ErrUnavailable
	}
	return nil, errors.Join(ErrUnavailable, errors.New(u.Reason))
}
