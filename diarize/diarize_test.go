package diarize

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/litianc/voiceprint/audio"
	"github.com/litianc/voiceprint/backend"
)

// levelBackend maps the sign of the mean sample amplitude to one of two
// fixed embeddings, giving each half of a test clip its own voice.
func levelBackend(dim int) backend.Backend {
	return backend.Func(func(_ context.Context, samples []float32, _ int) ([]float32, error) {
		var mean float64
		for _, s := range samples {
			mean += float64(s)
		}
		mean /= float64(len(samples))

		vec := make([]float32, dim)
		if mean >= 0 {
			vec[0] = 1
		} else {
			vec[1] = 1
		}
		return vec, nil
	})
}

// twoSpeakerClip is positive-amplitude for the first half and
// negative-amplitude for the second.
func twoSpeakerClip(seconds float64, rate int) audio.Clip {
	n := int(seconds * float64(rate))
	samples := make([]float32, n)
	for i := range samples {
		v := float32(0.4 + 0.1*math.Sin(float64(i)))
		if i >= n/2 {
			v = -v
		}
		samples[i] = v
	}
	return audio.Clip{Samples: samples, SampleRate: rate}
}

func TestSegmentTwoSpeakers(t *testing.T) {
	clip := twoSpeakerClip(10, 1000)
	s := NewSegmenter(levelBackend(8), WithSeed(42))

	segments, err := s.Segment(context.Background(), clip, 0)
	require.NoError(t, err)
	require.Len(t, segments, 2)

	// Sorted, contiguous, covering the whole clip.
	assert.Equal(t, 0.0, segments[0].Start)
	assert.Equal(t, segments[0].End, segments[1].Start)
	assert.InDelta(t, 10.0, segments[1].End, 1e-9)
	assert.InDelta(t, 5.0, segments[0].End, 1.0)

	assert.Equal(t, "speaker_1", segments[0].Speaker)
	assert.Equal(t, "speaker_2", segments[1].Speaker)
	for _, seg := range segments {
		assert.Greater(t, seg.Confidence, float32(0.5))
		assert.LessOrEqual(t, seg.Confidence, float32(1.0))
	}
}

func TestSegmentSingleSpeaker(t *testing.T) {
	clip := twoSpeakerClip(6, 1000)
	for i := range clip.Samples {
		if clip.Samples[i] < 0 {
			clip.Samples[i] = -clip.Samples[i]
		}
	}
	s := NewSegmenter(levelBackend(8), WithSeed(42))

	segments, err := s.Segment(context.Background(), clip, 0)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "speaker_1", segments[0].Speaker)
	assert.Equal(t, 0.0, segments[0].Start)
	assert.InDelta(t, 6.0, segments[0].End, 1e-9)
}

func TestSegmentShortClip(t *testing.T) {
	// Shorter than one analysis window: a single whole-clip window.
	clip := twoSpeakerClip(1, 1000)
	s := NewSegmenter(levelBackend(8))

	segments, err := s.Segment(context.Background(), clip, 0)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.InDelta(t, 1.0, segments[0].End, 1e-9)
}

func TestSegmentDeterministic(t *testing.T) {
	clip := twoSpeakerClip(10, 1000)
	s := NewSegmenter(levelBackend(8), WithSeed(7))

	first, err := s.Segment(context.Background(), clip, 0)
	require.NoError(t, err)
	second, err := s.Segment(context.Background(), clip, 0)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestSegmentEmptyClip(t *testing.T) {
	s := NewSegmenter(levelBackend(8))
	_, err := s.Segment(context.Background(), audio.Clip{}, 0)
	assert.ErrorIs(t, err, audio.ErrEmptyClip)
}

func TestSegmentBackendFailure(t *testing.T) {
	failing := backend.Func(func(context.Context, []float32, int) ([]float32, error) {
		return nil, backend.ErrExtraction
	})
	s := NewSegmenter(failing)

	_, err := s.Segment(context.Background(), twoSpeakerClip(4, 1000), 0)
	assert.ErrorIs(t, err, backend.ErrExtraction)
}

func TestSegmentMaxSpeakersBound(t *testing.T) {
	clip := twoSpeakerClip(10, 1000)
	s := NewSegmenter(levelBackend(8), WithSeed(42), WithMaxSpeakers(1))

	segments, err := s.Segment(context.Background(), clip, 0)
	require.NoError(t, err)

	seen := map[string]bool{}
	for _, seg := range segments {
		seen[seg.Speaker] = true
	}
	assert.Len(t, seen, 1)
}

func TestSegmentExpectedSpeakers(t *testing.T) {
	clip := twoSpeakerClip(10, 1000)
	s := NewSegmenter(levelBackend(8), WithSeed(42))

	// A caller who knows the recording has two speakers gets exactly
	// two labels, independent of the silhouette estimate.
	segments, err := s.Segment(context.Background(), clip, 2)
	require.NoError(t, err)
	seen := map[string]bool{}
	for _, seg := range segments {
		seen[seg.Speaker] = true
	}
	assert.Len(t, seen, 2)
	assert.Equal(t, 0.0, segments[0].Start)
	assert.InDelta(t, 10.0, segments[len(segments)-1].End, 1e-9)

	// Pinning overrides estimation in both directions: the estimate for
	// this clip is two speakers, but a pinned count of one wins.
	segments, err = s.Segment(context.Background(), clip, 1)
	require.NoError(t, err)
	require.Len(t, segments, 1)
	assert.Equal(t, "speaker_1", segments[0].Speaker)

	// A count above the window total is clamped, not an error.
	segments, err = s.Segment(context.Background(), twoSpeakerClip(1, 1000), 5)
	require.NoError(t, err)
	require.Len(t, segments, 1)
}

func TestSegmentErrIsNotWrappedForCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	blocked := backend.Func(func(ctx context.Context, _ []float32, _ int) ([]float32, error) {
		return nil, ctx.Err()
	})
	s := NewSegmenter(blocked)
	_, err := s.Segment(ctx, twoSpeakerClip(4, 1000), 0)
	assert.True(t, errors.Is(err, context.Canceled))
}
