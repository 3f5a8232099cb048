// Package audio holds the small audio surface the engine consumes: the
// Clip type handed to extraction, duration validation, peak normalization
// and a WAV loading helper.
//
// Decoding arbitrary container formats, resampling pipelines and loudness
// normalization remain external concerns; LoadWAV covers the dominant
// enrollment format so callers have a working load_audio out of the box.
package audio

import (
	"errors"
	"fmt"
	"time"
)

// DefaultSampleRate is the rate the embedding models consume.
const DefaultSampleRate = 16000

// ErrDuration is returned when a clip is shorter or longer than the
// configured bounds.
var ErrDuration = errors.New("audio duration out of range")

// ErrEmptyClip is returned for clips without samples or sample rate.
var ErrEmptyClip = errors.New("empty audio clip")

// Clip is a mono audio buffer at a known sample rate.
type Clip struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the clip length.
func (c Clip) Duration() time.Duration {
	if c.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(c.Samples)) / float64(c.SampleRate) * float64(time.Second))
}

// Seconds returns the clip length in seconds.
func (c Clip) Seconds() float64 {
	if c.SampleRate <= 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate)
}

// ValidateDuration checks that the clip length is within [min, max].
func (c Clip) ValidateDuration(min, max time.Duration) error {
	if len(c.Samples) == 0 || c.SampleRate <= 0 {
		return ErrEmptyClip
	}
	d := c.Duration()
	if d < min {
		return fmt.Errorf("%w: %.2fs, need at least %.2fs",
			ErrDuration, d.Seconds(), min.Seconds())
	}
	if max > 0 && d > max {
		return fmt.Errorf("%w: %.2fs, at most %.2fs supported",
			ErrDuration, d.Seconds(), max.Seconds())
	}
	return nil
}

// Normalized returns a peak-normalized copy of the clip: samples scaled
// so the maximum absolute amplitude is 1. A silent clip is returned
// unchanged (copied).
func (c Clip) Normalized() Clip {
	out := Clip{
		Samples:    append([]float32(nil), c.Samples...),
		SampleRate: c.SampleRate,
	}
	var peak float32
	for _, s := range out.Samples {
		if s < 0 {
			s = -s
		}
		if s > peak {
			peak = s
		}
	}
	if peak > 0 {
		inv := 1 / peak
		for i := range out.Samples {
			out.Samples[i] *= inv
		}
	}
	return out
}

// Slice returns the sub-clip covering [from, to) in seconds, clamped to
// the clip bounds.
func (c Clip) Slice(from, to float64) Clip {
	lo := int(from * float64(c.SampleRate))
	hi := int(to * float64(c.SampleRate))
	if lo < 0 {
		lo = 0
	}
	if hi > len(c.Samples) {
		hi = len(c.Samples)
	}
	if lo >= hi {
		return Clip{SampleRate: c.SampleRate}
	}
	return Clip{Samples: c.Samples[lo:hi], SampleRate: c.SampleRate}
}

// Resample converts the clip to the target sample rate using linear
// interpolation. Good enough for speech embeddings; callers needing
// band-limited resampling should do it upstream.
func (c Clip) Resample(targetRate int) Clip {
	if targetRate <= 0 || c.SampleRate == targetRate || len(c.Samples) == 0 {
		return c
	}

	ratio := float64(c.SampleRate) / float64(targetRate)
	n := int(float64(len(c.Samples)) / ratio)
	if n < 1 {
		n = 1
	}

	out := make([]float32, n)
	for i := range out {
		pos := float64(i) * ratio
		idx := int(pos)
		if idx >= len(c.Samples)-1 {
			out[i] = c.Samples[len(c.Samples)-1]
			continue
		}
		frac := float32(pos - float64(idx))
		out[i] = c.Samples[idx]*(1-frac) + c.Samples[idx+1]*frac
	}
	return Clip{Samples: out, SampleRate: targetRate}
}
