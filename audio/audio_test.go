package audio

import (
	"math"
	"os"
	"path/filepath"
	"testing"
	"time"

	gaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sine(freq float64, seconds float64, rate int) Clip {
	n := int(seconds * float64(rate))
	samples := make([]float32, n)
	for i := range samples {
		samples[i] = float32(0.5 * math.Sin(2*math.Pi*freq*float64(i)/float64(rate)))
	}
	return Clip{Samples: samples, SampleRate: rate}
}

func TestClipDuration(t *testing.T) {
	c := sine(440, 2, 16000)
	assert.Equal(t, 2*time.Second, c.Duration())
	assert.InDelta(t, 2.0, c.Seconds(), 1e-9)

	assert.Equal(t, time.Duration(0), Clip{}.Duration())
}

func TestValidateDuration(t *testing.T) {
	tests := []struct {
		name    string
		clip    Clip
		wantErr error
	}{
		{"OK", sine(440, 2, 16000), nil},
		{"TooShort", sine(440, 0.2, 16000), ErrDuration},
		{"TooLong", sine(440, 31, 16000), ErrDuration},
		{"Empty", Clip{SampleRate: 16000}, ErrEmptyClip},
		{"NoRate", Clip{Samples: []float32{1, 2}}, ErrEmptyClip},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.clip.ValidateDuration(500*time.Millisecond, 30*time.Second)
			if tt.wantErr == nil {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, tt.wantErr)
			}
		})
	}
}

func TestNormalized(t *testing.T) {
	c := Clip{Samples: []float32{0.1, -0.5, 0.25}, SampleRate: 16000}
	n := c.Normalized()

	assert.InDelta(t, float32(0.2), n.Samples[0], 1e-5)
	assert.InDelta(t, float32(-1.0), n.Samples[1], 1e-5)
	// Original untouched.
	assert.InDelta(t, float32(0.1), c.Samples[0], 1e-5)

	silent := Clip{Samples: []float32{0, 0, 0}, SampleRate: 16000}
	assert.Equal(t, silent.Samples, silent.Normalized().Samples)
}

func TestSlice(t *testing.T) {
	c := sine(440, 10, 1000)

	s := c.Slice(2, 4)
	assert.Len(t, s.Samples, 2000)
	assert.Equal(t, 1000, s.SampleRate)

	// Clamped at the tail.
	s = c.Slice(9, 15)
	assert.Len(t, s.Samples, 1000)

	// Degenerate range.
	s = c.Slice(5, 5)
	assert.Empty(t, s.Samples)
}

func TestResample(t *testing.T) {
	c := sine(100, 1, 48000)
	r := c.Resample(16000)

	assert.Equal(t, 16000, r.SampleRate)
	assert.InDelta(t, 1.0, r.Seconds(), 0.01)

	// Same rate is a no-op.
	same := c.Resample(48000)
	assert.Equal(t, len(c.Samples), len(same.Samples))
}

func TestDecodeWAV(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tone.wav")

	// Write a 1-second 16-bit mono WAV at 16 kHz.
	out, err := os.Create(path)
	require.NoError(t, err)
	enc := wav.NewEncoder(out, 16000, 16, 1, 1)
	const n = 16000
	data := make([]int, n)
	for i := range data {
		data[i] = int(16000 * math.Sin(2*math.Pi*440*float64(i)/16000))
	}
	require.NoError(t, enc.Write(&gaudio.IntBuffer{
		Data:           data,
		Format:         &gaudio.Format{NumChannels: 1, SampleRate: 16000},
		SourceBitDepth: 16,
	}))
	require.NoError(t, enc.Close())
	require.NoError(t, out.Close())

	clip, err := LoadWAV(path, 16000)
	require.NoError(t, err)
	assert.Equal(t, 16000, clip.SampleRate)
	assert.InDelta(t, 1.0, clip.Seconds(), 0.01)

	// Amplitudes scaled into [-1, 1].
	var peak float32
	for _, s := range clip.Samples {
		if s > peak {
			peak = s
		}
	}
	assert.Greater(t, peak, float32(0.3))
	assert.LessOrEqual(t, peak, float32(1.0))

	t.Run("NotWAV", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.wav")
		require.NoError(t, os.WriteFile(bad, []byte("not a wav"), 0o644))
		_, err := LoadWAV(bad, 16000)
		assert.Error(t, err)
	})
}
