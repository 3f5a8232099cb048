package audio

import (
	"fmt"
	"io"
	"os"

	"github.com/go-audio/wav"
)

// LoadWAV decodes a WAV file into a mono Clip at the target sample rate.
// Multi-channel audio is downmixed by averaging; rate conversion uses
// linear interpolation.
func LoadWAV(path string, targetRate int) (Clip, error) {
	f, err := os.Open(path)
	if err != nil {
		return Clip{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	clip, err := DecodeWAV(f, targetRate)
	if err != nil {
		return Clip{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return clip, nil
}

// DecodeWAV decodes WAV data from r into a mono Clip at the target
// sample rate.
func DecodeWAV(r io.ReadSeeker, targetRate int) (Clip, error) {
	dec := wav.NewDecoder(r)
	if !dec.IsValidFile() {
		return Clip{}, fmt.Errorf("not a valid WAV file")
	}

	buf, err := dec.FullPCMBuffer()
	if err != nil {
		return Clip{}, fmt.Errorf("read PCM: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return Clip{}, ErrEmptyClip
	}

	bitDepth := int(dec.BitDepth)
	if buf.SourceBitDepth > 0 {
		bitDepth = buf.SourceBitDepth
	}
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := float32(int64(1) << (bitDepth - 1))

	channels := buf.Format.NumChannels
	if channels < 1 {
		channels = 1
	}

	// Downmix interleaved channels to mono and scale to [-1, 1].
	frames := len(buf.Data) / channels
	samples := make([]float32, frames)
	for i := 0; i < frames; i++ {
		var sum float32
		for ch := 0; ch < channels; ch++ {
			sum += float32(buf.Data[i*channels+ch]) / scale
		}
		samples[i] = sum / float32(channels)
	}

	clip := Clip{Samples: samples, SampleRate: buf.Format.SampleRate}
	if targetRate > 0 && clip.SampleRate != targetRate {
		clip = clip.Resample(targetRate)
	}
	return clip, nil
}
