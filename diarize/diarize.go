// Package diarize splits a recording into speaker-attributed segments.
//
// The pipeline is windowed embedding extraction, k-means clustering of
// the window embeddings, and a silhouette sweep to estimate how many
// speakers are present; callers who know the speaker count can pin it
// instead. Labels are positional (speaker_1, speaker_2, ...) in order
// of first appearance; they are not matched against enrolled
// voiceprints.
package diarize

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/litianc/voiceprint/audio"
	"github.com/litianc/voiceprint/backend"
	"github.com/litianc/voiceprint/embedding"
	"github.com/litianc/voiceprint/internal/kmeans"
	"github.com/litianc/voiceprint/model"
)

const (
	// DefaultWindow is the analysis window length.
	DefaultWindow = 1500 * time.Millisecond
	// DefaultHop is the stride between window starts.
	DefaultHop = 750 * time.Millisecond
	// DefaultMaxSpeakers bounds the speaker-count sweep.
	DefaultMaxSpeakers = 10

	maxIterations = 50
	// minSilhouette is the separation below which a recording is
	// treated as single-speaker.
	minSilhouette = 0.15
)

// Segmenter runs speaker diarization over audio clips. It is safe for
// concurrent use.
type Segmenter struct {
	backend     backend.Backend
	window      time.Duration
	hop         time.Duration
	maxSpeakers int
	concurrency int
	seed        int64
}

// Option configures a Segmenter.
type Option func(*Segmenter)

// WithWindow sets the analysis window length.
func WithWindow(d time.Duration) Option {
	return func(s *Segmenter) {
		if d > 0 {
			s.window = d
		}
	}
}

// WithHop sets the stride between window starts.
func WithHop(d time.Duration) Option {
	return func(s *Segmenter) {
		if d > 0 {
			s.hop = d
		}
	}
}

// WithMaxSpeakers bounds how many distinct speakers may be detected.
func WithMaxSpeakers(n int) Option {
	return func(s *Segmenter) {
		if n > 0 {
			s.maxSpeakers = n
		}
	}
}

// WithConcurrency bounds concurrent window extractions.
func WithConcurrency(n int) Option {
	return func(s *Segmenter) {
		if n > 0 {
			s.concurrency = n
		}
	}
}

// WithSeed fixes the clustering seed. Runs with the same seed and input
// produce identical segments.
func WithSeed(seed int64) Option {
	return func(s *Segmenter) { s.seed = seed }
}

// NewSegmenter creates a Segmenter extracting window embeddings through b.
func NewSegmenter(b backend.Backend, opts ...Option) *Segmenter {
	s := &Segmenter{
		backend:     b,
		window:      DefaultWindow,
		hop:         DefaultHop,
		maxSpeakers: DefaultMaxSpeakers,
		concurrency: 4,
		seed:        1,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

type window struct {
	start int // sample offset
	end   int
	vec   []float32
}

// Segment diarizes the clip. expected pins the number of distinct
// speakers when the caller knows it; 0 (or a negative value) estimates
// the count from the data. The returned segments are sorted by start
// time, non-overlapping, and together cover the whole clip.
func (s *Segmenter) Segment(ctx context.Context, clip audio.Clip, expected int) ([]model.Segment, error) {
	if len(clip.Samples) == 0 || clip.SampleRate <= 0 {
		return nil, audio.ErrEmptyClip
	}

	windows := s.splitWindows(clip)

	// Extract an embedding per window.
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for i := range windows {
		g.Go(func() error {
			vec, err := s.backend.ExtractEmbedding(gctx, clip.Samples[windows[i].start:windows[i].end], clip.SampleRate)
			if err != nil {
				return fmt.Errorf("window %d: %w", i, err)
			}
			if !embedding.NormalizeL2InPlace(vec) {
				return fmt.Errorf("window %d: %w", i, embedding.ErrZeroNorm)
			}
			windows[i].vec = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	dim := len(windows[0].vec)
	flat := make([]float32, 0, len(windows)*dim)
	for i := range windows {
		if len(windows[i].vec) != dim {
			return nil, &embedding.ErrDimensionMismatch{Expected: dim, Actual: len(windows[i].vec)}
		}
		flat = append(flat, windows[i].vec...)
	}

	res := s.cluster(flat, dim, len(windows), expected)
	return s.assemble(clip, windows, res, dim), nil
}

// splitWindows yields overlapping analysis windows. A clip shorter than
// one window becomes a single whole-clip window; a short tail is folded
// into the preceding window rather than analyzed on its own.
func (s *Segmenter) splitWindows(clip audio.Clip) []window {
	winSamples := int(s.window.Seconds() * float64(clip.SampleRate))
	hopSamples := int(s.hop.Seconds() * float64(clip.SampleRate))
	if winSamples < 1 {
		winSamples = 1
	}
	if hopSamples < 1 {
		hopSamples = 1
	}

	n := len(clip.Samples)
	if n <= winSamples {
		return []window{{start: 0, end: n}}
	}

	var windows []window
	for start := 0; start < n; start += hopSamples {
		end := start + winSamples
		if end > n {
			end = n
		}
		if end-start < hopSamples && len(windows) > 0 {
			break
		}
		windows = append(windows, window{start: start, end: end})
		if end == n {
			break
		}
	}
	return windows
}

// cluster trains exactly expected clusters when the caller pinned a
// speaker count. Otherwise it sweeps k from 2 to maxSpeakers and keeps
// the best silhouette score, falling back to a single cluster when
// nothing separates well.
func (s *Segmenter) cluster(flat []float32, dim, n, expected int) *kmeans.Result {
	rng := rand.New(rand.NewSource(s.seed))

	if expected > 0 {
		k := expected
		if k > n {
			k = n
		}
		return kmeans.Train(flat, dim, k, maxIterations, rng)
	}

	maxK := s.maxSpeakers
	if maxK > n {
		maxK = n
	}

	best := kmeans.Train(flat, dim, 1, maxIterations, rng)
	bestScore := minSilhouette

	for k := 2; k <= maxK; k++ {
		res := kmeans.Train(flat, dim, k, maxIterations, rng)
		if res == nil {
			break
		}
		if score := kmeans.Silhouette(flat, dim, res); score > bestScore {
			best = res
			bestScore = score
		}
	}

	return best
}

// assemble merges adjacent same-cluster windows into segments. Window i
// owns the stretch from its start to the next window's start; the last
// window runs to the end of the clip.
func (s *Segmenter) assemble(clip audio.Clip, windows []window, res *kmeans.Result, dim int) []model.Segment {
	rate := float64(clip.SampleRate)
	k := len(res.Centroids) / dim

	// Unit-norm centroids for the confidence calculation.
	centroids := make([][]float32, k)
	for j := 0; j < k; j++ {
		c := make([]float32, dim)
		copy(c, res.Centroids[j*dim:(j+1)*dim])
		if !embedding.NormalizeL2InPlace(c) {
			c = nil
		}
		centroids[j] = c
	}

	// Positional labels in order of first appearance.
	labels := make(map[int]string, k)
	next := 1
	labelOf := func(cluster int) string {
		if l, ok := labels[cluster]; ok {
			return l
		}
		l := fmt.Sprintf("speaker_%d", next)
		next++
		labels[cluster] = l
		return l
	}

	boundary := func(i int) float64 {
		if i >= len(windows) {
			return clip.Seconds()
		}
		return float64(windows[i].start) / rate
	}

	var segments []model.Segment
	segStart := 0
	for i := 1; i <= len(windows); i++ {
		if i < len(windows) && res.Assignments[i] == res.Assignments[segStart] {
			continue
		}

		cluster := res.Assignments[segStart]
		var conf float32
		if c := centroids[cluster]; c != nil {
			for _, w := range windows[segStart:i] {
				conf += embedding.CosineNormalized(w.vec, c)
			}
			conf /= float32(i - segStart)
			if conf > 1 {
				conf = 1
			} else if conf < 0 {
				conf = 0
			}
		}

		segments = append(segments, model.Segment{
			Start:      boundary(segStart),
			End:        boundary(i),
			Speaker:    labelOf(cluster),
			Confidence: conf,
		})
		segStart = i
	}

	return segments
}
