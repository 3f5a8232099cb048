package voiceprint

import (
	"log/slog"
	"time"

	"github.com/litianc/voiceprint/blobstore"
	"github.com/litianc/voiceprint/codec"
	"github.com/litianc/voiceprint/diarize"
	"github.com/litianc/voiceprint/resource"
)

// Defaults applied by New when the corresponding option is not given.
const (
	// DefaultSimilarityThreshold is the rescaled-cosine score a candidate
	// must reach to count as a match.
	DefaultSimilarityThreshold float32 = 0.75

	// DefaultTopK is the ranking depth for Recognize.
	DefaultTopK = 5

	// DefaultMinAudio and DefaultMaxAudio bound accepted clip durations.
	DefaultMinAudio = 500 * time.Millisecond
	DefaultMaxAudio = 30 * time.Second
)

type options struct {
	dataDir    string
	objects    blobstore.ObjectStore
	codec      codec.Codec
	compressor codec.Compressor
	logger     *Logger

	threshold float32
	topK      int
	dimension int
	minAudio  time.Duration
	maxAudio  time.Duration

	resourceCfg *resource.Config
	diarizeOpts []diarize.Option
}

// Option configures engine constructor behavior.
type Option func(*options)

// WithDataDir stores voiceprint artifacts under a local directory.
// Mutually exclusive with WithObjectStore; the object store wins when
// both are given. Without either, records live in memory only.
func WithDataDir(dir string) Option {
	return func(o *options) {
		o.dataDir = dir
	}
}

// WithObjectStore stores voiceprint artifacts in the given object store,
// e.g. an S3 or MinIO bucket.
func WithObjectStore(os blobstore.ObjectStore) Option {
	return func(o *options) {
		o.objects = os
	}
}

// WithCodec configures the codec used for voiceprint artifacts.
//
// If nil is passed, codec.Default is used.
func WithCodec(c codec.Codec) Option {
	return func(o *options) {
		if c == nil {
			c = codec.Default
		}
		o.codec = c
	}
}

// WithCompressor configures artifact compression. Existing artifacts
// written under another compressor remain readable.
func WithCompressor(c codec.Compressor) Option {
	return func(o *options) {
		if c == nil {
			c = codec.None{}
		}
		o.compressor = c
	}
}

// WithSimilarityThreshold sets the score a candidate must reach for
// IsMatch. Scores are rescaled cosine in [0, 1]; a threshold of 0
// marks every candidate as a match. Values outside [0, 1] keep the
// default.
func WithSimilarityThreshold(t float32) Option {
	return func(o *options) {
		if t >= 0 && t <= 1 {
			o.threshold = t
		}
	}
}

// WithTopK sets the default ranking depth for Recognize.
func WithTopK(k int) Option {
	return func(o *options) {
		if k > 0 {
			o.topK = k
		}
	}
}

// WithDimension pins the expected embedding dimension. Without it the
// engine adopts the dimension of the first extracted embedding.
func WithDimension(dim int) Option {
	return func(o *options) {
		if dim > 0 {
			o.dimension = dim
		}
	}
}

// WithAudioLimits bounds accepted clip durations for enrollment and
// recognition.
func WithAudioLimits(minDur, maxDur time.Duration) Option {
	return func(o *options) {
		if minDur > 0 && maxDur > minDur {
			o.minAudio = minDur
			o.maxAudio = maxDur
		}
	}
}

// WithResourceConfig bounds extraction concurrency, rate and audio
// memory. Without it extractions run with up to 4 concurrent slots and
// no rate or memory limit.
func WithResourceConfig(cfg resource.Config) Option {
	return func(o *options) {
		o.resourceCfg = &cfg
	}
}

// WithDiarizeOptions forwards options to the diarization segmenter,
// e.g. diarize.WithWindow or diarize.WithMaxSpeakers.
func WithDiarizeOptions(opts ...diarize.Option) Option {
	return func(o *options) {
		o.diarizeOpts = append(o.diarizeOpts, opts...)
	}
}

// WithLogger configures structured logging for operations.
// Pass nil to disable logging.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		codec:      codec.Default,
		compressor: codec.None{},
		logger:     NoopLogger(),
		threshold:  DefaultSimilarityThreshold,
		topK:       DefaultTopK,
		minAudio:   DefaultMinAudio,
		maxAudio:   DefaultMaxAudio,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
