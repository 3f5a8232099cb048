package voiceprint

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/litianc/voiceprint/audio"
	"github.com/litianc/voiceprint/backend"
	"github.com/litianc/voiceprint/blobstore"
	"github.com/litianc/voiceprint/diarize"
	"github.com/litianc/voiceprint/embedding"
	"github.com/litianc/voiceprint/match"
	"github.com/litianc/voiceprint/model"
	"github.com/litianc/voiceprint/resource"
	"github.com/litianc/voiceprint/store"
)

// Engine is the voiceprint identity engine: enrollment, recognition,
// diarization and the durable speaker population behind them.
//
// All methods are safe for concurrent use.
type Engine struct {
	backend   backend.Backend
	store     *store.Store
	segmenter *diarize.Segmenter
	ctrl      *resource.Controller
	logger    *Logger

	threshold float32
	topK      int
	minAudio  time.Duration
	maxAudio  time.Duration

	dimMu sync.Mutex
	dim   int // 0 until the first embedding fixes it
}

// New opens the engine, loading any previously enrolled speakers from
// the configured storage. The backend is required; use
// backend.Unavailable to run storage-only with extraction disabled.
func New(ctx context.Context, b backend.Backend, optFns ...Option) (*Engine, error) {
	if b == nil {
		return nil, &ValidationError{Field: "backend", Reason: "must not be nil"}
	}
	o := applyOptions(optFns)

	objects := o.objects
	if objects == nil {
		if o.dataDir != "" {
			local, err := blobstore.NewLocalStore(o.dataDir)
			if err != nil {
				return nil, fmt.Errorf("%w: open data dir: %w", ErrPersistence, err)
			}
			objects = local
		} else {
			objects = blobstore.NewMemoryStore()
		}
	}

	st := store.New(objects,
		store.WithCodec(o.codec),
		store.WithCompressor(o.compressor),
		store.WithLogger(o.logger.Logger),
	)
	if err := st.Load(ctx); err != nil {
		return nil, err
	}

	cfg := resource.Config{MaxConcurrentExtractions: 4}
	if o.resourceCfg != nil {
		cfg = *o.resourceCfg
	}

	e := &Engine{
		backend:   b,
		store:     st,
		segmenter: diarize.NewSegmenter(b, o.diarizeOpts...),
		ctrl:      resource.NewController(cfg),
		logger:    o.logger,
		threshold: o.threshold,
		topK:      o.topK,
		minAudio:  o.minAudio,
		maxAudio:  o.maxAudio,
		dim:       o.dimension,
	}

	// Loaded records fix the dimension before the first extraction.
	if e.dim == 0 {
		if pop := st.Population(); len(pop) > 0 {
			e.dim = len(pop[0].Embedding)
		}
	}

	return e, nil
}

// RegisterRequest enrolls one speaker from one or more audio samples.
type RegisterRequest struct {
	// Name is the display name. Required, not unique.
	Name string

	// Clips are the enrollment samples. At least one is required; clips
	// that fail validation or extraction are skipped as long as one
	// survives.
	Clips []audio.Clip

	// UserID and Email are optional external correlation fields.
	UserID string
	Email  string
}

// Register enrolls a new speaker and returns the stored record. Each
// clip is embedded independently; the representative embedding is the
// L2-normalized mean of the per-clip embeddings. A clip that fails
// validation or extraction is logged and skipped. When no clip
// survives, ErrNoValidSamples is returned and nothing is stored.
func (e *Engine) Register(ctx context.Context, req RegisterRequest) (*model.VoiceprintRecord, error) {
	if req.Name == "" {
		return nil, &ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if len(req.Clips) == 0 {
		return nil, &ValidationError{Field: "clips", Reason: "at least one audio clip required"}
	}

	embs, err := e.extractBatch(ctx, req.Clips)
	if err != nil {
		e.logger.LogRegister(ctx, "", len(req.Clips), 0, err)
		return nil, translateError(err)
	}
	if len(embs) == 0 {
		e.logger.LogRegister(ctx, "", len(req.Clips), 0, ErrNoValidSamples)
		return nil, ErrNoValidSamples
	}

	rep, err := embedding.Mean(embs)
	if err != nil {
		return nil, translateError(err)
	}

	// IDs derive from (name, enrollment millisecond). The ID is claimed
	// with an atomic insert and bumped on collision, so enrolling the
	// same name twice within one millisecond, even concurrently, never
	// overwrites.
	now := time.Now().UTC()
	var rec *model.VoiceprintRecord
	for {
		rec = &model.VoiceprintRecord{
			SpeakerID:   model.NewSpeakerID(req.Name, now),
			Name:        req.Name,
			UserID:      req.UserID,
			Email:       req.Email,
			Embedding:   rep,
			Samples:     embs,
			CreatedAt:   now,
			UpdatedAt:   now,
			SampleCount: len(embs),
		}
		err := e.store.Insert(ctx, rec)
		if errors.Is(err, store.ErrDuplicateID) {
			now = now.Add(time.Millisecond)
			continue
		}
		if err != nil {
			e.logger.LogRegister(ctx, rec.SpeakerID, len(req.Clips), len(embs), err)
			return nil, err
		}
		break
	}

	e.logger.LogRegister(ctx, rec.SpeakerID, len(req.Clips), len(embs), nil)
	return rec, nil
}

// Reenroll adds samples to an existing speaker and recomputes the
// representative embedding over all samples, old and new. The speaker
// ID and creation time are preserved. The read-modify-write runs under
// the store's write lock, so concurrent Reenrolls of the same speaker
// serialize and neither one's samples are lost.
func (e *Engine) Reenroll(ctx context.Context, speakerID string, clips []audio.Clip) (*model.VoiceprintRecord, error) {
	if len(clips) == 0 {
		return nil, &ValidationError{Field: "clips", Reason: "at least one audio clip required"}
	}
	// Fail before the extraction work; Update re-checks under the lock.
	if _, ok := e.store.Get(speakerID); !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, speakerID)
	}

	embs, err := e.extractBatch(ctx, clips)
	if err != nil {
		return nil, translateError(err)
	}
	if len(embs) == 0 {
		return nil, ErrNoValidSamples
	}

	rec, ok, err := e.store.Update(ctx, speakerID, func(r *model.VoiceprintRecord) error {
		r.Samples = append(r.Samples, embs...)
		r.SampleCount = len(r.Samples)
		rep, err := embedding.Mean(r.Samples)
		if err != nil {
			return err
		}
		r.Embedding = rep
		r.UpdatedAt = time.Now().UTC()
		return nil
	})
	if err != nil {
		return nil, translateError(err)
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, speakerID)
	}
	return rec, nil
}

// Recognize embeds the clip and ranks it against every enrolled
// speaker. Results are sorted by descending similarity, at most topK of
// them; topK <= 0 uses the engine default. An empty population yields
// an empty slice, not an error.
func (e *Engine) Recognize(ctx context.Context, clip audio.Clip, topK int) ([]model.MatchResult, error) {
	if topK <= 0 {
		topK = e.topK
	}

	query, err := e.extractOne(ctx, clip)
	if err != nil {
		e.logger.LogRecognize(ctx, topK, 0, err)
		return nil, translateError(err)
	}

	pop := e.store.Population()
	entries := make([]match.Entry, len(pop))
	for i, p := range pop {
		entries[i] = match.Entry{SpeakerID: p.SpeakerID, Vector: p.Embedding}
	}

	matches, err := match.Rank(query, entries, topK, e.threshold)
	if err != nil {
		e.logger.LogRecognize(ctx, topK, 0, err)
		return nil, translateError(err)
	}

	results := make([]model.MatchResult, 0, len(matches))
	for _, m := range matches {
		r := model.MatchResult{
			SpeakerID:  m.SpeakerID,
			Similarity: m.Similarity,
			IsMatch:    m.IsMatch,
		}
		if rec, ok := e.store.Get(m.SpeakerID); ok {
			r.Name = rec.Name
			r.UserID = rec.UserID
			r.Email = rec.Email
		}
		results = append(results, r)
	}

	e.logger.LogRecognize(ctx, topK, len(results), nil)
	return results, nil
}

// Diarize splits a recording into speaker-attributed segments with
// positional labels (speaker_1, speaker_2, ...). Labels are not matched
// against enrolled voiceprints. expectedSpeakers pins how many distinct
// speakers the recording contains; 0 lets the engine estimate the count.
// Unlike enrollment clips, recordings may exceed the configured maximum
// clip duration.
func (e *Engine) Diarize(ctx context.Context, clip audio.Clip, expectedSpeakers int) ([]model.Segment, error) {
	if err := clip.ValidateDuration(e.minAudio, 0); err != nil {
		e.logger.LogDiarize(ctx, clip.Seconds(), 0, err)
		return nil, err
	}

	segments, err := e.segmenter.Segment(ctx, clip.Normalized(), expectedSpeakers)
	e.logger.LogDiarize(ctx, clip.Seconds(), len(segments), err)
	if err != nil {
		return nil, translateError(err)
	}
	return segments, nil
}

// Get returns the full record for an enrolled speaker.
func (e *Engine) Get(speakerID string) (*model.VoiceprintRecord, error) {
	rec, ok := e.store.Get(speakerID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, speakerID)
	}
	return rec, nil
}

// List returns embedding-free summaries of all enrolled speakers in
// enrollment order.
func (e *Engine) List() []model.SpeakerSummary {
	recs := e.store.List()
	out := make([]model.SpeakerSummary, len(recs))
	for i, r := range recs {
		out[i] = r.Summary()
	}
	return out
}

// Count returns the number of enrolled speakers.
func (e *Engine) Count() int {
	return e.store.Count()
}

// Delete removes a speaker and their stored artifact. Deleting an
// unknown speaker returns false without error.
func (e *Engine) Delete(ctx context.Context, speakerID string) (bool, error) {
	deleted, err := e.store.Delete(ctx, speakerID)
	e.logger.LogDelete(ctx, speakerID, deleted, err)
	return deleted, err
}

// extractOne validates, peak-normalizes and embeds one clip under the
// resource limits, returning a unit-norm embedding.
func (e *Engine) extractOne(ctx context.Context, clip audio.Clip) ([]float32, error) {
	if err := clip.ValidateDuration(e.minAudio, e.maxAudio); err != nil {
		return nil, err
	}
	norm := clip.Normalized()

	bytes := int64(len(norm.Samples)) * 4
	if err := e.ctrl.AcquireAudioMemory(ctx, bytes); err != nil {
		return nil, err
	}
	defer e.ctrl.ReleaseAudioMemory(bytes)

	if err := e.ctrl.AcquireExtraction(ctx); err != nil {
		return nil, err
	}
	defer e.ctrl.ReleaseExtraction()

	vec, err := e.backend.ExtractEmbedding(ctx, norm.Samples, norm.SampleRate)
	if err != nil {
		return nil, err
	}
	if !embedding.NormalizeL2InPlace(vec) {
		return nil, embedding.ErrZeroNorm
	}
	if err := e.checkDimension(len(vec)); err != nil {
		return nil, err
	}
	return vec, nil
}

// extractBatch embeds clips concurrently, preserving clip order in the
// result. Recoverable per-clip failures are logged and skipped;
// backend outages, cancellation and dimension conflicts abort the call.
func (e *Engine) extractBatch(ctx context.Context, clips []audio.Clip) ([][]float32, error) {
	results := make([][]float32, len(clips))

	g, gctx := errgroup.WithContext(ctx)
	for i := range clips {
		g.Go(func() error {
			vec, err := e.extractOne(gctx, clips[i])
			if err != nil {
				if recoverable(err) {
					e.logger.WarnContext(gctx, "skipping enrollment sample",
						"clip", i, "error", err)
					return nil
				}
				return fmt.Errorf("clip %d: %w", i, err)
			}
			results[i] = vec
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	embs := make([][]float32, 0, len(results))
	for _, r := range results {
		if r != nil {
			embs = append(embs, r)
		}
	}
	return embs, nil
}

// recoverable reports whether a per-clip failure may be skipped during
// batch enrollment.
func recoverable(err error) bool {
	if errors.Is(err, backend.ErrUnavailable) {
		return false
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var dm *ErrDimensionMismatch
	return !errors.As(err, &dm)
}

func (e *Engine) checkDimension(n int) error {
	e.dimMu.Lock()
	defer e.dimMu.Unlock()
	if e.dim == 0 {
		e.dim = n
		return nil
	}
	if n != e.dim {
		return &ErrDimensionMismatch{Expected: e.dim, Actual: n}
	}
	return nil
}
