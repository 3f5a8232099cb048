package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/litianc/voiceprint/blobstore"
	"github.com/litianc/voiceprint/codec"
	"github.com/litianc/voiceprint/model"
)

// ErrPersistence marks store failures that must not leave partial state.
// All read/write errors returned by the store satisfy
// errors.Is(err, ErrPersistence).
var ErrPersistence = errors.New("voiceprint persistence failure")

// ErrDuplicateID is returned by Insert when the speaker ID is already
// enrolled.
var ErrDuplicateID = errors.New("speaker id already enrolled")

// formatExt is the wire-format extension shared by both JSON codecs.
const formatExt = "json"

// Store is the durable keyed collection of voiceprint records.
//
// Mutations (Put, Delete) are mutually exclusive; reads may proceed
// concurrently and always observe either the pre- or post-state of an
// in-flight mutation.
type Store struct {
	objects    blobstore.ObjectStore
	codec      codec.Codec
	compressor codec.Compressor
	log        *slog.Logger

	mu      sync.RWMutex
	records map[string]*model.VoiceprintRecord
	order   []string          // speaker IDs in insertion order
	names   map[string]string // speaker ID -> artifact name it was persisted under
}

// Option configures a Store.
type Option func(*Store)

// WithCodec sets the record codec for newly written artifacts.
func WithCodec(c codec.Codec) Option {
	return func(s *Store) { s.codec = c }
}

// WithCompressor sets the artifact compressor for newly written artifacts.
// Artifacts written under a different compressor are still readable; their
// extension selects the matching decompressor on load.
func WithCompressor(c codec.Compressor) Option {
	return func(s *Store) { s.compressor = c }
}

// WithLogger sets the logger used for load warnings.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New creates a Store over the given object store. Call Load before use.
func New(objects blobstore.ObjectStore, opts ...Option) *Store {
	s := &Store{
		objects:    objects,
		codec:      codec.Default,
		compressor: codec.None{},
		log:        slog.Default(),
		records:    make(map[string]*model.VoiceprintRecord),
		names:      make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// artifactName returns the artifact name a record is written under with
// the current configuration.
func (s *Store) artifactName(speakerID string) string {
	name := speakerID + "." + formatExt
	if ext := s.compressor.Ext(); ext != "" {
		name += "." + ext
	}
	return name
}

// parseArtifactName splits an artifact name into speaker ID and compressor
// extension. ok is false for names this store did not write.
func parseArtifactName(name string) (speakerID, compExt string, ok bool) {
	rest := name
	if i := strings.Index(rest, "."+formatExt); i > 0 {
		speakerID = rest[:i]
		rest = rest[i+len(formatExt)+1:]
	} else {
		return "", "", false
	}
	if rest == "" {
		return speakerID, "", true
	}
	if !strings.HasPrefix(rest, ".") {
		return "", "", false
	}
	return speakerID, rest[1:], true
}

// Load deserializes every persisted record and rebuilds the in-memory
// population. A corrupt or unreadable individual artifact is logged and
// skipped; only a failure to enumerate artifacts is fatal.
func (s *Store) Load(ctx context.Context) error {
	names, err := s.objects.List(ctx, "")
	if err != nil {
		return fmt.Errorf("%w: list artifacts: %w", ErrPersistence, err)
	}

	loaded := make(map[string]*model.VoiceprintRecord, len(names))
	artifactOf := make(map[string]string, len(names))

	for _, name := range names {
		id, compExt, ok := parseArtifactName(name)
		if !ok {
			s.log.Warn("skipping unrecognized artifact", "artifact", name)
			continue
		}
		rec, err := s.readArtifact(ctx, name, compExt)
		if err != nil {
			s.log.Warn("skipping unreadable voiceprint artifact",
				"artifact", name, "error", err)
			continue
		}
		if rec.SpeakerID != id {
			s.log.Warn("skipping artifact with mismatched speaker_id",
				"artifact", name, "speaker_id", rec.SpeakerID)
			continue
		}
		loaded[id] = rec
		artifactOf[id] = name
	}

	// Deterministic insertion order across restarts: enrollment time,
	// then ID for records enrolled in the same millisecond.
	order := make([]string, 0, len(loaded))
	for id := range loaded {
		order = append(order, id)
	}
	sort.Slice(order, func(i, j int) bool {
		a, b := loaded[order[i]], loaded[order[j]]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.SpeakerID < b.SpeakerID
	})

	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = loaded
	s.order = order
	s.names = artifactOf

	s.log.Info("voiceprint store loaded", "speakers", len(loaded))
	return nil
}

func (s *Store) readArtifact(ctx context.Context, name, compExt string) (*model.VoiceprintRecord, error) {
	comp, ok := codec.CompressorByExt(compExt)
	if !ok {
		return nil, fmt.Errorf("unknown compressor extension %q", compExt)
	}
	data, err := s.objects.Get(ctx, name)
	if err != nil {
		return nil, err
	}
	raw, err := comp.Decompress(data)
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	var rec model.VoiceprintRecord
	if err := s.codec.Unmarshal(raw, &rec); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}
	if err := rec.Validate(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Put persists the record's artifact fully, then updates the in-memory
// map. When persistence fails the in-memory population is untouched and
// the error propagates.
func (s *Store) Put(ctx context.Context, rec *model.VoiceprintRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.putLocked(ctx, rec)
}

// Insert persists a record that must not be enrolled yet. The existence
// check and the write share one critical section, so two concurrent
// inserts of the same speaker ID cannot both succeed; the loser gets
// ErrDuplicateID and the stored record is untouched.
func (s *Store) Insert(ctx context.Context, rec *model.VoiceprintRecord) error {
	if err := rec.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrPersistence, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.SpeakerID]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateID, rec.SpeakerID)
	}
	return s.putLocked(ctx, rec)
}

// Update applies mutate to a copy of the stored record and persists the
// result, all under the write lock, so concurrent read-modify-write
// cycles against the same speaker are serialized and none is lost.
// ok is false when the speaker is unknown; mutate is not called then.
// An error from mutate aborts the update and propagates unchanged.
func (s *Store) Update(ctx context.Context, speakerID string, mutate func(*model.VoiceprintRecord) error) (rec *model.VoiceprintRecord, ok bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, exists := s.records[speakerID]
	if !exists {
		return nil, false, nil
	}

	rec = cur.Clone()
	if err := mutate(rec); err != nil {
		return nil, true, err
	}
	if rec.SpeakerID != speakerID {
		return nil, true, fmt.Errorf("%w: update may not change speaker_id %s", ErrPersistence, speakerID)
	}
	if err := rec.Validate(); err != nil {
		return nil, true, fmt.Errorf("%w: %w", ErrPersistence, err)
	}
	if err := s.putLocked(ctx, rec); err != nil {
		return nil, true, err
	}
	return rec, true, nil
}

// putLocked encodes and writes the artifact, then swaps the record into
// the in-memory map. Callers hold the write lock and have validated rec.
func (s *Store) putLocked(ctx context.Context, rec *model.VoiceprintRecord) error {
	raw, err := s.codec.Marshal(rec)
	if err != nil {
		return fmt.Errorf("%w: encode %s: %w", ErrPersistence, rec.SpeakerID, err)
	}
	data, err := s.compressor.Compress(raw)
	if err != nil {
		return fmt.Errorf("%w: compress %s: %w", ErrPersistence, rec.SpeakerID, err)
	}

	name := s.artifactName(rec.SpeakerID)
	if err := s.objects.Put(ctx, name, data); err != nil {
		return fmt.Errorf("%w: write %s: %w", ErrPersistence, name, err)
	}

	// A configuration change (e.g. compression enabled) moves the record
	// to a new artifact name; drop the old one so a later load does not
	// see two artifacts for the same speaker.
	if old, ok := s.names[rec.SpeakerID]; ok && old != name {
		if err := s.objects.Delete(ctx, old); err != nil {
			s.log.Warn("could not remove superseded artifact",
				"artifact", old, "error", err)
		}
	}

	if _, exists := s.records[rec.SpeakerID]; !exists {
		s.order = append(s.order, rec.SpeakerID)
	}
	s.records[rec.SpeakerID] = rec.Clone()
	s.names[rec.SpeakerID] = name
	return nil
}

// Get returns a copy of the record for speakerID, if present.
func (s *Store) Get(speakerID string) (*model.VoiceprintRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[speakerID]
	if !ok {
		return nil, false
	}
	return rec.Clone(), true
}

// Delete removes the record's artifact and its in-memory entry. It
// returns false when the speaker is unknown, which is not an error. A
// missing artifact with a live in-memory entry still deletes successfully
// (self-healing after a prior partial failure).
func (s *Store) Delete(ctx context.Context, speakerID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[speakerID]; !ok {
		return false, nil
	}

	name, ok := s.names[speakerID]
	if !ok {
		name = s.artifactName(speakerID)
	}
	if err := s.objects.Delete(ctx, name); err != nil {
		return false, fmt.Errorf("%w: delete %s: %w", ErrPersistence, name, err)
	}

	delete(s.records, speakerID)
	delete(s.names, speakerID)
	for i, id := range s.order {
		if id == speakerID {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
	return true, nil
}

// List returns a snapshot of all records in insertion order. The snapshot
// is a deep copy; it does not track later mutations.
func (s *Store) List() []*model.VoiceprintRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*model.VoiceprintRecord, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.records[id].Clone())
	}
	return out
}

// Count returns the number of enrolled speakers.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// PopulationEntry is the matching view of one enrolled speaker.
type PopulationEntry struct {
	SpeakerID string
	Embedding []float32
}

// Population returns a snapshot of (speaker ID, representative embedding)
// pairs in insertion order, for ranking.
func (s *Store) Population() []PopulationEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]PopulationEntry, 0, len(s.order))
	for _, id := range s.order {
		rec := s.records[id]
		out = append(out, PopulationEntry{
			SpeakerID: id,
			Embedding: append([]float32(nil), rec.Embedding...),
		})
	}
	return out
}
