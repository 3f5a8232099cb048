package model

import (
	"fmt"
	"time"
)

// VoiceprintRecord is the durable identity unit for one enrolled speaker.
//
// Embedding is always the L2-normalized mean of Samples; SampleCount always
// equals len(Samples). Both invariants are enforced by Validate and by the
// engine on every mutation.
type VoiceprintRecord struct {
	// SpeakerID is the opaque stable identifier, derived from the display
	// name and the enrollment time. Immutable once assigned.
	SpeakerID string `json:"speaker_id"`

	// Name is the human display name. Not unique.
	Name string `json:"name"`

	// UserID and Email are optional external correlation fields, opaque to
	// the engine.
	UserID string `json:"user_id,omitempty"`
	Email  string `json:"email,omitempty"`

	// Embedding is the representative embedding used for matching.
	Embedding []float32 `json:"representative_embedding"`

	// Samples holds the individual per-sample embeddings that produced
	// Embedding, in enrollment order. Never empty.
	Samples [][]float32 `json:"sample_embeddings"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// SampleCount is the number of successfully embedded samples that
	// contributed to Embedding.
	SampleCount int `json:"sample_count"`
}

// Validate checks the structural invariants of a record. It is called at
// the deserialization boundary so that a corrupt or hand-edited artifact
// never enters the in-memory population.
func (r *VoiceprintRecord) Validate() error {
	if r.SpeakerID == "" {
		return fmt.Errorf("record: empty speaker_id")
	}
	if len(r.Samples) == 0 {
		return fmt.Errorf("record %s: no sample embeddings", r.SpeakerID)
	}
	if r.SampleCount != len(r.Samples) {
		return fmt.Errorf("record %s: sample_count %d does not match %d sample embeddings",
			r.SpeakerID, r.SampleCount, len(r.Samples))
	}
	dim := len(r.Embedding)
	if dim == 0 {
		return fmt.Errorf("record %s: empty representative embedding", r.SpeakerID)
	}
	for i, s := range r.Samples {
		if len(s) != dim {
			return fmt.Errorf("record %s: sample %d has dimension %d, want %d",
				r.SpeakerID, i, len(s), dim)
		}
	}
	var norm2 float64
	for _, v := range r.Embedding {
		norm2 += float64(v) * float64(v)
	}
	if norm2 == 0 {
		return fmt.Errorf("record %s: representative embedding has zero norm", r.SpeakerID)
	}
	return nil
}

// Clone returns a deep copy. The store hands out clones so that callers can
// never mutate the in-memory population through a returned record.
func (r *VoiceprintRecord) Clone() *VoiceprintRecord {
	c := *r
	c.Embedding = append([]float32(nil), r.Embedding...)
	c.Samples = make([][]float32, len(r.Samples))
	for i, s := range r.Samples {
		c.Samples[i] = append([]float32(nil), s...)
	}
	return &c
}

// Summary returns the listing view of the record, without embeddings.
func (r *VoiceprintRecord) Summary() SpeakerSummary {
	return SpeakerSummary{
		SpeakerID:   r.SpeakerID,
		Name:        r.Name,
		UserID:      r.UserID,
		Email:       r.Email,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		SampleCount: r.SampleCount,
	}
}

// SpeakerSummary is the embedding-free view of an enrolled speaker.
type SpeakerSummary struct {
	SpeakerID   string    `json:"speaker_id"`
	Name        string    `json:"name"`
	UserID      string    `json:"user_id,omitempty"`
	Email       string    `json:"email,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	SampleCount int       `json:"sample_count"`
}

// MatchResult is one entry of a recognition ranking.
//
// Similarity is rescaled cosine similarity in [0, 1]; IsMatch reports
// whether it reached the engine's configured threshold.
type MatchResult struct {
	SpeakerID  string  `json:"speaker_id"`
	Name       string  `json:"name"`
	UserID     string  `json:"user_id,omitempty"`
	Email      string  `json:"email,omitempty"`
	Similarity float32 `json:"similarity"`
	IsMatch    bool    `json:"is_match"`
}

// Segment is one speaker-attributed interval of a diarized recording.
// Times are seconds from the start of the recording.
type Segment struct {
	Start      float64 `json:"start_time"`
	End        float64 `json:"end_time"`
	Speaker    string  `json:"speaker_label"`
	Confidence float32 `json:"confidence"`
}

// Duration returns the segment length in seconds.
func (s Segment) Duration() float64 { return s.End - s.Start }
