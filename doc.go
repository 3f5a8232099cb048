// Package voiceprint provides an embedded voice-biometric identity engine.
//
// It enrolls speakers from short audio samples, recognizes who is
// speaking in a new clip, and diarizes multi-speaker recordings. The
// enrolled population is kept fully in memory and persisted as one
// artifact per speaker, locally or in an object store.
//
// # Quick Start
//
//	ctx := context.Background()
//	e, _ := voiceprint.New(ctx, myBackend, voiceprint.WithDataDir("./data"))
//
//	rec, _ := e.Register(ctx, voiceprint.RegisterRequest{
//	    Name:  "Ada",
//	    Clips: []audio.Clip{clip1, clip2, clip3},
//	})
//
//	results, _ := e.Recognize(ctx, query, 5)
//	for _, r := range results {
//	    fmt.Println(r.Name, r.Similarity, r.IsMatch)
//	}
//
//	segments, _ := e.Diarize(ctx, recording, 0)
//
// # Embedding Backend
//
// The engine does not ship a neural network. It consumes a
// backend.Backend that turns audio into fixed-length speaker
// embeddings; wrap your inference runtime in that interface. With
// backend.Unavailable every extraction fails fast instead of serving
// fabricated identities.
//
// # Durability Model
//
// Each speaker is one artifact (speaker_id.json, optionally
// compressed). Writes go to storage first and to the in-memory
// population only after the write succeeded, so a crashed or failed
// write never leaves a speaker half-enrolled. Corrupt artifacts are
// skipped on load with a warning; one damaged record never takes down
// the rest of the population.
//
// # Key Features
//
//   - Multi-sample enrollment with skip-on-failure semantics
//   - Exact cosine ranking with a configurable match threshold
//   - Windowed k-means diarization, speaker count estimated or pinned
//   - Local, in-memory, S3 and MinIO artifact storage
//   - Optional zstd/lz4 artifact compression
package voiceprint
