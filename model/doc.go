// Package model defines the plain data types shared across the voiceprint
// engine: the durable VoiceprintRecord, recognition matches, diarization
// segments and speaker summaries.
//
// Types here carry no behavior beyond identity derivation, validation and
// copying; they are the structures returned to callers and serialized by
// the store.
package model
