package voiceprint

import (
	"errors"
	"fmt"

	"github.com/litianc/voiceprint/backend"
	"github.com/litianc/voiceprint/embedding"
	"github.com/litianc/voiceprint/match"
	"github.com/litianc/voiceprint/store"
)

var (
	// ErrNotFound is returned when a speaker ID is not enrolled.
	ErrNotFound = errors.New("speaker not found")

	// ErrNoValidSamples is returned when every clip of an enrollment
	// request failed validation or embedding extraction.
	ErrNoValidSamples = errors.New("no valid samples")

	// ErrInvalidTopK is returned when top-k is not positive.
	ErrInvalidTopK = errors.New("top_k must be positive")

	// ErrBackendUnavailable reports that the embedding backend is down.
	// Calls fail fast; nothing is fabricated in its place.
	ErrBackendUnavailable = backend.ErrUnavailable

	// ErrPersistence marks storage failures. The in-memory population is
	// never left half-updated when it is returned.
	ErrPersistence = store.ErrPersistence
)

// ErrDimensionMismatch indicates an embedding dimensionality mismatch,
// either against the configured dimension or between samples.
//
// The original underlying error (if any) can be accessed via errors.Unwrap.
type ErrDimensionMismatch struct {
	Expected int
	Actual   int
	cause    error
}

func (e *ErrDimensionMismatch) Error() string {
	return fmt.Sprintf("dimension mismatch: expected %d, got %d", e.Expected, e.Actual)
}

func (e *ErrDimensionMismatch) Unwrap() error { return e.cause }

// ValidationError reports a rejected request field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func translateError(err error) error {
	if err == nil {
		return nil
	}

	var dm *embedding.ErrDimensionMismatch
	if errors.As(err, &dm) {
		return &ErrDimensionMismatch{Expected: dm.Expected, Actual: dm.Actual, cause: err}
	}
	if errors.Is(err, match.ErrInvalidTopK) {
		return fmt.Errorf("%w: %w", ErrInvalidTopK, err)
	}

	return err
}
