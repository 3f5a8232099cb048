// Package embedding provides the vector math for voiceprint embeddings:
// dot products, L2 normalization, rescaled cosine similarity and the mean
// aggregation that turns per-sample embeddings into a representative one.
//
// All comparisons operate on L2-normalized copies; the rescaled cosine
// maps the natural [-1, 1] range into [0, 1] so scores can be presented
// directly as confidence values.
package embedding
