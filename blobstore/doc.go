// Package blobstore abstracts where voiceprint artifacts live.
//
// The store persists one small artifact per speaker; an ObjectStore only
// needs whole-object Get/Put/Delete/List. The local implementation writes
// through a temp file and an atomic rename so a concurrent reader never
// observes a partial artifact; object-storage backends (MinIO, S3) get the
// same guarantee from single-request object puts.
package blobstore
