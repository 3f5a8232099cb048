// Package store keeps the durable population of enrolled voiceprints.
//
// The in-memory map and the persisted artifact set move in lock-step:
// every mutation writes its artifact through before touching memory, and
// a load reconstructs memory purely from the artifact set. One artifact
// holds one record; a corrupt artifact costs that record, never the load.
package store
