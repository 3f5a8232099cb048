// Package minio implements blobstore.ObjectStore on MinIO and other
// S3-compatible object storage, for deployments that keep voiceprint
// artifacts off the local disk.
package minio
