// Package s3 implements blobstore.ObjectStore on Amazon S3, for
// deployments that keep voiceprint artifacts in object storage.
package s3
