// Package blobx provides the scratch blob store used for staged OCR
// submission. Objects live for the duration of one analysis call:
// every Put gets a unique key and is deleted by the caller afterwards,
// so no two calls ever touch the same object.
package blobx

import "context"

// Store is write-once, delete-once scratch storage.
type Store interface {
	// Put stores data under a fresh caller-unique key and returns it.
	Put(ctx context.Context, data []byte, filename, contentType string) (string, error)

	// Delete removes the object. Cleanup is best-effort: callers log
	// failures and never surface them as request failures.
	Delete(ctx context.Context, key string) error

	// Bucket names the container objects are stored in, for services
	// that consume objects by (bucket, key) reference.
	Bucket() string
}
