// Package blobstore abstracts the object store holding the digit sequence.
//
// The store is the sole source of truth for the sequence's content and
// length. Blobs are immutable: range reads are idempotent and safe to
// retry, and absence of the object itself (ErrNotFound) is always distinct
// from a successful zero-byte read past the end.
//
// Backends:
//
//   - MemoryStore: map-backed, for tests and examples
//   - LocalStore: local filesystem
//   - s3.Store: AWS S3 (aws-sdk-go-v2)
//   - minio.Store: MinIO and other S3-compatible endpoints
//   - CachingStore: block-level read caching over any backend
package blobstore
