package blobstore

import (
	"context"
	"io"
	"os"
)

// ErrNotFound is returned when a blob does not exist.
//
// Implementations should return an error that satisfies
// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
// It is never returned for a read range past the end of an existing blob.
var ErrNotFound = os.ErrNotExist

// BlobStore is an abstraction for accessing immutable data blobs.
type BlobStore interface {
	// Open opens a blob for reading. Returns ErrNotFound if the blob does
	// not exist.
	Open(ctx context.Context, name string) (Blob, error)
}

// Blob is a read-only handle to an immutable data blob.
type Blob interface {
	// ReadAt reads len(p) bytes starting at offset off. It returns io.EOF
	// when fewer than len(p) bytes remain.
	ReadAt(ctx context.Context, p []byte, off int64) (int, error)

	// ReadRange returns a reader over [off, off+length), clamped to the
	// blob size. A range at or past the end yields an empty reader, not an
	// error: end-of-stream is a successful zero-byte read.
	ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error)

	// Size returns the size of the blob in bytes.
	Size() int64

	// Close releases the handle.
	Close() error
}

// WritableBlob is a streaming write handle. It exists so fixtures and
// provisioning tooling can materialize the sequence; the serving path never
// writes.
type WritableBlob interface {
	io.Writer
	io.Closer
	// Sync flushes buffered data to durable storage where the backend
	// supports it.
	Sync() error
}
