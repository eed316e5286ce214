package digitstream

import (
	"context"
	"errors"
	"io"

	"github.com/hupe1980/digitstream/blobstore"
)

// Fetcher is the range-read contract the Stream consumes.
//
// Fetch returns the bytes in [offset, offset+length). Fewer bytes than
// requested (including none) means the sequence ends inside the range; this
// is a successful read, not an error. A missing backing object is reported
// as ErrNotFound, retryable failures as TransientError.
//
// Implementations must be safe for concurrent use: the Stream issues up to
// K fetches in parallel.
type Fetcher interface {
	Fetch(ctx context.Context, offset, length int64) ([]byte, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, offset, length int64) ([]byte, error)

func (f FetcherFunc) Fetch(ctx context.Context, offset, length int64) ([]byte, error) {
	return f(ctx, offset, length)
}

// BlobFetcher adapts an open blobstore.Blob to the Fetcher interface for
// in-process consumption, bypassing the HTTP boundary.
type BlobFetcher struct {
	blob blobstore.Blob
}

// NewBlobFetcher wraps blob. The caller keeps ownership of the blob and is
// responsible for closing it.
func NewBlobFetcher(blob blobstore.Blob) *BlobFetcher {
	return &BlobFetcher{blob: blob}
}

func (f *BlobFetcher) Fetch(ctx context.Context, offset, length int64) ([]byte, error) {
	if offset < 0 || length <= 0 {
		return nil, ErrInvalidRange
	}

	r, err := f.blob.ReadRange(ctx, offset, length)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, err
		}
		return nil, NewTransientError(err)
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(io.LimitReader(r, length))
	if err != nil {
		return nil, NewTransientError(err)
	}
	return data, nil
}

// Open opens the named object in store and returns a Stream over it.
// Closing the Stream also closes the underlying blob.
//
// A missing object surfaces immediately as ErrNotFound rather than on the
// first fetch.
func Open(ctx context.Context, store blobstore.BlobStore, name string, optFns ...Option) (*Stream, error) {
	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, err
	}

	s := NewStream(NewBlobFetcher(blob), optFns...)
	s.closer = blob
	return s, nil
}
