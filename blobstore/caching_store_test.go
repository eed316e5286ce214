package blobstore_test

import (
	"context"
	"io"
	"sync/atomic"
	"testing"

	"github.com/hupe1980/digitstream/blobstore"
	"github.com/hupe1980/digitstream/internal/cache"
	"github.com/hupe1980/digitstream/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// trackingStore counts backend ReadAt calls to verify cache effectiveness.
type trackingStore struct {
	inner blobstore.BlobStore
	reads atomic.Int64
}

func (s *trackingStore) Open(ctx context.Context, name string) (blobstore.Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &trackingBlob{Blob: b, reads: &s.reads}, nil
}

type trackingBlob struct {
	blobstore.Blob
	reads *atomic.Int64
}

func (b *trackingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	b.reads.Add(1)
	return b.Blob.ReadAt(ctx, p, off)
}

func newCachingFixture(t *testing.T, data []byte, blockSize int64) (*blobstore.CachingStore, *trackingStore) {
	t.Helper()
	mem := blobstore.NewMemoryStore()
	require.NoError(t, mem.Put(context.Background(), "seq", data))
	tracking := &trackingStore{inner: mem}
	lru := cache.NewLRUBlockCache(1<<20, nil)
	return blobstore.NewCachingStore(tracking, lru, blockSize), tracking
}

func TestCachingBlob_MatchesBackend(t *testing.T) {
	ctx := context.Background()
	data := testutil.Sequence(17, 10_000)
	store, _ := newCachingFixture(t, data, 256)

	blob, err := store.Open(ctx, "seq")
	require.NoError(t, err)
	defer blob.Close()

	// Unaligned reads across block boundaries come back byte-identical.
	for _, tc := range []struct{ off, n int64 }{
		{0, 100},
		{200, 256},
		{255, 2},
		{100, 5000},
		{9_990, 100}, // clamped at the end
	} {
		p := make([]byte, tc.n)
		n, err := blob.ReadAt(ctx, p, tc.off)
		end := tc.off + int64(n)
		if end >= int64(len(data)) {
			assert.ErrorIs(t, err, io.EOF)
		} else {
			require.NoError(t, err)
		}
		assert.Equal(t, data[tc.off:end], p[:n], "off=%d n=%d", tc.off, tc.n)
	}
}

func TestCachingBlob_HotRangeHitsCache(t *testing.T) {
	ctx := context.Background()
	data := testutil.Sequence(9, 4096)
	store, tracking := newCachingFixture(t, data, 512)

	blob, err := store.Open(ctx, "seq")
	require.NoError(t, err)
	defer blob.Close()

	p := make([]byte, 1024)
	_, err = blob.ReadAt(ctx, p, 0)
	require.NoError(t, err)

	cold := tracking.reads.Load()
	require.Positive(t, cold)

	// Re-reads of the same range never touch the backend again.
	for i := 0; i < 10; i++ {
		_, err = blob.ReadAt(ctx, p, 0)
		require.NoError(t, err)
	}
	require.Equal(t, cold, tracking.reads.Load())
}

func TestCachingBlob_CoalescesMissingRuns(t *testing.T) {
	ctx := context.Background()
	data := testutil.Sequence(23, 8192)
	store, tracking := newCachingFixture(t, data, 512)

	blob, err := store.Open(ctx, "seq")
	require.NoError(t, err)
	defer blob.Close()

	// 16 cold blocks in one contiguous range: a single coalesced backend
	// read fills them all.
	p := make([]byte, 8192)
	_, err = blob.ReadAt(ctx, p, 0)
	require.NoError(t, err)
	require.Equal(t, data, p)
	require.Equal(t, int64(1), tracking.reads.Load())
}

func TestCachingBlob_ReadRange(t *testing.T) {
	ctx := context.Background()
	data := testutil.Sequence(29, 3000)
	store, _ := newCachingFixture(t, data, 256)

	blob, err := store.Open(ctx, "seq")
	require.NoError(t, err)
	defer blob.Close()

	rc, err := blob.ReadRange(ctx, 100, 1000)
	require.NoError(t, err)
	got, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, data[100:1100], got)

	rc, err = blob.ReadRange(ctx, 2900, 500)
	require.NoError(t, err)
	got, err = io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, data[2900:], got)

	rc, err = blob.ReadRange(ctx, 3000, 10)
	require.NoError(t, err)
	got, err = io.ReadAll(rc)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestCachingStore_PropagatesNotFound(t *testing.T) {
	store, _ := newCachingFixture(t, []byte("3.14"), 256)

	_, err := store.Open(context.Background(), "missing")
	require.ErrorIs(t, err, blobstore.ErrNotFound)
}
