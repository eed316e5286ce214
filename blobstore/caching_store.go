package blobstore

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/hupe1980/digitstream/internal/cache"
	"golang.org/x/sync/errgroup"
)

// fillConcurrency bounds parallel backend reads when coalescing missing
// block runs, to avoid FD exhaustion and backend rate limits.
const fillConcurrency = 16

// CachingStore wraps a BlobStore and adds block-level read caching.
// Blobs are immutable, so entries never need invalidation on the read path.
type CachingStore struct {
	inner     BlobStore
	cache     cache.BlockCache
	blockSize int64
}

// NewCachingStore creates a new CachingStore.
// blockSize defaults to 4KB if <= 0.
func NewCachingStore(inner BlobStore, cache cache.BlockCache, blockSize int64) *CachingStore {
	if blockSize <= 0 {
		blockSize = 4096
	}
	return &CachingStore{
		inner:     inner,
		cache:     cache,
		blockSize: blockSize,
	}
}

func (s *CachingStore) Open(ctx context.Context, name string) (Blob, error) {
	b, err := s.inner.Open(ctx, name)
	if err != nil {
		return nil, err
	}
	return &CachingBlob{
		inner:     b,
		cache:     s.cache,
		name:      name,
		blockSize: s.blockSize,
	}, nil
}

// CachingBlob wraps a Blob and serves reads through the block cache.
type CachingBlob struct {
	inner     Blob
	cache     cache.BlockCache
	name      string
	blockSize int64
}

func (b *CachingBlob) Close() error {
	return b.inner.Close()
}

func (b *CachingBlob) Size() int64 {
	return b.inner.Size()
}

func (b *CachingBlob) ReadAt(ctx context.Context, p []byte, off int64) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if off >= b.inner.Size() {
		return 0, io.EOF
	}

	startBlock := off / b.blockSize
	endBlock := (off + int64(len(p)) - 1) / b.blockSize

	if err := b.fillCache(ctx, startBlock, endBlock); err != nil {
		return 0, err
	}

	totalRead := 0
	for blk := startBlock; blk <= endBlock; blk++ {
		blkStart := blk * b.blockSize

		// Intersection of this block with the requested range.
		intersectStart := max(blkStart, off)
		intersectEnd := min(blkStart+b.blockSize, off+int64(len(p)))
		if intersectEnd <= intersectStart {
			continue
		}

		blockData, err := b.fetchBlock(ctx, blk)
		if err != nil {
			return totalRead, err
		}

		srcOffset := intersectStart - blkStart
		if srcOffset >= int64(len(blockData)) {
			break // short last block
		}
		copySize := intersectEnd - intersectStart
		if srcOffset+copySize > int64(len(blockData)) {
			copySize = int64(len(blockData)) - srcOffset
		}

		dstOffset := intersectStart - off
		n := copy(p[dstOffset:dstOffset+copySize], blockData[srcOffset:])
		totalRead += n
	}

	if totalRead < len(p) {
		return totalRead, io.EOF
	}
	return totalRead, nil
}

// ReadRange serves the range through the block cache via ReadAt.
func (b *CachingBlob) ReadRange(ctx context.Context, off, length int64) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	size := b.inner.Size()
	if off >= size {
		return io.NopCloser(bytes.NewReader(nil)), nil
	}
	end := off + length
	if end > size {
		end = size
	}
	return io.NopCloser(&cachedSectionReader{blob: b, ctx: ctx, off: off, limit: end}), nil
}

// fillCache ensures that the blocks in the given range are cached,
// coalescing contiguous runs of missing blocks into single backend reads
// fetched in parallel.
func (b *CachingBlob) fillCache(ctx context.Context, startBlock, endBlock int64) error {
	type run struct {
		start, count int64
	}
	var missing []run

	runStart := int64(-1)
	runCount := int64(0)
	for blk := startBlock; blk <= endBlock; blk++ {
		key := cache.Key{Name: b.name, Block: blk}
		if _, ok := b.cache.Get(ctx, key); !ok {
			if runStart == -1 {
				runStart = blk
			}
			runCount++
		} else if runStart != -1 {
			missing = append(missing, run{runStart, runCount})
			runStart, runCount = -1, 0
		}
	}
	if runStart != -1 {
		missing = append(missing, run{runStart, runCount})
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(fillConcurrency)

	for _, r := range missing {
		g.Go(func() error {
			byteStart := r.start * b.blockSize
			byteSize := r.count * b.blockSize

			fileSize := b.inner.Size()
			if byteStart >= fileSize {
				return nil
			}
			if byteStart+byteSize > fileSize {
				byteSize = fileSize - byteStart
			}

			buf := make([]byte, byteSize)
			n, err := b.inner.ReadAt(gctx, buf, byteStart)
			if err != nil && !errors.Is(err, io.EOF) {
				return err
			}
			valid := buf[:n]

			for i := int64(0); i < r.count; i++ {
				offsetInRun := i * b.blockSize
				if offsetInRun >= int64(len(valid)) {
					break
				}
				endInRun := min(offsetInRun+b.blockSize, int64(len(valid)))

				// Copy so a cached block doesn't pin the whole run buffer.
				blockCopy := make([]byte, endInRun-offsetInRun)
				copy(blockCopy, valid[offsetInRun:endInRun])

				b.cache.Set(gctx, cache.Key{Name: b.name, Block: r.start + i}, blockCopy)
			}
			return nil
		})
	}
	return g.Wait()
}

func (b *CachingBlob) fetchBlock(ctx context.Context, blk int64) ([]byte, error) {
	key := cache.Key{Name: b.name, Block: blk}

	if data, ok := b.cache.Get(ctx, key); ok {
		return data, nil
	}

	buf := make([]byte, b.blockSize)
	n, err := b.inner.ReadAt(ctx, buf, blk*b.blockSize)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	valid := buf[:n]
	if n > 0 {
		b.cache.Set(ctx, key, valid)
	}
	return valid, nil
}

// cachedSectionReader adapts CachingBlob.ReadAt to io.Reader with context.
type cachedSectionReader struct {
	blob  *CachingBlob
	ctx   context.Context
	off   int64
	limit int64
}

func (r *cachedSectionReader) Read(p []byte) (int, error) {
	if r.off >= r.limit {
		return 0, io.EOF
	}
	if remaining := r.limit - r.off; int64(len(p)) > remaining {
		p = p[:remaining]
	}
	n, err := r.blob.ReadAt(r.ctx, p, r.off)
	r.off += int64(n)
	return n, err
}
