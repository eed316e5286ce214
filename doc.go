// Package digitstream serves a very large, immutable ASCII digit sequence
// out of an object store and lets a consumer read it incrementally without
// ever materializing the whole sequence on either side.
//
// Two components cooperate over a single bounded range-read contract:
//
//   - rangesvc.Service validates and serves range reads against a
//     blobstore backend (S3, MinIO, local filesystem, in-memory).
//   - Stream keeps a monotonically advancing read cursor, issues range
//     fetches ahead of consumption, reassembles out-of-order completions
//     into an ordered buffer, and drains it on demand.
//
// # Quick Start
//
// In-process, over an in-memory store:
//
//	store := blobstore.NewMemoryStore()
//	_ = store.Put(ctx, "pi.txt", digits)
//
//	stream, _ := digitstream.Open(ctx, store, "pi.txt")
//	defer stream.Close()
//
//	for {
//	    chunk, err := stream.Next()
//	    switch {
//	    case err == nil:
//	        render(chunk)
//	    case errors.Is(err, digitstream.ErrNotReady):
//	        time.Sleep(50 * time.Millisecond)
//	    case errors.Is(err, digitstream.ErrEndOfStream):
//	        return
//	    default:
//	        log.Fatal(err)
//	    }
//	}
//
// Remote, against the HTTP range endpoint:
//
//	client := rangesvc.NewClient("https://example.com/digits")
//	stream := digitstream.NewStream(client,
//	    digitstream.WithChunkSize(16384),
//	    digitstream.WithConcurrency(4),
//	)
//
// # Consumption model
//
// Next never blocks. It returns a chunk, ErrNotReady (retry after a short
// delay while fetches are in flight), ErrEndOfStream (the sequence is
// exhausted), or a terminal failure. State() exposes the session state tag
// so a presentation layer can show loading/error/done indicators without
// polling internals.
//
// # Key properties
//
//   - Bounded memory: at most chunk size x lookahead buffered, at most
//     MaxRange bytes per server read.
//   - Bounded concurrency: at most K fetches in flight, non-overlapping
//     offsets by construction.
//   - Drained output is always the exact prefix of the sequence, regardless
//     of fetch completion order.
//   - Transient failures retry with fixed backoff; a missing object fails
//     the session exactly once.
package digitstream
