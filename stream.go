package digitstream

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// State is the session state tag exposed to the presentation layer.
type State uint8

const (
	// StateIdle means no demand has been signaled yet.
	StateIdle State = iota
	// StatePrefetching means fetch tasks are being issued or retried.
	StatePrefetching
	// StateEndOfStream means the sequence length has been discovered and no
	// further fetch tasks will be issued. Buffered content may still be
	// drained.
	StateEndOfStream
	// StateFailed is terminal: a fatal error ended the session.
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StatePrefetching:
		return "prefetching"
	case StateEndOfStream:
		return "end-of-stream"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Stream is the client-side prefetch buffer manager. It issues range
// fetches ahead of consumption, reassembles out-of-order completions into
// an ordered buffer and drains the buffer on demand via Next.
//
// All exported methods are safe for concurrent use, but the intended model
// is a single consumer calling Next while fetch tasks complete in the
// background. The mutex is the single synchronization point: drain and
// completion handling never run concurrently with each other.
type Stream struct {
	fetcher Fetcher
	opts    options

	// closer, if set, is closed together with the stream (see Open).
	closer io.Closer

	ctx    context.Context
	cancel context.CancelFunc
	sem    *semaphore.Weighted

	mu       sync.Mutex
	state    State
	buf      []byte           // contiguous bytes starting at consumed
	pending  map[int64][]byte // completed fetches not yet contiguous, by offset
	consumed int64            // next offset to hand to the consumer
	next     int64            // next offset to request (optimistic advance)
	inflight int
	length   int64 // discovered sequence length, -1 while unknown
	failure  error
	closed   bool
}

// NewStream creates a Stream over fetcher. The stream is idle until the
// first Next call or an explicit Start.
func NewStream(fetcher Fetcher, optFns ...Option) *Stream {
	opts := applyOptions(optFns)
	ctx, cancel := context.WithCancel(context.Background())

	return &Stream{
		fetcher: fetcher,
		opts:    opts,
		ctx:     ctx,
		cancel:  cancel,
		sem:     semaphore.NewWeighted(opts.concurrency),
		pending: make(map[int64][]byte),
		length:  -1,
	}
}

// Start begins prefetching before the first demand signal. Calling Start is
// optional; the first Next transitions out of StateIdle on its own.
func (s *Stream) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateIdle && !s.closed {
		s.setState(StatePrefetching)
		s.schedule()
	}
}

// Next drains up to one chunk from the front of the buffer. It never
// blocks.
//
// Returns ErrNotReady while the buffer is empty but content is still being
// fetched, ErrEndOfStream once the sequence is exhausted and fully drained,
// ErrClosed after Close, or the terminal failure in StateFailed.
func (s *Stream) Next() ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil, ErrClosed
	}

	switch s.state {
	case StateIdle:
		s.setState(StatePrefetching)
		s.schedule()
		return nil, ErrNotReady
	case StateFailed:
		return nil, s.failure
	}

	if len(s.buf) == 0 {
		if s.state == StateEndOfStream && s.consumed >= s.length {
			return nil, ErrEndOfStream
		}
		return nil, ErrNotReady
	}

	n := int(s.opts.chunkSize)
	if n > len(s.buf) {
		n = len(s.buf)
	}
	out := make([]byte, n)
	copy(out, s.buf[:n])
	s.buf = s.buf[n:]
	s.consumed += int64(n)

	s.opts.metrics.RecordDrain(n)
	s.opts.logger.LogDrain(s.consumed, n)

	s.schedule()
	return out, nil
}

// State returns the current session state tag.
func (s *Stream) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Positions returns the consumed and fetch cursors. consumed is
// monotonically non-decreasing and never exceeds fetched.
//
// fetched advances optimistically as requests are issued, so it can sit
// past the actual end of the sequence until a short read discovers the
// length. At that point it snaps down once to the length and stays frozen
// there; it never decreases otherwise.
func (s *Stream) Positions() (consumed, fetched int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.consumed, s.next
}

// Len returns the discovered sequence length, or -1 while it is unknown.
func (s *Stream) Len() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.length
}

// Close ends the session. No further fetch tasks are issued and in-flight
// results are discarded on arrival. Close is idempotent.
func (s *Stream) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.pending = nil
	s.mu.Unlock()

	s.cancel()
	if s.closer != nil {
		return s.closer.Close()
	}
	return nil
}

// setState transitions the session state. Callers hold the mutex.
func (s *Stream) setState(to State) {
	if s.state == to {
		return
	}
	s.opts.logger.LogStateChange(s.state.String(), to.String())
	s.state = to
}

// schedule tops the lookahead back up. Callers hold the mutex.
//
// The low-water rule: whenever the outstanding amount (buffered plus
// requested-but-unfinished, which is exactly next-consumed thanks to the
// optimistic advance) drops below half the target, issue tasks until the
// target is restored or the concurrency cap is hit.
func (s *Stream) schedule() {
	if s.state != StatePrefetching || s.closed {
		return
	}

	target := s.opts.chunkSize * s.opts.lookahead
	if s.next-s.consumed >= target/2 {
		return
	}

	for s.next-s.consumed < target {
		if !s.sem.TryAcquire(1) {
			return // concurrency cap reached
		}
		off := s.next
		s.next += s.opts.chunkSize // optimistic advance: tasks never overlap
		s.inflight++
		go s.runFetch(off, s.opts.chunkSize)
	}
}

// runFetch executes one fetch task, retrying transient failures with a
// fixed backoff until it succeeds, turns fatal, or the session ends.
func (s *Stream) runFetch(off, length int64) {
	defer func() {
		s.sem.Release(1)
		s.mu.Lock()
		s.inflight--
		s.schedule()
		s.mu.Unlock()
	}()

	attempt := 0
	for {
		ctx, cancel := context.WithTimeout(s.ctx, s.opts.fetchTimeout)

		err := s.opts.controller.WaitIO(ctx, length)
		if err != nil {
			// Throttling that cannot admit the fetch within its timeout is
			// a timed-out fetch: the claimed offset must stay subject to
			// the retry policy or the hole is never filled.
			err = NewTransientError(err)
		} else {
			var data []byte
			start := time.Now()
			data, err = s.fetcher.Fetch(ctx, off, length)

			s.opts.metrics.RecordFetch(len(data), time.Since(start), err)
			s.opts.logger.LogFetch(off, length, len(data), err)

			if err == nil {
				cancel()
				s.complete(off, length, data)
				return
			}
		}
		cancel()

		if s.ctx.Err() != nil {
			return // session closed; result is harmless to drop
		}

		if !IsTransient(err) && !errors.Is(err, context.DeadlineExceeded) {
			s.fail(err)
			return
		}

		attempt++
		if s.opts.maxRetries > 0 && attempt > s.opts.maxRetries {
			s.fail(fmt.Errorf("%w: offset %d: %w", ErrRetriesExhausted, off, err))
			return
		}
		s.opts.metrics.RecordRetry(off, attempt)

		select {
		case <-time.After(s.opts.retryBackoff):
		case <-s.ctx.Done():
			return
		}
	}
}

// complete applies a finished fetch task. Out-of-order completions park in
// the pending map and are folded into the buffer once contiguous.
func (s *Stream) complete(off, requested int64, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state == StateFailed {
		return // session gone, discard
	}

	if s.length >= 0 && off >= s.length {
		return // speculative task past the discovered end
	}

	if limit := off + int64(len(data)); int64(len(data)) < requested &&
		(s.length < 0 || limit < s.length) {
		// A short read pins the sequence length exactly; a zero-byte read
		// only bounds it from above. Completions arrive in any order, so
		// keep the tightest bound seen, freeze the fetch cursor there and
		// drop speculative completions past it.
		s.length = limit
		s.next = s.length
		s.setState(StateEndOfStream)
		for o := range s.pending {
			if o >= s.length {
				delete(s.pending, o)
			}
		}
	}

	if len(data) > 0 {
		s.pending[off] = data
	}
	s.coalesce()

	s.schedule()
}

// coalesce folds pending completions into the contiguous buffer in offset
// order. This is the only place that imposes ordering on otherwise
// out-of-order completions. Callers hold the mutex.
func (s *Stream) coalesce() {
	for {
		bufEnd := s.consumed + int64(len(s.buf))
		data, ok := s.pending[bufEnd]
		if !ok {
			return
		}
		delete(s.pending, bufEnd)
		s.buf = append(s.buf, data...)
	}
}

// fail moves the session to the terminal failed state. End-of-stream does
// not shield against it: a task filling a remaining hole can still fail
// fatally after the length is known.
func (s *Stream) fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.state == StateFailed {
		return
	}
	s.failure = err
	s.pending = make(map[int64][]byte)
	s.buf = nil
	s.setState(StateFailed)
}
