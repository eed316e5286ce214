package rangesvc

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/digitstream"
	"github.com/hupe1980/digitstream/blobstore"
	"github.com/hupe1980/digitstream/resource"
)

const (
	// MaxRangeCeiling is the hard upper bound for a single read, so one
	// request can never materialize an unbounded slice of the sequence.
	MaxRangeCeiling = 100_000

	// DefaultMaxRange is the per-read byte cap when none is configured.
	DefaultMaxRange = 65536
)

// Service validates and serves bounded range reads against a blob store.
// It is stateless per request: any number of reads may be served
// concurrently with no shared mutable state.
type Service struct {
	store         blobstore.BlobStore
	maxRange      int64
	defaultLength int64
	rc            *resource.Controller
	logger        *digitstream.Logger
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithMaxRange sets the per-read byte cap. Values are clamped to
// (0, MaxRangeCeiling].
func WithMaxRange(n int64) ServiceOption {
	return func(s *Service) {
		if n > 0 && n <= MaxRangeCeiling {
			s.maxRange = n
		}
	}
}

// WithDefaultLength sets the length used when a caller does not specify
// one (e.g. the HTTP boundary). Clamped to the max range at read time.
func WithDefaultLength(n int64) ServiceOption {
	return func(s *Service) {
		if n > 0 {
			s.defaultLength = n
		}
	}
}

// WithController attaches a resource.Controller bounding store read
// concurrency and byte rate.
func WithController(rc *resource.Controller) ServiceOption {
	return func(s *Service) {
		s.rc = rc
	}
}

// WithLogger configures structured logging. Pass nil to disable.
func WithLogger(logger *digitstream.Logger) ServiceOption {
	return func(s *Service) {
		if logger == nil {
			logger = digitstream.NoopLogger()
		}
		s.logger = logger
	}
}

// NewService creates a range read service over store.
func NewService(store blobstore.BlobStore, optFns ...ServiceOption) *Service {
	s := &Service{
		store:         store,
		maxRange:      DefaultMaxRange,
		defaultLength: digitstream.DefaultChunkSize,
		logger:        digitstream.NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(s)
		}
	}
	if s.defaultLength > s.maxRange {
		s.defaultLength = s.maxRange
	}
	return s
}

// MaxRange returns the per-read byte cap.
func (s *Service) MaxRange() int64 { return s.maxRange }

// DefaultLength returns the read length used when callers omit one.
func (s *Service) DefaultLength() int64 { return s.defaultLength }

// Read returns the bytes of the named object in [offset, offset+length).
//
// offset must be non-negative and length positive; violations return
// digitstream.ErrInvalidRange before any store access. A length above the
// max range is clamped, not rejected. Fewer bytes than requested
// (including none) means the sequence ends inside the range and is a
// successful read. A missing object returns digitstream.ErrNotFound;
// store IO failures are wrapped as digitstream.TransientError.
func (s *Service) Read(ctx context.Context, name string, offset, length int64) ([]byte, error) {
	if offset < 0 {
		return nil, fmt.Errorf("%w: negative offset %d", digitstream.ErrInvalidRange, offset)
	}
	if length <= 0 {
		return nil, fmt.Errorf("%w: non-positive length %d", digitstream.ErrInvalidRange, length)
	}
	if length > s.maxRange {
		length = s.maxRange
	}

	if err := s.rc.AcquireRead(ctx); err != nil {
		return nil, digitstream.NewTransientError(err)
	}
	defer s.rc.ReleaseRead()

	if err := s.rc.WaitIO(ctx, length); err != nil {
		return nil, digitstream.NewTransientError(err)
	}

	blob, err := s.store.Open(ctx, name)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, fmt.Errorf("%w: object %q", digitstream.ErrNotFound, name)
		}
		return nil, digitstream.NewTransientError(err)
	}
	defer func() { _ = blob.Close() }()

	if offset >= blob.Size() {
		s.logger.Debug("read past end", "object", name, "offset", offset, "size", blob.Size())
		return []byte{}, nil // end of stream, not an error
	}

	r, err := blob.ReadRange(ctx, offset, length)
	if err != nil {
		return nil, digitstream.NewTransientError(err)
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(io.LimitReader(r, length))
	if err != nil {
		return nil, digitstream.NewTransientError(err)
	}

	s.logger.Debug("range read",
		"object", name,
		"offset", offset,
		"length", length,
		"bytes", len(data),
	)
	return data, nil
}

// Fetcher adapts the service to digitstream.Fetcher for the named object,
// for in-process consumption without the HTTP boundary.
func (s *Service) Fetcher(name string) digitstream.Fetcher {
	return digitstream.FetcherFunc(func(ctx context.Context, offset, length int64) ([]byte, error) {
		return s.Read(ctx, name, offset, length)
	})
}
