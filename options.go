package digitstream

import (
	"log/slog"
	"time"

	"github.com/hupe1980/digitstream/resource"
)

const (
	// DefaultChunkSize is the fetch and drain granularity.
	DefaultChunkSize = 16384

	// DefaultConcurrency is the number of fetch tasks in flight.
	DefaultConcurrency = 4

	// MaxConcurrency caps WithConcurrency. More parallel range reads than
	// this buys nothing and hammers the backend.
	MaxConcurrency = 10

	// DefaultLookahead is the buffer target in chunks.
	DefaultLookahead = 8

	// DefaultRetryBackoff is the fixed delay between transient fetch retries.
	DefaultRetryBackoff = 2 * time.Second

	// DefaultFetchTimeout bounds a single fetch task. Expiry is treated as
	// a transient failure subject to the retry policy.
	DefaultFetchTimeout = 30 * time.Second
)

type options struct {
	chunkSize    int64
	concurrency  int64
	lookahead    int64
	retryBackoff time.Duration
	maxRetries   int
	fetchTimeout time.Duration
	controller   *resource.Controller
	metrics      MetricsCollector
	logger       *Logger
}

// Option configures Stream construction.
type Option func(*options)

// WithChunkSize sets the size in bytes of each fetch task and each drained
// chunk. Values <= 0 fall back to DefaultChunkSize.
func WithChunkSize(size int64) Option {
	return func(o *options) {
		if size > 0 {
			o.chunkSize = size
		}
	}
}

// WithConcurrency sets the number of fetch tasks that may be in flight
// simultaneously. Clamped to [1, MaxConcurrency].
func WithConcurrency(k int) Option {
	return func(o *options) {
		switch {
		case k < 1:
			o.concurrency = 1
		case k > MaxConcurrency:
			o.concurrency = MaxConcurrency
		default:
			o.concurrency = int64(k)
		}
	}
}

// WithLookahead sets the buffer target in chunks. The stream tops the
// buffer up to chunkSize*lookahead bytes and refills whenever the buffered
// amount drops below half of that. Values < 1 fall back to 1.
func WithLookahead(chunks int) Option {
	return func(o *options) {
		if chunks >= 1 {
			o.lookahead = int64(chunks)
		}
	}
}

// WithRetryBackoff sets the fixed delay before a transient fetch failure is
// retried.
func WithRetryBackoff(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.retryBackoff = d
		}
	}
}

// WithMaxRetries caps transient retries per fetch task. The default 0 means
// unbounded: the stream keeps retrying as long as the session is alive.
// When the cap is exceeded the session fails with ErrRetriesExhausted.
func WithMaxRetries(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxRetries = n
		}
	}
}

// WithFetchTimeout bounds each individual fetch task.
func WithFetchTimeout(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.fetchTimeout = d
		}
	}
}

// WithController attaches a resource.Controller used to rate-limit the
// aggregate fetch bandwidth against the backend. Pass nil to disable.
func WithController(rc *resource.Controller) Option {
	return func(o *options) {
		o.controller = rc
	}
}

// WithMetricsCollector configures a metrics collector for fetch/drain
// operations. Pass nil to disable metrics collection.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metrics = mc
	}
}

// WithLogger configures structured logging. Pass nil to disable.
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		chunkSize:    DefaultChunkSize,
		concurrency:  DefaultConcurrency,
		lookahead:    DefaultLookahead,
		retryBackoff: DefaultRetryBackoff,
		fetchTimeout: DefaultFetchTimeout,
		metrics:      NoopMetricsCollector{},
		logger:       NoopLogger(),
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
