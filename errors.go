package digitstream

import (
	"errors"
	"fmt"
	"os"
)

var (
	// ErrNotFound is returned when the backing object itself is absent.
	// This is a fatal, configuration-level condition and is distinct from a
	// successful zero-byte read past the end of the sequence.
	//
	// Implementations should return an error that satisfies
	// `errors.Is(err, ErrNotFound)`. The default maps to `os.ErrNotExist`.
	ErrNotFound = os.ErrNotExist

	// ErrInvalidRange is returned when a range request violates the read
	// contract (negative offset or non-positive length). It is surfaced
	// before any store access and must never be retried.
	ErrInvalidRange = errors.New("invalid range request")

	// ErrNotReady is returned by Stream.Next when the buffer is empty but
	// fetches are still in flight. Callers should retry after a short delay.
	ErrNotReady = errors.New("no buffered content yet")

	// ErrEndOfStream is returned by Stream.Next once the sequence has been
	// fully fetched and drained. It is terminal but not a failure.
	ErrEndOfStream = errors.New("end of stream")

	// ErrClosed is returned for operations on a closed Stream.
	ErrClosed = errors.New("stream closed")

	// ErrRetriesExhausted is the failure cause when a configured retry cap
	// is exceeded for a transient fetch error.
	ErrRetriesExhausted = errors.New("fetch retries exhausted")
)

// TransientError marks a store or network failure that is safe to retry.
// Timeouts and IO hiccups are wrapped in this type; fatal conditions
// (ErrNotFound, ErrInvalidRange) never are.
//
// The underlying error can be accessed via errors.Unwrap.
type TransientError struct {
	cause error
}

// NewTransientError wraps cause as a retryable failure.
func NewTransientError(cause error) *TransientError {
	return &TransientError{cause: cause}
}

func (e *TransientError) Error() string {
	return fmt.Sprintf("transient fetch failure: %v", e.cause)
}

func (e *TransientError) Unwrap() error { return e.cause }

// IsTransient reports whether err may be retried under the stream's retry
// policy. Fatal conditions and contract violations are never transient.
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, ErrInvalidRange) {
		return false
	}
	var te *TransientError
	return errors.As(err, &te)
}
