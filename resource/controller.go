package resource

import (
	"context"
	"sync/atomic"

	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"
)

// Config holds resource limits.
type Config struct {
	// MemoryLimitBytes is the hard limit for managed memory (block cache).
	// If 0, no hard limit is enforced (only tracking).
	MemoryLimitBytes int64

	// MaxConcurrentReads caps store reads in flight at once.
	// If 0, unlimited.
	MaxConcurrentReads int64

	// IOLimitBytesPerSec is the maximum aggregate read throughput against
	// the backend. If 0, unlimited.
	IOLimitBytesPerSec int64
}

// Controller manages shared resources (memory, read concurrency, IO rate).
// A nil *Controller is valid and enforces nothing.
type Controller struct {
	cfg Config

	// Memory
	memSem  *semaphore.Weighted // nil if unlimited
	memUsed atomic.Int64

	// Read concurrency
	readSem *semaphore.Weighted // nil if unlimited

	// IO
	ioLimiter *rate.Limiter
}

// NewController creates a new resource controller.
func NewController(cfg Config) *Controller {
	c := &Controller{cfg: cfg}

	if cfg.MemoryLimitBytes > 0 {
		c.memSem = semaphore.NewWeighted(cfg.MemoryLimitBytes)
	}
	if cfg.MaxConcurrentReads > 0 {
		c.readSem = semaphore.NewWeighted(cfg.MaxConcurrentReads)
	}
	if cfg.IOLimitBytesPerSec > 0 {
		c.ioLimiter = rate.NewLimiter(rate.Limit(cfg.IOLimitBytesPerSec), int(cfg.IOLimitBytesPerSec))
	}

	return c
}

// WaitIO blocks until the rate limiter admits n bytes of backend IO, or ctx
// is canceled.
func (c *Controller) WaitIO(ctx context.Context, n int64) error {
	if c == nil || c.ioLimiter == nil || n <= 0 {
		return nil
	}
	burst := int64(c.ioLimiter.Burst())
	for n > 0 {
		chunk := n
		if chunk > burst {
			chunk = burst
		}
		if err := c.ioLimiter.WaitN(ctx, int(chunk)); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

// AcquireRead reserves a read slot, blocking until one is available or ctx
// is canceled.
func (c *Controller) AcquireRead(ctx context.Context) error {
	if c == nil || c.readSem == nil {
		return nil
	}
	return c.readSem.Acquire(ctx, 1)
}

// ReleaseRead returns a read slot.
func (c *Controller) ReleaseRead() {
	if c == nil || c.readSem == nil {
		return
	}
	c.readSem.Release(1)
}

// TryAcquireMemory attempts to reserve memory without blocking.
// Returns true if acquired, false if the limit would be exceeded.
func (c *Controller) TryAcquireMemory(bytes int64) bool {
	if c == nil || bytes <= 0 {
		return true
	}
	if c.memSem != nil && !c.memSem.TryAcquire(bytes) {
		return false
	}
	c.memUsed.Add(bytes)
	return true
}

// ReleaseMemory releases reserved memory.
func (c *Controller) ReleaseMemory(bytes int64) {
	if c == nil || bytes <= 0 {
		return
	}
	if c.memSem != nil {
		c.memSem.Release(bytes)
	}
	c.memUsed.Add(-bytes)
}

// MemoryUsage returns the current tracked memory usage in bytes.
func (c *Controller) MemoryUsage() int64 {
	if c == nil {
		return 0
	}
	return c.memUsed.Load()
}
