package digitstream

import (
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting operational metrics.
// Implement this interface to integrate with monitoring systems like Prometheus.
//
// Example Prometheus integration:
//
//	type PrometheusCollector struct {
//	    fetchCounter   prometheus.Counter
//	    fetchHistogram prometheus.Histogram
//	}
//
//	func (p *PrometheusCollector) RecordFetch(bytes int, duration time.Duration, err error) {
//	    p.fetchCounter.Inc()
//	    // ... record error state, duration, etc.
//	}
type MetricsCollector interface {
	// RecordFetch is called after each fetch task completes.
	// bytes is the number of bytes returned, duration is the time taken,
	// err is nil if successful.
	RecordFetch(bytes int, duration time.Duration, err error)

	// RecordRetry is called each time a transient fetch failure is
	// scheduled for retry.
	RecordRetry(offset int64, attempt int)

	// RecordDrain is called after each successful drain.
	// bytes is the number of bytes handed to the consumer.
	RecordDrain(bytes int)
}

// NoopMetricsCollector is a no-op implementation of MetricsCollector.
// Use this when metrics collection is not needed.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordFetch(int, time.Duration, error) {}
func (NoopMetricsCollector) RecordRetry(int64, int)                {}
func (NoopMetricsCollector) RecordDrain(int)                       {}

// BasicMetricsCollector provides simple in-memory metrics collection.
// Useful for debugging and basic monitoring without external dependencies.
type BasicMetricsCollector struct {
	FetchCount      atomic.Int64
	FetchErrors     atomic.Int64
	FetchBytes      atomic.Int64
	FetchTotalNanos atomic.Int64
	RetryCount      atomic.Int64
	DrainCount      atomic.Int64
	DrainBytes      atomic.Int64
}

func (c *BasicMetricsCollector) RecordFetch(bytes int, duration time.Duration, err error) {
	c.FetchCount.Add(1)
	c.FetchTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		c.FetchErrors.Add(1)
		return
	}
	c.FetchBytes.Add(int64(bytes))
}

func (c *BasicMetricsCollector) RecordRetry(int64, int) {
	c.RetryCount.Add(1)
}

func (c *BasicMetricsCollector) RecordDrain(bytes int) {
	c.DrainCount.Add(1)
	c.DrainBytes.Add(int64(bytes))
}

// Stats is a point-in-time snapshot of the basic collector.
type Stats struct {
	FetchCount    int64
	FetchErrors   int64
	FetchBytes    int64
	FetchAvgNanos int64
	RetryCount    int64
	DrainCount    int64
	DrainBytes    int64
}

// GetStats returns a snapshot of the collected metrics.
func (c *BasicMetricsCollector) GetStats() Stats {
	s := Stats{
		FetchCount:  c.FetchCount.Load(),
		FetchErrors: c.FetchErrors.Load(),
		FetchBytes:  c.FetchBytes.Load(),
		RetryCount:  c.RetryCount.Load(),
		DrainCount:  c.DrainCount.Load(),
		DrainBytes:  c.DrainBytes.Load(),
	}
	if s.FetchCount > 0 {
		s.FetchAvgNanos = c.FetchTotalNanos.Load() / s.FetchCount
	}
	return s
}
