// Package resource provides shared resource accounting: a byte-rate limit
// on backend IO, a cap on concurrent store reads, and memory tracking for
// the block cache. One Controller is meant to be shared across the server's
// read path and any in-process streams so backend load stays bounded
// globally, not per session.
package resource
