// Package rangesvc serves bounded byte-range reads of the digit sequence.
//
// Service is the stateless read path: it validates a range request, clamps
// it to the configured maximum, and performs exactly one bounded read
// against the blob store. It never retries; retry policy belongs entirely
// to the consuming stream so the two can be tuned independently.
//
// Handler exposes the read path over HTTP (the server boundary), and
// Client consumes that boundary as a digitstream.Fetcher.
package rangesvc
