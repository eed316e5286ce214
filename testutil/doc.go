// Package testutil provides deterministic digit-sequence fixtures and a
// seeded RNG for reproducible tests.
package testutil
