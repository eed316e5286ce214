// Package cache provides the block cache used by blobstore.CachingStore.
//
// Cached blocks are immutable: the sequence never changes, so entries need
// no versioning and expire only under memory pressure (LRU eviction).
package cache
