// Package cache provides a two-level byte cache for downloaded audio
// segments: an in-memory LRU (L1) in front of a zstd-compressed disk
// store (L2) with TTL-based cleanup.
package cache
