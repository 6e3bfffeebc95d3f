// Package catalog holds the question catalogue: how many questions each
// category has, and the question and answer text shown after a question
// has played.
//
// Counts come from a remote JSON index fetched once at startup. Text comes
// from per-category YAML datasets bundled with the binary, optionally
// replaced by a directory on disk. Both are read-only once loaded.
package catalog
