// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package cache provides the persistent named caches backing
// analysis runs: cache.db in the memory directory.
//
// A single SQLite database (WAL mode, connection pool) holds every
// named cache in one table keyed by (cache, key). Values are
// deterministic CBOR. Each row carries the BLAKE3 content hash of
// the source artifact it was derived from, so a changed artifact
// invalidates its own entries on the next lookup without any scan.
//
// Three named caches exist today:
//
//   - file_analysis: per-artifact analysis results (references,
//     type, hash), keyed by project-relative path.
//   - embeddings_meta: embedder responses awaiting store writes.
//   - tracker_data: parsed tracker grids keyed by tracker path.
//
// Anything may add further names; the store does not enumerate them.
// Expiry is per-entry TTL plus per-cache LRU size caps, enforced on
// write. The clear-caches command empties everything via ClearAll
// and reports per-cache hit/miss counters.
package cache
