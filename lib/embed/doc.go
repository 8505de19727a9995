// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package embed manages artifact embedding vectors: generating them
// through an external embedder command and persisting them in a
// content-addressed vector store.
//
// The store lives in a single directory (paths.embeddings_dir):
//
//   - manifest.cbor — deterministic CBOR index: format version, the
//     doc and code model names, the vector dimension, and one record
//     per embedded artifact (canonical key, BLAKE3 content hash,
//     source mtime, vector file name).
//   - <key>.vec — one binary file per vector: a fixed header (magic
//     "LVEC", format version, dimension, compression tag,
//     uncompressed payload size) followed by the little-endian
//     float32 payload, byte-grouped and LZ4-compressed.
//
// Float32 vectors compress poorly as raw bytes because the
// significand bytes are close to random. Grouping bytes by position
// first (all byte-0s, then all byte-1s, ...) clusters the
// highly-regular sign/exponent bytes together, which LZ4 then
// exploits. The same transform the artifact layer uses for tensor
// data.
//
// Staleness is content-based: a stored vector is only usable while
// the artifact's current BLAKE3 hash matches the hash recorded in the
// manifest. Mtimes are recorded for diagnostics but never trusted.
//
// Embedding generation is optional. When no embedder command is
// configured, or the command fails, operations degrade: Embed returns
// an error wrapping [ErrUnavailable] and callers fall back to
// static-only analysis.
package embed
