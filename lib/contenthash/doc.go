// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package contenthash computes BLAKE3 content digests for tracked
// artifacts. The digest is the staleness signal everywhere bytes are
// compared: analysis caching, embedding reuse, and the project
// snapshot all key on it.
package contenthash
