// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package analyze inspects tracked artifacts: it classifies files by
// type, hashes their content, extracts raw reference strings (imports,
// links, includes), and resolves those references to tracked project
// paths. The suggestion engine turns resolved references into
// dependency characters; this package never touches trackers.
package analyze
